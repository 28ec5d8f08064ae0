package server

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/klass-lk/postgateway/internal/errorlib"
)

type ErrorResponse struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}

// BuildRequest binds the JSON body into T. Binding failures are VALIDATION_ERROR.
func BuildRequest[T any](c *gin.Context) (T, error) {
	var request T
	if err := c.ShouldBindJSON(&request); err != nil {
		return request, errorlib.ErrValidation.New("invalid request body").Wrap(err)
	}
	return request, nil
}

// PathInt64 parses the named path parameter as a base-10 integer.
func PathInt64(c *gin.Context, name string) (int64, error) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errorlib.ErrValidation.New(fmt.Sprintf("%s must be an integer, got %q", name, raw)).Wrap(err)
	}
	return id, nil
}

// SendError renders err as {error_code, message}. Causes are logged, never sent.
func SendError(c *gin.Context, log *slog.Logger, err error) {
	if apiErr, ok := errorlib.As(err); ok {
		status := apiErr.HTTPStatus()
		attrs := []any{
			slog.String("error_code", apiErr.ErrorCode),
			slog.Int("status", status),
			slog.String("path", c.Request.URL.Path),
		}
		if cause := errorlib.Cause(err); cause != nil {
			attrs = append(attrs, slog.String("cause", cause.Error()))
		}
		if status >= 500 {
			log.Error(apiErr.Message, attrs...)
		} else {
			log.Debug(apiErr.Message, attrs...)
		}
		c.AbortWithStatusJSON(status, ErrorResponse{ErrorCode: apiErr.ErrorCode, Message: apiErr.Message})
		return
	}

	log.Error("Unhandled error", slog.String("path", c.Request.URL.Path), slog.String("error", err.Error()))
	internal := errorlib.ErrInternal
	c.AbortWithStatusJSON(internal.HTTPStatus(), ErrorResponse{ErrorCode: internal.ErrorCode, Message: internal.Message})
}
