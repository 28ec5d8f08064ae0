package related

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/klass-lk/postgateway/internal/errorlib"
)

var coverImagePattern = regexp.MustCompile(`^(https?://.+|data:image/(jpeg|jpg|png);base64,.+)$`)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("coverimage", func(fl validator.FieldLevel) bool {
		return coverImagePattern.MatchString(fl.Field().String())
	})
	return v
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errorlib.ErrValidation.New(err.Error())
	}

	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s must not be empty", fe.Field()))
		case "coverimage":
			messages = append(messages, fmt.Sprintf("%s must be an http(s) URL or a data:image/(jpeg|jpg|png);base64 URL", fe.Field()))
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return errorlib.ErrValidation.New(strings.Join(messages, "; "))
}
