package errorlib

import "net/http"

var (
	ErrNotFound = ApiError{
		ErrorCode: "NOT_FOUND",
		Message:   "post with ID %d not found",
		Status:    http.StatusNotFound,
	}
	ErrRelatedPostNotFound = ApiError{
		ErrorCode: "NOT_FOUND",
		Message:   "related post with ID %d not found",
		Status:    http.StatusNotFound,
	}
	ErrUpstreamUnavailable = ApiError{
		ErrorCode: "UPSTREAM_UNAVAILABLE",
		Message:   "failed to fetch %s from the external API",
		Status:    http.StatusBadGateway,
	}
	ErrInvalidImageEncoding = ApiError{
		ErrorCode: "INVALID_IMAGE_ENCODING",
		Message:   "image must be a base64 data URL like data:image/<type>;base64,<payload>",
		Status:    http.StatusBadRequest,
	}
	ErrStorageBucketMissing = ApiError{
		ErrorCode: "STORAGE_BUCKET_MISSING",
		Message: "storage bucket %q does not exist. To fix it: " +
			"1) create the bucket in the configured region, " +
			"2) set S3_BUCKET to its exact name, " +
			"3) grant the service credentials s3:ListBucket and s3:PutObject on it, " +
			"4) allow public-read object ACLs if cover images must be publicly reachable",
		Status: http.StatusInternalServerError,
	}
	ErrImageUploadFailed = ApiError{
		ErrorCode: "IMAGE_UPLOAD_FAILED",
		Message:   "failed to upload the cover image",
		Status:    http.StatusInternalServerError,
	}
	ErrStoragePermissionDenied = ApiError{
		ErrorCode: "STORAGE_PERMISSION_DENIED",
		Message:   "permission denied by the related post store (%s); check the store access policy and the service credentials",
		Status:    http.StatusForbidden,
	}
	ErrTemplateUnavailable = ApiError{
		ErrorCode: "TEMPLATE_UNAVAILABLE",
		Message:   "failed to read the post body template",
		Status:    http.StatusInternalServerError,
	}
	ErrValidation = ApiError{
		ErrorCode: "VALIDATION_ERROR",
		Message:   "%s",
		Status:    http.StatusBadRequest,
	}
	ErrUnknownStorage = ApiError{
		ErrorCode: "UNKNOWN_STORAGE_ERROR",
		Message:   "related post store failure during %s",
		Status:    http.StatusInternalServerError,
	}
	ErrInternal = ApiError{
		ErrorCode: "INTERNAL_SERVER_ERROR",
		Message:   "An unknown error occurred",
		Status:    http.StatusInternalServerError,
	}
)
