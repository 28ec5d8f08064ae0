package storage

import "context"

// FileService stores cover images and hands back a URL clients can fetch.
type FileService interface {
	UploadInlineImage(ctx context.Context, dataURL, fileName string) (string, error)
}
