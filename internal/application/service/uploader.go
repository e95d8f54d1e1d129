package service

import (
	"context"
	"io"
)

type Uploader interface {
	Upload(ctx context.Context, file io.Reader, folder string, publicID string) (string, error)
	// UploadRemote lets the media host fetch the file from url itself.
	UploadRemote(ctx context.Context, url string, folder string, publicID string) (string, error)
	Delete(ctx context.Context, publicID string) error
	// TransformURL builds a delivery URL for an uploaded asset.
	TransformURL(publicID string, transformation string) (string, error)
}
