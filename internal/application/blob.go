package application

import (
	"context"
	"io"
)

// BlobStore is the opaque content store for uploaded images. Store returns
// the object key; URL expands a key to a publicly fetchable address.
type BlobStore interface {
	Store(ctx context.Context, folder, filename, contentType string, r io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// ImageUpload carries one uploaded file through the service layer.
type ImageUpload struct {
	Reader      io.Reader
	Filename    string
	ContentType string
}
