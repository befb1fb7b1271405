package gcs

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"

	"github.com/dwiyanpr/product-catalog-api/internal/application"
	"github.com/dwiyanpr/product-catalog-api/pkg/helpers"
)

// Store implements application.BlobStore on top of Google Cloud Storage.
// Object keys are folder-scoped: <folder>/<uuid><ext>.
type Store struct {
	Client *storage.Client
	Bucket string
}

func NewStore(client *storage.Client, bucket string) *Store {
	return &Store{Client: client, Bucket: bucket}
}

func (s *Store) Store(ctx context.Context, folder, filename, contentType string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	key := filepath.ToSlash(filepath.Join(folder, uuid.NewString()+ext))
	if err := helpers.UploadObject(ctx, s.Client, s.Bucket, key, contentType, r); err != nil {
		return "", err
	}
	return key, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return helpers.DeleteObject(ctx, s.Client, s.Bucket, key)
}

func (s *Store) URL(key string) string {
	return helpers.PublicURL(s.Bucket, key)
}

var _ application.BlobStore = (*Store)(nil)
