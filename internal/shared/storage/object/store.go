package object

import (
	"context"
	"io"
)

// ArtifactStore saves and reads exported report files.
type ArtifactStore interface {
	SaveWithKey(ctx context.Context, storageKey string, contentType string, r io.Reader) (sizeBytes int64, err error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
	Path(storageKey string) string
}
