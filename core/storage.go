package core

import (
	"context"
	"io"
)

// ProgressFunc receives a completion percentage in [0, 100]. Implementations of
// FileStorage must invoke it with monotonically non-decreasing values and report
// 100 before returning successfully.
type ProgressFunc func(pct int)

// FileStorage is any service that can move one binary object to durable storage
// and resolve a stable retrieval URL for it.
type FileStorage interface {
	// Upload stores the content read from r at key and returns the object's public URL.
	// A failed transfer never returns a URL; the returned error is a *UploadError
	// carrying the underlying transport failure.
	Upload(ctx context.Context, r io.Reader, size int64, contentType, key string, onProgress ProgressFunc) (string, error)

	// PublicURL derives the publicly resolvable URL for an object key.
	PublicURL(key string) string
}
