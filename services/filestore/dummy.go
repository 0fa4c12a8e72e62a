package filesvc

import (
	"context"
	"io"
	"sync"

	"github.com/rawadhq/rawad/core"
)

// DummyService stores uploads in memory. Used in debug/test runs where no
// object store is reachable.
type DummyService struct {
	mu      sync.Mutex
	objects map[string][]byte

	// Err, when set, fails every upload
	Err error
}

var _ core.FileStorage = (*DummyService)(nil)

func NewDummyService() *DummyService {
	return &DummyService{objects: make(map[string][]byte)}
}

func (svc *DummyService) Upload(ctx context.Context, r io.Reader, size int64, contentType, key string, onProgress core.ProgressFunc) (string, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	if svc.Err != nil {
		return "", &core.UploadError{Err: svc.Err, Key: key}
	}

	content, err := io.ReadAll(r)
	if err != nil {
		return "", &core.UploadError{Err: err, Key: key}
	}
	svc.objects[key] = content

	if onProgress != nil {
		for _, pct := range []int{25, 50, 75, 100} {
			onProgress(pct)
		}
	}
	return svc.PublicURL(key), nil
}

func (svc *DummyService) PublicURL(key string) string {
	return "https://files.invalid/" + key
}

// Object returns the stored content of key.
func (svc *DummyService) Object(key string) ([]byte, bool) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	content, ok := svc.objects[key]
	return content, ok
}
