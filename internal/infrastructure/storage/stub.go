package storage

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	catalogapp "github.com/shopfront/backend/internal/application/catalog"
)

var _ catalogapp.ObjectStorageService = (*StubObjectStorage)(nil)

// StubObjectStorage stands in for S3 when storage is disabled. Upload URLs
// point at BaseURL and every presigned key is reported as existing, so the
// admin upload flow works end to end in development.
type StubObjectStorage struct {
	BaseURL string

	mu      sync.Mutex
	deleted map[string]bool
}

// NewStubObjectStorage creates a stub serving from baseURL
func NewStubObjectStorage(baseURL string) *StubObjectStorage {
	if baseURL == "" {
		baseURL = "http://localhost:8080/media"
	}
	return &StubObjectStorage{
		BaseURL: strings.TrimRight(baseURL, "/"),
		deleted: make(map[string]bool),
	}
}

func (s *StubObjectStorage) GenerateUploadURL(ctx context.Context, key, contentType string, expiresIn time.Duration) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, ErrStorageKeyRequired
	}
	if expiresIn <= 0 {
		expiresIn = 15 * time.Minute
	}
	expiresAt := time.Now().Add(expiresIn)

	s.mu.Lock()
	delete(s.deleted, key)
	s.mu.Unlock()

	q := url.Values{"expires": {expiresAt.UTC().Format(time.RFC3339)}}
	return s.BaseURL + "/upload/" + key + "?" + q.Encode(), expiresAt, nil
}

func (s *StubObjectStorage) PublicURL(key string) string {
	return s.BaseURL + "/" + strings.TrimLeft(key, "/")
}

func (s *StubObjectStorage) DeleteObject(ctx context.Context, key string) error {
	if key == "" {
		return ErrStorageKeyRequired
	}
	s.mu.Lock()
	s.deleted[key] = true
	s.mu.Unlock()
	return nil
}

func (s *StubObjectStorage) ObjectExists(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, ErrStorageKeyRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.deleted[key], nil
}
