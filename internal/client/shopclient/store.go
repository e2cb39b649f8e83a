package shopclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Keys of the local store
const (
	KeyCart               = "cart"
	KeyRecentlyViewed     = "recentlyViewed"
	KeyPendingReviews     = "pendingReviews"
	KeyComparisonProducts = "comparisonProducts"
	KeyAuthToken          = "auth-token"
)

// RecentlyViewedLimit caps the recently viewed list
const RecentlyViewedLimit = 10

// PendingReview is a review the API could not take, kept for later
type PendingReview struct {
	ProductID uuid.UUID `json:"productId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	QueuedAt  time.Time `json:"queuedAt"`
}

// Store is a file-backed JSON key/value store. Writes replace the file
// atomically; concurrent processes sharing a file may still lose updates.
type Store struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

// OpenStore returns a store backed by path. The file is created on the
// first write.
func OpenStore(path string) *Store {
	return &Store{path: path, now: time.Now}
}

// Path is the backing file
func (s *Store) Path() string {
	return s.path
}

// Get decodes the value under key into v. It reports false when the key
// is absent.
func (s *Store) Get(key string, v any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return false, err
	}
	raw, ok := data[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("local store key %q: %w", key, err)
	}
	return true, nil
}

// Set stores v under key
func (s *Store) Set(key string, v any) error {
	return s.update(func(data map[string]json.RawMessage) error {
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		data[key] = raw
		return nil
	})
}

// Delete removes key
func (s *Store) Delete(key string) error {
	return s.update(func(data map[string]json.RawMessage) error {
		delete(data, key)
		return nil
	})
}

// PushRecentlyViewed moves id to the front of the recently viewed list,
// dropping duplicates and anything past RecentlyViewedLimit
func (s *Store) PushRecentlyViewed(id uuid.UUID) error {
	return s.update(func(data map[string]json.RawMessage) error {
		var ids []uuid.UUID
		if raw, ok := data[KeyRecentlyViewed]; ok {
			// a corrupt list is replaced rather than blocking the push
			_ = json.Unmarshal(raw, &ids)
		}
		ids = slices.DeleteFunc(ids, func(v uuid.UUID) bool { return v == id })
		ids = append([]uuid.UUID{id}, ids...)
		if len(ids) > RecentlyViewedLimit {
			ids = ids[:RecentlyViewedLimit]
		}
		raw, err := json.Marshal(ids)
		if err != nil {
			return err
		}
		data[KeyRecentlyViewed] = raw
		return nil
	})
}

// RecentlyViewed returns the recently viewed ids, most recent first
func (s *Store) RecentlyViewed() ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if _, err := s.Get(KeyRecentlyViewed, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// QueueReview appends r to the pending reviews
func (s *Store) QueueReview(r PendingReview) error {
	if r.QueuedAt.IsZero() {
		r.QueuedAt = s.now().UTC()
	}
	return s.update(func(data map[string]json.RawMessage) error {
		var pending []PendingReview
		if raw, ok := data[KeyPendingReviews]; ok {
			if err := json.Unmarshal(raw, &pending); err != nil {
				return fmt.Errorf("local store key %q: %w", KeyPendingReviews, err)
			}
		}
		raw, err := json.Marshal(append(pending, r))
		if err != nil {
			return err
		}
		data[KeyPendingReviews] = raw
		return nil
	})
}

// PendingReviews lists the queued reviews, oldest first
func (s *Store) PendingReviews() ([]PendingReview, error) {
	var pending []PendingReview
	if _, err := s.Get(KeyPendingReviews, &pending); err != nil {
		return nil, err
	}
	return pending, nil
}

func (s *Store) update(fn func(map[string]json.RawMessage) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return err
	}
	if err := fn(data); err != nil {
		return err
	}
	return s.save(data)
}

func (s *Store) load() (map[string]json.RawMessage, error) {
	data := make(map[string]json.RawMessage)
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return data, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read local store: %w", err)
	}
	if len(b) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, fmt.Errorf("failed to parse local store %s: %w", s.path, err)
	}
	return data, nil
}

func (s *Store) save(data map[string]json.RawMessage) error {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create local store directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write local store: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write local store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write local store: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace local store: %w", err)
	}
	return nil
}
