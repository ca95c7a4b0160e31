package media

import (
	"context"
	"errors"
	"path"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps uploads in process memory. Used for local development
// when no bucket is configured.
type MemoryStore struct {
	baseURL string
	mu      sync.RWMutex
	objects map[string]File
}

// NewMemoryStore serves object URLs under baseURL
func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		objects: make(map[string]File),
	}
}

func (s *MemoryStore) Validate(f File) Validation {
	return Validate(f)
}

func (s *MemoryStore) Store(ctx context.Context, f File, folder string) (Stored, error) {
	if v := Validate(f); !v.Valid {
		return Stored{}, errors.New(v.Error)
	}

	key := path.Join(folder, uuid.NewString()+f.Extension())

	s.mu.Lock()
	s.objects[key] = f
	s.mu.Unlock()

	return Stored{URL: s.baseURL + "/" + key, Key: key}, nil
}

func (s *MemoryStore) Delete(ctx context.Context, urlOrKey string) error {
	key := urlOrKey
	if strings.Contains(urlOrKey, "://") {
		if !strings.HasPrefix(urlOrKey, s.baseURL+"/") {
			return ErrForeignObject
		}
		key = strings.TrimPrefix(urlOrKey, s.baseURL+"/")
	}

	s.mu.Lock()
	delete(s.objects, key)
	s.mu.Unlock()
	return nil
}

// Get returns a stored object
func (s *MemoryStore) Get(key string) (File, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.objects[key]
	return f, ok
}
