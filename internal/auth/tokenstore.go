package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenStore holds the credential attached to outgoing catalog requests.
// The backing medium is an implementation detail.
type TokenStore interface {
	Get(ctx context.Context) (string, bool)
	Set(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// Sessions hands out a TokenStore per browser session
type Sessions interface {
	ForSession(sessionID string) TokenStore
}

var now = time.Now

// Usable reports whether token can be sent upstream. Blank tokens and JWTs
// whose exp claim has passed are not usable; opaque tokens always are.
// Signatures are not verified here, that is the upstream's job.
func Usable(token string) bool {
	token = strings.TrimSpace(token)
	if token == "" {
		return false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return true
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return now().Before(exp.Time)
}

// MemoryTokenStore keeps the token in process memory
type MemoryTokenStore struct {
	mu    sync.RWMutex
	token string
}

// NewMemoryTokenStore creates an empty in-memory store
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

func (s *MemoryTokenStore) Get(ctx context.Context) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !Usable(s.token) {
		return "", false
	}
	return s.token, true
}

func (s *MemoryTokenStore) Set(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = strings.TrimSpace(token)
	return nil
}

func (s *MemoryTokenStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}

// MemorySessions keeps one MemoryTokenStore per session id.
// Used when Redis is unavailable.
type MemorySessions struct {
	mu     sync.Mutex
	stores map[string]*MemoryTokenStore
}

func NewMemorySessions() *MemorySessions {
	return &MemorySessions{stores: make(map[string]*MemoryTokenStore)}
}

func (m *MemorySessions) ForSession(sessionID string) TokenStore {
	m.mu.Lock()
	defer m.mu.Unlock()

	store, ok := m.stores[sessionID]
	if !ok {
		store = NewMemoryTokenStore()
		m.stores[sessionID] = store
	}
	return store
}

// FileTokenStore persists the token in a file readable only by the owner.
// It backs the admin console between invocations.
type FileTokenStore struct {
	path string
}

// NewFileTokenStore stores the token at path
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

// DefaultTokenPath is the admin console token location under the user config dir
func DefaultTokenPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve config dir: %w", err)
	}
	return filepath.Join(dir, "storefront", "token"), nil
}

func (s *FileTokenStore) Get(ctx context.Context) (string, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", false
	}
	token := strings.TrimSpace(string(data))
	if !Usable(token) {
		return "", false
	}
	return token, true
}

func (s *FileTokenStore) Set(ctx context.Context, token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create token dir: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(strings.TrimSpace(token)), 0o600); err != nil {
		return fmt.Errorf("failed to write token: %w", err)
	}
	return nil
}

func (s *FileTokenStore) Clear(ctx context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove token: %w", err)
	}
	return nil
}
