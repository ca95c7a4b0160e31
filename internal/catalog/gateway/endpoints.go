package gateway

import (
	"strings"
	"sync"

	"github.com/tair/storefront/pkg/logger"
)

// DefaultBaseURL is used when no catalog API instance is configured
const DefaultBaseURL = "http://localhost:8081"

// Endpoints rotates over catalog API instances in round-robin order
type Endpoints struct {
	urls    []string
	current int
	mu      sync.Mutex
}

// NewEndpoints trims trailing slashes and drops blank entries
func NewEndpoints(urls []string) *Endpoints {
	clean := make([]string, 0, len(urls))
	for _, u := range urls {
		u = strings.TrimRight(strings.TrimSpace(u), "/")
		if u != "" {
			clean = append(clean, u)
		}
	}
	if len(clean) == 0 {
		clean = []string{DefaultBaseURL}
	}

	logger.Logger.Info().
		Int("instance_count", len(clean)).
		Strs("instances", clean).
		Msg("Catalog API endpoints initialized")

	return &Endpoints{urls: clean}
}

// Next returns the next instance
func (e *Endpoints) Next() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	u := e.urls[e.current]
	e.current = (e.current + 1) % len(e.urls)
	return u
}

// All returns a copy of the configured instances
func (e *Endpoints) All() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string{}, e.urls...)
}
