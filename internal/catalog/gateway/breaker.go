package gateway

import (
	"errors"
	"sync"
	"time"

	"github.com/tair/storefront/pkg/logger"
)

// ErrCircuitOpen is returned without contacting the upstream while the breaker is open
var ErrCircuitOpen = errors.New("catalog api circuit breaker is open")

// BreakerState is the state of the upstream circuit breaker
type BreakerState string

const (
	BreakerClosed   BreakerState = "closed"
	BreakerOpen     BreakerState = "open"
	BreakerHalfOpen BreakerState = "half-open"
)

// halfOpenSuccesses closes a half-open breaker
const halfOpenSuccesses = 3

// Breaker stops calling the catalog API after consecutive failures and
// probes it again once the cooldown has passed.
type Breaker struct {
	name            string
	maxFailures     int
	cooldown        time.Duration
	state           BreakerState
	failures        int
	successCount    int
	lastStateChange time.Time
	mu              sync.Mutex
	now             func() time.Time
}

// NewBreaker creates a closed breaker
func NewBreaker(name string, maxFailures int, cooldown time.Duration) *Breaker {
	if maxFailures <= 0 {
		maxFailures = 5
	}
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	return &Breaker{
		name:            name,
		maxFailures:     maxFailures,
		cooldown:        cooldown,
		state:           BreakerClosed,
		lastStateChange: time.Now(),
		now:             time.Now,
	}
}

// Call runs fn unless the breaker is open. A non-nil error from fn counts
// as an upstream failure.
func (b *Breaker) Call(fn func() error) error {
	b.mu.Lock()
	if b.state == BreakerOpen && b.now().Sub(b.lastStateChange) > b.cooldown {
		b.transition(BreakerHalfOpen)
		b.successCount = 0
		logger.Logger.Info().
			Str("circuit", b.name).
			Msg("Circuit breaker transitioning to half-open")
	}
	state := b.state
	b.mu.Unlock()

	if state == BreakerOpen {
		return ErrCircuitOpen
	}

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.onFailure()
	} else {
		b.onSuccess()
	}
	return err
}

func (b *Breaker) onFailure() {
	b.failures++

	if b.state == BreakerHalfOpen {
		b.transition(BreakerOpen)
		logger.Logger.Warn().
			Str("circuit", b.name).
			Msg("Circuit breaker reopened after half-open failure")
		return
	}
	if b.failures >= b.maxFailures && b.state != BreakerOpen {
		b.transition(BreakerOpen)
		logger.Logger.Error().
			Str("circuit", b.name).
			Int("failures", b.failures).
			Int("threshold", b.maxFailures).
			Msg("Circuit breaker opened")
	}
}

func (b *Breaker) onSuccess() {
	switch b.state {
	case BreakerHalfOpen:
		b.successCount++
		if b.successCount >= halfOpenSuccesses {
			b.transition(BreakerClosed)
			b.failures = 0
			b.successCount = 0
			logger.Logger.Info().
				Str("circuit", b.name).
				Msg("Circuit breaker closed after successful recovery")
		}
	case BreakerClosed:
		b.failures = 0
	}
}

func (b *Breaker) transition(to BreakerState) {
	b.state = to
	b.lastStateChange = b.now()
	breakerState.WithLabelValues(b.name).Set(stateValue(to))
}

// State returns the current state
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Stats is exposed on the readiness endpoint
func (b *Breaker) Stats() map[string]interface{} {
	b.mu.Lock()
	defer b.mu.Unlock()

	return map[string]interface{}{
		"name":              b.name,
		"state":             b.state,
		"failures":          b.failures,
		"max_failures":      b.maxFailures,
		"time_since_change": b.now().Sub(b.lastStateChange).Seconds(),
	}
}

func stateValue(s BreakerState) float64 {
	switch s {
	case BreakerOpen:
		return 2
	case BreakerHalfOpen:
		return 1
	default:
		return 0
	}
}
