package health

import (
	"context"
	"sync"
	"time"

	"github.com/tair/storefront/pkg/logger"
)

// Pinger is a dependency whose reachability can be checked
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// DependencyHealth represents the health status of one dependency
type DependencyHealth struct {
	Name      string        `json:"name"`
	Status    string        `json:"status"` // healthy, unhealthy
	Latency   time.Duration `json:"latency_ms"`
	Error     string        `json:"error,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// Report represents the overall storefront health
type Report struct {
	Service      string                      `json:"service"`
	Status       string                      `json:"status"` // healthy, degraded, unhealthy
	Dependencies map[string]DependencyHealth `json:"dependencies"`
	Circuit      map[string]interface{}      `json:"circuit,omitempty"`
	Uptime       time.Duration               `json:"uptime_seconds"`
}

// Checker checks the storefront dependencies. The dependency named
// critical decides between degraded and unhealthy.
type Checker struct {
	service   string
	critical  string
	deps      map[string]Pinger
	circuit   func() map[string]interface{}
	startTime time.Time
}

// NewChecker creates a checker. critical names the dependency without
// which the storefront cannot serve live data.
func NewChecker(service, critical string, deps map[string]Pinger, circuit func() map[string]interface{}) *Checker {
	return &Checker{
		service:   service,
		critical:  critical,
		deps:      deps,
		circuit:   circuit,
		startTime: time.Now(),
	}
}

// CheckDependency checks a single dependency
func (h *Checker) CheckDependency(ctx context.Context, name string, dep Pinger) DependencyHealth {
	start := time.Now()
	result := DependencyHealth{Name: name, Status: "healthy", Timestamp: start}

	if err := dep.Ping(ctx); err != nil {
		result.Status = "unhealthy"
		result.Error = err.Error()
	}
	result.Latency = time.Since(start)
	return result
}

// CheckAll checks every dependency concurrently
func (h *Checker) CheckAll(ctx context.Context) Report {
	deps := make(map[string]DependencyHealth, len(h.deps))
	var wg sync.WaitGroup
	var mu sync.Mutex

	for name, dep := range h.deps {
		wg.Add(1)
		go func(n string, d Pinger) {
			defer wg.Done()
			health := h.CheckDependency(ctx, n, d)

			mu.Lock()
			deps[n] = health
			mu.Unlock()

			if health.Status == "healthy" {
				logger.Logger.Debug().
					Str("dependency", n).
					Dur("latency", health.Latency).
					Msg("Dependency health check")
			} else {
				logger.Logger.Warn().
					Str("dependency", n).
					Str("error", health.Error).
					Msg("Dependency health check failed")
			}
		}(name, dep)
	}

	wg.Wait()

	report := Report{
		Service:      h.service,
		Status:       h.overallStatus(deps),
		Dependencies: deps,
		Uptime:       time.Since(h.startTime),
	}
	if h.circuit != nil {
		report.Circuit = h.circuit()
	}
	return report
}

// overallStatus is unhealthy when the critical dependency is down and
// degraded when anything else is
func (h *Checker) overallStatus(deps map[string]DependencyHealth) string {
	status := "healthy"
	for name, dep := range deps {
		if dep.Status == "healthy" {
			continue
		}
		if name == h.critical {
			return "unhealthy"
		}
		status = "degraded"
	}
	return status
}

// QuickCheck reports liveness without touching dependencies
func (h *Checker) QuickCheck() map[string]interface{} {
	return map[string]interface{}{
		"status":    "healthy",
		"service":   h.service,
		"uptime":    time.Since(h.startTime).Seconds(),
		"timestamp": time.Now(),
	}
}
