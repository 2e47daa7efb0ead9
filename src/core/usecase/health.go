package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"malayalees/src/core/ports"
)

// HealthService checks the application's dependencies.
type HealthService struct {
	components map[string]ports.ExternalService
	log        *slog.Logger
}

// NewHealthService creates a HealthService. Nil components are skipped.
func NewHealthService(log *slog.Logger, components map[string]ports.ExternalService) *HealthService {
	checked := make(map[string]ports.ExternalService, len(components))
	for name, c := range components {
		if c != nil {
			checked[name] = c
		}
	}
	return &HealthService{components: checked, log: log}
}

// HealthStatus represents the health of the application.
type HealthStatus struct {
	Status     string                     `json:"status"`
	Components map[string]ComponentHealth `json:"components,omitempty"`
}

// ComponentHealth represents the health of a single component.
type ComponentHealth struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	LatencyMS int64  `json:"latency_ms"`
}

// healthTimeout bounds each component check.
const healthTimeout = 3 * time.Second

// Check probes every component concurrently. One failing component marks the
// whole status as degraded.
func (s *HealthService) Check(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Status:     "ok",
		Components: make(map[string]ComponentHealth, len(s.components)),
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for name, c := range s.components {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h := s.probe(ctx, name, c)

			mu.Lock()
			defer mu.Unlock()
			status.Components[name] = h
			if h.Status != "healthy" {
				status.Status = "degraded"
			}
		}()
	}
	wg.Wait()

	return status
}

func (s *HealthService) probe(ctx context.Context, name string, c ports.ExternalService) ComponentHealth {
	checkCtx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	start := time.Now()
	err := c.Health(checkCtx)
	h := ComponentHealth{Status: "healthy", LatencyMS: time.Since(start).Milliseconds()}
	if err != nil {
		h.Status = "unhealthy"
		h.Message = err.Error()
		s.log.Warn("health check failed", "component", name, "error", err)
	}
	return h
}
