package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Checker probes one external dependency for the health endpoint.
type Checker interface {
	Name() string
	Check(ctx context.Context) error
}

type checkerFunc struct {
	name string
	fn   func(ctx context.Context) error
}

func (c checkerFunc) Name() string                    { return c.name }
func (c checkerFunc) Check(ctx context.Context) error { return c.fn(ctx) }

// NewChecker wraps a probe function as a Checker.
func NewChecker(name string, fn func(ctx context.Context) error) Checker {
	return checkerFunc{name: name, fn: fn}
}

// handleHealth reports liveness plus the status of registered dependency
// probes. Probe failures degrade the report but keep the 200 status; the
// agent itself is fail-open about its capabilities.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := "ok"
	components := make(map[string]string, len(s.checkers))
	for _, c := range s.checkers {
		if err := c.Check(ctx); err != nil {
			components[c.Name()] = err.Error()
			status = "degraded"
		} else {
			components[c.Name()] = "ok"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":     status,
		"components": components,
	})
}
