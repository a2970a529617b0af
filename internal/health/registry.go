// Package health aggregates named dependency checks for the readiness
// endpoint.
package health

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// CheckFunc probes one dependency.
type CheckFunc func(ctx context.Context) error

// Registry manages named health checks
type Registry struct {
	mu     sync.RWMutex
	checks map[string]CheckFunc
}

// NewRegistry creates a new health registry
func NewRegistry() *Registry {
	return &Registry{
		checks: make(map[string]CheckFunc),
	}
}

// Register adds a check to the registry
func (r *Registry) Register(name string, check CheckFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checks[name] = check
}

// List returns all registered check names
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.checks))
	for name := range r.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CheckAll runs every registered check and returns per-check results.
func (r *Registry) CheckAll(ctx context.Context) map[string]error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make(map[string]error)
	for name, check := range r.checks {
		results[name] = check(ctx)
	}
	return results
}

// Ready runs every check and returns a single error naming the failed
// dependencies, or nil when everything is healthy.
func (r *Registry) Ready(ctx context.Context) error {
	var failed []string
	for name, err := range r.CheckAll(ctx) {
		if err != nil {
			failed = append(failed, name)
		}
	}
	if len(failed) == 0 {
		return nil
	}
	sort.Strings(failed)
	return fmt.Errorf("dependencies not ready: %s", strings.Join(failed, ", "))
}
