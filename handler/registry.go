// Package handler keeps the named custom handlers an embedding application
// registers for commands that bypass the HTTP pipeline.
package handler

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/hypernetix/rclib/domain"
	"github.com/hypernetix/rclib/ports"
)

// Registry is a concurrency-safe name -> handler table.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]ports.Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]ports.Handler)}
}

var _ ports.HandlerRegistry = (*Registry)(nil)

// Register binds a handler to a name, replacing any previous binding.
func (r *Registry) Register(name string, h ports.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = h
}

// Lookup returns the handler bound to name.
func (r *Registry) Lookup(name string) (ports.Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[name]
	return h, ok
}

// Validate checks that every referenced handler name is registered. All
// missing names are reported at once so a mapping author fixes them in one
// pass.
func (r *Registry) Validate(names []string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var missing []string
	for _, name := range names {
		if name == "" {
			continue
		}
		if _, ok := r.handlers[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return &domain.OpError{
		Op:   "handler.validate",
		Kind: domain.KindInvalidConfig,
		Err:  fmt.Errorf("%w: %s", domain.ErrHandlerNotFound, strings.Join(missing, ", ")),
	}
}
