// Package ports defines the small interfaces the execution layers depend on,
// so scenario and harness code can be exercised against fakes.
package ports

import (
	"context"

	"github.com/hypernetix/rclib/domain"
)

// RequestExecutor issues exactly one HTTP call for a resolved descriptor.
type RequestExecutor interface {
	Do(ctx context.Context, desc domain.RequestDescriptor) (domain.Response, error)
}

// Handler is imperative logic supplied by the embedding application. The
// core hands it the final bindings and never interprets its behavior.
type Handler func(vars domain.Vars, baseURL string, mode domain.OutputMode) error

// HandlerRegistry looks up named handlers for SpecCustomHandler dispatch.
type HandlerRegistry interface {
	Lookup(name string) (Handler, bool)
}
