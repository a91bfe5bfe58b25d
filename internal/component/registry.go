// internal/component/registry.go
//
// Component registry (cycle-free).
//
// Each concrete component lives under components/<name> and calls
// component.Register() in an init() function.  cmd/web mounts every
// component’s Routes() at “/” and, before mounting, invokes Init() when the
// component implements the Initializer interface.

package component

import (
	"slices"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"

	"github.com/yanizio/cmwidget/internal/editor"
	"github.com/yanizio/cmwidget/internal/view"
)

// Host exposes process resources to Components during Init.
type Host interface {
	// DB is nil when no database is configured.
	DB() *sqlx.DB
	EditorSettings() editor.Settings
	Views() *view.Engine
}

// Initializer is optional.  If a Component implements it, Mount calls
// Init(host) once before mounting its routes.
type Initializer interface {
	Init(Host) error
}

// Component contract.
//
// Routes() registers BOTH page and API endpoints on the shared router, e.g:
//
//	r.Get("/forms/{component}/{form}", getForm)
//	r.Route("/api/forms", func(api chi.Router) { ... })
//
// Components share one router, so paths must not collide.
type Component interface {
	Name() string
	Routes(r chi.Router)
}

var (
	mu       sync.RWMutex
	registry = map[string]Component{}
)

// Register is invoked from component init() functions.
func Register(c Component) {
	mu.Lock()
	registry[c.Name()] = c
	mu.Unlock()
}

// All returns every registered component ordered by name.
func All() []Component {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Component, 0, len(registry))
	for _, c := range registry {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b Component) int { return strings.Compare(a.Name(), b.Name()) })
	return out
}

// Mount initialises every registered component against host and registers
// its routes on r.  The first Init error aborts.
func Mount(r chi.Router, host Host) error {
	for _, c := range All() {
		if in, ok := c.(Initializer); ok {
			if err := in.Init(host); err != nil {
				return &InitError{Component: c.Name(), Err: err}
			}
		}
		c.Routes(r)
	}
	return nil
}

// InitError reports which component failed to initialise.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string { return "component " + e.Component + ": " + e.Err.Error() }
func (e *InitError) Unwrap() error { return e.Err }
