// Package services holds the process-wide collaborators the engine consumes
// through interfaces: audio, the display, and whatever else an application
// registers. Services are passed to the engine explicitly and started and
// stopped by a Registry in a fixed order.
package services

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-scenegraph/common"
)

// Service is a component with an explicit lifecycle.
type Service interface {
	// Name identifies the service in logs and errors.
	Name() string

	// Init starts the service.
	//
	// Returns:
	//   - error: if the service cannot start
	Init() error

	// Shutdown stops the service and releases its resources.
	//
	// Returns:
	//   - error: if the service did not stop cleanly
	Shutdown() error
}

// Audio plays named sounds.
type Audio interface {
	Service

	// Play starts the named sound.
	//
	// Parameters:
	//   - name: the sound to play
	//
	// Returns:
	//   - error: if the sound is unknown or cannot play
	Play(name string) error
}

// Display is the surface the engine renders to.
type Display interface {
	Service

	// Width returns the drawable width in pixels.
	Width() int

	// Height returns the drawable height in pixels.
	Height() int

	// IsRunning reports whether the display is still open.
	IsRunning() bool
}

// Registry starts services in registration order and stops them in reverse.
type Registry struct {
	mu       *sync.Mutex
	services []Service
	started  int
}

// NewRegistry creates a Registry holding services, in order.
//
// Parameters:
//   - services: the services to register
//
// Returns:
//   - *Registry: the registry
func NewRegistry(services ...Service) *Registry {
	r := &Registry{mu: &sync.Mutex{}}
	for _, s := range services {
		r.Register(s)
	}
	return r
}

// Register appends s. It panics once Init has run.
func (r *Registry) Register(s Service) {
	if s == nil {
		panic("services: Register requires a non-nil Service")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started > 0 {
		panic(fmt.Sprintf("services: Register(%q) after Init", s.Name()))
	}
	r.services = append(r.services, s)
}

// Services returns the registered services in order.
func (r *Registry) Services() []Service {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Service(nil), r.services...)
}

// Init starts every service in registration order. When one fails, the
// services already started are shut down in reverse order and the error is
// returned.
//
// Returns:
//   - error: the first Init failure, joined with any rollback failures
func (r *Registry) Init() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := r.started; i < len(r.services); i++ {
		s := r.services[i]
		if err := s.Init(); err != nil {
			initErr := fmt.Errorf("services: init %s: %w", s.Name(), err)
			return errors.Join(initErr, r.shutdownLocked())
		}
		r.started = i + 1
		common.Logger().Debug("service started", "service", s.Name())
	}
	return nil
}

// Shutdown stops every started service in reverse registration order. Every
// service is stopped even when an earlier one fails.
//
// Returns:
//   - error: every Shutdown failure, joined
func (r *Registry) Shutdown() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.shutdownLocked()
}

func (r *Registry) shutdownLocked() error {
	var errs []error
	for i := r.started - 1; i >= 0; i-- {
		s := r.services[i]
		if err := s.Shutdown(); err != nil {
			errs = append(errs, fmt.Errorf("services: shutdown %s: %w", s.Name(), err))
			common.Logger().Warn("service shutdown failed", "service", s.Name(), "err", err)
			continue
		}
		common.Logger().Debug("service stopped", "service", s.Name())
	}
	r.started = 0
	return errors.Join(errs...)
}

// Audio returns the first registered Audio service, or a NopAudio.
func (r *Registry) Audio() Audio {
	if a, ok := find[Audio](r); ok {
		return a
	}
	return NopAudio{}
}

// Display returns the first registered Display.
//
// Returns:
//   - Display: the display, or nil
//   - bool: false when none is registered
func (r *Registry) Display() (Display, bool) {
	return find[Display](r)
}

func find[T Service](r *Registry) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.services {
		if t, ok := s.(T); ok {
			return t, true
		}
	}
	var zero T
	return zero, false
}

// NopAudio is an Audio that plays nothing.
type NopAudio struct{}

var _ Audio = NopAudio{}

func (NopAudio) Name() string      { return "nop-audio" }
func (NopAudio) Init() error       { return nil }
func (NopAudio) Shutdown() error   { return nil }
func (NopAudio) Play(string) error { return nil }
