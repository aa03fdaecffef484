package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/tmarkko/quillcast/pkg/analysis"
	"github.com/tmarkko/quillcast/pkg/capture"
	"github.com/tmarkko/quillcast/pkg/dsp"
)

// ErrProviderNotRegistered is returned by Create* methods when no factory
// has been registered under the requested provider name.
var ErrProviderNotRegistered = errors.New("config: provider not registered")

// Registry maps provider names to their constructor functions for each
// provider type. It is safe for concurrent use.
type Registry struct {
	mu          sync.RWMutex
	sources     map[string]func(*Config) (capture.Source, error)
	filters     map[string]func(*Config) (dsp.Filter, error)
	recognizers map[string]func(*Config) (analysis.Engine, error)
}

// NewRegistry returns an empty, ready-to-use [Registry].
func NewRegistry() *Registry {
	return &Registry{
		sources:     make(map[string]func(*Config) (capture.Source, error)),
		filters:     make(map[string]func(*Config) (dsp.Filter, error)),
		recognizers: make(map[string]func(*Config) (analysis.Engine, error)),
	}
}

// RegisterSource registers a capture source factory under name.
// Subsequent calls with the same name overwrite the previous registration.
func (r *Registry) RegisterSource(name string, factory func(*Config) (capture.Source, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[name] = factory
}

// RegisterFilter registers a filter factory under name.
func (r *Registry) RegisterFilter(name string, factory func(*Config) (dsp.Filter, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.filters[name] = factory
}

// RegisterRecognizer registers a speech-recognition engine factory under
// name.
func (r *Registry) RegisterRecognizer(name string, factory func(*Config) (analysis.Engine, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recognizers[name] = factory
}

// CreateSource instantiates the capture source registered under name.
func (r *Registry) CreateSource(name string, cfg *Config) (capture.Source, error) {
	r.mu.RLock()
	factory, ok := r.sources[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: source %q", ErrProviderNotRegistered, name)
	}
	return factory(cfg)
}

// CreateFilter instantiates the filter registered under name.
func (r *Registry) CreateFilter(name string, cfg *Config) (dsp.Filter, error) {
	r.mu.RLock()
	factory, ok := r.filters[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: filter %q", ErrProviderNotRegistered, name)
	}
	return factory(cfg)
}

// CreateRecognizer instantiates the speech-recognition engine registered
// under name.
func (r *Registry) CreateRecognizer(name string, cfg *Config) (analysis.Engine, error) {
	r.mu.RLock()
	factory, ok := r.recognizers[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: recognizer %q", ErrProviderNotRegistered, name)
	}
	return factory(cfg)
}
