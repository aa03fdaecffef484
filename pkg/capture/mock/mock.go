// Package mock provides a test double and synthetic generator for the
// capture.Source interface.
//
// Use Source to feed scripted half-windows (or scripted failures) into the
// capture stage and to inspect the start/stop discipline the stage applies.
// With a non-zero Interval the mock paces reads like a real device, which
// also makes it usable as the "synthetic" source when running the binary
// without a microphone.
package mock

import (
	"sync"
	"time"

	"github.com/tmarkko/quillcast/pkg/capture"
	"github.com/tmarkko/quillcast/pkg/status"
)

// Compile-time assertion that Source satisfies capture.Source.
var _ capture.Source = (*Source)(nil)

// Source is a scripted capture.Source.
type Source struct {
	mu sync.Mutex

	// Windows are returned by successive Reads, in order. When the script
	// is exhausted Read fills dst with silence.
	Windows [][]float32

	// StartErrs, StopErrs and ReadErrs are consumed one per call; a nil
	// entry (or an exhausted script) means success.
	StartErrs []error
	StopErrs  []error
	ReadErrs  []error

	// Interval, when non-zero, is slept by every successful Read to pace
	// the synthetic stream like a real blocking device.
	Interval time.Duration

	// Call counters, readable after the fact.
	Starts int
	Stops  int
	Reads  int

	active bool
	next   int
}

// Start consumes the next scripted start error.
func (s *Source) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Starts++
	if err := takeErr(&s.StartErrs); err != nil {
		return err
	}
	if s.active {
		return status.New(status.InvalidOperation, "mock source already started")
	}
	s.active = true
	return nil
}

// Stop consumes the next scripted stop error.
func (s *Source) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Stops++
	if err := takeErr(&s.StopErrs); err != nil {
		return err
	}
	if !s.active {
		return status.New(status.InvalidOperation, "mock source not started")
	}
	s.active = false
	return nil
}

// Read copies the next scripted window into dst, or silence when the script
// is exhausted.
func (s *Source) Read(dst []float32) error {
	s.mu.Lock()
	s.Reads++
	if err := takeErr(&s.ReadErrs); err != nil {
		s.mu.Unlock()
		return err
	}
	var window []float32
	if s.next < len(s.Windows) {
		window = s.Windows[s.next]
		s.next++
	}
	interval := s.Interval
	s.mu.Unlock()

	for i := range dst {
		if i < len(window) {
			dst[i] = window[i]
		} else {
			dst[i] = 0
		}
	}
	if interval > 0 {
		time.Sleep(interval)
	}
	return nil
}

// Active reports whether the mock considers itself started.
func (s *Source) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Close marks the source inactive.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = false
	return nil
}

// Exhausted reports whether every scripted window has been read.
func (s *Source) Exhausted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next >= len(s.Windows)
}

// takeErr pops the first scripted error, shrinking the script.
func takeErr(errs *[]error) error {
	if len(*errs) == 0 {
		return nil
	}
	err := (*errs)[0]
	*errs = (*errs)[1:]
	return err
}
