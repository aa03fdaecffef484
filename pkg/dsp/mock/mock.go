// Package mock provides a test double for the dsp.Filter interface.
package mock

import (
	"sync"

	"github.com/tmarkko/quillcast/pkg/dsp"
)

// Compile-time assertion that Filter satisfies dsp.Filter.
var _ dsp.Filter = (*Filter)(nil)

// Filter records every submitted block and can apply a transform or fail on
// demand.
type Filter struct {
	mu sync.Mutex

	// Transform, when non-nil, is applied in place to every block.
	Transform func([]float32)

	// Err, when non-nil, is returned by every Submit.
	Err error

	// Blocks holds copies of every submitted block, in order.
	Blocks [][]float32
}

// Submit records a copy of samples, applies Transform and returns Err.
func (f *Filter) Submit(samples []float32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	cp := make([]float32, len(samples))
	copy(cp, samples)
	f.Blocks = append(f.Blocks, cp)
	if f.Transform != nil {
		f.Transform(samples)
	}
	return nil
}

// Submissions returns the number of blocks seen so far.
func (f *Filter) Submissions() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Blocks)
}
