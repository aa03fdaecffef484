// Package dsp defines the digital-filter collaborator boundary of the
// pipeline and a built-in implementation of it.
//
// The stitching stage pushes every raw half-window through a [Filter]
// before splicing; the filter is expected to process the block synchronously
// and in place. The shape of the block (mono, sample rate, block length) is
// fixed when the filter is constructed and never changes at runtime.
package dsp

// Filter processes fixed-shape blocks of mono float32 samples in place.
//
// Submit is called from a single stitching goroutine; implementations do
// not need to be safe for concurrent use.
type Filter interface {
	// Submit filters samples in place and returns when the block has been
	// fully processed. A block whose length differs from the configured
	// shape fails with InvalidArgument; internal processing failures are
	// RuntimeErrors.
	Submit(samples []float32) error
}
