// Package capture defines the Source interface for audio input backends.
//
// A Source wraps a real input device (for example a PortAudio stream) or a
// synthetic generator and exposes the minimal shape the capture stage
// depends on: start and stop the stream, blocking half-window reads, and an
// activity check. Device selection policy and the signal path behind Read
// belong to the implementation.
//
// A Source is driven by exactly one capture goroutine; implementations do
// not need to be safe for concurrent use unless they document otherwise.
package capture

// Source is an audio input stream delivering fixed-size blocks of mono
// float32 samples.
type Source interface {
	// Start opens the stream for reading. Starting an already active
	// source is an error.
	Start() error

	// Stop halts the stream. Stopping an inactive source is an error.
	Stop() error

	// Read blocks until it has filled dst with the next len(dst) samples.
	// The destination length is fixed by the pipeline (one half-window) and
	// must stay the same across calls.
	Read(dst []float32) error

	// Active reports whether the stream is currently started.
	Active() bool

	// Close releases the backend. The source must not be used afterwards.
	Close() error
}
