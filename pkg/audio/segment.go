// Package audio provides the sample-buffer types flowing through the
// Quillcast pipeline. A [Segment] is the atomic unit of audio transport:
// capture produces half-window segments, the stitcher splices them into
// overlapping full analysis windows, and the analysis stages consume those
// windows.
package audio

import (
	"time"

	"github.com/tmarkko/quillcast/pkg/status"
)

// Segment is an owned, fixed-size buffer of mono float32 samples tagged
// with the timestamp at which its capture read completed.
//
// The midpoint is always derived from the current buffer via [Segment.FirstHalf]
// and [Segment.SecondHalf]; it is never stored separately, so reallocation
// cannot leave a stale alias behind.
//
// Plain assignment transfers the underlying buffer (both values then share
// it); use [Segment.Take] for an explicit hand-over or [Segment.Clone] for
// an independent copy.
type Segment struct {
	samples    []float32
	capturedAt time.Time
}

// NewSegment allocates a zero-filled segment of n samples. n must be
// positive.
func NewSegment(n int) (Segment, error) {
	var s Segment
	if err := s.Init(n); err != nil {
		return Segment{}, err
	}
	return s, nil
}

// Init allocates the sample buffer once the length becomes known. The
// zero-value Segment has length 0 until Init is called. A zero n fails with
// InvalidArgument.
func (s *Segment) Init(n int) error {
	if n <= 0 {
		return status.New(status.InvalidArgument, "segment length must be greater than 0")
	}
	s.samples = make([]float32, n)
	s.capturedAt = time.Now()
	return nil
}

// Len reports the number of samples.
func (s *Segment) Len() int { return len(s.samples) }

// Samples returns the full sample buffer.
func (s *Segment) Samples() []float32 { return s.samples }

// FirstHalf returns the samples up to the midpoint.
func (s *Segment) FirstHalf() []float32 { return s.samples[:len(s.samples)/2] }

// SecondHalf returns the samples from the midpoint on.
func (s *Segment) SecondHalf() []float32 { return s.samples[len(s.samples)/2:] }

// CapturedAt returns the capture timestamp.
func (s *Segment) CapturedAt() time.Time { return s.capturedAt }

// SetCapturedAt stamps the segment with the given capture time.
func (s *Segment) SetCapturedAt(t time.Time) { s.capturedAt = t }

// Reset swaps in a fresh zero-filled buffer of the same length. The old
// buffer is abandoned untouched, so a segment that was already handed off
// (for example pushed into a ring) keeps its data while this value becomes
// safe to write again.
func (s *Segment) Reset() {
	s.samples = make([]float32, len(s.samples))
}

// Clone returns an independent copy of the segment.
func (s *Segment) Clone() Segment {
	dup := make([]float32, len(s.samples))
	copy(dup, s.samples)
	return Segment{samples: dup, capturedAt: s.capturedAt}
}

// Take transfers ownership of the sample buffer to the returned segment and
// leaves the receiver empty (length 0).
func (s *Segment) Take() Segment {
	out := Segment{samples: s.samples, capturedAt: s.capturedAt}
	s.samples = nil
	return out
}
