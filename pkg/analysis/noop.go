package analysis

import (
	"context"

	"github.com/tmarkko/quillcast/pkg/audio"
)

// Noop is a placeholder Engine that reports a fixed label for every window.
// It stands in for the unimplemented diarization and emotion backends: the
// stage loop, dispatch and script plumbing all run for real, only the
// signal processing is absent.
type Noop struct {
	EngineKind Kind

	// Label is reported as the Speaker (diarization/identification kinds)
	// or Emotion (emotion kind) of every window. Empty means the engine
	// annotates nothing.
	Label string
}

// Compile-time assertion that Noop satisfies Engine.
var _ Engine = (*Noop)(nil)

// Kind returns the configured kind.
func (n *Noop) Kind() Kind { return n.EngineKind }

// Analyze returns the fixed label stamped with the window start time.
func (n *Noop) Analyze(_ context.Context, window *audio.Segment) (Annotation, error) {
	a := Annotation{Kind: n.EngineKind, At: window.CapturedAt()}
	switch n.EngineKind {
	case KindEmotion:
		a.Emotion = n.Label
	default:
		a.Speaker = n.Label
	}
	return a, nil
}
