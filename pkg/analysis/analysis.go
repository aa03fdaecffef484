// Package analysis defines the Engine interface for per-window analysis
// backends (speaker diarization, speech recognition, speaker
// identification, emotion recognition).
//
// The pipeline treats analysis backends as collaborators specified only at
// this boundary: each stage invokes its Engine once per finished analysis
// window and forwards the resulting annotation to the script writer. Real
// signal processing lives behind the interface; this package also ships
// placeholder implementations so the orchestration can run end to end
// before a real backend is substituted.
//
// An Engine is driven by exactly one stage goroutine per instance; it does
// not need to be safe for concurrent use unless shared deliberately.
package analysis

import (
	"context"
	"time"

	"github.com/tmarkko/quillcast/pkg/audio"
)

// Kind names the analysis a stage performs. It doubles as the metric and
// log attribute for the stage.
type Kind string

const (
	KindDiarization    Kind = "diarization"
	KindRecognition    Kind = "recognition"
	KindIdentification Kind = "identification"
	KindEmotion        Kind = "emotion"
)

// Annotation is the result of analysing one window. At carries the window's
// start timestamp so the script writer can merge annotations produced by
// different stages for the same window.
type Annotation struct {
	Kind Kind

	// At is the start-of-window timestamp (the earlier edge).
	At time.Time

	// Text is the recognised speech, for recognition annotations.
	Text string

	// Speaker is the identified or diarized speaker label.
	Speaker string

	// Emotion is the recognised emotion label.
	Emotion string
}

// Empty reports whether the annotation carries no payload. Stages drop
// empty annotations instead of forwarding them.
func (a Annotation) Empty() bool {
	return a.Text == "" && a.Speaker == "" && a.Emotion == ""
}

// Engine analyses one finished window at a time.
type Engine interface {
	// Kind identifies the analysis this engine performs.
	Kind() Kind

	// Analyze inspects the window and returns an annotation stamped with
	// the window's start time. Returning an empty annotation with a nil
	// error means "nothing to report for this window".
	Analyze(ctx context.Context, window *audio.Segment) (Annotation, error)
}
