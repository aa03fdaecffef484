// Package mock provides a test double for the analysis.Engine interface.
package mock

import (
	"context"
	"sync"

	"github.com/tmarkko/quillcast/pkg/analysis"
	"github.com/tmarkko/quillcast/pkg/audio"
)

// Compile-time assertion that Engine satisfies analysis.Engine.
var _ analysis.Engine = (*Engine)(nil)

// Engine is a scripted analysis.Engine. Annotations are returned in order;
// when the script is exhausted the Annotate func (if any) is consulted,
// otherwise an empty annotation is produced.
type Engine struct {
	mu sync.Mutex

	EngineKind analysis.Kind

	// Annotations are consumed one per Analyze call; their At field is
	// overwritten with the window's start time.
	Annotations []analysis.Annotation

	// Annotate, when non-nil, handles calls after Annotations is drained.
	Annotate func(*audio.Segment) (analysis.Annotation, error)

	// Errs are consumed one per call alongside Annotations.
	Errs []error

	// Windows holds a clone of every analysed window.
	Windows []audio.Segment
}

// Analyze records the window and replays the script.
func (e *Engine) Analyze(_ context.Context, window *audio.Segment) (analysis.Annotation, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.Windows = append(e.Windows, window.Clone())

	var err error
	if len(e.Errs) > 0 {
		err = e.Errs[0]
		e.Errs = e.Errs[1:]
	}

	if len(e.Annotations) > 0 {
		a := e.Annotations[0]
		e.Annotations = e.Annotations[1:]
		a.Kind = e.EngineKind
		a.At = window.CapturedAt()
		return a, err
	}
	if e.Annotate != nil {
		return e.Annotate(window)
	}
	return analysis.Annotation{Kind: e.EngineKind, At: window.CapturedAt()}, err
}

// Kind returns the configured kind.
func (e *Engine) Kind() analysis.Kind { return e.EngineKind }

// Analyzed returns the number of windows seen so far.
func (e *Engine) Analyzed() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.Windows)
}
