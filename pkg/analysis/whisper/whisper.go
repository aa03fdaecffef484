// Package whisper implements the speech-recognition analysis engine on top
// of the whisper.cpp CGO bindings. The whisper.cpp static library
// (libwhisper.a) and headers (whisper.h) must be available at link time via
// LIBRARY_PATH and C_INCLUDE_PATH.
//
// The model is loaded once at construction and shared; each Analyze call
// creates a fresh whisper context, which is the binding's unit of
// single-threaded inference.
package whisper

import (
	"context"
	"errors"
	"io"
	"strings"

	whisperlib "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"github.com/tmarkko/quillcast/pkg/analysis"
	"github.com/tmarkko/quillcast/pkg/audio"
	"github.com/tmarkko/quillcast/pkg/status"
)

// Compile-time assertion that Engine satisfies analysis.Engine.
var _ analysis.Engine = (*Engine)(nil)

const defaultLanguage = "en"

// Engine transcribes analysis windows with a local whisper.cpp model.
type Engine struct {
	model    whisperlib.Model
	language string
}

// Option is a functional option for configuring an Engine.
type Option func(*Engine)

// WithLanguage sets the transcription language code (e.g. "en", "de").
// Defaults to "en".
func WithLanguage(lang string) Option {
	return func(e *Engine) { e.language = lang }
}

// New loads the whisper.cpp model from modelPath. The caller must Close the
// engine to release the model.
func New(modelPath string, opts ...Option) (*Engine, error) {
	if modelPath == "" {
		return nil, status.New(status.ConfigurationError, "whisper: model path must not be empty")
	}
	model, err := whisperlib.New(modelPath)
	if err != nil {
		return nil, status.Wrap(status.ConfigurationError, "whisper: load model "+modelPath, err)
	}
	e := &Engine{model: model, language: defaultLanguage}
	for _, o := range opts {
		o(e)
	}
	return e, nil
}

// Close releases the model.
func (e *Engine) Close() error {
	if e.model != nil {
		return e.model.Close()
	}
	return nil
}

// Kind returns analysis.KindRecognition.
func (e *Engine) Kind() analysis.Kind { return analysis.KindRecognition }

// Analyze runs whisper inference over the window samples and returns the
// concatenated segment text stamped with the window start time. Windows
// that transcribe to nothing yield an empty annotation.
func (e *Engine) Analyze(ctx context.Context, window *audio.Segment) (analysis.Annotation, error) {
	a := analysis.Annotation{Kind: analysis.KindRecognition, At: window.CapturedAt()}

	if err := ctx.Err(); err != nil {
		return a, status.Wrap(status.RuntimeError, "whisper: context cancelled", err)
	}

	wctx, err := e.model.NewContext()
	if err != nil {
		return a, status.Wrap(status.RuntimeError, "whisper: create context", err)
	}
	if err := wctx.SetLanguage(e.language); err != nil {
		return a, status.Wrap(status.ConfigurationError, "whisper: set language "+e.language, err)
	}

	if err := wctx.Process(window.Samples(), nil, nil, nil); err != nil {
		return a, status.Wrap(status.RuntimeError, "whisper: process window", err)
	}

	var parts []string
	for {
		segment, err := wctx.NextSegment()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return a, status.Wrap(status.RuntimeError, "whisper: read segment", err)
		}
		if text := strings.TrimSpace(segment.Text); text != "" {
			parts = append(parts, text)
		}
	}
	a.Text = strings.Join(parts, " ")
	return a, nil
}
