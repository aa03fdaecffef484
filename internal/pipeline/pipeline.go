// Package pipeline runs the capture-to-script processing stages.
//
// Audio flows through five stage loops connected by ring buffers:
//
//	capture  -> raw ring     -> stitch -> engine window ring -> dispatch
//	dispatch -> per-analysis rings -> analysis stages -> annotation ring -> script
//
// The capture stage reads half-window chunks from a [capture.Source]. The
// stitch stage filters each chunk and assembles overlapping full windows,
// each sharing its first half with the previous window's second half. The
// dispatch stage fans finished windows out to the enabled analysis stages,
// which annotate them independently. The script stage folds annotations
// into an ordered transcript.
//
// Every stage polls its input and the engine's run state; stages exit when
// the engine stops or the context is cancelled. Analysis failures are
// logged and counted but never stop the pipeline. Capture failures stop it
// only when two reads fail back to back, and a filter failure stops it
// immediately.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tmarkko/quillcast/internal/config"
	"github.com/tmarkko/quillcast/internal/engine"
	"github.com/tmarkko/quillcast/internal/observe"
	"github.com/tmarkko/quillcast/internal/transcript"
	"github.com/tmarkko/quillcast/pkg/analysis"
	"github.com/tmarkko/quillcast/pkg/audio"
	"github.com/tmarkko/quillcast/pkg/capture"
	"github.com/tmarkko/quillcast/pkg/dsp"
	"github.com/tmarkko/quillcast/pkg/ring"
	"github.com/tmarkko/quillcast/pkg/status"
)

// Params collects everything a [Pipeline] needs. Config, Engine, Source,
// Filter and Script are required; Logger and Metrics fall back to the
// process defaults.
type Params struct {
	Config  *config.Config
	Engine  *engine.Engine
	Source  capture.Source
	Filter  dsp.Filter
	Engines []analysis.Engine
	Script  *transcript.Script
	Logger  *slog.Logger
	Metrics *observe.Metrics
}

// rawChunk is one captured half-window tagged with the recording
// generation it was read under. The stitcher re-primes whenever the
// generation changes, so a half-window from one recording can drain
// normally but never forms a window with a chunk from the next.
type rawChunk struct {
	seg audio.Segment
	gen uint64
}

// analysisStage pairs an enabled analysis engine with its private input
// ring. Each stage owns its ring; only dispatch pushes into it.
type analysisStage struct {
	kind   analysis.Kind
	engine analysis.Engine
	input  *ring.Buffer[audio.Segment]
}

// Pipeline owns the stage loops and the rings between them.
type Pipeline struct {
	eng     *engine.Engine
	source  capture.Source
	filter  dsp.Filter
	stages  []*analysisStage
	script  *transcript.Script
	logger  *slog.Logger
	metrics *observe.Metrics

	halfLen   int
	windowLen int
	poll      time.Duration

	raw         *ring.Buffer[rawChunk]
	annotations *ring.Buffer[analysis.Annotation]
}

// New assembles a pipeline from its parts. Every analysis feature enabled
// on the engine must have a matching [analysis.Engine] in p.Engines.
func New(p Params) (*Pipeline, error) {
	if p.Config == nil {
		return nil, status.New(status.ConfigurationError, "pipeline: nil config")
	}
	if p.Engine == nil {
		return nil, status.New(status.ConfigurationError, "pipeline: nil engine")
	}
	if p.Source == nil {
		return nil, status.New(status.ConfigurationError, "pipeline: nil capture source")
	}
	if p.Filter == nil {
		return nil, status.New(status.ConfigurationError, "pipeline: nil filter")
	}
	if p.Script == nil {
		return nil, status.New(status.ConfigurationError, "pipeline: nil script")
	}
	if p.Logger == nil {
		p.Logger = slog.Default()
	}
	if p.Metrics == nil {
		p.Metrics = observe.DefaultMetrics()
	}

	byKind := make(map[analysis.Kind]analysis.Engine, len(p.Engines))
	for _, e := range p.Engines {
		byKind[e.Kind()] = e
	}

	capacity := p.Config.Audio.RingCapacity
	var stages []*analysisStage
	for _, kind := range []analysis.Kind{
		analysis.KindDiarization,
		analysis.KindRecognition,
		analysis.KindIdentification,
		analysis.KindEmotion,
	} {
		if !p.Engine.Enabled(kind) {
			continue
		}
		e, ok := byKind[kind]
		if !ok {
			return nil, status.Errorf(status.ConfigurationError, "pipeline: feature %s enabled but no engine provided", kind)
		}
		stages = append(stages, &analysisStage{
			kind:   kind,
			engine: e,
			input:  ring.NewGuarded[audio.Segment](capacity),
		})
	}

	return &Pipeline{
		eng:         p.Engine,
		source:      p.Source,
		filter:      p.Filter,
		stages:      stages,
		script:      p.Script,
		logger:      p.Logger,
		metrics:     p.Metrics,
		halfLen:     p.Config.Audio.SamplesPerHalfWindow(),
		windowLen:   p.Config.Audio.SamplesPerWindow(),
		poll:        time.Duration(p.Config.Audio.PollIntervalMs) * time.Millisecond,
		raw:         ring.NewGuarded[rawChunk](capacity),
		annotations: ring.NewGuarded[analysis.Annotation](capacity * 4),
	}, nil
}

// Run executes all stage loops until the engine stops, the context is
// cancelled, or a fatal stage error occurs. It returns nil on a clean
// shutdown.
func (p *Pipeline) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return p.captureLoop(ctx) })
	g.Go(func() error { return p.stitchLoop(ctx) })
	g.Go(func() error { return p.dispatchLoop(ctx) })
	for _, st := range p.stages {
		g.Go(func() error { return p.analysisLoop(ctx, st) })
	}
	g.Go(func() error { return p.scriptLoop(ctx) })

	err := g.Wait()
	if err == nil || errors.Is(err, context.Canceled) {
		return nil
	}
	var se *status.Error
	if !errors.As(err, &se) {
		return status.Wrap(status.Unknown, "pipeline failed", err)
	}
	return err
}

// idle sleeps one poll interval. It returns false when the context is done.
func (p *Pipeline) idle(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(p.poll):
		return true
	}
}
