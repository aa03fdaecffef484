package pipeline

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/tmarkko/quillcast/internal/observe"
)

// analysisLoop drains one stage's input ring and runs its engine on each
// window. Engine failures are logged and counted but never stop the
// pipeline; the window is simply dropped. Annotations are stamped with the
// window's start time before they are queued for the script stage.
func (p *Pipeline) analysisLoop(ctx context.Context, st *analysisStage) error {
	stage := string(st.kind)
	for p.eng.Running() {
		if ctx.Err() != nil {
			return nil
		}

		window, ok := st.input.Pop()
		if !ok {
			if !p.idle(ctx) {
				return nil
			}
			continue
		}

		began := time.Now()
		ann, err := st.engine.Analyze(ctx, &window)
		p.metrics.StageLatency.Record(ctx, time.Since(began).Seconds(),
			metric.WithAttributes(observe.StageAttr(stage)))
		if err != nil {
			p.logger.Warn("analysis failed, dropping window",
				"stage", stage, "window_at", window.CapturedAt(), "err", err)
			p.metrics.RecordStageError(ctx, stage)
			continue
		}

		ann.Kind = st.kind
		ann.At = window.CapturedAt()
		if ann.Empty() {
			continue
		}
		p.annotations.Push(ann)
		p.metrics.RecordAnnotation(ctx, stage)
	}
	return nil
}
