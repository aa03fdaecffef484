package pipeline

import (
	"context"

	"go.opentelemetry.io/otel/metric"

	"github.com/tmarkko/quillcast/internal/observe"
)

// dispatchLoop fans finished windows out to every enabled analysis stage.
// Each stage receives its own copy so stages can never alias each other's
// samples. Windows keep draining after recording stops so queued audio is
// still analysed.
func (p *Pipeline) dispatchLoop(ctx context.Context) error {
	for p.eng.Running() {
		if ctx.Err() != nil {
			return nil
		}

		window, ok := p.eng.NextWindow()
		if !ok {
			if !p.idle(ctx) {
				return nil
			}
			continue
		}

		for _, st := range p.stages {
			st.input.Push(window.Clone())
			p.metrics.WindowsDispatched.Add(ctx, 1,
				metric.WithAttributes(observe.StageAttr(string(st.kind))))
		}
	}
	return nil
}
