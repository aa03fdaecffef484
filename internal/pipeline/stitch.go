package pipeline

import (
	"context"
	"time"

	"github.com/tmarkko/quillcast/pkg/audio"
	"github.com/tmarkko/quillcast/pkg/status"
)

// stitchLoop filters raw half-window chunks and assembles them into
// overlapping full windows. Each window is the previous chunk followed by
// the current one, so consecutive windows share half their samples. The
// window is stamped with the capture time of its earlier chunk.
//
// The first chunk of a recording generation only primes the window;
// nothing is emitted until the second chunk arrives. A generation change
// re-primes, so a half-window left over from one recording never bridges
// into the next even when the restart beats the poll interval. A filter
// failure is fatal.
func (p *Pipeline) stitchLoop(ctx context.Context) error {
	window, err := audio.NewSegment(p.windowLen)
	if err != nil {
		return err
	}

	var (
		primed  bool
		lastGen uint64
		firstAt time.Time
	)

	for p.eng.Running() {
		if ctx.Err() != nil {
			return nil
		}

		chunk, ok := p.raw.Pop()
		if !ok {
			if !p.idle(ctx) {
				return nil
			}
			continue
		}

		if err := p.filter.Submit(chunk.seg.Samples()); err != nil {
			return status.Wrap(status.RuntimeError, "filter rejected chunk", err)
		}

		if chunk.gen != lastGen {
			primed = false
			lastGen = chunk.gen
		}

		if !primed {
			copy(window.FirstHalf(), chunk.seg.Samples())
			firstAt = chunk.seg.CapturedAt()
			primed = true
			continue
		}

		copy(window.SecondHalf(), chunk.seg.Samples())
		window.SetCapturedAt(firstAt)
		p.eng.PublishWindow(window)
		window.Reset()
		p.metrics.WindowsStitched.Add(ctx, 1)

		copy(window.FirstHalf(), chunk.seg.Samples())
		firstAt = chunk.seg.CapturedAt()
	}
	return nil
}
