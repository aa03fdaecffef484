package pipeline

import (
	"context"
	"time"

	"github.com/tmarkko/quillcast/pkg/audio"
	"github.com/tmarkko/quillcast/pkg/status"
)

// maxConsecutiveFailures is how many capture calls may fail back to back
// before the pipeline gives up on the source.
const maxConsecutiveFailures = 2

// captureLoop reads half-window chunks from the source while the engine is
// recording and pushes them into the raw ring. The source is started and
// stopped in lockstep with the recording flag.
//
// A single failed start, stop or read is logged and retried after one poll
// interval; a second consecutive failure of any of them is fatal. Each
// chunk is stamped with the time its read completed and tagged with the
// recording generation so the stitcher never splices across recordings.
func (p *Pipeline) captureLoop(ctx context.Context) error {
	defer func() {
		if p.source.Active() {
			if err := p.source.Stop(); err != nil {
				p.logger.Warn("capture source stop failed on shutdown", "err", err)
			}
		}
	}()

	seg, err := audio.NewSegment(p.halfLen)
	if err != nil {
		return err
	}

	failures := 0
	fail := func(op string, err error) error {
		failures++
		if failures >= maxConsecutiveFailures {
			return status.Wrap(status.IOError, "capture source failed twice in a row", err)
		}
		p.logger.Warn("capture "+op+" failed, retrying", "err", err)
		p.metrics.CaptureRestarts.Add(ctx, 1)
		return nil
	}

	for p.eng.Running() {
		if ctx.Err() != nil {
			return nil
		}

		if !p.eng.Recording() {
			if p.source.Active() {
				if err := p.source.Stop(); err != nil {
					if fatal := fail("stop", err); fatal != nil {
						return fatal
					}
				} else {
					failures = 0
				}
			}
			if !p.idle(ctx) {
				return nil
			}
			continue
		}

		if !p.source.Active() {
			if err := p.source.Start(); err != nil {
				if fatal := fail("start", err); fatal != nil {
					return fatal
				}
				if !p.idle(ctx) {
					return nil
				}
				continue
			}
		}

		if err := p.source.Read(seg.Samples()); err != nil {
			if fatal := fail("read", err); fatal != nil {
				return fatal
			}
			if !p.idle(ctx) {
				return nil
			}
			continue
		}
		failures = 0

		seg.SetCapturedAt(time.Now())
		p.raw.Push(rawChunk{seg: seg, gen: p.eng.RecordingGeneration()})
		seg.Reset()
		p.metrics.SegmentsCaptured.Add(ctx, 1)
	}
	return nil
}
