package pipeline

import "context"

// scriptLoop folds queued annotations into the transcript. The script
// handles out-of-order arrival itself, so this loop just drains the ring.
func (p *Pipeline) scriptLoop(ctx context.Context) error {
	for p.eng.Running() {
		if ctx.Err() != nil {
			return nil
		}

		ann, ok := p.annotations.Pop()
		if !ok {
			if !p.idle(ctx) {
				return nil
			}
			continue
		}
		p.script.Apply(ann)
	}
	return nil
}
