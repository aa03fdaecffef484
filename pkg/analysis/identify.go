package analysis

import (
	"context"

	"github.com/tmarkko/quillcast/pkg/audio"
	"github.com/tmarkko/quillcast/pkg/speaker"
)

// ProfileSource yields a snapshot of the enrolled speaker profiles. The
// pipeline coordinator implements this.
type ProfileSource interface {
	Speakers() []speaker.Profile
}

// Identifier is a placeholder speaker-identification Engine. It reduces the
// window to a coarse band-energy vector of the configured embedding
// dimension and reports the enrolled profile with the highest cosine
// similarity above MinScore. It exercises the profile collection and the
// identification plumbing; it is not a real voice embedding model.
type Identifier struct {
	Profiles ProfileSource

	// Dim is the embedding dimension shared with the enrolled profiles.
	Dim int

	// MinScore is the similarity below which no speaker is reported.
	// Zero means any best match is reported.
	MinScore float64
}

// Compile-time assertion that Identifier satisfies Engine.
var _ Engine = (*Identifier)(nil)

// Kind returns KindIdentification.
func (id *Identifier) Kind() Kind { return KindIdentification }

// Analyze embeds the window and reports the best-matching enrolled speaker,
// or an empty annotation when nobody is enrolled or the best score is below
// MinScore.
func (id *Identifier) Analyze(_ context.Context, window *audio.Segment) (Annotation, error) {
	a := Annotation{Kind: KindIdentification, At: window.CapturedAt()}

	profiles := id.Profiles.Speakers()
	if len(profiles) == 0 {
		return a, nil
	}

	embedding := bandEnergies(window.Samples(), id.Dim)

	best := ""
	bestScore := id.MinScore
	for _, p := range profiles {
		if score := speaker.Cosine(embedding, p.Embedding); score > bestScore {
			best = p.Name
			bestScore = score
		}
	}
	a.Speaker = best
	return a, nil
}

// bandEnergies folds the samples into dim contiguous bands of mean absolute
// amplitude. Windows shorter than dim leave the trailing bands at zero.
func bandEnergies(samples []float32, dim int) []float32 {
	out := make([]float32, dim)
	if len(samples) == 0 || dim <= 0 {
		return out
	}
	bandLen := len(samples) / dim
	if bandLen == 0 {
		bandLen = 1
	}
	for band := 0; band < dim; band++ {
		start := band * bandLen
		if start >= len(samples) {
			break
		}
		end := start + bandLen
		if end > len(samples) {
			end = len(samples)
		}
		var sum float32
		for _, v := range samples[start:end] {
			if v < 0 {
				v = -v
			}
			sum += v
		}
		out[band] = sum / float32(end-start)
	}
	return out
}
