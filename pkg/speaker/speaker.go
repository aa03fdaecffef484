// Package speaker defines the speaker profile value type used by the
// identification stage: a name tied to a fixed-length embedding vector.
package speaker

import (
	"math"

	"github.com/tmarkko/quillcast/pkg/status"
)

// Profile is a named embedding vector. Profiles have value semantics: the
// constructor copies the embedding so callers cannot mutate a stored
// profile afterwards.
type Profile struct {
	Name      string
	Embedding []float32
}

// NewProfile copies embedding into a fresh Profile. dim is the configured
// embedding dimension; a mismatched or empty vector fails with
// InvalidArgument.
func NewProfile(name string, embedding []float32, dim int) (Profile, error) {
	if name == "" {
		return Profile{}, status.New(status.InvalidArgument, "speaker name must not be empty")
	}
	if len(embedding) != dim {
		return Profile{}, status.Errorf(status.InvalidArgument,
			"embedding has %d dimensions, want %d", len(embedding), dim)
	}
	dup := make([]float32, dim)
	copy(dup, embedding)
	return Profile{Name: name, Embedding: dup}, nil
}

// Clone returns an independent copy of the profile.
func (p Profile) Clone() Profile {
	dup := make([]float32, len(p.Embedding))
	copy(dup, p.Embedding)
	return Profile{Name: p.Name, Embedding: dup}
}

// Cosine returns the cosine similarity of a and b in [-1, 1]. Vectors of
// different lengths or zero magnitude score 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
