package speaker_test

import (
	"errors"
	"math"
	"testing"

	"github.com/tmarkko/quillcast/pkg/speaker"
	"github.com/tmarkko/quillcast/pkg/status"
)

func TestNewProfileCopiesEmbedding(t *testing.T) {
	src := []float32{1, 2, 3}
	p, err := speaker.NewProfile("ada", src, 3)
	if err != nil {
		t.Fatal(err)
	}

	src[0] = 99
	if p.Embedding[0] != 1 {
		t.Fatal("profile shares storage with the caller's slice")
	}
}

func TestNewProfileValidates(t *testing.T) {
	if _, err := speaker.NewProfile("", []float32{1}, 1); !errors.Is(err, status.New(status.InvalidArgument, "")) {
		t.Errorf("empty name: code = %v, want InvalidArgument", status.CodeOf(err))
	}
	if _, err := speaker.NewProfile("ada", []float32{1, 2}, 3); !errors.Is(err, status.New(status.InvalidArgument, "")) {
		t.Errorf("wrong dimension: code = %v, want InvalidArgument", status.CodeOf(err))
	}
}

func TestCosine(t *testing.T) {
	cases := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0, 2}, []float32{1, 0, 2}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 1}, []float32{-1, -1}, -1},
		{"length mismatch", []float32{1}, []float32{1, 0}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
	}
	for _, tc := range cases {
		got := speaker.Cosine(tc.a, tc.b)
		if math.Abs(got-tc.want) > 1e-6 {
			t.Errorf("%s: Cosine = %v, want %v", tc.name, got, tc.want)
		}
	}
}
