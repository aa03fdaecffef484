package audio_test

import (
	"errors"
	"testing"
	"time"

	"github.com/tmarkko/quillcast/pkg/audio"
	"github.com/tmarkko/quillcast/pkg/status"
)

func TestInitRejectsZeroLength(t *testing.T) {
	var s audio.Segment
	err := s.Init(0)
	if err == nil {
		t.Fatal("Init(0) should fail")
	}
	if !errors.Is(err, status.New(status.InvalidArgument, "")) {
		t.Fatalf("Init(0) error code = %v, want InvalidArgument", status.CodeOf(err))
	}
	if s.Len() != 0 {
		t.Fatalf("failed Init should leave length 0, got %d", s.Len())
	}
}

func TestZeroValueSegmentIsEmpty(t *testing.T) {
	var s audio.Segment
	if s.Len() != 0 {
		t.Fatalf("zero-value segment length = %d", s.Len())
	}
}

func TestHalvesSplitAtMidpoint(t *testing.T) {
	s, err := audio.NewSegment(8)
	if err != nil {
		t.Fatal(err)
	}
	for i := range s.Samples() {
		s.Samples()[i] = float32(i)
	}

	first, second := s.FirstHalf(), s.SecondHalf()
	if len(first) != 4 || len(second) != 4 {
		t.Fatalf("halves have lengths %d and %d, want 4 and 4", len(first), len(second))
	}
	if first[3] != 3 || second[0] != 4 {
		t.Fatalf("midpoint split wrong: first ends %v, second starts %v", first[3], second[0])
	}

	// Writing through a half must be visible in the full buffer: the halves
	// are views, not copies.
	second[0] = 42
	if s.Samples()[4] != 42 {
		t.Fatal("SecondHalf is not a view into the segment buffer")
	}
}

func TestResetAbandonsPublishedBuffer(t *testing.T) {
	s, err := audio.NewSegment(4)
	if err != nil {
		t.Fatal(err)
	}
	s.Samples()[0] = 7

	published := s.Take()
	if s.Len() != 0 {
		t.Fatalf("Take should empty the source, length = %d", s.Len())
	}

	// A reset segment of the published one's length must not share storage.
	next := published.Clone()
	next.Reset()
	for i, v := range next.Samples() {
		if v != 0 {
			t.Fatalf("Reset buffer not zeroed at %d: %v", i, v)
		}
	}
	next.Samples()[0] = 99
	if published.Samples()[0] != 7 {
		t.Fatal("Reset buffer aliases previously published samples")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	s, err := audio.NewSegment(4)
	if err != nil {
		t.Fatal(err)
	}
	at := time.Unix(1000, 0)
	s.SetCapturedAt(at)
	s.Samples()[2] = 5

	c := s.Clone()
	if !c.CapturedAt().Equal(at) {
		t.Fatalf("clone timestamp = %v, want %v", c.CapturedAt(), at)
	}
	c.Samples()[2] = 9
	if s.Samples()[2] != 5 {
		t.Fatal("clone shares storage with source")
	}
}
