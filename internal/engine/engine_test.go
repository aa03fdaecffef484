package engine_test

import (
	"errors"
	"testing"

	"github.com/tmarkko/quillcast/internal/engine"
	"github.com/tmarkko/quillcast/pkg/analysis"
	"github.com/tmarkko/quillcast/pkg/audio"
	"github.com/tmarkko/quillcast/pkg/status"
)

func newEngine(t *testing.T) *engine.Engine {
	t.Helper()
	e, err := engine.New(engine.Config{WindowCapacity: 16, EmbeddingDim: 4})
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func TestEnableIsOneShot(t *testing.T) {
	e := newEngine(t)

	if err := e.EnableDiarization(); err != nil {
		t.Fatalf("first enable failed: %v", err)
	}
	if !e.Enabled(analysis.KindDiarization) {
		t.Fatal("flag not set after enable")
	}

	err := e.EnableDiarization()
	if !errors.Is(err, status.New(status.InvalidOperation, "")) {
		t.Fatalf("second enable: code = %v, want InvalidOperation", status.CodeOf(err))
	}
	if !e.Enabled(analysis.KindDiarization) {
		t.Fatal("failed re-enable must not clear the flag")
	}
}

func TestEnableRejectedWhileRunning(t *testing.T) {
	e := newEngine(t)
	e.Start()

	for _, enable := range []func() error{
		e.EnableDiarization, e.EnableRecognition, e.EnableIdentification, e.EnableEmotion,
	} {
		if err := enable(); !errors.Is(err, status.New(status.InvalidOperation, "")) {
			t.Errorf("enable while running: code = %v, want InvalidOperation", status.CodeOf(err))
		}
	}

	// Stopping does not grant a second chance for already-set flags, but a
	// never-set flag becomes enableable again.
	e.Stop()
	if err := e.EnableEmotion(); err != nil {
		t.Fatalf("enable after stop failed: %v", err)
	}
}

func TestStartStopAndRecordingToggleUnconditionally(t *testing.T) {
	e := newEngine(t)

	if e.Running() || e.Recording() {
		t.Fatal("new engine must be stopped and not recording")
	}
	e.Start()
	e.Start() // idempotent
	if !e.Running() {
		t.Fatal("engine should be running")
	}
	e.StartRecording()
	if !e.Recording() {
		t.Fatal("engine should be recording")
	}
	e.StopRecording()
	e.Stop()
	if e.Running() || e.Recording() {
		t.Fatal("engine should be stopped and not recording")
	}
}

func TestRecordingGenerationAdvancesPerStart(t *testing.T) {
	e := newEngine(t)

	if got := e.RecordingGeneration(); got != 0 {
		t.Fatalf("RecordingGeneration = %d before any recording, want 0", got)
	}
	e.StartRecording()
	if got := e.RecordingGeneration(); got != 1 {
		t.Fatalf("RecordingGeneration = %d after first start, want 1", got)
	}
	e.StopRecording()
	if got := e.RecordingGeneration(); got != 1 {
		t.Fatalf("RecordingGeneration = %d after stop, want 1 (stops do not advance)", got)
	}
	e.StartRecording()
	if got := e.RecordingGeneration(); got != 2 {
		t.Fatalf("RecordingGeneration = %d after restart, want 2", got)
	}
}

func TestAddSpeakerValidatesDimension(t *testing.T) {
	e := newEngine(t)

	if err := e.AddSpeaker("ada", []float32{1, 2, 3}); !errors.Is(err, status.New(status.InvalidArgument, "")) {
		t.Fatalf("wrong dimension: code = %v, want InvalidArgument", status.CodeOf(err))
	}
	if err := e.AddSpeaker("ada", []float32{1, 2, 3, 4}); err != nil {
		t.Fatalf("valid add failed: %v", err)
	}
}

func TestAddSpeakerCopiesEmbedding(t *testing.T) {
	e := newEngine(t)
	src := []float32{1, 2, 3, 4}
	if err := e.AddSpeaker("ada", src); err != nil {
		t.Fatal(err)
	}
	src[0] = 99

	got := e.Speakers()
	if len(got) != 1 {
		t.Fatalf("Speakers() = %d profiles, want 1", len(got))
	}
	if got[0].Embedding[0] != 1 {
		t.Fatal("stored embedding aliases the caller's slice")
	}
}

func TestRemoveSpeakerRemovesAllMatches(t *testing.T) {
	e := newEngine(t)
	emb := []float32{1, 2, 3, 4}
	if err := e.AddSpeaker("A", emb); err != nil {
		t.Fatal(err)
	}
	if err := e.AddSpeaker("A", emb); err != nil {
		t.Fatal(err)
	}
	if err := e.AddSpeaker("B", emb); err != nil {
		t.Fatal(err)
	}

	e.RemoveSpeaker("A")
	for _, p := range e.Speakers() {
		if p.Name == "A" {
			t.Fatal("profile named A survived RemoveSpeaker")
		}
	}
	if len(e.Speakers()) != 1 {
		t.Fatalf("Speakers() = %d profiles, want 1", len(e.Speakers()))
	}

	// Removing a missing name is not an error and changes nothing.
	e.RemoveSpeaker("nobody")
	if len(e.Speakers()) != 1 {
		t.Fatal("RemoveSpeaker of a missing name changed the collection")
	}
}

func TestSpeakerCapacity(t *testing.T) {
	e, err := engine.New(engine.Config{WindowCapacity: 4, EmbeddingDim: 1, MaxSpeakers: 2})
	if err != nil {
		t.Fatal(err)
	}
	if err := e.AddSpeaker("a", []float32{1}); err != nil {
		t.Fatal(err)
	}
	if err := e.AddSpeaker("b", []float32{1}); err != nil {
		t.Fatal(err)
	}
	err = e.AddSpeaker("c", []float32{1})
	if !errors.Is(err, status.New(status.InsufficientMemory, "")) {
		t.Fatalf("over-capacity add: code = %v, want InsufficientMemory", status.CodeOf(err))
	}
}

func TestWindowBufferIsFIFO(t *testing.T) {
	e := newEngine(t)

	for i := 0; i < 3; i++ {
		seg, err := audio.NewSegment(2)
		if err != nil {
			t.Fatal(err)
		}
		seg.Samples()[0] = float32(i)
		e.PublishWindow(seg)
	}
	if got := e.PendingWindows(); got != 3 {
		t.Fatalf("PendingWindows = %d, want 3", got)
	}

	for i := 0; i < 3; i++ {
		w, ok := e.NextWindow()
		if !ok {
			t.Fatalf("NextWindow %d returned empty", i)
		}
		if w.Samples()[0] != float32(i) {
			t.Fatalf("NextWindow %d = %v, want %d", i, w.Samples()[0], i)
		}
	}
	if _, ok := e.NextWindow(); ok {
		t.Fatal("drained buffer should report empty")
	}
}

func TestNewValidatesConfig(t *testing.T) {
	if _, err := engine.New(engine.Config{WindowCapacity: 0, EmbeddingDim: 1}); !errors.Is(err, status.New(status.ConfigurationError, "")) {
		t.Error("zero window capacity should be a ConfigurationError")
	}
	if _, err := engine.New(engine.Config{WindowCapacity: 1, EmbeddingDim: 0}); !errors.Is(err, status.New(status.ConfigurationError, "")) {
		t.Error("zero embedding dim should be a ConfigurationError")
	}
}
