// Package engine implements the pipeline coordinator: the single source of
// truth every stage polls.
//
// The Engine holds the run and record flags, the one-shot feature-enable
// state machine, the speaker-profile collection and the buffer of finished
// analysis windows. It is constructed explicitly and injected into every
// stage at startup — there is no hidden global instance — so tests can run
// independent coordinators side by side.
//
// Flag reads are lock-free atomics because every stage goroutine polls them
// continuously; flag transitions are serialized behind one mutex so the
// "no enables while running" rule cannot race with Start.
package engine

import (
	"slices"
	"sync"
	"sync/atomic"

	"github.com/tmarkko/quillcast/pkg/analysis"
	"github.com/tmarkko/quillcast/pkg/audio"
	"github.com/tmarkko/quillcast/pkg/ring"
	"github.com/tmarkko/quillcast/pkg/speaker"
	"github.com/tmarkko/quillcast/pkg/status"
)

// featureIndex maps an analysis kind to its flag slot.
var featureIndex = map[analysis.Kind]int{
	analysis.KindDiarization:    0,
	analysis.KindRecognition:    1,
	analysis.KindIdentification: 2,
	analysis.KindEmotion:        3,
}

// Config sizes the coordinator.
type Config struct {
	// WindowCapacity is the capacity of the finished-window ring buffer.
	WindowCapacity int

	// EmbeddingDim is the required speaker-embedding dimension.
	EmbeddingDim int

	// MaxSpeakers caps the profile collection; adding beyond it fails with
	// InsufficientMemory. Zero means the default of 1024.
	MaxSpeakers int
}

// Engine is the pipeline coordinator.
type Engine struct {
	running    atomic.Bool
	recording  atomic.Bool
	generation atomic.Uint64
	features   [4]atomic.Bool

	// mu serializes feature-enable transitions against Start.
	mu sync.Mutex

	embeddingDim int
	maxSpeakers  int

	speakersMu sync.RWMutex
	speakers   []speaker.Profile

	windows *ring.Buffer[audio.Segment]
}

// New creates a stopped, non-recording coordinator with all features unset.
func New(cfg Config) (*Engine, error) {
	if cfg.WindowCapacity <= 0 {
		return nil, status.New(status.ConfigurationError, "engine: window capacity must be positive")
	}
	if cfg.EmbeddingDim <= 0 {
		return nil, status.New(status.ConfigurationError, "engine: embedding dimension must be positive")
	}
	maxSpeakers := cfg.MaxSpeakers
	if maxSpeakers <= 0 {
		maxSpeakers = 1024
	}
	return &Engine{
		embeddingDim: cfg.EmbeddingDim,
		maxSpeakers:  maxSpeakers,
		windows:      ring.NewGuarded[audio.Segment](cfg.WindowCapacity),
	}, nil
}

// ── Run / record state ─────────────────────────────────────────────────────

// Start marks the engine running. Unconditional; starting a running engine
// is a no-op. Once running, no feature may be enabled.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.running.Store(true)
}

// Stop marks the engine stopped. This is the sole shutdown signal: every
// stage observes it at its next poll, so shutdown latency is bounded by one
// poll interval per stage.
func (e *Engine) Stop() { e.running.Store(false) }

// Running reports the run flag.
func (e *Engine) Running() bool { return e.running.Load() }

// StartRecording marks the pipeline actively processing and advances the
// recording generation. Audio captured under different generations is never
// stitched together.
func (e *Engine) StartRecording() {
	e.generation.Add(1)
	e.recording.Store(true)
}

// StopRecording idles the pipeline without stopping it.
func (e *Engine) StopRecording() { e.recording.Store(false) }

// Recording reports the record flag.
func (e *Engine) Recording() bool { return e.recording.Load() }

// RecordingGeneration reports how many times recording has been started.
// Zero means recording has never started.
func (e *Engine) RecordingGeneration() uint64 { return e.generation.Load() }

// ── Feature state machine ──────────────────────────────────────────────────

// Enable sets the one-shot flag for the given analysis kind. It fails with
// InvalidOperation while the engine is running or when the flag is already
// set; a set flag can never be cleared.
func (e *Engine) Enable(kind analysis.Kind) error {
	i, ok := featureIndex[kind]
	if !ok {
		return status.Errorf(status.InvalidArgument, "engine: unknown feature %q", kind)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running.Load() {
		return status.Errorf(status.InvalidOperation, "engine: cannot enable %s while running", kind)
	}
	if e.features[i].Load() {
		return status.Errorf(status.InvalidOperation, "engine: %s already enabled", kind)
	}
	e.features[i].Store(true)
	return nil
}

// Enabled reports the flag for the given analysis kind.
func (e *Engine) Enabled(kind analysis.Kind) bool {
	i, ok := featureIndex[kind]
	if !ok {
		return false
	}
	return e.features[i].Load()
}

// EnableDiarization is Enable(KindDiarization).
func (e *Engine) EnableDiarization() error { return e.Enable(analysis.KindDiarization) }

// EnableRecognition is Enable(KindRecognition).
func (e *Engine) EnableRecognition() error { return e.Enable(analysis.KindRecognition) }

// EnableIdentification is Enable(KindIdentification).
func (e *Engine) EnableIdentification() error { return e.Enable(analysis.KindIdentification) }

// EnableEmotion is Enable(KindEmotion).
func (e *Engine) EnableEmotion() error { return e.Enable(analysis.KindEmotion) }

// ── Speaker profiles ───────────────────────────────────────────────────────

// AddSpeaker copies embedding into a new profile. The embedding must have
// the configured dimension; exceeding the profile capacity fails with
// InsufficientMemory.
func (e *Engine) AddSpeaker(name string, embedding []float32) error {
	profile, err := speaker.NewProfile(name, embedding, e.embeddingDim)
	if err != nil {
		return err
	}

	e.speakersMu.Lock()
	defer e.speakersMu.Unlock()
	if len(e.speakers) >= e.maxSpeakers {
		return status.Errorf(status.InsufficientMemory,
			"engine: speaker collection is at capacity (%d)", e.maxSpeakers)
	}
	e.speakers = append(e.speakers, profile)
	return nil
}

// RemoveSpeaker removes every profile with the given name. Removing a name
// with no profiles is not an error.
func (e *Engine) RemoveSpeaker(name string) {
	e.speakersMu.Lock()
	defer e.speakersMu.Unlock()
	e.speakers = slices.DeleteFunc(e.speakers, func(p speaker.Profile) bool {
		return p.Name == name
	})
}

// Speakers returns a snapshot copy of the profile collection.
func (e *Engine) Speakers() []speaker.Profile {
	e.speakersMu.RLock()
	defer e.speakersMu.RUnlock()
	out := make([]speaker.Profile, len(e.speakers))
	for i, p := range e.speakers {
		out[i] = p.Clone()
	}
	return out
}

// ── Finished windows ───────────────────────────────────────────────────────

// PublishWindow moves a finished analysis window into the coordinator's
// buffer. The producer never blocks: when the buffer is full the oldest
// unread window is silently overwritten.
func (e *Engine) PublishWindow(window audio.Segment) {
	e.windows.Push(window)
}

// NextWindow pops the oldest unread finished window. The second return is
// false when none is available.
func (e *Engine) NextWindow() (audio.Segment, bool) {
	return e.windows.Pop()
}

// PendingWindows reports the number of unread finished windows.
func (e *Engine) PendingWindows() int { return e.windows.Len() }
