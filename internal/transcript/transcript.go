// Package transcript assembles analysis annotations into an ordered script.
//
// Annotations arrive out of order because each analysis stage runs at its
// own pace. The script keys entries by window start time: annotations for
// the same window merge into one entry, and entries stay sorted by start
// time regardless of arrival order.
//
// Adjacent windows overlap by half their length, so consecutive recognition
// results usually repeat each other's edge words. [Script.Apply] trims the
// repeated prefix of each new entry against its predecessor using fuzzy
// token comparison, since recognisers rarely transcribe the shared half
// identically.
package transcript

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/antzucaro/matchr"

	"github.com/tmarkko/quillcast/pkg/analysis"
)

// defaultMergeTolerance bounds how far apart two timestamps may be while
// still denoting the same window. Capture jitter keeps same-window
// annotations well inside a half-window of each other.
const defaultMergeTolerance = 10 * time.Millisecond

// Entry is one line of the script: everything known about a single window.
type Entry struct {
	// Start is the capture time of the window's earlier edge.
	Start time.Time

	// Speaker is the identified speaker name, if identification ran.
	Speaker string

	// Emotion is the detected emotion label, if emotion analysis ran.
	Emotion string

	// Text is the recognised speech, overlap-trimmed against the
	// preceding entry.
	Text string
}

// Option is a functional option for configuring a [Script].
type Option func(*Script)

// WithMergeTolerance sets the maximum timestamp distance at which two
// annotations are considered to describe the same window.
func WithMergeTolerance(d time.Duration) Option {
	return func(s *Script) {
		s.mergeTolerance = d
	}
}

// Script is the ordered, merged result of all analysis stages. It is safe
// for concurrent use.
type Script struct {
	mu             sync.Mutex
	entries        []Entry
	mergeTolerance time.Duration
}

// New returns an empty [Script].
func New(opts ...Option) *Script {
	s := &Script{mergeTolerance: defaultMergeTolerance}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Apply folds one annotation into the script. Annotations whose window
// start falls within the merge tolerance of an existing entry update that
// entry; otherwise a new entry is inserted in start-time order. Empty
// annotations are ignored.
func (s *Script) Apply(a analysis.Annotation) {
	if a.Empty() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.locate(a.At)
	if idx < 0 {
		idx = s.insert(a.At)
	}
	e := &s.entries[idx]

	switch a.Kind {
	case analysis.KindRecognition:
		if a.Text != "" {
			e.Text = a.Text
			s.trimOverlap(idx)
			if idx+1 < len(s.entries) {
				s.trimOverlap(idx + 1)
			}
		}
	case analysis.KindDiarization, analysis.KindIdentification:
		if a.Speaker != "" {
			e.Speaker = a.Speaker
		}
	case analysis.KindEmotion:
		if a.Emotion != "" {
			e.Emotion = a.Emotion
		}
	}
}

// locate returns the index of the entry whose start time is within the
// merge tolerance of at, or -1.
func (s *Script) locate(at time.Time) int {
	for i := range s.entries {
		d := s.entries[i].Start.Sub(at)
		if d < 0 {
			d = -d
		}
		if d <= s.mergeTolerance {
			return i
		}
	}
	return -1
}

// insert adds an empty entry for at keeping entries sorted by start time,
// and returns its index.
func (s *Script) insert(at time.Time) int {
	idx := sort.Search(len(s.entries), func(i int) bool {
		return s.entries[i].Start.After(at)
	})
	s.entries = append(s.entries, Entry{})
	copy(s.entries[idx+1:], s.entries[idx:])
	s.entries[idx] = Entry{Start: at}
	return idx
}

// trimOverlap removes from entry idx the leading tokens that repeat the
// trailing tokens of the previous entry.
func (s *Script) trimOverlap(idx int) {
	if idx == 0 {
		return
	}
	prev := s.entries[idx-1].Text
	cur := s.entries[idx].Text
	if prev == "" || cur == "" {
		return
	}
	s.entries[idx].Text = dedupeOverlap(prev, cur)
}

// dedupeOverlap trims from next the longest token prefix that fuzzily
// matches a token suffix of prev. Adjacent windows share half their
// samples, so the recogniser tends to hear the junction words twice with
// small spelling drift; Levenshtein distance absorbs that drift.
func dedupeOverlap(prev, next string) string {
	prevTok := strings.Fields(prev)
	nextTok := strings.Fields(next)
	if len(prevTok) == 0 || len(nextTok) == 0 {
		return next
	}

	max := len(prevTok)
	if len(nextTok) < max {
		max = len(nextTok)
	}

	for n := max; n > 0; n-- {
		if tokensMatch(prevTok[len(prevTok)-n:], nextTok[:n]) {
			return strings.Join(nextTok[n:], " ")
		}
	}
	return next
}

// tokensMatch reports whether two equal-length token runs are the same
// words up to minor transcription drift.
func tokensMatch(a, b []string) bool {
	for i := range a {
		x := strings.ToLower(a[i])
		y := strings.ToLower(b[i])
		if x == y {
			continue
		}
		limit := len(x) / 4
		if limit < 1 {
			limit = 1
		}
		if matchr.Levenshtein(x, y) > limit {
			return false
		}
	}
	return true
}

// Entries returns a snapshot of the script in start-time order.
func (s *Script) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of entries.
func (s *Script) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Render writes the script to w, one line per entry. Lines carry the
// window offset from the first entry, the speaker and emotion when known,
// and the text.
func (s *Script) Render(w io.Writer) error {
	for _, e := range s.Entries() {
		var sb strings.Builder
		fmt.Fprintf(&sb, "[%s]", e.Start.Format("15:04:05.000"))
		if e.Speaker != "" {
			sb.WriteString(" ")
			sb.WriteString(e.Speaker)
		}
		if e.Emotion != "" {
			fmt.Fprintf(&sb, " (%s)", e.Emotion)
		}
		sb.WriteString(": ")
		sb.WriteString(e.Text)
		sb.WriteString("\n")
		if _, err := io.WriteString(w, sb.String()); err != nil {
			return err
		}
	}
	return nil
}
