package dialogue

import (
	"time"

	"github.com/google/uuid"

	"aria/internal/intent"
)

// Turn is one completed decision.
type Turn struct {
	Utterance string
	Intent    string
	Action    string
}

// Stats counts session activity. Exposed through Coordinator.Stats.
type Stats struct {
	Turns           int
	Resolved        int
	Clarifications  int
	SecurityPrompts int
	Failures        int
}

// Session holds the per-session mutable context: the bounded recent-turn
// window, the last resolved intent, and activity counters. It carries no lock
// of its own; the coordinator's critical section covers all access.
type Session struct {
	id         string
	lastIntent string
	recent     []Turn
	window     int
	stats      Stats
	now        func() time.Time
}

// NewSession creates a session with a fresh id and the given context window.
func NewSession(window int) *Session {
	if window < 1 {
		window = 1
	}
	return &Session{
		id:     uuid.NewString(),
		window: window,
		now:    time.Now,
	}
}

// ID returns the session correlation id.
func (s *Session) ID() string { return s.id }

// LastIntent returns the most recently resolved intent, or "".
func (s *Session) LastIntent() string { return s.lastIntent }

// Recent returns a copy of the retained turns, oldest first.
func (s *Session) Recent() []Turn {
	out := make([]Turn, len(s.recent))
	copy(out, s.recent)
	return out
}

// Snapshot captures the context slice the booster reads.
func (s *Session) Snapshot() intent.Snapshot {
	return intent.Snapshot{
		LastIntent: s.lastIntent,
		TimeBucket: intent.BucketForHour(s.now().Hour()),
	}
}

// RecordSuccess appends a completed turn, dropping the oldest beyond the
// window, and updates the last intent.
func (s *Session) RecordSuccess(t Turn) {
	s.recent = append(s.recent, t)
	if len(s.recent) > s.window {
		s.recent = s.recent[len(s.recent)-s.window:]
	}
	s.lastIntent = t.Intent
}
