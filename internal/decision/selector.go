// Package decision selects a concrete action for a resolved intent, using
// the knowledge table plus learned preferences.
package decision

import (
	"errors"
	"fmt"

	"aria/internal/knowledge"
	"aria/internal/logging"
)

// ErrEmptyActionSet marks a knowledge entry that declares no actions. This is
// a configuration defect, not a user error; callers surface it as a failed
// resolution but it stays distinguishable in logs.
var ErrEmptyActionSet = errors.New("intent has no actions configured")

// SelectionKind distinguishes the two selector outcomes.
type SelectionKind int

const (
	// KindSingle means exactly one action was chosen.
	KindSingle SelectionKind = iota
	// KindClarify means the user must pick among the listed actions.
	KindClarify
)

// Selection is the outcome of action selection for one intent.
type Selection struct {
	Kind SelectionKind
	// Action is set for KindSingle.
	Action string
	// Message and Alternatives are set for KindClarify. Alternatives keep the
	// knowledge table's declaration order.
	Message      string
	Alternatives []string
}

// PreferenceSource supplies the learned most-frequent action per intent.
// An empty return means nothing has been learned.
type PreferenceSource interface {
	PreferredAction(intent string) (string, error)
}

// Selector picks actions for intents.
type Selector struct {
	prefs           PreferenceSource
	learningEnabled bool
}

// NewSelector builds a selector. prefs may be nil when learning is disabled.
func NewSelector(prefs PreferenceSource, learningEnabled bool) *Selector {
	return &Selector{prefs: prefs, learningEnabled: learningEnabled}
}

// Select chooses an action for the intent given its knowledge entry.
func (s *Selector) Select(intent string, entry knowledge.Entry) (Selection, error) {
	if len(entry.Actions) == 0 {
		return Selection{}, fmt.Errorf("intent %q: %w", intent, ErrEmptyActionSet)
	}

	if len(entry.Actions) == 1 {
		return Selection{Kind: KindSingle, Action: entry.Actions[0]}, nil
	}

	if entry.ContextSensitive {
		action := entry.PriorityAction()
		if learned := s.learnedAction(intent, entry); learned != "" {
			logging.DecisionDebug("learned preference overrides priority for %s: %s", intent, learned)
			action = learned
		}
		return Selection{Kind: KindSingle, Action: action}, nil
	}

	alts := make([]string, len(entry.Actions))
	copy(alts, entry.Actions)
	return Selection{
		Kind:         KindClarify,
		Message:      knowledge.ClarifyMessage(intent, entry.Actions),
		Alternatives: alts,
	}, nil
}

// learnedAction returns the learned most-frequent action when it is still a
// member of the entry's action set. Preference lookups never fail a
// selection; errors degrade to the static priority.
func (s *Selector) learnedAction(intent string, entry knowledge.Entry) string {
	if !s.learningEnabled || s.prefs == nil {
		return ""
	}
	learned, err := s.prefs.PreferredAction(intent)
	if err != nil {
		logging.Get(logging.CategoryDecision).Warn("preference lookup failed for %s: %v", intent, err)
		return ""
	}
	for _, a := range entry.Actions {
		if a == learned {
			return learned
		}
	}
	return ""
}
