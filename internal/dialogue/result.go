// Package dialogue coordinates decision-making for one session: it owns the
// state machine that routes utterances, tracks at most one pending interrupt,
// and dispatches resolved actions to the executor.
package dialogue

// ResultKind distinguishes the three outcomes of a turn.
type ResultKind int

const (
	// KindResolved means an action was selected and dispatched.
	KindResolved ResultKind = iota
	// KindClarification means the engine needs a follow-up answer before it
	// can act. Covers low confidence, ambiguous actions, and security prompts.
	KindClarification
	// KindFailed means the turn produced no action and no question.
	KindFailed
)

// Result is the outcome of one turn. Intent and Confidence are echoed on all
// kinds where they are known.
type Result struct {
	Kind       ResultKind
	Intent     string
	Confidence float64

	// KindResolved
	Action            string
	AutomationCommand string
	Parameters        map[string]string

	// Message carries the user-facing text for every kind: the execution
	// outcome, the clarification question, or the failure explanation.
	Message string

	// KindClarification
	Alternatives []string
}
