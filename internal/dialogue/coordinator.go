package dialogue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"aria/internal/automation"
	"aria/internal/config"
	"aria/internal/decision"
	"aria/internal/intent"
	"aria/internal/knowledge"
	"aria/internal/logging"
)

// State is the coordinator's dialogue state.
type State int

const (
	StateIdle State = iota
	StateAwaitingSecurity
	StateAwaitingClarification
)

func (s State) String() string {
	switch s {
	case StateAwaitingSecurity:
		return "awaiting_security_decision"
	case StateAwaitingClarification:
		return "awaiting_clarification"
	default:
		return "idle"
	}
}

const (
	msgNoMatch       = "I'm not sure what you mean. Could you rephrase that?"
	msgExecFailed    = "Sorry, something went wrong while handling that."
	msgUnknownIntent = "I don't know how to help with that yet."
)

// PermissionGranter records the user's security decisions.
type PermissionGranter interface {
	GrantPermanent(domain string) error
	GrantOnce(domain string) error
	Block(domain string) error
}

// PreferenceRecorder persists chosen (intent, action) pairs.
type PreferenceRecorder interface {
	IncrementPreference(intent, action string) error
}

// Deps wires the coordinator's collaborators.
type Deps struct {
	Config      config.DecisionConfig
	Resolver    *intent.Resolver
	Knowledge   *knowledge.Base
	Selector    *decision.Selector
	Executor    automation.Executor
	Permissions PermissionGranter
	Preferences PreferenceRecorder // nil disables learning writes
	Audit       *logging.AuditSink // nil disables auditing
}

// pendingSecurity is the interrupt state while a permission question is open.
type pendingSecurity struct {
	domain   string
	url      string
	original string
	match    intent.Match
	action   string
	params   map[string]string
	prompt   string
}

// pendingClarification is the interrupt state while a disambiguation question
// is open. actions (with params) is set for ambiguous-action questions,
// candidates for low-confidence intent questions; never both. The intent
// answer path re-derives parameters from the chosen match instead.
type pendingClarification struct {
	original   string
	match      intent.Match
	params     map[string]string
	actions    []string
	candidates []intent.Match
	prompt     string
}

// Coordinator serializes all decision-making for one session. At most one
// pending interrupt exists at a time: the state field and the matching
// pending struct are set and cleared together under the mutex.
type Coordinator struct {
	mu sync.Mutex

	cfg      config.DecisionConfig
	resolver *intent.Resolver
	kb       *knowledge.Base
	selector *decision.Selector
	exec     automation.Executor
	perms    PermissionGranter
	prefs    PreferenceRecorder
	audit    *logging.AuditSink

	session       *Session
	state         State
	security      *pendingSecurity
	clarification *pendingClarification
}

// New builds a coordinator with a fresh session.
func New(d Deps) *Coordinator {
	return &Coordinator{
		cfg:      d.Config,
		resolver: d.Resolver,
		kb:       d.Knowledge,
		selector: d.Selector,
		exec:     d.Executor,
		perms:    d.Permissions,
		prefs:    d.Preferences,
		audit:    d.Audit,
		session:  NewSession(d.Config.ContextWindow),
	}
}

// HandleUtterance is the single entry point for a turn. When an interrupt is
// outstanding the text is interpreted as its answer; it is never re-entered
// into fresh intent resolution until the interrupt clears.
func (c *Coordinator) HandleUtterance(ctx context.Context, text string) Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	text = strings.TrimSpace(text)
	c.session.stats.Turns++
	c.audit.Record("dialogue", "utterance", map[string]any{"state": c.state.String()})

	switch c.state {
	case StateAwaitingSecurity:
		return c.handleSecurityAnswer(ctx, text)
	case StateAwaitingClarification:
		return c.handleClarificationAnswer(ctx, text)
	default:
		return c.handleIdle(ctx, text)
	}
}

// State returns the current dialogue state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Stats returns a copy of the session counters.
func (c *Coordinator) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.stats
}

// SessionID returns the session correlation id.
func (c *Coordinator) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.id
}

// Recent returns the retained turns, oldest first.
func (c *Coordinator) Recent() []Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Recent()
}

// SetAudit attaches the audit sink. Set once at startup, after the session id
// is known.
func (c *Coordinator) SetAudit(sink *logging.AuditSink) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.audit = sink
}

// SwapKnowledge atomically replaces the knowledge table. Used by hot reload.
func (c *Coordinator) SwapKnowledge(kb *knowledge.Base) {
	if kb == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.kb = kb
	logging.Dialogue("knowledge table swapped (%d intents)", len(kb.Intents()))
}

func (c *Coordinator) clearInterrupt() {
	c.security = nil
	c.clarification = nil
	c.state = StateIdle
}

func (c *Coordinator) handleIdle(ctx context.Context, text string) Result {
	matches := c.resolver.Resolve(text)
	if len(matches) == 0 {
		c.session.stats.Failures++
		c.audit.Record("dialogue", "no_match", map[string]any{"utterance": text})
		return Result{Kind: KindFailed, Message: msgNoMatch}
	}

	boosted := intent.Boost(matches, c.session.Snapshot())
	top := boosted[0]

	if top.Confidence < c.cfg.ConfidenceThreshold {
		return c.askIntentClarification(text, boosted)
	}
	return c.resolveIntent(ctx, text, top)
}

// askIntentClarification opens a low-confidence interrupt listing the top
// candidate intents.
func (c *Coordinator) askIntentClarification(text string, boosted []intent.Match) Result {
	n := c.cfg.MaxAlternatives
	if n > len(boosted) {
		n = len(boosted)
	}
	candidates := boosted[:n]

	names := make([]string, len(candidates))
	for i, m := range candidates {
		names[i] = m.Intent
	}
	prompt := intentPrompt(names)

	c.clarification = &pendingClarification{
		original:   text,
		match:      candidates[0],
		candidates: candidates,
		prompt:     prompt,
	}
	c.state = StateAwaitingClarification
	c.session.stats.Clarifications++

	logging.Dialogue("low confidence (%.2f) for %q, asking among %v", candidates[0].Confidence, text, names)
	c.audit.Record("dialogue", "clarification_opened", map[string]any{
		"reason": "low_confidence", "candidates": names,
	})
	return Result{
		Kind:         KindClarification,
		Intent:       candidates[0].Intent,
		Confidence:   candidates[0].Confidence,
		Message:      prompt,
		Alternatives: names,
	}
}

// resolveIntent runs action selection for a chosen match and either
// dispatches or opens an action clarification.
func (c *Coordinator) resolveIntent(ctx context.Context, text string, m intent.Match) Result {
	entry, ok := c.kb.Lookup(m.Intent)
	if !ok {
		c.session.stats.Failures++
		logging.Get(logging.CategoryDialogue).Warn("intent %s has no knowledge entry", m.Intent)
		return Result{Kind: KindFailed, Intent: m.Intent, Confidence: m.Confidence, Message: msgUnknownIntent}
	}
	params := normalizeParams(m)
	if entry.RequiresTopic && params[knowledge.ParamKey(m.Intent)] == "" {
		logging.DialogueDebug("intent %s wants a topic but none was extracted", m.Intent)
	}

	sel, err := c.selector.Select(m.Intent, entry)
	if err != nil {
		// An empty action set is a configuration defect. The user sees a
		// generic no-match; the log and audit trail keep it distinguishable.
		c.session.stats.Failures++
		logging.Get(logging.CategoryDialogue).Error("selection failed for %s: %v", m.Intent, err)
		c.audit.Record("dialogue", "empty_action_set", map[string]any{"intent": m.Intent})
		return Result{Kind: KindFailed, Intent: m.Intent, Confidence: m.Confidence, Message: msgNoMatch}
	}

	if sel.Kind == decision.KindClarify {
		c.clarification = &pendingClarification{
			original: text,
			match:    m,
			params:   params,
			actions:  sel.Alternatives,
			prompt:   sel.Message,
		}
		c.state = StateAwaitingClarification
		c.session.stats.Clarifications++
		c.audit.Record("dialogue", "clarification_opened", map[string]any{
			"reason": "ambiguous_action", "intent": m.Intent, "actions": sel.Alternatives,
		})
		return Result{
			Kind:         KindClarification,
			Intent:       m.Intent,
			Confidence:   m.Confidence,
			Message:      sel.Message,
			Alternatives: sel.Alternatives,
		}
	}
	return c.dispatch(ctx, text, m, sel.Action, params)
}

// dispatch hands the action to the executor and finalizes the turn.
func (c *Coordinator) dispatch(ctx context.Context, utterance string, m intent.Match, action string, params map[string]string) Result {
	outcome, err := c.exec.Execute(ctx, action, params)
	if err != nil {
		var perm *automation.PermissionRequiredError
		if errors.As(err, &perm) {
			prompt := fmt.Sprintf("%s isn't on your trusted list. Open it anyway? (yes / no / this time only)", perm.Domain)
			c.security = &pendingSecurity{
				domain:   perm.Domain,
				url:      perm.URL,
				original: utterance,
				match:    m,
				action:   action,
				params:   params,
				prompt:   prompt,
			}
			c.state = StateAwaitingSecurity
			c.session.stats.SecurityPrompts++
			logging.Security("awaiting permission decision for %s", perm.Domain)
			c.audit.Record("security", "prompt_opened", map[string]any{"domain": perm.Domain})
			return Result{
				Kind:         KindClarification,
				Intent:       m.Intent,
				Confidence:   m.Confidence,
				Message:      prompt,
				Alternatives: []string{"yes", "no", "this time only"},
			}
		}

		var blocked *automation.DomainBlockedError
		if errors.As(err, &blocked) {
			c.session.stats.Failures++
			c.audit.Record("security", "blocked_refused", map[string]any{"domain": blocked.Domain})
			return Result{
				Kind:       KindFailed,
				Intent:     m.Intent,
				Confidence: m.Confidence,
				Message:    fmt.Sprintf("%s is on your blocked list, so I won't open it.", blocked.Domain),
			}
		}

		c.session.stats.Failures++
		logging.Get(logging.CategoryDialogue).Error("executor failed for %s: %v", action, err)
		c.audit.Record("dialogue", "executor_failed", map[string]any{"action": action, "error": err.Error()})
		return Result{Kind: KindFailed, Intent: m.Intent, Confidence: m.Confidence, Message: msgExecFailed}
	}

	c.session.RecordSuccess(Turn{Utterance: utterance, Intent: m.Intent, Action: action})
	if c.cfg.LearningEnabled && c.prefs != nil {
		if err := c.prefs.IncrementPreference(m.Intent, action); err != nil {
			logging.Get(logging.CategoryDialogue).Warn("preference update failed: %v", err)
		}
	}
	c.session.stats.Resolved++
	logging.Dialogue("resolved %q -> intent=%s action=%s", utterance, m.Intent, action)
	c.audit.Record("dialogue", "resolved", map[string]any{
		"intent": m.Intent, "action": action, "confidence": m.Confidence,
	})
	return Result{
		Kind:              KindResolved,
		Intent:            m.Intent,
		Confidence:        m.Confidence,
		Action:            action,
		AutomationCommand: automation.BuildCommand(action, params),
		Parameters:        params,
		Message:           outcome,
	}
}

// Security answer classes.
type securityAnswer int

const (
	securityUnrecognized securityAnswer = iota
	securityGrantPermanent
	securityDeny
	securityGrantOnce
)

func classifySecurityAnswer(norm string) securityAnswer {
	switch norm {
	case "yes", "y", "allow", "allow permanently", "permanently":
		return securityGrantPermanent
	case "no", "n", "block", "deny", "never":
		return securityDeny
	case "this time only", "once", "just once", "temporary", "temp":
		return securityGrantOnce
	default:
		return securityUnrecognized
	}
}

func (c *Coordinator) handleSecurityAnswer(ctx context.Context, answer string) Result {
	p := c.security
	norm := strings.ToLower(strings.TrimSpace(answer))

	switch classifySecurityAnswer(norm) {
	case securityGrantPermanent:
		if err := c.perms.GrantPermanent(p.domain); err != nil {
			return c.failSecurity(p, err)
		}
		c.audit.Record("security", "granted_permanent", map[string]any{"domain": p.domain})
		c.clearInterrupt()
		return c.dispatch(ctx, p.original, p.match, p.action, p.params)

	case securityGrantOnce:
		if err := c.perms.GrantOnce(p.domain); err != nil {
			return c.failSecurity(p, err)
		}
		c.audit.Record("security", "granted_once", map[string]any{"domain": p.domain})
		c.clearInterrupt()
		return c.dispatch(ctx, p.original, p.match, p.action, p.params)

	case securityDeny:
		if err := c.perms.Block(p.domain); err != nil {
			return c.failSecurity(p, err)
		}
		c.audit.Record("security", "denied", map[string]any{"domain": p.domain})
		c.clearInterrupt()
		return Result{
			Kind:       KindFailed,
			Intent:     p.match.Intent,
			Confidence: p.match.Confidence,
			Message:    fmt.Sprintf("Okay, I won't open %s.", p.domain),
		}

	default:
		// Stay in the security state and ask again.
		c.audit.Record("security", "unrecognized_answer", map[string]any{"domain": p.domain})
		return Result{
			Kind:         KindClarification,
			Intent:       p.match.Intent,
			Confidence:   p.match.Confidence,
			Message:      "Please answer yes, no, or \"this time only\". " + p.prompt,
			Alternatives: []string{"yes", "no", "this time only"},
		}
	}
}

func (c *Coordinator) failSecurity(p *pendingSecurity, err error) Result {
	c.session.stats.Failures++
	logging.Get(logging.CategorySecurity).Error("permission update failed for %s: %v", p.domain, err)
	c.clearInterrupt()
	return Result{Kind: KindFailed, Intent: p.match.Intent, Message: msgExecFailed}
}

func (c *Coordinator) handleClarificationAnswer(ctx context.Context, answer string) Result {
	p := c.clarification
	norm := strings.ToLower(strings.TrimSpace(answer))

	// Candidate actions first, in declared order. A candidate matches when
	// the answer contains its humanized name.
	for _, a := range p.actions {
		if answerMentions(norm, a) {
			logging.Dialogue("clarification answered with action %s", a)
			c.audit.Record("dialogue", "clarification_answered", map[string]any{"action": a})
			c.clearInterrupt()
			return c.dispatch(ctx, p.original, p.match, a, p.params)
		}
	}

	// Then candidate intents.
	for _, m := range p.candidates {
		if answerMentions(norm, m.Intent) {
			logging.Dialogue("clarification answered with intent %s", m.Intent)
			c.audit.Record("dialogue", "clarification_answered", map[string]any{"intent": m.Intent})
			c.clearInterrupt()
			return c.resolveIntent(ctx, p.original, m)
		}
	}

	// No resolvable signal: clear the interrupt and treat the combined text
	// as a brand-new turn so the conversation cannot deadlock.
	logging.Dialogue("clarification answer %q matched nothing, retrying combined command", answer)
	c.audit.Record("dialogue", "clarification_fallback", nil)
	original := p.original
	c.clearInterrupt()
	return c.handleIdle(ctx, original+" "+answer)
}

// answerMentions reports whether a free-text answer refers to a candidate id.
// Ids are matched with separators normalized to spaces, case-insensitive. The
// candidate's name must appear in the answer, never the reverse: a short
// answer that is merely a fragment of a candidate ("no" inside "open notepad")
// selects nothing.
func answerMentions(norm, id string) bool {
	if norm == "" {
		return false
	}
	human := strings.ReplaceAll(strings.ToLower(id), "_", " ")
	return strings.Contains(norm, human) || strings.Contains(norm, strings.ToLower(id))
}

// normalizeParams copies a match's entities and remaps the primary entity to
// the intent's canonical parameter name.
func normalizeParams(m intent.Match) map[string]string {
	params := make(map[string]string, len(m.Entities))
	for k, v := range m.Entities {
		params[k] = v
	}
	if key := knowledge.ParamKey(m.Intent); key != "" {
		if pe, ok := params[intent.PrimaryEntity]; ok {
			params[key] = pe
			delete(params, intent.PrimaryEntity)
		}
	}
	return params
}

// intentPrompt phrases a low-confidence question over candidate intents.
func intentPrompt(names []string) string {
	human := make([]string, len(names))
	for i, n := range names {
		human[i] = strings.ReplaceAll(n, "_", " ")
	}
	switch len(human) {
	case 1:
		return fmt.Sprintf("Did you mean %s?", human[0])
	case 2:
		return fmt.Sprintf("Did you mean %s or %s?", human[0], human[1])
	default:
		return fmt.Sprintf("Did you mean %s, or %s?",
			strings.Join(human[:len(human)-1], ", "), human[len(human)-1])
	}
}
