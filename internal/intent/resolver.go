package intent

import (
	"sort"
	"strings"

	"aria/internal/logging"
)

// Match is one candidate interpretation of an utterance. Created fresh per
// utterance; confidence is the only field ever adjusted afterwards, and only
// on copies (see ContextBooster).
type Match struct {
	Intent     string
	Confidence float64
	Pattern    string
	Entities   map[string]string
}

// Resolver scores every intent in the pattern bank against an utterance.
type Resolver struct {
	bank     *PatternBank
	entities *EntityExtractor
}

// NewResolver builds a resolver over the given bank. A nil bank uses the
// built-in table.
func NewResolver(bank *PatternBank) *Resolver {
	if bank == nil {
		bank = DefaultPatternBank()
	}
	return &Resolver{bank: bank, entities: NewEntityExtractor()}
}

// Bank exposes the resolver's pattern bank (read-only use).
func (r *Resolver) Bank() *PatternBank { return r.bank }

// SwapBank atomically replaces the pattern bank. Used by hot reload; callers
// must pass a fully built bank.
func (r *Resolver) SwapBank(bank *PatternBank) {
	if bank != nil {
		r.bank = bank
	}
}

// Resolve returns all matching intents, highest confidence first, empty when
// nothing matches. Blank input short-circuits before pattern evaluation.
func (r *Resolver) Resolve(utterance string) []Match {
	lowered := strings.ToLower(strings.TrimSpace(utterance))
	if lowered == "" {
		return nil
	}

	var matches []Match
	for _, intentID := range r.bank.order {
		best, ok := r.bestForIntent(intentID, lowered)
		if !ok {
			continue
		}
		// Generic entities come from the original-case utterance; person and
		// location extraction depend on capitalization.
		for name, value := range r.entities.Extract(utterance) {
			if _, exists := best.Entities[name]; !exists {
				best.Entities[name] = value
			}
		}
		matches = append(matches, best)
	}

	// Stable: ties keep pattern-bank declaration order.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Confidence > matches[j].Confidence
	})

	if len(matches) > 0 {
		logging.DecisionDebug("resolved %q -> %s (%.2f) among %d candidates",
			lowered, matches[0].Intent, matches[0].Confidence, len(matches))
	}
	return matches
}

// bestForIntent evaluates all tiers of one intent and keeps the single
// highest-scoring (tier, pattern) pair.
func (r *Resolver) bestForIntent(intentID, lowered string) (Match, bool) {
	tiers := r.bank.patterns[intentID]
	best := Match{Intent: intentID}

	for _, tb := range tierBase {
		for _, p := range tiers[tb.Tier] {
			loc := p.re.FindStringSubmatchIndex(lowered)
			if loc == nil {
				continue
			}
			span := lowered[loc[0]:loc[1]]
			score := tb.Base
			if span == lowered {
				score += 0.1
			}
			score += 0.1 * float64(len(span)) / float64(len(lowered))
			if score > 1.0 {
				score = 1.0
			}
			if score <= best.Confidence {
				continue
			}
			best.Confidence = score
			best.Pattern = p.source
			best.Entities = map[string]string{}
			// First capturing group, if any, becomes the primary entity.
			if len(loc) >= 4 && loc[2] >= 0 {
				best.Entities[PrimaryEntity] = strings.TrimSpace(lowered[loc[2]:loc[3]])
			}
		}
	}

	return best, best.Confidence > 0
}
