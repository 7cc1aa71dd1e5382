// Package intent turns raw utterances into ranked, confidence-scored intent
// matches with extracted entities.
package intent

import (
	"fmt"
	"regexp"
)

// Tier names a confidence tier of the pattern bank.
type Tier string

const (
	TierHigh   Tier = "high"
	TierMedium Tier = "medium"
	TierLow    Tier = "low"
)

// Base confidence per tier. Tiers are evaluated high to low; within an intent
// only the single best (tier, pattern) pair survives.
var tierBase = []struct {
	Tier Tier
	Base float64
}{
	{TierHigh, 0.9},
	{TierMedium, 0.6},
	{TierLow, 0.3},
}

// PatternSpec is the raw, uncompiled form of a pattern bank:
// intent id -> tier -> ordered pattern sources.
type PatternSpec map[string]map[Tier][]string

// compiledPattern keeps the source string alongside the compiled regexp so
// matches can report which pattern won.
type compiledPattern struct {
	source string
	re     *regexp.Regexp
}

// PatternBank is the static intent pattern table. Built once at startup;
// read-only afterwards.
type PatternBank struct {
	order    []string // intents in declaration order, for deterministic ranking
	patterns map[string]map[Tier][]compiledPattern
}

// NewPatternBank compiles a PatternSpec. Any bad pattern fails the whole
// constructor - pattern defects surface at load time, not per request.
// Intent order follows the order slice; intents in spec but absent from order
// are rejected to keep evaluation deterministic.
func NewPatternBank(order []string, spec PatternSpec) (*PatternBank, error) {
	if len(order) != len(spec) {
		return nil, fmt.Errorf("pattern bank order lists %d intents, spec has %d", len(order), len(spec))
	}
	bank := &PatternBank{
		order:    make([]string, 0, len(order)),
		patterns: make(map[string]map[Tier][]compiledPattern, len(spec)),
	}
	for _, intent := range order {
		tiers, ok := spec[intent]
		if !ok {
			return nil, fmt.Errorf("intent %q in order but not in spec", intent)
		}
		compiled := make(map[Tier][]compiledPattern, len(tiers))
		for tier, sources := range tiers {
			for _, src := range sources {
				re, err := regexp.Compile(src)
				if err != nil {
					return nil, fmt.Errorf("intent %q tier %q pattern %q: %w", intent, tier, src, err)
				}
				compiled[tier] = append(compiled[tier], compiledPattern{source: src, re: re})
			}
		}
		bank.order = append(bank.order, intent)
		bank.patterns[intent] = compiled
	}
	return bank, nil
}

// Intents returns the intent ids in declaration order.
func (b *PatternBank) Intents() []string {
	out := make([]string, len(b.order))
	copy(out, b.order)
	return out
}

// defaultOrder fixes the evaluation order of the built-in bank.
var defaultOrder = []string{
	"find_video",
	"play_music",
	"get_info",
	"open_website",
	"system_check",
	"launch_app",
	"search_web",
	"entertainment",
	"work_task",
	"file_management",
	"news_update",
	"social_media",
	"learning",
	"productivity",
	"communication",
	"shopping",
}

// defaultSpec is the built-in intent pattern table.
var defaultSpec = PatternSpec{
	"find_video": {
		TierHigh:   {`show me.*video.*about\s+(.+)`, `find.*video.*on\s+(.+)`, `search.*video.*(.+)`, `want.*watch.*video.*(.+)`},
		TierMedium: {`show me.*(.+).*video`, `find.*(.+).*video`, `watch.*(.+)`, `video.*(.+)`},
		TierLow:    {`video`, `watch`, `show`},
	},
	"play_music": {
		TierHigh:   {`play.*music.*by\s+(.+)`, `listen.*to\s+(.+).*music`, `put on.*(.+).*music`},
		TierMedium: {`play.*music`, `listen.*music`, `some.*music`},
		TierLow:    {`music`, `song`, `play`},
	},
	"get_info": {
		TierHigh:   {`what.*is\s+(.+)`, `tell me.*about\s+(.+)`, `search.*for\s+(.+)`, `explain\s+(.+)`},
		TierMedium: {`what.*(.+)`, `about.*(.+)`, `info.*(.+)`},
		TierLow:    {`what`, `info`, `tell`},
	},
	"open_website": {
		TierHigh:   {`open\s+(https?://[^\s]+)`, `go to\s+(www\.[^\s]+)`},
		TierMedium: {`open\s+([a-zA-Z0-9-]+\.[a-zA-Z]{2,})`, `go to\s+([a-zA-Z0-9-]+\.[a-zA-Z]{2,})`},
		TierLow:    {`open.*\.com`, `website`},
	},
	"system_check": {
		TierHigh:   {`system.*status`, `check.*system.*performance`, `performance.*report`},
		TierMedium: {`check.*system`, `system.*info`, `performance`},
		TierLow:    {`system`, `status`, `check`},
	},
	"launch_app": {
		TierHigh:   {`open\s+(notepad|calculator|paint|word|excel)`, `launch\s+(notepad|calculator|paint)`},
		TierMedium: {`open\s+([a-zA-Z]+)`, `launch\s+([a-zA-Z]+)`},
		TierLow:    {`open`, `launch`, `start`},
	},
	"search_web": {
		TierHigh:   {`google.*for\s+(.+)`, `search.*google.*(.+)`, `look up.*(.+).*online`},
		TierMedium: {`google.*(.+)`, `search.*(.+)`, `look up.*(.+)`},
		TierLow:    {`google`, `search`},
	},
	"entertainment": {
		TierHigh:   {`entertain.*me`, `something.*fun.*to.*do`, `i.*am.*bored`},
		TierMedium: {`something.*fun`, `bored`, `entertainment`},
		TierLow:    {`fun`, `entertain`},
	},
	"work_task": {
		TierHigh:   {`need.*help.*with.*work`, `work.*related.*task`},
		TierMedium: {`work.*task`, `office.*task`, `document.*work`},
		TierLow:    {`work`, `office`},
	},
	"file_management": {
		TierHigh:   {`find.*file.*named\s+(.+)`, `open.*folder.*(.+)`},
		TierMedium: {`find.*file`, `open.*folder`, `browse.*files`},
		TierLow:    {`file`, `folder`, `explorer`},
	},
	"news_update": {
		TierHigh:   {`latest.*news.*about\s+(.+)`, `news.*today.*(.+)`},
		TierMedium: {`latest.*news`, `news.*today`, `current.*events`},
		TierLow:    {`news`, `events`},
	},
	"social_media": {
		TierHigh:   {`open\s+(facebook|twitter|instagram|linkedin|tiktok)`, `check\s+(facebook|twitter|instagram)`},
		TierMedium: {`social.*media`, `check.*social`},
		TierLow:    {`social`, `facebook`, `twitter`},
	},
	"learning": {
		TierHigh:   {`learn.*about\s+(.+)`, `tutorial.*on\s+(.+)`, `teach.*me\s+(.+)`},
		TierMedium: {`learn.*(.+)`, `tutorial.*(.+)`, `how.*to.*(.+)`},
		TierLow:    {`learn`, `tutorial`, `teach`},
	},
	"productivity": {
		TierHigh:   {`schedule.*appointment.*(.+)`, `reminder.*for\s+(.+)`, `organize.*(.+)`},
		TierMedium: {`schedule.*(.+)`, `calendar.*(.+)`, `reminder.*(.+)`},
		TierLow:    {`schedule`, `calendar`, `reminder`},
	},
	"communication": {
		TierHigh:   {`send.*email.*to\s+(.+)`, `call\s+(.+)`, `message\s+(.+)`},
		TierMedium: {`send.*email`, `make.*call`, `send.*message`},
		TierLow:    {`email`, `call`, `message`},
	},
	"shopping": {
		TierHigh:   {`buy\s+(.+)`, `shop.*for\s+(.+)`, `purchase\s+(.+)`},
		TierMedium: {`shopping.*(.+)`, `buy.*(.+)`, `price.*(.+)`},
		TierLow:    {`buy`, `shop`, `purchase`},
	},
}

// DefaultPatternBank returns the built-in pattern bank.
// The built-in table is known good; a compile failure here is a programming
// error, hence the panic.
func DefaultPatternBank() *PatternBank {
	bank, err := NewPatternBank(defaultOrder, defaultSpec)
	if err != nil {
		panic(fmt.Sprintf("built-in pattern bank failed to compile: %v", err))
	}
	return bank
}
