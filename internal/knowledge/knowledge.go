// Package knowledge holds the intent-to-action table: which actions can serve
// an intent, which one is preferred, and how resolved entities map onto action
// parameters. The built-in table can be replaced by a YAML file and hot
// reloaded while running.
package knowledge

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Entry describes the actions available for one intent.
type Entry struct {
	// Actions in declared order. Declaration order is meaningful: it drives
	// clarification listings and answer matching.
	Actions []string `yaml:"actions"`
	// Priority is the default action for context-sensitive selection. Empty
	// or unknown falls back to the first action.
	Priority string `yaml:"priority,omitempty"`
	// ContextSensitive entries auto-select a single action; others ask the
	// user to choose when more than one action exists.
	ContextSensitive bool `yaml:"context_sensitive"`
	// RequiresTopic marks intents whose actions are meaningless without a
	// subject entity.
	RequiresTopic bool `yaml:"requires_topic,omitempty"`
}

// PriorityAction returns the action used when selection must not ask back.
func (e Entry) PriorityAction() string {
	if e.Priority != "" {
		for _, a := range e.Actions {
			if a == e.Priority {
				return e.Priority
			}
		}
	}
	if len(e.Actions) > 0 {
		return e.Actions[0]
	}
	return ""
}

// Base is an ordered intent-to-entry table.
type Base struct {
	order   []string
	entries map[string]Entry
}

// Lookup returns the entry for an intent.
func (b *Base) Lookup(intent string) (Entry, bool) {
	e, ok := b.entries[intent]
	return e, ok
}

// Intents returns the intent ids in declared order.
func (b *Base) Intents() []string {
	out := make([]string, len(b.order))
	copy(out, b.order)
	return out
}

// defaultEntries is the built-in table, in declaration order.
var defaultEntries = []struct {
	intent string
	entry  Entry
}{
	{"find_video", Entry{
		Actions:          []string{"search_youtube", "check_local_videos"},
		Priority:         "search_youtube",
		ContextSensitive: true,
		RequiresTopic:    true,
	}},
	{"play_music", Entry{
		Actions:          []string{"open_spotify", "search_youtube_music"},
		Priority:         "open_spotify",
		ContextSensitive: true,
	}},
	{"entertainment", Entry{
		Actions:          []string{"search_youtube", "open_netflix", "open_spotify"},
		Priority:         "search_youtube",
		ContextSensitive: true,
	}},
	{"get_info", Entry{
		Actions:          []string{"search_google", "search_wikipedia"},
		Priority:         "search_google",
		ContextSensitive: true,
		RequiresTopic:    true,
	}},
	{"search_web", Entry{
		Actions:       []string{"search_google", "search_bing"},
		Priority:      "search_google",
		RequiresTopic: true,
	}},
	{"news_update", Entry{
		Actions:          []string{"search_google_news", "open_news_website"},
		ContextSensitive: true,
	}},
	{"open_website", Entry{
		Actions:       []string{"open_website"},
		RequiresTopic: true,
	}},
	{"social_media", Entry{
		Actions:          []string{"open_facebook", "open_twitter", "open_instagram"},
		ContextSensitive: true,
	}},
	{"system_check", Entry{
		Actions: []string{"get_system_status", "check_performance"},
	}},
	{"launch_app", Entry{
		Actions:       []string{"open_application"},
		RequiresTopic: true,
	}},
	{"work_task", Entry{
		Actions:          []string{"open_notepad", "open_calculator"},
		ContextSensitive: true,
	}},
	{"file_management", Entry{
		Actions:          []string{"open_explorer", "search_files"},
		ContextSensitive: true,
	}},
	{"productivity", Entry{
		Actions:          []string{"open_calendar", "create_reminder"},
		ContextSensitive: true,
	}},
	{"learning", Entry{
		Actions:          []string{"search_educational_content", "find_tutorials"},
		ContextSensitive: true,
		RequiresTopic:    true,
	}},
	{"communication", Entry{
		Actions:          []string{"open_email", "open_messaging"},
		ContextSensitive: true,
	}},
	{"shopping", Entry{
		Actions:          []string{"search_products", "open_shopping_site"},
		ContextSensitive: true,
		RequiresTopic:    true,
	}},
}

// Default returns the built-in knowledge base.
func Default() *Base {
	b := &Base{entries: make(map[string]Entry, len(defaultEntries))}
	for _, d := range defaultEntries {
		b.order = append(b.order, d.intent)
		b.entries[d.intent] = d.entry
	}
	return b
}

// fileFormat is the on-disk YAML shape. A list keeps intent order stable.
type fileFormat struct {
	Intents []struct {
		Intent string `yaml:"intent"`
		Entry  `yaml:",inline"`
	} `yaml:"intents"`
}

// Load reads a knowledge base file, replacing the built-in table entirely.
func Load(path string) (*Base, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read knowledge base %s: %w", path, err)
	}
	return Parse(data)
}

// Parse builds a knowledge base from YAML content.
func Parse(data []byte) (*Base, error) {
	var ff fileFormat
	if err := yaml.Unmarshal(data, &ff); err != nil {
		return nil, fmt.Errorf("failed to parse knowledge base: %w", err)
	}
	if len(ff.Intents) == 0 {
		return nil, fmt.Errorf("knowledge base declares no intents")
	}

	b := &Base{entries: make(map[string]Entry, len(ff.Intents))}
	for _, item := range ff.Intents {
		if item.Intent == "" {
			return nil, fmt.Errorf("knowledge base entry missing intent id")
		}
		if _, dup := b.entries[item.Intent]; dup {
			return nil, fmt.Errorf("knowledge base declares intent %q twice", item.Intent)
		}
		b.order = append(b.order, item.Intent)
		b.entries[item.Intent] = item.Entry
	}
	return b, nil
}

// paramKeys maps intents to the parameter name their primary entity fills.
// Intents not listed keep the raw entity keys.
var paramKeys = map[string]string{
	"find_video":   "topic",
	"get_info":     "topic",
	"search_web":   "topic",
	"learning":     "topic",
	"play_music":   "music_query",
	"open_website": "url",
	"launch_app":   "application",
}

// ParamKey returns the action parameter name the primary entity maps to for
// an intent, or "" when the raw entity keys should be kept.
func ParamKey(intent string) string {
	return paramKeys[intent]
}

// Per-intent clarification phrasings. Everything else gets the generic form.
var clarifyTemplates = map[string]string{
	"find_video": "Would you like me to search YouTube or check your local videos?",
	"play_music": "Should I open Spotify or search YouTube Music?",
}

// ClarifyMessage builds the question asked when an intent has several actions
// and none can be auto-selected. Action ids are humanized (underscores become
// spaces) and at most three are listed.
func ClarifyMessage(intent string, actions []string) string {
	if msg, ok := clarifyTemplates[intent]; ok {
		return msg
	}
	shown := actions
	if len(shown) > 3 {
		shown = shown[:3]
	}
	humanized := make([]string, len(shown))
	for i, a := range shown {
		humanized[i] = strings.ReplaceAll(a, "_", " ")
	}
	var list string
	switch len(humanized) {
	case 1:
		list = humanized[0]
	case 2:
		list = humanized[0] + " or " + humanized[1]
	default:
		list = strings.Join(humanized[:len(humanized)-1], ", ") + ", or " + humanized[len(humanized)-1]
	}
	return fmt.Sprintf("I can %s for that. Which would you prefer?", list)
}
