package knowledge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTable(t *testing.T) {
	b := Default()

	entry, ok := b.Lookup("find_video")
	require.True(t, ok)
	assert.Equal(t, []string{"search_youtube", "check_local_videos"}, entry.Actions)
	assert.Equal(t, "search_youtube", entry.PriorityAction())
	assert.True(t, entry.ContextSensitive)
	assert.True(t, entry.RequiresTopic)

	entry, ok = b.Lookup("open_website")
	require.True(t, ok)
	assert.Equal(t, []string{"open_website"}, entry.Actions)
	assert.False(t, entry.ContextSensitive)

	_, ok = b.Lookup("no_such_intent")
	assert.False(t, ok)

	// Every declared intent must be reachable through Lookup.
	for _, id := range b.Intents() {
		_, ok := b.Lookup(id)
		assert.True(t, ok, "intent %s", id)
	}
	assert.Len(t, b.Intents(), 16)
}

func TestPriorityActionFallback(t *testing.T) {
	tests := []struct {
		name  string
		entry Entry
		want  string
	}{
		{"priority in actions", Entry{Actions: []string{"a", "b"}, Priority: "b"}, "b"},
		{"priority unknown falls back to first", Entry{Actions: []string{"a", "b"}, Priority: "c"}, "a"},
		{"no priority", Entry{Actions: []string{"a", "b"}}, "a"},
		{"empty actions", Entry{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.entry.PriorityAction())
		})
	}
}

func TestParseKeepsDeclarationOrder(t *testing.T) {
	b, err := Parse([]byte(`
intents:
  - intent: zeta
    actions: [do_z]
  - intent: alpha
    actions: [do_a, do_b]
    priority: do_b
    context_sensitive: true
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"zeta", "alpha"}, b.Intents())

	entry, ok := b.Lookup("alpha")
	require.True(t, ok)
	assert.Equal(t, "do_b", entry.PriorityAction())
	assert.True(t, entry.ContextSensitive)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty", `intents: []`},
		{"missing id", "intents:\n  - actions: [x]"},
		{"duplicate id", "intents:\n  - intent: a\n    actions: [x]\n  - intent: a\n    actions: [y]"},
		{"malformed", `intents: {`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "knowledge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
intents:
  - intent: greet
    actions: [say_hello]
`), 0o644))

	b, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"greet"}, b.Intents())

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestParamKey(t *testing.T) {
	assert.Equal(t, "topic", ParamKey("get_info"))
	assert.Equal(t, "music_query", ParamKey("play_music"))
	assert.Equal(t, "url", ParamKey("open_website"))
	assert.Equal(t, "application", ParamKey("launch_app"))
	assert.Equal(t, "", ParamKey("system_check"))
}

func TestClarifyMessage(t *testing.T) {
	// Intents with a bespoke phrasing keep it.
	assert.Equal(t,
		"Would you like me to search YouTube or check your local videos?",
		ClarifyMessage("find_video", []string{"search_youtube", "check_local_videos"}))

	// Generic form humanizes action ids and lists at most three.
	msg := ClarifyMessage("social_media", []string{"open_facebook", "open_twitter", "open_instagram"})
	assert.Equal(t, "I can open facebook, open twitter, or open instagram. Which would you prefer?", msg)

	msg = ClarifyMessage("system_check", []string{"get_system_status", "check_performance"})
	assert.Equal(t, "I can get system status or check performance. Which would you prefer?", msg)

	msg = ClarifyMessage("x", []string{"a_1", "b_2", "c_3", "d_4"})
	assert.NotContains(t, msg, "d 4")
}
