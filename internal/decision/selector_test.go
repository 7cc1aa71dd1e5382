package decision

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aria/internal/knowledge"
)

type fakePrefs struct {
	actions map[string]string
	err     error
}

func (f *fakePrefs) PreferredAction(intent string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.actions[intent], nil
}

func TestSelectSingleAction(t *testing.T) {
	s := NewSelector(nil, false)

	sel, err := s.Select("open_website", knowledge.Entry{Actions: []string{"open_website"}})
	require.NoError(t, err)
	assert.Equal(t, KindSingle, sel.Kind)
	assert.Equal(t, "open_website", sel.Action)
}

func TestSelectEmptyActionSet(t *testing.T) {
	s := NewSelector(nil, false)

	_, err := s.Select("broken", knowledge.Entry{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyActionSet)
	assert.Contains(t, err.Error(), "broken")
}

func TestSelectContextSensitivePriority(t *testing.T) {
	entry := knowledge.Entry{
		Actions:          []string{"open_spotify", "search_youtube_music"},
		Priority:         "open_spotify",
		ContextSensitive: true,
	}

	// No learning: static priority wins.
	s := NewSelector(nil, false)
	sel, err := s.Select("play_music", entry)
	require.NoError(t, err)
	assert.Equal(t, KindSingle, sel.Kind)
	assert.Equal(t, "open_spotify", sel.Action)
}

func TestSelectLearnedPreferenceOverridesPriority(t *testing.T) {
	entry := knowledge.Entry{
		Actions:          []string{"open_spotify", "search_youtube_music"},
		Priority:         "open_spotify",
		ContextSensitive: true,
	}
	prefs := &fakePrefs{actions: map[string]string{"play_music": "search_youtube_music"}}

	sel, err := NewSelector(prefs, true).Select("play_music", entry)
	require.NoError(t, err)
	assert.Equal(t, "search_youtube_music", sel.Action)

	// Learning disabled ignores the preference.
	sel, err = NewSelector(prefs, false).Select("play_music", entry)
	require.NoError(t, err)
	assert.Equal(t, "open_spotify", sel.Action)
}

func TestSelectLearnedPreferenceOutsideActionSetIgnored(t *testing.T) {
	entry := knowledge.Entry{
		Actions:          []string{"open_spotify", "search_youtube_music"},
		Priority:         "open_spotify",
		ContextSensitive: true,
	}
	prefs := &fakePrefs{actions: map[string]string{"play_music": "retired_action"}}

	sel, err := NewSelector(prefs, true).Select("play_music", entry)
	require.NoError(t, err)
	assert.Equal(t, "open_spotify", sel.Action)
}

func TestSelectPreferenceErrorDegradesToPriority(t *testing.T) {
	entry := knowledge.Entry{
		Actions:          []string{"a", "b"},
		Priority:         "b",
		ContextSensitive: true,
	}
	prefs := &fakePrefs{err: errors.New("db locked")}

	sel, err := NewSelector(prefs, true).Select("x", entry)
	require.NoError(t, err)
	assert.Equal(t, "b", sel.Action)
}

func TestSelectClarifyLists(t *testing.T) {
	entry := knowledge.Entry{
		Actions: []string{"search_google", "search_bing"},
	}

	sel, err := NewSelector(nil, true).Select("search_web", entry)
	require.NoError(t, err)
	assert.Equal(t, KindClarify, sel.Kind)
	assert.Equal(t, []string{"search_google", "search_bing"}, sel.Alternatives)
	assert.NotEmpty(t, sel.Message)
	assert.Empty(t, sel.Action)
}
