package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "aria.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPreferenceCounters(t *testing.T) {
	s := openTestStore(t)

	// Nothing learned yet.
	action, err := s.PreferredAction("play_music")
	require.NoError(t, err)
	assert.Empty(t, action)

	require.NoError(t, s.IncrementPreference("play_music", "open_spotify"))
	require.NoError(t, s.IncrementPreference("play_music", "search_youtube_music"))
	require.NoError(t, s.IncrementPreference("play_music", "search_youtube_music"))

	action, err = s.PreferredAction("play_music")
	require.NoError(t, err)
	assert.Equal(t, "search_youtube_music", action)

	counts, err := s.PreferenceCounts("play_music")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{
		"open_spotify":         1,
		"search_youtube_music": 2,
	}, counts)

	// Counters are per intent.
	action, err = s.PreferredAction("find_video")
	require.NoError(t, err)
	assert.Empty(t, action)

	total, err := s.InteractionTotal()
	require.NoError(t, err)
	assert.Equal(t, 3, total)
}

func TestPreferredActionTieBreaksByName(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.IncrementPreference("get_info", "search_wikipedia"))
	require.NoError(t, s.IncrementPreference("get_info", "search_google"))

	action, err := s.PreferredAction("get_info")
	require.NoError(t, err)
	assert.Equal(t, "search_google", action)
}

func TestPreferencesSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aria.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.IncrementPreference("find_video", "check_local_videos"))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	action, err := s.PreferredAction("find_video")
	require.NoError(t, err)
	assert.Equal(t, "check_local_videos", action)
}

func TestClosedStoreErrors(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "aria.db"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	assert.Error(t, s.IncrementPreference("a", "b"))
	_, err = s.PreferredAction("a")
	assert.Error(t, err)
	_, err = s.CheckPermission("example.com")
	assert.Error(t, err)

	// Closing twice is harmless.
	assert.NoError(t, s.Close())
}
