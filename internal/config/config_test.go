package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "aria", cfg.Name)
	assert.Equal(t, 0.7, cfg.Decision.ConfidenceThreshold)
	assert.Equal(t, 3, cfg.Decision.MaxAlternatives)
	assert.Equal(t, 5, cfg.Decision.ContextWindow)
	assert.True(t, cfg.Decision.LearningEnabled)
	assert.Equal(t, []string{"aria"}, cfg.Listener.WakeWords)

	d, err := cfg.CommandTimeout()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, d)
}

func TestLoadMissingFileWritesDefaults(t *testing.T) {
	ws := t.TempDir()

	cfg, err := Load(ws)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	// The defaults were persisted for discoverability.
	_, err = os.Stat(filepath.Join(ws, ".aria", "config.yaml"))
	assert.NoError(t, err)
}

func TestLoadRoundTrip(t *testing.T) {
	ws := t.TempDir()

	cfg := Default()
	cfg.Decision.ConfidenceThreshold = 0.8
	cfg.Listener.Enabled = true
	cfg.Listener.CommandTimeout = "3s"
	cfg.Logging.DebugMode = true
	cfg.Logging.Categories = map[string]bool{"decision": true, "listener": false}
	require.NoError(t, cfg.Save(ws))

	loaded, err := Load(ws)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	ws := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(ws, ".aria"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(ws, ".aria", "config.yaml"),
		[]byte("decision:\n  confidence_threshold: 0.9\n"), 0o644))

	cfg, err := Load(ws)
	require.NoError(t, err)
	assert.Equal(t, 0.9, cfg.Decision.ConfidenceThreshold)
	// Untouched sections keep their defaults.
	assert.Equal(t, 3, cfg.Decision.MaxAlternatives)
	assert.Equal(t, []string{"aria"}, cfg.Listener.WakeWords)
}

func TestLoadInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"threshold out of range", "decision:\n  confidence_threshold: 1.5\n"},
		{"alternatives too small", "decision:\n  max_alternatives: 0\n"},
		{"window too small", "decision:\n  context_window: 0\n"},
		{"bad timeout", "listener:\n  command_timeout: soon\n"},
		{"negative timeout", "listener:\n  command_timeout: -1s\n"},
		{"malformed yaml", "decision: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := t.TempDir()
			require.NoError(t, os.MkdirAll(filepath.Join(ws, ".aria"), 0o755))
			require.NoError(t, os.WriteFile(filepath.Join(ws, ".aria", "config.yaml"), []byte(tt.yaml), 0o644))

			_, err := Load(ws)
			assert.Error(t, err)
		})
	}
}

func TestFindWorkspaceRoot(t *testing.T) {
	ws := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(ws, ".aria"), 0o755))
	nested := filepath.Join(ws, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	wd, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(wd) })
	require.NoError(t, os.Chdir(nested))

	root, err := FindWorkspaceRoot()
	require.NoError(t, err)
	// Resolve symlinks; macOS tempdirs live under /private.
	wantRoot, _ := filepath.EvalSymlinks(ws)
	gotRoot, _ := filepath.EvalSymlinks(root)
	assert.Equal(t, wantRoot, gotRoot)
}
