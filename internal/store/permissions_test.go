package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDomain(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{"youtube.com", "youtube.com", false},
		{"https://youtube.com/watch?v=abc", "youtube.com", false},
		{"http://WWW.Example.COM/path", "example.com", false},
		{"www.example.com", "example.com", false},
		{"example.com:8080", "example.com", false},
		{"user:pass@example.com/x", "example.com", false},
		{"  spotify.com  ", "spotify.com", false},
		{"", "", true},
		{"not a domain", "", true},
		{"https://", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := NormalizeDomain(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPermissionLifecycle(t *testing.T) {
	s := openTestStore(t)

	// Unknown domain asks.
	decision, err := s.CheckPermission("example.com")
	require.NoError(t, err)
	assert.Equal(t, PermissionAsk, decision)

	// Trusted stays trusted across checks.
	require.NoError(t, s.GrantPermanent("example.com"))
	for i := 0; i < 2; i++ {
		decision, err = s.CheckPermission("example.com")
		require.NoError(t, err)
		assert.Equal(t, PermissionAllowed, decision)
	}

	// Blocking evicts the trusted standing.
	require.NoError(t, s.Block("example.com"))
	decision, err = s.CheckPermission("example.com")
	require.NoError(t, err)
	assert.Equal(t, PermissionDenied, decision)
}

func TestOneTimeGrantConsumed(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.GrantOnce("example.com"))

	decision, err := s.CheckPermission("example.com")
	require.NoError(t, err)
	assert.Equal(t, PermissionAllowed, decision)

	// The grant was single-use.
	decision, err = s.CheckPermission("example.com")
	require.NoError(t, err)
	assert.Equal(t, PermissionAsk, decision)
}

func TestClearOneTime(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.GrantOnce("a.com"))
	require.NoError(t, s.GrantOnce("b.com"))
	require.NoError(t, s.GrantPermanent("c.com"))

	require.NoError(t, s.ClearOneTime())

	decision, err := s.CheckPermission("a.com")
	require.NoError(t, err)
	assert.Equal(t, PermissionAsk, decision)

	// Permanent grants survive the sweep.
	decision, err = s.CheckPermission("c.com")
	require.NoError(t, err)
	assert.Equal(t, PermissionAllowed, decision)
}

func TestPermissionsListing(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.GrantPermanent("trusted.com"))
	require.NoError(t, s.Block("blocked.com"))
	require.NoError(t, s.GrantOnce("once.com"))

	perms, err := s.Permissions()
	require.NoError(t, err)
	assert.Equal(t, []string{"trusted.com"}, perms[StatusTrusted])
	assert.Equal(t, []string{"blocked.com"}, perms[StatusBlocked])
	assert.Equal(t, []string{"once.com"}, perms[StatusOnce])
}
