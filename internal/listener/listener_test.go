package listener

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func startListener(t *testing.T, src Source, timeout time.Duration) *Listener {
	t.Helper()
	l := New(src, []string{"aria"}, timeout)
	require.NoError(t, l.Start(context.Background()))
	t.Cleanup(l.Stop)
	return l
}

func expectCommand(t *testing.T, l *Listener, want string) {
	t.Helper()
	select {
	case got := <-l.Commands():
		assert.Equal(t, want, got)
	case <-time.After(2 * time.Second):
		t.Fatalf("no command captured, wanted %q", want)
	}
}

func expectNoCommand(t *testing.T, l *Listener, wait time.Duration) {
	t.Helper()
	select {
	case got := <-l.Commands():
		t.Fatalf("unexpected command %q", got)
	case <-time.After(wait):
	}
}

func TestWakeWordThenCommand(t *testing.T) {
	t.Cleanup(func() { goleak.VerifyNone(t) })

	src := NewChannelSource()
	l := startListener(t, src, time.Second)

	src.Send("hey aria")
	src.Send("what is photosynthesis")
	expectCommand(t, l, "what is photosynthesis")

	stats := l.Stats()
	assert.Equal(t, 1, stats.Wakes)
	assert.Equal(t, 1, stats.Commands)
}

func TestWakeWordAndCommandInOneLine(t *testing.T) {
	t.Cleanup(func() { goleak.VerifyNone(t) })

	src := NewChannelSource()
	l := startListener(t, src, time.Second)

	src.Send("Aria play some music")
	expectCommand(t, l, "play some music")
}

func TestLinesWithoutWakeWordIgnored(t *testing.T) {
	t.Cleanup(func() { goleak.VerifyNone(t) })

	src := NewChannelSource()
	l := startListener(t, src, time.Second)

	src.Send("just people talking")
	src.Send("nothing to see here")
	expectNoCommand(t, l, 300*time.Millisecond)
	assert.Zero(t, l.Stats().Wakes)
}

func TestCaptureWindowTimesOutSilently(t *testing.T) {
	t.Cleanup(func() { goleak.VerifyNone(t) })

	src := NewChannelSource()
	l := startListener(t, src, 100*time.Millisecond)

	src.Send("aria")
	// No command arrives inside the window.
	require.Eventually(t, func() bool {
		return l.Stats().Timeouts == 1
	}, 2*time.Second, 20*time.Millisecond)

	// The late line is a stale partial and must be discarded, but a fresh
	// wake still works.
	src.Send("this arrived too late")
	expectNoCommand(t, l, 300*time.Millisecond)

	src.Send("aria open spotify")
	expectCommand(t, l, "open spotify")
}

func TestBlankLinesDoNotEndCapture(t *testing.T) {
	t.Cleanup(func() { goleak.VerifyNone(t) })

	src := NewChannelSource()
	l := startListener(t, src, time.Second)

	src.Send("aria")
	src.Send("   ")
	src.Send("check system status")
	expectCommand(t, l, "check system status")
}

func TestSourceCloseStopsListener(t *testing.T) {
	defer goleak.VerifyNone(t)

	src := NewChannelSource()
	l := New(src, []string{"aria"}, time.Second)
	require.NoError(t, l.Start(context.Background()))

	src.Send("aria play music")
	expectCommand(t, l, "play music")
	src.Close()

	select {
	case _, open := <-l.Commands():
		assert.False(t, open)
	case <-time.After(2 * time.Second):
		t.Fatal("commands channel did not close")
	}
	// Stop after a source-driven exit is still safe.
	l.Stop()
}

func TestReaderSource(t *testing.T) {
	defer goleak.VerifyNone(t)

	src := NewReaderSource(strings.NewReader("aria\nfind videos about cats\n"))
	l := New(src, []string{"aria"}, time.Second)
	require.NoError(t, l.Start(context.Background()))
	defer l.Stop()

	expectCommand(t, l, "find videos about cats")
}
