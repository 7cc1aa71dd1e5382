// Package listener implements the background wake-word listener: a transcript
// source is scanned for wake words, and after a wake exactly one command is
// captured within a bounded window and handed on as if the user had typed it.
package listener

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"aria/internal/logging"
)

// Source produces transcript lines. The channel closes when the source is
// exhausted.
type Source interface {
	Lines() <-chan string
}

// ChannelSource adapts a plain channel into a Source.
type ChannelSource struct {
	ch chan string
}

// NewChannelSource returns a source fed by Send.
func NewChannelSource() *ChannelSource {
	return &ChannelSource{ch: make(chan string, 8)}
}

// Send feeds one transcript line.
func (s *ChannelSource) Send(line string) { s.ch <- line }

// Close marks the source exhausted.
func (s *ChannelSource) Close() { close(s.ch) }

func (s *ChannelSource) Lines() <-chan string { return s.ch }

// ReaderSource scans transcript lines from a reader, one line per transcript.
type ReaderSource struct {
	once sync.Once
	r    io.Reader
	ch   chan string
}

// NewReaderSource wraps a reader, e.g. a transcript pipe.
func NewReaderSource(r io.Reader) *ReaderSource {
	return &ReaderSource{r: r, ch: make(chan string, 8)}
}

func (s *ReaderSource) Lines() <-chan string {
	s.once.Do(func() {
		go func() {
			defer close(s.ch)
			scanner := bufio.NewScanner(s.r)
			for scanner.Scan() {
				s.ch <- scanner.Text()
			}
		}()
	})
	return s.ch
}

// Stats tracks listener activity.
type Stats struct {
	Wakes    int
	Commands int
	Timeouts int
}

// Listener watches a transcript source for wake words and captures commands.
type Listener struct {
	mu        sync.Mutex
	source    Source
	wakeWords []string
	timeout   time.Duration
	commands  chan string
	stopCh    chan struct{}
	doneCh    chan struct{}
	running   bool
	stats     Stats
}

// New builds a listener. Wake words are matched case-insensitive by
// containment; timeout bounds the command-capture window after a bare wake.
func New(source Source, wakeWords []string, timeout time.Duration) *Listener {
	words := make([]string, 0, len(wakeWords))
	for _, w := range wakeWords {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			words = append(words, w)
		}
	}
	return &Listener{
		source:    source,
		wakeWords: words,
		timeout:   timeout,
		commands:  make(chan string, 8),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Commands returns the channel of captured command utterances. Closed when
// the listener stops.
func (l *Listener) Commands() <-chan string { return l.commands }

// Stats returns a copy of the activity counters.
func (l *Listener) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats
}

// Start begins listening in a goroutine.
func (l *Listener) Start(ctx context.Context) error {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return nil
	}
	l.running = true
	l.mu.Unlock()

	logging.Listener("started, wake words: %v, capture window: %v", l.wakeWords, l.timeout)
	go l.run(ctx)
	return nil
}

// Stop stops the listener and waits for the loop to exit.
func (l *Listener) Stop() {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return
	}
	l.running = false
	l.mu.Unlock()

	close(l.stopCh)
	<-l.doneCh
	logging.Listener("stopped")
}

func (l *Listener) run(ctx context.Context) {
	defer close(l.doneCh)
	defer close(l.commands)

	for {
		select {
		case <-ctx.Done():
			return
		case <-l.stopCh:
			return
		case line, ok := <-l.source.Lines():
			if !ok {
				return
			}
			rest, woke := l.stripWake(line)
			if !woke {
				continue
			}
			l.mu.Lock()
			l.stats.Wakes++
			l.mu.Unlock()
			logging.ListenerDebug("wake word heard")

			if rest != "" {
				// Wake word and command in the same breath.
				if !l.emit(ctx, rest) {
					return
				}
				continue
			}
			if !l.captureCommand(ctx) {
				return
			}
		}
	}
}

// captureCommand waits for exactly one command line within the capture
// window. A timeout silently reverts to wake listening; a partial transcript
// that never arrives is discarded. Returns false when the listener must exit.
func (l *Listener) captureCommand(ctx context.Context) bool {
	timer := time.NewTimer(l.timeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return false
		case <-l.stopCh:
			return false
		case <-timer.C:
			l.mu.Lock()
			l.stats.Timeouts++
			l.mu.Unlock()
			logging.ListenerDebug("capture window elapsed, reverting to wake listening")
			return true
		case line, ok := <-l.source.Lines():
			if !ok {
				return false
			}
			cmd := strings.TrimSpace(line)
			if cmd == "" {
				continue
			}
			return l.emit(ctx, cmd)
		}
	}
}

// emit hands a captured command downstream. Returns false when the listener
// is shutting down.
func (l *Listener) emit(ctx context.Context, cmd string) bool {
	select {
	case <-ctx.Done():
		return false
	case <-l.stopCh:
		return false
	case l.commands <- cmd:
		l.mu.Lock()
		l.stats.Commands++
		l.mu.Unlock()
		logging.Listener("captured command: %q", cmd)
		return true
	}
}

// stripWake reports whether the line contains a wake word and returns the
// text following the first wake word occurrence.
func (l *Listener) stripWake(line string) (string, bool) {
	lowered := strings.ToLower(line)
	for _, w := range l.wakeWords {
		if i := strings.Index(lowered, w); i >= 0 {
			return strings.TrimSpace(line[i+len(w):]), true
		}
	}
	return "", false
}
