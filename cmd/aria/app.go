package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"aria/internal/automation"
	"aria/internal/config"
	"aria/internal/decision"
	"aria/internal/dialogue"
	"aria/internal/intent"
	"aria/internal/knowledge"
	"aria/internal/listener"
	"aria/internal/logging"
	"aria/internal/store"
)

// app bundles the assembled engine and its teardown.
type app struct {
	cfg         *config.Config
	workspace   string
	store       *store.Store
	coordinator *dialogue.Coordinator
	watcher     *knowledge.Watcher
	audit       *logging.AuditSink
}

// newApp loads configuration and wires the full pipeline.
func newApp() (*app, error) {
	ws := workspace
	if ws == "" {
		var err error
		ws, err = config.FindWorkspaceRoot()
		if err != nil {
			return nil, fmt.Errorf("failed to locate workspace: %w", err)
		}
	}

	cfg, err := config.Load(ws)
	if err != nil {
		return nil, err
	}
	if err := logging.Initialize(ws, logging.Settings{
		DebugMode:  cfg.Logging.DebugMode,
		Level:      cfg.Logging.Level,
		Categories: cfg.Logging.Categories,
	}); err != nil {
		return nil, err
	}

	dbPath := cfg.Storage.DatabasePath
	if !filepath.IsAbs(dbPath) {
		dbPath = filepath.Join(ws, dbPath)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}

	kb := knowledge.Default()
	if cfg.Knowledge.Path != "" {
		loaded, err := knowledge.Load(cfg.Knowledge.Path)
		if err != nil {
			logger.Warn("knowledge base override failed to load, using built-in table",
				zap.String("path", cfg.Knowledge.Path), zap.Error(err))
		} else {
			kb = loaded
		}
	}

	coordinator := dialogue.New(dialogue.Deps{
		Config:      cfg.Decision,
		Resolver:    intent.NewResolver(nil),
		Knowledge:   kb,
		Selector:    decision.NewSelector(st, cfg.Decision.LearningEnabled),
		Executor:    automation.NewCommandExecutor(st),
		Permissions: st,
		Preferences: st,
	})
	audit := logging.NewAuditSink(coordinator.SessionID())
	coordinator.SetAudit(audit)

	a := &app{
		cfg:         cfg,
		workspace:   ws,
		store:       st,
		coordinator: coordinator,
		audit:       audit,
	}

	if cfg.Knowledge.Path != "" && cfg.Knowledge.HotReload {
		w, err := knowledge.NewWatcher(cfg.Knowledge.Path, coordinator.SwapKnowledge)
		if err != nil {
			logger.Warn("knowledge watcher unavailable", zap.Error(err))
		} else {
			a.watcher = w
		}
	}

	logger.Info("aria ready",
		zap.String("workspace", ws),
		zap.String("session", coordinator.SessionID()))
	return a, nil
}

// close tears the engine down in shutdown order: one-time grants cleared,
// store closed, audit and category logs flushed.
func (a *app) close() {
	if a.watcher != nil {
		a.watcher.Stop()
	}
	if err := a.store.ClearOneTime(); err != nil {
		logger.Warn("failed to clear one-time grants", zap.Error(err))
	}
	if err := a.store.Close(); err != nil {
		logger.Warn("failed to close store", zap.Error(err))
	}
	a.audit.Close()
	logging.CloseAll()
}

// runInteractive is the default session: foreground stdin turns plus an
// optional background wake-word listener feeding the same coordinator.
func runInteractive(ctx context.Context) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if a.watcher != nil {
		if err := a.watcher.Start(ctx); err != nil {
			logger.Warn("knowledge watcher failed to start", zap.Error(err))
		}
	}

	fmt.Printf("%s %s - type a command, or \"exit\" to quit.\n", a.cfg.Name, a.cfg.Version)

	g, ctx := errgroup.WithContext(ctx)

	// Foreground: stdin lines. The reader goroutine stays outside the
	// errgroup because a blocked Scan cannot be cancelled; the process may
	// exit without it.
	typed := make(chan string)
	go func() {
		defer close(typed)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			select {
			case typed <- line:
			case <-ctx.Done():
				return
			}
		}
	}()

	// Background: wake-word listener over the transcript pipe, when enabled.
	// A nil heard channel never fires in the select below.
	var heard <-chan string
	if a.cfg.Listener.Enabled && a.cfg.Listener.TranscriptPath != "" {
		timeout, err := a.cfg.CommandTimeout()
		if err != nil {
			return err
		}
		transcript, err := os.Open(a.cfg.Listener.TranscriptPath)
		if err != nil {
			logger.Warn("transcript source unavailable, listener disabled", zap.Error(err))
		} else {
			l := listener.New(listener.NewReaderSource(transcript), a.cfg.Listener.WakeWords, timeout)
			if err := l.Start(ctx); err != nil {
				return err
			}
			defer transcript.Close()
			defer l.Stop()
			heard = l.Commands()
		}
	}

	// One consumer serializes both producers into the coordinator.
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case line, ok := <-typed:
				if !ok {
					return context.Canceled
				}
				if line == "exit" || line == "quit" {
					return context.Canceled
				}
				printResult(a.coordinator.HandleUtterance(ctx, line))
			case cmd, ok := <-heard:
				if !ok {
					heard = nil
					continue
				}
				fmt.Printf("\n[heard] %s\n", cmd)
				printResult(a.coordinator.HandleUtterance(ctx, cmd))
			}
		}
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		return err
	}
	fmt.Println("Bye.")
	return nil
}

func printResult(res dialogue.Result) {
	switch res.Kind {
	case dialogue.KindResolved:
		fmt.Printf("-> %s\n", res.AutomationCommand)
		if res.Message != "" && res.Message != res.AutomationCommand {
			fmt.Printf("   %s\n", res.Message)
		}
	case dialogue.KindClarification:
		fmt.Printf("? %s\n", res.Message)
	default:
		fmt.Println(res.Message)
	}
}
