package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose   bool
	workspace string

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "aria",
	Short: "ARIA - desktop assistant decision engine",
	Long: `ARIA resolves free-text commands into concrete automation actions.

Commands are matched against a tiered intent pattern table, scored by
confidence, and turned into a single action per the knowledge base. When ARIA
is unsure it asks back instead of guessing; website opening is gated by a
trusted/blocked permission list.

Run without arguments to start an interactive session.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractive(cmd.Context())
	},
}

// runCmd resolves and dispatches a single utterance
var runCmd = &cobra.Command{
	Use:   "run [command]",
	Short: "Resolve a single command and print the decision",
	Long: `Runs one utterance through the full decision pipeline:
  1. Intent resolution: tiered patterns produce ranked candidates
  2. Context boosting: last intent and time of day adjust confidence
  3. Action selection: knowledge base plus learned preferences pick an action
  4. Dispatch: the automation command is synthesized (permission-gated)

Questions (clarifications, security prompts) need the interactive session.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runOnce,
}

// statusCmd shows engine statistics
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show ARIA configuration, learning, and permission state",
	RunE:  showStatus,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "workspace directory (default: auto-detect)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statusCmd)
}

func main() {
	// Ctrl+C unwinds the interactive loop instead of killing the process.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func runOnce(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	utterance := strings.Join(args, " ")
	res := a.coordinator.HandleUtterance(cmd.Context(), utterance)
	printResult(res)
	return nil
}
