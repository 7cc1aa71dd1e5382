// Package logging provides config-driven categorized file-based logging for ARIA.
// Logs are written to .aria/logs/ with separate files per category.
// Logging is controlled by logging.debug_mode in the config - when false, no
// logs are written.
package logging

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Category represents a log category/system.
type Category string

const (
	CategoryBoot     Category = "boot"     // Process startup/shutdown
	CategoryDecision Category = "decision" // Intent resolution, action selection
	CategoryDialogue Category = "dialogue" // Coordinator state machine, interrupts
	CategorySecurity Category = "security" // Permission checks and grants
	CategoryListener Category = "listener" // Wake-word listener
	CategoryStore    Category = "store"    // SQLite persistence
)

// Log levels.
const (
	LevelDebug = 0
	LevelInfo  = 1
	LevelWarn  = 2
	LevelError = 3
)

// Settings mirrors the relevant parts of config.LoggingConfig to avoid a
// circular import.
type Settings struct {
	DebugMode  bool
	Level      string
	Categories map[string]bool
}

// Logger wraps a standard logger with category and file output.
type Logger struct {
	category Category
	logger   *log.Logger
	file     *os.File
}

var (
	loggers   = make(map[Category]*Logger)
	loggersMu sync.RWMutex
	logsDir   string
	settings  Settings
	stateMu   sync.RWMutex
	logLevel  int
)

// Initialize sets up the logging directory. Should be called once at startup
// with the workspace path. A no-op when debug mode is off.
func Initialize(workspace string, s Settings) error {
	stateMu.Lock()
	settings = s
	switch s.Level {
	case "debug":
		logLevel = LevelDebug
	case "warn", "warning":
		logLevel = LevelWarn
	case "error":
		logLevel = LevelError
	default:
		logLevel = LevelInfo
	}
	logsDir = filepath.Join(workspace, ".aria", "logs")
	stateMu.Unlock()

	if !s.DebugMode {
		return nil
	}
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	boot := Get(CategoryBoot)
	boot.Info("=== ARIA logging initialized ===")
	boot.Info("Logs directory: %s", logsDir)
	boot.Info("Log level: %s", s.Level)
	return nil
}

// IsCategoryEnabled returns whether a specific category is enabled.
func IsCategoryEnabled(category Category) bool {
	stateMu.RLock()
	defer stateMu.RUnlock()

	if !settings.DebugMode {
		return false
	}
	if settings.Categories == nil {
		return true // All enabled by default in debug mode
	}
	enabled, exists := settings.Categories[string(category)]
	if !exists {
		return true
	}
	return enabled
}

// Get returns (or creates) a logger for the given category.
// Returns a no-op logger if debug mode or the category is disabled.
func Get(category Category) *Logger {
	if !IsCategoryEnabled(category) {
		return &Logger{category: category}
	}

	stateMu.RLock()
	dir := logsDir
	stateMu.RUnlock()
	if dir == "" {
		return &Logger{category: category}
	}

	loggersMu.RLock()
	if l, ok := loggers[category]; ok {
		loggersMu.RUnlock()
		return l
	}
	loggersMu.RUnlock()

	loggersMu.Lock()
	defer loggersMu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}

	// Date prefix for easy rotation.
	date := time.Now().Format("2006-01-02")
	logPath := filepath.Join(dir, fmt.Sprintf("%s_%s.log", date, category))
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] Warning: could not open log file %s: %v\n", logPath, err)
		return &Logger{category: category}
	}

	l := &Logger{
		category: category,
		file:     file,
		logger:   log.New(file, "", log.Ldate|log.Ltime|log.Lmicroseconds),
	}
	loggers[category] = l
	return l
}

// Debug logs a debug message (only if level <= debug).
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.logger == nil || currentLevel() > LevelDebug {
		return
	}
	l.logger.Printf("[DEBUG] %s", fmt.Sprintf(format, args...))
}

// Info logs an informational message (only if level <= info).
func (l *Logger) Info(format string, args ...interface{}) {
	if l.logger == nil || currentLevel() > LevelInfo {
		return
	}
	l.logger.Printf("[INFO] %s", fmt.Sprintf(format, args...))
}

// Warn logs a warning message (only if level <= warn).
func (l *Logger) Warn(format string, args ...interface{}) {
	if l.logger == nil || currentLevel() > LevelWarn {
		return
	}
	l.logger.Printf("[WARN] %s", fmt.Sprintf(format, args...))
}

// Error logs an error message (always logged if logger exists).
func (l *Logger) Error(format string, args ...interface{}) {
	if l.logger == nil {
		return
	}
	l.logger.Printf("[ERROR] %s", fmt.Sprintf(format, args...))
}

func currentLevel() int {
	stateMu.RLock()
	defer stateMu.RUnlock()
	return logLevel
}

// CloseAll closes all open log files (call at shutdown).
func CloseAll() {
	loggersMu.Lock()
	defer loggersMu.Unlock()
	for _, l := range loggers {
		if l.file != nil {
			l.file.Close()
		}
	}
	loggers = make(map[Category]*Logger)
}

// Convenience functions - quick logging without getting a logger first.
// These are no-ops if the category is disabled.

// Boot logs to the boot category.
func Boot(format string, args ...interface{}) { Get(CategoryBoot).Info(format, args...) }

// Decision logs to the decision category.
func Decision(format string, args ...interface{}) { Get(CategoryDecision).Info(format, args...) }

// DecisionDebug logs debug to the decision category.
func DecisionDebug(format string, args ...interface{}) { Get(CategoryDecision).Debug(format, args...) }

// Dialogue logs to the dialogue category.
func Dialogue(format string, args ...interface{}) { Get(CategoryDialogue).Info(format, args...) }

// DialogueDebug logs debug to the dialogue category.
func DialogueDebug(format string, args ...interface{}) { Get(CategoryDialogue).Debug(format, args...) }

// Security logs to the security category.
func Security(format string, args ...interface{}) { Get(CategorySecurity).Info(format, args...) }

// Listener logs to the listener category.
func Listener(format string, args ...interface{}) { Get(CategoryListener).Info(format, args...) }

// ListenerDebug logs debug to the listener category.
func ListenerDebug(format string, args ...interface{}) { Get(CategoryListener).Debug(format, args...) }

// Store logs to the store category.
func Store(format string, args ...interface{}) { Get(CategoryStore).Info(format, args...) }

// StoreDebug logs debug to the store category.
func StoreDebug(format string, args ...interface{}) { Get(CategoryStore).Debug(format, args...) }
