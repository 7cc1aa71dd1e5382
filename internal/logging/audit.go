// Package logging - audit sink.
// Audit events are structured JSON lines written to a dated file under
// .aria/logs/. Recording is fire-and-forget: failures are swallowed so the
// decision path can never be aborted by its own audit trail.
package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// AuditEvent represents a structured audit log entry.
type AuditEvent struct {
	Timestamp int64          `json:"ts"`      // Unix milliseconds
	Component string         `json:"comp"`    // Emitting component
	Event     string         `json:"event"`   // Event name
	SessionID string         `json:"session"` // Session correlation
	Message   string         `json:"msg,omitempty"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// AuditSink records structured events for a session.
type AuditSink struct {
	mu        sync.Mutex
	file      *os.File
	sessionID string
}

// NewAuditSink opens (or creates) the dated audit file for this session.
// When debug mode is off the sink is a silent no-op.
func NewAuditSink(sessionID string) *AuditSink {
	sink := &AuditSink{sessionID: sessionID}

	stateMu.RLock()
	enabled := settings.DebugMode
	dir := logsDir
	stateMu.RUnlock()
	if !enabled || dir == "" {
		return sink
	}

	date := time.Now().Format("2006-01-02")
	path := filepath.Join(dir, fmt.Sprintf("%s_audit.log", date))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] Warning: could not open audit log %s: %v\n", path, err)
		return sink
	}
	sink.file = file
	return sink
}

// Record writes one audit event. Never returns an error and never panics.
func (a *AuditSink) Record(component, event string, details map[string]any) {
	if a == nil || a.file == nil {
		return
	}
	entry := AuditEvent{
		Timestamp: time.Now().UnixMilli(),
		Component: component,
		Event:     event,
		SessionID: a.sessionID,
		Fields:    details,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	_, _ = a.file.Write(append(data, '\n'))
}

// Close closes the audit file.
func (a *AuditSink) Close() {
	if a == nil || a.file == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	_ = a.file.Close()
	a.file = nil
}
