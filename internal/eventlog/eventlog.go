// SPDX-License-Identifier: MIT
// Package eventlog implements the append-only, capacity-bounded audit log
// of classification and stash-sync events.
package eventlog

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.yaml.in/yaml/v3"
)

// DefaultMaxEntries is the retention cap applied when none is configured.
const DefaultMaxEntries = 200

// Kind enumerates the recorded event types.
type Kind string

const (
	// EventDirtyDetected records uncommitted changes observed during a check.
	EventDirtyDetected Kind = "dirty_detected"
	// EventDirtyConflict records a sync attempt against a dirty working tree.
	EventDirtyConflict Kind = "dirty_conflict"
	// EventUserAction records the action the user chose.
	EventUserAction Kind = "user_action"
	// EventSyncResult records the outcome of a sync attempt.
	EventSyncResult Kind = "sync_result"
)

// Entry is one immutable audit record. The timestamp is assigned by the
// log at append time, never by the caller.
type Entry struct {
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Event     Kind      `json:"event" yaml:"event"`
	Project   string    `json:"project" yaml:"project"`
	Files     []string  `json:"files,omitempty" yaml:"files,omitempty"`
	Action    string    `json:"action,omitempty" yaml:"action,omitempty"`
	Success   *bool     `json:"success,omitempty" yaml:"success,omitempty"`
	Message   string    `json:"message,omitempty" yaml:"message,omitempty"`
}

// logFile is the persisted YAML form, oldest entry first.
type logFile struct {
	Events []Entry `yaml:"events"`
}

// Log is a mutex-serialized append-only event log backed by a YAML file.
// Appends never fail the caller: persistence errors are swallowed and only
// surfaced through LastError for diagnostics.
type Log struct {
	mu         sync.Mutex
	path       string
	maxEntries int
	entries    []Entry
	lastErr    error

	// now is overridable in tests.
	now func() time.Time
}

// Open loads the log at path, creating an empty one when the file is
// absent. A corrupt or unreadable file is treated as no history, never an
// error: the audit log is best-effort observability.
func Open(path string, maxEntries int) *Log {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	l := &Log{
		path:       path,
		maxEntries: maxEntries,
		now:        time.Now,
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return l
	}
	var file logFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return l
	}
	l.entries = file.Events
	if len(l.entries) > maxEntries {
		l.entries = append([]Entry(nil), l.entries[len(l.entries)-maxEntries:]...)
	}
	return l
}

// Append assigns a timestamp, appends the entry, truncates retention to the
// newest maxEntries, and persists. It never returns an error.
func (l *Log) Append(entry Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry.Timestamp = l.now()
	l.entries = append(l.entries, entry)
	if len(l.entries) > l.maxEntries {
		// Whole-collection truncation to the newest window, oldest dropped.
		l.entries = append([]Entry(nil), l.entries[len(l.entries)-l.maxEntries:]...)
	}
	l.lastErr = l.persist()
}

// ReadAll returns the retained entries, newest first.
func (l *Log) ReadAll() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Entry, len(l.entries))
	for i, e := range l.entries {
		out[len(l.entries)-1-i] = e
	}
	return out
}

// Len returns the number of retained entries.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// LastError reports the most recent persistence failure, if any. Useful
// for tests and diagnostics; appends themselves never fail.
func (l *Log) LastError() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastErr
}

func (l *Log) persist() error {
	if l.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(logFile{Events: l.entries})
	if err != nil {
		return err
	}
	return os.WriteFile(l.path, data, 0o644)
}
