// Package model defines the core data types used throughout syncwatch.
package model

// Repo identifies one tracked working copy.
type Repo struct {
	// Name is the display identifier, unique among tracked repositories.
	Name string `json:"name" yaml:"name"`
	// Path is the local filesystem location of the working copy.
	Path string `json:"path" yaml:"path"`
}

// SyncStatus enumerates the possible local-vs-upstream relationships.
type SyncStatus string

const (
	StatusSynced   SyncStatus = "synced"
	StatusAhead    SyncStatus = "ahead"
	StatusBehind   SyncStatus = "behind"
	StatusDiverged SyncStatus = "diverged"
	StatusError    SyncStatus = "error"
)

// SyncState is the classification result for one repository at one point
// in time. It is produced fresh by every check and never mutated.
type SyncState struct {
	// Status is the high-level relationship between local and upstream.
	Status SyncStatus `json:"status" yaml:"status"`
	// Ahead is the number of local-only commits. Zero for error status.
	Ahead int `json:"ahead" yaml:"ahead"`
	// Behind is the number of remote-only commits. Zero for error status.
	Behind int `json:"behind" yaml:"behind"`
	// Dirty reports uncommitted working-tree changes. Forced false for
	// error status: a failed check yields no reliable dirty signal.
	Dirty bool `json:"dirty" yaml:"dirty"`
	// DirtyFiles lists the paths reported by the porcelain status query.
	DirtyFiles []string `json:"dirty_files,omitempty" yaml:"dirty_files,omitempty"`
	// Diag holds the diagnostic text when Status is error.
	Diag string `json:"diag,omitempty" yaml:"diag,omitempty"`
	// ErrorClass is a coarse category for Diag (for example, auth/network).
	ErrorClass string `json:"error_class,omitempty" yaml:"error_class,omitempty"`
}

// Unsynced reports whether the repository needs attention: any status other
// than synced, or a dirty working tree.
func (s SyncState) Unsynced() bool {
	return s.Status != StatusSynced || s.Dirty
}

// StashSyncOutcome is the result of one guarded stash-sync transaction.
type StashSyncOutcome struct {
	// PullSucceeded reports whether the fast-forward pull step succeeded.
	PullSucceeded bool `json:"pull_succeeded" yaml:"pull_succeeded"`
	// RestoreSucceeded reports whether stashed changes were re-applied.
	RestoreSucceeded bool `json:"restore_succeeded" yaml:"restore_succeeded"`
	// Message is the human-readable detail. Always populated.
	Message string `json:"message" yaml:"message"`
}

// Overall reports full transaction success: pull and restore both succeeded.
func (o StashSyncOutcome) Overall() bool {
	return o.PullSucceeded && o.RestoreSucceeded
}
