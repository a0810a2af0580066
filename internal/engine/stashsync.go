package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/skaphos/syncwatch/internal/eventlog"
	"github.com/skaphos/syncwatch/internal/model"
)

// StashMessage marks stash entries created by syncwatch so users can find
// them with `git stash list` after a failed restore.
const StashMessage = "syncwatch: pre-pull stash"

// StashSync advances a behind repository to its upstream state without
// discarding local edits. The caller is expected to have verified the
// behind state; dirtiness is re-derived here because the caller's snapshot
// may have gone stale between the last check and the user's action.
//
// When the tree is no longer dirty the guarded transaction is skipped and
// a plain fast-forward pull runs instead. Otherwise the three steps run
// strictly in order: stash, pull, restore. Restore is attempted whenever
// the stash step succeeded, even after a failed pull, so local edits are
// never silently lost.
func (e *Engine) StashSync(ctx context.Context, repo model.Repo) model.StashSyncOutcome {
	if strings.TrimSpace(repo.Path) == "" {
		panic("engine: stash-sync invoked with empty repository path")
	}

	dirty, files, err := e.adapter.WorktreeStatus(ctx, repo.Path)
	if err != nil {
		// Nothing was touched; refuse rather than guess at cleanliness.
		outcome := model.StashSyncOutcome{
			Message: fmt.Sprintf("could not verify working tree state: %v", err),
		}
		e.recordSyncResult(repo, outcome)
		return outcome
	}

	if !dirty {
		e.record(eventlog.Entry{
			Event:   eventlog.EventUserAction,
			Project: repo.Name,
			Action:  "pull",
			Message: "working tree clean, plain fast-forward pull",
		})
		return e.plainPull(ctx, repo)
	}

	e.record(eventlog.Entry{
		Event:   eventlog.EventDirtyConflict,
		Project: repo.Name,
		Files:   files,
		Message: "sync requested with uncommitted changes present",
	})
	e.record(eventlog.Entry{
		Event:   eventlog.EventUserAction,
		Project: repo.Name,
		Action:  "stash-sync",
		Message: "guarded stash, pull, restore",
	})

	created, err := e.adapter.StashPush(ctx, repo.Path, StashMessage)
	if err != nil {
		// The only side-effect-free failure: the tree is untouched.
		outcome := model.StashSyncOutcome{
			Message: fmt.Sprintf("stash failed, working tree untouched: %v", err),
		}
		e.recordSyncResult(repo, outcome)
		return outcome
	}
	if !created {
		// The tree went clean between the status query and the stash.
		return e.plainPull(ctx, repo)
	}

	pullErr := e.adapter.PullFastForward(ctx, repo.Path)
	restoreErr := e.adapter.StashPop(ctx, repo.Path)

	outcome := model.StashSyncOutcome{
		PullSucceeded:    pullErr == nil,
		RestoreSucceeded: restoreErr == nil,
		Message:          stashSyncMessage(pullErr, restoreErr),
	}
	e.recordSyncResult(repo, outcome)
	return outcome
}

func (e *Engine) plainPull(ctx context.Context, repo model.Repo) model.StashSyncOutcome {
	outcome := model.StashSyncOutcome{
		PullSucceeded:    true,
		RestoreSucceeded: true,
		Message:          "pulled fast-forward",
	}
	if err := e.adapter.PullFastForward(ctx, repo.Path); err != nil {
		outcome.PullSucceeded = false
		outcome.Message = fmt.Sprintf("fast-forward pull failed: %v", err)
	}
	e.recordSyncResult(repo, outcome)
	return outcome
}

func stashSyncMessage(pullErr, restoreErr error) string {
	switch {
	case pullErr == nil && restoreErr == nil:
		return "pulled fast-forward and restored local changes"
	case pullErr == nil && restoreErr != nil:
		return fmt.Sprintf("pull succeeded but restoring stashed changes failed: %v; recover them with `git stash pop`", restoreErr)
	case pullErr != nil && restoreErr == nil:
		return fmt.Sprintf("fast-forward pull failed: %v; local changes were restored", pullErr)
	default:
		return fmt.Sprintf("fast-forward pull failed: %v; restoring stashed changes also failed: %v; local edits remain in `git stash list`", pullErr, restoreErr)
	}
}

func (e *Engine) recordSyncResult(repo model.Repo, outcome model.StashSyncOutcome) {
	success := outcome.Overall()
	e.record(eventlog.Entry{
		Event:   eventlog.EventSyncResult,
		Project: repo.Name,
		Success: &success,
		Message: outcome.Message,
	})
}
