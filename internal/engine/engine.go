// Package engine orchestrates the core operations: concurrent sync-state
// checks and the guarded stash-sync transaction. It coordinates between
// classify, vcs, eventlog, and config packages.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/skaphos/syncwatch/internal/classify"
	"github.com/skaphos/syncwatch/internal/config"
	"github.com/skaphos/syncwatch/internal/eventlog"
	"github.com/skaphos/syncwatch/internal/model"
	"github.com/skaphos/syncwatch/internal/vcs"
)

// Engine is the core orchestrator for syncwatch operations. It holds no
// per-repository state between calls: every check produces a fresh snapshot
// and the caller owns the current view.
type Engine struct {
	cfg     *config.Config
	adapter vcs.Adapter
	log     *eventlog.Log
}

// New creates a new Engine with the given configuration. A nil adapter
// defaults to the git CLI adapter; a nil log disables audit recording.
func New(cfg *config.Config, adapter vcs.Adapter, log *eventlog.Log) *Engine {
	if adapter == nil {
		adapter = vcs.NewGitAdapter(nil)
	}
	return &Engine{
		cfg:     cfg,
		adapter: adapter,
		log:     log,
	}
}

// Config returns the engine configuration reference.
func (e *Engine) Config() *config.Config { return e.cfg }

// Adapter returns the engine VCS adapter.
func (e *Engine) Adapter() vcs.Adapter { return e.adapter }

// EventLog returns the engine audit log, possibly nil.
func (e *Engine) EventLog() *eventlog.Log { return e.log }

// CheckResult pairs one repository with its freshly classified state.
type CheckResult struct {
	Name  string          `json:"name" yaml:"name"`
	Path  string          `json:"path" yaml:"path"`
	State model.SyncState `json:"state" yaml:"state"`
}

// CheckOptions configures a batch check.
type CheckOptions struct {
	Concurrency int
	Timeout     int // seconds per repo
}

func (e *Engine) checkRuntime(opts CheckOptions) (int, int) {
	defaults := config.DefaultConfig().Defaults

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		if e.cfg != nil && e.cfg.Defaults.Concurrency > 0 {
			concurrency = e.cfg.Defaults.Concurrency
		} else {
			concurrency = defaults.Concurrency
		}
	}
	timeoutSeconds := opts.Timeout
	if timeoutSeconds <= 0 {
		if e.cfg != nil && e.cfg.Defaults.TimeoutSeconds > 0 {
			timeoutSeconds = e.cfg.Defaults.TimeoutSeconds
		} else {
			timeoutSeconds = defaults.TimeoutSeconds
		}
	}
	return concurrency, timeoutSeconds
}

// CheckAll classifies every given repository concurrently and streams
// results in completion order. The channel is closed once the batch
// drains. Repositories are independent: one erroring never aborts or
// delays the others, and results carry error states in-band.
//
// The channel is buffered to the batch size, so a caller that stops
// receiving (for example, on shutdown) leaks no goroutines.
func (e *Engine) CheckAll(ctx context.Context, repos []model.Repo, opts CheckOptions) <-chan CheckResult {
	concurrency, timeoutSeconds := e.checkRuntime(opts)

	out := make(chan CheckResult, len(repos))
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for _, repo := range repos {
		wg.Add(1)
		go func(repo model.Repo) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			out <- e.checkRepo(ctx, repo, timeoutSeconds)
		}(repo)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// CheckOne classifies a single repository with the identical logic used by
// CheckAll. It is the targeted re-check used after a sync transaction.
func (e *Engine) CheckOne(ctx context.Context, name, path string) CheckResult {
	_, timeoutSeconds := e.checkRuntime(CheckOptions{})
	return e.checkRepo(ctx, model.Repo{Name: name, Path: path}, timeoutSeconds)
}

func (e *Engine) checkRepo(ctx context.Context, repo model.Repo, timeoutSeconds int) CheckResult {
	if timeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(timeoutSeconds)*time.Second)
		defer cancel()
	}

	// Best-effort: a failed fetch alone must not turn the check into an
	// error, the divergence query below is the authoritative signal.
	_ = e.adapter.Fetch(ctx, repo.Path)

	ahead, behind, divergenceErr := e.adapter.AheadBehind(ctx, repo.Path)

	in := classify.Inputs{
		Ahead:         ahead,
		Behind:        behind,
		DivergenceErr: divergenceErr,
	}
	if divergenceErr == nil {
		dirty, files, statusErr := e.adapter.WorktreeStatus(ctx, repo.Path)
		if statusErr != nil {
			// A repo whose status query fails is not reliably classifiable.
			in.DivergenceErr = statusErr
		} else {
			in.Dirty = dirty
			in.DirtyFiles = files
		}
	}

	state := classify.Classify(in)
	if state.Dirty {
		// Recorded on every check, not only on transitions.
		e.record(eventlog.Entry{
			Event:   eventlog.EventDirtyDetected,
			Project: repo.Name,
			Files:   state.DirtyFiles,
			Message: "uncommitted changes detected",
		})
	}
	return CheckResult{Name: repo.Name, Path: repo.Path, State: state}
}

// record appends to the audit log when one is configured. Logging is
// best-effort observability and never influences check or sync outcomes.
func (e *Engine) record(entry eventlog.Entry) {
	if e.log == nil {
		return
	}
	e.log.Append(entry)
}
