// Package gitx provides helpers for executing git commands and parsing
// their output. It shells out to the installed git binary.
package gitx

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes git commands in a given repo directory.
// This interface allows mocking in tests.
type Runner interface {
	// Run executes a git command in the given directory and returns
	// combined stdout/stderr output.
	Run(ctx context.Context, dir string, args ...string) (string, error)
}

// GitRunner is the default Runner implementation that shells out to git.
type GitRunner struct {
	// GitBin is the path to the git binary. Defaults to "git".
	GitBin string
}

// Run executes a git command.
func (g *GitRunner) Run(ctx context.Context, dir string, args ...string) (string, error) {
	bin := g.GitBin
	if bin == "" {
		bin = "git"
	}
	cmd := exec.CommandContext(ctx, bin, args...)
	if dir != "" {
		cmd.Dir = dir
	}
	out, err := cmd.CombinedOutput()
	text := strings.TrimSpace(string(out))
	if err != nil && text != "" {
		// Surface git's own message; callers classify it for display.
		return text, fmt.Errorf("git %s: %s: %w", strings.Join(args, " "), text, err)
	}
	return text, err
}

// Fetch runs a safe fetch with submodule recursion disabled. Failures are
// reported but usually treated as best-effort by callers: the divergence
// query is the authoritative error signal.
func Fetch(ctx context.Context, r Runner, dir string) error {
	_, err := r.Run(ctx, dir, "-c", "fetch.recurseSubmodules=false", "fetch", "--all", "--prune", "--no-recurse-submodules")
	return err
}

// AheadBehind returns the commit divergence of HEAD against its configured
// upstream tracking ref. Using @{upstream} rather than a fixed origin/HEAD
// keeps repos without a default-branch pointer from reporting false errors.
func AheadBehind(ctx context.Context, r Runner, dir string) (int, int, error) {
	out, err := r.Run(ctx, dir, "rev-list", "--left-right", "--count", "HEAD...@{upstream}")
	if err != nil {
		return 0, 0, fmt.Errorf("git rev-list: %w", err)
	}
	ahead, behind := ParseAheadBehind(out)
	return ahead, behind, nil
}

// WorktreeStatus returns the dirty flag and changed paths from a porcelain
// status query. A non-empty porcelain result means dirty.
func WorktreeStatus(ctx context.Context, r Runner, dir string) (bool, []string, error) {
	out, err := r.Run(ctx, dir, "status", "--porcelain=v1")
	if err != nil {
		return false, nil, fmt.Errorf("git status: %w", err)
	}
	files := ParsePorcelainFiles(out)
	return len(files) > 0, files, nil
}

// StashPush saves working-tree modifications, including untracked files.
// The bool result reports whether a stash entry was actually created;
// git exits zero with "No local changes to save" on a clean tree.
func StashPush(ctx context.Context, r Runner, dir, message string) (bool, error) {
	out, err := r.Run(ctx, dir, "stash", "push", "-u", "-m", message)
	if err != nil {
		return false, fmt.Errorf("git stash push: %w", err)
	}
	if strings.Contains(out, "No local changes to save") {
		return false, nil
	}
	return true, nil
}

// PullFastForward integrates the upstream branch, succeeding only when the
// local branch can be advanced without a merge commit.
func PullFastForward(ctx context.Context, r Runner, dir string) error {
	_, err := r.Run(ctx, dir, "pull", "--ff-only", "--no-recurse-submodules")
	if err != nil {
		return fmt.Errorf("git pull --ff-only: %w", err)
	}
	return nil
}

// StashPop re-applies the most recent stash entry.
func StashPop(ctx context.Context, r Runner, dir string) error {
	_, err := r.Run(ctx, dir, "stash", "pop")
	if err != nil {
		return fmt.Errorf("git stash pop: %w", err)
	}
	return nil
}
