package vcs

import (
	"context"

	"github.com/skaphos/syncwatch/internal/gitx"
)

// Adapter defines the VCS operations syncwatch relies on: the divergence
// and cleanliness queries plus the three stash-sync transaction steps.
// Git is the only shipped adapter; the interface exists so the engine can
// be exercised against scripted implementations in tests.
type Adapter interface {
	Name() string
	Fetch(ctx context.Context, dir string) error
	AheadBehind(ctx context.Context, dir string) (ahead, behind int, err error)
	WorktreeStatus(ctx context.Context, dir string) (dirty bool, files []string, err error)
	StashPush(ctx context.Context, dir, message string) (created bool, err error)
	PullFastForward(ctx context.Context, dir string) error
	StashPop(ctx context.Context, dir string) error
}

// GitAdapter implements Adapter using the git CLI via gitx.
type GitAdapter struct {
	Runner gitx.Runner
}

func NewGitAdapter(runner gitx.Runner) *GitAdapter {
	if runner == nil {
		runner = &gitx.GitRunner{}
	}
	return &GitAdapter{Runner: runner}
}

func (g *GitAdapter) Name() string { return "git" }

func (g *GitAdapter) Fetch(ctx context.Context, dir string) error {
	return gitx.Fetch(ctx, g.Runner, dir)
}

func (g *GitAdapter) AheadBehind(ctx context.Context, dir string) (int, int, error) {
	return gitx.AheadBehind(ctx, g.Runner, dir)
}

func (g *GitAdapter) WorktreeStatus(ctx context.Context, dir string) (bool, []string, error) {
	return gitx.WorktreeStatus(ctx, g.Runner, dir)
}

func (g *GitAdapter) StashPush(ctx context.Context, dir, message string) (bool, error) {
	return gitx.StashPush(ctx, g.Runner, dir, message)
}

func (g *GitAdapter) PullFastForward(ctx context.Context, dir string) error {
	return gitx.PullFastForward(ctx, g.Runner, dir)
}

func (g *GitAdapter) StashPop(ctx context.Context, dir string) error {
	return gitx.StashPop(ctx, g.Runner, dir)
}
