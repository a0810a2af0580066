package engine_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/skaphos/syncwatch/internal/config"
	"github.com/skaphos/syncwatch/internal/engine"
	"github.com/skaphos/syncwatch/internal/eventlog"
	"github.com/skaphos/syncwatch/internal/model"
	"github.com/skaphos/syncwatch/internal/vcs"
)

type mockRunner struct {
	mu        sync.Mutex
	responses map[string]mockResponse
}

type mockResponse struct {
	out string
	err error
}

func (m *mockRunner) Run(_ context.Context, dir string, args ...string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := dir + ":" + strings.Join(args, " ")
	if resp, ok := m.responses[key]; ok {
		return resp.out, resp.err
	}
	return "", errors.New("unexpected call: " + key)
}

func (m *mockRunner) set(key string, resp mockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[key] = resp
}

const (
	divergenceArgs = "rev-list --left-right --count HEAD...@{upstream}"
	statusArgs     = "status --porcelain=v1"
	fetchArgs      = "-c fetch.recurseSubmodules=false fetch --all --prune --no-recurse-submodules"
	pullArgs       = "pull --ff-only --no-recurse-submodules"
	stashPushArgs  = "stash push -u -m " + engine.StashMessage
	stashPopArgs   = "stash pop"
)

func newEngine(runner *mockRunner, log *eventlog.Log) *engine.Engine {
	cfg := &config.Config{Defaults: config.Defaults{Concurrency: 4, TimeoutSeconds: 5}}
	return engine.New(cfg, vcs.NewGitAdapter(runner), log)
}

var _ = Describe("CheckOne", func() {
	It("classifies a synced clean repo", func() {
		runner := &mockRunner{responses: map[string]mockResponse{
			"/repo:" + fetchArgs:      {out: "Fetching origin"},
			"/repo:" + divergenceArgs: {out: "0\t0"},
			"/repo:" + statusArgs:     {out: ""},
		}}
		res := newEngine(runner, nil).CheckOne(context.Background(), "repo", "/repo")
		Expect(res.State.Status).To(Equal(model.StatusSynced))
		Expect(res.State.Dirty).To(BeFalse())
	})

	It("classifies a behind dirty repo", func() {
		runner := &mockRunner{responses: map[string]mockResponse{
			"/repo:" + fetchArgs:      {},
			"/repo:" + divergenceArgs: {out: "0\t3"},
			"/repo:" + statusArgs:     {out: " M main.go"},
		}}
		res := newEngine(runner, nil).CheckOne(context.Background(), "repo", "/repo")
		Expect(res.State.Status).To(Equal(model.StatusBehind))
		Expect(res.State.Behind).To(Equal(3))
		Expect(res.State.Dirty).To(BeTrue())
		Expect(res.State.DirtyFiles).To(Equal([]string{"main.go"}))
	})

	It("ignores a failed fetch when the divergence query succeeds", func() {
		runner := &mockRunner{responses: map[string]mockResponse{
			"/repo:" + fetchArgs:      {err: errors.New("fatal: could not resolve host: github.com")},
			"/repo:" + divergenceArgs: {out: "1\t0"},
			"/repo:" + statusArgs:     {out: ""},
		}}
		res := newEngine(runner, nil).CheckOne(context.Background(), "repo", "/repo")
		Expect(res.State.Status).To(Equal(model.StatusAhead))
		Expect(res.State.Ahead).To(Equal(1))
	})

	It("collapses a failed divergence query to a zeroed error state", func() {
		runner := &mockRunner{responses: map[string]mockResponse{
			"/repo:" + fetchArgs:      {},
			"/repo:" + divergenceArgs: {err: errors.New("fatal: no upstream configured for branch 'main'")},
		}}
		res := newEngine(runner, nil).CheckOne(context.Background(), "repo", "/repo")
		Expect(res.State.Status).To(Equal(model.StatusError))
		Expect(res.State.Dirty).To(BeFalse())
		Expect(res.State.Ahead).To(Equal(0))
		Expect(res.State.Behind).To(Equal(0))
		Expect(res.State.ErrorClass).To(Equal("no_upstream"))
	})

	It("treats a failed status query as an error state", func() {
		runner := &mockRunner{responses: map[string]mockResponse{
			"/repo:" + fetchArgs:      {},
			"/repo:" + divergenceArgs: {out: "0\t0"},
			"/repo:" + statusArgs:     {err: errors.New("fatal: not a git repository")},
		}}
		res := newEngine(runner, nil).CheckOne(context.Background(), "repo", "/repo")
		Expect(res.State.Status).To(Equal(model.StatusError))
		Expect(res.State.Dirty).To(BeFalse())
	})

	It("is idempotent on an unchanged repository", func() {
		runner := &mockRunner{responses: map[string]mockResponse{
			"/repo:" + fetchArgs:      {},
			"/repo:" + divergenceArgs: {out: "2\t1"},
			"/repo:" + statusArgs:     {out: "?? new.txt"},
		}}
		eng := newEngine(runner, nil)
		first := eng.CheckOne(context.Background(), "repo", "/repo")
		second := eng.CheckOne(context.Background(), "repo", "/repo")
		Expect(first.State).To(Equal(second.State))
	})

	It("records a dirty_detected event on every dirty check", func() {
		log := eventlog.Open(filepath.Join(GinkgoT().TempDir(), "events.yaml"), 10)
		runner := &mockRunner{responses: map[string]mockResponse{
			"/repo:" + fetchArgs:      {},
			"/repo:" + divergenceArgs: {out: "0\t0"},
			"/repo:" + statusArgs:     {out: " M a.go"},
		}}
		eng := newEngine(runner, log)
		eng.CheckOne(context.Background(), "repo", "/repo")
		eng.CheckOne(context.Background(), "repo", "/repo")

		entries := log.ReadAll()
		Expect(entries).To(HaveLen(2))
		Expect(entries[0].Event).To(Equal(eventlog.EventDirtyDetected))
		Expect(entries[0].Files).To(Equal([]string{"a.go"}))
	})
})

var _ = Describe("CheckAll", func() {
	It("streams one result per repository and isolates failures", func() {
		runner := &mockRunner{responses: map[string]mockResponse{
			"/a:" + fetchArgs:      {},
			"/a:" + divergenceArgs: {out: "0\t0"},
			"/a:" + statusArgs:     {out: ""},
			"/b:" + fetchArgs:      {},
			"/b:" + divergenceArgs: {err: errors.New("fatal: not a git repository")},
			"/c:" + fetchArgs:      {},
			"/c:" + divergenceArgs: {out: "0\t2"},
			"/c:" + statusArgs:     {out: ""},
		}}
		repos := []model.Repo{
			{Name: "a", Path: "/a"},
			{Name: "b", Path: "/b"},
			{Name: "c", Path: "/c"},
		}
		results := map[string]engine.CheckResult{}
		for res := range newEngine(runner, nil).CheckAll(context.Background(), repos, engine.CheckOptions{}) {
			results[res.Name] = res
		}
		Expect(results).To(HaveLen(3))
		Expect(results["a"].State.Status).To(Equal(model.StatusSynced))
		Expect(results["b"].State.Status).To(Equal(model.StatusError))
		Expect(results["c"].State.Status).To(Equal(model.StatusBehind))
	})

	It("closes the channel on an empty repository set", func() {
		out := newEngine(&mockRunner{responses: map[string]mockResponse{}}, nil).
			CheckAll(context.Background(), nil, engine.CheckOptions{})
		Eventually(out).Should(BeClosed())
	})

	It("honors a concurrency limit of one", func() {
		runner := &mockRunner{responses: map[string]mockResponse{
			"/a:" + fetchArgs:      {},
			"/a:" + divergenceArgs: {out: "0\t0"},
			"/a:" + statusArgs:     {out: ""},
			"/b:" + fetchArgs:      {},
			"/b:" + divergenceArgs: {out: "0\t0"},
			"/b:" + statusArgs:     {out: ""},
		}}
		repos := []model.Repo{{Name: "a", Path: "/a"}, {Name: "b", Path: "/b"}}
		count := 0
		for range newEngine(runner, nil).CheckAll(context.Background(), repos, engine.CheckOptions{Concurrency: 1}) {
			count++
		}
		Expect(count).To(Equal(2))
	})
})

var _ = Describe("StashSync end to end", func() {
	It("plain-pulls a behind clean repo which then checks synced", func() {
		runner := &mockRunner{responses: map[string]mockResponse{
			"/repo:" + fetchArgs:      {},
			"/repo:" + divergenceArgs: {out: "0\t3"},
			"/repo:" + statusArgs:     {out: ""},
			"/repo:" + pullArgs:       {out: "Fast-forward"},
		}}
		eng := newEngine(runner, nil)

		before := eng.CheckOne(context.Background(), "repo", "/repo")
		Expect(before.State.Status).To(Equal(model.StatusBehind))

		outcome := eng.StashSync(context.Background(), model.Repo{Name: "repo", Path: "/repo"})
		Expect(outcome.PullSucceeded).To(BeTrue())
		Expect(outcome.RestoreSucceeded).To(BeTrue())

		runner.set("/repo:"+divergenceArgs, mockResponse{out: "0\t0"})
		after := eng.CheckOne(context.Background(), "repo", "/repo")
		Expect(after.State.Status).To(Equal(model.StatusSynced))
	})

	It("stash-pull-restores a behind dirty repo which then checks synced and clean", func() {
		log := eventlog.Open(filepath.Join(GinkgoT().TempDir(), "events.yaml"), 50)
		runner := &mockRunner{responses: map[string]mockResponse{
			"/repo:" + fetchArgs:      {},
			"/repo:" + divergenceArgs: {out: "0\t2"},
			"/repo:" + statusArgs:     {out: " M main.go"},
			"/repo:" + stashPushArgs:  {out: "Saved working directory and index state"},
			"/repo:" + pullArgs:       {out: "Fast-forward"},
			"/repo:" + stashPopArgs:   {out: "Dropped refs/stash@{0}"},
		}}
		eng := newEngine(runner, log)

		outcome := eng.StashSync(context.Background(), model.Repo{Name: "repo", Path: "/repo"})
		Expect(outcome.Overall()).To(BeTrue())

		events := log.ReadAll()
		Expect(events[0].Event).To(Equal(eventlog.EventSyncResult))
		Expect(*events[0].Success).To(BeTrue())

		// The stash restored cleanly onto the advanced head.
		runner.set("/repo:"+divergenceArgs, mockResponse{out: "0\t0"})
		runner.set("/repo:"+statusArgs, mockResponse{out: ""})
		after := eng.CheckOne(context.Background(), "repo", "/repo")
		Expect(after.State.Status).To(Equal(model.StatusSynced))
		Expect(after.State.Dirty).To(BeFalse())
	})

	It("reports a blocked pull with restored edits and the repo stays behind and dirty", func() {
		runner := &mockRunner{responses: map[string]mockResponse{
			"/repo:" + fetchArgs:      {},
			"/repo:" + divergenceArgs: {out: "0\t2"},
			"/repo:" + statusArgs:     {out: " M main.go"},
			"/repo:" + stashPushArgs:  {out: "Saved working directory and index state"},
			"/repo:" + pullArgs:       {err: errors.New("fatal: Not possible to fast-forward, aborting.")},
			"/repo:" + stashPopArgs:   {out: "Dropped refs/stash@{0}"},
		}}
		eng := newEngine(runner, nil)

		outcome := eng.StashSync(context.Background(), model.Repo{Name: "repo", Path: "/repo"})
		Expect(outcome.PullSucceeded).To(BeFalse())
		Expect(outcome.RestoreSucceeded).To(BeTrue())
		Expect(outcome.Overall()).To(BeFalse())

		after := eng.CheckOne(context.Background(), "repo", "/repo")
		Expect(after.State.Status).To(Equal(model.StatusBehind))
		Expect(after.State.Dirty).To(BeTrue())
	})
})
