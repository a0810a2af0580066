// SPDX-License-Identifier: MIT
package gitx_test

import (
	"context"
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/skaphos/syncwatch/internal/gitx"
)

var _ = Describe("ClassifyError", func() {
	It("returns empty for nil", func() {
		Expect(gitx.ClassifyError(nil)).To(Equal(""))
	})

	It("classifies context deadline as timeout", func() {
		err := fmt.Errorf("git fetch: %w", context.DeadlineExceeded)
		Expect(gitx.ClassifyError(err)).To(Equal("timeout"))
	})

	DescribeTable("message heuristics",
		func(msg, expected string) {
			Expect(gitx.ClassifyError(errors.New(msg))).To(Equal(expected))
		},
		Entry("auth", "fatal: Authentication failed for 'https://example.com/repo.git'", "auth"),
		Entry("network", "fatal: Could not resolve host: github.com", "network"),
		Entry("no upstream", "fatal: no upstream configured for branch 'main'", "no_upstream"),
		Entry("missing path", "chdir /gone/repo: no such file or directory", "missing_path"),
		Entry("not a repo", "fatal: not a git repository (or any of the parent directories): .git", "corrupt"),
		Entry("missing remote ref", "fatal: couldn't find remote ref refs/heads/main", "missing_remote"),
		Entry("unknown", "something else entirely", "unknown"),
	)
})
