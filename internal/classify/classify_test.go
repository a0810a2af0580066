package classify_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/skaphos/syncwatch/internal/classify"
	"github.com/skaphos/syncwatch/internal/model"
)

var _ = Describe("Classify", func() {
	DescribeTable("status from divergence counts",
		func(ahead, behind int, expected model.SyncStatus) {
			state := classify.Classify(classify.Inputs{Ahead: ahead, Behind: behind})
			Expect(state.Status).To(Equal(expected))
			Expect(state.Ahead).To(Equal(ahead))
			Expect(state.Behind).To(Equal(behind))
		},
		Entry("equal", 0, 0, model.StatusSynced),
		Entry("ahead", 3, 0, model.StatusAhead),
		Entry("behind", 0, 2, model.StatusBehind),
		Entry("diverged", 1, 1, model.StatusDiverged),
		Entry("heavily diverged", 10, 7, model.StatusDiverged),
	)

	It("classifies synced irrespective of dirtiness", func() {
		state := classify.Classify(classify.Inputs{Dirty: true, DirtyFiles: []string{"a.go"}})
		Expect(state.Status).To(Equal(model.StatusSynced))
		Expect(state.Dirty).To(BeTrue())
		Expect(state.DirtyFiles).To(Equal([]string{"a.go"}))
	})

	It("attaches the dirty flag to every non-error status", func() {
		state := classify.Classify(classify.Inputs{Behind: 4, Dirty: true})
		Expect(state.Status).To(Equal(model.StatusBehind))
		Expect(state.Dirty).To(BeTrue())
	})

	It("collapses a failed divergence query to a zeroed error state", func() {
		state := classify.Classify(classify.Inputs{
			Ahead:         5,
			Behind:        2,
			Dirty:         true,
			DirtyFiles:    []string{"a.go"},
			DivergenceErr: errors.New("fatal: no upstream configured for branch 'main'"),
		})
		Expect(state.Status).To(Equal(model.StatusError))
		Expect(state.Ahead).To(Equal(0))
		Expect(state.Behind).To(Equal(0))
		Expect(state.Dirty).To(BeFalse())
		Expect(state.DirtyFiles).To(BeEmpty())
		Expect(state.Diag).To(ContainSubstring("no upstream"))
		Expect(state.ErrorClass).To(Equal("no_upstream"))
	})

	It("is idempotent for identical inputs", func() {
		in := classify.Inputs{Ahead: 2, Behind: 3, Dirty: true, DirtyFiles: []string{"x"}}
		Expect(classify.Classify(in)).To(Equal(classify.Classify(in)))
	})
})
