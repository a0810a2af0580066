// Package classify turns raw git query results into a SyncState. It does
// no I/O itself: callers run the divergence and cleanliness queries and
// hand over the results.
package classify

import (
	"github.com/skaphos/syncwatch/internal/gitx"
	"github.com/skaphos/syncwatch/internal/model"
)

// Inputs carries the raw results of the two per-repository queries.
type Inputs struct {
	// Ahead and Behind are the commit counts from the divergence query.
	Ahead  int
	Behind int
	// DivergenceErr is the divergence query failure, if any. Any non-nil
	// value collapses the whole classification to an error state.
	DivergenceErr error
	// Dirty and DirtyFiles come from the porcelain status query.
	Dirty      bool
	DirtyFiles []string
}

// Classify produces a SyncState from raw query results.
//
// Precedence: a failed divergence query wins and yields an error state with
// zeroed counts and a forced-clean dirty flag (a failed check carries no
// reliable dirty signal). Otherwise the ahead/behind counts decide the
// status and the independently computed dirty flag is attached as-is.
func Classify(in Inputs) model.SyncState {
	if in.DivergenceErr != nil {
		return model.SyncState{
			Status:     model.StatusError,
			Diag:       in.DivergenceErr.Error(),
			ErrorClass: gitx.ClassifyError(in.DivergenceErr),
		}
	}

	state := model.SyncState{
		Ahead:      in.Ahead,
		Behind:     in.Behind,
		Dirty:      in.Dirty,
		DirtyFiles: in.DirtyFiles,
	}
	switch {
	case in.Ahead == 0 && in.Behind == 0:
		state.Status = model.StatusSynced
	case in.Ahead > 0 && in.Behind == 0:
		state.Status = model.StatusAhead
	case in.Ahead == 0 && in.Behind > 0:
		state.Status = model.StatusBehind
	default:
		state.Status = model.StatusDiverged
	}
	return state
}
