// Package sortutil centralizes the deterministic orderings used for output.
package sortutil

import (
	"sort"

	"github.com/skaphos/syncwatch/internal/engine"
)

// SortCheckResults orders results by repository name. Checks complete in
// arbitrary order; an explicit sort keeps rendered output stable.
func SortCheckResults(results []engine.CheckResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Name < results[j].Name
	})
}
