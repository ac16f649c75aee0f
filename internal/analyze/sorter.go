package analyze

import (
	"sort"

	"github.com/archmap-dev/archmap/internal/model"
)

// Sort reorders every scope's children into the canonical display order:
// component rank ascending, SCC index ascending, lines of code descending,
// then name and id as final tiebreaks. The order is a total deterministic
// function of the metrics; sorting twice yields the same order.
func Sort(tree *model.Tree) {
	tree.WalkPre(tree.Root(), func(a *model.Artifact) bool {
		children := a.Children()
		if len(children) < 2 {
			return true
		}
		order := make([]model.ID, len(children))
		copy(order, children)
		sort.SliceStable(order, func(i, j int) bool {
			return childLess(tree.Get(order[i]), tree.Get(order[j]))
		})
		// children are a permutation of themselves, so this cannot fail
		_ = tree.SetChildOrder(a.ID, order)
		return true
	})
}

func childLess(a, b *model.Artifact) bool {
	if a.Metrics.ComponentRank != b.Metrics.ComponentRank {
		return a.Metrics.ComponentRank < b.Metrics.ComponentRank
	}
	if a.Metrics.SCCIndex != b.Metrics.SCCIndex {
		return a.Metrics.SCCIndex < b.Metrics.SCCIndex
	}
	if a.Metrics.LinesOfCode != b.Metrics.LinesOfCode {
		return a.Metrics.LinesOfCode > b.Metrics.LinesOfCode
	}
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.ID < b.ID
}
