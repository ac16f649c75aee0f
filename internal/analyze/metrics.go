package analyze

import (
	"errors"
	"fmt"
	"sort"

	"github.com/archmap-dev/archmap/internal/graphkit"
	"github.com/archmap-dev/archmap/internal/model"
)

// ErrInternalInvariantViolation marks a programmer error inside the metric
// and pruning pass, e.g. an artifact missing its SCC index when expected.
var ErrInternalInvariantViolation = errors.New("internal invariant violation")

// ComputeMetrics fills in lines of code, component ranks, topologically
// sorted SCC indices, and cycle flags for every artifact, then prunes each
// scope graph to the transitive reduction of its condensation. It runs
// post-order, so a scope always sees final metrics for its children.
// Running it twice yields the same metrics and edge set.
func ComputeMetrics(tree *model.Tree) error {
	computeLinesOfCode(tree)

	var firstErr error
	tree.WalkPost(tree.Root(), func(a *model.Artifact) {
		if err := pruneScope(tree, a); err != nil && firstErr == nil {
			firstErr = err
		}
	})
	return firstErr
}

// computeLinesOfCode assigns leaf sizes and sums them upward: a leaf symbol
// spans its range, a file without symbols counts its raw lines, and every
// non-leaf is exactly the sum of its children.
func computeLinesOfCode(tree *model.Tree) {
	tree.WalkPost(tree.Root(), func(a *model.Artifact) {
		children := a.Children()
		if len(children) == 0 {
			switch a.Kind {
			case model.KindSymbol:
				a.Metrics.LinesOfCode = a.Symbol.Range.LineCount()
			case model.KindFile:
				a.Metrics.LinesOfCode = len(a.Lines)
			default:
				a.Metrics.LinesOfCode = 0
			}
			return
		}
		sum := 0
		for _, child := range children {
			sum += tree.Get(child).Metrics.LinesOfCode
		}
		a.Metrics.LinesOfCode = sum
	})
}

func pruneScope(tree *model.Tree, scope *model.Artifact) error {
	children := scope.Children()
	if len(children) == 0 {
		return nil
	}

	kg := graphkit.New()
	for _, child := range children {
		kg.AddNode(graphkit.NodeID(child), tree.Get(child).Metrics.LinesOfCode)
	}
	for _, e := range scope.Graph.Edges() {
		kg.AddEdge(graphkit.EdgeID(e.ID), graphkit.NodeID(e.From), graphkit.NodeID(e.To))
	}

	for rank, component := range graphkit.Components(kg) {
		sub := kg.Subgraph(component)
		for _, id := range component {
			tree.Get(model.ID(id)).Metrics.ComponentRank = rank
		}
		pruneComponent(tree, scope, sub)
	}

	for _, child := range children {
		if tree.Get(child).Metrics.SCCIndex == model.MetricUnset {
			return fmt.Errorf("%w: artifact %q has no SCC index after pruning", ErrInternalInvariantViolation, tree.Get(child).Name)
		}
	}
	return nil
}

// pruneComponent numbers the SCCs of one weakly-connected component in
// topological order and removes cross-SCC edges that are not part of the
// condensation's transitive reduction. Edges inside an SCC are retained.
func pruneComponent(tree *model.Tree, scope *model.Artifact, sub *graphkit.Graph) {
	cond := graphkit.Condensation(sub)
	counts := graphkit.AncestorCounts(cond.Graph)

	// Topological numbering: ancestor count ascending, ties broken by the
	// smallest original member id.
	order := cond.Graph.Nodes()
	sort.SliceStable(order, func(i, j int) bool {
		ci, cj := counts[order[i]], counts[order[j]]
		if ci != cj {
			return ci < cj
		}
		return cond.Members[order[i]][0] < cond.Members[order[j]][0]
	})
	for position, sccID := range order {
		members := cond.Members[sccID]
		inCycle := len(members) > 1
		for _, id := range members {
			m := &tree.Get(model.ID(id)).Metrics
			m.SCCIndex = position
			m.InCycle = inCycle
		}
	}

	reduced := graphkit.TransitiveReduction(cond.Graph)
	for _, e := range sub.Edges() {
		from, to := cond.SCCOf[e.From], cond.SCCOf[e.To]
		if from == to {
			continue
		}
		if !reduced.HasEdge(from, to) {
			scope.Graph.RemoveEdge(model.ID(e.From), model.ID(e.To))
		}
	}
}
