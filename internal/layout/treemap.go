// Package layout assigns a rectangle to every artifact of a sorted tree by
// recursive area-proportional partitioning. The layout is a pure function of
// the sorted tree, the root rectangle, the filter, and the constants:
// identical inputs yield byte-identical rectangles.
package layout

import (
	"math"

	"github.com/archmap-dev/archmap/internal/model"
)

// Constants are the layout tuning knobs, fixed for the duration of a run.
type Constants struct {
	Padding   float64
	FontSize  float64
	MinWidth  float64
	MinHeight float64
}

// DefaultConstants returns the standard layout configuration.
func DefaultConstants() Constants {
	return Constants{Padding: 4, FontSize: 12, MinWidth: 48, MinHeight: 32}
}

// Filter selects the artifacts whose parts are shown. Artifacts failing the
// filter collapse to a degenerate rectangle at their scope's center.
type Filter func(*model.Artifact) bool

// ShowAll is the filter that hides nothing.
func ShowAll(*model.Artifact) bool { return true }

type layouter struct {
	tree  *model.Tree
	shown Filter
	c     Constants
}

// Apply lays out the whole tree inside a width×height root rectangle.
func Apply(tree *model.Tree, width, height float64, shown Filter, c Constants) {
	if shown == nil {
		shown = ShowAll
	}
	l := &layouter{tree: tree, shown: shown, c: c}
	root := tree.Get(tree.Root())
	l.preparePart(root, model.Rect{X: 0, Y: 0, W: width, H: height})
}

// preparePart assigns the available rectangle to one artifact, computes its
// inner content rectangle, and recurses into its children when they fit.
func (l *layouter) preparePart(part *model.Artifact, rect model.Rect) {
	part.Metrics.Frame = rect
	inner := l.innerRect(rect)
	part.Metrics.ContentFrame = inner

	cx, cy := inner.Center()
	if inner.W < l.c.MinWidth || inner.H < l.c.MinHeight {
		part.Metrics.ShowsParts = false
		l.collapseDescendants(part, cx, cy)
		return
	}

	shown, hidden := l.partition(part.Children())
	if len(shown) == 0 {
		part.Metrics.ShowsParts = false
		for _, id := range hidden {
			l.collapseSubtree(id, cx, cy)
		}
		return
	}

	if l.prepare(shown, inner) {
		part.Metrics.ShowsParts = true
		for _, id := range hidden {
			l.collapseSubtree(id, cx, cy)
		}
		return
	}
	part.Metrics.ShowsParts = false
	l.collapseDescendants(part, cx, cy)
}

// prepare partitions rect among the shown parts, preserving their sorted
// order. It reports whether every part received a rectangle of at least the
// minimum size; on false the caller collapses the whole scope.
func (l *layouter) prepare(parts []model.ID, rect model.Rect) bool {
	if len(parts) == 1 {
		l.preparePart(l.tree.Get(parts[0]), rect)
		return true
	}

	groupA, groupB := l.splitBalanced(parts)
	locA := l.totalLines(groupA)
	locTotal := locA + l.totalLines(groupB)
	fractionA := 0.5
	if locTotal > 0 {
		fractionA = float64(locA) / float64(locTotal)
	}

	gap := 2 * math.Pow(rect.Surface(), 1.0/6.0)
	if l.rankBoundaryDiffers(groupA, groupB) {
		gap *= 3
	}

	rectA, rectB := splitRect(rect, fractionA, gap)
	if rectA.W < l.c.MinWidth || rectA.H < l.c.MinHeight ||
		rectB.W < l.c.MinWidth || rectB.H < l.c.MinHeight {
		return false
	}

	okA := l.prepare(groupA, rectA)
	okB := l.prepare(groupB, rectB)
	return okA && okB
}

// splitBalanced splits the sorted parts into two non-empty contiguous groups
// minimizing the absolute difference of cumulative lines of code. Ties pick
// the smallest split index.
func (l *layouter) splitBalanced(parts []model.ID) (groupA, groupB []model.ID) {
	total := l.totalLines(parts)
	bestIdx := 1
	bestDiff := math.MaxFloat64
	prefix := 0
	for i := 1; i < len(parts); i++ {
		prefix += l.lines(parts[i-1])
		diff := math.Abs(float64(prefix) - float64(total-prefix))
		if diff < bestDiff {
			bestDiff = diff
			bestIdx = i
		}
	}
	return parts[:bestIdx], parts[bestIdx:]
}

// rankBoundaryDiffers reports whether the parts adjacent to the split line
// belong to different weakly-connected components; such boundaries get a
// wider gap.
func (l *layouter) rankBoundaryDiffers(groupA, groupB []model.ID) bool {
	last := l.tree.Get(groupA[len(groupA)-1])
	first := l.tree.Get(groupB[0])
	return last.Metrics.ComponentRank != first.Metrics.ComponentRank
}

// splitRect divides rect along its longer axis (width wins ties) at the
// given fraction of the remaining space after the gap.
func splitRect(rect model.Rect, fraction, gap float64) (a, b model.Rect) {
	if gap < 0 {
		gap = 0
	}
	if rect.W >= rect.H {
		avail := rect.W - gap
		if avail < 0 {
			avail = 0
		}
		wa := avail * fraction
		a = model.Rect{X: rect.X, Y: rect.Y, W: wa, H: rect.H}
		b = model.Rect{X: rect.X + wa + gap, Y: rect.Y, W: avail - wa, H: rect.H}
		return a, b
	}
	avail := rect.H - gap
	if avail < 0 {
		avail = 0
	}
	ha := avail * fraction
	a = model.Rect{X: rect.X, Y: rect.Y, W: rect.W, H: ha}
	b = model.Rect{X: rect.X, Y: rect.Y + ha + gap, W: rect.W, H: avail - ha}
	return a, b
}

// innerRect subtracts the padding and the header band from a part's frame.
func (l *layouter) innerRect(rect model.Rect) model.Rect {
	header := l.c.FontSize + 2*l.c.Padding
	inner := model.Rect{
		X: rect.X + l.c.Padding,
		Y: rect.Y + header,
		W: rect.W - 2*l.c.Padding,
		H: rect.H - header - l.c.Padding,
	}
	if inner.W < 0 {
		inner.W = 0
	}
	if inner.H < 0 {
		inner.H = 0
	}
	return inner
}

func (l *layouter) partition(children []model.ID) (shown, hidden []model.ID) {
	for _, id := range children {
		if l.shown(l.tree.Get(id)) {
			shown = append(shown, id)
		} else {
			hidden = append(hidden, id)
		}
	}
	return shown, hidden
}

func (l *layouter) collapseDescendants(part *model.Artifact, x, y float64) {
	for _, id := range part.Children() {
		l.collapseSubtree(id, x, y)
	}
}

func (l *layouter) collapseSubtree(id model.ID, x, y float64) {
	point := model.Rect{X: x, Y: y}
	l.tree.WalkPre(id, func(a *model.Artifact) bool {
		a.Metrics.Frame = point
		a.Metrics.ContentFrame = point
		a.Metrics.ShowsParts = false
		return true
	})
}

func (l *layouter) totalLines(ids []model.ID) int {
	sum := 0
	for _, id := range ids {
		sum += l.lines(id)
	}
	return sum
}

func (l *layouter) lines(id model.ID) int {
	return l.tree.Get(id).Metrics.LinesOfCode
}
