package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archmap-dev/archmap/internal/model"
)

// threeSiblings builds a scope with children of 60, 30, and 10 lines of
// code, already in sorted order and all in one component.
func threeSiblings(t *testing.T) (*model.Tree, []model.ID) {
	t.Helper()
	tree := model.NewTree("proj")
	locs := []int{60, 30, 10}
	ids := make([]model.ID, len(locs))
	for i, loc := range locs {
		id, err := tree.AddFile(tree.Root(), []string{"a.go", "b.go", "c.go"}[i], nil)
		require.NoError(t, err)
		tree.Get(id).Metrics.LinesOfCode = loc
		tree.Get(id).Metrics.ComponentRank = 0
		tree.Get(id).Metrics.SCCIndex = i
		ids[i] = id
	}
	tree.Get(tree.Root()).Metrics.LinesOfCode = 100
	return tree, ids
}

func TestSplitBalancedGroupsByCumulativeLines(t *testing.T) {
	tree, ids := threeSiblings(t)
	l := &layouter{tree: tree, shown: ShowAll}

	groupA, groupB := l.splitBalanced(ids)
	assert.Equal(t, []model.ID{ids[0]}, groupA, "60 vs 40 beats 90 vs 10")
	assert.Equal(t, []model.ID{ids[1], ids[2]}, groupB)
}

func TestSplitRectAlongLongerAxis(t *testing.T) {
	a, b := splitRect(model.Rect{X: 0, Y: 0, W: 100, H: 100}, 0.6, 0)
	assert.Equal(t, model.Rect{X: 0, Y: 0, W: 60, H: 100}, a)
	assert.Equal(t, model.Rect{X: 60, Y: 0, W: 40, H: 100}, b)

	// the right half is taller than wide, so the second split is horizontal
	a, b = splitRect(model.Rect{X: 60, Y: 0, W: 40, H: 100}, 0.75, 0)
	assert.Equal(t, model.Rect{X: 60, Y: 0, W: 40, H: 75}, a)
	assert.Equal(t, model.Rect{X: 60, Y: 75, W: 40, H: 25}, b)
}

func TestSplitRectAppliesGap(t *testing.T) {
	a, b := splitRect(model.Rect{X: 0, Y: 0, W: 110, H: 10}, 0.5, 10)
	assert.Equal(t, 50.0, a.W)
	assert.Equal(t, 60.0, b.X)
	assert.Equal(t, 50.0, b.W)
}

func TestPrepareLaysOutSiblingsProportionally(t *testing.T) {
	tree, ids := threeSiblings(t)
	c := Constants{Padding: 0, FontSize: 0, MinWidth: 1, MinHeight: 1}
	l := &layouter{tree: tree, shown: ShowAll, c: c}

	ok := l.prepare(ids, model.Rect{X: 0, Y: 0, W: 1000, H: 1000})
	require.True(t, ok)

	frames := make([]model.Rect, len(ids))
	for i, id := range ids {
		frames[i] = tree.Get(id).Metrics.Frame
	}
	// group A gets the left strip, group B splits the right strip
	assert.InDelta(t, 0.6, frames[0].W*frames[0].H/1e6, 0.05)
	for _, frame := range frames {
		assert.GreaterOrEqual(t, frame.X, 0.0)
		assert.GreaterOrEqual(t, frame.Y, 0.0)
		assert.LessOrEqual(t, frame.X+frame.W, 1000.0)
		assert.LessOrEqual(t, frame.Y+frame.H, 1000.0)
	}
	assertNoOverlap(t, frames)
}

func TestLayoutIsDeterministic(t *testing.T) {
	build := func() []model.Rect {
		tree, ids := threeSiblings(t)
		Apply(tree, 800, 600, ShowAll, DefaultConstants())
		frames := make([]model.Rect, 0, len(ids))
		for _, id := range ids {
			frames = append(frames, tree.Get(id).Metrics.Frame)
		}
		return frames
	}
	assert.Equal(t, build(), build())
}

func TestChildrenStayInsideParentContent(t *testing.T) {
	tree, ids := threeSiblings(t)
	c := DefaultConstants()
	Apply(tree, 1000, 800, ShowAll, c)

	root := tree.Get(tree.Root())
	if !root.Metrics.ShowsParts {
		t.Skip("root too small for parts with default constants")
	}
	content := root.Metrics.ContentFrame
	for _, id := range ids {
		frame := tree.Get(id).Metrics.Frame
		assert.GreaterOrEqual(t, frame.X, content.X-c.Padding)
		assert.GreaterOrEqual(t, frame.Y, content.Y-c.Padding)
		assert.LessOrEqual(t, frame.X+frame.W, content.X+content.W+c.Padding)
		assert.LessOrEqual(t, frame.Y+frame.H, content.Y+content.H+c.Padding)
	}
}

func TestHiddenPartsCollapseToCenter(t *testing.T) {
	tree, ids := threeSiblings(t)
	hideAll := func(*model.Artifact) bool { return false }
	Apply(tree, 1000, 800, hideAll, DefaultConstants())

	root := tree.Get(tree.Root())
	assert.False(t, root.Metrics.ShowsParts)
	cx, cy := root.Metrics.ContentFrame.Center()
	for _, id := range ids {
		frame := tree.Get(id).Metrics.Frame
		assert.Equal(t, model.Rect{X: cx, Y: cy}, frame)
	}
}

func TestTooSmallRectangleRefusesSplit(t *testing.T) {
	tree, ids := threeSiblings(t)
	c := Constants{Padding: 0, FontSize: 0, MinWidth: 400, MinHeight: 400}
	l := &layouter{tree: tree, shown: ShowAll, c: c}

	ok := l.prepare(ids, model.Rect{X: 0, Y: 0, W: 500, H: 500})
	assert.False(t, ok, "no split can give every group 400x400")
}

func TestWiderGapAcrossComponentBoundary(t *testing.T) {
	tree, ids := threeSiblings(t)
	l := &layouter{tree: tree, shown: ShowAll}
	assert.False(t, l.rankBoundaryDiffers([]model.ID{ids[0]}, ids[1:]))

	tree.Get(ids[1]).Metrics.ComponentRank = 1
	tree.Get(ids[2]).Metrics.ComponentRank = 1
	assert.True(t, l.rankBoundaryDiffers([]model.ID{ids[0]}, ids[1:]))
}

func assertNoOverlap(t *testing.T, frames []model.Rect) {
	t.Helper()
	for i := 0; i < len(frames); i++ {
		for j := i + 1; j < len(frames); j++ {
			a, b := frames[i], frames[j]
			overlapX := a.X < b.X+b.W && b.X < a.X+a.W
			overlapY := a.Y < b.Y+b.H && b.Y < a.Y+a.H
			assert.False(t, overlapX && overlapY, "frames %d and %d overlap: %+v %+v", i, j, a, b)
		}
	}
}
