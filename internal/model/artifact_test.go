package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archmap-dev/archmap/internal/source"
)

func buildSmallTree(t *testing.T) (*Tree, ID, ID, ID) {
	t.Helper()
	tree := NewTree("proj")
	folder, err := tree.AddFolder(tree.Root(), "pkg")
	require.NoError(t, err)
	file, err := tree.AddFile(folder, "main.go", []string{"package main", "func A() {}"})
	require.NoError(t, err)
	sym, err := tree.AddSymbol(file, "A", SymbolInfo{
		Kind:  source.SymbolFunction,
		Range: source.Range{Start: source.Position{Line: 2, Column: 1}, End: source.Position{Line: 2, Column: 12}},
	})
	require.NoError(t, err)
	return tree, folder, file, sym
}

func TestTreeIdsAreStableAndUnique(t *testing.T) {
	tree, folder, file, sym := buildSmallTree(t)

	seen := map[ID]bool{}
	tree.WalkPre(tree.Root(), func(a *Artifact) bool {
		assert.False(t, seen[a.ID], "duplicate id %d", a.ID)
		seen[a.ID] = true
		return true
	})
	assert.Equal(t, 4, tree.Len())
	assert.Equal(t, folder, tree.Get(file).Parent)
	assert.Equal(t, file, tree.Get(sym).Parent)
	assert.Equal(t, "pkg/main.go", tree.Path(file))
}

func TestGraphNodesAreExactlyScopeChildren(t *testing.T) {
	tree, folder, file, _ := buildSmallTree(t)

	assert.Equal(t, []ID{file}, tree.Get(folder).Graph.Nodes())
	assert.Equal(t, tree.Get(folder).Children(), tree.Get(folder).Graph.Nodes())
}

func TestInsertEdgeRejectsSelfEdge(t *testing.T) {
	tree := NewTree("proj")
	a, _ := tree.AddFile(tree.Root(), "a.go", nil)

	err := tree.InsertEdge(tree.Root(), a, a)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidGraphMutation))
}

func TestInsertEdgeRejectsNonChildren(t *testing.T) {
	tree := NewTree("proj")
	folder, _ := tree.AddFolder(tree.Root(), "pkg")
	a, _ := tree.AddFile(folder, "a.go", nil)
	b, _ := tree.AddFile(tree.Root(), "b.go", nil)

	err := tree.InsertEdge(tree.Root(), a, b)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidGraphMutation))
}

func TestInsertEdgeIsIdempotent(t *testing.T) {
	tree := NewTree("proj")
	a, _ := tree.AddFile(tree.Root(), "a.go", nil)
	b, _ := tree.AddFile(tree.Root(), "b.go", nil)

	require.NoError(t, tree.InsertEdge(tree.Root(), a, b))
	require.NoError(t, tree.InsertEdge(tree.Root(), a, b))
	assert.Equal(t, 1, tree.Get(tree.Root()).Graph.EdgeCount())
}

func TestFileCannotContainFolder(t *testing.T) {
	tree := NewTree("proj")
	file, _ := tree.AddFile(tree.Root(), "a.go", nil)

	_, err := tree.AddFolder(file, "sub")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidGraphMutation))
}

func TestSetChildOrderValidatesPermutation(t *testing.T) {
	tree := NewTree("proj")
	a, _ := tree.AddFile(tree.Root(), "a.go", nil)
	b, _ := tree.AddFile(tree.Root(), "b.go", nil)

	require.NoError(t, tree.SetChildOrder(tree.Root(), []ID{b, a}))
	assert.Equal(t, []ID{b, a}, tree.Get(tree.Root()).Children())

	err := tree.SetChildOrder(tree.Root(), []ID{a, a})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidGraphMutation))
}

func TestWalkPostVisitsChildrenFirst(t *testing.T) {
	tree, folder, file, sym := buildSmallTree(t)

	var order []ID
	tree.WalkPost(tree.Root(), func(a *Artifact) {
		order = append(order, a.ID)
	})
	require.Equal(t, []ID{sym, file, folder, tree.Root()}, order)
}

func TestWalkPreVisitsScopeFirst(t *testing.T) {
	tree, folder, file, sym := buildSmallTree(t)

	var order []ID
	tree.WalkPre(tree.Root(), func(a *Artifact) bool {
		order = append(order, a.ID)
		return true
	})
	require.Equal(t, []ID{tree.Root(), folder, file, sym}, order)
}

func TestGraphRemoveEdge(t *testing.T) {
	tree := NewTree("proj")
	a, _ := tree.AddFile(tree.Root(), "a.go", nil)
	b, _ := tree.AddFile(tree.Root(), "b.go", nil)
	require.NoError(t, tree.InsertEdge(tree.Root(), a, b))

	g := &tree.Get(tree.Root()).Graph
	g.RemoveEdge(a, b)
	assert.False(t, g.HasEdge(a, b))
	assert.Empty(t, g.Successors(a))
	assert.Empty(t, g.Predecessors(b))
}
