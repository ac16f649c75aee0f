package analyze

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archmap-dev/archmap/internal/model"
	"github.com/archmap-dev/archmap/internal/source"
)

func lineRange(start, end int) source.Range {
	return source.Range{
		Start: source.Position{Line: start, Column: 1},
		End:   source.Position{Line: end, Column: 80},
	}
}

func selRange(line int) source.Range {
	return source.Range{
		Start: source.Position{Line: line, Column: 6},
		End:   source.Position{Line: line, Column: 10},
	}
}

// fileWithSymbols builds a file holding the given symbols, with just enough
// placeholder lines to reach the last line any symbol spans.
func fileWithSymbols(name string, symbols ...source.SymbolData) *source.File {
	maxLine := 0
	for _, sym := range symbols {
		if sym.Range.End.Line > maxLine {
			maxLine = sym.Range.End.Line
		}
	}
	lines := make([]string, maxLine)
	for i := range lines {
		lines[i] = "line"
	}
	return &source.File{Name: name, Path: name, Lines: lines, Symbols: symbols}
}

func symbolAt(name string, start, end int) source.SymbolData {
	return source.SymbolData{
		Name:           name,
		Kind:           source.SymbolFunction,
		Range:          lineRange(start, end),
		SelectionRange: selRange(start),
	}
}

func reference(fromLine int, targetFile string, targetSel source.Range) source.Reference {
	pos := source.Position{Line: fromLine, Column: 2}
	return source.Reference{
		SourceRange:    source.Range{Start: pos, End: pos},
		TargetFilePath: targetFile,
		TargetRange:    targetSel,
	}
}

func analyzeProject(t *testing.T, project *source.Folder) *model.Tree {
	t.Helper()
	tree, index, err := Build(project)
	require.NoError(t, err)
	require.NoError(t, Lift(tree, index, project))
	require.NoError(t, ComputeMetrics(tree))
	Sort(tree)
	return tree
}

func childByName(t *testing.T, tree *model.Tree, scope model.ID, name string) *model.Artifact {
	t.Helper()
	for _, id := range tree.Get(scope).Children() {
		if tree.Get(id).Name == name {
			return tree.Get(id)
		}
	}
	t.Fatalf("no child %q under %q", name, tree.Get(scope).Name)
	return nil
}

func TestSingleFileSingleFunction(t *testing.T) {
	project := &source.Folder{
		Name:  "proj",
		Files: []*source.File{fileWithSymbols("main.go", symbolAt("run", 1, 3))},
	}
	tree := analyzeProject(t, project)

	file := childByName(t, tree, tree.Root(), "main.go")
	require.Len(t, file.Children(), 1)
	sym := tree.Get(file.Children()[0])
	assert.Equal(t, "run", sym.Name)
	assert.Empty(t, sym.Children())

	assert.Equal(t, 0, sym.Metrics.ComponentRank)
	assert.False(t, sym.Metrics.InCycle)
	assert.Equal(t, 0, file.Graph.EdgeCount())
	assert.Equal(t, 3, sym.Metrics.LinesOfCode)
	assert.Equal(t, 3, file.Metrics.LinesOfCode)
}

func TestLinesOfCodeSumsOverChildren(t *testing.T) {
	project := &source.Folder{
		Name: "proj",
		Subfolders: []*source.Folder{{
			Name:  "pkg",
			Files: []*source.File{fileWithSymbols("pkg/a.go", symbolAt("a", 1, 4), symbolAt("b", 5, 10))},
		}},
		Files: []*source.File{fileWithSymbols("c.go", symbolAt("c", 1, 5))},
	}
	tree := analyzeProject(t, project)

	tree.WalkPre(tree.Root(), func(a *model.Artifact) bool {
		if len(a.Children()) == 0 {
			return true
		}
		sum := 0
		for _, child := range a.Children() {
			sum += tree.Get(child).Metrics.LinesOfCode
		}
		assert.Equal(t, sum, a.Metrics.LinesOfCode, "artifact %q", a.Name)
		return true
	})
	assert.Equal(t, 15, tree.Get(tree.Root()).Metrics.LinesOfCode)
}

func TestMutuallyRecursiveSymbolsFormOneSCC(t *testing.T) {
	a := symbolAt("a", 1, 2)
	b := symbolAt("b", 3, 4)
	file := fileWithSymbols("rec.go", a, b)
	file.References = []source.Reference{
		reference(1, "rec.go", b.SelectionRange),
		reference(3, "rec.go", a.SelectionRange),
	}
	project := &source.Folder{Name: "proj", Files: []*source.File{file}}
	tree := analyzeProject(t, project)

	fileArt := childByName(t, tree, tree.Root(), "rec.go")
	require.Equal(t, 2, fileArt.Graph.EdgeCount(), "no edges removed inside an SCC")

	symA := childByName(t, tree, fileArt.ID, "a")
	symB := childByName(t, tree, fileArt.ID, "b")
	assert.True(t, symA.Metrics.InCycle)
	assert.True(t, symB.Metrics.InCycle)
	assert.Equal(t, symA.Metrics.SCCIndex, symB.Metrics.SCCIndex)
}

// filesWithDeps wires the given file-level dependencies through symbol
// references and returns the analyzed tree.
func filesWithDeps(t *testing.T, names []string, deps [][2]int) *model.Tree {
	t.Helper()
	files := make([]*source.File, len(names))
	syms := make([]source.SymbolData, len(names))
	for i, name := range names {
		syms[i] = symbolAt("sym_"+name, 1, 5)
		files[i] = fileWithSymbols(name, syms[i])
	}
	for _, dep := range deps {
		files[dep[0]].References = append(files[dep[0]].References,
			reference(1, names[dep[1]], syms[dep[1]].SelectionRange))
	}
	project := &source.Folder{Name: "proj", Files: files}
	return analyzeProject(t, project)
}

func TestTransitiveTrianglePruned(t *testing.T) {
	tree := filesWithDeps(t, []string{"a.go", "b.go", "c.go"},
		[][2]int{{0, 1}, {1, 2}, {0, 2}})

	root := tree.Get(tree.Root())
	a := childByName(t, tree, root.ID, "a.go")
	b := childByName(t, tree, root.ID, "b.go")
	c := childByName(t, tree, root.ID, "c.go")

	assert.Equal(t, 2, root.Graph.EdgeCount())
	assert.True(t, root.Graph.HasEdge(a.ID, b.ID))
	assert.True(t, root.Graph.HasEdge(b.ID, c.ID))
	assert.False(t, root.Graph.HasEdge(a.ID, c.ID))
}

func TestDiamondSurvivesPruning(t *testing.T) {
	tree := filesWithDeps(t, []string{"f1.go", "f2.go", "f3.go", "f4.go"},
		[][2]int{{0, 1}, {0, 2}, {1, 3}, {2, 3}})

	root := tree.Get(tree.Root())
	assert.Equal(t, 4, root.Graph.EdgeCount())

	f1 := childByName(t, tree, root.ID, "f1.go")
	f2 := childByName(t, tree, root.ID, "f2.go")
	f3 := childByName(t, tree, root.ID, "f3.go")
	f4 := childByName(t, tree, root.ID, "f4.go")

	indices := map[int]bool{
		f1.Metrics.SCCIndex: true, f2.Metrics.SCCIndex: true,
		f3.Metrics.SCCIndex: true, f4.Metrics.SCCIndex: true,
	}
	assert.Len(t, indices, 4, "all SCC indices distinct")
	assert.Less(t, f1.Metrics.SCCIndex, f2.Metrics.SCCIndex)
	assert.Less(t, f1.Metrics.SCCIndex, f3.Metrics.SCCIndex)
	assert.Less(t, f2.Metrics.SCCIndex, f4.Metrics.SCCIndex)
	assert.Less(t, f3.Metrics.SCCIndex, f4.Metrics.SCCIndex)
}

func TestComponentRankFollowsLinesOfCode(t *testing.T) {
	// component of 400 LoC vs component of 100 LoC
	big1 := fileWithSymbols("big1.go", symbolAt("b1", 1, 300))
	big2 := fileWithSymbols("big2.go", symbolAt("b2", 1, 100))
	small := fileWithSymbols("small.go", symbolAt("s", 1, 100))
	big1.References = []source.Reference{reference(1, "big2.go", big2.Symbols[0].SelectionRange)}
	project := &source.Folder{Name: "proj", Files: []*source.File{big1, big2, small}}
	tree := analyzeProject(t, project)

	root := tree.Get(tree.Root())
	assert.Equal(t, 0, childByName(t, tree, root.ID, "big1.go").Metrics.ComponentRank)
	assert.Equal(t, 0, childByName(t, tree, root.ID, "big2.go").Metrics.ComponentRank)
	assert.Equal(t, 1, childByName(t, tree, root.ID, "small.go").Metrics.ComponentRank)
}

func TestLiftPromotesCrossFolderReference(t *testing.T) {
	inner := symbolAt("x", 1, 3)
	outer := symbolAt("y", 1, 4)
	innerFile := fileWithSymbols("p/f1.go", inner)
	innerFile.Name = "f1.go"
	outerFile := fileWithSymbols("f2.go", outer)
	innerFile.References = []source.Reference{reference(1, "f2.go", outer.SelectionRange)}

	project := &source.Folder{
		Name:       "proj",
		Subfolders: []*source.Folder{{Name: "p", Files: []*source.File{innerFile}}},
		Files:      []*source.File{outerFile},
	}
	tree := analyzeProject(t, project)

	root := tree.Get(tree.Root())
	folderP := childByName(t, tree, root.ID, "p")
	fileF2 := childByName(t, tree, root.ID, "f2.go")
	assert.True(t, root.Graph.HasEdge(folderP.ID, fileF2.ID),
		"sibling-level edge folder->file expected at the common scope")

	// no transitive closure: the file inside p carries no edge of its own
	fileF1 := childByName(t, tree, folderP.ID, "f1.go")
	assert.Equal(t, 0, folderP.Graph.EdgeCount())
	assert.Empty(t, fileF1.Graph.Edges())
}

func TestLiftIgnoresExternalAndSelfReferences(t *testing.T) {
	sym := symbolAt("a", 1, 3)
	file := fileWithSymbols("a.go", sym)
	file.References = []source.Reference{
		reference(1, "missing.go", selRange(1)), // outside the project
		reference(1, "a.go", sym.SelectionRange), // self
	}
	project := &source.Folder{Name: "proj", Files: []*source.File{file}}
	tree := analyzeProject(t, project)

	fileArt := childByName(t, tree, tree.Root(), "a.go")
	assert.Equal(t, 0, fileArt.Graph.EdgeCount())
	assert.Equal(t, 0, tree.Get(tree.Root()).Graph.EdgeCount())
}

func TestPrunerIsIdempotent(t *testing.T) {
	tree := filesWithDeps(t, []string{"a.go", "b.go", "c.go"},
		[][2]int{{0, 1}, {1, 2}, {0, 2}})

	root := tree.Get(tree.Root())
	before := root.Graph.Edges()
	require.NoError(t, ComputeMetrics(tree))
	assert.Equal(t, before, root.Graph.Edges())
}

func TestSorterIsDeterministicAndIdempotent(t *testing.T) {
	tree := filesWithDeps(t, []string{"a.go", "b.go", "c.go", "d.go"},
		[][2]int{{0, 1}, {2, 3}})

	first := append([]model.ID{}, tree.Get(tree.Root()).Children()...)
	Sort(tree)
	assert.Equal(t, first, tree.Get(tree.Root()).Children())
}

func TestSortOrdersByComponentThenTopology(t *testing.T) {
	// a->b in one component; lone.go is its own smaller component
	a := fileWithSymbols("a.go", symbolAt("a", 1, 10))
	b := fileWithSymbols("b.go", symbolAt("b", 1, 10))
	lone := fileWithSymbols("lone.go", symbolAt("l", 1, 5))
	a.References = []source.Reference{reference(1, "b.go", b.Symbols[0].SelectionRange)}
	project := &source.Folder{Name: "proj", Files: []*source.File{lone, b, a}}
	tree := analyzeProject(t, project)

	root := tree.Get(tree.Root())
	names := make([]string, 0, len(root.Children()))
	for _, id := range root.Children() {
		names = append(names, tree.Get(id).Name)
	}
	assert.Equal(t, []string{"a.go", "b.go", "lone.go"}, names)
}
