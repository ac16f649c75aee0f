// Package analyze turns a parsed source tree into the architecture model:
// it materializes the artifact tree, lifts symbol references into scope
// graphs, computes per-artifact metrics, prunes redundant edges, and orders
// children deterministically.
package analyze

import (
	"github.com/archmap-dev/archmap/internal/model"
	"github.com/archmap-dev/archmap/internal/source"
)

type symbolRef struct {
	id        model.ID
	rng       source.Range
	selection source.Range
}

// Index is the side table mapping file paths and ranges back to artifact
// ids. It is retained only until the lifter has finished.
type Index struct {
	files   map[string]model.ID
	symbols map[string][]symbolRef
}

// ResolveFile returns the file artifact for a project-relative path.
func (ix *Index) ResolveFile(path string) (model.ID, bool) {
	id, ok := ix.files[path]
	return id, ok
}

// ResolveSymbol maps a file path and range to the symbol artifact at that
// location. A symbol whose selection range matches exactly wins; otherwise
// the deepest symbol whose range contains the target is chosen. Returns
// model.NoID when the range lies outside every known symbol.
func (ix *Index) ResolveSymbol(path string, rng source.Range) model.ID {
	refs, ok := ix.symbols[path]
	if !ok {
		return model.NoID
	}
	best := model.NoID
	bestSpan := 0
	for _, ref := range refs {
		if ref.selection == rng {
			return ref.id
		}
		if !ref.rng.Contains(rng) {
			continue
		}
		span := ref.rng.LineCount()
		if best == model.NoID || span < bestSpan || (span == bestSpan && ref.id > best) {
			best = ref.id
			bestSpan = span
		}
	}
	return best
}

// Build materializes the artifact tree from the parsed project folder. The
// returned index maps file paths and symbol ranges back to artifact ids so
// the lifter can resolve references.
func Build(project *source.Folder) (*model.Tree, *Index, error) {
	tree := model.NewTree(project.Name)
	ix := &Index{
		files:   make(map[string]model.ID),
		symbols: make(map[string][]symbolRef),
	}
	if err := buildFolder(tree, ix, tree.Root(), project); err != nil {
		return nil, nil, err
	}
	return tree, ix, nil
}

func buildFolder(tree *model.Tree, ix *Index, scope model.ID, folder *source.Folder) error {
	for _, sub := range folder.Subfolders {
		id, err := tree.AddFolder(scope, sub.Name)
		if err != nil {
			return err
		}
		if err := buildFolder(tree, ix, id, sub); err != nil {
			return err
		}
	}
	for _, file := range folder.Files {
		id, err := tree.AddFile(scope, file.Name, file.Lines)
		if err != nil {
			return err
		}
		ix.files[file.Path] = id
		for _, sym := range file.Symbols {
			if err := buildSymbol(tree, ix, id, file, sym); err != nil {
				return err
			}
		}
	}
	return nil
}

func buildSymbol(tree *model.Tree, ix *Index, scope model.ID, file *source.File, sym source.SymbolData) error {
	info := model.SymbolInfo{
		Kind:           sym.Kind,
		Range:          sym.Range,
		SelectionRange: sym.SelectionRange,
		Source:         sliceLines(file.Lines, sym.Range),
	}
	id, err := tree.AddSymbol(scope, sym.Name, info)
	if err != nil {
		return err
	}
	ix.symbols[file.Path] = append(ix.symbols[file.Path], symbolRef{
		id:        id,
		rng:       sym.Range,
		selection: sym.SelectionRange,
	})
	for _, child := range sym.Children {
		if err := buildSymbol(tree, ix, id, file, child); err != nil {
			return err
		}
	}
	return nil
}

func sliceLines(lines []string, rng source.Range) []string {
	start := rng.Start.Line - 1
	end := rng.End.Line
	if start < 0 {
		start = 0
	}
	if end > len(lines) {
		end = len(lines)
	}
	if start >= end {
		return nil
	}
	out := make([]string, end-start)
	copy(out, lines[start:end])
	return out
}
