package analyze

import (
	"github.com/archmap-dev/archmap/internal/model"
	"github.com/archmap-dev/archmap/internal/source"
)

// Lift promotes symbol references into scope-graph edges. For each reference
// it resolves the source and target symbols, walks both ancestor chains to
// their lowest common scope, and inserts the edge between the two ancestors
// that are direct children of that scope. References that cannot be resolved
// point outside the analyzed project and are skipped. Ancestor/descendant
// pairs carry no sibling edge. Inserting the same edge twice is a no-op, so
// the resulting edge set is a pure function of the input.
func Lift(tree *model.Tree, ix *Index, project *source.Folder) error {
	var firstErr error
	project.EachFile(func(file *source.File) {
		for _, ref := range file.References {
			if err := liftReference(tree, ix, file.Path, ref); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	})
	return firstErr
}

func liftReference(tree *model.Tree, ix *Index, path string, ref source.Reference) error {
	src := ix.ResolveSymbol(path, ref.SourceRange)
	dst := ix.ResolveSymbol(ref.TargetFilePath, ref.TargetRange)
	if src == model.NoID || dst == model.NoID || src == dst {
		return nil
	}

	scope, from, to := siblingAncestors(tree, src, dst)
	if scope == model.NoID || from == model.NoID || to == model.NoID || from == to {
		return nil
	}
	return tree.InsertEdge(scope, from, to)
}

// siblingAncestors finds the lowest common scope of a and b and the two
// ancestors that are its direct children on each chain.
func siblingAncestors(tree *model.Tree, a, b model.ID) (scope, fromChild, toChild model.ID) {
	pathA := rootPath(tree, a)
	pathB := rootPath(tree, b)

	common := -1
	for i := 0; i < len(pathA) && i < len(pathB); i++ {
		if pathA[i] != pathB[i] {
			break
		}
		common = i
	}
	if common < 0 {
		return model.NoID, model.NoID, model.NoID
	}
	scope = pathA[common]
	fromChild, toChild = model.NoID, model.NoID
	if common+1 < len(pathA) {
		fromChild = pathA[common+1]
	}
	if common+1 < len(pathB) {
		toChild = pathB[common+1]
	}
	return scope, fromChild, toChild
}

func rootPath(tree *model.Tree, id model.ID) []model.ID {
	var reversed []model.ID
	for cur := id; cur != model.NoID; {
		reversed = append(reversed, cur)
		cur = tree.Get(cur).Parent
	}
	path := make([]model.ID, len(reversed))
	for i, id := range reversed {
		path[len(reversed)-1-i] = id
	}
	return path
}
