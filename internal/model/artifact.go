package model

import (
	"fmt"

	"github.com/archmap-dev/archmap/internal/source"
)

// ID indexes an artifact inside its Tree arena.
type ID int

// NoID marks an unset artifact reference.
const NoID ID = -1

// Kind distinguishes the artifact variants.
type Kind int

const (
	KindFolder Kind = iota
	KindFile
	KindSymbol
)

func (k Kind) String() string {
	switch k {
	case KindFolder:
		return "folder"
	case KindFile:
		return "file"
	case KindSymbol:
		return "symbol"
	default:
		return "unknown"
	}
}

// SymbolInfo carries the symbol-specific payload of an artifact.
type SymbolInfo struct {
	Kind           source.SymbolKind
	Range          source.Range
	SelectionRange source.Range
	Source         []string // extracted source slice
}

// Artifact is one node of the architecture tree: a folder, file, or symbol.
// The enclosing scope is stored as an id, never as an owning pointer; all
// ownership runs root-downward through the Tree arena.
type Artifact struct {
	ID     ID
	Parent ID
	Kind   Kind
	Name   string

	Lines  []string   // file payload
	Symbol SymbolInfo // symbol payload

	Graph   Graph // dependency graph over the direct children
	Metrics Metrics

	children   []ID
	childIndex map[ID]int
}

// Children returns the child ids in their current order. The returned slice
// is the artifact's own backing store; callers must not modify it.
func (a *Artifact) Children() []ID {
	return a.children
}

// HasChild reports whether id is a direct child of a.
func (a *Artifact) HasChild(id ID) bool {
	_, ok := a.childIndex[id]
	return ok
}

// Tree owns every artifact of one analyzed project in a contiguous arena.
type Tree struct {
	arena []Artifact
	root  ID
}

// NewTree creates a tree holding a single root folder.
func NewTree(rootName string) *Tree {
	t := &Tree{root: 0}
	t.arena = append(t.arena, Artifact{
		ID:         0,
		Parent:     NoID,
		Kind:       KindFolder,
		Name:       rootName,
		Graph:      newGraph(),
		Metrics:    newMetrics(),
		childIndex: make(map[ID]int),
	})
	return t
}

// Root returns the id of the root folder.
func (t *Tree) Root() ID {
	return t.root
}

// Len returns the number of artifacts in the tree.
func (t *Tree) Len() int {
	return len(t.arena)
}

// Get returns the artifact with the given id.
func (t *Tree) Get(id ID) *Artifact {
	if id < 0 || int(id) >= len(t.arena) {
		return nil
	}
	return &t.arena[id]
}

// AddFolder appends a folder artifact under parent.
func (t *Tree) AddFolder(parent ID, name string) (ID, error) {
	return t.add(parent, Artifact{Kind: KindFolder, Name: name})
}

// AddFile appends a file artifact under parent.
func (t *Tree) AddFile(parent ID, name string, lines []string) (ID, error) {
	return t.add(parent, Artifact{Kind: KindFile, Name: name, Lines: lines})
}

// AddSymbol appends a symbol artifact under parent (a file or another symbol).
func (t *Tree) AddSymbol(parent ID, name string, info SymbolInfo) (ID, error) {
	return t.add(parent, Artifact{Kind: KindSymbol, Name: name, Symbol: info})
}

func (t *Tree) add(parent ID, a Artifact) (ID, error) {
	p := t.Get(parent)
	if p == nil {
		return NoID, fmt.Errorf("%w: parent %d does not exist", ErrInvalidGraphMutation, parent)
	}
	if p.Kind == KindFile && a.Kind != KindSymbol {
		return NoID, fmt.Errorf("%w: file %q can only contain symbols", ErrInvalidGraphMutation, p.Name)
	}
	if a.Kind == KindFolder && p.Kind != KindFolder {
		return NoID, fmt.Errorf("%w: folder %q must live in a folder", ErrInvalidGraphMutation, a.Name)
	}
	if a.Kind == KindFile && p.Kind != KindFolder {
		return NoID, fmt.Errorf("%w: file %q must live in a folder", ErrInvalidGraphMutation, a.Name)
	}

	id := ID(len(t.arena))
	a.ID = id
	a.Parent = parent
	a.Graph = newGraph()
	a.Metrics = newMetrics()
	a.childIndex = make(map[ID]int)
	t.arena = append(t.arena, a)

	// re-fetch: the append may have relocated the arena
	p = t.Get(parent)
	if _, dup := p.childIndex[id]; dup {
		return NoID, fmt.Errorf("%w: duplicate child %d under %q", ErrInvalidGraphMutation, id, p.Name)
	}
	p.childIndex[id] = len(p.children)
	p.children = append(p.children, id)
	p.Graph.addNode(id)
	return id, nil
}

// InsertEdge adds a dependency edge from→to in the graph of scope. Both
// endpoints must be direct children of scope; self-edges fail. Inserting an
// edge that already exists is a no-op.
func (t *Tree) InsertEdge(scope, from, to ID) error {
	s := t.Get(scope)
	if s == nil {
		return fmt.Errorf("%w: scope %d does not exist", ErrInvalidGraphMutation, scope)
	}
	if !s.HasChild(from) || !s.HasChild(to) {
		return fmt.Errorf("%w: edge %d->%d endpoints are not children of %q", ErrInvalidGraphMutation, from, to, s.Name)
	}
	_, err := s.Graph.InsertEdge(from, to)
	return err
}

// SetChildOrder replaces the child order of scope. The new order must be a
// permutation of the current children.
func (t *Tree) SetChildOrder(scope ID, order []ID) error {
	s := t.Get(scope)
	if s == nil {
		return fmt.Errorf("%w: scope %d does not exist", ErrInvalidGraphMutation, scope)
	}
	if len(order) != len(s.children) {
		return fmt.Errorf("%w: child order for %q has %d entries, want %d", ErrInvalidGraphMutation, s.Name, len(order), len(s.children))
	}
	seen := make(map[ID]bool, len(order))
	for _, id := range order {
		if !s.HasChild(id) || seen[id] {
			return fmt.Errorf("%w: child order for %q is not a permutation", ErrInvalidGraphMutation, s.Name)
		}
		seen[id] = true
	}
	s.children = append(s.children[:0], order...)
	for i, id := range s.children {
		s.childIndex[id] = i
	}
	return nil
}

// Path returns the slash-separated artifact path from the root to id.
func (t *Tree) Path(id ID) string {
	var parts []string
	for cur := id; cur != NoID; {
		a := t.Get(cur)
		if a == nil {
			break
		}
		parts = append(parts, a.Name)
		cur = a.Parent
	}
	// reverse, skip the root name
	path := ""
	for i := len(parts) - 2; i >= 0; i-- {
		if path != "" {
			path += "/"
		}
		path += parts[i]
	}
	return path
}
