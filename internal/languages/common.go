package languages

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/archmap-dev/archmap/internal/source"
)

// nodeRange converts a tree-sitter node span to a 1-based source range.
func nodeRange(node *sitter.Node) source.Range {
	return source.Range{
		Start: source.Position{
			Line:   int(node.StartPoint().Row) + 1,
			Column: int(node.StartPoint().Column) + 1,
		},
		End: source.Position{
			Line:   int(node.EndPoint().Row) + 1,
			Column: int(node.EndPoint().Column) + 1,
		},
	}
}

// selectionRange returns the name node's range, falling back to the whole
// declaration when the name node is missing.
func selectionRange(decl, name *sitter.Node) source.Range {
	if name != nil {
		return nodeRange(name)
	}
	return nodeRange(decl)
}

func splitQualifiedName(raw string) (qualifier, name string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ""
	}
	if idx := strings.LastIndex(raw, "."); idx != -1 {
		qualifier = strings.TrimSpace(raw[:idx])
		name = strings.TrimSpace(raw[idx+1:])
		return qualifier, name
	}
	return "", raw
}

// receiverBaseType extracts the type name from a Go receiver like
// "(s *Server)" or "(c Cache[K, V])".
func receiverBaseType(receiver string) string {
	receiver = strings.TrimSpace(receiver)
	receiver = strings.TrimPrefix(receiver, "(")
	receiver = strings.TrimSuffix(receiver, ")")
	fields := strings.Fields(receiver)
	if len(fields) == 0 {
		return ""
	}
	name := fields[len(fields)-1]
	name = strings.TrimPrefix(name, "*")
	if idx := strings.Index(name, "["); idx != -1 {
		name = name[:idx]
	}
	return strings.TrimSpace(name)
}
