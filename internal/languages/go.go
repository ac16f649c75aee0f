package languages

import (
	"context"
	"sort"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"

	"github.com/archmap-dev/archmap/internal/source"
)

// GoParser implements parsing for Go source files
type GoParser struct {
	parser *sitter.Parser
}

// NewGoParser creates a new Go parser
func NewGoParser() *GoParser {
	p := sitter.NewParser()
	p.SetLanguage(golang.GetLanguage())
	return &GoParser{parser: p}
}

func (g *GoParser) Language() string {
	return "go"
}

func (g *GoParser) Extensions() []string {
	return []string{".go"}
}

func (g *GoParser) Parse(filename string, content []byte) ([]source.SymbolData, error) {
	tree, err := g.parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	var types []source.SymbolData
	var functions []source.SymbolData
	methodsByType := make(map[string][]source.SymbolData)
	var looseMethods []source.SymbolData

	root := tree.RootNode()
	for i := 0; i < int(root.ChildCount()); i++ {
		node := root.Child(i)
		switch node.Type() {
		case "function_declaration":
			if sym := g.extractFunction(node, content); sym != nil {
				functions = append(functions, *sym)
			}
		case "method_declaration":
			sym, receiver := g.extractMethod(node, content)
			if sym == nil {
				continue
			}
			if receiver != "" {
				methodsByType[receiver] = append(methodsByType[receiver], *sym)
			} else {
				looseMethods = append(looseMethods, *sym)
			}
		case "type_declaration":
			types = append(types, g.extractTypeDecl(node, content)...)
		}
	}

	// attach methods to their receiver types; methods with an unknown
	// receiver stay top-level
	out := make([]source.SymbolData, 0, len(types)+len(functions)+len(looseMethods))
	for _, typ := range types {
		if methods, ok := methodsByType[typ.Name]; ok {
			typ.Children = append(typ.Children, methods...)
			typ.Range = expandRange(typ.Range, methods)
			delete(methodsByType, typ.Name)
		}
		out = append(out, typ)
	}
	for _, sym := range functions {
		out = append(out, sym)
	}
	for _, sym := range looseMethods {
		out = append(out, sym)
	}
	orphanReceivers := make([]string, 0, len(methodsByType))
	for receiver := range methodsByType {
		orphanReceivers = append(orphanReceivers, receiver)
	}
	sort.Strings(orphanReceivers)
	for _, receiver := range orphanReceivers {
		out = append(out, methodsByType[receiver]...)
	}
	return out, nil
}

// expandRange grows a type's range so it covers its attached methods,
// keeping the parent range a superset of every child range.
func expandRange(rng source.Range, children []source.SymbolData) source.Range {
	for _, child := range children {
		if child.Range.Start.Line < rng.Start.Line {
			rng.Start = child.Range.Start
		}
		if child.Range.End.Line > rng.End.Line {
			rng.End = child.Range.End
		}
	}
	return rng
}

func (g *GoParser) extractFunction(node *sitter.Node, content []byte) *source.SymbolData {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	return &source.SymbolData{
		Name:           nameNode.Content(content),
		Kind:           source.SymbolFunction,
		Range:          nodeRange(node),
		SelectionRange: selectionRange(node, nameNode),
		Calls:          g.extractCalls(node.ChildByFieldName("body"), content),
	}
}

func (g *GoParser) extractMethod(node *sitter.Node, content []byte) (*source.SymbolData, string) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil, ""
	}

	receiver := ""
	if receiverNode := node.ChildByFieldName("receiver"); receiverNode != nil {
		receiver = receiverBaseType(receiverNode.Content(content))
	}

	sym := &source.SymbolData{
		Name:           nameNode.Content(content),
		Kind:           source.SymbolMethod,
		Range:          nodeRange(node),
		SelectionRange: selectionRange(node, nameNode),
		Calls:          g.extractCalls(node.ChildByFieldName("body"), content),
	}
	return sym, receiver
}

func (g *GoParser) extractTypeDecl(node *sitter.Node, content []byte) []source.SymbolData {
	symbols := make([]source.SymbolData, 0)
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() != "type_spec" {
			continue
		}
		nameNode := child.ChildByFieldName("name")
		typeNode := child.ChildByFieldName("type")
		if nameNode == nil {
			continue
		}

		kind := source.SymbolStruct
		if typeNode != nil && typeNode.Type() == "interface_type" {
			kind = source.SymbolInterface
		}
		symbols = append(symbols, source.SymbolData{
			Name:           nameNode.Content(content),
			Kind:           kind,
			Range:          nodeRange(child),
			SelectionRange: selectionRange(child, nameNode),
		})
	}
	return symbols
}

func (g *GoParser) extractCalls(bodyNode *sitter.Node, content []byte) []source.CallSite {
	if bodyNode == nil {
		return nil
	}
	calls := make([]source.CallSite, 0)
	g.collectCalls(bodyNode, content, &calls)
	return calls
}

func (g *GoParser) collectCalls(node *sitter.Node, content []byte, calls *[]source.CallSite) {
	if node == nil {
		return
	}
	if node.Type() == "call_expression" {
		if call := g.extractCallSite(node, content); call.Name != "" {
			*calls = append(*calls, call)
		}
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		g.collectCalls(node.Child(i), content, calls)
	}
}

func (g *GoParser) extractCallSite(callNode *sitter.Node, content []byte) source.CallSite {
	name, qualifier := g.extractCallName(callNode.ChildByFieldName("function"), content)
	call := source.CallSite{
		Name:      name,
		Qualifier: qualifier,
		Line:      int(callNode.StartPoint().Row) + 1,
	}
	if qualifier != "" {
		call.Receiver = qualifier
	}
	return call
}

func (g *GoParser) extractCallName(node *sitter.Node, content []byte) (name, qualifier string) {
	if node == nil {
		return "", ""
	}
	switch node.Type() {
	case "identifier":
		return node.Content(content), ""
	case "selector_expression":
		operandNode := node.ChildByFieldName("operand")
		fieldNode := node.ChildByFieldName("field")
		if fieldNode != nil {
			qualifierValue := ""
			if operandNode != nil {
				qualifierValue = operandNode.Content(content)
			}
			return fieldNode.Content(content), qualifierValue
		}
	case "parenthesized_expression":
		return g.extractCallName(node.ChildByFieldName("expression"), content)
	case "index_expression", "type_instantiation_expression":
		return g.extractCallName(node.ChildByFieldName("operand"), content)
	}
	qualifierValue, nameValue := splitQualifiedName(node.Content(content))
	return nameValue, qualifierValue
}
