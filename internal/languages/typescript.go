package languages

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/archmap-dev/archmap/internal/source"
)

// TypeScriptParser implements parsing for TypeScript and JavaScript files
type TypeScriptParser struct {
	parser *sitter.Parser
}

// NewTypeScriptParser creates a new TypeScript parser
func NewTypeScriptParser() *TypeScriptParser {
	p := sitter.NewParser()
	p.SetLanguage(typescript.GetLanguage())
	return &TypeScriptParser{parser: p}
}

func (t *TypeScriptParser) Language() string {
	return "typescript"
}

func (t *TypeScriptParser) Extensions() []string {
	return []string{".ts", ".tsx", ".js", ".jsx", ".mjs"}
}

func (t *TypeScriptParser) Parse(filename string, content []byte) ([]source.SymbolData, error) {
	tree, err := t.parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	return t.extractStatements(tree.RootNode(), content), nil
}

func (t *TypeScriptParser) extractStatements(node *sitter.Node, content []byte) []source.SymbolData {
	symbols := make([]source.SymbolData, 0)
	for i := 0; i < int(node.ChildCount()); i++ {
		decl := node.Child(i)
		if decl.Type() == "export_statement" {
			symbols = append(symbols, t.extractStatements(decl, content)...)
			continue
		}
		switch decl.Type() {
		case "function_declaration":
			if sym := t.extractFunction(decl, content); sym != nil {
				symbols = append(symbols, *sym)
			}
		case "class_declaration":
			if sym := t.extractClass(decl, content); sym != nil {
				symbols = append(symbols, *sym)
			}
		case "interface_declaration":
			if sym := t.extractNamed(decl, content, source.SymbolInterface); sym != nil {
				symbols = append(symbols, *sym)
			}
		case "lexical_declaration", "variable_declaration":
			symbols = append(symbols, t.extractVariableDeclarations(decl, content)...)
		}
	}
	return symbols
}

func (t *TypeScriptParser) extractFunction(node *sitter.Node, content []byte) *source.SymbolData {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	return &source.SymbolData{
		Name:           nameNode.Content(content),
		Kind:           source.SymbolFunction,
		Range:          nodeRange(node),
		SelectionRange: selectionRange(node, nameNode),
		Calls:          t.extractCalls(node.ChildByFieldName("body"), content),
	}
}

func (t *TypeScriptParser) extractClass(node *sitter.Node, content []byte) *source.SymbolData {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	sym := &source.SymbolData{
		Name:           nameNode.Content(content),
		Kind:           source.SymbolClass,
		Range:          nodeRange(node),
		SelectionRange: selectionRange(node, nameNode),
	}
	if body := node.ChildByFieldName("body"); body != nil {
		for i := 0; i < int(body.ChildCount()); i++ {
			member := body.Child(i)
			if member.Type() != "method_definition" {
				continue
			}
			memberName := member.ChildByFieldName("name")
			if memberName == nil {
				continue
			}
			sym.Children = append(sym.Children, source.SymbolData{
				Name:           memberName.Content(content),
				Kind:           source.SymbolMethod,
				Range:          nodeRange(member),
				SelectionRange: selectionRange(member, memberName),
				Calls:          t.extractCalls(member.ChildByFieldName("body"), content),
			})
		}
	}
	return sym
}

func (t *TypeScriptParser) extractNamed(node *sitter.Node, content []byte, kind source.SymbolKind) *source.SymbolData {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	return &source.SymbolData{
		Name:           nameNode.Content(content),
		Kind:           kind,
		Range:          nodeRange(node),
		SelectionRange: selectionRange(node, nameNode),
	}
}

// extractVariableDeclarations reports arrow functions bound to constants as
// function symbols; plain value bindings are reported as variables.
func (t *TypeScriptParser) extractVariableDeclarations(node *sitter.Node, content []byte) []source.SymbolData {
	symbols := make([]source.SymbolData, 0)
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() != "variable_declarator" {
			continue
		}
		nameNode := child.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		valueNode := child.ChildByFieldName("value")
		kind := source.SymbolVariable
		var calls []source.CallSite
		if valueNode != nil && (valueNode.Type() == "arrow_function" || valueNode.Type() == "function_expression") {
			kind = source.SymbolFunction
			calls = t.extractCalls(valueNode.ChildByFieldName("body"), content)
		}
		symbols = append(symbols, source.SymbolData{
			Name:           nameNode.Content(content),
			Kind:           kind,
			Range:          nodeRange(child),
			SelectionRange: selectionRange(child, nameNode),
			Calls:          calls,
		})
	}
	return symbols
}

func (t *TypeScriptParser) extractCalls(body *sitter.Node, content []byte) []source.CallSite {
	if body == nil {
		return nil
	}
	calls := make([]source.CallSite, 0)
	t.collectCalls(body, content, &calls)
	return calls
}

func (t *TypeScriptParser) collectCalls(node *sitter.Node, content []byte, calls *[]source.CallSite) {
	if node == nil {
		return
	}
	if node.Type() == "call_expression" {
		if call := t.extractCallSite(node, content); call.Name != "" {
			*calls = append(*calls, call)
		}
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		t.collectCalls(node.Child(i), content, calls)
	}
}

func (t *TypeScriptParser) extractCallSite(callNode *sitter.Node, content []byte) source.CallSite {
	name, qualifier := t.extractCallName(callNode.ChildByFieldName("function"), content)
	call := source.CallSite{
		Name:      name,
		Qualifier: qualifier,
		Line:      int(callNode.StartPoint().Row) + 1,
	}
	if qualifier == "this" {
		call.Receiver = qualifier
	}
	return call
}

func (t *TypeScriptParser) extractCallName(node *sitter.Node, content []byte) (name, qualifier string) {
	if node == nil {
		return "", ""
	}
	switch node.Type() {
	case "identifier":
		return node.Content(content), ""
	case "member_expression":
		object := node.ChildByFieldName("object")
		property := node.ChildByFieldName("property")
		if property != nil {
			qualifierValue := ""
			if object != nil {
				qualifierValue = strings.TrimSpace(object.Content(content))
			}
			return property.Content(content), qualifierValue
		}
	case "parenthesized_expression":
		return t.extractCallName(node.ChildByFieldName("expression"), content)
	}
	qualifierValue, nameValue := splitQualifiedName(node.Content(content))
	return nameValue, qualifierValue
}
