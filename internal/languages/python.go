package languages

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/archmap-dev/archmap/internal/source"
)

// PythonParser implements parsing for Python source files
type PythonParser struct {
	parser *sitter.Parser
}

// NewPythonParser creates a new Python parser
func NewPythonParser() *PythonParser {
	p := sitter.NewParser()
	p.SetLanguage(python.GetLanguage())
	return &PythonParser{parser: p}
}

func (p *PythonParser) Language() string {
	return "python"
}

func (p *PythonParser) Extensions() []string {
	return []string{".py"}
}

func (p *PythonParser) Parse(filename string, content []byte) ([]source.SymbolData, error) {
	tree, err := p.parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	return p.extractBlock(tree.RootNode(), content, false), nil
}

// extractBlock walks one statement block and returns the symbols declared in
// it. Nested definitions become children of their enclosing symbol.
func (p *PythonParser) extractBlock(node *sitter.Node, content []byte, insideClass bool) []source.SymbolData {
	symbols := make([]source.SymbolData, 0)
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		decl := child
		if child.Type() == "decorated_definition" {
			if def := child.ChildByFieldName("definition"); def != nil {
				decl = def
			}
		}
		switch decl.Type() {
		case "function_definition":
			if sym := p.extractFunction(decl, content, insideClass); sym != nil {
				symbols = append(symbols, *sym)
			}
		case "class_definition":
			if sym := p.extractClass(decl, content); sym != nil {
				symbols = append(symbols, *sym)
			}
		}
	}
	return symbols
}

func (p *PythonParser) extractFunction(node *sitter.Node, content []byte, insideClass bool) *source.SymbolData {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}

	kind := source.SymbolFunction
	if insideClass {
		kind = source.SymbolMethod
	}
	sym := &source.SymbolData{
		Name:           nameNode.Content(content),
		Kind:           kind,
		Range:          nodeRange(node),
		SelectionRange: selectionRange(node, nameNode),
	}
	if body := node.ChildByFieldName("body"); body != nil {
		sym.Children = p.extractBlock(body, content, false)
		sym.Calls = p.extractCalls(body, content)
	}
	return sym
}

func (p *PythonParser) extractClass(node *sitter.Node, content []byte) *source.SymbolData {
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
		sym.Children = p.extractBlock(body, content, true)
	}
	return sym
}

func (p *PythonParser) extractCalls(body *sitter.Node, content []byte) []source.CallSite {
	calls := make([]source.CallSite, 0)
	p.collectCalls(body, content, &calls)
	return calls
}

func (p *PythonParser) collectCalls(node *sitter.Node, content []byte, calls *[]source.CallSite) {
	if node == nil {
		return
	}
	// nested definitions report their own calls
	if node.Type() == "function_definition" || node.Type() == "class_definition" {
		return
	}
	if node.Type() == "call" {
		if call := p.extractCallSite(node, content); call.Name != "" {
			*calls = append(*calls, call)
		}
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		p.collectCalls(node.Child(i), content, calls)
	}
}

func (p *PythonParser) extractCallSite(callNode *sitter.Node, content []byte) source.CallSite {
	name, qualifier := p.extractCallName(callNode.ChildByFieldName("function"), content)
	call := source.CallSite{
		Name:      name,
		Qualifier: qualifier,
		Line:      int(callNode.StartPoint().Row) + 1,
	}
	if qualifier == "self" || qualifier == "cls" {
		call.Receiver = qualifier
	}
	return call
}

func (p *PythonParser) extractCallName(node *sitter.Node, content []byte) (name, qualifier string) {
	if node == nil {
		return "", ""
	}
	switch node.Type() {
	case "identifier":
		return node.Content(content), ""
	case "attribute":
		object := node.ChildByFieldName("object")
		attr := node.ChildByFieldName("attribute")
		if attr != nil {
			qualifierValue := ""
			if object != nil {
				qualifierValue = object.Content(content)
			}
			return attr.Content(content), qualifierValue
		}
	case "parenthesized_expression":
		return p.extractCallName(node.ChildByFieldName("expression"), content)
	case "subscript":
		return p.extractCallName(node.ChildByFieldName("value"), content)
	}
	qualifierValue, nameValue := splitQualifiedName(node.Content(content))
	return nameValue, qualifierValue
}
