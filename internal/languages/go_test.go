package languages

import (
	"testing"

	"github.com/archmap-dev/archmap/internal/source"
)

func findSymbol(symbols []source.SymbolData, name string) *source.SymbolData {
	for i := range symbols {
		if symbols[i].Name == name {
			return &symbols[i]
		}
	}
	return nil
}

func TestGoParserNestsMethodsUnderTypes(t *testing.T) {
	code := `package demo

type Server struct {
	addr string
}

func (s *Server) Start() error {
	return s.listen()
}

func (s *Server) listen() error {
	return nil
}

func NewServer() *Server {
	return &Server{}
}
`
	symbols, err := NewGoParser().Parse("server.go", []byte(code))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	server := findSymbol(symbols, "Server")
	if server == nil {
		t.Fatalf("expected Server type, got %#v", symbols)
	}
	if server.Kind != source.SymbolStruct {
		t.Fatalf("expected struct kind, got %v", server.Kind)
	}
	if len(server.Children) != 2 {
		t.Fatalf("expected 2 methods under Server, got %#v", server.Children)
	}
	start := findSymbol(server.Children, "Start")
	if start == nil || start.Kind != source.SymbolMethod {
		t.Fatalf("expected Start method, got %#v", server.Children)
	}
	if !server.Range.Contains(start.Range) {
		t.Fatalf("type range %v must cover method range %v", server.Range, start.Range)
	}

	if findSymbol(symbols, "NewServer") == nil {
		t.Fatal("expected top-level NewServer function")
	}
}

func TestGoParserCapturesCalls(t *testing.T) {
	code := `package demo

func helper() {}

func run() {
	helper()
	other.Do()
}
`
	symbols, err := NewGoParser().Parse("main.go", []byte(code))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	run := findSymbol(symbols, "run")
	if run == nil {
		t.Fatalf("expected run function, got %#v", symbols)
	}
	if len(run.Calls) != 2 {
		t.Fatalf("expected 2 calls, got %#v", run.Calls)
	}
	if run.Calls[0].Name != "helper" || run.Calls[0].Qualifier != "" {
		t.Fatalf("unexpected first call: %#v", run.Calls[0])
	}
	if run.Calls[1].Name != "Do" || run.Calls[1].Qualifier != "other" {
		t.Fatalf("unexpected second call: %#v", run.Calls[1])
	}
}

func TestGoParserRangesAreOneBased(t *testing.T) {
	code := "package demo\n\nfunc f() {}\n"
	symbols, err := NewGoParser().Parse("f.go", []byte(code))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	f := findSymbol(symbols, "f")
	if f == nil {
		t.Fatalf("expected f, got %#v", symbols)
	}
	if f.Range.Start.Line != 3 {
		t.Fatalf("expected declaration on line 3, got %d", f.Range.Start.Line)
	}
	if f.SelectionRange.Start.Line != 3 || f.SelectionRange.Start.Column != 6 {
		t.Fatalf("expected selection at name token, got %#v", f.SelectionRange)
	}
}
