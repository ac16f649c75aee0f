// Package languages extracts symbol trees from source files using
// tree-sitter grammars. Each language parser reports nested symbols with
// full and selection ranges plus the call sites found in symbol bodies.
package languages

import (
	"path/filepath"
	"strings"

	"github.com/archmap-dev/archmap/internal/source"
)

// LanguageParser defines the interface each language must implement
type LanguageParser interface {
	// Language returns the language name (e.g., "go", "python")
	Language() string

	// Extensions returns file extensions this parser handles
	Extensions() []string

	// Parse extracts the nested symbol tree from source code
	Parse(filename string, content []byte) ([]source.SymbolData, error)
}

// Registry holds all registered language parsers
type Registry struct {
	parsers   map[string]LanguageParser
	extToLang map[string]string
}

// NewRegistry creates a new parser registry
func NewRegistry() *Registry {
	return &Registry{
		parsers:   make(map[string]LanguageParser),
		extToLang: make(map[string]string),
	}
}

// NewDefaultRegistry creates a registry with all supported language parsers
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewGoParser())
	r.Register(NewPythonParser())
	r.Register(NewTypeScriptParser())
	return r
}

// Register adds a language parser to the registry
func (r *Registry) Register(p LanguageParser) {
	lang := p.Language()
	r.parsers[lang] = p
	for _, ext := range p.Extensions() {
		r.extToLang[ext] = lang
	}
}

// ParserForFile returns the appropriate parser for a file
func (r *Registry) ParserForFile(filename string) (LanguageParser, bool) {
	ext := strings.ToLower(filepath.Ext(filename))
	lang, ok := r.extToLang[ext]
	if !ok {
		return nil, false
	}
	parser, ok := r.parsers[lang]
	return parser, ok
}

// SupportedExtensions returns all supported file extensions
func (r *Registry) SupportedExtensions() []string {
	exts := make([]string, 0, len(r.extToLang))
	for ext := range r.extToLang {
		exts = append(exts, ext)
	}
	return exts
}
