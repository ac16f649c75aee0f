package source

import (
	"fmt"
	"strings"
)

// SymbolKind represents the type of code symbol
type SymbolKind int

const (
	SymbolFunction SymbolKind = iota
	SymbolMethod
	SymbolClass
	SymbolStruct
	SymbolInterface
	SymbolModule
	SymbolConstant
	SymbolVariable
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolFunction:
		return "func"
	case SymbolMethod:
		return "method"
	case SymbolClass:
		return "class"
	case SymbolStruct:
		return "struct"
	case SymbolInterface:
		return "interface"
	case SymbolModule:
		return "module"
	case SymbolConstant:
		return "const"
	case SymbolVariable:
		return "var"
	default:
		return "unknown"
	}
}

// Position is a 1-based line/column position in a file.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Range spans from Start to End, both inclusive.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Contains reports whether other lies fully inside r.
func (r Range) Contains(other Range) bool {
	return !positionBefore(other.Start, r.Start) && !positionBefore(r.End, other.End)
}

// ContainsPosition reports whether p lies inside r.
func (r Range) ContainsPosition(p Position) bool {
	return !positionBefore(p, r.Start) && !positionBefore(r.End, p)
}

// LineCount returns the number of source lines the range spans.
func (r Range) LineCount() int {
	n := r.End.Line - r.Start.Line + 1
	if n < 0 {
		return 0
	}
	return n
}

func (r Range) String() string {
	return fmt.Sprintf("%d:%d-%d:%d", r.Start.Line, r.Start.Column, r.End.Line, r.End.Column)
}

func positionBefore(a, b Position) bool {
	if a.Line != b.Line {
		return a.Line < b.Line
	}
	return a.Column < b.Column
}

// ProjectLocation identifies the project to analyze.
type ProjectLocation struct {
	FolderPath      string
	CodeFileEndings []string
	LanguageID      string
}

// Folder is a parsed directory containing subfolders and code files.
type Folder struct {
	Name       string
	Subfolders []*Folder
	Files      []*File
}

// File is a parsed source file. Symbols and References are filled in by the
// symbol provider after the reader has loaded the lines.
type File struct {
	Name       string
	Path       string // relative to the project root, slash-separated
	Language   string
	Hash       string
	Lines      []string
	Symbols    []SymbolData
	References []Reference
}

// SymbolData is a symbol as reported by a symbol provider. Children are
// nested member symbols (methods of a type, inner functions, and so on).
type SymbolData struct {
	Name           string
	Kind           SymbolKind
	Range          Range
	SelectionRange Range
	Children       []SymbolData
	Calls          []CallSite
}

// CallSite captures a function/method invocation discovered inside a symbol body.
type CallSite struct {
	Name      string
	Qualifier string
	Receiver  string
	Line      int
}

// Reference records that something at SourceRange depends on the symbol
// found at TargetRange in TargetFilePath.
type Reference struct {
	SourceRange    Range
	TargetFilePath string
	TargetRange    Range
}

// CountFiles returns the total number of files under f, recursively.
func (f *Folder) CountFiles() int {
	n := len(f.Files)
	for _, sub := range f.Subfolders {
		n += sub.CountFiles()
	}
	return n
}

// EachFile calls fn for every file under f in folder-then-file order.
func (f *Folder) EachFile(fn func(*File)) {
	for _, sub := range f.Subfolders {
		sub.EachFile(fn)
	}
	for _, file := range f.Files {
		fn(file)
	}
}

// MatchesEnding reports whether name has one of the configured code file endings.
func MatchesEnding(name string, endings []string) bool {
	for _, ending := range endings {
		ending = strings.TrimSpace(ending)
		if ending == "" {
			continue
		}
		if !strings.HasPrefix(ending, ".") {
			ending = "." + ending
		}
		if strings.HasSuffix(name, ending) {
			return true
		}
	}
	return false
}
