package source

import (
	"path"
	"sort"
	"strings"
)

// target locates a resolvable symbol declaration.
type target struct {
	file      string
	selection Range
}

// lookups index symbol declarations by name with file and module scope so
// call sites resolve to the nearest unambiguous declaration.
type lookups struct {
	global        map[string][]target
	byFile        map[string]map[string][]target
	byFileMethods map[string]map[string][]target
	byModule      map[string]map[string][]target
}

// ResolveReferences derives Reference records from the call sites collected
// during parsing. Resolution prefers declarations in the same file, then the
// same module (top-level directory), then the whole project, and only
// accepts a unique match; ambiguous or unknown names resolve to nothing and
// produce no reference. The result is a pure function of the parsed input.
func ResolveReferences(project *Folder) {
	idx := buildLookups(project)
	project.EachFile(func(file *File) {
		file.References = file.References[:0]
		for i := range file.Symbols {
			collectReferences(idx, file, &file.Symbols[i])
		}
		SortReferences(file.References)
	})
}

func collectReferences(idx *lookups, file *File, sym *SymbolData) {
	for _, call := range sym.Calls {
		if hit, ok := idx.resolve(file.Path, sym, call); ok {
			file.References = append(file.References, Reference{
				SourceRange: Range{
					Start: Position{Line: call.Line, Column: 1},
					End:   Position{Line: call.Line, Column: 1},
				},
				TargetFilePath: hit.file,
				TargetRange:    hit.selection,
			})
		}
	}
	for i := range sym.Children {
		collectReferences(idx, file, &sym.Children[i])
	}
}

func buildLookups(project *Folder) *lookups {
	idx := &lookups{
		global:        make(map[string][]target),
		byFile:        make(map[string]map[string][]target),
		byFileMethods: make(map[string]map[string][]target),
		byModule:      make(map[string]map[string][]target),
	}
	project.EachFile(func(file *File) {
		module := moduleName(file.Path)
		if idx.byFile[file.Path] == nil {
			idx.byFile[file.Path] = make(map[string][]target)
		}
		if idx.byFileMethods[file.Path] == nil {
			idx.byFileMethods[file.Path] = make(map[string][]target)
		}
		if idx.byModule[module] == nil {
			idx.byModule[module] = make(map[string][]target)
		}
		for i := range file.Symbols {
			indexSymbol(idx, file.Path, module, &file.Symbols[i])
		}
	})
	return idx
}

func indexSymbol(idx *lookups, filePath, module string, sym *SymbolData) {
	hit := target{file: filePath, selection: sym.SelectionRange}
	idx.global[sym.Name] = append(idx.global[sym.Name], hit)
	idx.byFile[filePath][sym.Name] = append(idx.byFile[filePath][sym.Name], hit)
	idx.byModule[module][sym.Name] = append(idx.byModule[module][sym.Name], hit)
	if sym.Kind == SymbolMethod {
		idx.byFileMethods[filePath][sym.Name] = append(idx.byFileMethods[filePath][sym.Name], hit)
	}
	for i := range sym.Children {
		indexSymbol(idx, filePath, module, &sym.Children[i])
	}
}

func (idx *lookups) resolve(sourceFile string, sym *SymbolData, call CallSite) (target, bool) {
	callName := strings.TrimSpace(call.Name)
	if callName == "" {
		return target{}, false
	}

	if callIsReceiverScoped(call) {
		if hit, ok := unique(idx.byFileMethods[sourceFile][callName]); ok {
			return hit, true
		}
		if sym.Kind == SymbolMethod {
			if hit, ok := unique(idx.byFile[sourceFile][callName]); ok {
				return hit, true
			}
		}
	}

	if byName := idx.byFile[sourceFile]; byName != nil {
		if hit, ok := unique(byName[callName]); ok {
			return hit, true
		}
	}

	// a qualified call that did not resolve in-file points at another
	// package; module and global lookup still apply for the bare name
	if byName := idx.byModule[moduleName(sourceFile)]; byName != nil {
		if hit, ok := unique(byName[callName]); ok {
			return hit, true
		}
	}
	return unique(idx.global[callName])
}

// unique returns the single distinct target, or false when the name is
// ambiguous or unknown.
func unique(hits []target) (target, bool) {
	if len(hits) == 0 {
		return target{}, false
	}
	distinct := make([]target, 0, len(hits))
	seen := make(map[string]bool, len(hits))
	for _, hit := range hits {
		key := hit.file + "|" + hit.selection.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		distinct = append(distinct, hit)
	}
	if len(distinct) != 1 {
		return target{}, false
	}
	return distinct[0], true
}

func callIsReceiverScoped(call CallSite) bool {
	switch strings.TrimSpace(call.Receiver) {
	case "self", "this", "cls":
		return true
	}
	switch strings.TrimSpace(call.Qualifier) {
	case "self", "this", "cls":
		return true
	}
	return false
}

func moduleName(file string) string {
	dir := path.Dir(file)
	if dir == "." {
		return "root"
	}
	parts := strings.Split(dir, "/")
	return parts[0]
}

// SortReferences orders a file's references deterministically.
func SortReferences(refs []Reference) {
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].SourceRange.Start.Line != refs[j].SourceRange.Start.Line {
			return refs[i].SourceRange.Start.Line < refs[j].SourceRange.Start.Line
		}
		if refs[i].TargetFilePath != refs[j].TargetFilePath {
			return refs[i].TargetFilePath < refs[j].TargetFilePath
		}
		return refs[i].TargetRange.Start.Line < refs[j].TargetRange.Start.Line
	})
}
