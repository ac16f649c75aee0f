package lsp

import (
	"context"
	"errors"
	"log/slog"

	"github.com/archmap-dev/archmap/internal/source"
)

// SymbolRetriever supplies the symbol trees the reference queries are
// anchored on, and the fallback reference resolution when the server is
// down. The tree-sitter provider satisfies this.
type SymbolRetriever interface {
	Connect(ctx context.Context, loc source.ProjectLocation) error
	RetrieveSymbols(ctx context.Context, project *source.Folder) error
	RetrieveReferences(ctx context.Context, project *source.Folder) error
}

// Provider augments a symbol retriever with server-verified references: for
// every symbol it asks the language server who references it and records an
// edge from each referencing location. When the server degrades to
// notWorking mid-run, reference retrieval for the whole project falls back
// to the inner provider.
type Provider struct {
	inner  SymbolRetriever
	client *Client
	log    *slog.Logger
}

// NewProvider wraps inner with language-server reference retrieval.
func NewProvider(inner SymbolRetriever, client *Client, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{inner: inner, client: client, log: logger}
}

func (p *Provider) Connect(ctx context.Context, loc source.ProjectLocation) error {
	if err := p.inner.Connect(ctx, loc); err != nil {
		return err
	}
	if err := p.client.Connect(); err != nil {
		p.log.Warn("language server unavailable, falling back to name resolution",
			"stage", "connectServer", "cause", err)
		return err
	}
	return nil
}

func (p *Provider) RetrieveSymbols(ctx context.Context, project *source.Folder) error {
	return p.inner.RetrieveSymbols(ctx, project)
}

// RetrieveReferences queries the server for each symbol's referencing
// locations. The declaration's own location is skipped. If the server is or
// becomes notWorking, reference resolution falls back to the inner provider
// for the whole project.
func (p *Provider) RetrieveReferences(ctx context.Context, project *source.Folder) error {
	if p.client.NotWorking() {
		return p.inner.RetrieveReferences(ctx, project)
	}

	byPath := make(map[string]*source.File)
	project.EachFile(func(f *source.File) {
		byPath[f.Path] = f
	})

	queryErr := error(nil)
	project.EachFile(func(f *source.File) {
		if queryErr != nil {
			return
		}
		for i := range f.Symbols {
			if err := p.querySymbol(ctx, byPath, f, &f.Symbols[i]); err != nil {
				queryErr = err
				return
			}
		}
	})
	if queryErr != nil {
		if errors.Is(queryErr, ErrUnreachable) {
			p.log.Warn("language server gave up, falling back to name resolution",
				"stage", "retrieveReferences", "cause", queryErr)
			return p.inner.RetrieveReferences(ctx, project)
		}
		return queryErr
	}

	project.EachFile(func(f *source.File) {
		source.SortReferences(f.References)
	})
	return nil
}

func (p *Provider) querySymbol(ctx context.Context, byPath map[string]*source.File, file *source.File, sym *source.SymbolData) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	sel := sym.SelectionRange.Start
	locations, err := p.client.References(file.Path, sel)
	if err != nil {
		if errors.Is(err, ErrUnreachable) {
			return err
		}
		// one failed query is non-fatal; the client counts it
		p.log.Debug("reference query failed", "stage", "retrieveReferences",
			"file", file.Path, "symbol", sym.Name, "cause", err)
	}
	for _, loc := range locations {
		if loc.Path == file.Path && loc.Pos.Line == sel.Line {
			continue // the declaration itself
		}
		origin, ok := byPath[loc.Path]
		if !ok {
			continue // outside the analyzed project
		}
		origin.References = append(origin.References, source.Reference{
			SourceRange:    source.Range{Start: loc.Pos, End: loc.Pos},
			TargetFilePath: file.Path,
			TargetRange:    sym.SelectionRange,
		})
	}

	for i := range sym.Children {
		if err := p.querySymbol(ctx, byPath, file, &sym.Children[i]); err != nil {
			return err
		}
	}
	return nil
}
