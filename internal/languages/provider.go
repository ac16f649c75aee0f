package languages

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/archmap-dev/archmap/internal/source"
)

const parseCacheSize = 4096

// Provider retrieves symbols by parsing files with tree-sitter and derives
// references by scoped name resolution. Parses are cached by content hash so
// repeated runs in one process skip unchanged files.
type Provider struct {
	registry *Registry
	cache    *lru.Cache[string, []source.SymbolData]
	log      *slog.Logger
}

// NewProvider creates a tree-sitter backed symbol provider.
func NewProvider(registry *Registry, logger *slog.Logger) (*Provider, error) {
	if registry == nil {
		registry = NewDefaultRegistry()
	}
	if logger == nil {
		logger = slog.Default()
	}
	cache, err := lru.New[string, []source.SymbolData](parseCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create parse cache: %w", err)
	}
	return &Provider{registry: registry, cache: cache, log: logger}, nil
}

// Connect implements the pipeline provider interface; tree-sitter needs no
// external server.
func (p *Provider) Connect(ctx context.Context, loc source.ProjectLocation) error {
	return ctx.Err()
}

// RetrieveSymbols parses every file of the project and fills in its symbol
// tree. Files without a registered parser keep an empty symbol list. Parsing
// fans out across cores; this is pure I/O-free CPU work on already-loaded
// content and each file is independent.
func (p *Provider) RetrieveSymbols(ctx context.Context, project *source.Folder) error {
	var files []*source.File
	project.EachFile(func(f *source.File) {
		files = append(files, f)
	})

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(runtime.NumCPU())
	for _, file := range files {
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			p.parseFile(file)
			return nil
		})
	}
	return group.Wait()
}

func (p *Provider) parseFile(file *source.File) {
	parser, ok := p.registry.ParserForFile(file.Name)
	if !ok {
		return
	}
	file.Language = parser.Language()

	if file.Hash != "" {
		if cached, ok := p.cache.Get(cacheKey(file)); ok {
			file.Symbols = cached
			return
		}
	}

	content := []byte(joinLines(file.Lines))
	symbols, err := parser.Parse(file.Name, content)
	if err != nil {
		p.log.Warn("parse failed", "stage", "retrieveSymbols", "file", file.Path, "cause", err)
		return
	}
	file.Symbols = symbols
	if file.Hash != "" {
		p.cache.Add(cacheKey(file), symbols)
	}
}

// RetrieveReferences derives references from the call sites collected during
// parsing, resolving names across the whole project.
func (p *Provider) RetrieveReferences(ctx context.Context, project *source.Folder) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	source.ResolveReferences(project)
	return nil
}

func cacheKey(file *source.File) string {
	return file.Language + "|" + file.Hash
}

func joinLines(lines []string) string {
	return strings.Join(lines, "\n")
}
