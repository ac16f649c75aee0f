// Package lsp queries an external language-protocol server for symbol
// references. The server is a shared singleton guarded by serialized access;
// repeated failures mark it notWorking and the analysis continues with the
// partial data obtained so far.
package lsp

import (
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/archmap-dev/archmap/internal/source"
)

// ErrUnreachable is returned once the server has been marked notWorking.
var ErrUnreachable = errors.New("language server unreachable")

// maxConsecutiveFailures is how many queries may fail in a row before the
// server is marked notWorking.
const maxConsecutiveFailures = 3

// Location is one position reported by the server, with the path already
// normalized to the project-relative slash form the artifact tree uses.
type Location struct {
	Path string
	Pos  source.Position
}

// CommandRunner executes a language-server command and returns its output.
type CommandRunner func(dir string, name string, args ...string) (string, error)

// Client wraps one language-server command. Safe for concurrent use; queries
// are serialized.
type Client struct {
	rootPath string
	server   string
	runner   CommandRunner

	mu         sync.Mutex
	failures   int
	notWorking bool
}

// NewClient creates a client for the given project root and server command.
func NewClient(rootPath, server string) *Client {
	return NewClientWithRunner(rootPath, server, runCommand)
}

// NewClientWithRunner creates a client with an injected command runner.
func NewClientWithRunner(rootPath, server string, runner CommandRunner) *Client {
	return &Client{rootPath: rootPath, server: server, runner: runner}
}

// Connect verifies the server command exists on PATH.
func (c *Client) Connect() error {
	if strings.TrimSpace(c.server) == "" {
		c.markNotWorking()
		return fmt.Errorf("%w: no server configured", ErrUnreachable)
	}
	if _, err := exec.LookPath(c.server); err != nil {
		c.markNotWorking()
		return fmt.Errorf("%w: %s not found", ErrUnreachable, c.server)
	}
	return nil
}

// NotWorking reports whether the server has been given up on.
func (c *Client) NotWorking() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.notWorking
}

func (c *Client) markNotWorking() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notWorking = true
}

// References queries the server for all references to the symbol at the
// given position. path is project-relative.
func (c *Client) References(path string, pos source.Position) ([]Location, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.notWorking {
		return nil, ErrUnreachable
	}
	if pos.Line <= 0 {
		return nil, errors.New("line must be > 0")
	}
	if pos.Column <= 0 {
		pos.Column = 1
	}

	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(c.rootPath, path)
	}
	position := fmt.Sprintf("%s:%d:%d", abs, pos.Line, pos.Column)

	output, err := c.runner(c.rootPath, c.server, "references", position)
	if err != nil {
		c.failures++
		if c.failures >= maxConsecutiveFailures {
			c.notWorking = true
		}
		return nil, fmt.Errorf("lsp references query failed: %w", err)
	}
	c.failures = 0
	return c.parseLocations(output), nil
}

// parseLocations reads the server's line-oriented output. Each usable line
// names a position as path:line:column, optionally continued by a range
// tail; anything else is skipped. The result is deduplicated and sorted.
func (c *Client) parseLocations(output string) []Location {
	seen := make(map[Location]bool)
	locations := make([]Location, 0)
	for _, line := range strings.Split(output, "\n") {
		loc, ok := c.parseLocationLine(strings.TrimSpace(line))
		if !ok || seen[loc] {
			continue
		}
		seen[loc] = true
		locations = append(locations, loc)
	}
	sort.Slice(locations, func(i, j int) bool {
		if locations[i].Path != locations[j].Path {
			return locations[i].Path < locations[j].Path
		}
		if locations[i].Pos.Line != locations[j].Pos.Line {
			return locations[i].Pos.Line < locations[j].Pos.Line
		}
		return locations[i].Pos.Column < locations[j].Pos.Column
	})
	return locations
}

func (c *Client) parseLocationLine(line string) (Location, bool) {
	if line == "" {
		return Location{}, false
	}
	fields := strings.Split(line, ":")
	// find the first field pair that reads as line:column; everything
	// before it is the path, everything after is a range tail
	for i := 1; i+1 < len(fields); i++ {
		lineNo, err := strconv.Atoi(fields[i])
		if err != nil || lineNo <= 0 {
			continue
		}
		column, ok := leadingNumber(fields[i+1])
		if !ok {
			continue
		}
		if column <= 0 {
			column = 1
		}
		path := c.projectRelative(strings.Join(fields[:i], ":"))
		if path == "" {
			return Location{}, false
		}
		return Location{Path: path, Pos: source.Position{Line: lineNo, Column: column}}, true
	}
	return Location{}, false
}

// leadingNumber parses the integer prefix of a field like "7" or "7-12".
func leadingNumber(field string) (int, bool) {
	end := 0
	for end < len(field) && field[end] >= '0' && field[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	if end < len(field) && field[end] != '-' {
		return 0, false
	}
	n, err := strconv.Atoi(field[:end])
	return n, err == nil
}

// projectRelative rewrites a server-reported path into the slash-separated
// project-relative form used as artifact file paths. Paths outside the
// project root are returned as reported.
func (c *Client) projectRelative(path string) string {
	path = strings.TrimSpace(path)
	if path == "" || !filepath.IsAbs(path) {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(c.rootPath, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// runCommand is the production runner: it executes the server binary in the
// project root and hands back its standard output, surfacing stderr in the
// error on failure.
func runCommand(dir string, name string, args ...string) (string, error) {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	var stderr strings.Builder
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return "", fmt.Errorf("%w: %s", err, detail)
		}
		return "", err
	}
	return string(out), nil
}

// ServerForLanguage returns the preferred server command for a language id.
func ServerForLanguage(languageID string) (string, bool) {
	servers := map[string]string{
		"go":         "gopls",
		"python":     "pylsp",
		"typescript": "typescript-language-server",
	}
	server, ok := servers[strings.ToLower(strings.TrimSpace(languageID))]
	return server, ok
}
