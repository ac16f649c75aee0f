package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/archmap-dev/archmap/internal/fileutil"
)

// ErrProjectFolderMissing is returned when the project folder does not exist
// or is not a directory.
var ErrProjectFolderMissing = errors.New("project folder missing")

// ErrNoCodeFilesFound is returned when no file under the project folder
// matches the configured code file endings.
var ErrNoCodeFilesFound = errors.New("no code files found")

// IgnoreFile is the per-project exclusion file, gitignore-like.
const IgnoreFile = ".archmapignore"

const readConcurrency = 8

// Reader loads a project folder tree from disk.
type Reader struct{}

// NewReader creates a project reader.
func NewReader() *Reader {
	return &Reader{}
}

// Read walks the project folder, honors ignore rules, and loads the lines of
// every file matching the configured code file endings. The returned folder
// tree has subfolders and files sorted by name; empty directories are
// omitted.
func (r *Reader) Read(ctx context.Context, loc ProjectLocation) (*Folder, error) {
	rootPath := filepath.Clean(loc.FolderPath)
	info, err := os.Stat(rootPath)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrProjectFolderMissing, loc.FolderPath)
	}

	excluder := NewExcluder(loadIgnoreRules(rootPath))
	var paths []string
	err = filepath.WalkDir(rootPath, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		relPath, err := filepath.Rel(rootPath, path)
		if err != nil {
			return err
		}
		if relPath == "." {
			return nil
		}
		if excluder.Excluded(filepath.ToSlash(relPath), entry.IsDir()) {
			if entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if entry.IsDir() {
			return nil
		}
		if MatchesEnding(entry.Name(), loc.CodeFileEndings) {
			paths = append(paths, relPath)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: under %s", ErrNoCodeFilesFound, loc.FolderPath)
	}
	// compare segment by segment so a folder sorts by its own name, not by
	// whatever follows it in the full path ("a.b/x" vs "a/x")
	sort.Slice(paths, func(i, j int) bool {
		a := strings.Split(filepath.ToSlash(paths[i]), "/")
		b := strings.Split(filepath.ToSlash(paths[j]), "/")
		for k := 0; k < len(a) && k < len(b); k++ {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return len(a) < len(b)
	})

	files := make([]*File, len(paths))
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(readConcurrency)
	for i, relPath := range paths {
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			file, err := loadFile(rootPath, relPath)
			if err != nil {
				return err
			}
			files[i] = file
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	root := &Folder{Name: filepath.Base(rootPath)}
	for _, file := range files {
		insertFile(root, file)
	}
	return root, nil
}

func loadFile(rootPath, relPath string) (*File, error) {
	content, err := os.ReadFile(filepath.Join(rootPath, relPath))
	if err != nil {
		return nil, err
	}
	return &File{
		Name:  filepath.Base(relPath),
		Path:  filepath.ToSlash(relPath),
		Hash:  fileutil.HashBytes(content),
		Lines: SplitLines(string(content)),
	}, nil
}

// SplitLines splits file content into lines, dropping the empty remainder
// after a trailing newline.
func SplitLines(content string) []string {
	lines := strings.Split(content, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// insertFile places a file into the folder tree, creating intermediate
// folders as needed. Files arrive in sorted path order, which keeps both
// subfolder and file lists sorted.
func insertFile(root *Folder, file *File) {
	segments := strings.Split(file.Path, "/")
	cur := root
	for _, segment := range segments[:len(segments)-1] {
		cur = childFolder(cur, segment)
	}
	cur.Files = append(cur.Files, file)
}

func childFolder(parent *Folder, name string) *Folder {
	for _, sub := range parent.Subfolders {
		if sub.Name == name {
			return sub
		}
	}
	sub := &Folder{Name: name}
	parent.Subfolders = append(parent.Subfolders, sub)
	return sub
}

func loadIgnoreRules(rootPath string) []string {
	content, err := os.ReadFile(filepath.Join(rootPath, IgnoreFile))
	if err != nil {
		return nil
	}
	return strings.Split(string(content), "\n")
}
