package content

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrDuplicateID is returned when two files in a collection, such as
// x.md and x.mdx, resolve to the same entry ID.
var ErrDuplicateID = errors.New("duplicate entry id")

// FileStore reads entries from <Root>/<collection>/*.md and *.mdx.
type FileStore struct {
	Root string
}

// NewFileStore returns a FileStore rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{Root: dir}
}

// GetCollection implements Store. Entries are ordered by file name; a
// missing collection directory yields no entries.
func (s *FileStore) GetCollection(ctx context.Context, name Collection) ([]Entry, error) {
	if !name.Valid() {
		return nil, fmt.Errorf("content: unknown collection %q", name)
	}
	dir := filepath.Join(s.Root, string(name))
	files, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("content: read %s: %w", dir, err)
	}
	names := make([]string, 0, len(files))
	for _, f := range files {
		if f.IsDir() || !IsContentFile(f.Name()) {
			continue
		}
		names = append(names, f.Name())
	}
	sort.Strings(names)

	entries := make([]Entry, 0, len(names))
	seen := make(map[string]string, len(names))
	for _, n := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := filepath.Join(dir, n)
		id := strings.TrimSuffix(n, filepath.Ext(n))
		if prev, ok := seen[id]; ok {
			return nil, fmt.Errorf("content: %s and %s: %w %q", prev, n, ErrDuplicateID, id)
		}
		seen[id] = n
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("content: %w", err)
		}
		e, err := Parse(name, id, raw)
		if err != nil {
			return nil, fmt.Errorf("content: %s: %w", path, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// IsContentFile reports whether name is a markdown or MDX source file.
func IsContentFile(name string) bool {
	if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
		return false
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".mdx":
		return true
	}
	return false
}
