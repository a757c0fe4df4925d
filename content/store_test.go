package content

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func frontMatter(title, date string, extra string) string {
	return "---\ntitle: " + title + "\ndescription: about " + title + "\npubDate: " + date + "\n" + extra + "---\nbody\n"
}

func setupContentDir(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "blog", "b-second.md"), frontMatter("Second", "2024-02-01", "tags: [go]\n"))
	writeFile(t, filepath.Join(root, "blog", "a-first.mdx"), frontMatter("First", "2024-01-01", "tags: [go, systems]\n"))
	writeFile(t, filepath.Join(root, "blog", "notes.txt"), "ignored")
	writeFile(t, filepath.Join(root, "blog", "_draft.md"), "ignored")
	writeFile(t, filepath.Join(root, "til", "shell.md"), frontMatter("Shell", "2024-03-01", "category: cli\ntags: [go, notes]\n"))
	return root
}

func setupIndex(t *testing.T) *IndexStore {
	t.Helper()
	s, err := OpenIndex(filepath.Join(t.TempDir(), "data", "content.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func ids(entries []Entry) []string {
	var out []string
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}

func TestFileStoreGetCollection(t *testing.T) {
	fs := NewFileStore(setupContentDir(t))
	ctx := context.Background()

	blog, err := fs.GetCollection(ctx, Blog)
	require.NoError(t, err)
	assert.Equal(t, []string{"a-first", "b-second"}, ids(blog))
	assert.Equal(t, []string{"go", "systems"}, blog[0].Data.Tags)

	til, err := fs.GetCollection(ctx, TIL)
	require.NoError(t, err)
	require.Len(t, til, 1)
	assert.Equal(t, TIL, til[0].Collection)
	assert.Equal(t, "cli", til[0].Data.Category)
}

func TestFileStoreMissingDirectory(t *testing.T) {
	fs := NewFileStore(t.TempDir())
	entries, err := fs.GetCollection(context.Background(), TIL)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFileStoreUnknownCollection(t *testing.T) {
	fs := NewFileStore(t.TempDir())
	_, err := fs.GetCollection(context.Background(), Collection("pages"))
	assert.Error(t, err)
}

func TestFileStoreMalformedFile(t *testing.T) {
	root := setupContentDir(t)
	writeFile(t, filepath.Join(root, "til", "broken.md"), "---\ntitle: [unterminated\n---\n")
	_, err := NewFileStore(root).GetCollection(context.Background(), TIL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.md")
}

func TestFileStoreDuplicateID(t *testing.T) {
	root := setupContentDir(t)
	writeFile(t, filepath.Join(root, "blog", "a-first.md"), frontMatter("Again", "2024-04-01", "tags: [go]\n"))

	_, err := NewFileStore(root).GetCollection(context.Background(), Blog)
	require.ErrorIs(t, err, ErrDuplicateID)
	assert.Contains(t, err.Error(), "a-first.md")
	assert.Contains(t, err.Error(), "a-first.mdx")
}

func TestIndexSyncRejectsDuplicateID(t *testing.T) {
	root := setupContentDir(t)
	s := setupIndex(t)
	ctx := context.Background()
	_, err := s.Sync(ctx, NewFileStore(root))
	require.NoError(t, err)

	writeFile(t, filepath.Join(root, "blog", "a-first.md"), frontMatter("Again", "2024-04-01", "tags: [go]\n"))
	_, err = s.Sync(ctx, NewFileStore(root))
	require.ErrorIs(t, err, ErrDuplicateID)

	blog, err := s.GetCollection(ctx, Blog)
	require.NoError(t, err)
	assert.Equal(t, []string{"a-first", "b-second"}, ids(blog))
	assert.Equal(t, "First", blog[0].Data.Title)
}

func TestIndexSaveAndGetEntry(t *testing.T) {
	s := setupIndex(t)
	ctx := context.Background()
	updated := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)
	e := Entry{
		ID:         "commas",
		Collection: Blog,
		Body:       "hello",
		Data: Data{
			Title:       "Commas",
			Description: "d",
			PubDate:     time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
			UpdatedDate: &updated,
			Author:      "someone",
			Tags:        []string{"Go", "a, b", " spaced "},
			Draft:       true,
			HeroImage:   "/hero.png",
		},
	}
	require.NoError(t, s.SaveEntry(ctx, e))

	got, err := s.GetEntry(ctx, Blog, "commas")
	require.NoError(t, err)
	assert.Equal(t, e, got)
}

func TestIndexGetEntryNotFound(t *testing.T) {
	s := setupIndex(t)
	_, err := s.GetEntry(context.Background(), Blog, "nope")
	assert.True(t, IsNotFound(err))
}

func TestIndexDeleteEntry(t *testing.T) {
	s := setupIndex(t)
	ctx := context.Background()
	e := Entry{ID: "gone", Collection: TIL, Data: Data{Title: "t", Description: "d", Category: "c"}}
	require.NoError(t, s.SaveEntry(ctx, e))
	require.NoError(t, s.DeleteEntry(ctx, TIL, "gone"))
	entries, err := s.GetCollection(ctx, TIL)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestIndexSync(t *testing.T) {
	root := setupContentDir(t)
	s := setupIndex(t)
	ctx := context.Background()

	stats, err := s.Sync(ctx, NewFileStore(root))
	require.NoError(t, err)
	assert.Equal(t, SyncStats{Upserted: 3}, stats)

	blog, err := s.GetCollection(ctx, Blog)
	require.NoError(t, err)
	assert.Equal(t, []string{"a-first", "b-second"}, ids(blog))

	require.NoError(t, os.Remove(filepath.Join(root, "blog", "b-second.md")))
	stats, err = s.Sync(ctx, NewFileStore(root))
	require.NoError(t, err)
	assert.Equal(t, SyncStats{Upserted: 2, Deleted: 1}, stats)

	blog, err = s.GetCollection(ctx, Blog)
	require.NoError(t, err)
	assert.Equal(t, []string{"a-first"}, ids(blog))
}

func TestIndexSyncKeepsIndexOnSourceError(t *testing.T) {
	root := setupContentDir(t)
	s := setupIndex(t)
	ctx := context.Background()
	_, err := s.Sync(ctx, NewFileStore(root))
	require.NoError(t, err)

	writeFile(t, filepath.Join(root, "til", "broken.md"), "no front matter")
	_, err = s.Sync(ctx, NewFileStore(root))
	require.Error(t, err)

	til, err := s.GetCollection(ctx, TIL)
	require.NoError(t, err)
	assert.Equal(t, []string{"shell"}, ids(til))
}

func TestIndexMatchesFileStore(t *testing.T) {
	root := setupContentDir(t)
	fs := NewFileStore(root)
	s := setupIndex(t)
	ctx := context.Background()
	_, err := s.Sync(ctx, fs)
	require.NoError(t, err)

	for _, col := range Collections {
		want, err := fs.GetCollection(ctx, col)
		require.NoError(t, err)
		got, err := s.GetCollection(ctx, col)
		require.NoError(t, err)
		assert.Equal(t, want, got, "collection %s", col)
	}
}

func TestVisibleAndSortNewest(t *testing.T) {
	entries := []Entry{
		{ID: "old", Data: Data{PubDate: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)}},
		{ID: "draft", Data: Data{PubDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), Draft: true}},
		{ID: "new", Data: Data{PubDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}},
	}
	visible := Visible(entries, false)
	SortNewest(visible)
	assert.Equal(t, []string{"new", "old"}, ids(visible))

	all := append([]Entry(nil), Visible(entries, true)...)
	SortNewest(all)
	assert.Equal(t, []string{"draft", "new", "old"}, ids(all))
}
