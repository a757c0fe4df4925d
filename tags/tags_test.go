package tags

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mengkeat/blog/content"
)

func entry(id string, tags ...string) content.Entry {
	return content.Entry{ID: id, Data: content.Data{Title: id, Tags: tags}}
}

// failingStore fails for the collections in errs and serves the rest.
type failingStore struct {
	content.MemoryStore
	errs map[content.Collection]error
}

func (s failingStore) GetCollection(ctx context.Context, name content.Collection) ([]content.Entry, error) {
	if err := s.errs[name]; err != nil {
		return nil, err
	}
	return s.MemoryStore.GetCollection(ctx, name)
}

func TestCollectCounts(t *testing.T) {
	store := content.MemoryStore{
		content.Blog: {entry("a", "go", "systems"), entry("b", "go")},
		content.TIL:  {entry("c", "go", "notes")},
	}
	got, err := Collect(context.Background(), store)
	require.NoError(t, err)

	want := []Info{
		{Tag: "go", Count: 3, Slug: "go"},
		{Tag: "notes", Count: 1, Slug: "notes"},
		{Tag: "systems", Count: 1, Slug: "systems"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Collect() mismatch (-want +got):\n%s", diff)
	}
}

func TestCollectIdempotent(t *testing.T) {
	store := content.MemoryStore{
		content.Blog: {entry("a", "x", "y", "z"), entry("b", "y")},
		content.TIL:  {entry("c", "z", "w"), entry("d", "Z")},
	}
	first, err := Collect(context.Background(), store)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Collect(context.Background(), store)
		require.NoError(t, err)
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("Collect() not idempotent (-first +again):\n%s", diff)
		}
	}
}

func TestCollectDiscardsBlankTags(t *testing.T) {
	store := content.MemoryStore{
		content.Blog: {entry("a", "", "  ", "valid")},
	}
	got, err := Collect(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, []Info{{Tag: "valid", Count: 1, Slug: "valid"}}, got)
}

func TestCollectMissingTags(t *testing.T) {
	store := content.MemoryStore{
		content.Blog: {{ID: "untagged", Data: content.Data{Title: "No tags"}}},
		content.TIL:  {entry("c", "notes")},
	}
	got, err := Collect(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, []Info{{Tag: "notes", Count: 1, Slug: "notes"}}, got)
}

func TestCollectEmptyStore(t *testing.T) {
	got, err := Collect(context.Background(), content.MemoryStore{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCollectTrimsTags(t *testing.T) {
	store := content.MemoryStore{
		content.Blog: {entry("a", "  go "), entry("b", "go")},
	}
	got, err := Collect(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, []Info{{Tag: "go", Count: 2, Slug: "go"}}, got)
}

func TestCollectTrimsJavaScriptWhitespace(t *testing.T) {
	// BOM and NBSP are trimmed; NEL is not whitespace and stays a tag.
	store := content.MemoryStore{
		content.Blog: {entry("a", "\ufeffgo"), entry("b", "go\u00a0"), entry("c", "\u0085")},
	}
	got, err := Collect(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, []Info{
		{Tag: "go", Count: 2, Slug: "go"},
		{Tag: "\u0085", Count: 1, Slug: ""},
	}, got)

	tagged := Tagged(store[content.Blog], "go")
	require.Len(t, tagged, 2)
	assert.Equal(t, "a", tagged[0].ID)
	assert.Equal(t, "b", tagged[1].ID)
}

func TestCollectCountsDuplicatesWithinEntry(t *testing.T) {
	store := content.MemoryStore{
		content.TIL: {entry("a", "go", "go")},
	}
	got, err := Collect(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, []Info{{Tag: "go", Count: 2, Slug: "go"}}, got)
}

func TestCollectIsCaseSensitive(t *testing.T) {
	store := content.MemoryStore{
		content.Blog: {entry("a", "Go"), entry("b", "go"), entry("c", "go")},
	}
	got, err := Collect(context.Background(), store)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, Info{Tag: "go", Count: 2, Slug: "go"}, got[0])
	assert.Equal(t, Info{Tag: "Go", Count: 1, Slug: "go"}, got[1])
}

func TestCollectSortOrder(t *testing.T) {
	store := content.MemoryStore{
		content.Blog: {entry("1", "b", "a", "c"), entry("2", "b", "a", "c")},
		content.TIL:  {entry("3", "c")},
	}
	got, err := Collect(context.Background(), store)
	require.NoError(t, err)

	var order []string
	for _, info := range got {
		order = append(order, info.Tag)
	}
	assert.Equal(t, []string{"c", "a", "b"}, order)
}

func TestCollectPropagatesStoreError(t *testing.T) {
	boom := errors.New("malformed content file")
	store := failingStore{
		MemoryStore: content.MemoryStore{content.Blog: {entry("a", "go")}},
		errs:        map[content.Collection]error{content.TIL: boom},
	}
	got, err := Collect(context.Background(), store)
	assert.Same(t, boom, err)
	assert.Nil(t, got)
}

func TestCollectReportsBlogErrorFirst(t *testing.T) {
	blogErr := errors.New("blog failed")
	tilErr := errors.New("til failed")
	store := failingStore{
		errs: map[content.Collection]error{content.Blog: blogErr, content.TIL: tilErr},
	}
	for i := 0; i < 10; i++ {
		_, err := Collect(context.Background(), store)
		assert.Same(t, blogErr, err)
	}
}

func TestSortUsesCollation(t *testing.T) {
	infos := []Info{
		{Tag: "Banana", Count: 1},
		{Tag: "apple", Count: 1},
		{Tag: "cherry", Count: 4},
	}
	Sort(infos)
	assert.Equal(t, "cherry", infos[0].Tag)
	// byte order would put "Banana" first
	assert.Equal(t, "apple", infos[1].Tag)
	assert.Equal(t, "Banana", infos[2].Tag)
}

func TestTagged(t *testing.T) {
	entries := []content.Entry{
		entry("a", "go", "web"),
		entry("b", " go "),
		entry("c", "Go"),
		entry("d", "rust"),
	}
	got := Tagged(entries, "go")
	var ids []string
	for _, e := range got {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"a", "b"}, ids)
	assert.Empty(t, Tagged(entries, "zig"))
}

func TestLookup(t *testing.T) {
	infos := Count([]content.Entry{
		entry("a", "go"), entry("b", "go"), entry("c", "Go"), entry("d", "C++"),
	})

	info, ok := Lookup(infos, "go")
	require.True(t, ok)
	assert.Equal(t, "go", info.Tag, "highest ranked tag wins a slug collision")

	info, ok = Lookup(infos, "c")
	require.True(t, ok)
	assert.Equal(t, "C++", info.Tag)

	_, ok = Lookup(infos, "missing")
	assert.False(t, ok)
}
