package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mengkeat/blog/tags"
)

type fixture struct {
	dir    string
	config string
}

func newFixture(t *testing.T, useIndex bool) fixture {
	t.Helper()
	dir := t.TempDir()
	write := func(rel, body string) {
		p := filepath.Join(dir, "content", rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}
	write("blog/first.md", "---\ntitle: First\ndescription: d\npubDate: 2024-01-01\ntags: [go, systems]\n---\n")
	write("til/shell.md", "---\ntitle: Shell\ndescription: d\npubDate: 2024-02-01\ncategory: cli\ntags: [go, \"C++\"]\n---\n")

	cfg := "content_dir: " + filepath.Join(dir, "content") + "\nindex_path: " + filepath.Join(dir, "data", "content.db") + "\n"
	if useIndex {
		cfg += "use_index: true\n"
	}
	config := filepath.Join(dir, "site.yaml")
	require.NoError(t, os.WriteFile(config, []byte(cfg), 0o644))
	return fixture{dir: dir, config: config}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTagsJSON(t *testing.T) {
	f := newFixture(t, false)
	out, err := run(t, "--config", f.config, "tags", "--json")
	require.NoError(t, err)

	var got []tags.Info
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, []tags.Info{
		{Tag: "go", Count: 2, Slug: "go"},
		{Tag: "C++", Count: 1, Slug: "c"},
		{Tag: "systems", Count: 1, Slug: "systems"},
	}, got)
}

func TestTagsTable(t *testing.T) {
	f := newFixture(t, false)
	out, err := run(t, "--config", f.config, "tags")
	require.NoError(t, err)
	assert.Contains(t, out, "| go | 2 | /tags/go/ |")
	assert.Contains(t, out, "| C++ | 1 | /tags/c/ |")
}

func TestTagsTableEscapesPipes(t *testing.T) {
	got := tagTable([]tags.Info{{Tag: "a|b", Count: 1, Slug: "ab"}})
	assert.Contains(t, got, `| a\|b | 1 | /tags/ab/ |`)
}

func TestIndexThenTagsFromIndex(t *testing.T) {
	f := newFixture(t, true)
	out, err := run(t, "--config", f.config, "index")
	require.NoError(t, err)
	assert.Contains(t, out, "2 upserted, 0 deleted")

	require.NoError(t, os.Remove(filepath.Join(f.dir, "content", "til", "shell.md")))
	out, err = run(t, "--config", f.config, "tags", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"C++"`, "index is read until it is synced again")

	out, err = run(t, "--config", f.config, "index")
	require.NoError(t, err)
	assert.Contains(t, out, "1 upserted, 1 deleted")
}

func TestNewEntry(t *testing.T) {
	f := newFixture(t, false)
	out, err := run(t, "--config", f.config, "new", "til", "Using", "xargs", "--category", "shell", "--tags", "cli,unix")
	require.NoError(t, err)
	path := filepath.Join(f.dir, "content", "til", "using-xargs.md")
	assert.Contains(t, out, "created "+path)
	assert.FileExists(t, path)

	out, err = run(t, "--config", f.config, "tags", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"unix"`)
}

func TestNewRejectsUnknownCollection(t *testing.T) {
	f := newFixture(t, false)
	_, err := run(t, "--config", f.config, "new", "notes", "Title")
	assert.ErrorContains(t, err, "unknown collection")
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "blog dev\n", out)
}
