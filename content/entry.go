// Package content models the blog and til collections and the stores that
// serve them: plain files on disk, a SQLite index, and in-memory snapshots.
package content

import (
	"context"
	"sort"
	"time"
)

// Collection names a set of entries.
type Collection string

const (
	Blog Collection = "blog"
	TIL  Collection = "til"
)

// Collections lists every collection in the order aggregation reads them.
var Collections = []Collection{Blog, TIL}

// Valid reports whether c is a known collection.
func (c Collection) Valid() bool {
	return c == Blog || c == TIL
}

// DefaultAuthor is used when a blog entry does not name one.
const DefaultAuthor = "Chris Meng"

// Data is the front matter of an entry after normalization.
type Data struct {
	Title       string
	Description string
	PubDate     time.Time
	UpdatedDate *time.Time
	Author      string
	Tags        []string // nil when absent or malformed
	Category    string   // til only
	Draft       bool
	Featured    bool
	HeroImage   string
}

// Entry is one content item within a collection.
type Entry struct {
	ID         string
	Collection Collection
	Data       Data
	Body       string
}

// URL returns the site-relative path of the entry.
func (e Entry) URL() string {
	return "/" + string(e.Collection) + "/" + e.ID + "/"
}

// Store returns the ordered entries of a collection.
type Store interface {
	GetCollection(ctx context.Context, name Collection) ([]Entry, error)
}

// MemoryStore serves fixed entries. Unknown collections are empty.
type MemoryStore map[Collection][]Entry

// GetCollection implements Store.
func (m MemoryStore) GetCollection(_ context.Context, name Collection) ([]Entry, error) {
	return m[name], nil
}

// Visible drops drafts unless includeDrafts is set.
func Visible(entries []Entry, includeDrafts bool) []Entry {
	if includeDrafts {
		return entries
	}
	var out []Entry
	for _, e := range entries {
		if !e.Data.Draft {
			out = append(out, e)
		}
	}
	return out
}

// SortNewest orders entries by publication date descending, then by ID.
func SortNewest(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].Data.PubDate, entries[j].Data.PubDate
		if !a.Equal(b) {
			return a.After(b)
		}
		return entries[i].ID < entries[j].ID
	})
}
