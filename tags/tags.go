// Package tags aggregates tag frequencies across the blog and til
// collections and derives the slugs used for tag page URLs.
package tags

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/mengkeat/blog/content"
)

// Info is one aggregated tag.
type Info struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
	Slug  string `json:"slug"`
}

// Collect counts tags across every collection in content.Collections and
// returns them ranked by count, then by tag.
//
// The collections are fetched concurrently but merged in collection order.
// A store error is returned as is; if several fetches fail, the error of
// the earliest collection wins.
func Collect(ctx context.Context, store content.Store) ([]Info, error) {
	groups := make([][]content.Entry, len(content.Collections))
	errs := make([]error, len(content.Collections))

	// Errors go into per-collection slots rather than through the group so
	// a failing fetch never cancels its sibling and the blog error keeps
	// precedence over a til error.
	var g errgroup.Group
	for i, col := range content.Collections {
		g.Go(func() error {
			groups[i], errs[i] = store.GetCollection(ctx, col)
			return nil
		})
	}
	_ = g.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return Count(groups...), nil
}

// Count tallies the trimmed tags of every entry in groups. Blank tags are
// ignored; a tag listed twice on one entry counts twice. Tags are
// case-sensitive: "Go" and "go" are counted separately.
func Count(groups ...[]content.Entry) []Info {
	counts := make(map[string]int)
	for _, entries := range groups {
		for _, e := range entries {
			for _, raw := range e.Data.Tags {
				tag := trimTag(raw)
				if tag == "" {
					continue
				}
				counts[tag]++
			}
		}
	}

	result := make([]Info, 0, len(counts))
	for tag, n := range counts {
		result = append(result, Info{Tag: tag, Count: n, Slug: Slugify(tag)})
	}
	Sort(result)
	return result
}

// trimTag trims the same whitespace Slugify treats as space, so a BOM or
// NBSP around a tag never splits its count.
func trimTag(raw string) string {
	return strings.TrimFunc(raw, isSpace)
}

// Sort orders infos by count descending, then by tag using root-locale
// collation. Tags the collator considers equal fall back to byte order.
func Sort(infos []Info) {
	c := collate.New(language.Und)
	sort.SliceStable(infos, func(i, j int) bool {
		a, b := infos[i], infos[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		if r := c.CompareString(a.Tag, b.Tag); r != 0 {
			return r < 0
		}
		return a.Tag < b.Tag
	})
}

// Tagged returns the entries whose trimmed tags include tag exactly.
func Tagged(entries []content.Entry, tag string) []content.Entry {
	var out []content.Entry
	for _, e := range entries {
		for _, raw := range e.Data.Tags {
			if trimTag(raw) == tag {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

// Lookup finds the tag published under slug. When several tags share a
// slug the highest ranked one wins.
func Lookup(infos []Info, slug string) (Info, bool) {
	for _, info := range infos {
		if info.Slug == slug {
			return info, true
		}
	}
	return Info{}, false
}
