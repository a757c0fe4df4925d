package views

import (
	"encoding/json"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/mengkeat/blog/content"
	"github.com/mengkeat/blog/tags"
)

// buildURL joins path segments onto a base URL, ensuring a trailing slash.
func buildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// TagPath returns the site-relative path of a tag page.
func TagPath(slug string) string {
	return "/tags/" + url.PathEscape(slug) + "/"
}

// TagClass returns CSS classes for a tag pill sized by how often it is used.
func TagClass(info tags.Info, max int) string {
	base := "inline-flex items-center rounded border border-warm-300 bg-warm-100 px-2.5 py-1 font-medium text-stone-700 hover:text-amber-600 transition"
	switch {
	case max > 0 && info.Count*3 >= max*2:
		return base + " text-base"
	case max > 0 && info.Count*3 >= max:
		return base + " text-sm"
	default:
		return base + " text-xs"
	}
}

// CountLabel formats an entry count, e.g. "1 entry" or "4 entries".
func CountLabel(n int) string {
	if n == 1 {
		return "1 entry"
	}
	return strconv.Itoa(n) + " entries"
}

// CollectionLabel names a collection for display.
func CollectionLabel(c content.Collection) string {
	switch c {
	case content.Blog:
		return "Post"
	case content.TIL:
		return "TIL"
	}
	return string(c)
}

// WebsiteJsonLD produces a Schema.org WebSite JSON-LD block using site values.
func WebsiteJsonLD(site Site) string {
	data := map[string]interface{}{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     site.Name,
		"url":      buildURL(site.URL),
	}
	if site.Description != "" {
		data["description"] = site.Description
	}
	if site.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  site.Author,
		}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// CollectionPageJsonLD produces a Schema.org CollectionPage block for a tag page.
func CollectionPageJsonLD(site Site, info tags.Info, entries []content.Entry) string {
	pageURL := buildURL(site.URL, "tags", info.Slug)
	parts := make([]map[string]string, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, map[string]string{
			"@type":         "CreativeWork",
			"headline":      e.Data.Title,
			"url":           buildURL(site.URL, string(e.Collection), e.ID),
			"datePublished": e.Data.PubDate.Format("2006-01-02"),
		})
	}
	data := map[string]interface{}{
		"@context": "https://schema.org",
		"@type":    "CollectionPage",
		"name":     info.Tag,
		"url":      pageURL,
		"keywords": info.Tag,
		"hasPart":  parts,
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}
