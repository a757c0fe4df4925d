package views

import (
	"bytes"
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/mengkeat/blog/content"
	"github.com/mengkeat/blog/tags"
)

// page accumulates markup and writes it out in one call.
type page struct {
	bytes.Buffer
}

func (p *page) raw(s string) {
	p.WriteString(s)
}

func (p *page) text(s string) {
	p.WriteString(templ.EscapeString(s))
}

func component(fn func(p *page)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var p page
		fn(&p)
		_, err := w.Write(p.Bytes())
		return err
	})
}

func layout(p *page, site Site, meta PageMeta, jsonLD string, body func(p *page)) {
	p.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"/>`)
	p.raw(`<meta name="viewport" content="width=device-width, initial-scale=1"/>`)
	p.raw(`<title>`)
	p.text(meta.Title)
	p.raw(`</title>`)
	if meta.Description != "" {
		p.raw(`<meta name="description" content="`)
		p.text(meta.Description)
		p.raw(`"/>`)
	}
	if meta.URL != "" {
		p.raw(`<link rel="canonical" href="`)
		p.text(meta.URL)
		p.raw(`"/><meta property="og:url" content="`)
		p.text(meta.URL)
		p.raw(`"/>`)
	}
	p.raw(`<meta property="og:title" content="`)
	p.text(meta.Title)
	p.raw(`"/><meta property="og:type" content="`)
	p.text(meta.OGType)
	p.raw(`"/><meta property="og:site_name" content="`)
	p.text(site.Name)
	p.raw(`"/>`)
	if jsonLD != "" {
		p.raw(`<script type="application/ld+json">`)
		p.raw(jsonLD)
		p.raw(`</script>`)
	}
	p.raw(`</head><body class="bg-warm-50 text-stone-700 font-sans leading-relaxed-reading">`)
	p.raw(`<header class="mx-auto max-w-3xl px-4 py-6"><a href="/" class="font-semibold text-stone-900">`)
	p.text(site.Name)
	p.raw(`</a> <nav class="inline ml-4"><a href="/tags/" class="hover:text-amber-600">Tags</a></nav></header>`)
	p.raw(`<main class="mx-auto max-w-3xl px-4 pb-16">`)
	body(p)
	p.raw(`</main><footer class="mx-auto max-w-3xl px-4 py-8 text-sm text-stone-500">`)
	if site.Author != "" {
		p.raw(`&copy; `)
		p.text(site.Author)
	}
	p.raw(`</footer></body></html>`)
}

// TagIndex lists every tag with its count.
func TagIndex(site Site, infos []tags.Info) templ.Component {
	return component(func(p *page) {
		meta := PageMeta{
			Title:       "Tags | " + site.Name,
			Description: "All tags used across posts and notes.",
			URL:         buildURL(site.URL, "tags"),
			OGType:      "website",
		}
		layout(p, site, meta, WebsiteJsonLD(site), func(p *page) {
			p.raw(`<h1 class="text-3xl font-semibold text-stone-900 leading-tight-heading">Tags</h1>`)
			if len(infos) == 0 {
				p.raw(`<p class="mt-6 text-stone-500">No tags yet.</p>`)
				return
			}
			top := infos[0].Count
			p.raw(`<ul class="mt-6 flex flex-wrap gap-2" id="tag-index">`)
			for _, info := range infos {
				// tags made only of punctuation slug to "" and get no page
				el := "span"
				p.raw(`<li><`)
				if info.Slug != "" {
					el = "a"
					p.raw(`a href="`)
					p.text(TagPath(info.Slug))
					p.raw(`" class="`)
				} else {
					p.raw(`span class="`)
				}
				p.raw(TagClass(info, top))
				p.raw(`" data-count="`)
				p.raw(strconv.Itoa(info.Count))
				p.raw(`">`)
				p.text(info.Tag)
				p.raw(` <span class="ml-1 text-stone-400">`)
				p.raw(strconv.Itoa(info.Count))
				p.raw(`</span></` + el + `></li>`)
			}
			p.raw(`</ul>`)
		})
	})
}

// TagPage lists the entries carrying one tag, newest first.
func TagPage(site Site, info tags.Info, entries []content.Entry, drafts DraftToggle) templ.Component {
	return component(func(p *page) {
		meta := PageMeta{
			Title:       info.Tag + " | " + site.Name,
			Description: "Posts and notes tagged " + info.Tag + ".",
			URL:         buildURL(site.URL, "tags", info.Slug),
			OGType:      "website",
		}
		layout(p, site, meta, CollectionPageJsonLD(site, info, entries), func(p *page) {
			p.raw(`<h1 class="text-3xl font-semibold text-stone-900 leading-tight-heading">#`)
			p.text(info.Tag)
			p.raw(`</h1><p class="mt-2 text-sm text-stone-500">`)
			p.text(CountLabel(info.Count))
			p.raw(` &middot; <a href="`)
			p.text(TagPath(info.Slug) + "feed.xml")
			p.raw(`" class="hover:text-amber-600">RSS</a></p>`)

			p.raw(`<form method="post" action="/preview/drafts/" class="mt-2 text-xs">`)
			p.raw(`<input type="hidden" name="_csrf" value="`)
			p.text(drafts.CSRFToken)
			p.raw(`"/><input type="hidden" name="return" value="`)
			p.text(TagPath(info.Slug))
			p.raw(`"/><button type="submit" class="underline">`)
			if drafts.Enabled {
				p.raw(`Hide drafts`)
			} else {
				p.raw(`Show drafts`)
			}
			p.raw(`</button></form>`)

			p.raw(`<ul class="mt-8 space-y-6">`)
			for _, e := range entries {
				p.raw(`<li class="entry" data-collection="`)
				p.text(string(e.Collection))
				p.raw(`"><a href="`)
				p.text(e.URL())
				p.raw(`" class="text-lg font-medium text-stone-900 hover:text-amber-600">`)
				p.text(e.Data.Title)
				p.raw(`</a>`)
				if e.Data.Draft {
					p.raw(` <span class="draft-badge text-xs uppercase text-amber-700">draft</span>`)
				}
				p.raw(`<p class="text-sm text-stone-500"><span>`)
				p.text(CollectionLabel(e.Collection))
				p.raw(`</span> &middot; <time datetime="`)
				p.raw(e.Data.PubDate.Format("2006-01-02"))
				p.raw(`">`)
				p.raw(e.Data.PubDate.Format("Jan 2, 2006"))
				p.raw(`</time></p><p>`)
				p.text(e.Data.Description)
				p.raw(`</p></li>`)
			}
			p.raw(`</ul>`)
		})
	})
}

// NotFound renders the 404 page.
func NotFound(site Site) templ.Component {
	return component(func(p *page) {
		layout(p, site, PageMeta{Title: "Not found | " + site.Name, OGType: "website"}, "", func(p *page) {
			p.raw(`<h1 class="text-3xl font-semibold text-stone-900">Not found</h1>`)
			p.raw(`<p class="mt-4">That page does not exist. <a href="/tags/" class="text-amber-600">Browse tags</a>.</p>`)
		})
	})
}

// ServerError renders the 500 page.
func ServerError(site Site) templ.Component {
	return component(func(p *page) {
		layout(p, site, PageMeta{Title: "Error | " + site.Name, OGType: "website"}, "", func(p *page) {
			p.raw(`<h1 class="text-3xl font-semibold text-stone-900">Something went wrong</h1>`)
			p.raw(`<p class="mt-4">The content could not be loaded. Check the server log.</p>`)
		})
	})
}
