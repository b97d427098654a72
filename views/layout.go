package views

import (
	"time"

	"github.com/a-h/templ"
)

// Layout wraps body in the site chrome: head metadata, header navigation,
// the search overlay and the footer.
func Layout(site Site, meta PageMeta, body templ.Component) templ.Component {
	return component(func(p *printer) {
		lang := site.Language
		if lang == "" {
			lang = "en"
		}
		title := site.Name
		if meta.Title != "" && meta.Title != site.Name {
			title = meta.Title + " | " + site.Name
		}
		desc := meta.Description
		if desc == "" {
			desc = site.Description
		}
		ogType := meta.OGType
		if ogType == "" {
			ogType = "website"
		}

		p.raw("<!DOCTYPE html><html")
		p.attr("lang", lang)
		p.raw(`><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1">`)
		p.raw("<title>")
		p.text(title)
		p.raw("</title>")
		p.raw(`<meta name="description"`)
		p.attr("content", desc)
		p.raw(">")
		if meta.CSRFToken != "" {
			p.raw(`<meta name="csrf-token"`)
			p.attr("content", meta.CSRFToken)
			p.raw(">")
		}
		if meta.URL != "" {
			p.raw(`<link rel="canonical"`)
			p.attr("href", meta.URL)
			p.raw(`><meta property="og:url"`)
			p.attr("content", meta.URL)
			p.raw(">")
		}
		p.raw(`<meta property="og:title"`)
		p.attr("content", title)
		p.raw(`><meta property="og:description"`)
		p.attr("content", desc)
		p.raw(`><meta property="og:type"`)
		p.attr("content", ogType)
		p.raw(`><meta property="og:site_name"`)
		p.attr("content", site.Name)
		p.raw(">")
		if meta.Image != "" {
			p.raw(`<meta property="og:image"`)
			p.attr("content", meta.Image)
			p.raw(">")
		}
		p.raw(`<link rel="alternate" type="application/rss+xml"`)
		p.attr("title", site.Name)
		p.raw(` href="/feed.xml">`)
		p.raw(`<link rel="manifest" href="/manifest.webmanifest">`)
		p.raw(`<link rel="stylesheet" href="/public/blog.css">`)
		p.raw(`<script src="/public/blog.js" defer></script>`)
		p.raw("</head><body>")

		p.raw(`<header class="site-header"><a class="logo" href="/">`)
		p.text(site.Name)
		p.raw(`</a><nav><a href="/categories/all/">Posts</a><a href="/search/">Search</a>`)
		p.raw(`<button type="button" class="search-toggle" data-search-toggle aria-label="Search (Ctrl+K)">Search <kbd>Ctrl K</kbd></button>`)
		p.raw(`</nav></header>`)

		p.raw(`<main id="main">`)
		p.component(body)
		p.raw(`</main>`)

		searchOverlay(p)

		p.raw(`<footer class="site-footer"><p>&copy; `)
		p.text(time.Now().Format("2006"))
		p.raw(" ")
		p.text(site.Author)
		p.raw(`</p><p><a href="/feed.xml">RSS</a> · <a href="/sitemap.xml">Sitemap</a></p></footer>`)
		p.raw("</body></html>")
	})
}

// searchOverlay is the modal driven by blog.js: ctrl+k toggles it, arrows move
// the selection, enter opens the selected post and escape closes it.
func searchOverlay(p *printer) {
	p.raw(`<div id="search-overlay" class="search-overlay" role="dialog" aria-modal="true" aria-label="Search posts" hidden>`)
	p.raw(`<div class="search-panel">`)
	p.raw(`<input type="search" id="search-input" placeholder="Search posts…" autocomplete="off" aria-controls="search-results">`)
	p.raw(`<ul id="search-results" role="listbox"></ul>`)
	p.raw(`<p class="search-hint"><kbd>↑</kbd><kbd>↓</kbd> to move · <kbd>Enter</kbd> to open · <kbd>Esc</kbd> to close</p>`)
	p.raw(`</div></div>`)
}
