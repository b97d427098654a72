package views

import (
	"fmt"
	"strings"

	"github.com/a-h/templ"

	"github.com/eringen/inkblog/content"
)

// Home renders the landing page: the newest posts and the category list.
func Home(site Site, meta PageMeta, page GridPage) templ.Component {
	return Layout(site, meta, component(func(p *printer) {
		p.jsonLD(WebsiteJsonLD(site))
		p.raw(`<section class="hero"><h1>`)
		p.text(site.Name)
		p.raw(`</h1>`)
		if site.Description != "" {
			p.raw(`<p class="lede">`)
			p.text(site.Description)
			p.raw(`</p>`)
		}
		p.raw(`</section>`)
		categoryNav(p, page.Categories, page.Category)
		p.raw(`<section class="posts"><h2>Recent posts</h2>`)
		p.component(Grid(page))
		p.raw(`</section>`)
	}))
}

// Category renders a category page with its post grid.
func Category(site Site, meta PageMeta, page GridPage) templ.Component {
	return Layout(site, meta, component(func(p *printer) {
		p.raw(`<section class="category-header"><h1>#`)
		p.text(page.Category)
		p.raw(`</h1><p>`)
		p.text(countLabel(page.Total))
		p.raw(`</p></section>`)
		categoryNav(p, page.Categories, page.Category)
		p.component(Grid(page))
	}))
}

// Grid renders the post cards of page followed by the scroll sentinel that
// loads the next window. Fetched on its own, it is the fragment appended to
// an existing grid.
func Grid(page GridPage) templ.Component {
	return component(func(p *printer) {
		p.raw(`<div class="grid" data-grid>`)
		for _, post := range page.Posts {
			postCard(p, post)
		}
		p.raw(`</div>`)
		if page.NextURL == "" {
			return
		}
		p.raw(`<div class="sentinel" data-sentinel`)
		p.attr("data-next", page.NextURL)
		p.raw(`><span class="spinner" hidden>Loading…</span>`)
		p.raw(`<noscript><a`)
		p.attr("href", strings.Replace(page.NextURL, "&partial=grid", "", 1))
		p.raw(`>More posts</a></noscript></div>`)
	})
}

// Post renders a single post.
func Post(site Site, meta PageMeta, page PostPage, body templ.Component) templ.Component {
	post := page.Post
	return Layout(site, meta, component(func(p *printer) {
		p.jsonLD(BlogPostingJsonLD(site, post))
		p.raw(`<article class="post"><header class="post-header">`)
		if thumb := ThumbURL(post); thumb != "" {
			p.raw(`<img class="cover"`)
			p.attr("src", thumb)
			p.attr("alt", post.Title)
			p.raw(">")
		}
		p.raw(`<h1>`)
		p.text(post.Title)
		p.raw(`</h1><p class="meta"><time`)
		p.attr("datetime", post.PublishedAt.Format("2006-01-02"))
		p.raw(">")
		p.text(FormatDate(post.PublishedAt))
		p.raw(`</time>`)
		if post.Author != "" {
			p.raw(` · `)
			p.text(post.Author)
		}
		p.raw(` · <span class="views" data-views`)
		p.attr("data-slug", post.Slug)
		p.raw(`>… views</span></p>`)
		tagList(p, post)
		p.raw(`</header><div class="prose">`)
		p.component(body)
		p.raw(`</div></article>`)

		if len(page.Related) > 0 {
			p.raw(`<section class="related"><h2>Related posts</h2><div class="grid">`)
			for _, r := range page.Related {
				postCard(p, r)
			}
			p.raw(`</div></section>`)
		}
	}))
}

// Search renders the search page with up to a page of results.
func Search(site Site, meta PageMeta, page SearchPage) templ.Component {
	return Layout(site, meta, component(func(p *printer) {
		p.raw(`<section class="search-page"><h1>Search</h1>`)
		p.raw(`<form action="/search/" method="get" role="search"><input type="search" name="q"`)
		p.attr("value", page.Query)
		p.raw(` placeholder="Search posts…" autofocus><button type="submit">Search</button></form>`)
		switch {
		case strings.TrimSpace(page.Query) == "":
		case len(page.Results) == 0:
			p.raw(`<p class="empty">No posts match “`)
			p.text(page.Query)
			p.raw(`”.</p>`)
		default:
			p.raw(`<ol class="results">`)
			for _, r := range page.Results {
				p.raw(`<li><a`)
				p.attr("href", r.Item.URL)
				p.raw(`><strong>`)
				p.text(r.Item.Title)
				p.raw(`</strong><span>`)
				p.text(r.Item.Description)
				p.raw(`</span></a></li>`)
			}
			p.raw(`</ol>`)
		}
		p.raw(`</section>`)
	}))
}

// NotFound renders the 404 page.
func NotFound(site Site) templ.Component {
	return Layout(site, PageMeta{Title: "Not found"}, component(func(p *printer) {
		p.raw(`<section class="error-page"><h1>404</h1><p>That page does not exist.</p><a href="/">Back home</a></section>`)
	}))
}

// ServerError renders the 500 page.
func ServerError(site Site) templ.Component {
	return Layout(site, PageMeta{Title: "Error"}, component(func(p *printer) {
		p.raw(`<section class="error-page"><h1>Something went wrong</h1><p>Please try again in a moment.</p><a href="/">Back home</a></section>`)
	}))
}

func categoryNav(p *printer, categories []string, active string) {
	if len(categories) == 0 {
		return
	}
	p.raw(`<nav class="categories" aria-label="Categories">`)
	for _, c := range categories {
		p.raw(`<a`)
		p.attr("href", CategoryURL(c))
		p.attr("class", TagClass(c == active))
		if c == active {
			p.raw(` aria-current="page"`)
		}
		p.raw(`>#`)
		p.text(c)
		p.raw(`</a>`)
	}
	p.raw(`</nav>`)
}

func tagList(p *printer, post content.Post) {
	cats := post.Categories()
	if len(cats) == 0 {
		return
	}
	p.raw(`<ul class="tags">`)
	for _, c := range cats {
		p.raw(`<li><a`)
		p.attr("href", CategoryURL(c))
		p.attr("class", TagClass(false))
		p.raw(`>#`)
		p.text(c)
		p.raw(`</a></li>`)
	}
	p.raw(`</ul>`)
}

func postCard(p *printer, post content.Post) {
	p.raw(`<article class="card">`)
	if thumb := ThumbURL(post); thumb != "" {
		p.raw(`<a class="card-image"`)
		p.attr("href", post.URL)
		p.raw(`><img loading="lazy"`)
		p.attr("src", thumb)
		p.attr("alt", post.Title)
		p.raw(`></a>`)
	}
	if cats := post.Categories(); len(cats) > 0 {
		p.raw(`<a class="card-category"`)
		p.attr("href", CategoryURL(cats[0]))
		p.raw(`>#`)
		p.text(cats[0])
		p.raw(`</a>`)
	}
	p.raw(`<h3><a`)
	p.attr("href", post.URL)
	p.raw(">")
	p.text(post.Title)
	p.raw(`</a></h3><p>`)
	p.text(post.Description)
	p.raw(`</p><time`)
	p.attr("datetime", post.PublishedAt.Format("2006-01-02"))
	p.raw(">")
	p.text(FormatDate(post.PublishedAt))
	p.raw(`</time></article>`)
}

func countLabel(n int) string {
	if n == 1 {
		return "1 post"
	}
	return fmt.Sprintf("%d posts", n)
}
