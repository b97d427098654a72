package inkblog

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/inkblog/content"
	"github.com/eringen/inkblog/markdown"
	"github.com/eringen/inkblog/search"
	"github.com/eringen/inkblog/views"
	"github.com/eringen/inkblog/window"
)

const relatedLimit = 3

func (a *App) handleHome(c echo.Context) error {
	set, err := a.Library.Content()
	if err != nil {
		return err
	}
	page := a.gridPage(content.CategoryAll, set.Published(), set.Categories(), 0, false)
	meta := views.PageMeta{
		Title:     a.Config.Site.Name,
		URL:       BuildURL(a.Config.Site.URL),
		CSRFToken: CsrfToken(c),
	}
	return Render(c, views.Home(a.site(), meta, page))
}

// handleCategory renders a category grid. ?page=N selects how far the window
// has grown; with partial=grid only window N is returned, as the fragment
// the scroll sentinel appends.
func (a *App) handleCategory(c echo.Context) error {
	set, err := a.Library.Content()
	if err != nil {
		return err
	}
	slug := strings.ToLower(c.Param("slug"))
	posts, err := set.InCategory(slug)
	if errors.Is(err, content.ErrNotFound) {
		return RenderStatus(c, http.StatusNotFound, views.NotFound(a.site()))
	}
	if err != nil {
		return err
	}

	pageNum := parsePage(c.QueryParam("page"))
	partial := c.QueryParam("partial") == "grid"
	page := a.gridPage(slug, posts, set.Categories(), pageNum, partial)
	if partial {
		return Render(c, views.Grid(page))
	}

	meta := views.PageMeta{
		Title:       "#" + slug,
		Description: fmt.Sprintf("Posts in the %s category", slug),
		URL:         BuildURL(a.Config.Site.URL, "categories", slug),
		CSRFToken:   CsrfToken(c),
	}
	return Render(c, views.Category(a.site(), meta, page))
}

// gridPage cuts the window for page out of posts. A full page shows the whole
// prefix up to the window's end; a partial shows only the window itself.
func (a *App) gridPage(category string, posts []content.Post, categories []string, page int, partial bool) views.GridPage {
	span := window.SpanOf(len(posts), a.Config.Paging.PageSize, page)
	start := 0
	if partial {
		start = span.Start
	}
	gp := views.GridPage{
		Category:   category,
		Categories: categories,
		Posts:      posts[start:span.End],
		Total:      len(posts),
	}
	if span.HasMore {
		gp.NextURL = fmt.Sprintf("%s?page=%d&partial=grid", views.CategoryURL(category), span.Page+1)
	}
	return gp
}

func (a *App) handlePost(c echo.Context) error {
	slug := strings.Trim(c.Param("*"), "/")
	if slug == "" {
		return c.Redirect(http.StatusMovedPermanently, "/categories/all/")
	}
	set, err := a.Library.Content()
	if err != nil {
		return err
	}
	post, err := set.Post(slug)
	if errors.Is(err, content.ErrNotFound) {
		return RenderStatus(c, http.StatusNotFound, views.NotFound(a.site()))
	}
	if err != nil {
		return err
	}

	meta := views.PageMeta{
		Title:       post.Title,
		Description: post.Description,
		URL:         BuildURL(a.Config.Site.URL, "blogs", post.Slug),
		OGType:      "article",
		CSRFToken:   CsrfToken(c),
	}
	if post.Image != "" {
		meta.Image = BuildURL(a.Config.Site.URL, "thumbs", post.Slug)
	}
	page := views.PostPage{
		Post:    post,
		Related: FilterRelatedPosts(post, set.Published(), relatedLimit),
	}
	return Render(c, views.Post(a.site(), meta, page, markdown.Markdown(post.Body)))
}

func (a *App) handleSearchPage(c echo.Context) error {
	ix, err := a.Library.Index()
	if err != nil {
		return err
	}
	q := c.QueryParam("q")
	meta := views.PageMeta{
		Title:     "Search",
		URL:       BuildURL(a.Config.Site.URL, "search"),
		CSRFToken: CsrfToken(c),
	}
	page := views.SearchPage{
		Query:   q,
		Results: search.Top(ix.Search(q), search.PageLimit),
	}
	return Render(c, views.Search(a.site(), meta, page))
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	ok := errors.As(err, &he)
	api := strings.HasPrefix(c.Request().URL.Path, "/api/")
	if ok && he.Code == http.StatusNotFound && !api {
		_ = RenderStatus(c, http.StatusNotFound, views.NotFound(a.site()))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.Logger.Error("server error", "path", c.Request().URL.Path, "error", err)
		if api {
			_ = jsonError(c, code, http.StatusText(code))
			return
		}
		_ = RenderStatus(c, code, views.ServerError(a.site()))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}

// parsePage reads a zero-based page number; anything invalid is page 0.
func parsePage(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
