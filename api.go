package inkblog

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/inkblog/content"
	"github.com/eringen/inkblog/search"
	"github.com/eringen/inkblog/viewcount"
)

// SearchHit is one search result in the JSON API.
type SearchHit struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	URL         string   `json:"url"`
	Score       float64  `json:"score"`
}

// SearchResponse is the body of GET /api/search.
type SearchResponse struct {
	Query   string      `json:"query"`
	Results []SearchHit `json:"results"`
}

// ViewsResponse is the body of the view-count endpoints.
type ViewsResponse struct {
	Slug    string `json:"slug"`
	Count   int64  `json:"count"`
	Counted bool   `json:"counted"`
}

func (a *App) handleSearchAPI(c echo.Context) error {
	ix, err := a.Library.Index()
	if err != nil {
		return err
	}
	limit := search.OverlayLimit
	if s := c.QueryParam("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return jsonError(c, http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = min(n, search.PageLimit)
	}
	q := c.QueryParam("q")
	results := search.Top(ix.Search(q), limit)
	resp := SearchResponse{Query: q, Results: make([]SearchHit, 0, len(results))}
	for _, r := range results {
		resp.Results = append(resp.Results, toHit(r))
	}
	return c.JSON(http.StatusOK, resp)
}

func toHit(r search.Result) SearchHit {
	tags := r.Item.Tags
	if tags == nil {
		tags = []string{}
	}
	return SearchHit{
		ID:          r.Item.ID,
		Title:       r.Item.Title,
		Description: r.Item.Description,
		Tags:        tags,
		URL:         r.Item.URL,
		Score:       r.Score,
	}
}

// viewSlug resolves the slug of a view-count request to a published post.
func (a *App) viewSlug(c echo.Context) (string, error) {
	slug := strings.Trim(c.Param("*"), "/")
	set, err := a.Library.Content()
	if err != nil {
		return "", err
	}
	if _, err := set.Post(slug); err != nil {
		return "", err
	}
	return slug, nil
}

func (a *App) storeContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), a.Config.Views.Timeout.Std()+time.Second)
}

func (a *App) handleViewsGet(c echo.Context) error {
	slug, err := a.viewSlug(c)
	if errors.Is(err, content.ErrNotFound) {
		return jsonError(c, http.StatusNotFound, "post not found")
	}
	if err != nil {
		return err
	}
	ctx, cancel := a.storeContext(c)
	defer cancel()
	n, err := a.Store.Count(ctx, slug)
	if err != nil {
		return a.viewsUnavailable(c, err)
	}
	return c.JSON(http.StatusOK, ViewsResponse{Slug: slug, Count: n, Counted: hasViewed(c, slug)})
}

// handleViewsPost counts a view of the post, at most once per browser
// session, and returns the current count.
func (a *App) handleViewsPost(c echo.Context) error {
	slug, err := a.viewSlug(c)
	if errors.Is(err, content.ErrNotFound) {
		return jsonError(c, http.StatusNotFound, "post not found")
	}
	if err != nil {
		return err
	}
	ctx, cancel := a.storeContext(c)
	defer cancel()

	counted := false
	if !hasViewed(c, slug) && a.viewGuard.Allow(viewGuardKey(c, slug)) {
		if err := a.Store.Increment(ctx, slug); err != nil {
			a.viewGuard.Forget(viewGuardKey(c, slug))
			return a.viewsUnavailable(c, err)
		}
		counted = true
		if err := markViewed(c, slug); err != nil {
			a.Logger.Warn("saving view session failed", "slug", slug, "error", err)
		}
	}
	n, err := a.Store.Count(ctx, slug)
	if err != nil {
		return a.viewsUnavailable(c, err)
	}
	return c.JSON(http.StatusOK, ViewsResponse{Slug: slug, Count: n, Counted: counted})
}

// viewGuardWindow is how long a counted view stays reserved for a browser,
// covering requests sent before the session cookie came back.
const viewGuardWindow = 30 * time.Minute

// viewGuardKey identifies a browser by its CSRF cookie token, which every
// accepted POST carries.
func viewGuardKey(c echo.Context, slug string) string {
	return CsrfToken(c) + "|" + slug
}

func (a *App) viewsUnavailable(c echo.Context, err error) error {
	if !viewcount.IsTransient(err) && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	a.Logger.Warn("view store unavailable", "path", c.Request().URL.Path, "error", err)
	return jsonError(c, http.StatusServiceUnavailable, "view counter is temporarily unavailable")
}
