package inkblog

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

type manifestIcon struct {
	Src   string `json:"src"`
	Sizes string `json:"sizes"`
	Type  string `json:"type"`
}

type webManifest struct {
	Name        string         `json:"name"`
	ShortName   string         `json:"short_name"`
	Description string         `json:"description,omitempty"`
	StartURL    string         `json:"start_url"`
	Display     string         `json:"display"`
	Icons       []manifestIcon `json:"icons"`
}

func (a *App) handleManifest(c echo.Context) error {
	var icons []manifestIcon
	for _, size := range []int{16, 32, 192, 512} {
		name := fmt.Sprintf("favicon-%dx%d.png", size, size)
		if size >= 192 {
			name = fmt.Sprintf("android-chrome-%dx%d.png", size, size)
		}
		icons = append(icons, manifestIcon{
			Src:   "/public/favicon/" + name,
			Sizes: fmt.Sprintf("%dx%d", size, size),
			Type:  "image/png",
		})
	}
	m := webManifest{
		Name:        a.Config.Site.Name,
		ShortName:   a.Config.Site.Name,
		Description: a.Config.Site.Description,
		StartURL:    "/",
		Display:     "standalone",
		Icons:       icons,
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/manifest+json")
	return c.JSON(http.StatusOK, m)
}

func (a *App) handleRobots(c echo.Context) error {
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	b.WriteString("Allow: /\n")
	b.WriteString("Disallow: /api/\n\n")
	b.WriteString("Sitemap: " + strings.TrimRight(a.Config.Site.URL, "/") + "/sitemap.xml\n")
	return c.String(http.StatusOK, b.String())
}

func (a *App) handleHealth(c echo.Context) error {
	status := map[string]any{"status": "ok"}
	set, err := a.Library.Content()
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]any{"status": "error", "error": err.Error()})
	}
	status["posts"] = len(set.Published())
	status["invalid"] = len(set.Errors())
	return c.JSON(http.StatusOK, status)
}
