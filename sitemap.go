package inkblog

import (
	"bytes"
	"encoding/xml"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/inkblog/content"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
}

func buildSitemap(base string, set *content.Set) sitemapURLSet {
	urls := []sitemapURL{
		{Loc: BuildURL(base), ChangeFreq: "daily"},
		{Loc: BuildURL(base, "search")},
	}
	for _, cat := range set.Categories() {
		urls = append(urls, sitemapURL{Loc: BuildURL(base, "categories", cat), ChangeFreq: "weekly"})
	}
	for _, p := range set.Published() {
		urls = append(urls, sitemapURL{
			Loc:     BuildURL(base, "blogs", p.Slug),
			LastMod: p.UpdatedAt.Format("2006-01-02"),
		})
	}
	return sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
}

func (a *App) handleSitemap(c echo.Context) error {
	set, err := a.Library.Content()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	if err := xml.NewEncoder(&buf).Encode(buildSitemap(a.Config.Site.URL, set)); err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "application/xml; charset=utf-8", buf.Bytes())
}
