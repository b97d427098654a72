package inkblog

import (
	"bytes"
	"encoding/xml"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/inkblog/content"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	AtomNS  string     `xml:"xmlns:atom,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	Language      string    `xml:"language,omitempty"`
	LastBuildDate string    `xml:"lastBuildDate"`
	AtomLink      atomLink  `xml:"atom:link"`
	Items         []rssItem `xml:"item"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type cdata struct {
	Text string `xml:",cdata"`
}

type rssGUID struct {
	IsPermaLink string `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

type rssItem struct {
	Title       cdata    `xml:"title"`
	Link        string   `xml:"link"`
	GUID        rssGUID  `xml:"guid"`
	Description cdata    `xml:"description"`
	PubDate     string   `xml:"pubDate"`
	Author      string   `xml:"author,omitempty"`
	Categories  []string `xml:"category"`
}

// WriteFeed writes the RSS 2.0 feed of posts, newest first, to w. Drafts are
// never included.
func WriteFeed(w io.Writer, site SiteConfig, posts []content.Post, now time.Time) error {
	base := strings.TrimRight(site.URL, "/")
	items := make([]rssItem, 0, len(posts))
	for _, p := range posts {
		if !p.Published {
			continue
		}
		postURL := base + p.URL
		item := rssItem{
			Title:       cdata{p.Title},
			Link:        postURL,
			GUID:        rssGUID{IsPermaLink: "true", Value: postURL},
			Description: cdata{p.Description},
			PubDate:     p.PublishedAt.UTC().Format(time.RFC1123Z),
			Categories:  p.Tags,
		}
		if author := feedAuthor(site, p); author != "" {
			item.Author = author
		}
		items = append(items, item)
	}
	feed := rssXML{
		Version: "2.0",
		AtomNS:  "http://www.w3.org/2005/Atom",
		Channel: rssChannel{
			Title:         site.Name,
			Link:          base,
			Description:   site.Description,
			Language:      site.Language,
			LastBuildDate: now.UTC().Format(time.RFC1123Z),
			AtomLink: atomLink{
				Href: base + "/feed.xml",
				Rel:  "self",
				Type: "application/rss+xml",
			},
			Items: items,
		},
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	return enc.Encode(feed)
}

// feedAuthor formats the RSS author element as "email (name)".
func feedAuthor(site SiteConfig, p content.Post) string {
	name := p.Author
	if name == "" {
		name = site.Author
	}
	switch {
	case site.Email != "" && name != "":
		return site.Email + " (" + name + ")"
	case site.Email != "":
		return site.Email
	default:
		return ""
	}
}

func (a *App) handleFeed(c echo.Context) error {
	set, err := a.Library.Content()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := WriteFeed(&buf, a.Config.Site, set.Published(), time.Now()); err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "application/rss+xml; charset=utf-8", buf.Bytes())
}
