package content

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

// dateLayouts are tried in order when parsing publishedAt/updatedAt.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

var errNoFrontmatter = errors.New("missing frontmatter")

type frontmatter struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	PublishedAt string   `yaml:"publishedAt"`
	UpdatedAt   string   `yaml:"updatedAt"`
	Image       string   `yaml:"image"`
	IsPublished *bool    `yaml:"isPublished"`
	Author      string   `yaml:"author"`
	Tags        []string `yaml:"tags"`
}

// Validate checks the fields every post must declare.
func (f *frontmatter) Validate() error {
	return validation.ValidateStruct(f,
		validation.Field(&f.Title, validation.Required),
		validation.Field(&f.Description, validation.Required),
		validation.Field(&f.Author, validation.Required),
		validation.Field(&f.PublishedAt, validation.Required, validation.By(isDate)),
		validation.Field(&f.UpdatedAt, validation.By(isDate)),
	)
}

func isDate(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, err := parseDate(s); err != nil {
		return errors.New("must be a date (YYYY-MM-DD or RFC 3339)")
	}
	return nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

// splitFrontmatter separates the YAML block between leading --- delimiters
// from the body.
func splitFrontmatter(data []byte) ([]byte, string, error) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\ufeff\n\r")
	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, "", errNoFrontmatter
	}
	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, "", errNoFrontmatter
	}
	block := rest[:idx]
	after := rest[idx+1+len(delim):]
	return block, strings.TrimLeft(string(after), "\n\r"), nil
}

// parsePost builds a Post from raw file bytes. slug is the content-relative
// path without extension.
func parsePost(slug, path string, data []byte) (Post, error) {
	block, body, err := splitFrontmatter(data)
	if err != nil {
		return Post{}, err
	}
	var fm frontmatter
	if err := yaml.Unmarshal(block, &fm); err != nil {
		return Post{}, fmt.Errorf("parse frontmatter: %w", err)
	}
	if err := fm.Validate(); err != nil {
		return Post{}, err
	}

	published, _ := parseDate(fm.PublishedAt)
	updated := published
	if fm.UpdatedAt != "" {
		updated, _ = parseDate(fm.UpdatedAt)
	}
	isPublished := true
	if fm.IsPublished != nil {
		isPublished = *fm.IsPublished
	}

	var tags []string
	for _, t := range fm.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}

	return Post{
		Summary: Summary{
			ID:          slug,
			Title:       strings.TrimSpace(fm.Title),
			Description: strings.TrimSpace(fm.Description),
			Tags:        tags,
			URL:         "/blogs/" + slug + "/",
			Published:   isPublished,
		},
		Slug:        slug,
		Author:      strings.TrimSpace(fm.Author),
		Image:       strings.TrimSpace(fm.Image),
		PublishedAt: published,
		UpdatedAt:   updated,
		Body:        body,
		Path:        path,
	}, nil
}
