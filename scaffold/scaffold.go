// Package scaffold provides embedded template files for the inkblog CLI: a
// starter site layout and the frontmatter skeleton of a new post.
package scaffold

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/eringen/inkblog/content"
)

// Templates contains all scaffold template files.
// Files use Go text/template syntax and have a .tmpl suffix.
//
//go:embed all:templates
var Templates embed.FS

const (
	siteRoot     = "templates/site"
	postTemplate = "templates/post.mdx.tmpl"

	defaultAuthor = "Anonymous"
)

// SiteData holds the template variables passed to every site template.
type SiteData struct {
	ProjectName string
	SiteName    string
	SiteURL     string
	Author      string
	Date        string
}

// PostData holds the template variables of a new post.
type PostData struct {
	Title       string
	Description string
	Author      string
	Date        string
	Tags        []string
	Published   bool
}

// NewSite renders the starter site into dir, which must not exist yet. Each
// created file is reported to out.
func NewSite(dir string, data SiteData, out io.Writer) error {
	if _, err := os.Stat(dir); err == nil {
		return fmt.Errorf("directory %q already exists", dir)
	}
	if data.ProjectName == "" {
		data.ProjectName = filepath.Base(dir)
	}
	if data.SiteName == "" {
		data.SiteName = toTitle(data.ProjectName)
	}
	if data.SiteURL == "" {
		data.SiteURL = "http://localhost:3000"
	}
	if data.Author == "" {
		data.Author = defaultAuthor
	}
	if data.Date == "" {
		data.Date = time.Now().Format(time.DateOnly)
	}

	return fs.WalkDir(Templates, siteRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		// Compute the relative path from the template root.
		relPath, err := filepath.Rel(siteRoot, path)
		if err != nil {
			return err
		}

		// Compute the output path, stripping the .tmpl suffix.
		outPath := filepath.Join(dir, relPath)
		outPath = strings.TrimSuffix(outPath, ".tmpl")

		// Rename dotenv to .env.example.
		if filepath.Base(outPath) == "dotenv" {
			outPath = filepath.Join(filepath.Dir(outPath), ".env.example")
		}

		if d.IsDir() {
			return os.MkdirAll(outPath, 0o755)
		}

		raw, err := Templates.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		tmpl, err := template.New(filepath.Base(path)).Parse(string(raw))
		if err != nil {
			return fmt.Errorf("parse template %s: %w", path, err)
		}

		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create %s: %w", outPath, err)
		}
		defer f.Close()

		if err := tmpl.Execute(f, data); err != nil {
			return fmt.Errorf("execute template %s: %w", path, err)
		}

		fmt.Fprintf(out, "  created %s\n", outPath)
		return nil
	})
}

// NewPost writes a post skeleton for data into the content directory dir and
// returns its path. The file name is the slug of the title; an existing file
// is never overwritten.
func NewPost(dir string, data PostData) (string, error) {
	slug := content.Slugify(data.Title)
	if slug == "" {
		return "", errors.New("title has no usable characters")
	}
	if data.Description == "" {
		data.Description = data.Title
	}
	if data.Author == "" {
		data.Author = defaultAuthor
	}
	if data.Date == "" {
		data.Date = time.Now().Format(time.DateOnly)
	}

	tmpl, err := template.ParseFS(Templates, postTemplate)
	if err != nil {
		return "", fmt.Errorf("parse post template: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, slug+".mdx")
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return "", fmt.Errorf("post %q already exists", path)
	}
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := tmpl.Execute(f, data); err != nil {
		return "", fmt.Errorf("execute post template: %w", err)
	}
	return path, nil
}

// toTitle converts a hyphenated or lowercase name to a title-case string.
// e.g. "my-blog" -> "My Blog", "myblog" -> "Myblog"
func toTitle(s string) string {
	parts := strings.Split(s, "-")
	for i, p := range parts {
		if len(p) > 0 {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}
