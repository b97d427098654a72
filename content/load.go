package content

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LoadError records a content file that was skipped.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// IsContentFile reports whether path has a Markdown or MDX extension.
func IsContentFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".mdx":
		return true
	}
	return false
}

// Load reads every Markdown/MDX file below dir. Files with missing or invalid
// frontmatter are skipped and reported through Set.Errors; only an unreadable
// directory fails the load.
func Load(dir string) (*Set, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("content: stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("content: %s is not a directory", dir)
	}

	var posts []Post
	var errs []*LoadError
	seen := make(map[string]string)

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsContentFile(path) {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		slug := filepath.ToSlash(strings.TrimSuffix(rel, filepath.Ext(rel)))

		if prev, ok := seen[slug]; ok {
			errs = append(errs, &LoadError{Path: path, Err: fmt.Errorf("duplicate slug %q (also %s)", slug, prev)})
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			errs = append(errs, &LoadError{Path: path, Err: err})
			return nil
		}
		post, err := parsePost(slug, path, data)
		if err != nil {
			errs = append(errs, &LoadError{Path: path, Err: err})
			return nil
		}
		seen[slug] = path
		posts = append(posts, post)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("content: walk %s: %w", dir, err)
	}

	s := NewSet(posts)
	s.errs = errs
	return s, nil
}
