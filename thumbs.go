package inkblog

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/natefinch/atomic"
	"golang.org/x/image/draw"

	"github.com/eringen/inkblog/content"
)

const jpegQuality = 80

// Thumbnailer scales cover images down to a maximum width and caches the
// JPEG result on disk. A cached thumbnail is reused until its source changes.
type Thumbnailer struct {
	cacheDir string
	width    int

	mu sync.Mutex // serialises generation so concurrent requests encode once
}

// NewThumbnailer creates a Thumbnailer writing into cacheDir.
func NewThumbnailer(cacheDir string, width int) *Thumbnailer {
	return &Thumbnailer{cacheDir: cacheDir, width: width}
}

// Thumb returns the path of the cached thumbnail for src under key,
// generating it when missing or stale.
func (t *Thumbnailer) Thumb(key, src string) (string, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return "", err
	}
	out := filepath.Join(t.cacheDir, cacheName(key))

	t.mu.Lock()
	defer t.mu.Unlock()

	if info, err := os.Stat(out); err == nil && !info.ModTime().Before(srcInfo.ModTime()) {
		return out, nil
	}

	f, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer f.Close()
	data, err := scaleImage(f, t.width)
	if err != nil {
		return "", fmt.Errorf("thumbnail %s: %w", src, err)
	}
	if err := os.MkdirAll(t.cacheDir, 0o755); err != nil {
		return "", fmt.Errorf("create thumbnail dir: %w", err)
	}
	if err := atomic.WriteFile(out, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("write thumbnail: %w", err)
	}
	return out, nil
}

// scaleImage decodes an image, resizes it to maxWidth when wider, and encodes
// it as JPEG.
func scaleImage(src io.Reader, maxWidth int) ([]byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > maxWidth {
		newH := max(1, h*maxWidth/w)
		dst := image.NewRGBA(image.Rect(0, 0, maxWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// cacheName flattens a post slug into a file name. The readable part may be
// shared by distinct slugs ("a/b", "a-b"), the digest of the full slug is not.
func cacheName(key string) string {
	sum := sha256.Sum256([]byte(key))
	return content.Slugify(strings.ReplaceAll(key, "/", "--")) + "-" + hex.EncodeToString(sum[:])[:16] + ".jpg"
}

// coverPath resolves a post's image reference to a local file. Absolute
// references live under the static dir; relative ones next to the post file.
func (a *App) coverPath(p content.Post) string {
	img := p.Image
	if strings.HasPrefix(img, "/") {
		return filepath.Join(a.Config.HTTP.StaticDir, filepath.FromSlash(strings.TrimPrefix(img, "/")))
	}
	return filepath.Join(filepath.Dir(p.Path), filepath.FromSlash(img))
}

func (a *App) handleThumb(c echo.Context) error {
	slug := strings.Trim(c.Param("*"), "/")
	set, err := a.Library.Content()
	if err != nil {
		return err
	}
	post, err := set.Post(slug)
	if err != nil || post.Image == "" {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	if strings.HasPrefix(post.Image, "http://") || strings.HasPrefix(post.Image, "https://") {
		return c.Redirect(http.StatusFound, post.Image)
	}
	out, err := a.thumbs.Thumb(slug, a.coverPath(post))
	if errors.Is(err, os.ErrNotExist) {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	if err != nil {
		return err
	}
	return c.File(out)
}
