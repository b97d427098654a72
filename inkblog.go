// Package inkblog is a file-based blog engine built with Go, Echo, and templ.
// It renders Markdown/MDX posts, browses them by category through windowed
// infinite-scroll grids, searches them with a typo-tolerant index, counts
// views once per session and publishes RSS and sitemap feeds.
package inkblog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/eringen/inkblog/content"
	"github.com/eringen/inkblog/viewcount"
	"github.com/eringen/inkblog/views"
)

// App is the central inkblog application. It wires together the content
// library, the view-count store, handlers and middleware.
type App struct {
	Config  Config
	Echo    *echo.Echo
	Library *Library
	Store   viewcount.Store
	Logger  *slog.Logger

	viewLimiter   *Limiter
	searchLimiter *Limiter
	viewGuard     *Limiter // one counted view per browser and slug
	thumbs        *Thumbnailer
	customRoutes  []func(*App)
	ready         bool
}

// New creates a new inkblog App with the given configuration, usually one
// built from DefaultConfig or LoadConfig.
func New(cfg Config, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
	}
	a.Echo.HideBanner = true
	a.Echo.HidePort = true

	for _, opt := range opts {
		opt(a)
	}
	if a.Logger == nil {
		a.Logger = slog.Default()
	}
	return a
}

// Setup opens the view-count store (unless one was injected), loads the
// content and registers middleware and routes. Start calls it; tests call it
// directly and drive a.Echo with httptest.
func (a *App) Setup() error {
	if a.ready {
		return nil
	}
	if a.Config.Session.Secret == "" {
		return fmt.Errorf("inkblog: session secret is required")
	}

	if a.Store == nil {
		store, err := OpenStore(a.Config.Views)
		if err != nil {
			return fmt.Errorf("inkblog: init view store: %w", err)
		}
		a.Store = store
	}

	a.Library = NewLibrary(a.Config.Content.Dir, a.Config.Search.Threshold, a.Logger)
	if _, _, err := a.Library.Snapshot(); err != nil {
		return fmt.Errorf("inkblog: load content: %w", err)
	}

	a.viewLimiter = NewLimiter(a.Config.RateLimit.ViewsPerMinute, time.Minute)
	a.searchLimiter = NewLimiter(a.Config.RateLimit.SearchPerMinute, time.Minute)
	a.viewGuard = NewLimiter(1, viewGuardWindow)
	a.thumbs = NewThumbnailer(a.Config.Thumbs.CacheDir, a.Config.Thumbs.Width)

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	a.ready = true
	return nil
}

// Start sets the app up and serves HTTP until ctx is cancelled or the process
// receives SIGINT/SIGTERM. The content watcher runs alongside the server.
func (a *App) Start(ctx context.Context) error {
	if err := a.Setup(); err != nil {
		return err
	}
	logger := a.Logger

	httpServer := &http.Server{
		Addr:              a.Config.HTTP.Addr,
		Handler:           a.Echo,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	if a.Config.Content.WatchEnabled() {
		g.Go(func() error {
			err := content.Watch(gCtx, a.Library.Dir(), logger, func() {
				if err := a.Library.Reload(); err != nil {
					logger.Error("content reload failed", slog.String("error", err.Error()))
				}
			})
			if err != nil {
				logger.Warn("content watcher stopped", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", a.Config.HTTP.Addr), slog.String("site_url", a.Config.Site.URL))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.HTTP.ShutdownTimeout.Std())
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return context.Canceled
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}
	logger.Info("Server stopped successfully")
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Embedded assets first; anything else under /public comes from the
	// user's static dir.
	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	embeddedHandler := http.FileServer(http.FS(embeddedFS))
	e.GET("/public/blog.js", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))
	e.GET("/public/blog.css", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))
	e.Static("/public", a.Config.HTTP.StaticDir)

	e.GET("/robots.txt", a.handleRobots)
	e.GET("/manifest.webmanifest", a.handleManifest)
	e.GET("/health", a.handleHealth)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)

	e.GET("/", a.handleHome)
	e.GET("/blogs/*", a.handlePost)
	e.GET("/categories/:slug/", a.handleCategory)
	e.GET("/search/", a.handleSearchPage)
	e.GET("/thumbs/*", a.handleThumb)

	api := e.Group("/api")
	api.GET("/search", a.handleSearchAPI, a.searchLimiter.Middleware())
	api.GET("/views/*", a.handleViewsGet)
	api.POST("/views/*", a.handleViewsPost, a.viewLimiter.Middleware())
}

// site converts the site configuration for templates.
func (a *App) site() views.Site {
	s := a.Config.Site
	return views.Site{
		Name:        s.Name,
		URL:         s.URL,
		Description: s.Description,
		Author:      s.Author,
		Email:       s.Email,
		Language:    s.Language,
	}
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.viewLimiter != nil {
		a.viewLimiter.Stop()
	}
	if a.searchLimiter != nil {
		a.searchLimiter.Stop()
	}
	if a.viewGuard != nil {
		a.viewGuard.Stop()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
