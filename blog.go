// Package blog is the preview and tooling layer of a personal static blog.
// It aggregates tags across the blog and til collections and serves the tag
// index, per-tag listings, feeds and a sitemap while content is edited.
//
// Templates are supplied through ViewFuncs; DefaultViews wires the stock
// components from the views package.
package blog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/mengkeat/blog/content"
	"github.com/mengkeat/blog/tags"
	"github.com/mengkeat/blog/views"
)

// ViewFuncs holds the components the handlers render.
type ViewFuncs struct {
	TagIndex    func(infos []tags.Info) templ.Component
	TagPage     func(info tags.Info, entries []content.Entry, drafts views.DraftToggle) templ.Component
	NotFound    func() templ.Component
	ServerError func() templ.Component
}

// DefaultViews binds the stock views to site.
func DefaultViews(site views.Site) ViewFuncs {
	return ViewFuncs{
		TagIndex: func(infos []tags.Info) templ.Component {
			return views.TagIndex(site, infos)
		},
		TagPage: func(info tags.Info, entries []content.Entry, drafts views.DraftToggle) templ.Component {
			return views.TagPage(site, info, entries, drafts)
		},
		NotFound:    func() templ.Component { return views.NotFound(site) },
		ServerError: func() templ.Component { return views.ServerError(site) },
	}
}

// App wires together the content store, tag cache, handlers and watcher.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Cache  *TagCache
	Views  ViewFuncs
	Logger *zap.Logger

	store content.Store
	files *content.FileStore
	index *content.IndexStore
	ready bool
}

// New creates an App with the given configuration and views.
func New(cfg SiteConfig, v ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
		Views:  v,
		Logger: zap.NewNop(),
	}
	a.Echo.HideBanner = true
	a.Echo.HidePort = true

	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Setup opens the content store, builds the cache and registers middleware
// and routes. Start calls it when needed.
func (a *App) Setup(ctx context.Context) error {
	if a.ready {
		return nil
	}
	if a.store == nil {
		a.files = content.NewFileStore(a.Config.ContentDir)
		a.store = a.files
		if a.Config.UseIndex {
			idx, err := content.OpenIndex(a.Config.IndexPath)
			if err != nil {
				return fmt.Errorf("blog: open index: %w", err)
			}
			a.index = idx
			stats, err := idx.Sync(ctx, a.files)
			if err != nil {
				return fmt.Errorf("blog: sync index: %w", err)
			}
			a.Logger.Info("index synced",
				zap.String("path", a.Config.IndexPath),
				zap.Int("upserted", stats.Upserted),
				zap.Int("deleted", stats.Deleted))
			a.store = idx
		}
	}

	a.Cache = NewTagCache(a.store, a.Config.CacheTTL)
	a.setupMiddleware()
	a.setupRoutes()
	a.ready = true
	return nil
}

// Start serves until ctx is cancelled. When content comes from ContentDir
// the watcher runs alongside the server.
func (a *App) Start(ctx context.Context) error {
	if err := a.Setup(ctx); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errc := make(chan error, 2)
	go func() {
		a.Logger.Info("serving", zap.String("addr", a.Config.Addr))
		if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
			return
		}
		errc <- nil
	}()
	watching := a.files != nil
	if watching {
		go func() {
			errc <- a.Watch(ctx)
		}()
	}

	var err error
	select {
	case <-ctx.Done():
	case err = <-errc:
	}
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if serr := a.Echo.Shutdown(shutdownCtx); serr != nil && err == nil {
		err = serr
	}
	return err
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.GET("/", handleRootRedirect)
	e.GET("/tags/", a.handleTagIndex)
	e.GET("/tags/:slug/", a.handleTagPage)
	e.GET("/tags/:slug/feed.xml", a.handleTagFeed)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/api/tags", a.handleAPITags)
	e.POST("/preview/drafts/", a.handleDraftToggle)
}

// Refresh re-syncs the index (when enabled) and drops the cached snapshot.
func (a *App) Refresh(ctx context.Context) error {
	if a.index != nil && a.files != nil {
		stats, err := a.index.Sync(ctx, a.files)
		if err != nil {
			return fmt.Errorf("blog: sync index: %w", err)
		}
		a.Logger.Debug("index synced", zap.Int("upserted", stats.Upserted), zap.Int("deleted", stats.Deleted))
	}
	if a.Cache != nil {
		a.Cache.Invalidate()
	}
	return nil
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.index != nil {
		return a.index.Close()
	}
	return nil
}
