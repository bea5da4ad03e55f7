// Package policydesk is a content site for government-policy articles and
// static legal pages, built with Go, Echo, and templ.
//
// Users provide their own templ templates via the ViewFuncs struct, and
// policydesk handles normalization of article records, handler logic,
// middleware, and database operations.
package policydesk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/eringen/policydesk/content"
)

// ViewFuncs holds user-provided templ components that the framework calls
// when rendering pages.
type ViewFuncs struct {
	Home           func(site SiteConfig, articles []ArticleView, category string, categories []string) templ.Component
	Article        func(site SiteConfig, article ArticleView, related templ.Component) templ.Component
	RelatedList    func(articles []ArticleView) templ.Component
	Page           func(site SiteConfig, page StaticPage) templ.Component
	AdminLogin     func(showError bool, csrfToken string) templ.Component
	AdminDashboard func(articles []ArticleView, message string, csrfToken string) templ.Component
	AdminForm      func(article Article, csrfToken string) templ.Component
	AdminImages    func(images []Image, csrfToken string) templ.Component
	NotFound       func() templ.Component
	ServerError    func() templ.Component
}

// App is the central policydesk application. It wires together the store,
// cache, normalization pipeline, handlers, middleware, and templates.
type App struct {
	Config    SiteConfig
	Echo      *echo.Echo
	Store     *Store
	Cache     *ArticleCache
	Pages     *Pages
	Views     ViewFuncs
	Logger    *zap.Logger
	Presenter *Presenter

	ids        *content.IDGenerator
	authors    *content.AuthorAssigner
	fabricator *content.Fabricator
	idSource   io.Reader
	rng        content.Rand

	loginLimiter *LoginLimiter
	customRoutes []func(*App)
	staticDir    string
	ownsStore    bool
	initialized  bool
}

// New creates a new policydesk App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     views,
		staticDir: "public",
	}
	a.Echo.HideBanner = true

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Init opens the store, loads pages, and registers middleware and routes.
// Start calls it; tests call it directly to serve through httptest.
func (a *App) Init() error {
	if a.initialized {
		return nil
	}
	if err := a.Config.Validate(); err != nil {
		return fmt.Errorf("policydesk: %w", err)
	}

	if a.Logger == nil {
		logger, err := NewLogger(a.Config.LogMode)
		if err != nil {
			return fmt.Errorf("policydesk: init logger: %w", err)
		}
		a.Logger = logger
	}

	if a.Store == nil {
		store, err := NewStore(a.Config.DatabasePath)
		if err != nil {
			return fmt.Errorf("policydesk: init store: %w", err)
		}
		a.Store = store
		a.ownsStore = true
	}
	a.Cache = NewArticleCache(a.Store, a.Config.ArticleCacheTTL)

	pages, err := NewPages(a.Config.PagesDir, a.Logger)
	if err != nil {
		return err
	}
	a.Pages = pages

	dates := content.NewDateFormatter(a.Config.Locale, a.Config.Location(), a.Logger.Named("content"))
	a.Presenter = NewPresenter(dates)
	a.ids = content.NewIDGenerator(a.idSource)
	a.authors = content.NewAuthorAssigner(a.rng)
	a.fabricator = content.NewFabricator(a.ids, a.authors, a.rng, nil)

	a.loginLimiter = NewLoginLimiter(5, time.Minute)

	if a.Config.SeedOnEmpty > 0 {
		if err := a.seedIfEmpty(a.Config.SeedOnEmpty); err != nil {
			return fmt.Errorf("policydesk: seed: %w", err)
		}
	}

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}

	a.initialized = true
	return nil
}

// Start initializes the app and serves until the server stops.
func (a *App) Start() error {
	if err := a.Init(); err != nil {
		return err
	}
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Run serves HTTP and watches the pages directory until ctx is done, then
// shuts the server down gracefully.
func (a *App) Run(ctx context.Context) error {
	if err := a.Init(); err != nil {
		return err
	}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Logger.Info("listening", zap.String("addr", a.Config.Addr))
		if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return a.Pages.Watch(ctx)
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return a.Echo.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (a *App) setupRoutes() {
	e := a.Echo

	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	embeddedHandler := http.FileServer(http.FS(embeddedFS))
	e.GET("/public/viewport-gate.js", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))

	e.Static("/public", a.staticDir)
	e.GET("/robots.txt", a.handleRobots)
	e.GET(content.PlaceholderCard, a.placeholderHandler("placeholder-card.jpg", placeholderCard))
	e.GET(content.PlaceholderThumb, a.placeholderHandler("placeholder-thumb.jpg", placeholderThumb))

	// Public routes
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/", a.handleHome)
	e.GET("/articles", handleArticlesRedirect)
	e.GET("/articles/:slug/", a.handleArticle)
	e.GET("/fragments/related/:slug/", a.handleRelatedFragment)
	e.GET("/pages/:name/", a.handlePage)

	// Admin routes
	e.GET("/admin/", a.handleAdmin)
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", handleAdminLogout)
	e.GET("/admin/new/", a.handleAdminNew)
	e.GET("/admin/article/:slug/", a.handleAdminArticle)
	e.POST("/admin/save/", a.handleAdminSave)
	e.DELETE("/admin/article/:slug/", a.handleAdminDelete)
	e.POST("/admin/seed/", a.handleAdminSeed)
	e.GET("/admin/images/", a.handleImageList)
	e.POST("/admin/images/upload/", a.handleImageUpload)
	e.DELETE("/admin/images/:filename/", a.handleImageDelete)
}

// seedIfEmpty fabricates n placeholder articles when the store has none.
func (a *App) seedIfEmpty(n int) error {
	existing, err := a.Store.ListAllArticles()
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	_, err = a.Seed(n)
	return err
}

// Seed fabricates and stores n placeholder articles.
func (a *App) Seed(n int) ([]Article, error) {
	records := a.fabricator.Records(n)
	articles := make([]Article, len(records))
	for i, r := range records {
		articles[i] = ArticleFromRecord(r)
	}
	if err := a.Store.SaveArticles(articles); err != nil {
		return nil, err
	}
	a.Cache.Invalidate()
	a.Logger.Info("seeded articles", zap.Int("count", n))
	return articles, nil
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	var errs []error
	if a.loginLimiter != nil {
		a.loginLimiter.Stop()
	}
	if a.Store != nil && a.ownsStore {
		errs = append(errs, a.Store.Close())
	}
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
	return errors.Join(errs...)
}
