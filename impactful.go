// Package impactful is the content backend for a small publishing site:
// blog posts, a book library, a video gallery and a founder profile, with
// an admin dashboard for editing them.
//
// Users provide their own templ templates via the ViewFuncs struct, and
// impactful handles the handler logic, middleware, storage and database.
package impactful

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/abdondismas0-hub/impactful/media"
)

// ViewFuncs holds the templ components the handlers render. Public views
// receive nil or empty values when the database is unavailable and must
// still render.
type ViewFuncs struct {
	Home           func(site Site, page HomePage) templ.Component
	Posts          func(site Site, posts []Post) templ.Component
	Post           func(site Site, post *Post) templ.Component
	Library        func(site Site, books []Book) templ.Component
	Videos         func(site Site, videos []Video) templ.Component
	About          func(site Site, about *About) templ.Component
	Search         func(site Site, res SearchResults) templ.Component
	Contact        func(site Site) templ.Component
	AdminLogin     func(showError bool, csrfToken string) templ.Component
	AdminDashboard func(d Dashboard, csrfToken string) templ.Component
	AdminAbout     func(about About, message, csrfToken string) templ.Component
	NotFound       func() templ.Component
	ServerError    func() templ.Component
}

// App wires together the store, media backend, services, handlers and
// middleware.
type App struct {
	Config    Config
	Echo      *echo.Echo
	Store     *Store
	Media     media.Store
	Cache     *SnapshotCache
	Reader    *Reader
	Publisher *Publisher
	Accounts  *Accounts
	Views     ViewFuncs

	loginLimiter *LoginLimiter
	customRoutes []func(*App)
	staticDir    string
	ready        bool
}

// New creates an App with the given configuration and view functions.
func New(cfg Config, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     views,
		staticDir: "static",
	}
	a.Echo.HideBanner = true

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Site returns the metadata passed to public views.
func (a *App) Site() Site {
	return Site{Name: a.Config.Name, URL: a.Config.URL, Description: a.Config.Description}
}

// Init opens the database, seeds the singleton rows, selects the media
// backend and registers middleware and routes. Start calls it when needed;
// tests call it directly and drive a.Echo through httptest.
func (a *App) Init(ctx context.Context) error {
	if a.ready {
		return nil
	}
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("impactful: SessionSecret is required")
	}
	logger := a.Echo.Logger

	store, err := NewStore(a.Config.DatabaseURL)
	if err != nil {
		return fmt.Errorf("impactful: init store: %w", err)
	}
	a.Store = store

	hash, err := HashPassword(a.Config.SeedAdminPassword)
	if err != nil {
		return fmt.Errorf("impactful: hash seed password: %w", err)
	}
	seeded, err := store.Seed(ctx, a.Config.SeedAdminUsername, hash)
	if err != nil {
		return fmt.Errorf("impactful: %w", err)
	}
	if seeded.AdminCreated {
		logger.Infof("created admin account %q", a.Config.SeedAdminUsername)
		if a.Config.SeedAdminPassword == DefaultAdminPassword {
			logger.Warnf("admin account %q uses the default password; change it from the dashboard", a.Config.SeedAdminUsername)
		}
	}

	if a.Media == nil {
		backend, err := media.Select(ctx, a.Config.MediaConfig(), logger)
		if err != nil {
			return fmt.Errorf("impactful: %w", err)
		}
		a.Media = backend
	}
	logger.Infof("media backend: %s", a.Media.Name())

	a.Cache = NewSnapshotCache(a.Config.CacheTTL)
	a.Reader = NewReader(store, a.Cache, logger)
	a.Publisher = NewPublisher(store, a.Media, logger, PublisherOptions{
		UploadDir:     a.Config.UploadDir,
		Cache:         a.Cache,
		ImageMaxWidth: a.Config.ImageMaxWidth,
	})
	a.Accounts = NewAccounts(store)
	a.loginLimiter = NewLoginLimiter(5, time.Minute)

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	a.ready = true
	return nil
}

// Start initializes the app if needed and serves HTTP until the server stops.
func (a *App) Start() error {
	if err := a.Init(context.Background()); err != nil {
		return err
	}
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the HTTP server gracefully.
func (a *App) Shutdown(ctx context.Context) error {
	return a.Echo.Shutdown(ctx)
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.Static("/static", a.staticDir)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/healthz", a.handleHealth)

	e.GET("/", a.handleHome)
	e.GET("/posts/", a.handlePosts)
	e.GET("/post/:id/", a.handlePost)
	e.GET("/library/", a.handleLibrary)
	e.GET("/videos/", a.handleVideos)
	e.GET("/about/", a.handleAbout)
	e.GET("/search/", a.handleSearch)
	e.GET("/contact/", a.handleContact)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)

	e.GET(media.DownloadPrefix+":name", a.handleDownload)
	e.GET("/books/:id/download/", a.handleBookDownload)
	e.GET("/videos/:id/watch/", a.handleVideoWatch)

	e.GET("/admin/", a.handleAdmin)
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", handleAdminLogout)

	g := e.Group("/admin", a.requireAdmin)
	g.POST("/posts/", a.handleAdminCreatePost)
	g.POST("/posts/:id/", a.handleAdminUpdatePost)
	g.DELETE("/posts/:id/", a.handleAdminDeletePost)
	g.POST("/posts/:id/delete/", a.handleAdminDeletePost)
	g.POST("/books/", a.handleAdminCreateBook)
	g.POST("/books/:id/", a.handleAdminUpdateBook)
	g.DELETE("/books/:id/", a.handleAdminDeleteBook)
	g.POST("/books/:id/delete/", a.handleAdminDeleteBook)
	g.POST("/videos/", a.handleAdminCreateVideo)
	g.POST("/videos/:id/", a.handleAdminUpdateVideo)
	g.DELETE("/videos/:id/", a.handleAdminDeleteVideo)
	g.POST("/videos/:id/delete/", a.handleAdminDeleteVideo)
	g.GET("/about/", a.handleAdminAbout)
	g.POST("/about/", a.handleAdminSaveAbout)
	g.POST("/password/", a.handleAdminPassword)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.loginLimiter != nil {
		a.loginLimiter.Stop()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
