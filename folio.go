// Package folio is a personal portfolio site built with Go and Echo: a home
// page, blog, photo gallery and publications listing, plus an admin
// dashboard behind Google sign-in.
//
// Templates are supplied through the ViewFuncs struct, and folio handles the
// handler logic, middleware, content storage and image uploads.
package folio

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/eringen/folio/content"
	"github.com/eringen/folio/upload"
)

// ViewFuncs holds the templ components the app calls when rendering pages.
// This is the inversion-of-control mechanism that keeps markup out of the
// handlers.
type ViewFuncs struct {
	Home           func(site Site, snap Snapshot) templ.Component
	Blog           func(site Site, posts []content.Post) templ.Component
	Post           func(site Site, post content.Post) templ.Component
	PostPartial    func(post content.Post) templ.Component
	Gallery        func(site Site, photos []content.Photo) templ.Component
	Photo          func(site Site, photo content.Photo) templ.Component
	PhotoPartial   func(photo content.Photo) templ.Component
	Publications   func(site Site, pubs []content.Publication) templ.Component
	AdminLogin     func(page LoginPage) templ.Component
	AdminDenied    func(email, csrfToken string) templ.Component
	AdminDisabled  func() templ.Component
	AdminDashboard func(dash Dashboard) templ.Component
	SignInComplete func() templ.Component
	NotFound       func() templ.Component
	ServerError    func() templ.Component
}

// App is the central folio application. It wires together the store,
// cache, identity provider, uploader, handlers and middleware.
type App struct {
	Config   SiteConfig
	Echo     *echo.Echo
	Store    content.Store // nil when the store is disabled
	Cache    *ContentCache
	Views    ViewFuncs
	Identity IdentityProvider // nil when sign-in is disabled
	Uploader *upload.Chain

	allowed       AllowList
	signInLimiter *RateLimiter
	seed          content.Seed
	customRoutes  []func(*App)
	ownsStore     bool
}

// New creates a new App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:  cfg,
		Echo:    echo.New(),
		Views:   views,
		allowed: NewAllowList(cfg.AllowedAdmins),
		seed:    content.DefaultSeed(),
	}
	a.Echo.HideBanner = true

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Setup opens the store, builds the cache, sign-in and upload components,
// and registers middleware and routes. Start calls it; tests call it
// directly and drive a.Echo.
func (a *App) Setup(ctx context.Context) error {
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("folio: SessionSecret is required")
	}

	if a.Store == nil {
		st, err := content.Open(ctx, a.Config.Store)
		switch {
		case errors.Is(err, content.ErrDisabled):
			a.Echo.Logger.Info("content store disabled, serving seed content")
		case err != nil:
			return fmt.Errorf("folio: open store: %w", err)
		default:
			a.Store = st
			a.ownsStore = true
		}
	}

	a.Cache = NewContentCache(a.Store, a.seed, a.Config.CacheTTL, a.Echo.Logger)

	a.signInLimiter = NewRateLimiter(5, time.Minute)

	if a.Identity == nil && a.Config.Google.ClientID != "" {
		a.Identity = NewGoogleIdentity(a.Config.Google)
	}
	if a.Identity == nil {
		a.Echo.Logger.Warn("no identity provider configured, admin sign-in disabled")
	} else if len(a.allowed) == 0 {
		a.Echo.Logger.Warn("allowed_admins is empty, nobody can use the admin dashboard")
	}

	if a.Uploader == nil {
		chain, err := a.newUploader()
		if err != nil {
			return fmt.Errorf("folio: init uploader: %w", err)
		}
		a.Uploader = chain
	}

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

// Start runs Setup and then serves until the server is shut down.
func (a *App) Start(ctx context.Context) error {
	if err := a.Setup(ctx); err != nil {
		return err
	}
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully and releases resources.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.Echo.Shutdown(ctx)
	return errors.Join(err, a.Close())
}

func (a *App) newUploader() (*upload.Chain, error) {
	var providers []upload.Provider
	if a.Config.Upload.S3.Enabled() {
		s3, err := upload.NewS3Provider(a.Config.Upload.S3)
		if err != nil {
			return nil, err
		}
		providers = append(providers, s3)
	}
	if !a.Config.Upload.DisableHosts {
		client := &http.Client{Timeout: a.Config.Upload.Timeout}
		providers = append(providers, upload.DefaultProviders(client)...)
	}
	return upload.NewChain(providers,
		upload.WithLogger(a.Echo.Logger),
		upload.WithDataURIFallback(!a.Config.Upload.DisableDataURI),
	), nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.StaticFS("/assets", Assets())
	e.GET("/favicon.svg", handleAsset("favicon.svg"))
	e.GET("/robots.txt", handleAsset("robots.txt"))

	// Public routes
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/", a.handleHome)
	e.GET("/blog/", a.handleBlog)
	e.GET("/blog/:id/", a.handlePost)
	e.GET("/gallery/", a.handleGallery)
	e.GET("/gallery/:id/", a.handlePhoto)
	e.GET("/publications/", a.handlePublications)

	// Sign-in
	e.GET("/admin/", a.handleAdmin)
	e.GET("/admin/login/", a.handleSignIn)
	e.GET("/admin/callback/", a.handleCallback)
	e.POST("/admin/logout/", handleSignOut)

	// Admin writes
	e.POST("/admin/posts/", a.handleCreatePost, a.requireAdmin)
	e.POST("/admin/posts/:id/delete/", a.handleDeletePost, a.requireAdmin)
	e.POST("/admin/photos/", a.handleCreatePhoto, a.requireAdmin)
	e.POST("/admin/photos/upload/", a.handleUploadPhoto, a.requireAdmin, middleware.BodyLimit(uploadBodyLimit))
	e.POST("/admin/photos/:id/delete/", a.handleDeletePhoto, a.requireAdmin)
	e.POST("/admin/publications/", a.handleCreatePublication, a.requireAdmin)
	e.POST("/admin/publications/:id/delete/", a.handleDeletePublication, a.requireAdmin)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.signInLimiter != nil {
		a.signInLimiter.Stop()
	}
	if a.Store != nil && a.ownsStore {
		return a.Store.Close()
	}
	return nil
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
