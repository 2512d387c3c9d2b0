package folio

import "github.com/eringen/folio/content"

// Site is the public part of SiteConfig that templates render.
type Site struct {
	Name        string
	URL         string
	Description string
	Author      string
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
}

// LoginPage is the data behind the admin sign-in page.
type LoginPage struct {
	// Popup selects the popup sign-in flow; otherwise the button navigates
	// to the provider in the current window.
	Popup bool
	Error string
}

// Dashboard is the data behind the admin dashboard.
type Dashboard struct {
	Email        string
	Posts        []content.Post
	Photos       []content.Photo
	Publications []content.Publication
	Notice       string
	CSRFToken    string
	// Providers lists the upload destinations in the order they are tried.
	Providers []string
	// ReadOnly is set when no content store is configured.
	ReadOnly bool
}
