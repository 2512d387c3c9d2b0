// Package views holds the site's HTML templates. They are plain html/template
// files embedded in the binary and exposed as templ components, so the app
// can render them through folio.ViewFuncs.
package views

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/a-h/templ"

	"github.com/eringen/folio"
	"github.com/eringen/folio/content"
)

//go:embed templates/*.html
var templateFS embed.FS

// Pages rendered inside the shared layout. Each name is a file under
// templates/ that defines a "content" block.
var pageFiles = []string{
	"home.html",
	"blog.html",
	"post.html",
	"gallery.html",
	"photo.html",
	"publications.html",
	"admin_login.html",
	"admin_denied.html",
	"admin_disabled.html",
	"admin_dashboard.html",
	"signin_complete.html",
	"not_found.html",
	"server_error.html",
}

// Set is a parsed template set, one template tree per page.
type Set struct {
	pages map[string]*template.Template
	site  folio.Site
}

// Parse parses the embedded templates.
func Parse() (*Set, error) {
	base, err := template.New("").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/partials.html")
	if err != nil {
		return nil, fmt.Errorf("views: parse layout: %w", err)
	}
	s := &Set{pages: make(map[string]*template.Template, len(pageFiles))}
	for _, name := range pageFiles {
		t, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("views: clone layout: %w", err)
		}
		if _, err := t.ParseFS(templateFS, "templates/"+name); err != nil {
			return nil, fmt.Errorf("views: parse %s: %w", name, err)
		}
		s.pages[name] = t
	}
	return s, nil
}

// MustParse is like Parse but panics on error.
func MustParse() *Set {
	s, err := Parse()
	if err != nil {
		panic(err)
	}
	return s
}

// page is the data every template receives. Each page fills in the fields it
// renders.
type page struct {
	Site   folio.Site
	Meta   folio.PageMeta
	JSONLD template.JS
	Nav    string

	NoIndex        bool
	SignInComplete bool

	Posts        []content.Post
	Post         content.Post
	Photos       []content.Photo
	Photo        content.Photo
	Publications []content.Publication

	Login folio.LoginPage
	Dash  folio.Dashboard
	Email string
	CSRF  string
}

// component renders block from the named page's template tree. Output is
// buffered so a template error never leaves half a page on the wire.
func (s *Set) component(file, block string, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		t, ok := s.pages[file]
		if !ok {
			return fmt.Errorf("views: unknown page %s", file)
		}
		var buf bytes.Buffer
		if err := t.ExecuteTemplate(&buf, block, data); err != nil {
			return fmt.Errorf("views: render %s: %w", file, err)
		}
		_, err := w.Write(buf.Bytes())
		return err
	})
}

func (s *Set) layout(file string, p page) templ.Component {
	return s.component(file, "layout", p)
}

// Default returns ViewFuncs backed by the embedded templates. site is used
// by the pages whose view function takes no site of its own.
func Default(site folio.Site) folio.ViewFuncs {
	s := MustParse()
	s.site = site
	return s.ViewFuncs()
}

// ViewFuncs returns the app's view functions for this set.
func (s *Set) ViewFuncs() folio.ViewFuncs {
	return folio.ViewFuncs{
		Home:           s.Home,
		Blog:           s.Blog,
		Post:           s.Post,
		PostPartial:    s.PostPartial,
		Gallery:        s.Gallery,
		Photo:          s.Photo,
		PhotoPartial:   s.PhotoPartial,
		Publications:   s.Publications,
		AdminLogin:     s.AdminLogin,
		AdminDenied:    s.AdminDenied,
		AdminDisabled:  s.AdminDisabled,
		AdminDashboard: s.AdminDashboard,
		SignInComplete: s.SignInComplete,
		NotFound:       s.NotFound,
		ServerError:    s.ServerError,
	}
}

func (s *Set) Home(site folio.Site, snap folio.Snapshot) templ.Component {
	return s.layout("home.html", page{
		Site:         site,
		Meta:         meta(site, site.Name, site.Description, folio.BuildURL(site.URL), "website"),
		JSONLD:       template.JS(folio.WebsiteJsonLD(site)),
		Nav:          "home",
		Posts:        latest(snap.Posts, homePosts),
		Photos:       latest(snap.Photos, homePhotos),
		Publications: latest(snap.Publications, homePublications),
	})
}

func (s *Set) Blog(site folio.Site, posts []content.Post) templ.Component {
	return s.layout("blog.html", page{
		Site:  site,
		Meta:  meta(site, "Blog · "+site.Name, "Writing by "+author(site)+".", folio.BuildURL(site.URL, "blog"), "website"),
		Nav:   "blog",
		Posts: posts,
	})
}

func (s *Set) Post(site folio.Site, post content.Post) templ.Component {
	return s.layout("post.html", page{
		Site:   site,
		Meta:   meta(site, post.Title+" · "+site.Name, post.Excerpt, folio.PostURL(site.URL, post), "article"),
		JSONLD: template.JS(folio.BlogPostingJsonLD(post, site)),
		Nav:    "blog",
		Post:   post,
	})
}

func (s *Set) PostPartial(post content.Post) templ.Component {
	return s.component("post.html", "post-body", post)
}

func (s *Set) Gallery(site folio.Site, photos []content.Photo) templ.Component {
	return s.layout("gallery.html", page{
		Site:   site,
		Meta:   meta(site, "Gallery · "+site.Name, "Photographs by "+author(site)+".", folio.BuildURL(site.URL, "gallery"), "website"),
		Nav:    "gallery",
		Photos: photos,
	})
}

func (s *Set) Photo(site folio.Site, photo content.Photo) templ.Component {
	return s.layout("photo.html", page{
		Site:  site,
		Meta:  meta(site, photo.Description+" · "+site.Name, photo.Description, folio.PhotoURL(site.URL, photo), "article"),
		Nav:   "gallery",
		Photo: photo,
	})
}

func (s *Set) PhotoPartial(photo content.Photo) templ.Component {
	return s.component("photo.html", "photo-body", photo)
}

func (s *Set) Publications(site folio.Site, pubs []content.Publication) templ.Component {
	return s.layout("publications.html", page{
		Site:         site,
		Meta:         meta(site, "Publications · "+site.Name, "Papers and talks by "+author(site)+".", folio.BuildURL(site.URL, "publications"), "website"),
		JSONLD:       template.JS(folio.ScholarlyArticleJsonLD(pubs)),
		Nav:          "publications",
		Publications: pubs,
	})
}

func (s *Set) AdminLogin(login folio.LoginPage) templ.Component {
	return s.layout("admin_login.html", page{
		Site:    s.site,
		Meta:    folio.PageMeta{Title: "Sign in"},
		Nav:     "admin",
		NoIndex: true,
		Login:   login,
	})
}

func (s *Set) AdminDenied(email, csrfToken string) templ.Component {
	return s.layout("admin_denied.html", page{
		Site:    s.site,
		Meta:    folio.PageMeta{Title: "Access denied"},
		Nav:     "admin",
		NoIndex: true,
		Email:   email,
		CSRF:    csrfToken,
	})
}

func (s *Set) AdminDisabled() templ.Component {
	return s.layout("admin_disabled.html", page{
		Site:    s.site,
		Meta:    folio.PageMeta{Title: "Sign-in disabled"},
		Nav:     "admin",
		NoIndex: true,
	})
}

func (s *Set) AdminDashboard(dash folio.Dashboard) templ.Component {
	return s.layout("admin_dashboard.html", page{
		Site:    s.site,
		Meta:    folio.PageMeta{Title: "Dashboard"},
		Nav:     "admin",
		NoIndex: true,
		Dash:    dash,
		CSRF:    dash.CSRFToken,
	})
}

func (s *Set) SignInComplete() templ.Component {
	return s.layout("signin_complete.html", page{
		Site:           s.site,
		Meta:           folio.PageMeta{Title: "Signed in"},
		NoIndex:        true,
		SignInComplete: true,
	})
}

func (s *Set) NotFound() templ.Component {
	return s.layout("not_found.html", page{
		Site:    s.site,
		Meta:    folio.PageMeta{Title: "Not found"},
		NoIndex: true,
	})
}

func (s *Set) ServerError() templ.Component {
	return s.layout("server_error.html", page{
		Site:    s.site,
		Meta:    folio.PageMeta{Title: "Server error"},
		NoIndex: true,
	})
}

// How many of each collection the home page previews.
const (
	homePosts        = 3
	homePhotos       = 6
	homePublications = 3
)

func latest[T any](list []T, n int) []T {
	if len(list) > n {
		return list[:n]
	}
	return list
}

func meta(site folio.Site, title, description, url, ogType string) folio.PageMeta {
	if description == "" {
		description = site.Description
	}
	return folio.PageMeta{Title: title, Description: description, URL: url, OGType: ogType}
}

func author(site folio.Site) string {
	if site.Author != "" {
		return site.Author
	}
	return site.Name
}
