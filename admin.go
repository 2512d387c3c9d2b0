package folio

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/folio/content"
)

// Dashboard notices. Success notices travel in the redirect as a key so the
// page never echoes request text back.
const (
	noticeInvalid  = "Please fill in all required fields."
	noticeFailed   = "Something went wrong. Please try again."
	noticeReadOnly = "The content store is disabled, so changes cannot be saved."
)

var notices = map[string]string{
	"post-created":        "Post published.",
	"post-deleted":        "Post deleted.",
	"photo-created":       "Photo added.",
	"photo-uploaded":      "Photo uploaded.",
	"photo-inline":        "No image host accepted the file, so the photo is stored inline.",
	"photo-deleted":       "Photo deleted.",
	"publication-created": "Publication added.",
	"publication-deleted": "Publication deleted.",
}

func formValue(c echo.Context, name string) string {
	return strings.TrimSpace(c.FormValue(name))
}

func (a *App) handleCreatePost(c echo.Context) error {
	post := content.Post{
		Title:    formValue(c, "title"),
		Date:     formValue(c, "date"),
		Excerpt:  formValue(c, "excerpt"),
		Markdown: formValue(c, "markdown"),
	}
	return a.write(c, "post-created", func(ctx context.Context, st content.Store) error {
		_, err := st.CreatePost(ctx, post)
		return err
	})
}

func (a *App) handleDeletePost(c echo.Context) error {
	return a.write(c, "post-deleted", func(ctx context.Context, st content.Store) error {
		return st.DeletePost(ctx, c.Param("id"))
	})
}

func (a *App) handleCreatePhoto(c echo.Context) error {
	photo := content.Photo{
		Src:         formValue(c, "src"),
		Description: formValue(c, "description"),
	}
	return a.write(c, "photo-created", func(ctx context.Context, st content.Store) error {
		_, err := st.CreatePhoto(ctx, photo)
		return err
	})
}

func (a *App) handleDeletePhoto(c echo.Context) error {
	return a.write(c, "photo-deleted", func(ctx context.Context, st content.Store) error {
		return st.DeletePhoto(ctx, c.Param("id"))
	})
}

func (a *App) handleCreatePublication(c echo.Context) error {
	// A year that is not a number is left at zero and fails validation.
	year, _ := strconv.Atoi(formValue(c, "year"))
	pub := content.Publication{
		Title:    formValue(c, "title"),
		Authors:  formValue(c, "authors"),
		Venue:    formValue(c, "venue"),
		Year:     year,
		Abstract: formValue(c, "abstract"),
		PDFURL:   formValue(c, "pdfUrl"),
		DOIURL:   formValue(c, "doiUrl"),
		CodeURL:  formValue(c, "codeUrl"),
	}
	return a.write(c, "publication-created", func(ctx context.Context, st content.Store) error {
		_, err := st.CreatePublication(ctx, pub)
		return err
	})
}

func (a *App) handleDeletePublication(c echo.Context) error {
	return a.write(c, "publication-deleted", func(ctx context.Context, st content.Store) error {
		return st.DeletePublication(ctx, c.Param("id"))
	})
}

// write runs one store mutation. On success it invalidates the content cache
// and redirects to the dashboard with the notice for key. Failures re-render
// the dashboard with a notice; nothing is retried.
func (a *App) write(c echo.Context, key string, fn func(ctx context.Context, st content.Store) error) error {
	if a.Store == nil {
		return a.renderDashboard(c, http.StatusServiceUnavailable, noticeReadOnly)
	}
	err := fn(c.Request().Context(), a.Store)
	var invalid *content.ValidationError
	switch {
	case errors.As(err, &invalid):
		return a.renderDashboard(c, http.StatusUnprocessableEntity, noticeInvalid)
	case err != nil:
		c.Logger().Errorf("admin %s: %v", key, err)
		return a.renderDashboard(c, http.StatusInternalServerError, noticeFailed)
	}
	a.Cache.Invalidate()
	return c.Redirect(http.StatusSeeOther, "/admin/?notice="+key)
}

func (a *App) renderDashboard(c echo.Context, code int, notice string) error {
	dash := Dashboard{
		Email:     SessionEmail(c),
		Notice:    notice,
		CSRFToken: CsrfToken(c),
		Providers: a.Uploader.Providers(),
		ReadOnly:  a.Store == nil,
	}
	if a.Store != nil {
		if err := a.loadDashboard(c.Request().Context(), &dash); err != nil {
			c.Logger().Errorf("admin dashboard: %v", err)
			dash.Notice = noticeFailed
		}
	} else if dash.Notice == "" {
		dash.Notice = noticeReadOnly
	}
	return RenderStatus(c, code, a.Views.AdminDashboard(dash))
}

// loadDashboard reads the store directly so the admin always sees its
// latest writes, whatever the cache holds.
func (a *App) loadDashboard(ctx context.Context, dash *Dashboard) error {
	var err error
	if dash.Posts, err = a.Store.ListPosts(ctx); err != nil {
		return err
	}
	if dash.Photos, err = a.Store.ListPhotos(ctx); err != nil {
		return err
	}
	dash.Publications, err = a.Store.ListPublications(ctx)
	return err
}
