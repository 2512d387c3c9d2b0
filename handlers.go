package folio

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

func (a *App) handleHome(c echo.Context) error {
	snap := a.Cache.Snapshot(c.Request().Context())
	return Render(c, a.Views.Home(a.Config.Site(), snap))
}

func (a *App) handleBlog(c echo.Context) error {
	snap := a.Cache.Snapshot(c.Request().Context())
	return Render(c, a.Views.Blog(a.Config.Site(), snap.Posts))
}

func (a *App) handlePost(c echo.Context) error {
	post, err := a.Cache.Post(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		}
		return err
	}
	if wantsPartial(c) {
		return Render(c, a.Views.PostPartial(post))
	}
	return Render(c, a.Views.Post(a.Config.Site(), post))
}

func (a *App) handleGallery(c echo.Context) error {
	snap := a.Cache.Snapshot(c.Request().Context())
	return Render(c, a.Views.Gallery(a.Config.Site(), snap.Photos))
}

func (a *App) handlePhoto(c echo.Context) error {
	photo, err := a.Cache.Photo(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		}
		return err
	}
	if wantsPartial(c) {
		return Render(c, a.Views.PhotoPartial(photo))
	}
	return Render(c, a.Views.Photo(a.Config.Site(), photo))
}

func (a *App) handlePublications(c echo.Context) error {
	snap := a.Cache.Snapshot(c.Request().Context())
	return Render(c, a.Views.Publications(a.Config.Site(), snap.Publications))
}

func (a *App) handleSitemap(c echo.Context) error {
	return a.renderSitemap(c, a.Cache.Snapshot(c.Request().Context()))
}

func (a *App) handleFeed(c echo.Context) error {
	return a.renderRSS(c, a.Cache.Snapshot(c.Request().Context()).Posts)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		_ = RenderStatus(c, code, a.Views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
