package folio

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/folio/content"
	"github.com/eringen/folio/media"
	"github.com/eringen/folio/upload"
)

// uploadBodyLimit leaves room for the multipart envelope around a
// media.MaxUploadSize file.
const uploadBodyLimit = "11M"

const (
	noticeTooLarge = "Images must be 10 MB or smaller."
	noticeTooBig   = "Images must be 40 megapixels or smaller."
	noticeNotImage = "That file is not a supported image (JPEG, PNG, GIF or WebP)."
)

// handleUploadPhoto compresses the uploaded image, publishes it through the
// upload chain and records the resulting URL as a new photo.
func (a *App) handleUploadPhoto(c echo.Context) error {
	if a.Store == nil {
		return a.renderDashboard(c, http.StatusServiceUnavailable, noticeReadOnly)
	}

	description := formValue(c, "description")
	file, err := c.FormFile("image")
	if err != nil || description == "" {
		return a.renderDashboard(c, http.StatusUnprocessableEntity, noticeInvalid)
	}
	if file.Size > media.MaxUploadSize {
		return a.renderDashboard(c, http.StatusRequestEntityTooLarge, noticeTooLarge)
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	img, err := media.Compress(src, file.Filename)
	if errors.Is(err, media.ErrTooManyPixels) {
		c.Logger().Warnf("upload %q: %v", file.Filename, err)
		return a.renderDashboard(c, http.StatusRequestEntityTooLarge, noticeTooBig)
	}
	if err != nil {
		c.Logger().Warnf("upload %q: %v", file.Filename, err)
		return a.renderDashboard(c, http.StatusBadRequest, noticeNotImage)
	}
	c.Logger().Infof("compressed %q from %dx%d to %dx%d (%d bytes)",
		file.Filename, img.SourceWidth, img.SourceHeight, img.Width, img.Height, len(img.Data))

	ctx := c.Request().Context()
	res, err := a.Uploader.Upload(ctx, upload.File{
		Name:        img.Name,
		ContentType: img.ContentType(),
		Data:        img.Data,
	})
	if err != nil {
		c.Logger().Errorf("upload %q: %v", file.Filename, err)
		return a.renderDashboard(c, http.StatusBadGateway, noticeFailed)
	}

	key := "photo-uploaded"
	if res.Provider == upload.DataURIProvider {
		key = "photo-inline"
	}
	photo := content.Photo{
		Src:          res.URL,
		Description:  description,
		OriginalName: file.Filename,
	}
	return a.write(c, key, func(ctx context.Context, st content.Store) error {
		if _, err := st.CreatePhoto(ctx, photo); err != nil {
			return fmt.Errorf("save photo from %s: %w", res.Provider, err)
		}
		return nil
	})
}
