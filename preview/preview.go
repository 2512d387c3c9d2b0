// Package preview is a minimal static file server for looking at a built
// site locally. It maps request paths straight onto files under a root
// directory: no directory listing, no ranges, no compression, no caching
// headers.
package preview

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

// IndexFile is served for requests to "/".
const IndexFile = "index.html"

// DefaultContentType is used for extensions missing from the table.
const DefaultContentType = "application/octet-stream"

var mimeTypes = map[string]string{
	".html": "text/html",
	".js":   "text/javascript",
	".css":  "text/css",
	".json": "application/json",
	".png":  "image/png",
	".jpg":  "image/jpg",
	".gif":  "image/gif",
	".pdf":  "application/pdf",
	".ico":  "image/x-icon",
}

// ContentType returns the MIME type for name's extension, matched case
// insensitively.
func ContentType(name string) string {
	if ct, ok := mimeTypes[strings.ToLower(path.Ext(name))]; ok {
		return ct
	}
	return DefaultContentType
}

// Resolve maps a URL path to a file path under root. The path is cleaned as
// if rooted at "/", so ".." segments cannot leave root.
func Resolve(root, urlPath string) string {
	p := path.Clean("/" + urlPath)
	if p == "/" {
		p = "/" + IndexFile
	}
	return filepath.Join(root, filepath.FromSlash(p))
}

// Handler serves files under root.
func Handler(root string, logger echo.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		logger.Infof("request received: %s", req.URL.RequestURI())

		file := Resolve(root, req.URL.Path)
		content, err := os.ReadFile(file)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				logger.Infof("file not found: %s", file)
				return c.String(http.StatusNotFound, "404 Not Found")
			}
			code := errorCode(err)
			logger.Errorf("server error: %s", code)
			return c.String(http.StatusInternalServerError, "Server Error: "+code)
		}
		return c.Blob(http.StatusOK, ContentType(file), content)
	}
}

// New returns an Echo instance that serves root for every path and method.
// It deliberately has no middleware.
func New(root string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Logger = log.New("preview")
	e.Logger.SetLevel(log.INFO)
	h := Handler(root, e.Logger)
	e.Any("/", h)
	e.Any("/*", h)
	return e
}
