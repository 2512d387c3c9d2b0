package folio

import (
	"embed"
	"io/fs"

	"github.com/labstack/echo/v4"
)

// EmbeddedAssets contains the static files shipped with the site:
// site.css, site.js, favicon.svg and robots.txt.
//
//go:embed assets/*
var EmbeddedAssets embed.FS

// Assets returns the embedded assets rooted at the assets directory.
func Assets() fs.FS {
	sub, err := fs.Sub(EmbeddedAssets, "assets")
	if err != nil {
		panic(err)
	}
	return sub
}

func handleAsset(name string) echo.HandlerFunc {
	return echo.StaticFileHandler(name, Assets())
}
