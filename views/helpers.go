package views

import (
	"bytes"
	"html/template"
	"strings"
	"time"

	"github.com/eringen/folio"
	"github.com/eringen/folio/markdown"
)

var funcs = template.FuncMap{
	"markdown":   renderMarkdown,
	"formatDate": folio.FormatDate,
	"imageSrc":   imageSrc,
	"year":       func() int { return time.Now().Year() },
	"authorName": author,
}

// renderMarkdown renders a post body. The renderer drops raw HTML and unsafe
// link schemes, so its output is trusted.
func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	markdown.RenderMarkdown(&buf, md)
	return template.HTML(buf.String())
}

// imageSrc lets photo sources through html/template's URL filter. Besides
// http(s) and site-relative URLs it admits data:image URIs, which is how
// photos are stored when no image host accepted an upload.
func imageSrc(src string) template.URL {
	switch {
	case strings.HasPrefix(src, "https://"),
		strings.HasPrefix(src, "http://"),
		strings.HasPrefix(src, "/") && !strings.HasPrefix(src, "//"),
		strings.HasPrefix(src, "data:image/"):
		return template.URL(src)
	}
	return template.URL("#")
}
