// Package markdown renders post bodies to HTML as templ components.
package markdown

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

const extensions = parser.CommonExtensions | parser.AutoHeadingIDs | parser.NoEmptyLineBeforeBlock

// Raw HTML in post bodies is dropped rather than passed through, and links
// with a scheme other than http, https, ftp or mailto are not linked.
const flags = html.CommonFlags | html.HrefTargetBlank | html.NofollowLinks | html.Safelink |
	html.SkipHTML | html.LazyLoadImages

// Markdown returns a templ.Component that renders md as HTML.
func Markdown(content string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		RenderMarkdown(&buf, content)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// RenderMarkdown writes the HTML representation of md to buf.
func RenderMarkdown(buf *bytes.Buffer, md string) {
	// Parsers keep per-document state, so each render gets its own.
	p := parser.NewWithExtensions(extensions)
	r := html.NewRenderer(html.RendererOptions{
		Flags:          flags,
		RenderNodeHook: renderCodeBlock,
	})
	buf.Write(markdown.ToHTML([]byte(strings.TrimSpace(md)), p, r))
}

// renderCodeBlock wraps fenced code that names a language in a badge.
func renderCodeBlock(w io.Writer, node ast.Node, entering bool) (ast.WalkStatus, bool) {
	cb, ok := node.(*ast.CodeBlock)
	if !ok || !entering {
		return ast.GoToNext, false
	}
	lang := strings.TrimSpace(strings.SplitN(string(cb.Info), " ", 2)[0])
	if lang == "" {
		io.WriteString(w, `<pre class="code-block"><code>`)
		html.EscapeHTML(w, cb.Literal)
		io.WriteString(w, "</code></pre>\n")
		return ast.GoToNext, true
	}
	var l bytes.Buffer
	html.EscapeHTML(&l, []byte(lang))
	io.WriteString(w, `<div class="code-block-wrapper"><span class="code-lang code-lang-`+l.String()+`">`+l.String()+`</span>`)
	io.WriteString(w, `<pre class="code-block"><code class="language-`+l.String()+`">`)
	html.EscapeHTML(w, cb.Literal)
	io.WriteString(w, "</code></pre></div>\n")
	return ast.GoToNext, true
}
