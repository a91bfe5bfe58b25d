// internal/preview/preview.go
//
// Server-side syntax highlighting for code fields.
//
// Context
//   An editor widget only becomes interactive once CodeMirror runs in the
//   browser.  For clients without JavaScript the form renderer appends a
//   <noscript> block holding a highlighted, read-only copy of the value.
//   Highlighting is done with chroma; the lexer is picked from the CodeMirror
//   mode name.
//
//------------------------------------------------------------------------------

package preview

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// DefaultStyle is used when New receives an empty or unknown style name.
const DefaultStyle = "github"

// lexerNames maps CodeMirror mode names (and the composite MIME types the
// editor accepts) to chroma lexer names.  Unlisted modes are looked up
// verbatim.
var lexerNames = map[string]string{
	"text/html": "html",
	"htmlmixed": "html",
	"clike":     "c",
	"shell":     "bash",
	"gfm":       "markdown",
	"rst":       "restructuredtext",
}

// LexerName returns the chroma lexer name for a CodeMirror mode.
func LexerName(mode string) string {
	if n, ok := lexerNames[mode]; ok {
		return n
	}
	return mode
}

// Highlighter renders inline-styled HTML.  It is safe for concurrent use.
type Highlighter struct {
	formatter *chromahtml.Formatter
	style     *chroma.Style
}

// New returns a Highlighter using the named chroma style.
func New(styleName string) *Highlighter {
	if styleName == "" {
		styleName = DefaultStyle
	}
	style := styles.Get(styleName)
	if style == nil {
		style = styles.Fallback
	}
	return &Highlighter{
		formatter: chromahtml.New(chromahtml.WithClasses(false), chromahtml.TabWidth(4)),
		style:     style,
	}
}

// Code highlights code for mode and returns a <pre> block.
func (h *Highlighter) Code(mode, code string) (template.HTML, error) {
	lexer := lexers.Get(LexerName(mode))
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	it, err := lexer.Tokenise(nil, code)
	if err != nil {
		return "", fmt.Errorf("preview: tokenise %s: %w", mode, err)
	}
	var buf bytes.Buffer
	if err := h.formatter.Format(&buf, h.style, it); err != nil {
		return "", fmt.Errorf("preview: format %s: %w", mode, err)
	}
	return template.HTML(buf.String()), nil
}

// Noscript wraps Code in a <noscript> element tagged with the editor element
// id so themes can style it next to the textarea.
func (h *Highlighter) Noscript(id, mode, code string) (template.HTML, error) {
	body, err := h.Code(mode, code)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(`<noscript class="code-preview" data-for="`)
	b.WriteString(template.HTMLEscapeString(id))
	b.WriteString(`">`)
	b.WriteString(string(body))
	b.WriteString(`</noscript>`)
	return template.HTML(b.String()), nil
}
