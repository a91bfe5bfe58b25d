// internal/head/builder.go
//
// The Builder collects everything that should appear inside a page's
// <head> element.  It is scoped to a single request (or render call).  The
// host handler and form renderer push tags into the builder, then the page
// layout decides where to emit each slice.
//
// Features
// --------
//   - SetTitle              – single <title> tag (last call wins).
//   - Meta, Link, Script    – arbitrary pre-built tags, deduplicated.
//   - Stylesheet, ScriptSrc – build <link>/<script> tags from a URL.
//   - Media                 – push a widget's ordered asset lists.
//   - Render helpers        – concat methods that return template.HTML.
//
// Deduplication keeps the first occurrence, so assets declared by several
// editor widgets on one page load once, in the order first requested.
package head

import (
	"html/template"
	"strings"
	"sync"
)

// Builder is safe for concurrent use; typical use is one goroutine per
// request, so a simple mutex is enough.
type Builder struct {
	mu sync.Mutex

	title string

	metas   []string
	links   []string
	scripts []string

	// seen tracks keys for deduplication.
	seen map[string]struct{}
}

func New() *Builder {
	return &Builder{seen: make(map[string]struct{})}
}

// SetTitle overrides the page <title>.  The last caller wins.
func (b *Builder) SetTitle(t string) {
	b.mu.Lock()
	b.title = t
	b.mu.Unlock()
}

// Title returns a fully formed <title> tag or an empty string.
func (b *Builder) Title() template.HTML {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.title == "" {
		return ""
	}
	return template.HTML("<title>" + template.HTMLEscapeString(b.title) + "</title>")
}

func (b *Builder) Meta(tag string)   { b.add("meta:"+tag, &b.metas, tag) }
func (b *Builder) Link(tag string)   { b.add("link:"+tag, &b.links, tag) }
func (b *Builder) Script(tag string) { b.add("script:"+tag, &b.scripts, tag) }

// Stylesheet adds <link rel="stylesheet"> for href.  Keyed by URL, so the
// same stylesheet never appears twice.
func (b *Builder) Stylesheet(href string) {
	tag := `<link rel="stylesheet" type="text/css" href="` + template.HTMLEscapeString(href) + `">`
	b.add("css:"+href, &b.links, tag)
}

// ScriptSrc adds an external <script src> for src, keyed by URL.
func (b *Builder) ScriptSrc(src string) {
	tag := `<script type="text/javascript" src="` + template.HTMLEscapeString(src) + `"></script>`
	b.add("js:"+src, &b.scripts, tag)
}

// Media adds ordered stylesheet and script URLs.
func (b *Builder) Media(styles, scripts []string) {
	for _, s := range styles {
		b.Stylesheet(s)
	}
	for _, s := range scripts {
		b.ScriptSrc(s)
	}
}

func (b *Builder) add(key string, tgt *[]string, tag string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, dup := b.seen[key]; dup {
		return
	}
	b.seen[key] = struct{}{}
	*tgt = append(*tgt, tag)
}

func (b *Builder) Metas() template.HTML   { return b.concat(&b.metas) }
func (b *Builder) Links() template.HTML   { return b.concat(&b.links) }
func (b *Builder) Scripts() template.HTML { return b.concat(&b.scripts) }

// concat joins pre-escaped tags, one per line.
func (b *Builder) concat(sl *[]string) template.HTML {
	b.mu.Lock()
	defer b.mu.Unlock()
	return template.HTML(strings.Join(*sl, "\n"))
}
