// internal/view/render.go
//
// View engine: template lookup across layered sources, func-map injection,
// and an LRU of parsed *template.Template* sets.
//
// Public helpers
// --------------
//   - Render         – write rendered HTML to an io.Writer (pages).
//   - RenderToString – return template.HTML (widgets, fragments).
//
// Lookup precedence (first hit wins) follows the order of the sources passed
// to New.  A typical host passes:
//
//  1. os.DirFS(<site template dir>)  – operator overrides
//  2. an embedded page FS            – the host's own pages
//  3. editor.Templates()             – widget defaults
//
// Template IDs are slash paths without extension, e.g.
// "codemirror/javascript".  All *.html files in the directory of the winning
// file are parsed as one set, so sub-templates ({{ template "row" . }}) work.
//
// Concurrent first renders of the same ID parse once (singleflight).
//
// Style
// -----
// • Oxford commas, two spaces after periods.

package view

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"maps"
	"path"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/yanizio/cmwidget/internal/cache"
	"github.com/yanizio/cmwidget/internal/metrics"
)

// cacheSize bounds parsed template sets; tweak when perf-testing.
const cacheSize = 256

// Engine renders templates found in an ordered list of sources.
type Engine struct {
	sources []fs.FS
	funcs   template.FuncMap
	sets    *cache.LRU
	sfg     singleflight.Group
}

// New builds an Engine.  funcs is merged over the built-in helpers (dict)
// and may be nil.
func New(funcs template.FuncMap, sources ...fs.FS) *Engine {
	fm := template.FuncMap{"dict": dict}
	maps.Copy(fm, funcs)
	return &Engine{
		sources: sources,
		funcs:   fm,
		sets:    cache.New(cacheSize),
	}
}

//
// public helpers
//

// Render executes the template id and streams it to w.
func (e *Engine) Render(w io.Writer, id string, data any) error {
	t, err := e.load(id)
	if err != nil {
		return err
	}
	return t.ExecuteTemplate(w, execName(t, id), data)
}

// RenderToString executes and returns HTML.  It mirrors Render, but writes to
// a buffer first so a failed execution never leaks partial markup.
func (e *Engine) RenderToString(id string, data any) (template.HTML, error) {
	t, err := e.load(id)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, execName(t, id), data); err != nil {
		return "", fmt.Errorf("view: execute %q: %w", id, err)
	}
	return template.HTML(buf.String()), nil
}

// Reload drops every parsed set so the next render re-reads the sources.
func (e *Engine) Reload() { e.sets.Purge() }

//
// internal: load
//

// load returns the cached set for id or parses it from the first source
// that contains "<id>.html".
func (e *Engine) load(id string) (*template.Template, error) {
	if v, ok := e.sets.Get(id); ok {
		return v.(*template.Template), nil
	}

	v, err, _ := e.sfg.Do(id, func() (any, error) {
		if v, ok := e.sets.Get(id); ok {
			return v, nil
		}

		file := id + ".html"
		for i, src := range e.sources {
			if _, err := fs.Stat(src, file); err != nil {
				continue
			}
			pattern := path.Join(path.Dir(file), "*.html")
			t, err := template.New(path.Base(id)).Funcs(e.funcs).ParseFS(src, pattern)
			if err != nil {
				return nil, fmt.Errorf("view: parse %q: %w", id, err)
			}
			e.sets.Add(id, t)
			metrics.TemplateParseTotal.Inc()
			zap.S().Debugw("template set parsed", "id", id, "source", i)
			return t, nil
		}
		return nil, fmt.Errorf("view: template %q: %w", id, fs.ErrNotExist)
	})
	if err != nil {
		return nil, err
	}
	return v.(*template.Template), nil
}

//
// helpers
//

// execName picks the template name to execute.
//
// Priority:
//  1. If the set has "<base>.html" (file-based template), run that.
//  2. Otherwise, fall back to "<base>" (root template defined via define).
func execName(t *template.Template, id string) string {
	base := path.Base(id)
	if tmpl := t.Lookup(base + ".html"); tmpl != nil {
		return base + ".html"
	}
	return base
}

// dict builds a map in templates: {{ dict "k" 1 "k2" "v" }}.
func dict(kv ...any) map[string]any {
	m := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, _ := kv[i].(string)
		m[key] = kv[i+1]
	}
	return m
}
