// internal/viewhelpers/helpers.go
//
// Template helpers that embed editor widgets directly in page templates,
// for pages that are not driven by a form definition:
//
//	{{ codeEditor "snippet" .Code "common" }}
//	{{ with editorMedia "common" }}{{ range .Scripts }}…{{ end }}{{ end }}
//
// The helpers render through the same view engine that executes the page,
// so the engine is attached after it is built:
//
//	eh := &viewhelpers.Editors{Settings: s}
//	engine := view.New(viewhelpers.FuncMap(eh), sources...)
//	eh.Renderer = engine
package viewhelpers

import (
	"errors"
	"html/template"

	"github.com/yanizio/cmwidget/internal/editor"
)

// Editors carries what the helpers need.  Renderer must be set before the
// first template using codeEditor executes.
type Editors struct {
	Settings editor.Settings
	Renderer editor.TemplateRenderer
}

// FuncMap returns editor helpers bound to e.
func FuncMap(e *Editors) template.FuncMap {
	return template.FuncMap{
		"codeEditor": func(name, value, profile string) (template.HTML, error) {
			if e.Renderer == nil {
				return "", errors.New("codeEditor: no renderer attached")
			}
			w, err := editor.NewFromProfile(e.Settings, e.Renderer, profile, editor.Options{})
			if err != nil {
				return "", err
			}
			return w.Render(name, value)
		},
		"editorMedia": func(profile string) (editor.Media, error) {
			o, err := editor.LookupProfile(profile)
			if err != nil {
				return editor.Media{}, err
			}
			w, err := editor.New(e.Settings, noRender{}, o)
			if err != nil {
				return editor.Media{}, err
			}
			return w.Media(), nil
		},
	}
}

// noRender satisfies editor.New for media-only lookups.
type noRender struct{}

func (noRender) RenderToString(string, any) (template.HTML, error) {
	return "", errors.New("viewhelpers: media-only widget cannot render")
}
