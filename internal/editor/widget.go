// internal/editor/widget.go
//
// Editor widget: a <textarea> plus the script that turns it into CodeMirror.
//
// Context
//   A Widget owns one Options record and the Media resolved from it.  Form
//   renderers call Render for markup and Media for the <head> assets.
//
//   Options are exported so callers can adjust a widget after construction
//   (for example switching the mode per request).  Direct field writes do not
//   re-resolve media; call RefreshMedia afterwards, once, after all changes.
//   The Set* helpers normalize and refresh immediately instead.
//
// Workflow
//   •  New fills defaults from Settings, validates, and resolves media, so a
//      misconfigured widget fails at construction, not at render.
//   •  Render writes the textarea, builds Bindings, and runs the
//      "codemirror/javascript" template through the TemplateRenderer.
//   •  Render never mutates the widget and is safe for concurrent use as
//      long as nobody writes Options at the same time.
//
//------------------------------------------------------------------------------

package editor

import (
	"encoding/json"
	"fmt"
	"html"
	"html/template"
	"maps"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/yanizio/cmwidget/internal/metrics"
)

// TemplateID names the init-script template rendered for every widget.
const TemplateID = "codemirror/javascript"

// IDPlaceholder is replaced with the element id in ExtraCSS and ExtraJS.
const IDPlaceholder = "$$id$$"

// TemplateRenderer renders a named template to trusted HTML.  The caller is
// responsible for context-appropriate escaping; *view.Engine implements it.
type TemplateRenderer interface {
	RenderToString(id string, data any) (template.HTML, error)
}

// Bindings is the data handed to the init-script template.  Every value is
// already typed as trusted content so html/template inserts it unchanged.
type Bindings struct {
	ID                      string
	Mode                    template.JS
	Theme                   template.JS
	AdditionalConfiguration template.JS
	AdditionalJS            template.JS
	AdditionalCSS           template.CSS
}

// Widget renders one CodeMirror-backed textarea.
type Widget struct {
	Options

	settings  Settings
	templates TemplateRenderer
	media     Media
}

// New returns a widget with resolved media, or the first configuration error.
func New(s Settings, r TemplateRenderer, opts Options) (*Widget, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: nil template renderer", ErrInvalidConfiguration)
	}
	w := &Widget{
		Options:   opts.clone(),
		settings:  s.withDefaults(),
		templates: r,
	}
	if err := w.RefreshMedia(); err != nil {
		return nil, err
	}
	return w, nil
}

// NewFromProfile starts from the named profile and applies over on top.
func NewFromProfile(s Settings, r TemplateRenderer, profile string, over Options) (*Widget, error) {
	base, err := LookupProfile(profile)
	if err != nil {
		return nil, err
	}
	return New(s, r, base.Overlay(over))
}

// RefreshMedia re-normalizes Options and recomputes Media.  Call it after
// writing Options fields directly.  On error the previous Media is kept.
func (w *Widget) RefreshMedia() error {
	if w.Mode.Name == "" {
		w.Mode = Mode{Name: w.settings.DefaultMode}
	}
	if len(w.Theme) == 0 {
		w.Theme = NormalizeTheme(w.settings.DefaultTheme)
	} else {
		w.Theme = NormalizeTheme(w.Theme...)
	}

	if err := w.Options.Validate(); err != nil {
		metrics.MediaResolveErrorsTotal.WithLabelValues(errorReason(err)).Inc()
		return err
	}
	m, err := Resolve(w.Options, w.settings)
	if err != nil {
		metrics.MediaResolveErrorsTotal.WithLabelValues(errorReason(err)).Inc()
		return err
	}
	w.media = m

	zap.S().Debugw("editor media resolved",
		"mode", w.Mode.Name,
		"theme", w.Theme.String(),
		"scripts", len(m.Scripts),
		"styles", len(m.Styles),
	)
	return nil
}

// Media returns a copy of the last resolved media declaration.
func (w *Widget) Media() Media { return w.media.clone() }

// Settings returns the effective settings, defaults filled in.
func (w *Widget) Settings() Settings { return w.settings }

// SetMode parses v (see ParseMode) and refreshes media.  On error the widget
// keeps its previous mode.
func (w *Widget) SetMode(v any) error {
	m, err := ParseMode(v)
	if err != nil {
		return err
	}
	prev := w.Mode
	w.Mode = m
	if err := w.RefreshMedia(); err != nil {
		w.Mode = prev
		return err
	}
	return nil
}

// SetTheme parses v (see ParseTheme) and refreshes media.
func (w *Widget) SetTheme(v any) error {
	t, err := ParseTheme(v)
	if err != nil {
		return err
	}
	prev := w.Theme
	w.Theme = t
	if err := w.RefreshMedia(); err != nil {
		w.Theme = prev
		return err
	}
	return nil
}

// SetUtilities replaces the utility list and refreshes media.
func (w *Widget) SetUtilities(utilities ...string) error {
	prev := w.Utilities
	w.Utilities = append([]string(nil), utilities...)
	if err := w.RefreshMedia(); err != nil {
		w.Utilities = prev
		return err
	}
	return nil
}

// ElementID returns the id given to the textarea for a field name.
func ElementID(name string) string { return "id_" + name }

// SubstitutePlaceholder replaces every $$id$$ in text with id.
func SubstitutePlaceholder(text, id string) string {
	return strings.ReplaceAll(text, IDPlaceholder, id)
}

// Bindings builds the template data for a field name without rendering.
func (w *Widget) Bindings(name string) (Bindings, error) {
	id := ElementID(name)

	mode, err := json.Marshal(w.Mode)
	if err != nil {
		return Bindings{}, fmt.Errorf("%w: mode: %v", ErrInvalidConfiguration, err)
	}
	theme, err := json.Marshal(w.Theme.String())
	if err != nil {
		return Bindings{}, err
	}

	return Bindings{
		ID:                      id,
		Mode:                    template.JS(mode),
		Theme:                   template.JS(theme),
		AdditionalConfiguration: template.JS(w.Configuration.joinEntries()),
		AdditionalJS:            template.JS(SubstitutePlaceholder(w.ExtraJS, id)),
		AdditionalCSS:           template.CSS(SubstitutePlaceholder(w.ExtraCSS, id)),
	}, nil
}

// Render returns the textarea for name holding value, followed by the
// CodeMirror init script.
func (w *Widget) Render(name, value string) (template.HTML, error) {
	b, err := w.Bindings(name)
	if err != nil {
		return "", err
	}
	snippet, err := w.templates.RenderToString(TemplateID, b)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", TemplateID, err)
	}
	metrics.WidgetRendersTotal.Inc()

	return template.HTML(w.textarea(name, b.ID, value) + "\n" + string(snippet)), nil
}

// textarea writes the plain element.  cols and rows default to 40 and 10;
// id and name cannot be overridden through Attrs.
func (w *Widget) textarea(name, id, value string) string {
	attrs := map[string]string{"cols": "40", "rows": "10"}
	maps.Copy(attrs, w.Attrs)
	delete(attrs, "id")
	delete(attrs, "name")

	var sb strings.Builder
	sb.WriteString(`<textarea id="` + html.EscapeString(id) + `" name="` + html.EscapeString(name) + `"`)
	for _, k := range slices.Sorted(maps.Keys(attrs)) {
		sb.WriteString(` ` + html.EscapeString(k) + `="` + html.EscapeString(attrs[k]) + `"`)
	}
	sb.WriteString(">\n")
	sb.WriteString(html.EscapeString(value))
	sb.WriteString(`</textarea>`)
	return sb.String()
}
