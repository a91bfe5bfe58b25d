// components/forms/forms.go
//
// Forms component – serves every registered form as a page with its code
// fields rendered as CodeMirror editors.
//
//	GET  /forms/{component}/{form}            page with the form
//	POST /forms/{component}/{form}            validate, run actions, re-render
//	GET  /api/forms/{component}/{form}/media  editor assets as JSON
//
// Editor stylesheets and scripts go into <head> through head.Builder so a
// page with several editors includes each file once.
package forms

import (
	"cmp"
	"embed"
	"encoding/json"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"

	"github.com/yanizio/cmwidget/internal/component"
	"github.com/yanizio/cmwidget/internal/form"
	"github.com/yanizio/cmwidget/internal/head"
	"github.com/yanizio/cmwidget/internal/logger"
	"github.com/yanizio/cmwidget/internal/view"
)

//go:embed templates/forms/*.html
var templatesFS embed.FS

// Templates returns the component templates rooted so that "forms/page"
// resolves.  Hosts add it to their view.Engine sources.
func Templates() fs.FS {
	sub, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

const pageTemplate = "forms/page"

// compile-time assertions
var (
	_ component.Component   = (*Comp)(nil)
	_ component.Initializer = (*Comp)(nil)
)

// Comp implements component.Component.
type Comp struct {
	db       *sqlx.DB
	views    *view.Engine
	renderer *form.Renderer
}

func init() { component.Register(&Comp{}) }

func (c *Comp) Name() string { return "forms" }

func (c *Comp) Init(h component.Host) error {
	c.db = h.DB()
	c.views = h.Views()
	c.renderer = form.NewRenderer(h.EditorSettings(), c.views, nil)
	return nil
}

func (c *Comp) Routes(r chi.Router) {
	r.Get("/forms/{component}/{form}", c.getForm)
	r.Post("/forms/{component}/{form}", c.postForm)
	r.Get("/api/forms/{component}/{form}/media", c.getMedia)
}

// formID joins the URL params into the registry key.
func formID(r *http.Request) string {
	return chi.URLParam(r, "component") + "/" + chi.URLParam(r, "form")
}

func (c *Comp) getForm(w http.ResponseWriter, r *http.Request) {
	id := formID(r)
	if _, ok := form.GetFormDef(id); !ok {
		http.NotFound(w, r)
		return
	}
	c.page(w, r, id, pageState{})
}

func (c *Comp) postForm(w http.ResponseWriter, r *http.Request) {
	id := formID(r)
	if _, ok := form.GetFormDef(id); !ok {
		http.NotFound(w, r)
		return
	}

	var db sqlx.ExtContext
	if c.db != nil {
		db = c.db
	}
	_, err := form.HandleSubmit(id, r, db)
	switch {
	case form.IsValidationError(err):
		c.page(w, r, id, pageState{
			status:  http.StatusUnprocessableEntity,
			prefill: prefillFrom(r),
			errors:  form.FieldErrors(err),
		})
	case err != nil:
		logger.FromContext(r.Context()).Errorw("form submit failed", "form", id, "err", err)
		http.Error(w, "bad request", http.StatusBadRequest)
	default:
		if next := form.NextStep(id, r.PostForm); next != "" {
			c.page(w, r, id, pageState{step: next, prefill: prefillFrom(r)})
			return
		}
		c.page(w, r, id, pageState{saved: true, prefill: prefillFrom(r)})
	}
}

func (c *Comp) getMedia(w http.ResponseWriter, r *http.Request) {
	id := formID(r)
	if _, ok := form.GetFormDef(id); !ok {
		http.NotFound(w, r)
		return
	}
	m, err := c.renderer.Media(id)
	if err != nil {
		logger.FromContext(r.Context()).Errorw("form media failed", "form", id, "err", err)
		http.Error(w, "media error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(m); err != nil {
		logger.FromContext(r.Context()).Debugw("media encode failed", "err", err)
	}
}

type pageState struct {
	step    string // overrides the posted current_step
	status  int
	saved   bool
	prefill map[string]string
	errors  []form.ErrorField
}

// page renders the form inside the component page template.
func (c *Comp) page(w http.ResponseWriter, r *http.Request, id string, st pageState) {
	log := logger.FromContext(r.Context())
	fd, _ := form.GetFormDef(id)

	markup, err := c.renderer.RenderForm(id, form.RenderOptions{
		Prefill: st.prefill,
		StepID:  cmp.Or(st.step, r.FormValue("current_step")),
		Errors:  st.errors,
	})
	if err != nil {
		log.Errorw("form render failed", "form", id, "err", err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	m, err := c.renderer.Media(id)
	if err != nil {
		log.Errorw("form media failed", "form", id, "err", err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}

	h := head.New()
	h.Meta(`<meta charset="utf-8">`)
	title := fd.Title
	if title == "" {
		title = fd.ID
	}
	h.SetTitle(title)
	h.Media(m.Styles, m.Scripts)

	out, err := c.views.RenderToString(pageTemplate, map[string]any{
		"Head":   h,
		"Title":  title,
		"Action": r.URL.Path,
		"Form":   markup,
		"Saved":  st.saved,
		"Errors": st.errors,
	})
	if err != nil {
		log.Errorw("page render failed", "form", id, "err", err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store") // pages embed a CSRF token
	if st.status != 0 {
		w.WriteHeader(st.status)
	}
	_, _ = w.Write([]byte(out))
}

// prefillFrom echoes posted values back into the form after a failed
// submission.  Hidden meta inputs are regenerated, not echoed.
func prefillFrom(r *http.Request) map[string]string {
	out := make(map[string]string, len(r.PostForm))
	for k, v := range r.PostForm {
		switch k {
		case "csrf_token", "render_ts", "current_step":
			continue
		}
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}
