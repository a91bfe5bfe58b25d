// internal/form/renderer.go
//
// Forms subsystem: HTML renderer.
//
// Context
//   The Renderer turns a registered FormDef into markup: one
//   <div class="form-field"> per field, then the hidden CSRF token, render
//   timestamp, and (for wizards) current step.  HTML5 validation attributes
//   mirror the server-side rules in validate.go.
//
//   Fields of type “code” are rendered through editor.Widget: a <textarea>
//   followed by the CodeMirror bootstrap script, optionally trailed by a
//   highlighted <noscript> preview.  Media(formID) reports the stylesheets
//   and scripts those widgets need so the page can place them in <head>
//   once, however many editors the form contains.
//
//   Wizards render one step at a time.  Prefilled values of earlier steps are
//   carried as hidden inputs so the final POST holds the whole form.
//
//   RenderOptions.Errors places field-level messages from a failed
//   submission in each field's error span.  Form-level errors (empty Name)
//   are left to the page.
//
// Style
//   Output HTML is plain: no framework classes.  Each input gets
//   id="fld-{name}" (code fields use the editor id, "id_{name}").
//
//------------------------------------------------------------------------------

package form

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"strconv"
	"strings"
	"time"

	"github.com/yanizio/cmwidget/internal/editor"
	"github.com/yanizio/cmwidget/internal/preview"
)

// RenderOptions bundles optional parameters influencing HTML output.
type RenderOptions struct {
	// Prefill provides initial field values keyed by field name.
	Prefill map[string]string
	// StepID selects a wizard step.  Empty means the first step.
	StepID string
	// Errors from ValidateForm, shown next to the matching fields.
	Errors []ErrorField
}

// Renderer turns registered forms into HTML.  It is safe for concurrent use.
type Renderer struct {
	settings  editor.Settings
	templates editor.TemplateRenderer
	preview   *preview.Highlighter
}

// NewRenderer returns a Renderer whose code fields use s and templates.  A
// nil hl selects preview.New("").
func NewRenderer(s editor.Settings, templates editor.TemplateRenderer, hl *preview.Highlighter) *Renderer {
	if hl == nil {
		hl = preview.New("")
	}
	return &Renderer{settings: s, templates: templates, preview: hl}
}

// Media returns the merged editor media of every code field in formID, in
// field order with duplicates removed.  Forms without code fields return
// the zero Media.
func (r *Renderer) Media(formID string) (editor.Media, error) {
	fd, ok := GetFormDef(formID)
	if !ok {
		return editor.Media{}, fmt.Errorf("Media: unknown form %q", formID)
	}
	var m editor.Media
	for _, f := range flattenFields(fd) {
		if f.Type != "code" {
			continue
		}
		w, err := r.widget(&f)
		if err != nil {
			return editor.Media{}, err
		}
		m = m.Merge(w.Media())
	}
	return m, nil
}

func (r *Renderer) widget(f *FieldDef) (*editor.Widget, error) {
	w, err := editor.New(r.settings, r.templates, f.Editor.Resolved())
	if err != nil {
		return nil, fmt.Errorf("field %s: %w", f.Name, err)
	}
	return w, nil
}

// RenderForm returns the HTML markup for formID.
func (r *Renderer) RenderForm(formID string, opts RenderOptions) (template.HTML, error) {
	fd, ok := GetFormDef(formID)
	if !ok {
		return "", fmt.Errorf("RenderForm: unknown form %q", formID)
	}
	fields, step, err := selectFields(fd, opts.StepID)
	if err != nil {
		return "", err
	}

	fieldErrs := make(map[string]string, len(opts.Errors))
	for _, e := range opts.Errors {
		if e.Name != "" {
			if _, seen := fieldErrs[e.Name]; !seen {
				fieldErrs[e.Name] = e.Message
			}
		}
	}

	var buf bytes.Buffer
	buf.WriteString(`<div class="cmw-form">` + "\n")
	for _, f := range fields {
		if err := r.writeField(&buf, &f, opts.Prefill[f.Name], fieldErrs[f.Name]); err != nil {
			return "", err
		}
	}

	// Answers from earlier wizard steps travel with the form; ValidateForm
	// checks every step up to the posted one.
	for _, st := range fd.Steps[:max(step, 0)] {
		for _, f := range st.Fields {
			if v := opts.Prefill[f.Name]; v != "" {
				fmt.Fprintf(&buf, `<input type="hidden" name="%s" value="%s">`+"\n", html.EscapeString(f.Name), html.EscapeString(v))
			}
		}
	}
	fmt.Fprintf(&buf, `<input type="hidden" name="csrf_token" value="%s">`+"\n", csrfGenerateToken(formID))
	fmt.Fprintf(&buf, `<input type="hidden" name="render_ts" value="%d">`+"\n", time.Now().UnixMicro())
	if step >= 0 {
		fmt.Fprintf(&buf, `<input type="hidden" name="current_step" value="%s">`+"\n", html.EscapeString(fd.Steps[step].ID))
	}
	buf.WriteString(`</div>`)
	return template.HTML(buf.String()), nil
}

// selectFields returns the fields to render and the step index, or -1 for
// single-step forms.  A step ID on a single-step form is an error.
func selectFields(fd *FormDef, stepID string) ([]FieldDef, int, error) {
	i, err := stepIndex(fd, stepID)
	if err != nil {
		return nil, -1, fmt.Errorf("RenderForm: %w", err)
	}
	if i < 0 {
		return fd.Fields, -1, nil
	}
	return fd.Steps[i].Fields, i, nil
}

// tag accumulates one start tag.  Values are escaped; flags are bare.
type tag struct{ b *bytes.Buffer }

func open(buf *bytes.Buffer, name string) tag {
	buf.WriteString("<" + name)
	return tag{buf}
}

func (t tag) attr(k, v string) tag {
	t.b.WriteString(" " + k + `="` + html.EscapeString(v) + `"`)
	return t
}

func (t tag) attrIf(ok bool, k, v string) tag {
	if ok {
		return t.attr(k, v)
	}
	return t
}

func (t tag) flag(ok bool, k string) tag {
	if ok {
		t.b.WriteString(" " + k)
	}
	return t
}

// lengths adds minlength and maxlength when set.
func (t tag) lengths(f *FieldDef) tag {
	return t.attrIf(f.MinLength > 0, "minlength", strconv.Itoa(f.MinLength)).
		attrIf(f.MaxLength > 0, "maxlength", strconv.Itoa(f.MaxLength))
}

func (t tag) close() { t.b.WriteString(">") }

// writeField emits one field wrapped in <div class="form-field">.
func (r *Renderer) writeField(buf *bytes.Buffer, f *FieldDef, val, errMsg string) error {
	fieldID := "fld-" + f.Name
	if f.Type == "code" {
		fieldID = editor.ElementID(f.Name)
	}

	buf.WriteString(`<div class="form-field">` + "\n")
	open(buf, "label").attr("for", fieldID).close()
	buf.WriteString(html.EscapeString(f.Label) + "</label>\n")

	switch f.Type {
	case "text", "email", "password", "number", "date":
		open(buf, "input").attr("id", fieldID).attr("name", f.Name).attr("type", f.Type).
			attrIf(f.Placeholder != "", "placeholder", f.Placeholder).
			flag(f.Required, "required").
			lengths(f).
			attrIf(f.Pattern != "", "pattern", f.Pattern).
			attrIf(val != "" && f.Type != "password", "value", val).
			close()
		buf.WriteString("\n")

	case "textarea":
		open(buf, "textarea").attr("id", fieldID).attr("name", f.Name).
			flag(f.Required, "required").
			lengths(f).
			attrIf(f.Placeholder != "", "placeholder", f.Placeholder).
			close()
		buf.WriteString(html.EscapeString(val) + "</textarea>\n")

	case "code":
		if err := r.writeCode(buf, f, fieldID, val); err != nil {
			return err
		}

	case "select":
		open(buf, "select").attr("id", fieldID).attr("name", f.Name).flag(f.Required, "required").close()
		buf.WriteString("\n")
		for _, opt := range f.Options {
			open(buf, "option").attr("value", opt).flag(val == opt, "selected").close()
			buf.WriteString(html.EscapeString(opt) + "</option>\n")
		}
		buf.WriteString("</select>\n")

	case "checkbox":
		checked := val != "" && !strings.EqualFold(val, "false")
		open(buf, "input").attr("id", fieldID).attr("name", f.Name).attr("type", "checkbox").
			flag(checked, "checked").flag(f.Required, "required").close()
		buf.WriteString("\n")

	case "radio":
		for i, opt := range f.Options {
			radioID := fmt.Sprintf("fld-%s-%d", f.Name, i)
			buf.WriteString(`<div class="radio-option">` + "\n")
			open(buf, "input").attr("id", radioID).attr("name", f.Name).attr("type", "radio").attr("value", opt).
				flag(val == opt, "checked").flag(f.Required, "required").close()
			buf.WriteString("\n")
			open(buf, "label").attr("for", radioID).close()
			buf.WriteString(html.EscapeString(opt) + "</label>\n</div>\n")
		}

	default:
		return fmt.Errorf("writeField: unsupported field type %q in form field %s", f.Type, f.Name)
	}

	buf.WriteString(`<span class="error" aria-live="polite">` + html.EscapeString(errMsg) + "</span>\n")
	buf.WriteString("</div>\n")
	return nil
}

// writeCode renders the editor widget for a code field and, when enabled,
// its highlighted preview.
func (r *Renderer) writeCode(buf *bytes.Buffer, f *FieldDef, fieldID, val string) error {
	w, err := r.widget(f)
	if err != nil {
		return err
	}
	if f.Required {
		w.Attrs = withAttr(w.Attrs, "required", "required")
	}
	if f.Placeholder != "" {
		w.Attrs = withAttr(w.Attrs, "placeholder", f.Placeholder)
	}
	out, err := w.Render(f.Name, val)
	if err != nil {
		return fmt.Errorf("field %s: %w", f.Name, err)
	}
	buf.WriteString(string(out) + "\n")

	if f.Editor.Preview && val != "" {
		pv, err := r.preview.Noscript(fieldID, w.Mode.Name, val)
		if err != nil {
			return fmt.Errorf("field %s: %w", f.Name, err)
		}
		buf.WriteString(string(pv) + "\n")
	}
	return nil
}

// withAttr sets one textarea attribute without touching the caller's map.
func withAttr(attrs map[string]string, k, v string) map[string]string {
	out := make(map[string]string, len(attrs)+1)
	for ak, av := range attrs {
		out[ak] = av
	}
	out[k] = v
	return out
}

// csrfGenerateToken wraps GenerateToken.  The fallback token never verifies,
// so a failed random read surfaces as a rejected submission.
func csrfGenerateToken(formID string) string {
	token, err := GenerateToken(formID)
	if err != nil {
		return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
	}
	return token
}
