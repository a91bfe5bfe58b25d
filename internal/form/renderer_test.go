package form

import (
	"reflect"
	"strings"
	"testing"

	"github.com/yanizio/cmwidget/internal/editor"
	"github.com/yanizio/cmwidget/internal/view"
)

func newRenderer() *Renderer {
	return NewRenderer(editor.DefaultSettings(), view.New(nil, editor.Templates()), nil)
}

func TestRenderForm_CodeField(t *testing.T) {
	Register(mustParse(t, snippetYAML))

	out, err := newRenderer().RenderForm("test/snippet", RenderOptions{
		Prefill: map[string]string{"title": "x", "body": "print('<hi>')"},
	})
	if err != nil {
		t.Fatalf("RenderForm: %v", err)
	}
	got := string(out)
	for _, frag := range []string{
		`<label for="id_body">Body</label>`,
		`<textarea id="id_body" name="body" class="vLargeTextField" cols="40" required="required" rows="10">`,
		"print(&#39;&lt;hi&gt;&#39;)</textarea>",
		`window["id_body"] = CodeMirror.fromTextArea(document.getElementById("id_body"), {`,
		`mode: "python",`,
		`<noscript class="code-preview" data-for="id_body">`,
		`<textarea id="id_style" name="style" cols="40" rows="10">`,
		`<input id="fld-title" name="title" type="text" required value="x">`,
		`name="csrf_token"`,
		`name="render_ts"`,
	} {
		if !strings.Contains(got, frag) {
			t.Errorf("missing %q in:\n%s", frag, got)
		}
	}
	if strings.Count(got, "<noscript") != 1 {
		t.Errorf("preview should only follow the non-empty previewed field")
	}
}

func TestRenderForm_Errors(t *testing.T) {
	r := newRenderer()
	if _, err := r.RenderForm("test/none", RenderOptions{}); err == nil {
		t.Error("expected unknown form error")
	}
	Register(mustParse(t, snippetYAML))
	if _, err := r.RenderForm("test/snippet", RenderOptions{StepID: "nope"}); err == nil ||
		!strings.Contains(err.Error(), `step "nope" not found`) {
		t.Errorf("step on single-step form: err = %v", err)
	}
	Register(mustParse(t, wizardYAML))
	if _, err := r.RenderForm("test/wizard", RenderOptions{StepID: "nope"}); err == nil {
		t.Error("expected unknown wizard step error")
	}
}

const wizardYAML = `
id: test/wizard
steps:
  - fields: [{name: a, label: A, type: text, required: true}]
  - id: code
    fields: [{name: b, label: B, type: code, required: true, editor: {mode: xml}}]
`

func TestRenderForm_Steps(t *testing.T) {
	Register(mustParse(t, wizardYAML))
	out, err := newRenderer().RenderForm("test/wizard", RenderOptions{
		StepID:  "code",
		Prefill: map[string]string{"a": `say "hi"`, "b": "<x/>"},
	})
	if err != nil {
		t.Fatal(err)
	}
	got := string(out)
	if !strings.Contains(got, `id="id_b"`) || strings.Contains(got, `id="fld-a"`) {
		t.Errorf("wrong step rendered:\n%s", got)
	}
	if !strings.Contains(got, `name="current_step" value="code"`) {
		t.Errorf("current_step missing:\n%s", got)
	}
	if !strings.Contains(got, `<input type="hidden" name="a" value="say &#34;hi&#34;">`) {
		t.Errorf("earlier step value not carried:\n%s", got)
	}
	if strings.Contains(got, `type="hidden" name="b"`) {
		t.Errorf("current step value duplicated as hidden input:\n%s", got)
	}

	first, err := newRenderer().RenderForm("test/wizard", RenderOptions{Prefill: map[string]string{"a": "x"}})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(first), `type="hidden" name="a"`) {
		t.Errorf("first step should carry nothing:\n%s", first)
	}
}

func TestRenderer_Media(t *testing.T) {
	Register(mustParse(t, snippetYAML))
	r := newRenderer()

	m, err := r.Media("test/snippet")
	if err != nil {
		t.Fatal(err)
	}
	const base = "/static/codemirror"
	want := editor.Media{
		Styles:  []string{base + "/lib/codemirror.css"},
		Scripts: []string{base + "/lib/codemirror.js", base + "/mode/python/python.js", base + "/mode/css/css.js"},
	}
	if !reflect.DeepEqual(m, want) {
		t.Errorf("Media = %+v, want %+v", m, want)
	}

	Register(mustParse(t, "id: test/plain\nfields:\n  - {name: a, label: A, type: text}\n"))
	if m, err := r.Media("test/plain"); err != nil || !m.IsZero() {
		t.Errorf("plain form media = %+v, %v", m, err)
	}
	if _, err := r.Media("test/none"); err == nil {
		t.Error("expected unknown form error")
	}
}

func TestRenderForm_FieldErrors(t *testing.T) {
	Register(mustParse(t, snippetYAML))

	out, err := newRenderer().RenderForm("test/snippet", RenderOptions{
		Errors: []ErrorField{
			{Name: "title", Message: "Title <required>."},
			{Name: "title", Message: "second"},
			{Message: "form-level"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	got := string(out)
	if !strings.Contains(got, `<span class="error" aria-live="polite">Title &lt;required&gt;.</span>`) {
		t.Errorf("field error not rendered:\n%s", got)
	}
	if strings.Contains(got, "second") || strings.Contains(got, "form-level") {
		t.Errorf("only the first field-level error belongs in the form:\n%s", got)
	}
}
