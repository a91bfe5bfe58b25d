package viewhelpers

import (
	"html/template"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/yanizio/cmwidget/internal/editor"
	"github.com/yanizio/cmwidget/internal/view"
)

func TestFuncMap(t *testing.T) {
	page := fstest.MapFS{
		"pages/code.html": {Data: []byte(
			`{{ range (editorMedia "admin-html").Scripts }}{{ . }};{{ end }}` + "\n" +
				`{{ codeEditor "snippet" .Code "admin-html" }}`,
		)},
	}
	eh := &Editors{Settings: editor.DefaultSettings()}
	engine := view.New(FuncMap(eh), page, editor.Templates())
	eh.Renderer = engine

	out, err := engine.RenderToString("pages/code", map[string]any{"Code": "<p>x</p>"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	got := string(out)
	for _, frag := range []string{
		"/static/codemirror/lib/codemirror.js;/static/codemirror/mode/xml/xml.js;",
		`<textarea id="id_snippet" name="snippet" class="vLargeTextField" cols="40" rows="10">`,
		"&lt;p&gt;x&lt;/p&gt;</textarea>",
		`mode: "text/html"`,
	} {
		if !strings.Contains(got, frag) {
			t.Errorf("missing %q in:\n%s", frag, got)
		}
	}
}

func TestFuncMap_Errors(t *testing.T) {
	fm := FuncMap(&Editors{Settings: editor.DefaultSettings()})
	codeEditor := fm["codeEditor"].(func(string, string, string) (template.HTML, error))
	if _, err := codeEditor("a", "", ""); err == nil {
		t.Error("expected error without renderer")
	}
	editorMedia := fm["editorMedia"].(func(string) (editor.Media, error))
	if _, err := editorMedia("nope"); err == nil {
		t.Error("expected unknown profile error")
	}
}
