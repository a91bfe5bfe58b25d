package forms

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"

	"github.com/yanizio/cmwidget/internal/editor"
	"github.com/yanizio/cmwidget/internal/form"
	"github.com/yanizio/cmwidget/internal/view"
)

type host struct{ views *view.Engine }

func (host) DB() *sqlx.DB                    { return nil }
func (host) EditorSettings() editor.Settings { return editor.DefaultSettings() }
func (h host) Views() *view.Engine           { return h.views }

const demoYAML = `
id: demo/snippet
title: Snippet
fields:
  - {name: title, label: Title, type: text, required: true}
  - name: body
    label: Body
    type: code
    required: true
    editor: {profile: common, mode: python}
`

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	fd, err := form.ParseFormDef([]byte(demoYAML), "demo.yaml")
	if err != nil {
		t.Fatal(err)
	}
	form.Register(fd)

	c := &Comp{}
	if err := c.Init(host{views: view.New(nil, Templates(), editor.Templates())}); err != nil {
		t.Fatal(err)
	}
	r := chi.NewRouter()
	c.Routes(r)
	return r
}

func TestGetForm(t *testing.T) {
	r := newRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/forms/demo/snippet", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	body := rec.Body.String()
	for _, frag := range []string{
		"<title>Snippet</title>",
		`<link rel="stylesheet" type="text/css" href="/static/codemirror/theme/ambiance.css">`,
		`<script type="text/javascript" src="/static/codemirror/mode/python/python.js"></script>`,
		`<textarea id="id_body" name="body"`,
		`CodeMirror.fromTextArea(document.getElementById("id_body")`,
		`action="/forms/demo/snippet"`,
	} {
		if !strings.Contains(body, frag) {
			t.Errorf("missing %q in:\n%s", frag, body)
		}
	}
	if strings.Count(body, "lib/codemirror.js") != 1 {
		t.Errorf("core script not deduplicated")
	}
	if rec.Header().Get("Cache-Control") != "no-store" {
		t.Errorf("Cache-Control = %q", rec.Header().Get("Cache-Control"))
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/forms/demo/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown form status = %d", rec.Code)
	}
}

func TestPostForm(t *testing.T) {
	r := newRouter(t)

	post := func(v url.Values) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/forms/demo/snippet", strings.NewReader(v.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	tok, err := form.GenerateToken("demo/snippet")
	if err != nil {
		t.Fatal(err)
	}
	v := url.Values{}
	v.Set("csrf_token", tok)
	v.Set("render_ts", strconv.FormatInt(time.Now().Add(-5*time.Second).UnixMicro(), 10))
	v.Set("title", "hello")
	v.Set("body", "if a < b:\n    pass")

	rec := post(v)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Saved.") {
		t.Fatalf("valid post = %d:\n%s", rec.Code, rec.Body)
	}
	if !strings.Contains(rec.Body.String(), "if a &lt; b:\n    pass</textarea>") {
		t.Errorf("code not echoed back:\n%s", rec.Body)
	}

	v.Del("title")
	rec = post(v)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid post status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `<span class="error" aria-live="polite">This field is required.</span>`) {
		t.Errorf("field error missing:\n%s", rec.Body)
	}
}

func TestPostForm_WizardAdvances(t *testing.T) {
	r := newRouter(t)
	fd, err := form.ParseFormDef([]byte(`
id: demo/wizard
title: Wizard
steps:
  - id: meta
    fields: [{name: title, label: Title, type: text, required: true}]
  - id: source
    fields: [{name: body, label: Body, type: code, required: true, editor: {mode: python}}]
`), "wizard.yaml")
	if err != nil {
		t.Fatal(err)
	}
	form.Register(fd)

	post := func(v url.Values) *httptest.ResponseRecorder {
		tok, err := form.GenerateToken("demo/wizard")
		if err != nil {
			t.Fatal(err)
		}
		v.Set("csrf_token", tok)
		v.Set("render_ts", strconv.FormatInt(time.Now().Add(-5*time.Second).UnixMicro(), 10))
		req := httptest.NewRequest(http.MethodPost, "/forms/demo/wizard", strings.NewReader(v.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	rec := post(url.Values{"current_step": {"meta"}, "title": {"hello"}})
	body := rec.Body.String()
	if rec.Code != http.StatusOK || strings.Contains(body, "Saved.") {
		t.Fatalf("first step = %d:\n%s", rec.Code, body)
	}
	for _, frag := range []string{
		`name="current_step" value="source"`,
		`<input type="hidden" name="title" value="hello">`,
		`id="id_body"`,
	} {
		if !strings.Contains(body, frag) {
			t.Errorf("second step missing %q:\n%s", frag, body)
		}
	}

	rec = post(url.Values{"current_step": {"source"}, "title": {"hello"}, "body": {"print(1)"}})
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Saved.") {
		t.Fatalf("final step = %d:\n%s", rec.Code, rec.Body)
	}
}

func TestGetMedia(t *testing.T) {
	r := newRouter(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/forms/demo/snippet/media", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var m editor.Media
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatal(err)
	}
	if len(m.Scripts) == 0 || m.Scripts[0] != "/static/codemirror/lib/codemirror.js" {
		t.Errorf("media = %+v", m)
	}
}
