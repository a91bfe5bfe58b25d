package form

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yanizio/cmwidget/internal/editor"
)

const snippetYAML = `
id: test/snippet
title: Snippet
fields:
  - name: title
    label: Title
    type: text
    required: true
  - name: body
    label: Body
    type: code
    required: true
    editor:
      profile: admin
      mode: python
      preview: true
      configuration:
        lineNumbers: true
  - name: style
    label: Style
    type: code
    editor:
      mode: css
actions:
  - type: log
`

func mustParse(t *testing.T, src string) *FormDef {
	t.Helper()
	fd, err := ParseFormDef([]byte(src), "test.yaml")
	if err != nil {
		t.Fatalf("ParseFormDef: %v", err)
	}
	return fd
}

func TestParseFormDef_CodeField(t *testing.T) {
	fd := mustParse(t, snippetYAML)

	body := fd.Fields[1].Editor
	if !body.Preview || body.Profile != "admin" {
		t.Errorf("editor def = %+v", body)
	}
	o := body.Resolved()
	if o.Mode.Name != "python" {
		t.Errorf("mode = %q", o.Mode.Name)
	}
	if o.Attrs["class"] != "vLargeTextField" {
		t.Errorf("profile attrs not applied: %v", o.Attrs)
	}
	if v, ok := o.Configuration.Get("lineNumbers"); !ok || v != "true" {
		t.Errorf("configuration = %+v", o.Configuration)
	}

	// Resolved hands out copies.
	o.Attrs["class"] = "changed"
	if body.Resolved().Attrs["class"] != "vLargeTextField" {
		t.Errorf("Resolved shares state")
	}
}

func TestParseFormDef_CodeFieldWithoutEditorBlock(t *testing.T) {
	fd := mustParse(t, `
id: test/bare
fields:
  - {name: src, label: Source, type: code}
`)
	if fd.Fields[0].Editor == nil {
		t.Fatal("editor def not defaulted")
	}
	if o := fd.Fields[0].Editor.Resolved(); o.Mode.Name != "" {
		t.Errorf("bare code field mode = %q, want blank for widget default", o.Mode.Name)
	}
}

func TestParseFormDef_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		is   error
	}{
		{"mime mode", "id: x\nfields:\n  - {name: a, label: A, type: code, editor: {mode: text/x-go}}\n", editor.ErrUnsupportedMimeType},
		{"list mode", "id: x\nfields:\n  - {name: a, label: A, type: code, editor: {mode: [xml, css]}}\n", editor.ErrUnsupportedModeShape},
		{"unknown profile", "id: x\nfields:\n  - {name: a, label: A, type: code, editor: {profile: nope}}\n", editor.ErrInvalidConfiguration},
		{"nested configuration", "id: x\nfields:\n  - {name: a, label: A, type: code, editor: {configuration: {k: {x: 1}}}}\n", editor.ErrInvalidConfiguration},
		{"editor on text", "id: x\nfields:\n  - {name: a, label: A, type: text, editor: {mode: css}}\n", ErrInvalidForm},
		{"unknown type", "id: x\nfields:\n  - {name: a, label: A, type: wysiwyg}\n", ErrInvalidForm},
		{"missing id", "fields:\n  - {name: a, label: A, type: text}\n", ErrInvalidForm},
		{"fields and steps", "id: x\nfields:\n  - {name: a, label: A, type: text}\nsteps:\n  - fields: [{name: b, label: B, type: text}]\n", ErrInvalidForm},
		{"duplicate field", "id: x\nfields:\n  - {name: a, label: A, type: text}\n  - {name: a, label: B, type: text}\n", ErrInvalidForm},
		{"duplicate across steps", "id: x\nsteps:\n  - fields: [{name: a, label: A, type: text}]\n  - fields: [{name: a, label: A, type: code}]\n", ErrInvalidForm},
		{"select without options", "id: x\nfields:\n  - {name: a, label: A, type: select}\n", ErrInvalidForm},
		{"bad pattern", "id: x\nfields:\n  - {name: a, label: A, type: code, pattern: '('}\n", ErrInvalidForm},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFormDef([]byte(tt.src), "bad.yaml")
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Errorf("err = %v, want %v", err, tt.is)
			}
		})
	}
}

func TestRegisterForms_Precedence(t *testing.T) {
	write := func(base, comp, file, title string) {
		dir := filepath.Join(base, "components", comp, "forms")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
		src := "id: prec/form\ntitle: " + title + "\nfields:\n  - {name: a, label: A, type: text}\n"
		if err := os.WriteFile(filepath.Join(dir, file), []byte(src), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	site, shared := t.TempDir(), t.TempDir()
	write(site, "prec", "form.yaml", "Site")
	write(shared, "prec", "form.yaml", "Shared")

	if err := RegisterForms([]string{site, shared, filepath.Join(t.TempDir(), "missing")}); err != nil {
		t.Fatalf("RegisterForms: %v", err)
	}
	fd, ok := GetFormDef("prec/form")
	if !ok || fd.Title != "Site" {
		t.Fatalf("got %+v, want site override", fd)
	}
}

func TestRegisterForms_FailsFast(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "components", "bad", "forms")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("id: bad/x\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	err := RegisterForms([]string{base})
	if err == nil || !strings.Contains(err.Error(), "bad.yaml") {
		t.Fatalf("err = %v", err)
	}
	if err := RegisterForms(nil); err == nil {
		t.Error("expected error for no directories")
	}
}
