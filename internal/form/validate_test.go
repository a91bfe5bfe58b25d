package form

import (
	"net/url"
	"strconv"
	"testing"
	"time"
)

// submission returns posted values with a valid CSRF token and a render
// timestamp old enough to pass the timing check.
func submission(t *testing.T, formID string, kv ...string) url.Values {
	t.Helper()
	tok, err := GenerateToken(formID)
	if err != nil {
		t.Fatal(err)
	}
	v := url.Values{}
	v.Set("csrf_token", tok)
	v.Set("render_ts", strconv.FormatInt(time.Now().Add(-10*time.Second).UnixMicro(), 10))
	for i := 0; i+1 < len(kv); i += 2 {
		v.Set(kv[i], kv[i+1])
	}
	return v
}

func TestValidateForm_CodeKeptVerbatim(t *testing.T) {
	Register(mustParse(t, snippetYAML))

	code := "  if x < 1:\n\treturn '<b>'\n"
	clean, errs := ValidateForm("test/snippet", submission(t, "test/snippet", "title", " <i>T</i> ", "body", code))
	if len(errs) > 0 {
		t.Fatalf("errors: %+v", errs)
	}
	if clean["body"] != code {
		t.Errorf("code = %q, want verbatim %q", clean["body"], code)
	}
	if clean["title"] != "&lt;i&gt;T&lt;/i&gt;" {
		t.Errorf("text = %q, want trimmed and escaped", clean["title"])
	}
	if _, ok := clean["style"]; ok {
		t.Errorf("empty optional field should be absent")
	}
}

func TestValidateForm_Errors(t *testing.T) {
	Register(mustParse(t, snippetYAML))

	tests := []struct {
		name  string
		vals  url.Values
		field string
	}{
		{"blank required code", submission(t, "test/snippet", "title", "t", "body", " \n\t"), "body"},
		{"missing required text", submission(t, "test/snippet", "body", "x"), "title"},
		{"bad csrf", func() url.Values {
			v := submission(t, "test/snippet", "title", "t", "body", "x")
			v.Set("csrf_token", "forged")
			return v
		}(), ""},
		{"too fast", func() url.Values {
			v := submission(t, "test/snippet", "title", "t", "body", "x")
			v.Set("render_ts", strconv.FormatInt(time.Now().UnixMicro(), 10))
			return v
		}(), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errs := ValidateForm("test/snippet", tt.vals)
			if len(errs) == 0 {
				t.Fatal("expected errors")
			}
			if errs[0].Name != tt.field {
				t.Errorf("first error on %q, want %q (%+v)", errs[0].Name, tt.field, errs)
			}
		})
	}

	if _, errs := ValidateForm("test/none", submission(t, "test/none")); len(errs) != 1 {
		t.Errorf("unknown form errs = %+v", errs)
	}
}

func TestValidateForm_CodeLength(t *testing.T) {
	Register(mustParse(t, `
id: test/short
fields:
  - {name: src, label: Source, type: code, maxlength: 4}
`))
	_, errs := ValidateForm("test/short", submission(t, "test/short", "src", "12345"))
	if len(errs) != 1 || errs[0].Name != "src" {
		t.Errorf("errs = %+v", errs)
	}
}

func TestCSRF_RoundTrip(t *testing.T) {
	tok, err := GenerateToken("test/snippet")
	if err != nil {
		t.Fatal(err)
	}
	if !VerifyToken("test/snippet", tok) {
		t.Error("fresh token rejected")
	}
	if VerifyToken("test/other", tok) {
		t.Error("token accepted for a different form")
	}
	first := "A"
	if tok[0] == 'A' {
		first = "B"
	}
	if VerifyToken("test/snippet", first+tok[1:]) {
		t.Error("tampered token accepted")
	}
}

func TestSetSecret(t *testing.T) {
	if err := SetSecret([]byte("short")); err != ErrWeakSecret {
		t.Fatalf("err = %v, want ErrWeakSecret", err)
	}
	old, err := GenerateToken("test/snippet")
	if err != nil {
		t.Fatal(err)
	}
	if err := SetSecret([]byte("0123456789abcdef0123456789abcdef")); err != nil {
		t.Fatal(err)
	}
	if VerifyToken("test/snippet", old) {
		t.Error("token from previous secret still verifies")
	}
	fresh, _ := GenerateToken("test/snippet")
	if !VerifyToken("test/snippet", fresh) {
		t.Error("token under new secret rejected")
	}
}

func TestValidateForm_FieldTypes(t *testing.T) {
	Register(mustParse(t, `
id: test/types
fields:
  - {name: mail, label: Mail, type: email}
  - {name: n, label: N, type: number}
  - {name: lang, label: Lang, type: select, options: [go, py]}
  - {name: src, label: Src, type: code, maxlength: 3, pattern: '^\S+$'}
`))

	tests := []struct {
		name   string
		kv     []string
		errFor string
	}{
		{"all valid", []string{"mail", "a@b.c", "n", "4.5", "lang", "go", "src", "λ→x"}, ""},
		{"bad email", []string{"mail", "nope"}, "mail"},
		{"bad number", []string{"n", "four"}, "n"},
		{"unknown option", []string{"lang", "rb"}, "lang"},
		{"code too long", []string{"src", "abcd"}, "src"},
		{"code pattern", []string{"src", "a b"}, "src"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errs := ValidateForm("test/types", submission(t, "test/types", tt.kv...))
			switch {
			case tt.errFor == "" && len(errs) != 0:
				t.Fatalf("unexpected errors: %+v", errs)
			case tt.errFor != "" && (len(errs) != 1 || errs[0].Name != tt.errFor):
				t.Fatalf("errs = %+v, want one on %q", errs, tt.errFor)
			}
		})
	}
}

func TestValidateForm_WizardSteps(t *testing.T) {
	Register(mustParse(t, wizardYAML))

	first := submission(t, "test/wizard", "a", "one")
	if _, errs := ValidateForm("test/wizard", first); len(errs) != 0 {
		t.Fatalf("first step: later required field checked too early: %+v", errs)
	}
	if next := NextStep("test/wizard", first); next != "code" {
		t.Errorf("NextStep after first = %q, want code", next)
	}

	last := submission(t, "test/wizard", "current_step", "code", "b", "<x/>")
	_, errs := ValidateForm("test/wizard", last)
	if len(errs) != 1 || errs[0].Name != "a" {
		t.Errorf("final step without carried value: errs = %+v", errs)
	}
	last.Set("a", "one")
	clean, errs := ValidateForm("test/wizard", last)
	if len(errs) != 0 || clean["a"] != "one" || clean["b"] != "<x/>" {
		t.Errorf("final step = %+v, %+v", clean, errs)
	}
	if next := NextStep("test/wizard", last); next != "" {
		t.Errorf("NextStep after last = %q", next)
	}

	bad := submission(t, "test/wizard", "current_step", "nope", "a", "one")
	if _, errs := ValidateForm("test/wizard", bad); len(errs) != 1 || errs[0].Name != "" {
		t.Errorf("unknown step errs = %+v", errs)
	}
	Register(mustParse(t, "id: test/flat\nfields:\n  - {name: src, label: Source, type: code}\n"))
	flat := submission(t, "test/flat", "current_step", "x", "src", "1")
	if _, errs := ValidateForm("test/flat", flat); len(errs) != 1 || errs[0].Name != "" {
		t.Errorf("step on flat form errs = %+v", errs)
	}
}
