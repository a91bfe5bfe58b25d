// internal/form/validate.go
//
// Forms subsystem: server-side validation and sanitization.
//
// Context
//   The renderer outputs HTML containing a form-scoped CSRF token and a render
//   timestamp.  ValidateForm checks both, then runs every field through the
//   sanitizer registered for its type and returns a map of clean values that
//   actions can trust.
//
//   Code fields are the exception to sanitizing: their value is source text
//   for the editor, so it is kept byte for byte (no trimming, no escaping).
//   It is escaped again when rendered into the <textarea>.  Length limits
//   count characters, not bytes, so non-ASCII source is not penalised.
//
// Workflow
//   •  Form-level: CSRF, then timing.  Either failure stops validation.
//   •  Wizards: only the posted step and the steps before it are checked;
//      later steps have not been shown yet.
//   •  Field-level: required check, then sanitizers[f.Type].  Errors are
//      collected as []ErrorField so templates can highlight exact issues.
//   •  Callers wrap a non-empty []ErrorField in validationError (submit.go)
//      and treat it as a user error, not a 500.
//
//------------------------------------------------------------------------------

package form

import (
	"fmt"
	"html"
	"net/mail"
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

const (
	minFillTime = 2 * time.Second
	maxFillTime = 30 * time.Minute
)

// ErrorField describes a single validation failure so the template can render
// a field-level message.  Name is empty for form-level failures.
type ErrorField struct {
	Name    string
	Message string
}

// validationError wraps []ErrorField so callers can tell user input errors
// from system failures via IsValidationError.
type validationError struct{ Fields []ErrorField }

func (ve validationError) Error() string { return "form validation failed" }

// ValidateForm validates posted values for formID.  A non-empty error slice
// means the form must be re-rendered.
func ValidateForm(formID string, posted url.Values) (map[string]any, []ErrorField) {
	fd, ok := GetFormDef(formID)
	if !ok {
		return nil, []ErrorField{{Message: "Unknown form."}}
	}

	if tok := posted.Get("csrf_token"); tok == "" || !VerifyToken(formID, tok) {
		return nil, []ErrorField{{Message: "Security token invalid.  Please refresh and try again."}}
	}
	if msg := checkTiming(posted.Get("render_ts")); msg != "" {
		return nil, []ErrorField{{Message: msg}}
	}

	fields, err := submittedFields(fd, posted.Get("current_step"))
	if err != nil {
		return nil, []ErrorField{{Message: "Unknown form step.  Please reload the page."}}
	}

	var errs []ErrorField
	clean := make(map[string]any)
	for _, f := range fields {
		raw := posted.Get(f.Name)

		if strings.TrimSpace(raw) == "" {
			if f.Required {
				errs = append(errs, ErrorField{f.Name, message(&f, "This field is required.")})
			}
			continue
		}

		sanitize, ok := sanitizers[f.Type]
		if !ok {
			errs = append(errs, ErrorField{f.Name, fmt.Sprintf("Unsupported field type %q.", f.Type)})
			continue
		}
		val, msg := sanitize(&f, raw)
		if msg != "" {
			errs = append(errs, ErrorField{f.Name, msg})
			continue
		}
		clean[f.Name] = val
	}
	return clean, errs
}

// checkTiming rejects submissions made implausibly fast or after the page
// went stale.  It returns a user-visible message, or "" when the timing is
// acceptable.
func checkTiming(tsRaw string) string {
	if tsRaw == "" {
		return "Timestamp missing.  Please reload the page."
	}
	ts, err := strconv.ParseInt(tsRaw, 10, 64)
	if err != nil {
		return "Bad timestamp.  Please retry."
	}
	switch delta := time.Since(time.UnixMicro(ts)); {
	case delta < minFillTime:
		return "Form submitted too quickly.  Please enter the fields manually."
	case delta > maxFillTime:
		return "Form expired.  Please reload and submit again."
	}
	return ""
}

// stepIndex returns the index of stepID in a wizard, 0 for an empty stepID,
// and -1 for single-step forms.  Unknown IDs, and any ID on a single-step
// form, are errors.
func stepIndex(fd *FormDef, stepID string) (int, error) {
	if len(fd.Steps) == 0 {
		if stepID != "" {
			return -1, fmt.Errorf("step %q not found in single-step form %q", stepID, fd.ID)
		}
		return -1, nil
	}
	if stepID == "" {
		return 0, nil
	}
	for i, s := range fd.Steps {
		if s.ID == stepID {
			return i, nil
		}
	}
	return -1, fmt.Errorf("step %q not found in form %q", stepID, fd.ID)
}

// submittedFields returns the fields a POST of stepID must carry: the step
// itself and every step before it.  Later steps are not yet filled in.
func submittedFields(fd *FormDef, stepID string) ([]FieldDef, error) {
	i, err := stepIndex(fd, stepID)
	if err != nil || i < 0 {
		return fd.Fields, err
	}
	var out []FieldDef
	for _, s := range fd.Steps[:i+1] {
		out = append(out, s.Fields...)
	}
	return out, nil
}

// NextStep returns the wizard step that follows the one posted in values,
// or "" when the form is single-step or the posted step is the last.
func NextStep(formID string, values url.Values) string {
	fd, ok := GetFormDef(formID)
	if !ok {
		return ""
	}
	i, err := stepIndex(fd, values.Get("current_step"))
	if err != nil || i < 0 || i == len(fd.Steps)-1 {
		return ""
	}
	return fd.Steps[i+1].ID
}

// flattenFields returns all FieldDefs regardless of step structure.
func flattenFields(fd *FormDef) []FieldDef {
	if len(fd.Steps) == 0 {
		return fd.Fields
	}
	var out []FieldDef
	for _, s := range fd.Steps {
		out = append(out, s.Fields...)
	}
	return out
}

// sanitizer turns a non-blank raw value into its clean form, or returns a
// user-facing message.
type sanitizer func(f *FieldDef, raw string) (any, string)

var sanitizers = map[string]sanitizer{
	"code": func(f *FieldDef, raw string) (any, string) {
		if msg := checkText(f, raw); msg != "" {
			return nil, msg
		}
		return raw, ""
	},
	"text":     escapedText,
	"textarea": escapedText,
	"password": func(f *FieldDef, raw string) (any, string) {
		val := strings.TrimSpace(raw)
		return val, lengthCheck(f, val)
	},
	"email": func(f *FieldDef, raw string) (any, string) {
		val := strings.TrimSpace(raw)
		if msg := lengthCheck(f, val); msg != "" {
			return nil, msg
		}
		if _, err := mail.ParseAddress(val); err != nil {
			return nil, message(f, "Invalid input.")
		}
		return val, ""
	},
	"number": func(f *FieldDef, raw string) (any, string) {
		val := strings.TrimSpace(raw)
		if _, err := strconv.ParseFloat(val, 64); err != nil {
			return nil, message(f, "Invalid input.")
		}
		return val, ""
	},
	"date": func(f *FieldDef, raw string) (any, string) {
		val := strings.TrimSpace(raw)
		if _, err := time.Parse(time.DateOnly, val); err != nil {
			return nil, message(f, "Invalid input.")
		}
		return val, ""
	},
	"checkbox": func(*FieldDef, string) (any, string) { return true, "" },
	"select":   oneOf,
	"radio":    oneOf,
}

func escapedText(f *FieldDef, raw string) (any, string) {
	val := strings.TrimSpace(raw)
	if msg := checkText(f, val); msg != "" {
		return nil, msg
	}
	return html.EscapeString(val), ""
}

func oneOf(f *FieldDef, raw string) (any, string) {
	val := strings.TrimSpace(raw)
	if !slices.Contains(f.Options, val) {
		return nil, message(f, "Invalid input.")
	}
	return val, ""
}

// checkText applies the length and pattern rules shared by free-text types.
func checkText(f *FieldDef, s string) string {
	if msg := lengthCheck(f, s); msg != "" {
		return msg
	}
	if f.Pattern != "" && !compiled(f.Pattern).MatchString(s) {
		return message(f, "Input does not match required format.")
	}
	return ""
}

// lengthCheck validates minlength / maxlength in characters.
func lengthCheck(f *FieldDef, s string) string {
	n := utf8.RuneCountInString(s)
	if f.MinLength > 0 && n < f.MinLength {
		return fmt.Sprintf("Must be at least %d characters.", f.MinLength)
	}
	if f.MaxLength > 0 && n > f.MaxLength {
		return fmt.Sprintf("Must be at most %d characters.", f.MaxLength)
	}
	return ""
}

var patterns sync.Map // pattern string -> *regexp.Regexp

// compiled returns the cached regexp for pattern.  Patterns are checked when
// the form definition loads, so MustCompile cannot panic here.
func compiled(pattern string) *regexp.Regexp {
	if re, ok := patterns.Load(pattern); ok {
		return re.(*regexp.Regexp)
	}
	re, _ := patterns.LoadOrStore(pattern, regexp.MustCompile(pattern))
	return re.(*regexp.Regexp)
}

// message prefers the field's custom error text over def.
func message(f *FieldDef, def string) string {
	if f.ErrorMsg != "" {
		return f.ErrorMsg
	}
	return def
}
