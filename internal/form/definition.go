// internal/form/definition.go
//
// Forms subsystem: YAML definition loader.
//
// Context
//   Each HTML form is declared in a YAML file.  This file defines the form’s
//   identifier, title, fields, multi-step structure, and any post-submit
//   actions.  At startup we parse every “*.yaml” under each
//   “components/<comp>/forms/” directory and store the resulting FormDef in
//   an in-memory registry.  The renderer, validator, and actions fetch
//   definitions from this registry by ID.
//
//   Fields of type “code” carry an `editor:` block.  The block names an
//   optional editor profile and inline overrides using the same keys as
//   editor.Options.  It is resolved and validated here so a bad mode or
//   configuration entry fails at load rather than at first render.
//
// Workflow
//   •  Structs mirror the YAML schema: FormDef → StepDef → FieldDef / ActionDef.
//   •  LoadFormDef parses a single YAML file and validates structural rules.
//   •  RegisterForms walks one or more base directories, discovers YAMLs,
//      loads them via LoadFormDef, and adds them to the registry.  Earlier
//      directories take precedence.
//   •  GetFormDef offers safe, read-only access to a parsed form by ID.
//
//------------------------------------------------------------------------------

package form

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/yanizio/cmwidget/internal/editor"
)

// -----------------------------------------------------------------------------
// Data structures
// -----------------------------------------------------------------------------

// FormDef represents one form definition loaded from YAML.
//
// The form is uniquely identified by ID which should be namespaced by component,
// e.g. “auth/login”.  A form is defined EITHER by a flat Field list OR by a
// Steps list (multi-step wizard).  Actions are executed after successful
// validation.
type FormDef struct {
	ID      string      `yaml:"id"`      // Component-scoped identifier.
	Title   string      `yaml:"title"`   // Display title, optional.
	Fields  []FieldDef  `yaml:"fields"`  // Flat list of fields (single-step).
	Steps   []StepDef   `yaml:"steps"`   // Multi-step definition.  Mutually exclusive with Fields.
	Actions []ActionDef `yaml:"actions"` // Post-submit actions.  May be empty.
}

// FieldDef describes a single input control on the form.  Validation metadata
// lives inline so the server can enforce the same rules the client hints at.
type FieldDef struct {
	Name        string     `yaml:"name"`        // Submission key.  Required.
	Label       string     `yaml:"label"`       // Human-readable label.  Required.
	Type        string     `yaml:"type"`        // text, email, code, select, checkbox, etc.
	Placeholder string     `yaml:"placeholder"` // Optional placeholder text.
	Required    bool       `yaml:"required"`    // True if input is mandatory.
	MinLength   int        `yaml:"minlength"`   // ≥ 0, 0 means unset.
	MaxLength   int        `yaml:"maxlength"`   // ≥ 0, 0 means unset.
	Pattern     string     `yaml:"pattern"`     // Regex pattern string.
	Options     []string   `yaml:"options"`     // For select/radio.  Optional.
	ErrorMsg    string     `yaml:"error"`       // Custom error message, optional.
	Editor      *EditorDef `yaml:"editor"`      // Only for type “code”.
}

// EditorDef configures the CodeMirror widget of a code field.  Inline keys
// overlay the named profile; see editor.Options.Overlay.
type EditorDef struct {
	Profile string `yaml:"profile"`
	// Preview appends a highlighted <noscript> copy of the value.
	Preview bool `yaml:"preview"`

	editor.Options `yaml:",inline"`

	resolved editor.Options
}

// Resolved returns the profile merged with the inline options.  Valid only
// after the owning form passed LoadFormDef.
func (e *EditorDef) Resolved() editor.Options {
	if e == nil {
		return editor.Options{}
	}
	return e.resolved.Overlay(editor.Options{})
}

// resolve looks up the profile, overlays inline options, and validates the
// result.
func (e *EditorDef) resolve() error {
	base, err := editor.LookupProfile(e.Profile)
	if err != nil {
		return err
	}
	opts := base.Overlay(e.Options)
	if err := opts.Validate(); err != nil {
		return err
	}
	e.resolved = opts
	return nil
}

// StepDef groups fields into a wizard step.  At runtime only one step is
// rendered at a time.
type StepDef struct {
	ID     string     `yaml:"id"`    // Unique per form.  If blank, we derive one.
	Title  string     `yaml:"title"` // Display heading, optional.
	Fields []FieldDef `yaml:"fields"`
}

// ActionDef configures an automated action executed after validation.
//
// Action types are loosely typed so new kinds can be introduced without schema
// churn.  Unknown keys are tolerated here; executor code will validate later.
type ActionDef struct {
	Type   string         `yaml:"type"`    // email, store, webhook, pdf, etc.
	Params map[string]any `yaml:",inline"` // Provider-specific fields inline.
}

// -----------------------------------------------------------------------------
// Registry
// -----------------------------------------------------------------------------

// registry maps compositeID (“comp/form”) → *FormDef.  Guarded by mutex.
var (
	registryMu sync.RWMutex
	registry   = make(map[string]*FormDef)
)

// GetFormDef returns a parsed FormDef by composite ID (“component/form”).
// The boolean is false when the ID is unknown.
func GetFormDef(id string) (*FormDef, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	fd, ok := registry[id]
	return fd, ok
}

// -----------------------------------------------------------------------------
// Loader API
// -----------------------------------------------------------------------------

// LoadFormDef parses one YAML file, validates its structure, and returns a
// populated FormDef.  It NEVER mutates the global registry.
func LoadFormDef(path string) (*FormDef, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read form file %s: %w", path, err)
	}
	return ParseFormDef(raw, path)
}

// ParseFormDef is LoadFormDef for in-memory YAML.  src names the source in
// error messages.
func ParseFormDef(raw []byte, src string) (*FormDef, error) {
	var fd FormDef
	if err := yaml.Unmarshal(raw, &fd); err != nil {
		return nil, fmt.Errorf("parse YAML %s: %w", src, err)
	}

	if err := validateFormDef(&fd, src); err != nil {
		return nil, err
	}

	return &fd, nil
}

// Register adds an already validated FormDef to the registry, replacing any
// form with the same ID.
func Register(fd *FormDef) { register(fd) }

// RegisterForms walks one or more base directories and loads every “*.yaml”
// under “components/*/forms/”.  The dirs slice must be ordered by precedence,
// with site override directories BEFORE the shared directory.  A form ID
// seen in an earlier directory is not replaced by a later one.
//
// Example:
//
//	err := form.RegisterForms([]string{
//	    "/srv/cmw/site",   // overrides
//	    "/srv/cmw",        // defaults
//	})
func RegisterForms(baseDirs []string) error {
	if len(baseDirs) == 0 {
		return errors.New("RegisterForms: no base directories provided")
	}

	seen := make(map[string]string)
	for _, base := range baseDirs {
		formsRoot := filepath.Join(base, "components")
		err := filepath.WalkDir(formsRoot, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if d.IsDir() || !strings.HasSuffix(d.Name(), ".yaml") {
				return nil // skip non-YAML
			}
			if filepath.Base(filepath.Dir(path)) != "forms" {
				return nil
			}

			fd, err := LoadFormDef(path)
			if err != nil {
				return err // fail fast so issues surface loudly.
			}
			if prev, dup := seen[fd.ID]; dup {
				zap.S().Debugw("form shadowed", "form", fd.ID, "kept", prev, "skipped", path)
				return nil
			}
			seen[fd.ID] = path
			register(fd)
			zap.S().Debugw("form registered", "form", fd.ID, "file", path)
			return nil
		})
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err // propagate IO or parse errors.
		}
	}

	return nil
}

// register inserts or overrides the form in the global registry.  Caller
// must ensure the FormDef passed validation.
func register(fd *FormDef) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[fd.ID] = fd
}

// -----------------------------------------------------------------------------
// Validation
// -----------------------------------------------------------------------------

// ErrInvalidForm matches every DefError via errors.Is.
var ErrInvalidForm = errors.New("invalid form definition")

// DefError reports a structural problem in one form file.  Field is empty
// for form-level problems.  Editor failures keep their editor sentinel
// reachable through Unwrap.
type DefError struct {
	Src   string
	Field string
	Err   error
}

func (e *DefError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("form %s: %v", e.Src, e.Err)
	}
	return fmt.Sprintf("form %s: field %q: %v", e.Src, e.Field, e.Err)
}

func (e *DefError) Unwrap() error        { return e.Err }
func (e *DefError) Is(target error) bool { return target == ErrInvalidForm }

func defErr(src, field, format string, args ...any) error {
	return &DefError{Src: src, Field: field, Err: fmt.Errorf(format, args...)}
}

// validateFormDef enforces the rules YAML tags cannot express.  It derives
// missing step IDs and resolves every code field's editor options.
func validateFormDef(fd *FormDef, src string) error {
	switch {
	case fd.ID == "":
		return defErr(src, "", "missing required 'id'")
	case len(fd.Fields) > 0 && len(fd.Steps) > 0:
		return defErr(src, "", "cannot have both 'fields' and 'steps'")
	case len(fd.Fields) == 0 && len(fd.Steps) == 0:
		return defErr(src, "", "must have 'fields' or 'steps'")
	}

	groups := [][]FieldDef{fd.Fields}
	for i := range fd.Steps {
		if fd.Steps[i].ID == "" {
			fd.Steps[i].ID = fmt.Sprintf("step%d", i+1)
		}
		groups = append(groups, fd.Steps[i].Fields)
	}

	names := make(map[string]bool)
	for _, fields := range groups {
		for i := range fields {
			f := &fields[i]
			if err := validateField(f, src); err != nil {
				return err
			}
			if names[f.Name] {
				return defErr(src, f.Name, "duplicate field name")
			}
			names[f.Name] = true
		}
	}

	for _, ac := range fd.Actions {
		if !knownActions[ac.Type] {
			zap.S().Warnw("unrecognized form action", "form", fd.ID, "action", ac.Type)
		}
	}
	return nil
}

// fieldTypes lists the types writeField and the sanitizers table understand.
var fieldTypes = map[string]bool{
	"text": true, "email": true, "password": true, "number": true, "date": true,
	"textarea": true, "code": true, "select": true, "checkbox": true, "radio": true,
}

func validateField(f *FieldDef, src string) error {
	switch {
	case f.Name == "":
		return defErr(src, "", "field missing 'name'")
	case f.Label == "":
		return defErr(src, f.Name, "missing 'label'")
	case !fieldTypes[f.Type]:
		return defErr(src, f.Name, "unsupported type %q", f.Type)
	case f.Type != "code" && f.Editor != nil:
		return defErr(src, f.Name, "'editor' requires type code, not %q", f.Type)
	case (f.Type == "select" || f.Type == "radio") && len(f.Options) == 0:
		return defErr(src, f.Name, "type %s needs 'options'", f.Type)
	case f.MinLength < 0 || f.MaxLength < 0:
		return defErr(src, f.Name, "minlength/maxlength cannot be negative")
	case f.MaxLength > 0 && f.MinLength > f.MaxLength:
		return defErr(src, f.Name, "minlength greater than maxlength")
	}

	if f.Pattern != "" {
		if _, err := regexp.Compile(f.Pattern); err != nil {
			return defErr(src, f.Name, "invalid pattern: %w", err)
		}
	}

	if f.Type == "code" {
		if f.Editor == nil {
			f.Editor = &EditorDef{}
		}
		if err := f.Editor.resolve(); err != nil {
			return &DefError{Src: src, Field: f.Name, Err: fmt.Errorf("editor: %w", err)}
		}
	}
	return nil
}
