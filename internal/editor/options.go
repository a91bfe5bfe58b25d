// internal/editor/options.go
//
// Declarative widget options and their normalization.
//
// Context
//   Options arrive from Go code, from form-definition YAML, or from a profile.
//   Each loosely typed input (a mode given as a name or a mapping, a theme
//   given as one string or a list) is normalized here into one internal
//   shape, so the resolver and renderer never branch on input form.
//
// Workflow
//   •  ParseMode / ParseTheme accept the loose Go forms (string, list, map).
//   •  UnmarshalYAML methods accept the same forms from yaml.v3 nodes.
//   •  Configuration keeps raw JS fragments in insertion order, because the
//      client constructor receives them in the order they were written.
//
//------------------------------------------------------------------------------

package editor

import (
	"encoding/json"
	"fmt"
	"maps"
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------
// Mode
// -----------------------------------------------------------------------------

// Mode names the language CodeMirror highlights.  Extras are passed through
// to the client constructor verbatim, e.g. {"json": true} for javascript.
type Mode struct {
	Name   string
	Extras map[string]any
}

// ParseMode normalizes a string, a mapping with a "name" key, or a Mode.
// Lists are rejected with ErrUnsupportedModeShape.  nil yields a zero Mode,
// which widgets replace with the default mode.
func ParseMode(v any) (Mode, error) {
	switch m := v.(type) {
	case nil:
		return Mode{}, nil
	case Mode:
		return m, nil
	case string:
		return Mode{Name: m}, nil
	case map[string]any:
		return modeFromMap(m)
	case map[string]string:
		conv := make(map[string]any, len(m))
		for k, s := range m {
			conv[k] = s
		}
		return modeFromMap(conv)
	}

	switch reflect.TypeOf(v).Kind() {
	case reflect.Slice, reflect.Array:
		return Mode{}, fmt.Errorf("%w: got %v", ErrUnsupportedModeShape, v)
	}
	return Mode{}, fmt.Errorf("%w: mode of type %T", ErrInvalidConfiguration, v)
}

func modeFromMap(m map[string]any) (Mode, error) {
	raw, ok := m["name"]
	if !ok {
		return Mode{}, fmt.Errorf("%w: mode mapping has no 'name'", ErrInvalidConfiguration)
	}
	if raw != nil {
		if k := reflect.TypeOf(raw).Kind(); k == reflect.Slice || k == reflect.Array {
			return Mode{}, fmt.Errorf("%w: mode name %v", ErrUnsupportedModeShape, raw)
		}
	}
	name, ok := raw.(string)
	if !ok || name == "" {
		return Mode{}, fmt.Errorf("%w: mode name must be a non-empty string", ErrInvalidConfiguration)
	}

	var extras map[string]any
	for k, v := range m {
		if k == "name" {
			continue
		}
		if extras == nil {
			extras = make(map[string]any, len(m)-1)
		}
		extras[k] = v
	}
	return Mode{Name: name, Extras: extras}, nil
}

// MarshalJSON emits a bare JSON string when there are no extras and an
// object {"name": …, extras…} otherwise.  CodeMirror accepts both.
func (m Mode) MarshalJSON() ([]byte, error) {
	if len(m.Extras) == 0 {
		return json.Marshal(m.Name)
	}
	obj := make(map[string]any, len(m.Extras)+1)
	maps.Copy(obj, m.Extras)
	obj["name"] = m.Name
	return json.Marshal(obj)
}

// UnmarshalYAML accepts a scalar name or a mapping.  Sequences are rejected.
func (m *Mode) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*m = Mode{Name: node.Value}
		return nil
	case yaml.SequenceNode:
		return fmt.Errorf("%w: line %d", ErrUnsupportedModeShape, node.Line)
	case yaml.MappingNode:
		var raw map[string]any
		if err := node.Decode(&raw); err != nil {
			return fmt.Errorf("%w: mode: %v", ErrInvalidConfiguration, err)
		}
		parsed, err := modeFromMap(raw)
		if err != nil {
			return err
		}
		*m = parsed
		return nil
	}
	return fmt.Errorf("%w: mode at line %d", ErrInvalidConfiguration, node.Line)
}

func (m Mode) clone() Mode {
	if m.Extras != nil {
		m.Extras = maps.Clone(m.Extras)
	}
	return m
}

// -----------------------------------------------------------------------------
// Theme
// -----------------------------------------------------------------------------

// Theme is an ordered list of distinct theme names.
type Theme []string

// ParseTheme accepts a space-separated string, a []string, or a []any of
// strings.  "a b" and ["a", "b"] normalize to the same Theme.
func ParseTheme(v any) (Theme, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case Theme:
		return NormalizeTheme(t...), nil
	case string:
		return NormalizeTheme(t), nil
	case []string:
		return NormalizeTheme(t...), nil
	case []any:
		names := make([]string, 0, len(t))
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("%w: theme entry %v is not a string", ErrInvalidConfiguration, e)
			}
			names = append(names, s)
		}
		return NormalizeTheme(names...), nil
	}
	return nil, fmt.Errorf("%w: theme of type %T", ErrInvalidConfiguration, v)
}

// NormalizeTheme splits every entry on whitespace and drops repeats,
// keeping the first occurrence.
func NormalizeTheme(names ...string) Theme {
	var out Theme
	seen := make(map[string]struct{})
	for _, n := range names {
		for _, f := range strings.Fields(n) {
			if _, dup := seen[f]; dup {
				continue
			}
			seen[f] = struct{}{}
			out = append(out, f)
		}
	}
	return out
}

// String joins the theme names with single spaces, the form CodeMirror's
// theme option expects.
func (t Theme) String() string { return strings.Join(t, " ") }

// UnmarshalYAML accepts a scalar (space-separated) or a sequence of names.
func (t *Theme) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*t = NormalizeTheme(node.Value)
		return nil
	case yaml.SequenceNode:
		var names []string
		if err := node.Decode(&names); err != nil {
			return fmt.Errorf("%w: theme: %v", ErrInvalidConfiguration, err)
		}
		*t = NormalizeTheme(names...)
		return nil
	}
	return fmt.Errorf("%w: theme at line %d", ErrInvalidConfiguration, node.Line)
}

// -----------------------------------------------------------------------------
// Configuration
// -----------------------------------------------------------------------------

// ConfigEntry is one extra constructor option.  Value is a raw JS fragment
// inserted without quoting, so strings must carry their own quotes
// (`"value"`) and callbacks can be function literals.
type ConfigEntry struct {
	Key   string
	Value string
}

// Configuration is an ordered set of extra constructor options.
type Configuration []ConfigEntry

// NewConfiguration builds a Configuration from alternating keys and values.
func NewConfiguration(kv ...string) (Configuration, error) {
	if len(kv)%2 != 0 {
		return nil, fmt.Errorf("%w: odd number of key/value arguments", ErrInvalidConfiguration)
	}
	c := make(Configuration, 0, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		c = append(c, ConfigEntry{Key: kv[i], Value: kv[i+1]})
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate rejects empty and duplicate keys.
func (c Configuration) Validate() error {
	seen := make(map[string]struct{}, len(c))
	for _, e := range c {
		if strings.TrimSpace(e.Key) == "" {
			return fmt.Errorf("%w: empty configuration key", ErrInvalidConfiguration)
		}
		if _, dup := seen[e.Key]; dup {
			return fmt.Errorf("%w: duplicate configuration key %q", ErrInvalidConfiguration, e.Key)
		}
		seen[e.Key] = struct{}{}
	}
	return nil
}

// Get returns the raw value for key.
func (c Configuration) Get(key string) (string, bool) {
	for _, e := range c {
		if e.Key == key {
			return e.Value, true
		}
	}
	return "", false
}

// With returns a copy of c where key is set to value.  An existing key keeps
// its position; a new key is appended.
func (c Configuration) With(key, value string) Configuration {
	out := make(Configuration, len(c), len(c)+1)
	copy(out, c)
	for i := range out {
		if out[i].Key == key {
			out[i].Value = value
			return out
		}
	}
	return append(out, ConfigEntry{Key: key, Value: value})
}

// joinEntries renders "key :value" pairs separated by ",\n".  Values are not
// escaped.
func (c Configuration) joinEntries() string {
	parts := make([]string, len(c))
	for i, e := range c {
		parts[i] = e.Key + " :" + e.Value
	}
	return strings.Join(parts, ",\n")
}

// UnmarshalYAML reads a mapping in document order.  Keys must be strings and
// values scalars; the scalar text is kept verbatim.
func (c *Configuration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: configuration at line %d must be a mapping", ErrInvalidConfiguration, node.Line)
	}
	out := make(Configuration, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		if k.Kind != yaml.ScalarNode || k.ShortTag() != "!!str" {
			return fmt.Errorf("%w: configuration key at line %d is not a string", ErrInvalidConfiguration, k.Line)
		}
		if v.Kind != yaml.ScalarNode {
			return fmt.Errorf("%w: configuration value for %q must be a scalar", ErrInvalidConfiguration, k.Value)
		}
		out = append(out, ConfigEntry{Key: k.Value, Value: v.Value})
	}
	if err := out.Validate(); err != nil {
		return err
	}
	*c = out
	return nil
}

// -----------------------------------------------------------------------------
// Options
// -----------------------------------------------------------------------------

// Options is the full caller-supplied widget configuration.
type Options struct {
	Mode          Mode              `yaml:"mode"`
	Theme         Theme             `yaml:"theme"`
	Utilities     []string          `yaml:"utilities"`
	Configuration Configuration     `yaml:"configuration"`
	ExtraCSS      string            `yaml:"extra_css"` // $$id$$ is replaced with the element id
	ExtraJS       string            `yaml:"extra_js"`  // runs after CodeMirror.fromTextArea
	Attrs         map[string]string `yaml:"attrs"`     // extra <textarea> attributes
}

// Validate checks everything that can fail at resolve time without needing
// Settings.  A blank mode passes; widgets substitute the default.
func (o Options) Validate() error {
	if o.Mode.Name != "" {
		if _, err := ModeNames(o.Mode.Name); err != nil {
			return err
		}
	}
	for _, u := range o.Utilities {
		if strings.TrimSpace(u) == "" {
			return fmt.Errorf("%w: empty utility name", ErrInvalidConfiguration)
		}
	}
	return o.Configuration.Validate()
}

// Overlay returns o with every non-zero field of over applied on top.
// Configuration entries are merged by key and Attrs by name, so a profile
// can be tweaked without restating it.
func (o Options) Overlay(over Options) Options {
	out := o.clone()
	if over.Mode.Name != "" {
		out.Mode = over.Mode.clone()
	}
	if len(over.Theme) > 0 {
		out.Theme = append(Theme(nil), over.Theme...)
	}
	if over.Utilities != nil {
		out.Utilities = append([]string(nil), over.Utilities...)
	}
	for _, e := range over.Configuration {
		out.Configuration = out.Configuration.With(e.Key, e.Value)
	}
	if over.ExtraCSS != "" {
		out.ExtraCSS = over.ExtraCSS
	}
	if over.ExtraJS != "" {
		out.ExtraJS = over.ExtraJS
	}
	if len(over.Attrs) > 0 {
		if out.Attrs == nil {
			out.Attrs = make(map[string]string, len(over.Attrs))
		}
		maps.Copy(out.Attrs, over.Attrs)
	}
	return out
}

func (o Options) clone() Options {
	o.Mode = o.Mode.clone()
	o.Theme = append(Theme(nil), o.Theme...)
	o.Utilities = append([]string(nil), o.Utilities...)
	o.Configuration = append(Configuration(nil), o.Configuration...)
	if o.Attrs != nil {
		o.Attrs = maps.Clone(o.Attrs)
	}
	return o
}
