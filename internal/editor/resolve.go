// internal/editor/resolve.go
//
// Asset resolution: options in, ordered URL lists out.
//
// Context
//   CodeMirror must load its core script before any mode, and modes before
//   utilities.  Stylesheets follow theme → core → utility order so later
//   rules win in the cascade.  Both orders are fixed here and must not be
//   permuted by callers.
//
// URL layout (base = Settings.BasePath()):
//
//	{base}/lib/codemirror.js            core script
//	{base}/mode/{name}/{name}.js        one per resolved mode name
//	{base}/lib/util/{name}.js           one per utility
//	{base}/theme/{name}.css             one per non-default theme
//	{base}/lib/codemirror.css           core stylesheet
//	{base}/lib/util/{name}.css          utilities that ship a stylesheet
//
// Everything in this file is pure: no I/O, no logging, no shared state.
//
//------------------------------------------------------------------------------

package editor

import (
	"fmt"
	"strings"
)

// compositeModes expands shortcut names into the modes they depend on, in
// load order.  Only these MIME types are supported.
var compositeModes = map[string][]string{
	"text/html": {"xml", "javascript", "css", "htmlmixed"},
	"htmlmixed": {"xml", "javascript", "css", "htmlmixed"},
}

// utilitiesWithStylesheets lists the lib/util plugins that ship a .css file.
var utilitiesWithStylesheets = map[string]bool{
	"dialog":      true,
	"simple-hint": true,
}

// ModeNames returns the mode scripts needed for name.  Composite names expand
// through the fixed table; any other name containing "/" is rejected as an
// unsupported MIME type; everything else is used literally.
func ModeNames(name string) ([]string, error) {
	if names, ok := compositeModes[name]; ok {
		return append([]string(nil), names...), nil
	}
	if strings.Contains(name, "/") {
		return nil, fmt.Errorf("%w: %q (supported: text/html)", ErrUnsupportedMimeType, name)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: mode has no name", ErrInvalidConfiguration)
	}
	return []string{name}, nil
}

// HasStylesheet reports whether the utility ships its own stylesheet.
func HasStylesheet(utility string) bool { return utilitiesWithStylesheets[utility] }

// ResolveScripts returns core, mode, and utility script URLs in load order.
func ResolveScripts(mode Mode, utilities []string, s Settings) ([]string, error) {
	names, err := ModeNames(mode.Name)
	if err != nil {
		return nil, err
	}

	base := s.BasePath()
	out := make([]string, 0, 1+len(names)+len(utilities))
	out = append(out, base+"/lib/codemirror.js")
	for _, n := range names {
		out = append(out, base+"/mode/"+n+"/"+n+".js")
	}
	for _, u := range utilities {
		out = append(out, base+"/lib/util/"+u+".js")
	}
	return out, nil
}

// ResolveStyles returns theme, core, and utility stylesheet URLs in cascade
// order.  The "default" theme is built into the core stylesheet.
func ResolveStyles(theme Theme, utilities []string, s Settings) []string {
	base := s.BasePath()
	var out []string
	for _, t := range NormalizeTheme(theme...) {
		if t == "default" {
			continue
		}
		out = append(out, base+"/theme/"+t+".css")
	}
	out = append(out, base+"/lib/codemirror.css")
	for _, u := range utilities {
		if HasStylesheet(u) {
			out = append(out, base+"/lib/util/"+u+".css")
		}
	}
	return out
}

// Resolve computes the full media declaration for o.  The mode and theme
// must already be filled in; Widget.RefreshMedia does that from Settings.
func Resolve(o Options, s Settings) (Media, error) {
	scripts, err := ResolveScripts(o.Mode, o.Utilities, s)
	if err != nil {
		return Media{}, err
	}
	return Media{
		Styles:  ResolveStyles(o.Theme, o.Utilities, s),
		Scripts: scripts,
	}, nil
}
