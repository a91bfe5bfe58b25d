// internal/editor/settings.go
//
// Process defaults for editor widgets.
//
// Context
//   Widgets need to know where the CodeMirror distribution is served from and
//   which mode and theme to fall back to when a caller leaves them blank.
//   These values arrive through internal/config and are handed to each widget
//   explicitly; nothing in this package reads globals.
//
//------------------------------------------------------------------------------

package editor

import "strings"

const (
	defaultStaticURL = "/static/"
	defaultPath      = "codemirror"
	defaultMode      = "htmlmixed"
	defaultTheme     = "default"
)

// Settings holds the asset path convention and fallback options.
type Settings struct {
	// StaticURL is the prefix under which static files are served, e.g.
	// "/static/".  It is prepended verbatim.
	StaticURL string
	// Path is the CodeMirror directory below StaticURL.  A trailing slash is
	// ignored.
	Path string
	// DefaultMode is used when Options.Mode has no name.
	DefaultMode string
	// DefaultTheme is used when Options.Theme is empty.  Space-separated
	// names are allowed.
	DefaultTheme string
}

// DefaultSettings returns the documented defaults: "/static/", "codemirror",
// "htmlmixed", and "default".
func DefaultSettings() Settings {
	return Settings{
		StaticURL:    defaultStaticURL,
		Path:         defaultPath,
		DefaultMode:  defaultMode,
		DefaultTheme: defaultTheme,
	}
}

// withDefaults fills blank fields from DefaultSettings.  StaticURL may be
// legitimately empty (assets served from the site root), so it is kept.
func (s Settings) withDefaults() Settings {
	if s.Path == "" {
		s.Path = defaultPath
	}
	if s.DefaultMode == "" {
		s.DefaultMode = defaultMode
	}
	if s.DefaultTheme == "" {
		s.DefaultTheme = defaultTheme
	}
	return s
}

// BasePath returns StaticURL joined with Path, without a trailing slash.
func (s Settings) BasePath() string {
	p := s.Path
	if p == "" {
		p = defaultPath
	}
	return s.StaticURL + strings.TrimSuffix(p, "/")
}
