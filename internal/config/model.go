// internal/config/model.go
//
// Typed configuration model.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                        – dotenv values,
//   • `conf/global.yaml`                     – primary static file,
//   • `CMW_`-prefixed environment overrides  – highest precedence.
//
// Validation happens immediately after unmarshal; the app fails fast if
// required fields are missing or the default editor mode is unsupported.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Oxford commas, two spaces after periods.  No em-dash.

package config

import "github.com/yanizio/cmwidget/internal/editor"

//
// HTTP section
//

// HTTP holds web-server tunables for the demo host.
type HTTP struct {
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`
	ForceHTTPS bool   `koanf:"force_https"`
	// CSP overrides middleware.DefaultCSP, e.g. to allow a CDN StaticURL.
	CSP string `koanf:"csp"`
}

//
// Editor section
//

// Editor replaces the process-wide CodeMirror settings.  Blank fields take
// the editor package defaults.
type Editor struct {
	StaticURL    string `koanf:"static_url"`
	Path         string `koanf:"path"`
	DefaultMode  string `koanf:"default_mode"  validate:"omitempty,cmmode"`
	DefaultTheme string `koanf:"default_theme"`

	// StaticDir is the directory served under StaticURL.  It must contain
	// the CodeMirror distribution at Path.
	StaticDir string `koanf:"static_dir"`
	// TemplateDir optionally overrides embedded templates, e.g. a site copy
	// of codemirror/javascript.html.
	TemplateDir string `koanf:"template_dir"`
}

// Settings converts the section into editor.Settings, filling defaults.
func (e Editor) Settings() editor.Settings {
	s := editor.DefaultSettings()
	if e.StaticURL != "" {
		s.StaticURL = e.StaticURL
	}
	if e.Path != "" {
		s.Path = e.Path
	}
	if e.DefaultMode != "" {
		s.DefaultMode = e.DefaultMode
	}
	if e.DefaultTheme != "" {
		s.DefaultTheme = e.DefaultTheme
	}
	return s
}

//
// Forms section
//

// Forms lists base directories scanned for `components/*/forms/*.yaml`,
// ordered by precedence (site overrides first).  CSRFKey is a base64url
// key of at least 32 bytes; empty falls back to CMW_CSRF_KEY.
type Forms struct {
	Dirs    []string `koanf:"dirs" validate:"dive,required"`
	CSRFKey string   `koanf:"csrf_key" validate:"omitempty,base64rawurl"`
}

//
// Log section
//

// Log configures the rotating file logger.  Dir defaults to `<root>/logs`.
type Log struct {
	Level string `koanf:"level" validate:"omitempty,oneof=debug info warn error"`
	Dir   string `koanf:"dir"`
}

//
// Database section
//

// Database is optional.  When DSN is empty the `store` form action fails
// and is logged; everything else keeps working.
type Database struct {
	DSN string `koanf:"dsn"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime, never set in YAML or env.
type Paths struct {
	Root string // CMW_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads.
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	Editor   Editor   `koanf:"editor"`
	Forms    Forms    `koanf:"forms"`
	Database Database `koanf:"database"`
	Log      Log      `koanf:"log"`
	Paths    Paths    `koanf:"-"`
}
