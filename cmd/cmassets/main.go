// Command cmassets prints the CodeMirror stylesheets and scripts an editor
// configuration needs, in include order.  Use it to check a mode/theme pair
// or to feed a static-asset collector.
//
//	cmassets --mode text/html --theme "ambiance" --utility search,dialog
//	cmassets --profile common --format json
//	cmassets --form components/demo/forms/snippet.yaml
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/yanizio/cmwidget/internal/editor"
	"github.com/yanizio/cmwidget/internal/form"
	"github.com/yanizio/cmwidget/internal/view"
)

// Exit codes.
const (
	ExitSuccess = 0 // assets printed
	ExitGeneral = 1 // I/O or unexpected error
	ExitUsage   = 2 // bad flags or an editor configuration the resolver rejects
)

type cliFlags struct {
	mode         string
	theme        string
	utilities    []string
	profile      string
	formFile     string
	staticURL    string
	path         string
	format       string
	listProfiles bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func parseFlags(args []string, stderr io.Writer) (*cliFlags, error) {
	def := editor.DefaultSettings()
	f := &cliFlags{}

	fs := flag.NewFlagSet("cmassets", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVarP(&f.mode, "mode", "m", "", "editor mode or MIME type (default "+def.DefaultMode+")")
	fs.StringVarP(&f.theme, "theme", "t", "", "space-separated theme names (default "+def.DefaultTheme+")")
	fs.StringSliceVarP(&f.utilities, "utility", "u", nil, "utility add-on, repeatable or comma-separated")
	fs.StringVarP(&f.profile, "profile", "p", "", "start from a named profile")
	fs.StringVar(&f.formFile, "form", "", "print the merged media of every code field in a form YAML file")
	fs.StringVar(&f.staticURL, "static-url", def.StaticURL, "static files URL prefix")
	fs.StringVar(&f.path, "path", def.Path, "CodeMirror directory below the static prefix")
	fs.StringVarP(&f.format, "format", "f", "text", "output format: text or json")
	fs.BoolVar(&f.listProfiles, "list-profiles", false, "list registered profiles and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	if f.format != "text" && f.format != "json" {
		return nil, fmt.Errorf("unknown format %q", f.format)
	}
	if f.formFile != "" && (f.mode != "" || f.theme != "" || f.profile != "" || len(f.utilities) > 0) {
		return nil, errors.New("--form cannot be combined with editor option flags")
	}
	return f, nil
}

func run(args []string, stdout, stderr io.Writer) int {
	f, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		fmt.Fprintln(stderr, err)
		return ExitUsage
	}

	if f.listProfiles {
		for _, n := range editor.ProfileNames() {
			fmt.Fprintln(stdout, n)
		}
		return ExitSuccess
	}

	settings := editor.DefaultSettings()
	settings.StaticURL = f.staticURL
	settings.Path = f.path

	m, err := resolve(f, settings)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitCodeFor(err)
	}

	if err := write(stdout, f.format, m); err != nil {
		fmt.Fprintln(stderr, err)
		return ExitGeneral
	}
	return ExitSuccess
}

func resolve(f *cliFlags, s editor.Settings) (editor.Media, error) {
	engine := view.New(nil, editor.Templates())

	if f.formFile != "" {
		fd, err := form.LoadFormDef(f.formFile)
		if err != nil {
			return editor.Media{}, err
		}
		form.Register(fd)
		return form.NewRenderer(s, engine, nil).Media(fd.ID)
	}

	var over editor.Options
	if f.mode != "" {
		mode, err := editor.ParseMode(f.mode)
		if err != nil {
			return editor.Media{}, err
		}
		over.Mode = mode
	}
	if f.theme != "" {
		over.Theme = editor.NormalizeTheme(f.theme)
	}
	over.Utilities = f.utilities

	w, err := editor.NewFromProfile(s, engine, f.profile, over)
	if err != nil {
		return editor.Media{}, err
	}
	return w.Media(), nil
}

func write(w io.Writer, format string, m editor.Media) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(m)
	}
	for _, s := range m.Styles {
		if _, err := fmt.Fprintln(w, "style  "+s); err != nil {
			return err
		}
	}
	for _, s := range m.Scripts {
		if _, err := fmt.Fprintln(w, "script "+s); err != nil {
			return err
		}
	}
	return nil
}

// exitCodeFor maps resolver rejections to ExitUsage.  Everything else,
// including unreadable form files, is ExitGeneral.
func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, editor.ErrUnsupportedModeShape),
		errors.Is(err, editor.ErrUnsupportedMimeType),
		errors.Is(err, editor.ErrInvalidConfiguration):
		return ExitUsage
	default:
		return ExitGeneral
	}
}
