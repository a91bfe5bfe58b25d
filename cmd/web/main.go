// cmd/web/main.go
//
// Demo host – HTTP entry point.
//
// Start-up
// --------
//
//  1. Load configuration (conf/.env → conf/global.yaml → CMW_ env vars).
//
//  2. Start daily rotating logger (tees to console when running in a TTY).
//
//  3. Register form definitions from the configured directories.
//
//  4. Open the optional database and create the submission table.
//
//  5. Build the view engine: site template dir (optional) → component
//     templates → embedded editor templates, with the codeEditor and
//     editorMedia template helpers.
//
//  6. Router:
//
//     • chi RequestID, RealIP, Recoverer
//     • request logger            – request-scoped zap logger in ctx
//     • security headers          – CSP allows the inline editor bootstrap
//     • ForceHTTPS (optional)     – 308 to https for non-loopback hosts
//     • /metrics                  – Prometheus
//     • <static_url>*             – CodeMirror distribution from static_dir
//     • components                – forms pages and media API
//
//  7. Serve until SIGINT/SIGTERM, then shut down gracefully.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"encoding/base64"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/yanizio/cmwidget/components/forms"
	"github.com/yanizio/cmwidget/internal/component"
	"github.com/yanizio/cmwidget/internal/config"
	"github.com/yanizio/cmwidget/internal/database"
	"github.com/yanizio/cmwidget/internal/editor"
	"github.com/yanizio/cmwidget/internal/form"
	"github.com/yanizio/cmwidget/internal/logger"
	"github.com/yanizio/cmwidget/internal/middleware"
	"github.com/yanizio/cmwidget/internal/server"
	"github.com/yanizio/cmwidget/internal/view"
	"github.com/yanizio/cmwidget/internal/viewhelpers"
)

// host implements component.Host.
type host struct {
	db       *sqlx.DB
	settings editor.Settings
	views    *view.Engine
}

func (h *host) DB() *sqlx.DB                    { return h.db }
func (h *host) EditorSettings() editor.Settings { return h.settings }
func (h *host) Views() *view.Engine             { return h.views }

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logOut, err := logger.New(logger.Options{Dir: cfg.Log.Dir, Level: cfg.Log.Level, Tee: runningInTTY()})
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}
	defer logOut.Sync()

	//
	// ── 1.  Forms ───────────────────────────────────────────────────────
	//
	dirs := cfg.Forms.Dirs
	if len(dirs) == 0 {
		dirs = []string{cfg.Paths.Root}
	}
	if err := form.RegisterForms(dirs); err != nil {
		logOut.Fatalw("register forms", "err", err)
	}
	if cfg.Forms.CSRFKey != "" {
		key, _ := base64.RawURLEncoding.DecodeString(cfg.Forms.CSRFKey)
		if err := form.SetSecret(key); err != nil {
			logOut.Fatalw("forms.csrf_key", "err", err)
		}
	}

	//
	// ── 2.  Optional database ───────────────────────────────────────────
	//
	var db *sqlx.DB
	if cfg.Database.DSN != "" {
		db, err = database.Open(ctx, cfg.Database.DSN)
		if err != nil {
			logOut.Fatalw("connect database", "err", err)
		}
		defer db.Close()
		if err := database.EnsureSubmissionTable(ctx, db, form.DefaultTable); err != nil {
			logOut.Fatalw("prepare submission table", "err", err)
		}
		logOut.Infow("database online")
	} else {
		logOut.Infow("no database configured, store actions will fail")
	}

	//
	// ── 3.  Views and components ────────────────────────────────────────
	//
	var sources []fs.FS
	if cfg.Editor.TemplateDir != "" {
		sources = append(sources, os.DirFS(cfg.Editor.TemplateDir))
	}
	sources = append(sources, forms.Templates(), editor.Templates())

	eh := &viewhelpers.Editors{Settings: cfg.Editor.Settings()}
	h := &host{
		db:       db,
		settings: eh.Settings,
		views:    view.New(viewhelpers.FuncMap(eh), sources...),
	}
	eh.Renderer = h.views

	r := chi.NewRouter()
	r.Use(chimw.RequestID, chimw.RealIP, chimw.Recoverer)
	r.Use(middleware.RequestLogger(logOut))
	r.Use(middleware.Security(cfg.HTTP.CSP, cfg.HTTP.ForceHTTPS))
	if cfg.HTTP.ForceHTTPS {
		r.Use(middleware.ForceHTTPS)
	}

	r.Handle("/metrics", promhttp.Handler())
	mountStatic(r, h.settings.StaticURL, cfg.Editor.StaticDir, logOut)

	if err := component.Mount(r, h); err != nil {
		logOut.Fatalw("mount components", "err", err)
	}

	//
	// ── 4.  Serve ───────────────────────────────────────────────────────
	//
	if err := server.Run(ctx, server.New(cfg.HTTP.ListenAddr, r)); err != nil {
		logOut.Fatalw("http server", "err", err)
	}
}

// mountStatic serves dir under prefix.  Absolute URLs (CDN) and an empty dir
// leave static hosting to someone else.
func mountStatic(r chi.Router, prefix, dir string, l *zap.SugaredLogger) {
	if dir == "" || !strings.HasPrefix(prefix, "/") || strings.HasPrefix(prefix, "//") {
		l.Infow("static files not served by this host", "static_url", prefix)
		return
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	r.Handle(prefix+"*", http.StripPrefix(prefix, http.FileServer(http.Dir(dir))))
	l.Infow("serving static files", "static_url", prefix, "dir", dir)
}
