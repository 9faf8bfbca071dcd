package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/aymenmerabta5/actionize"
	"github.com/aymenmerabta5/actionize/formdef"
	"github.com/aymenmerabta5/actionize/i18n"
	"github.com/aymenmerabta5/actionize/middleware"
	"github.com/fsnotify/fsnotify"
	"github.com/joeshaw/envdecode"
)

// serveConfig is read from the environment; flags override it.
type serveConfig struct {
	// Addr to listen on. ENV: ACTIONIZE_ADDR
	Addr string `env:"ACTIONIZE_ADDR,default=:8080"`
	// Definition is the YAML form definition. ENV: ACTIONIZE_DEFINITION
	Definition string `env:"ACTIONIZE_DEFINITION"`
	// Lang selects the message language. ENV: ACTIONIZE_LANG
	Lang string `env:"ACTIONIZE_LANG,default=en"`
	// LogLevel is one of debug, info, warn, error. ENV: ACTIONIZE_LOG_LEVEL
	LogLevel string `env:"ACTIONIZE_LOG_LEVEL,default=info"`
}

func loadServeConfig(args []string) (serveConfig, error) {
	var cfg serveConfig
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return cfg, fmt.Errorf("read environment: %w", err)
	}
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	fs.StringVar(&cfg.Definition, "f", cfg.Definition, "form definition (YAML)")
	fs.StringVar(&cfg.Lang, "lang", cfg.Lang, "message language (en, ja)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.Definition == "" {
		return cfg, errors.New("a form definition is required (-f or ACTIONIZE_DEFINITION)")
	}
	return cfg, nil
}

func parseLevel(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// formServer serves the current definition and swaps it on reload.
type formServer struct {
	path    string
	log     *slog.Logger
	current atomic.Pointer[loadedForm]
}

type loadedForm struct {
	def    *formdef.Definition
	submit http.Handler
	schema http.Handler
}

func newFormServer(path string, log *slog.Logger) (*formServer, error) {
	s := &formServer{path: path, log: log}
	if err := s.reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// reload builds a new form from disk. The previous form stays in place when
// the file is invalid.
func (s *formServer) reload() error {
	def, obj, err := loadDefinition(s.path)
	if err != nil {
		return err
	}
	log := s.log
	action := actionize.Build[map[string]any, map[string]any](obj, func(ctx context.Context, in map[string]any) (map[string]any, error) {
		log.InfoContext(ctx, "form.submitted", slog.String("form", def.Title), slog.Int("fields", len(in)))
		return in, nil
	})
	cfg := actionize.BuildConfig[map[string]any, map[string]any](obj, action, nil)
	s.current.Store(&loadedForm{
		def:    def,
		submit: middleware.Handler(cfg, middleware.Options{Logger: s.log}),
		schema: middleware.SchemaHandler(obj),
	})
	s.log.Info("definition.loaded", slog.String("path", s.path), slog.Int("fields", len(def.Fields)))
	return nil
}

func (s *formServer) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/submit", func(w http.ResponseWriter, r *http.Request) {
		s.current.Load().submit.ServeHTTP(w, r)
	})
	mux.HandleFunc("/schema", func(w http.ResponseWriter, r *http.Request) {
		s.current.Load().schema.ServeHTTP(w, r)
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_ = middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return mux
}

// watch reloads the definition whenever its file changes. The parent
// directory is watched so editors that replace the file are handled.
func (s *formServer) watch(ctx context.Context) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		s.log.Debug("fsnotify unavailable", slog.String("err", err.Error()))
		return
	}
	defer func() {
		_ = w.Close()
	}()
	target, err := filepath.Abs(s.path)
	if err != nil {
		target = s.path
	}
	if err := w.Add(filepath.Dir(target)); err != nil {
		s.log.Warn("definition.watch", slog.String("err", err.Error()))
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			name, err := filepath.Abs(ev.Name)
			if err != nil || name != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if err := s.reload(); err != nil {
				s.log.Warn("definition.reload", slog.String("path", s.path), slog.String("err", err.Error()))
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			s.log.Debug("fsnotify error", slog.String("err", err.Error()))
		}
	}
}

func serveCmd(ctx context.Context, args []string) error {
	cfg, err := loadServeConfig(args)
	if err != nil {
		return err
	}
	i18n.SetLanguage(cfg.Lang)
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))

	fsrv, err := newFormServer(cfg.Definition, log)
	if err != nil {
		return err
	}
	go fsrv.watch(ctx)

	srv := &http.Server{Addr: cfg.Addr, Handler: fsrv.routes(), ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		log.Info("server.start", slog.String("addr", cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		log.Info("server.stop")
		return srv.Shutdown(shutdownCtx)
	}
}
