package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"scrumbringer-admin/internal/api"
	"scrumbringer-admin/internal/app"
	"scrumbringer-admin/internal/config"
	"scrumbringer-admin/internal/i18n"
	"scrumbringer-admin/internal/runner"
	"scrumbringer-admin/internal/store"
)

// Env is everything a command needs once flags, environment and the config
// file are merged.
type Env struct {
	Backend api.Backend
	// Local is set when Backend is the sqlite backend.
	Local   *store.Backend
	Runner  *runner.Runner
	Options app.Options
	Log     *slog.Logger

	closers []io.Closer
}

func (e *Env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		_ = e.closers[i].Close()
	}
}

func firstNonEmpty(vs ...string) string {
	for _, v := range vs {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

func durationMs(ms int, def time.Duration) time.Duration {
	if ms <= 0 {
		return def
	}
	return time.Duration(ms) * time.Millisecond
}

// options merges the config file into the defaults; flags already hold the
// environment fallback.
func options(a *App, cfg *config.Config) app.Options {
	opts := app.DefaultOptions()
	opts.Settings.SearchDebounce = durationMs(cfg.SearchDebounceMs, opts.Settings.SearchDebounce)
	if cfg.ExecutionsPageSize > 0 {
		opts.Settings.ExecutionsPageSize = cfg.ExecutionsPageSize
	}
	if cfg.MetricsDays > 0 {
		opts.Settings.MetricsDays = cfg.MetricsDays
	}
	opts.ToastDuration = durationMs(cfg.ToastMs, opts.ToastDuration)
	opts.Locale = i18n.Match(firstNonEmpty(a.Locale, cfg.Locale, os.Getenv("LANG")))
	opts.Theme = firstNonEmpty(a.Theme, cfg.Theme, opts.Theme)
	return opts
}

func newLogger(path string) (*slog.Logger, io.Closer, error) {
	if path == "" {
		return slog.New(slog.DiscardHandler), nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})), f, nil
}

// localPath resolves the sqlite path: --local/SBADMIN_LOCAL, then the config
// file, then ~/.sbadmin/local.sqlite.
func localPath(a *App, cfg *config.Config) (string, error) {
	if p := firstNonEmpty(a.Local, cfg.LocalDB); p != "" {
		return p, nil
	}
	return config.DefaultLocalDB()
}

func openLocal(ctx context.Context, a *App, cfg *config.Config) (*store.Backend, error) {
	path, err := localPath(a, cfg)
	if err != nil {
		return nil, err
	}
	return store.Open(ctx, path)
}

// resolve builds the backend and runner. An explicit --local wins over an API
// URL from the config file; otherwise any API URL selects the HTTP backend.
func resolve(a *App) (*Env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	env := &Env{Options: options(a, cfg)}

	log, closer, err := newLogger(firstNonEmpty(a.LogFile, cfg.LogFile))
	if err != nil {
		return nil, err
	}
	env.Log = log
	if closer != nil {
		env.closers = append(env.closers, closer)
	}

	apiURL := a.API
	if apiURL == "" && a.Local == "" {
		apiURL = cfg.APIURL
	}
	if apiURL != "" {
		env.Backend = api.NewHTTPBackend(apiURL, firstNonEmpty(a.Token, cfg.Token))
		log.Info("backend", "kind", "http", "url", apiURL)
	} else {
		local, err := openLocal(context.Background(), a, cfg)
		if err != nil {
			env.Close()
			return nil, err
		}
		env.Local = local
		env.Backend = local
		env.closers = append(env.closers, local)
		log.Info("backend", "kind", "local")
	}
	env.Runner = runner.New(env.Backend, runner.WithLogger(log))
	return env, nil
}

var errNeedsLocal = errors.New("this command works on the local backend only (drop --api)")
