package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/adaptlearn/internal/api"
	"github.com/abhisek/adaptlearn/internal/app"
	"github.com/abhisek/adaptlearn/internal/auth"
	"github.com/abhisek/adaptlearn/internal/config"
	"github.com/abhisek/adaptlearn/internal/logging"
	"github.com/abhisek/adaptlearn/internal/store"
	"github.com/abhisek/adaptlearn/internal/tracing"
)

// deps is everything a command needs to talk to the backend.
type deps struct {
	cfg     *config.Config
	log     *zap.Logger
	store   *store.Store
	tokens  *auth.TokenStore
	client  *api.Client
	auth    *auth.Service
	signals *app.Signals

	closers []func()
}

// buildDeps loads config and opens the logger, tracer, store and API client.
// Callers must Close the result.
func buildDeps(cmd *cobra.Command) (*deps, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	d := &deps{cfg: cfg, signals: app.NewSignals()}

	logFile := cfg.Log.File
	if logFile == "" {
		dir, err := store.DataDir()
		if err != nil {
			return nil, err
		}
		logFile = logging.DefaultFile(dir)
	}
	log, flush, err := logging.New(logging.Options{Level: cfg.Log.Level, File: logFile})
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}
	d.log = log
	d.closers = append(d.closers, flush)

	shutdown, err := tracing.Init(tracing.Options{
		Enabled:           cfg.Tracing.Enabled,
		ServiceName:       cfg.Tracing.ServiceName,
		CollectorEndpoint: cfg.Tracing.CollectorEndpoint,
	})
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	d.closers = append(d.closers, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(ctx); err != nil {
			log.Warn("tracer shutdown failed", zap.Error(err))
		}
	})

	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}
	d.store = st
	d.closers = append(d.closers, func() { _ = st.Close() })

	d.tokens, err = auth.NewTokenStore(cmd.Context(), st.TokenRepo())
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("load token: %w", err)
	}

	d.client, err = api.New(api.Options{
		BaseURL:        cfg.API.BaseURL,
		Timeout:        cfg.API.Timeout,
		Tokens:         d.tokens,
		Limiter:        api.NewLimiter(cfg.API.RateLimit, cfg.API.RateBurst),
		Recorder:       st.EventRepo(),
		Logger:         log.Named("api"),
		OnUnauthorized: d.signals.Unauthorized,
	})
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("create API client: %w", err)
	}
	d.auth = auth.NewService(d.client, d.tokens, log.Named("auth"))

	log.Debug("dependencies ready",
		zap.String("api", cfg.API.BaseURL),
		zap.String("db", dbPath),
	)
	return d, nil
}

// Close releases resources in reverse order of acquisition.
func (d *deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
	d.closers = nil
}

// requireSignIn fails fast for commands that need a token.
func (d *deps) requireSignIn() error {
	if !d.tokens.SignedIn() {
		return fmt.Errorf("not signed in; run `adaptlearn login` first")
	}
	return nil
}
