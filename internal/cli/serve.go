package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/sqing33/stickyboard/pkg/cache"
	"github.com/sqing33/stickyboard/pkg/config"
	"github.com/sqing33/stickyboard/pkg/estimate"
	"github.com/sqing33/stickyboard/pkg/measure"
	"github.com/sqing33/stickyboard/pkg/server"
	"github.com/sqing33/stickyboard/pkg/session"
	"github.com/sqing33/stickyboard/pkg/store"
)

// shutdownTimeout bounds how long in-flight requests may run after the
// process receives a stop signal.
const shutdownTimeout = 10 * time.Second

// serveCommand creates the "serve" command running the notes API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		configFile string
		listen     string
		dbURL      string
		noAuth     bool
		noCache    bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the notes API server",
		Long: `Run the HTTP server exposing the board API: list, create, patch, and
delete notes for the authenticated owner. Without --database-url notes
live in memory and vanish on restart.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if configFile == "" {
				configFile = configPath()
			}
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("listen") {
				cfg.Listen = listen
			}
			if cmd.Flags().Changed("database-url") {
				cfg.DatabaseURL = dbURL
			}
			if cmd.Flags().Changed("no-auth") {
				cfg.NoAuth = noAuth
			}

			return c.runServer(cmd.Context(), cfg, noCache)
		},
	}

	cmd.Flags().StringVar(&configFile, "config", "", "config file (default ~/.config/stickyboard/config.toml)")
	cmd.Flags().StringVar(&listen, "listen", ":8420", "HTTP listen address")
	cmd.Flags().StringVar(&dbURL, "database-url", "", "Postgres connection URL (default: in-memory store)")
	cmd.Flags().BoolVar(&noAuth, "no-auth", false, "map every request to a fixed local owner (development only)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the size-estimate cache")

	return cmd
}

func (c *CLI) runServer(ctx context.Context, cfg config.Config, noCache bool) error {
	st, err := c.newStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	sessions, err := newSessionStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer sessions.Close()

	estCache, err := c.newServerCache(ctx, cfg, noCache)
	if err != nil {
		return err
	}
	defer estCache.Close()

	srv := server.New(server.Config{
		Store:     st,
		Sessions:  sessions,
		Estimator: estimate.New(measure.DefaultFont, estCache),
		Env:       cfg.Estimate,
		NoAuth:    cfg.NoAuth,
		Logger:    c.Logger,
	})

	httpSrv := &http.Server{
		Addr:    cfg.Listen,
		Handler: srv.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("listening", "addr", cfg.Listen, "auth", !cfg.NoAuth)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// newStore selects the note store: Postgres when a database URL is
// configured (migrating first), otherwise in-memory.
func (c *CLI) newStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	if cfg.DatabaseURL == "" {
		c.Logger.Warn("no database configured, notes are stored in memory only")
		return store.NewMemoryStore(), nil
	}

	p := newProgress(c.Logger)
	if err := store.Migrate(cfg.DatabaseURL); err != nil {
		return nil, err
	}
	st, err := store.NewPostgres(ctx, cfg.DatabaseURL, c.Logger)
	if err != nil {
		return nil, err
	}
	p.done("Connected to database")
	return st, nil
}

func newSessionStore(ctx context.Context, cfg config.Config) (session.Store, error) {
	switch cfg.SessionBackend {
	case "file":
		return session.NewFileStore("")
	case "redis":
		return session.NewRedisStore(ctx, session.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	default:
		return session.NewMemoryStore(), nil
	}
}

// newServerCache prefers Redis when configured so estimates are shared
// across instances, falling back to the local file cache.
func (c *CLI) newServerCache(ctx context.Context, cfg config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if cfg.RedisAddr != "" {
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	}
	return newEstimateCache(false)
}
