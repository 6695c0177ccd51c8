package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/outlet/internal/config"
	"github.com/vango-dev/outlet/internal/errors"
	"github.com/vango-dev/outlet/pkg/datacache"
	"github.com/vango-dev/outlet/pkg/middleware"
	"github.com/vango-dev/outlet/pkg/server"
)

func serveCmd(flags *rootFlags) *cobra.Command {
	var address string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the route tree over HTTP and WebSocket",
		Long: `Serve document loads, submissions and websocket transitions.

Examples:
  outlet serve
  outlet serve --address=:8080
  outlet serve -m app/routes.yaml --strategy=parallel`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(flags)
			if err != nil {
				return err
			}
			if address != "" {
				a.cfg.Address = address
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd, a)
		},
	}

	cmd.Flags().StringVarP(&address, "address", "a", "", "Address to listen on (default from outlet.json)")

	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command, a *app) error {
	store, err := openStore(ctx, a.cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	shutdown, _ := a.cfg.ShutdownDuration()
	srv := server.New(a.runner(), &server.ServerConfig{
		Address:         a.cfg.Address,
		Store:           store,
		DisableMetrics:  !a.cfg.Metrics.Enabled,
		ShutdownTimeout: shutdown,
	})
	srv.SetLogger(a.logger.With("component", "server"))
	if a.cfg.Metrics.Enabled {
		srv.Use(middleware.Prometheus(middleware.WithNamespace(a.cfg.Metrics.Namespace)))
	}
	if a.cfg.Tracing.Enabled {
		srv.Use(middleware.OpenTelemetry(middleware.WithTracerName(a.cfg.Tracing.TracerName)))
	}

	success(cmd, "serving %d routes on http://%s", len(a.tree.Branches()), a.cfg.Address)
	info(cmd, "loader strategy: %s, cache: %s", a.cfg.Strategy(), a.cfg.Cache.Backend)

	if err := srv.ListenAndServe(ctx); err != nil {
		return errors.New("E400").Wrap(err)
	}
	return nil
}

func openStore(ctx context.Context, cfg *config.Config) (datacache.Store, error) {
	ttl, _ := cfg.CacheTTL()
	switch cfg.Cache.Backend {
	case config.BackendRedis:
		store := datacache.NewRedisStore(cfg.Cache.Addr, cfg.Cache.Password, cfg.Cache.DB,
			datacache.WithTTL(ttl),
			datacache.WithPrefix(cfg.Cache.Prefix),
		)
		if err := store.Ping(ctx); err != nil {
			store.Close()
			return nil, errors.New("E401").
				Wrap(err).
				WithSuggestion(fmt.Sprintf("Check that redis is reachable at %s", cfg.Cache.Addr))
		}
		return store, nil
	default:
		return datacache.NewMemoryStore(datacache.WithMemoryTTL(ttl)), nil
	}
}
