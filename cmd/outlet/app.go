package main

import (
	"log/slog"

	"github.com/vango-dev/outlet/internal/config"
	"github.com/vango-dev/outlet/internal/errors"
	"github.com/vango-dev/outlet/internal/logging"
	"github.com/vango-dev/outlet/internal/manifest"
	"github.com/vango-dev/outlet/pkg/loader"
	"github.com/vango-dev/outlet/pkg/route"
)

// app is the loaded configuration and route tree.
type app struct {
	cfg    *config.Config
	tree   *route.Tree
	logger *slog.Logger
}

func loadApp(flags *rootFlags) (*app, error) {
	cfg, err := config.Load(flags.dir)
	if err != nil {
		return nil, err
	}
	if flags.manifest != "" {
		cfg.Manifest = flags.manifest
	}
	if flags.strategy != "" {
		cfg.Loader.Strategy = flags.strategy
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level, _ := logging.ParseLevel(cfg.Log.Level)
	logger, err := logging.New(level, cfg.Log.Format)
	if err != nil {
		return nil, errors.New("E105").Wrap(err)
	}

	m, err := manifest.Load(cfg.ManifestPath())
	if err != nil {
		return nil, err
	}
	tree, err := manifest.Tree(m)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, tree: tree, logger: logger}, nil
}

func (a *app) runner() *loader.Runner {
	return loader.NewRunner(a.tree,
		loader.WithStrategy(a.cfg.Strategy()),
		loader.WithConcurrency(a.cfg.Loader.Concurrency),
		loader.WithLogger(a.logger.With("component", "loader")),
	)
}
