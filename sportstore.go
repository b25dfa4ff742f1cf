/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package sportstore

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/suparena/sportstore/config"
	"github.com/suparena/sportstore/datastore"
	"github.com/suparena/sportstore/datastore/cached"
	"github.com/suparena/sportstore/metrics"
	"github.com/suparena/sportstore/model"
	"github.com/suparena/sportstore/registry"
)

// Store is a Datastore opened from configuration, with the model types
// registered and mutation metrics attached.
type Store struct {
	*datastore.Datastore

	// Metrics holds the store's collectors. It is private to the Store so
	// several stores can live in one process.
	Metrics *prometheus.Registry
}

// Open builds the configured engine and a Datastore on top of it. A nil
// logger disables logging.
func Open(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}

	factory, err := engineFactory(cfg.Store.Engine)
	if err != nil {
		return nil, err
	}
	engine, err := factory(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s engine: %w", cfg.Store.Engine, err)
	}

	reg := prometheus.NewRegistry()
	if cfg.Store.CacheSize > 0 {
		c, err := cached.Wrap(engine, cfg.Store.CacheSize)
		if err != nil {
			_ = engine.Close()
			return nil, err
		}
		metrics.RegisterCacheStats(reg, c)
		engine = c
	}

	types := registry.NewRegistry()
	if err := model.Register(types); err != nil {
		_ = engine.Close()
		return nil, err
	}

	ds, err := datastore.New(ctx, engine,
		datastore.WithRegistry(types),
		datastore.WithLogger(log.Named("datastore")),
	)
	if err != nil {
		_ = engine.Close()
		return nil, err
	}
	ds.RegisterDelegate(metrics.NewDelegate(reg, types))

	log.Debug("store opened",
		zap.String("engine", cfg.Store.Engine),
		zap.Int("cacheSize", cfg.Store.CacheSize))
	return &Store{Datastore: ds, Metrics: reg}, nil
}
