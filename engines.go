/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package sportstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/suparena/sportstore/config"
	"github.com/suparena/sportstore/datastore"
	"github.com/suparena/sportstore/datastore/ddb"
	"github.com/suparena/sportstore/datastore/memdb"
	"github.com/suparena/sportstore/datastore/sqlite"
)

// EngineFactory builds the engine named in store.engine.
type EngineFactory func(ctx context.Context, cfg *config.Config) (datastore.Engine, error)

var (
	enginesMu sync.RWMutex
	engines   = map[string]EngineFactory{
		config.EngineMemory:   newMemoryEngine,
		config.EngineSQLite:   newSQLiteEngine,
		config.EngineDynamoDB: newDynamoDBEngine,
	}
)

// RegisterEngine makes an engine available under name.
func RegisterEngine(name string, factory EngineFactory) error {
	enginesMu.Lock()
	defer enginesMu.Unlock()

	if _, exists := engines[name]; exists {
		return fmt.Errorf("engine %q already registered", name)
	}
	engines[name] = factory
	return nil
}

// Engines returns the registered engine names, sorted.
func Engines() []string {
	enginesMu.RLock()
	defer enginesMu.RUnlock()

	names := make([]string, 0, len(engines))
	for name := range engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func engineFactory(name string) (EngineFactory, error) {
	enginesMu.RLock()
	defer enginesMu.RUnlock()

	factory, exists := engines[name]
	if !exists {
		return nil, fmt.Errorf("engine %q not registered", name)
	}
	return factory, nil
}

func newMemoryEngine(context.Context, *config.Config) (datastore.Engine, error) {
	return memdb.New(), nil
}

func newSQLiteEngine(_ context.Context, cfg *config.Config) (datastore.Engine, error) {
	return sqlite.Open(cfg.Store.Path)
}

func newDynamoDBEngine(ctx context.Context, cfg *config.Config) (datastore.Engine, error) {
	client, err := ddb.NewDynamoDBClient(ctx, ddb.ClientConfig{
		Region:    cfg.DynamoDB.Region,
		AccessKey: cfg.DynamoDB.AccessKey,
		SecretKey: cfg.DynamoDB.SecretKey,
		Endpoint:  cfg.DynamoDB.Endpoint,
	})
	if err != nil {
		return nil, err
	}
	engine := ddb.New(client, cfg.DynamoDB.Table)
	if err := engine.EnsureTable(ctx, 2*time.Minute); err != nil {
		return nil, err
	}
	return engine, nil
}
