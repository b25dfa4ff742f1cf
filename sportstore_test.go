/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package sportstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/sportstore/config"
	"github.com/suparena/sportstore/datastore"
	"github.com/suparena/sportstore/datastore/cached"
	"github.com/suparena/sportstore/datastore/mock"
	storeerrors "github.com/suparena/sportstore/errors"
	"github.com/suparena/sportstore/model"
)

func memoryConfig() *config.Config {
	return &config.Config{Store: config.StoreConfig{Engine: config.EngineMemory}}
}

func TestOpenMemory(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, memoryConfig(), nil)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	u := model.NewUser()
	require.NoError(t, store.Save(ctx, u))

	found, ok, err := datastore.FindByUnique[*model.User](ctx, store.Datastore, model.UserEmailAddressKey, u.EmailAddress())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, found.Equal(u))

	families, err := store.Metrics.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "sportstore_store_mutations_total")
}

func TestOpenSQLiteWithCache(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{Store: config.StoreConfig{
		Engine:    config.EngineSQLite,
		Path:      filepath.Join(t.TempDir(), "store.db"),
		CacheSize: 32,
	}}

	store, err := Open(ctx, cfg, nil)
	require.NoError(t, err)
	_, isCached := store.Engine().(*cached.Engine)
	assert.True(t, isCached)

	plan := model.NewRunningPlan("Spring 10k")
	require.NoError(t, store.Save(ctx, plan))
	require.NoError(t, store.Close())

	store, err = Open(ctx, cfg, nil)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	found, ok, err := datastore.FindByIdentifier[*model.RunningPlan](ctx, store.Datastore, plan.Identifier())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Spring 10k", found.Name())
}

func TestOpenRejectsInvalidConfig(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{Store: config.StoreConfig{Engine: "cassandra"}}, nil)
	assert.True(t, storeerrors.IsValidationError(err))
}

func TestRegisterEngine(t *testing.T) {
	engine := mock.New()
	require.NoError(t, RegisterEngine("mock-register-test", func(context.Context, *config.Config) (datastore.Engine, error) {
		return engine, nil
	}))
	assert.Error(t, RegisterEngine("mock-register-test", nil))
	assert.Error(t, RegisterEngine(config.EngineMemory, nil))
	assert.Contains(t, Engines(), "mock-register-test")

	factory, err := engineFactory("mock-register-test")
	require.NoError(t, err)
	got, err := factory(context.Background(), memoryConfig())
	require.NoError(t, err)
	assert.Same(t, engine, got)

	_, err = engineFactory("missing")
	assert.Error(t, err)
}

func TestVersionInfo(t *testing.T) {
	info := GetVersionInfo()
	assert.Equal(t, Version, info.Version)
	assert.NotEmpty(t, info.GoVersion)
}
