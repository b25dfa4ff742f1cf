/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package metrics_test

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/sportstore/datastore"
	"github.com/suparena/sportstore/datastore/cached"
	"github.com/suparena/sportstore/datastore/memdb"
	"github.com/suparena/sportstore/metrics"
	"github.com/suparena/sportstore/model"
	"github.com/suparena/sportstore/registry"
)

func TestDelegateCountsMutations(t *testing.T) {
	ctx := context.Background()
	types := registry.NewRegistry()
	require.NoError(t, model.Register(types))

	ds, err := datastore.New(ctx, memdb.New(), datastore.WithRegistry(types))
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	ds.RegisterDelegate(metrics.NewDelegate(reg, types))

	u := model.NewUser()
	require.NoError(t, ds.Save(ctx, u))
	u.SetMaxPulse(180)
	require.NoError(t, ds.Update(ctx, u))
	require.NoError(t, ds.Update(ctx, u))
	require.NoError(t, ds.Delete(ctx, u))

	// A failed save is not counted.
	assert.Error(t, ds.Update(ctx, model.NewUser()))

	expected := `
# HELP sportstore_store_mutations_total Total number of confirmed store mutations by entity type and event
# TYPE sportstore_store_mutations_total counter
sportstore_store_mutations_total{event="added",type="users"} 1
sportstore_store_mutations_total{event="removed",type="users"} 1
sportstore_store_mutations_total{event="updated",type="users"} 2
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "sportstore_store_mutations_total"))
}

func TestCacheStats(t *testing.T) {
	ctx := context.Background()
	engine, err := cached.Wrap(memdb.New(), 8)
	require.NoError(t, err)
	require.NoError(t, engine.EnsureCollection(ctx, "users", nil))

	reg := prometheus.NewRegistry()
	metrics.RegisterCacheStats(reg, engine)

	_, err = engine.Get(ctx, "users", "missing")
	assert.Error(t, err)

	expected := `
# HELP sportstore_cache_misses_total Total number of reads that went to the underlying engine
# TYPE sportstore_cache_misses_total counter
sportstore_cache_misses_total 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "sportstore_cache_misses_total"))
}
