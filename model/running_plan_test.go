/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package model_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/sportstore/datastore"
	"github.com/suparena/sportstore/model"
	"github.com/suparena/sportstore/storagemodels"
)

func TestRunningPlanRoundTrip(t *testing.T) {
	m := storagemodels.EpochMillisMapper{}

	p := model.NewRunningPlan("Half marathon")
	p.SetRemarks("three runs a week")
	p.SetStartDate(date(2025, time.January, 6))
	p.SetCompleted(true)

	back, err := model.RehydrateRunningPlan(m, p.Write(m))
	require.NoError(t, err)
	assert.True(t, p.Equal(back))
	assert.Equal(t, p.Hash(), back.Hash())
	assert.Equal(t, "Half marathon", back.Name())
	assert.Equal(t, "three runs a week", back.Remarks())
	assert.Equal(t, date(2025, time.January, 6), back.StartDate())
	assert.True(t, back.Completed())
	assert.Equal(t, "Half marathon (2025-01-06)", back.String())
}

func TestRunningPlanUpdateAndList(t *testing.T) {
	ctx := context.Background()
	ds := newStore(t)

	a := model.NewRunningPlan("5k")
	b := model.NewRunningPlan("10k")
	require.NoError(t, ds.Save(ctx, a))
	require.NoError(t, ds.Save(ctx, b))

	a.SetCompleted(true)
	require.NoError(t, ds.Update(ctx, a))

	plans, err := datastore.FindAll[*model.RunningPlan](ctx, ds)
	require.NoError(t, err)
	require.Len(t, plans, 2)

	for _, p := range plans {
		if p.Equal(a) {
			assert.True(t, p.Completed())
		} else {
			assert.False(t, p.Completed())
		}
	}
}

func TestRunningPlanReadNilDocument(t *testing.T) {
	p := model.NewRunningPlan("Half marathon")
	p.SetRemarks("three runs a week")
	p.SetStartDate(date(2025, time.January, 6))
	id := p.Identifier()

	require.NoError(t, p.Read(storagemodels.DefaultMapper{}, nil))
	assert.True(t, id.Equal(p.Identifier()))
	assert.Equal(t, "Half marathon", p.Name())
	assert.Equal(t, "three runs a week", p.Remarks())
	assert.Equal(t, date(2025, time.January, 6), p.StartDate())
	assert.False(t, p.Completed())
}
