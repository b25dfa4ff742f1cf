/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package metrics exposes store activity to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/suparena/sportstore/datastore"
	"github.com/suparena/sportstore/datastore/cached"
	"github.com/suparena/sportstore/registry"
	"github.com/suparena/sportstore/storagemodels"
)

const (
	namespace = "sportstore"
	subsystem = "store"
)

// Delegate counts store mutations per entity type and event.
type Delegate struct {
	types     *registry.Registry
	mutations *prometheus.CounterVec
}

var _ datastore.Delegate = (*Delegate)(nil)

// NewDelegate registers the mutation counter on reg.
func NewDelegate(reg prometheus.Registerer, types *registry.Registry) *Delegate {
	return &Delegate{
		types: types,
		mutations: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "mutations_total",
				Help:      "Total number of confirmed store mutations by entity type and event",
			},
			[]string{"type", "event"},
		),
	}
}

func (d *Delegate) typeName(obj storagemodels.PersistentObject) string {
	et, err := d.types.Lookup(obj)
	if err != nil {
		return "unknown"
	}
	return et.Name
}

func (d *Delegate) DidObjectAdded(obj storagemodels.PersistentObject) {
	d.mutations.WithLabelValues(d.typeName(obj), "added").Inc()
}

func (d *Delegate) DidObjectUpdated(obj storagemodels.PersistentObject) {
	d.mutations.WithLabelValues(d.typeName(obj), "updated").Inc()
}

func (d *Delegate) DidObjectRemoved(obj storagemodels.PersistentObject) {
	d.mutations.WithLabelValues(d.typeName(obj), "removed").Inc()
}

// RegisterCacheStats exposes the counters of a cached engine on reg.
func RegisterCacheStats(reg prometheus.Registerer, engine *cached.Engine) {
	f := promauto.With(reg)
	f.NewCounterFunc(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total number of reads served from the document cache",
	}, func() float64 { return float64(engine.Stats().Hits) })
	f.NewCounterFunc(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total number of reads that went to the underlying engine",
	}, func() float64 { return float64(engine.Stats().Misses) })
	f.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "cache",
		Name:      "documents",
		Help:      "Number of documents currently cached",
	}, func() float64 { return float64(engine.Stats().Size) })
}
