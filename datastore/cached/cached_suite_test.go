/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package cached_test

import (
	"context"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/suparena/sportstore/datastore"
	"github.com/suparena/sportstore/datastore/cached"
	"github.com/suparena/sportstore/datastore/enginetest"
	"github.com/suparena/sportstore/datastore/memdb"
	"github.com/suparena/sportstore/datastore/mock"
	"github.com/suparena/sportstore/errors"
	"github.com/suparena/sportstore/storagemodels"
)

func TestCached(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Cached Engine Suite")
}

var _ datastore.Engine = (*cached.Engine)(nil)

var _ = enginetest.DescribeEngine("cached memdb", func() datastore.Engine {
	engine, err := cached.Wrap(memdb.New(), 16)
	Expect(err).NotTo(HaveOccurred())
	return engine
})

var _ = Describe("Cached engine", func() {
	var (
		ctx    context.Context
		inner  *mock.Engine
		engine *cached.Engine
	)

	BeforeEach(func() {
		ctx = context.Background()
		inner = mock.New()
		var err error
		engine, err = cached.Wrap(inner, 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(engine.EnsureCollection(ctx, "users", nil)).To(Succeed())
	})

	It("should reject a non-positive size", func() {
		_, err := cached.Wrap(inner, 0)
		Expect(err).To(HaveOccurred())
	})

	It("should serve repeated reads from the cache", func() {
		inner.SetDocument("users", storagemodels.Document{storagemodels.IdentifierKey: "u1"})

		for i := 0; i < 3; i++ {
			_, err := engine.Get(ctx, "users", "u1")
			Expect(err).NotTo(HaveOccurred())
		}

		gets := 0
		for _, c := range inner.Calls() {
			if c == "Get users u1" {
				gets++
			}
		}
		Expect(gets).To(Equal(1))
		Expect(engine.Stats()).To(Equal(cached.Stats{Hits: 2, Misses: 1, Size: 1}))
	})

	It("should forget deleted documents", func() {
		Expect(engine.Insert(ctx, "users", "u1", storagemodels.Document{storagemodels.IdentifierKey: "u1"})).To(Succeed())
		Expect(engine.Delete(ctx, "users", "u1")).To(Succeed())

		_, err := engine.Get(ctx, "users", "u1")
		Expect(errors.IsNotFound(err)).To(BeTrue())
	})

	It("should drop an entry when the inner replace fails", func() {
		Expect(engine.Insert(ctx, "users", "u1", storagemodels.Document{storagemodels.IdentifierKey: "u1", "n": int64(1)})).To(Succeed())
		inner.WithReplaceError(errors.ErrClosed)

		Expect(engine.Replace(ctx, "users", "u1", storagemodels.Document{storagemodels.IdentifierKey: "u1", "n": int64(2)})).To(MatchError(errors.ErrClosed))
		Expect(engine.Stats().Size).To(Equal(0))

		doc, err := engine.Get(ctx, "users", "u1")
		Expect(err).NotTo(HaveOccurred())
		Expect(doc["n"]).To(Equal(int64(1)))
	})

	It("should evict the least recently used document", func() {
		for _, id := range []string{"u1", "u2", "u3"} {
			Expect(engine.Insert(ctx, "users", id, storagemodels.Document{storagemodels.IdentifierKey: id})).To(Succeed())
		}
		Expect(engine.Stats().Size).To(Equal(2))

		_, err := engine.Get(ctx, "users", "u1")
		Expect(err).NotTo(HaveOccurred())
		Expect(engine.Stats().Misses).To(Equal(uint64(1)))
	})
})
