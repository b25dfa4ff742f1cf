/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package memdb_test

import (
	"context"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/suparena/sportstore/datastore"
	"github.com/suparena/sportstore/datastore/enginetest"
	"github.com/suparena/sportstore/datastore/memdb"
	"github.com/suparena/sportstore/errors"
	"github.com/suparena/sportstore/storagemodels"
)

func TestMemdb(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "memdb Engine Suite")
}

var _ datastore.Engine = (*memdb.Engine)(nil)

var _ = enginetest.DescribeEngine("memdb", func() datastore.Engine {
	return memdb.New()
})

var _ = Describe("memdb schema changes", func() {
	ctx := context.Background()

	It("should keep records when a collection is added", func() {
		engine := memdb.New()
		Expect(engine.EnsureCollection(ctx, "users", []string{"emailAddress"})).To(Succeed())
		Expect(engine.Insert(ctx, "users", "u1", storagemodels.Document{
			storagemodels.IdentifierKey: "u1",
			"emailAddress":              "a@example.com",
		})).To(Succeed())

		Expect(engine.EnsureCollection(ctx, "running_plans", nil)).To(Succeed())

		doc, err := engine.GetByUnique(ctx, "users", "emailAddress", "a@example.com")
		Expect(err).NotTo(HaveOccurred())
		Expect(doc.ID()).To(Equal("u1"))
	})

	It("should fail to add a unique field the stored records violate", func() {
		engine := memdb.New()
		Expect(engine.EnsureCollection(ctx, "users", nil)).To(Succeed())
		for _, id := range []string{"u1", "u2"} {
			Expect(engine.Insert(ctx, "users", id, storagemodels.Document{
				storagemodels.IdentifierKey: id,
				"emailAddress":              "same@example.com",
			})).To(Succeed())
		}

		err := engine.EnsureCollection(ctx, "users", []string{"emailAddress"})
		Expect(errors.IsConstraintViolation(err)).To(BeTrue())

		docs, err := engine.List(ctx, "users")
		Expect(err).NotTo(HaveOccurred())
		Expect(docs).To(HaveLen(2))
	})

	It("should refuse work after Close", func() {
		engine := memdb.New()
		Expect(engine.EnsureCollection(ctx, "users", nil)).To(Succeed())
		Expect(engine.Close()).To(Succeed())

		_, err := engine.Get(ctx, "users", "u1")
		Expect(err).To(MatchError(errors.ErrClosed))
	})
})
