/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/suparena/sportstore/datastore"
	"github.com/suparena/sportstore/datastore/enginetest"
	"github.com/suparena/sportstore/datastore/sqlite"
	"github.com/suparena/sportstore/errors"
	"github.com/suparena/sportstore/storagemodels"
)

func TestSQLite(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "SQLite Engine Suite")
}

var _ datastore.Engine = (*sqlite.Engine)(nil)

var _ = enginetest.DescribeEngine("sqlite", func() datastore.Engine {
	engine, err := sqlite.Open(filepath.Join(GinkgoT().TempDir(), "store.db"))
	Expect(err).NotTo(HaveOccurred())
	return engine
})

var _ = Describe("SQLite engine", func() {
	var (
		ctx    context.Context
		dbPath string
	)

	BeforeEach(func() {
		ctx = context.Background()
		dbPath = filepath.Join(GinkgoT().TempDir(), "store.db")
	})

	It("should fail with an invalid path", func() {
		_, err := sqlite.Open("/nonexistent/directory/that/does/not/exist/store.db")
		Expect(err).To(HaveOccurred())
	})

	It("should reject invalid collection names", func() {
		engine, err := sqlite.Open(dbPath)
		Expect(err).NotTo(HaveOccurred())
		defer func() { _ = engine.Close() }()

		err = engine.EnsureCollection(ctx, "users; DROP TABLE x", nil)
		Expect(errors.IsValidationError(err)).To(BeTrue())
	})

	It("should keep documents and unique values across reopen", func() {
		engine, err := sqlite.Open(dbPath)
		Expect(err).NotTo(HaveOccurred())
		Expect(engine.EnsureCollection(ctx, "users", []string{"emailAddress"})).To(Succeed())
		Expect(engine.Insert(ctx, "users", "u1", storagemodels.Document{
			storagemodels.IdentifierKey: "u1",
			"emailAddress":              "a@example.com",
		})).To(Succeed())
		Expect(engine.Close()).To(Succeed())

		engine, err = sqlite.Open(dbPath)
		Expect(err).NotTo(HaveOccurred())
		defer func() { _ = engine.Close() }()
		Expect(engine.EnsureCollection(ctx, "users", []string{"emailAddress"})).To(Succeed())

		doc, err := engine.GetByUnique(ctx, "users", "emailAddress", "a@example.com")
		Expect(err).NotTo(HaveOccurred())
		Expect(doc.ID()).To(Equal("u1"))

		err = engine.Insert(ctx, "users", "u2", storagemodels.Document{
			storagemodels.IdentifierKey: "u2",
			"emailAddress":              "a@example.com",
		})
		Expect(errors.IsConstraintViolation(err)).To(BeTrue())
	})

	It("should index existing documents when a unique field is added", func() {
		engine, err := sqlite.Open(dbPath)
		Expect(err).NotTo(HaveOccurred())
		defer func() { _ = engine.Close() }()

		Expect(engine.EnsureCollection(ctx, "users", nil)).To(Succeed())
		Expect(engine.Insert(ctx, "users", "u1", storagemodels.Document{
			storagemodels.IdentifierKey: "u1",
			"emailAddress":              "a@example.com",
		})).To(Succeed())

		Expect(engine.EnsureCollection(ctx, "users", []string{"emailAddress"})).To(Succeed())
		doc, err := engine.GetByUnique(ctx, "users", "emailAddress", "a@example.com")
		Expect(err).NotTo(HaveOccurred())
		Expect(doc.ID()).To(Equal("u1"))
	})

	It("should decode nested documents and arrays", func() {
		engine, err := sqlite.Open(dbPath)
		Expect(err).NotTo(HaveOccurred())
		defer func() { _ = engine.Close() }()

		Expect(engine.EnsureCollection(ctx, "plans", nil)).To(Succeed())
		Expect(engine.Insert(ctx, "plans", "p1", storagemodels.Document{
			storagemodels.IdentifierKey: "p1",
			"week":                      storagemodels.Document{"runs": int64(3)},
			"tags":                      []interface{}{"base", int64(10)},
		})).To(Succeed())

		doc, err := engine.Get(ctx, "plans", "p1")
		Expect(err).NotTo(HaveOccurred())
		Expect(doc["week"]).To(Equal(storagemodels.Document{"runs": int64(3)}))
		Expect(doc["tags"]).To(Equal([]interface{}{"base", int64(10)}))
	})
})
