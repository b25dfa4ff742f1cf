/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package enginetest holds the behaviour every datastore.Engine must show,
// as ginkgo specs that engine packages run from their suites.
package enginetest

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/suparena/sportstore/datastore"
	"github.com/suparena/sportstore/errors"
	"github.com/suparena/sportstore/model"
	"github.com/suparena/sportstore/registry"
	"github.com/suparena/sportstore/storagemodels"
)

const (
	collection = "shoes"
	uniqueKey  = "serial"
)

func shoe(id string, serial interface{}) storagemodels.Document {
	return storagemodels.Document{
		storagemodels.IdentifierKey: id,
		uniqueKey:                   serial,
		"brand":                     "Kiprun",
	}
}

// DescribeEngine registers the conformance specs for the engine built by
// newEngine. newEngine runs inside BeforeEach, so it may use GinkgoT.
func DescribeEngine(name string, newEngine func() datastore.Engine) bool {
	return Describe(name+" engine conformance", func() {
		var (
			ctx    context.Context
			engine datastore.Engine
		)

		BeforeEach(func() {
			ctx = context.Background()
			engine = newEngine()
			Expect(engine.EnsureCollection(ctx, collection, []string{uniqueKey})).To(Succeed())
		})

		AfterEach(func() {
			_ = engine.Close()
		})

		Context("collections", func() {
			It("should accept EnsureCollection more than once", func() {
				Expect(engine.Insert(ctx, collection, "a", shoe("a", "S-1"))).To(Succeed())
				Expect(engine.EnsureCollection(ctx, collection, []string{uniqueKey})).To(Succeed())

				doc, err := engine.Get(ctx, collection, "a")
				Expect(err).NotTo(HaveOccurred())
				Expect(doc[uniqueKey]).To(Equal("S-1"))
			})

			It("should keep collections apart", func() {
				Expect(engine.EnsureCollection(ctx, "laces", nil)).To(Succeed())
				Expect(engine.Insert(ctx, collection, "a", shoe("a", "S-1"))).To(Succeed())
				Expect(engine.Insert(ctx, "laces", "a", storagemodels.Document{storagemodels.IdentifierKey: "a"})).To(Succeed())

				_, err := engine.Get(ctx, "laces", "a")
				Expect(err).NotTo(HaveOccurred())
				Expect(engine.Delete(ctx, "laces", "a")).To(Succeed())

				_, err = engine.Get(ctx, collection, "a")
				Expect(err).NotTo(HaveOccurred())
			})
		})

		Context("documents", func() {
			It("should round-trip the native value set", func() {
				at := time.Date(2024, time.May, 4, 9, 30, 15, 0, time.Local)
				doc := storagemodels.Document{
					storagemodels.IdentifierKey: "a",
					uniqueKey:                   "S-1",
					"text":                      "hello",
					"flag":                      true,
					"count":                     int64(42),
					"ratio":                     2.5,
					"at":                        engine.Mapper().EncodeTime(at),
					"none":                      nil,
				}
				Expect(engine.Insert(ctx, collection, "a", doc)).To(Succeed())

				got, err := engine.Get(ctx, collection, "a")
				Expect(err).NotTo(HaveOccurred())
				Expect(got.ID()).To(Equal("a"))
				Expect(got["text"]).To(Equal("hello"))
				Expect(got["flag"]).To(Equal(true))
				Expect(got["count"]).To(Equal(int64(42)))
				Expect(got["ratio"]).To(Equal(2.5))
				Expect(got).To(HaveKey("none"))
				Expect(got["none"]).To(BeNil())

				decoded, err := engine.Mapper().DecodeTime("at", got["at"])
				Expect(err).NotTo(HaveOccurred())
				Expect(decoded.Equal(at)).To(BeTrue())
			})

			It("should report missing documents as not found", func() {
				_, err := engine.Get(ctx, collection, "missing")
				Expect(errors.IsNotFound(err)).To(BeTrue())
				Expect(errors.IsNotFound(engine.Replace(ctx, collection, "missing", shoe("missing", "S-9")))).To(BeTrue())
				Expect(errors.IsNotFound(engine.Delete(ctx, collection, "missing"))).To(BeTrue())

				_, err = engine.GetByUnique(ctx, collection, uniqueKey, "S-9")
				Expect(errors.IsNotFound(err)).To(BeTrue())
			})

			It("should reject a duplicate identifier", func() {
				Expect(engine.Insert(ctx, collection, "a", shoe("a", "S-1"))).To(Succeed())
				err := engine.Insert(ctx, collection, "a", shoe("a", "S-2"))
				Expect(errors.IsConstraintViolation(err)).To(BeTrue())
			})

			It("should replace and delete", func() {
				Expect(engine.Insert(ctx, collection, "a", shoe("a", "S-1"))).To(Succeed())

				updated := shoe("a", "S-1")
				updated["brand"] = "Evadict"
				Expect(engine.Replace(ctx, collection, "a", updated)).To(Succeed())

				got, err := engine.Get(ctx, collection, "a")
				Expect(err).NotTo(HaveOccurred())
				Expect(got["brand"]).To(Equal("Evadict"))

				Expect(engine.Delete(ctx, collection, "a")).To(Succeed())
				_, err = engine.Get(ctx, collection, "a")
				Expect(errors.IsNotFound(err)).To(BeTrue())
			})

			It("should list every document", func() {
				for i := 0; i < 5; i++ {
					id := fmt.Sprintf("id-%d", i)
					Expect(engine.Insert(ctx, collection, id, shoe(id, fmt.Sprintf("S-%d", i)))).To(Succeed())
				}
				docs, err := engine.List(ctx, collection)
				Expect(err).NotTo(HaveOccurred())
				Expect(docs).To(HaveLen(5))

				ids := make([]string, 0, len(docs))
				for _, d := range docs {
					ids = append(ids, d.ID())
				}
				Expect(ids).To(ConsistOf("id-0", "id-1", "id-2", "id-3", "id-4"))
			})

			It("should not let callers mutate stored documents", func() {
				doc := shoe("a", "S-1")
				Expect(engine.Insert(ctx, collection, "a", doc)).To(Succeed())
				doc["brand"] = "changed"

				got, err := engine.Get(ctx, collection, "a")
				Expect(err).NotTo(HaveOccurred())
				got["brand"] = "changed again"

				again, err := engine.Get(ctx, collection, "a")
				Expect(err).NotTo(HaveOccurred())
				Expect(again["brand"]).To(Equal("Kiprun"))
			})
		})

		Context("unique fields", func() {
			BeforeEach(func() {
				Expect(engine.Insert(ctx, collection, "a", shoe("a", "S-1"))).To(Succeed())
			})

			It("should find documents by unique value", func() {
				doc, err := engine.GetByUnique(ctx, collection, uniqueKey, "S-1")
				Expect(err).NotTo(HaveOccurred())
				Expect(doc.ID()).To(Equal("a"))
			})

			It("should reject a colliding insert", func() {
				err := engine.Insert(ctx, collection, "b", shoe("b", "S-1"))
				Expect(errors.IsConstraintViolation(err)).To(BeTrue())

				_, err = engine.Get(ctx, collection, "b")
				Expect(errors.IsNotFound(err)).To(BeTrue())
			})

			It("should reject a colliding replace and keep the old document", func() {
				Expect(engine.Insert(ctx, collection, "b", shoe("b", "S-2"))).To(Succeed())
				err := engine.Replace(ctx, collection, "b", shoe("b", "S-1"))
				Expect(errors.IsConstraintViolation(err)).To(BeTrue())

				doc, err := engine.GetByUnique(ctx, collection, uniqueKey, "S-2")
				Expect(err).NotTo(HaveOccurred())
				Expect(doc.ID()).To(Equal("b"))
			})

			It("should release a value on replace", func() {
				Expect(engine.Replace(ctx, collection, "a", shoe("a", "S-3"))).To(Succeed())

				_, err := engine.GetByUnique(ctx, collection, uniqueKey, "S-1")
				Expect(errors.IsNotFound(err)).To(BeTrue())
				Expect(engine.Insert(ctx, collection, "b", shoe("b", "S-1"))).To(Succeed())
			})

			It("should release a value on delete", func() {
				Expect(engine.Delete(ctx, collection, "a")).To(Succeed())
				Expect(engine.Insert(ctx, collection, "b", shoe("b", "S-1"))).To(Succeed())
			})

			It("should not index missing values", func() {
				Expect(engine.Insert(ctx, collection, "b", shoe("b", nil))).To(Succeed())
				Expect(engine.Insert(ctx, collection, "c", shoe("c", nil))).To(Succeed())
			})

			It("should let exactly one concurrent writer claim a value", func() {
				var (
					wg        sync.WaitGroup
					succeeded atomic.Int32
					violated  atomic.Int32
				)
				for i := 0; i < 8; i++ {
					wg.Add(1)
					go func(i int) {
						defer GinkgoRecover()
						defer wg.Done()
						id := fmt.Sprintf("racer-%d", i)
						err := engine.Insert(ctx, collection, id, shoe(id, "S-race"))
						switch {
						case err == nil:
							succeeded.Add(1)
						case errors.IsConstraintViolation(err):
							violated.Add(1)
						default:
							Fail(fmt.Sprintf("unexpected error: %v", err))
						}
					}(i)
				}
				wg.Wait()
				Expect(succeeded.Load()).To(Equal(int32(1)))
				Expect(violated.Load()).To(Equal(int32(7)))
			})
		})

		Context("behind a Datastore", func() {
			var ds *datastore.Datastore

			BeforeEach(func() {
				reg := registry.NewRegistry()
				Expect(model.Register(reg)).To(Succeed())

				var err error
				ds, err = datastore.New(ctx, engine, datastore.WithRegistry(reg))
				Expect(err).NotTo(HaveOccurred())
			})

			It("should persist users", func() {
				u := model.NewUser()
				u.SetFirstName("Sifan")
				u.SetGender(model.GenderFemale)
				Expect(ds.Save(ctx, u)).To(Succeed())

				found, ok, err := datastore.FindByUnique[*model.User](ctx, ds, model.UserEmailAddressKey, u.EmailAddress())
				Expect(err).NotTo(HaveOccurred())
				Expect(ok).To(BeTrue())
				Expect(found.Equal(u)).To(BeTrue())
				Expect(found.Birthday()).To(Equal(u.Birthday()))
				Expect(found.Gender()).To(Equal(model.GenderFemale))

				u.SetMaxPulse(188)
				Expect(ds.Update(ctx, u)).To(Succeed())
				found, _, err = datastore.FindByIdentifier[*model.User](ctx, ds, u.Identifier())
				Expect(err).NotTo(HaveOccurred())
				Expect(found.MaxPulse()).To(Equal(188))

				Expect(ds.Delete(ctx, u)).To(Succeed())
				_, ok, err = datastore.FindByIdentifier[*model.User](ctx, ds, u.Identifier())
				Expect(err).NotTo(HaveOccurred())
				Expect(ok).To(BeFalse())
			})

			It("should reject a second user with the same email address", func() {
				a, b := model.NewUser(), model.NewUser()
				a.SetEmailAddress("dup@example.com")
				b.SetEmailAddress("dup@example.com")

				var added int
				ds.RegisterDelegate(&datastore.DelegateFuncs{Added: func(storagemodels.PersistentObject) { added++ }})

				Expect(ds.Save(ctx, a)).To(Succeed())
				Expect(errors.IsConstraintViolation(ds.Save(ctx, b))).To(BeTrue())
				Expect(added).To(Equal(1))

				users, err := datastore.FindAll[*model.User](ctx, ds)
				Expect(err).NotTo(HaveOccurred())
				Expect(users).To(HaveLen(1))
			})
		})
	})
}
