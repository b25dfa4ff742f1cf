/*
Package sportstore persists the users and running plans of a sports
tracking app.

Entities implement storagemodels.PersistentObject and are stored as
documents through a datastore.Datastore, which sits on one of several
engines:

  - memory: hashicorp/go-memdb, for tests and throwaway sessions
  - sqlite: a local file, documents encoded as BSON
  - dynamodb: one DynamoDB table, unique values guarded by marker items

Any engine can be wrapped in an LRU read cache. Unique fields, such as a
user's email address, are enforced by the engine at write time.

Basic Usage:

	cfg, err := config.Load(".")
	store, err := sportstore.Open(ctx, cfg, logger.New(cfg.Log.Level, cfg.Log.Format))
	defer store.Close()

	u := model.NewUser()
	u.SetEmailAddress("runner@example.com")
	err = store.Save(ctx, u)

	found, ok, err := datastore.FindByUnique[*model.User](ctx, store.Datastore,
		model.UserEmailAddressKey, "runner@example.com")

Delegates registered on the store are told about every confirmed Save,
Update and Delete.
*/
package sportstore
