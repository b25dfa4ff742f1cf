/*
Package datastore defines the persistence core of sportstore.

A Datastore maps entities (storagemodels.PersistentObject) to documents and
stores them through an Engine, the embedded document store underneath:

	type Engine interface {
	    EnsureCollection(ctx context.Context, name string, uniqueFields []string) error
	    Insert(ctx context.Context, collection, id string, doc storagemodels.Document) error
	    Get(ctx context.Context, collection, id string) (storagemodels.Document, error)
	    GetByUnique(ctx context.Context, collection, field string, value interface{}) (storagemodels.Document, error)
	    List(ctx context.Context, collection string) ([]storagemodels.Document, error)
	    Replace(ctx context.Context, collection, id string, doc storagemodels.Document) error
	    Delete(ctx context.Context, collection, id string) error
	    Mapper() storagemodels.Mapper
	    Close() error
	}

Implementations:
  - memdb: in-process engine on hashicorp/go-memdb
  - sqlite: durable local file engine on SQLite
  - ddb: DynamoDB (or DynamoDB Local) single-table engine
  - cached: LRU read cache wrapping any engine
  - mock: scriptable engine for tests

Operations:

	ds, err := datastore.New(ctx, memdb.New(), datastore.WithRegistry(reg))
	err = ds.Save(ctx, user)        // ConstraintViolation on unique collisions
	err = ds.Update(ctx, user)      // NotFound if never saved
	err = ds.Delete(ctx, user)      // NotFound if absent; user is detached afterwards
	u, found, err := datastore.FindByIdentifier[*model.User](ctx, ds, id)

Delegates registered with RegisterDelegate are told about every successful
Save, Update and Delete, synchronously and in registration order.
*/
package datastore
