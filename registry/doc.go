/*
Package registry manages entity type registration for sportstore.

An entity type couples a Go type with the collection it is stored in, the
function that rehydrates it from a document, and the fields the engine must
keep unique. Registration is an explicit, static call executed once at
startup:

	registry.MustRegister(registry.Default, "users", model.RehydrateUser, "emailAddress")

The identifier field is the primary key and is always unique; it cannot be
listed again. Lookups work by Go type (for Save/Update/Delete) and by name.

The registry is thread-safe. A Datastore uses registry.Default unless it is
given its own Registry, which is what tests usually do.
*/
package registry
