/*
Package storagemodels defines the shared persistence types of sportstore.

Identity:
Every entity is keyed by an Identifier, an immutable text token generated once
(a random UUID) or restored from a stored document:

	id := storagemodels.NewIdentifier()
	same, _ := storagemodels.ParseIdentifier(id.String())
	id == same // true

Documents:
A Document is the flat field-name to value record that engines persist. The
"identifier" key is always present and acts as the primary key.

Mapping:
Entities implement PersistentObject. Write must emit one key per persisted
attribute; Read consumes the same keys through a Reader, which turns a missing
key or a stored value of the wrong type into a TypeMismatchError:

	func (p *Plan) Read(m storagemodels.Mapper, doc storagemodels.Document) error {
	    if doc == nil {
	        return nil
	    }
	    r := storagemodels.NewReader(m, doc)
	    id := r.Identifier(storagemodels.IdentifierKey)
	    name := r.String("name")
	    if err := r.Err(); err != nil {
	        return err
	    }
	    p.Base, p.name = storagemodels.RestoreBase(id), name
	    return nil
	}

The Mapper passed to Write and Read belongs to the engine and decides how
timestamps are stored.
*/
package storagemodels
