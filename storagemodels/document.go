/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

// IdentifierKey is the document field holding the entity identifier.
const IdentifierKey = "identifier"

// Document is the schemaless record exchanged between entities and engines.
//
// Values are restricted to nil, string, bool, int64, float64, time.Time,
// Document and []interface{}. Engines return documents in that form.
type Document map[string]interface{}

// ID returns the identifier token stored in the document, or "" if absent.
func (d Document) ID() string {
	s, _ := d[IdentifierKey].(string)
	return s
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v interface{}) interface{} {
	switch tv := v.(type) {
	case Document:
		return tv.Clone()
	case map[string]interface{}:
		return Document(tv).Clone()
	case []interface{}:
		out := make([]interface{}, len(tv))
		for i, e := range tv {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
