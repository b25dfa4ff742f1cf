/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package memdb

import (
	"fmt"

	"github.com/suparena/sportstore/storagemodels"
)

// fieldIndexer indexes one document field by its unique key.
// Missing and nil values are not indexed.
type fieldIndexer struct {
	Field string
}

func (x *fieldIndexer) FromObject(raw interface{}) (bool, []byte, error) {
	rec, ok := raw.(*record)
	if !ok {
		return false, nil, fmt.Errorf("unexpected object type %T", raw)
	}
	key, ok, err := storagemodels.UniqueKey(rec.Doc[x.Field])
	if err != nil || !ok {
		return false, nil, err
	}
	return true, []byte(key + "\x00"), nil
}

func (x *fieldIndexer) FromArgs(args ...interface{}) ([]byte, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("must provide only a single argument")
	}
	key, ok, err := storagemodels.UniqueKey(args[0])
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("nil values are not indexed")
	}
	return []byte(key + "\x00"), nil
}
