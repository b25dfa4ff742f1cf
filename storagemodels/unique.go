/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"fmt"
	"strconv"
	"time"
)

// UniqueKey encodes a unique-field value for index storage. Equal values of
// any integer width share a key; values of different kinds never collide.
// ok is false for nil, which is never indexed.
func UniqueKey(v interface{}) (key string, ok bool, err error) {
	switch tv := v.(type) {
	case nil:
		return "", false, nil
	case string:
		return "s:" + tv, true, nil
	case bool:
		return "b:" + strconv.FormatBool(tv), true, nil
	case int, int32, int64:
		n, _ := toInt64(tv)
		return "i:" + strconv.FormatInt(n, 10), true, nil
	case float64:
		return "f:" + strconv.FormatFloat(tv, 'g', -1, 64), true, nil
	case time.Time:
		return "t:" + tv.UTC().Format(time.RFC3339Nano), true, nil
	case Identifier:
		return "s:" + tv.String(), true, nil
	default:
		return "", false, fmt.Errorf("values of type %T cannot be indexed", v)
	}
}
