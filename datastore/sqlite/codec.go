/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package sqlite

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/suparena/sportstore/storagemodels"
)

// encode stores documents as BSON, which keeps int64, float64 and timestamps
// apart. Timestamps are kept at millisecond precision.
func encode(doc storagemodels.Document) ([]byte, error) {
	data, err := bson.Marshal(map[string]interface{}(doc))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	return data, nil
}

func decode(data []byte) (storagemodels.Document, error) {
	var raw bson.M
	if err := bson.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	return normalizeMap(raw), nil
}

func normalizeMap(m map[string]interface{}) storagemodels.Document {
	doc := make(storagemodels.Document, len(m))
	for k, v := range m {
		doc[k] = normalize(v)
	}
	return doc
}

// normalize maps decoded BSON values onto the native document value set.
func normalize(v interface{}) interface{} {
	switch tv := v.(type) {
	case int32:
		return int64(tv)
	case primitive.DateTime:
		return tv.Time().In(time.Local)
	case bson.M:
		return normalizeMap(tv)
	case primitive.D:
		return normalizeMap(tv.Map())
	case primitive.A:
		out := make([]interface{}, len(tv))
		for i, e := range tv {
			out[i] = normalize(e)
		}
		return out
	default:
		return v
	}
}
