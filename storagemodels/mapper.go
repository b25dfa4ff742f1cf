/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"math"
	"time"

	"github.com/suparena/sportstore/errors"
)

// Mapper converts complex values to and from the representation an engine
// stores natively. Each engine supplies its own Mapper.
type Mapper interface {
	EncodeTime(t time.Time) interface{}
	DecodeTime(field string, v interface{}) (time.Time, error)
}

// DefaultMapper keeps timestamps as time.Time.
type DefaultMapper struct{}

func (DefaultMapper) EncodeTime(t time.Time) interface{} {
	return t
}

func (DefaultMapper) DecodeTime(field string, v interface{}) (time.Time, error) {
	t, ok := v.(time.Time)
	if !ok {
		return time.Time{}, errors.NewTypeMismatchError(field, "time.Time", v)
	}
	return t, nil
}

// EpochMillisMapper stores timestamps as milliseconds since the Unix epoch.
// Decoded times are in the local zone.
type EpochMillisMapper struct{}

func (EpochMillisMapper) EncodeTime(t time.Time) interface{} {
	return t.UnixMilli()
}

func (EpochMillisMapper) DecodeTime(field string, v interface{}) (time.Time, error) {
	ms, ok := toInt64(v)
	if !ok {
		return time.Time{}, errors.NewTypeMismatchError(field, "epoch milliseconds", v)
	}
	return time.UnixMilli(ms), nil
}

const maxInt64Float = 9223372036854775808.0

// toInt64 accepts the integer widths engines hand back, and integral floats
// produced by number-agnostic codecs.
func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold.
		if n != math.Trunc(n) || n >= maxInt64Float || n < math.MinInt64 {
			return 0, false
		}
		return int64(n), true
	default:
		return 0, false
	}
}
