// Package docfilter evaluates query filters and sort specs against
// in-process documents. It backs the memory and embedded collection
// adapters, mirroring the subset of the database's query semantics the
// store relies on: literal equality, not-equal, and array containment.
package docfilter

import (
	"reflect"
	"time"

	"github.com/mlstorage/mlstore/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Matches reports whether doc satisfies every constraint in filter.
func Matches(doc domain.Document, filter domain.Document) bool {
	for field, want := range filter {
		got, present := doc[field]
		switch constraint := want.(type) {
		case domain.NotEqual:
			if present && ValueEqual(got, constraint.Value) {
				return false
			}
		default:
			if !present {
				return false
			}
			if !ValueEqual(got, want) && !containsValue(got, want) {
				return false
			}
		}
	}
	return true
}

// ValueEqual compares two document values, normalizing across the
// numeric types, timestamp forms and array representations different
// encoders produce.
func ValueEqual(a, b any) bool {
	if ta, ok := asTime(a); ok {
		tb, ok := asTime(b)
		return ok && ta.Equal(tb)
	}
	if na, ok := asFloat(a); ok {
		nb, ok := asFloat(b)
		return ok && na == nb
	}
	if oa, ok := a.(primitive.ObjectID); ok {
		ob, ok := b.(primitive.ObjectID)
		return ok && oa == ob
	}
	if sa, ok := asSlice(a); ok {
		sb, ok := asSlice(b)
		if !ok || len(sa) != len(sb) {
			return false
		}
		for i := range sa {
			if !ValueEqual(sa[i], sb[i]) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a, b)
}

// containsValue implements the database's array-equality relaxation: a
// scalar constraint matches an array field that contains the value, the
// way tag filters are expected to work.
func containsValue(got, want any) bool {
	items, ok := asSlice(got)
	if !ok {
		return false
	}
	for _, item := range items {
		if ValueEqual(item, want) {
			return true
		}
	}
	return false
}

// asSlice flattens the array forms that reach the matcher: []string from
// the validator, []any and bson.A from decoders.
func asSlice(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case primitive.A:
		return s, true
	case []string:
		out := make([]any, len(s))
		for i, item := range s {
			out[i] = item
		}
		return out, true
	}
	return nil, false
}

func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case primitive.DateTime:
		return t.Time().UTC(), true
	}
	return time.Time{}, false
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
