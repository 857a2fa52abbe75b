// Package bsonx is the single seam between the store's open documents
// and their bson wire form. Both the mongodb and embedded adapters
// encode through here so documents round-trip identically: DateTime
// comes back as UTC time.Time, nested bson maps and arrays as plain Go
// maps and slices.
package bsonx

import (
	"github.com/mlstorage/mlstore/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func EncodeDoc(doc domain.Document) ([]byte, error) {
	return bson.Marshal(bson.M(doc))
}

func DecodeDoc(data []byte) (domain.Document, error) {
	var raw bson.M
	if err := bson.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return NormalizeDoc(raw), nil
}

// NormalizeDoc rewrites driver-native decode results into the forms the
// rest of the store works with.
func NormalizeDoc(raw bson.M) domain.Document {
	doc := make(domain.Document, len(raw))
	for k, v := range raw {
		doc[k] = NormalizeValue(v)
	}
	return doc
}

func NormalizeValue(v any) any {
	switch val := v.(type) {
	case primitive.DateTime:
		return val.Time().UTC()
	case bson.M:
		return map[string]any(NormalizeDoc(val))
	case map[string]any:
		return map[string]any(NormalizeDoc(val))
	case bson.D:
		m := make(map[string]any, len(val))
		for _, e := range val {
			m[e.Key] = NormalizeValue(e.Value)
		}
		return m
	case bson.A:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = NormalizeValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = NormalizeValue(item)
		}
		return out
	default:
		return v
	}
}
