package mongodb

import (
	"github.com/mlstorage/mlstore/internal/domain"
	"github.com/mlstorage/mlstore/internal/ports"
	"go.mongodb.org/mongo-driver/bson"
)

func toFilter(filter domain.Document) bson.M {
	out := bson.M{}
	for field, value := range filter {
		if ne, ok := value.(domain.NotEqual); ok {
			out[field] = bson.M{"$ne": ne.Value}
			continue
		}
		out[field] = value
	}
	return out
}

func toSort(spec []ports.SortField) bson.D {
	sort := make(bson.D, len(spec))
	for i, s := range spec {
		sort[i] = bson.E{Key: s.Field, Value: s.Direction}
	}
	return sort
}

func toIndexKey(spec ports.IndexSpec) bson.D {
	key := make(bson.D, len(spec))
	for i, k := range spec {
		key[i] = bson.E{Key: k.Field, Value: k.Direction}
	}
	return key
}

func fromIndexKey(key bson.D) ports.IndexSpec {
	spec := make(ports.IndexSpec, len(key))
	for i, e := range key {
		dir := ports.Ascending
		switch v := e.Value.(type) {
		case int32:
			dir = int(v)
		case int64:
			dir = int(v)
		case int:
			dir = v
		case float64:
			dir = int(v)
		}
		spec[i] = ports.IndexKey{Field: e.Key, Direction: dir}
	}
	return spec
}
