package docfilter

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/mlstorage/mlstore/internal/domain"
	"github.com/mlstorage/mlstore/internal/ports"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Sort orders docs in place by the given sort spec. Documents missing a
// sort field order before documents that have it, matching the
// database's treatment of absent values as lowest.
func Sort(docs []domain.Document, spec []ports.SortField) {
	if len(spec) == 0 {
		return
	}
	sort.SliceStable(docs, func(i, j int) bool {
		for _, s := range spec {
			c := Compare(docs[i][s.Field], docs[j][s.Field])
			if c == 0 {
				continue
			}
			if s.Direction == ports.Descending {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

// Compare orders two document values: nil first, then booleans,
// numbers, strings, timestamps and ObjectIDs, with a string rendering
// as the fallback for anything else.
func Compare(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}

	if ta, ok := asTime(a); ok {
		if tb, ok := asTime(b); ok {
			switch {
			case ta.Before(tb):
				return -1
			case ta.After(tb):
				return 1
			default:
				return 0
			}
		}
	}

	if na, ok := asFloat(a); ok {
		if nb, ok := asFloat(b); ok {
			switch {
			case na < nb:
				return -1
			case na > nb:
				return 1
			default:
				return 0
			}
		}
	}

	if sa, ok := a.(string); ok {
		if sb, ok := b.(string); ok {
			return strings.Compare(sa, sb)
		}
	}

	if oa, ok := a.(primitive.ObjectID); ok {
		if ob, ok := b.(primitive.ObjectID); ok {
			return bytes.Compare(oa[:], ob[:])
		}
	}

	if ba, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case !ba && bb:
				return -1
			case ba && !bb:
				return 1
			default:
				return 0
			}
		}
	}

	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}
