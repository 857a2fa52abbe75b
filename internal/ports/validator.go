package ports

import (
	"github.com/mlstorage/mlstore/internal/domain"
)

// DocumentValidator shapes candidate documents before they reach the
// database. Validate returns the shaped document or a domain
// ValidationError; partial distinguishes update payloads and query
// filters, which may omit required fields, from full documents.
//
// The store treats the validator as an external collaborator: it never
// inspects field semantics beyond the shaped result.
type DocumentValidator interface {
	Validate(doc domain.Document, partial bool) (domain.Document, error)
}
