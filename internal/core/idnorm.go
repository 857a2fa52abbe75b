package core

import (
	"github.com/mlstorage/mlstore/internal/domain"
)

// Identifier normalization. The database keys documents by "_id"; the
// public document shape uses "id". The rename happens exactly at the
// write and read boundaries and the two names never coexist past them.
// All three helpers mutate the document they are given.

// ToDatabaseDoc renames "id" to "_id" for outgoing documents and
// filters.
func ToDatabaseDoc(doc domain.Document) domain.Document {
	if doc == nil {
		return nil
	}
	if id, ok := doc[domain.FieldID]; ok {
		doc[domain.FieldInternalID] = id
		delete(doc, domain.FieldID)
	}
	return doc
}

// FromDatabaseDoc renames "_id" back to "id" for documents read from
// the database.
func FromDatabaseDoc(doc domain.Document) domain.Document {
	if doc == nil {
		return nil
	}
	if id, ok := doc[domain.FieldInternalID]; ok {
		doc[domain.FieldID] = id
		delete(doc, domain.FieldInternalID)
	}
	return doc
}

// StripIdentifier drops both identifier fields from a caller-supplied
// payload. The store is the sole writer of identifiers.
func StripIdentifier(doc domain.Document) domain.Document {
	delete(doc, domain.FieldID)
	delete(doc, domain.FieldInternalID)
	return doc
}
