package domain

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound        = errors.New("experiment not found")
	ErrInvalidID       = errors.New("invalid experiment id")
	ErrValidation      = errors.New("document validation failed")
	ErrInvalidArgument = errors.New("invalid argument")
)

// NotFoundError reports a mutating operation that matched no live
// (non-deleted) document.
type NotFoundError struct {
	ID primitive.ObjectID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("experiment not found: %s", e.ID.Hex())
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

func (e *NotFoundError) Is(target error) bool {
	return errors.Is(target, ErrNotFound)
}

// InvalidIDError reports an identifier that could not be parsed into its
// native form. It is raised before any database operation.
type InvalidIDError struct {
	Value  any
	Reason string
}

func (e *InvalidIDError) Error() string {
	return fmt.Sprintf("invalid experiment id %v: %s", e.Value, e.Reason)
}

func (e *InvalidIDError) Unwrap() error {
	return ErrInvalidID
}

func (e *InvalidIDError) Is(target error) bool {
	return errors.Is(target, ErrInvalidID)
}

// ValidationError reports a document that failed shape or type rules.
// Field is empty when the failure is not attributable to one field.
type ValidationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("document validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("document validation failed: field %q: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func (e *ValidationError) Is(target error) bool {
	return errors.Is(target, ErrValidation)
}

// InvalidArgumentError reports an operation argument outside its allowed
// set, such as a non-terminal status passed to SetFinished.
type InvalidArgumentError struct {
	Op     string
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

func (e *InvalidArgumentError) Unwrap() error {
	return ErrInvalidArgument
}

func (e *InvalidArgumentError) Is(target error) bool {
	return errors.Is(target, ErrInvalidArgument)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsInvalidID(err error) bool {
	return errors.Is(err, ErrInvalidID)
}

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}
