// Package validation holds the default experiment-document validator: a
// pure shaping pass from candidate map to shaped document or
// ValidationError. The store consumes it through the
// ports.DocumentValidator contract and other implementations can be
// swapped in.
package validation

import (
	"fmt"
	"time"

	"github.com/mlstorage/mlstore/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Validator struct{}

func New() *Validator {
	return &Validator{}
}

// Validate shapes doc in place and returns it. With partial set the
// document may omit any field, as update payloads and query filters do;
// a full document must at least carry a name. Fields outside the known
// schema pass through verbatim.
func (v *Validator) Validate(doc domain.Document, partial bool) (domain.Document, error) {
	if doc == nil {
		doc = domain.Document{}
	}

	if !partial {
		if _, ok := doc[domain.FieldName]; !ok {
			return nil, &domain.ValidationError{Field: domain.FieldName, Reason: "required field missing"}
		}
	}

	for field, value := range doc {
		shaped, err := v.shapeField(field, value)
		if err != nil {
			return nil, err
		}
		doc[field] = shaped
	}
	return doc, nil
}

// shapeField validates one field value. Not-equal wrappers used by
// query filters validate their inner value and stay wrapped.
func (v *Validator) shapeField(field string, value any) (any, error) {
	if ne, ok := value.(domain.NotEqual); ok {
		inner, err := v.shapeField(field, ne.Value)
		if err != nil {
			return nil, err
		}
		return domain.NotEqual{Value: inner}, nil
	}

	switch field {
	case domain.FieldName, domain.FieldDescription, domain.FieldStorageDir, domain.FieldFingerprint:
		s, ok := value.(string)
		if !ok {
			return nil, typeError(field, value, "string")
		}
		if field == domain.FieldName && s == "" {
			return nil, &domain.ValidationError{Field: field, Reason: "must not be empty"}
		}
		return s, nil

	case domain.FieldTags:
		return shapeTags(value)

	case domain.FieldStatus:
		return shapeStatus(value)

	case domain.FieldID, domain.FieldInternalID, domain.FieldParentID:
		oid, err := domain.ParseExperimentID(value)
		if err != nil {
			return nil, &domain.ValidationError{Field: field, Value: value, Reason: "not a valid experiment id"}
		}
		return oid, nil

	case domain.FieldStartTime, domain.FieldStopTime, domain.FieldHeartbeat:
		return shapeTime(field, value)

	case domain.FieldError:
		return shapeErrorInfo(value)

	case domain.FieldExitCode:
		n, ok := asInt(value)
		if !ok {
			return nil, typeError(field, value, "integer")
		}
		return n, nil

	case domain.FieldStorageSize:
		switch value.(type) {
		case int, int32, int64, float32, float64:
			return value, nil
		}
		return nil, typeError(field, value, "number")

	case domain.FieldDeleted:
		b, ok := value.(bool)
		if !ok {
			return nil, typeError(field, value, "bool")
		}
		return b, nil
	}

	// exc_info, webui, args, config, default_config, result and any
	// unrecognized field pass through unchanged.
	return value, nil
}

func shapeTags(value any) (any, error) {
	switch tags := value.(type) {
	case []string:
		return tags, nil
	case []any:
		out := make([]string, len(tags))
		for i, tag := range tags {
			s, ok := tag.(string)
			if !ok {
				return nil, typeError(domain.FieldTags, tag, "string")
			}
			out[i] = s
		}
		return out, nil
	case string:
		// A scalar tag is a valid equality constraint against the
		// array field, so single strings stay as they are.
		return tags, nil
	}
	return nil, typeError(domain.FieldTags, value, "list of strings")
}

func shapeStatus(value any) (any, error) {
	var s domain.Status
	switch status := value.(type) {
	case domain.Status:
		s = status
	case string:
		s = domain.Status(status)
	default:
		return nil, typeError(domain.FieldStatus, value, "status string")
	}
	if !s.Valid() {
		return nil, &domain.ValidationError{
			Field:  domain.FieldStatus,
			Value:  value,
			Reason: fmt.Sprintf("must be one of %s, %s, %s", domain.StatusRunning, domain.StatusCompleted, domain.StatusFailed),
		}
	}
	return string(s), nil
}

func shapeTime(field string, value any) (any, error) {
	switch t := value.(type) {
	case time.Time:
		return t.UTC(), nil
	case primitive.DateTime:
		return t.Time().UTC(), nil
	}
	return nil, typeError(field, value, "UTC timestamp")
}

func shapeErrorInfo(value any) (any, error) {
	var m map[string]any
	switch e := value.(type) {
	case domain.Document:
		m = e
	case map[string]any:
		m = e
	default:
		return nil, typeError(domain.FieldError, value, "error object")
	}
	if msg, ok := m["message"]; ok {
		if _, isString := msg.(string); !isString {
			return nil, typeError("error.message", msg, "string")
		}
	}
	return m, nil
}

func asInt(value any) (int64, bool) {
	switch n := value.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if n == float64(int64(n)) {
			return int64(n), true
		}
	}
	return 0, false
}

func typeError(field string, value any, want string) error {
	return &domain.ValidationError{
		Field:  field,
		Value:  value,
		Reason: fmt.Sprintf("expected %s, got %T", want, value),
	}
}
