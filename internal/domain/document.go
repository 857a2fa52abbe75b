package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Document is one experiment record. It is an open map: the fields below
// are the ones the store and validator know about, everything else is
// carried through verbatim.
type Document map[string]any

// Field names of the experiment document.
const (
	FieldID          = "id"
	FieldInternalID  = "_id"
	FieldParentID    = "parent_id"
	FieldName        = "name"
	FieldDescription = "description"
	FieldTags        = "tags"
	FieldStartTime   = "start_time"
	FieldStopTime    = "stop_time"
	FieldHeartbeat   = "heartbeat"
	FieldStatus      = "status"
	FieldError       = "error"
	FieldExitCode    = "exit_code"
	FieldStorageDir  = "storage_dir"
	FieldStorageSize = "storage_size"
	FieldExcInfo     = "exc_info"
	FieldWebUI       = "webui"
	FieldFingerprint = "fingerprint"
	FieldArgs        = "args"
	FieldConfig      = "config"
	FieldDefaults    = "default_config"
	FieldResult      = "result"
	FieldDeleted     = "deleted"
)

// Status is the lifecycle state of an experiment. RUNNING is the initial
// state, COMPLETED and FAILED are terminal.
type Status string

const (
	StatusRunning   Status = "RUNNING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusRunning, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// NotEqual wraps a filter value into a not-equal constraint. A document
// matches when the field is absent or differs from Value.
type NotEqual struct {
	Value any
}

// ParseExperimentID converts the public identifier representation into
// its native ObjectID form. Accepted inputs are ObjectIDs and 24-char
// hex strings; anything else fails before reaching the database.
func ParseExperimentID(v any) (primitive.ObjectID, error) {
	switch id := v.(type) {
	case primitive.ObjectID:
		if id.IsZero() {
			return primitive.NilObjectID, &InvalidIDError{Value: v, Reason: "zero object id"}
		}
		return id, nil
	case string:
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return primitive.NilObjectID, &InvalidIDError{Value: v, Reason: err.Error()}
		}
		return oid, nil
	default:
		return primitive.NilObjectID, &InvalidIDError{Value: v, Reason: "unsupported identifier type"}
	}
}

// Clone returns a deep copy of the document. Maps and slices are copied
// recursively; scalar values (including time.Time and ObjectID) are
// immutable and shared.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case Document:
		return val.Clone()
	case map[string]any:
		return Document(val).Clone()
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		out := make([]string, len(val))
		copy(out, val)
		return out
	default:
		return v
	}
}

// Deleted reports whether the soft-delete flag is set. Absent counts as
// not deleted.
func (d Document) Deleted() bool {
	flag, _ := d[FieldDeleted].(bool)
	return flag
}

// StartedAt returns the start_time field when it holds a UTC timestamp.
func (d Document) StartedAt() (time.Time, bool) {
	t, ok := d[FieldStartTime].(time.Time)
	return t, ok
}

// HeartbeatAt returns the heartbeat field when it holds a UTC timestamp.
func (d Document) HeartbeatAt() (time.Time, bool) {
	t, ok := d[FieldHeartbeat].(time.Time)
	return t, ok
}
