package validation

import (
	"testing"
	"time"

	"github.com/mlstorage/mlstore/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestValidateFullDocumentRequiresName(t *testing.T) {
	v := New()

	_, err := v.Validate(domain.Document{}, false)
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))

	doc, err := v.Validate(domain.Document{domain.FieldName: "train-v1"}, false)
	require.NoError(t, err)
	assert.Equal(t, "train-v1", doc[domain.FieldName])
}

func TestValidatePartialAllowsOmissions(t *testing.T) {
	v := New()

	doc, err := v.Validate(domain.Document{}, true)
	require.NoError(t, err)
	assert.Empty(t, doc)

	doc, err = v.Validate(nil, true)
	require.NoError(t, err)
	assert.NotNil(t, doc)
}

func TestValidateShapesKnownFields(t *testing.T) {
	v := New()
	parent := primitive.NewObjectID()
	start := time.Date(2024, 5, 1, 8, 30, 0, 0, time.FixedZone("CEST", 2*3600))

	doc, err := v.Validate(domain.Document{
		domain.FieldName:      "train-v1",
		domain.FieldTags:      []any{"vision", "baseline"},
		domain.FieldStatus:    domain.StatusRunning,
		domain.FieldParentID:  parent.Hex(),
		domain.FieldStartTime: start,
		domain.FieldExitCode:  float64(2),
	}, true)
	require.NoError(t, err)

	assert.Equal(t, []string{"vision", "baseline"}, doc[domain.FieldTags])
	assert.Equal(t, string(domain.StatusRunning), doc[domain.FieldStatus])
	assert.Equal(t, parent, doc[domain.FieldParentID])
	assert.Equal(t, start.UTC(), doc[domain.FieldStartTime])
	assert.Equal(t, int64(2), doc[domain.FieldExitCode])
}

func TestValidateRejectsBadFields(t *testing.T) {
	v := New()

	testCases := []struct {
		name string
		doc  domain.Document
	}{
		{"name_not_string", domain.Document{domain.FieldName: 7}},
		{"name_empty", domain.Document{domain.FieldName: ""}},
		{"tags_mixed", domain.Document{domain.FieldTags: []any{"ok", 3}}},
		{"tags_not_list", domain.Document{domain.FieldTags: 42}},
		{"status_unknown", domain.Document{domain.FieldStatus: "PAUSED"}},
		{"status_not_string", domain.Document{domain.FieldStatus: 1}},
		{"parent_id_malformed", domain.Document{domain.FieldParentID: "nope"}},
		{"start_time_not_time", domain.Document{domain.FieldStartTime: "2024-05-01"}},
		{"deleted_not_bool", domain.Document{domain.FieldDeleted: "true"}},
		{"exit_code_fractional", domain.Document{domain.FieldExitCode: 1.5}},
		{"storage_size_not_number", domain.Document{domain.FieldStorageSize: "12MB"}},
		{"error_not_object", domain.Document{domain.FieldError: "boom"}},
		{"error_message_not_string", domain.Document{domain.FieldError: map[string]any{"message": 500}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := v.Validate(tc.doc, true)
			require.Error(t, err)
			assert.True(t, domain.IsValidation(err))
		})
	}
}

func TestValidatePassesUnknownFieldsVerbatim(t *testing.T) {
	v := New()

	doc, err := v.Validate(domain.Document{
		"learning_rate": 0.001,
		"optimizer":     "adam",
		domain.FieldWebUI: map[string]any{
			"TensorBoard": "http://localhost:6006",
		},
	}, true)
	require.NoError(t, err)

	assert.Equal(t, 0.001, doc["learning_rate"])
	assert.Equal(t, "adam", doc["optimizer"])
	assert.Equal(t, map[string]any{"TensorBoard": "http://localhost:6006"}, doc[domain.FieldWebUI])
}

func TestValidateShapesNotEqualWrappers(t *testing.T) {
	v := New()

	doc, err := v.Validate(domain.Document{
		domain.FieldStatus: domain.NotEqual{Value: domain.StatusFailed},
	}, true)
	require.NoError(t, err)

	ne, ok := doc[domain.FieldStatus].(domain.NotEqual)
	require.True(t, ok)
	assert.Equal(t, string(domain.StatusFailed), ne.Value)

	_, err = v.Validate(domain.Document{
		domain.FieldStatus: domain.NotEqual{Value: "PAUSED"},
	}, true)
	require.Error(t, err)
}

func TestValidateNormalizesIdentifierFields(t *testing.T) {
	v := New()
	id := primitive.NewObjectID()

	doc, err := v.Validate(domain.Document{domain.FieldID: id.Hex()}, true)
	require.NoError(t, err)
	assert.Equal(t, id, doc[domain.FieldID])
}
