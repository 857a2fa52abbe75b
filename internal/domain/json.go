package domain

import (
	json "github.com/goccy/go-json"
)

// JSON renders the document for API consumers. Timestamps serialize in
// RFC 3339 and ObjectIDs in their hex form.
func (d Document) JSON() ([]byte, error) {
	return json.Marshal(map[string]any(d))
}

// DocumentFromJSON parses an API payload back into a document. Field
// types stay as JSON gives them; shaping is the validator's job.
func DocumentFromJSON(data []byte) (Document, error) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, &ValidationError{Reason: err.Error()}
	}
	return Document(m), nil
}
