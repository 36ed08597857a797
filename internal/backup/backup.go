// Package backup encodes and decodes the JSON export document.
package backup

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/evalex7/e-plan/internal/model"
)

var ErrInvalidPayload = errors.New("invalid backup payload")

// Payload is a decoded export: the collections it carried and their contents.
type Payload struct {
	Dataset     model.Dataset
	Collections []model.Collection
}

// Marshal encodes every collection.
func Marshal(ds model.Dataset) ([]byte, error) {
	return MarshalSelected(ds, model.Collections()...)
}

// MarshalSelected encodes only the listed collections; the other keys are
// omitted from the document.
func MarshalSelected(ds model.Dataset, collections ...model.Collection) ([]byte, error) {
	ds = ds.Clone()
	doc := make(map[string]any, len(collections))
	for _, c := range collections {
		section := ds.Section(c)
		if section == nil {
			return nil, fmt.Errorf("%w: unknown collection %q", ErrInvalidPayload, c)
		}
		doc[string(c)] = section
	}
	return json.MarshalIndent(doc, "", "  ")
}

// Unmarshal decodes an export document. The top level must be an object
// whose keys are all known collections holding arrays.
func Unmarshal(data []byte) (Payload, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return Payload{}, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	if doc == nil {
		return Payload{}, fmt.Errorf("%w: top level must be an object", ErrInvalidPayload)
	}

	payload := Payload{Dataset: model.EmptyDataset()}
	for _, c := range model.Collections() {
		raw, ok := doc[string(c)]
		if !ok {
			continue
		}
		delete(doc, string(c))
		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) == 0 || trimmed[0] != '[' {
			return Payload{}, fmt.Errorf("%w: %s must be an array", ErrInvalidPayload, c)
		}
		if err := json.Unmarshal(trimmed, payload.Dataset.SectionTarget(c)); err != nil {
			return Payload{}, fmt.Errorf("%w: %s: %w", ErrInvalidPayload, c, err)
		}
		payload.Collections = append(payload.Collections, c)
	}
	for key := range doc {
		return Payload{}, fmt.Errorf("%w: unknown key %q", ErrInvalidPayload, key)
	}
	payload.Dataset.Normalize()
	return payload, nil
}

// FileName is the name an export taken at t is saved under.
func FileName(t time.Time) string {
	return fmt.Sprintf("maintenance_backup_%s.json", t.Format(model.DateLayout))
}
