// Package protocol defines the JSON frames exchanged with the model backend
// and classifies inbound text into exactly one frame kind.
//
// Inbound shapes:
//
//   - array of entries            -> CatalogFrame (full model list)
//   - object with "error" string  -> ErrorFrame
//   - object with id + model_data -> ModelFrame (single model response)
//
// Anything else is a protocol error.
package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"

	"modelview/internal/common/fault"
)

// Frame is one classified inbound message.
type Frame interface {
	Kind() string
}

// CatalogEntry is one element of a catalog frame. Name and ModelData are nil
// when the backend omitted them or sent null.
type CatalogEntry struct {
	ID        int64   `json:"id"`
	Name      *string `json:"name,omitempty"`
	ModelData *string `json:"model_data,omitempty"`
}

// CatalogFrame carries the full set of models known to the backend.
// Dropped counts elements skipped for lacking a positive integer id.
// Coerced counts kept entries whose name or model_data was not a string
// and was treated as absent.
type CatalogFrame struct {
	Entries []CatalogEntry
	Dropped int
	Coerced int
}

// ModelFrame answers a get_by_id request.
type ModelFrame struct {
	ID        int64   `json:"id"`
	Name      *string `json:"name,omitempty"`
	ModelData string  `json:"model_data"`
}

// ErrorFrame carries a backend failure message.
type ErrorFrame struct {
	Message string `json:"error"`
}

func (CatalogFrame) Kind() string { return "catalog" }
func (ModelFrame) Kind() string   { return "model" }
func (ErrorFrame) Kind() string   { return "error" }

// ParseFrame classifies raw. The returned error is always a protocol fault.
func ParseFrame(raw []byte) (Frame, error) {
	b := bytes.TrimSpace(raw)
	if len(b) == 0 {
		return nil, fault.Protocol("empty frame", nil)
	}
	if !json.Valid(b) {
		return nil, fault.Protocol("malformed JSON", nil)
	}
	switch b[0] {
	case '[':
		return parseCatalog(b)
	case '{':
		return parseObject(b)
	default:
		return nil, fault.Protocol(fmt.Sprintf("unexpected top-level JSON value %q", truncate(b, 16)), nil)
	}
}

func parseObject(b []byte) (Frame, error) {
	if validate(errorSchema, b) == nil {
		var f ErrorFrame
		if err := json.Unmarshal(b, &f); err != nil {
			return nil, fault.Protocol("error frame", err)
		}
		return f, nil
	}
	if err := validate(modelSchema, b); err != nil {
		return nil, fault.Protocol("unrecognized object frame", err)
	}
	var f ModelFrame
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fault.Protocol("model frame", err)
	}
	return f, nil
}

// rawEntry defers typing of the optional fields.
type rawEntry struct {
	ID        int64           `json:"id"`
	Name      json.RawMessage `json:"name"`
	ModelData json.RawMessage `json:"model_data"`
}

func parseCatalog(b []byte) (Frame, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(b, &elems); err != nil {
		return nil, fault.Protocol("catalog frame", err)
	}
	out := CatalogFrame{Entries: make([]CatalogEntry, 0, len(elems))}
	for _, el := range elems {
		if validate(entrySchema, el) != nil {
			out.Dropped++
			continue
		}
		var re rawEntry
		if err := json.Unmarshal(el, &re); err != nil || re.ID <= 0 {
			out.Dropped++
			continue
		}
		name, okName := optString(re.Name)
		data, okData := optString(re.ModelData)
		if !okName || !okData {
			out.Coerced++
		}
		out.Entries = append(out.Entries, CatalogEntry{ID: re.ID, Name: name, ModelData: data})
	}
	return out, nil
}

// optString returns the string held by raw, or nil when raw is absent or
// null. ok is false when raw holds some other JSON type.
func optString(raw json.RawMessage) (s *string, ok bool) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, true
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, false
	}
	return &v, true
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
