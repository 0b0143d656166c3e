package protocol

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

const modelFrameSchema = `{
  "type": "object",
  "required": ["id", "model_data"],
  "properties": {
    "id": {"type": "integer", "minimum": 1},
    "name": {"type": ["string", "null"]},
    "model_data": {"type": "string"}
  }
}`

const errorFrameSchema = `{
  "type": "object",
  "required": ["error"],
  "properties": {
    "error": {"type": "string"}
  }
}`

// catalogEntrySchema only constrains id; optional fields are coerced by
// parseCatalog instead of failing the entry.
const catalogEntrySchema = `{
  "type": "object",
  "required": ["id"],
  "properties": {
    "id": {"type": "integer", "minimum": 1}
  }
}`

var (
	modelSchema = mustSchema(modelFrameSchema)
	errorSchema = mustSchema(errorFrameSchema)
	entrySchema = mustSchema(catalogEntrySchema)
)

func mustSchema(src string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("protocol: bad schema: %v", err))
	}
	return s
}

func validate(s *gojsonschema.Schema, doc []byte) error {
	res, err := s.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	if !res.Valid() {
		errs := make([]string, len(res.Errors()))
		for i, desc := range res.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("schema mismatch: %v", errs)
	}
	return nil
}
