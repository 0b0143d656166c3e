// Package payload converts the text encoding used on the wire for model data
// into raw bytes. Only the standard base64 alphabet with padding is accepted.
package payload

import (
	"encoding/base64"

	"modelview/internal/common/fault"
)

var enc = base64.StdEncoding.Strict()

// Decode returns the bytes carried by encoded. Malformed input yields a
// decode error; the empty string decodes to an empty payload.
func Decode(encoded string) ([]byte, error) {
	return DecodeModel(0, encoded)
}

// DecodeModel is Decode with the failure attributed to model id.
func DecodeModel(id int64, encoded string) ([]byte, error) {
	b, err := enc.DecodeString(encoded)
	if err != nil {
		return nil, fault.Decode(id, err)
	}
	return b, nil
}

// Encode is the inverse of Decode. Used by test backends and fixtures.
func Encode(b []byte) string { return base64.StdEncoding.EncodeToString(b) }
