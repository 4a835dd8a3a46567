// Package base64marshall carries raw bytes through textual encodings.
package base64marshall

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
)

// Bytes is a byte slice which reads and writes itself as base64 in
// JSON. In yaml it needs no methods: a plain scalar keeps its raw
// characters and a !!binary scalar is base64-decoded, both by the
// slice kind alone.
type Bytes []byte

func New(b []byte) Bytes {
	return Bytes(b)
}

// Bytes is the underlying byte slice.
func (b Bytes) Bytes() []byte {
	return []byte(b)
}

// String is the base64 (standard alphabet) rendering of the content.
func (b Bytes) String() string {
	return base64.StdEncoding.EncodeToString(b)
}

func (b Bytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

func (b *Bytes) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*b = nil
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	decoded, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return err
	}
	*b = New(decoded)
	return nil
}
