package models

import (
	"bytes"
	"encoding/json"
)

// Record is one parking space as it appears in the source database. The
// source schema is open-ended, so values are kept as raw JSON.
type Record map[string]json.RawMessage

// Has reports whether the record carries the named field, even if its value
// is null.
func (r Record) Has(name string) bool {
	_, ok := r[name]
	return ok
}

// Field returns the named value. A missing key yields the null Field.
func (r Record) Field(name string) Field {
	raw, ok := r[name]
	if !ok {
		return Field{}
	}
	return NewField(raw)
}

// Field is a nullable raw JSON value. The zero Field is null.
type Field struct {
	raw json.RawMessage
}

// NewField wraps raw, compacting it. A null literal gives the null Field.
func NewField(raw json.RawMessage) Field {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Field{}
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return Field{raw: append(json.RawMessage(nil), trimmed...)}
	}
	return Field{raw: buf.Bytes()}
}

// Valid reports whether the field holds a non-null value.
func (f Field) Valid() bool {
	return len(f.raw) > 0
}

// Raw returns the compacted JSON value, or nil for the null Field.
func (f Field) Raw() json.RawMessage {
	return f.raw
}

// Text returns the value as text: JSON strings are unquoted, anything else
// is returned as its JSON literal.
func (f Field) Text() (string, bool) {
	if !f.Valid() {
		return "", false
	}
	var s string
	if err := json.Unmarshal(f.raw, &s); err == nil {
		return s, true
	}
	return string(f.raw), true
}

func (f Field) MarshalJSON() ([]byte, error) {
	if !f.Valid() {
		return []byte("null"), nil
	}
	return f.raw, nil
}

func (f *Field) UnmarshalJSON(data []byte) error {
	*f = NewField(data)
	return nil
}
