package cashbook

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// jsonObjectWriter collects the members of a JSON object and marshals them
// in insertion order, so persisted records are canonical. Its zero value is
// ready to use.
type jsonObjectWriter struct {
	members []jsonMember
}

type jsonMember struct {
	key   string
	value any
}

// Append adds a member, its value is marshaled with json.Marshal.
func (w *jsonObjectWriter) Append(key string, value any) *jsonObjectWriter {
	w.members = append(w.members, jsonMember{key: key, value: value})
	return w
}

// MarshalJSON satisfies json.Marshaler.
func (w *jsonObjectWriter) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range w.members {
		value, err := json.Marshal(m.value)
		if err != nil {
			return nil, fmt.Errorf("cannot marshal %q: %w", m.key, err)
		}
		key, _ := json.Marshal(m.key)
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
