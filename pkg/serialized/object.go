package serialized

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// object is a JSON object that keeps its key order and the raw bytes of
// every value, so that re-encoding an unchanged value reproduces it exactly.
type object struct {
	keys   []string
	fields map[string]json.RawMessage
}

func newObject() *object {
	return &object{fields: map[string]json.RawMessage{}}
}

func parseObject(data []byte) (*object, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected JSON object, got %v", tok)
	}

	o := newObject()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("field %q: %w", key, err)
		}
		o.set(key, raw)
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err == nil {
		return nil, fmt.Errorf("unexpected data after JSON object")
	}
	return o, nil
}

// get returns the raw value of key. A JSON null counts as absent.
func (o *object) get(key string) (json.RawMessage, bool) {
	raw, ok := o.fields[key]
	if ok && bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, false
	}
	return raw, ok
}

func (o *object) set(key string, raw json.RawMessage) {
	if _, ok := o.fields[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.fields[key] = raw
}

func (o *object) delete(key string) {
	if _, ok := o.fields[key]; !ok {
		return
	}
	delete(o.fields, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			return
		}
	}
}

func (o *object) clone() *object {
	c := &object{
		keys:   append([]string(nil), o.keys...),
		fields: make(map[string]json.RawMessage, len(o.fields)),
	}
	for k, v := range o.fields {
		c.fields[k] = append(json.RawMessage(nil), v...)
	}
	return c
}

// MarshalJSON writes the fields in their original order with their raw
// values untouched.
func (o *object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(o.fields[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
