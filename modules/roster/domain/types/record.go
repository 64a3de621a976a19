package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
)

const (
	FieldSoldierID    = "So_HSQ_BS"
	FieldCitizenID    = "So_CMSQ_CMQNCN_CMCCQP"
	FieldPersonalInfo = "personal_info"
	FieldFullName     = "ho_chu_dem_ten"
	FieldUnit         = "don_vi"
	FieldID           = "id"
	FieldUnitName     = "don_vi_name"
)

var ErrNotObject = errors.New("roster: value is not a JSON object")

// Record is a schema-free personnel record. Keys keep their document order and
// values keep their original encoding, so a load/save cycle is lossless.
type Record struct {
	keys   []string
	fields map[string]json.RawMessage
}

func ParseRecord(b []byte) (Record, error) {
	var r Record
	if err := r.UnmarshalJSON(b); err != nil {
		return Record{}, err
	}
	return r, nil
}

func (r Record) Len() int { return len(r.keys) }

func (r Record) Keys() []string { return append([]string(nil), r.keys...) }

func (r Record) Raw(key string) (json.RawMessage, bool) {
	v, ok := r.fields[key]
	return v, ok
}

// String returns the value of key when it is a JSON string.
func (r Record) String(key string) (string, bool) {
	raw, ok := r.fields[key]
	if !ok {
		return "", false
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// Text renders a scalar value as text: strings as-is, numbers by their literal,
// true as "true". false, null, objects and arrays read as empty.
func (r Record) Text(key string) string {
	raw, ok := r.fields[key]
	if !ok {
		return ""
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	switch raw[0] {
	case '"':
		s, _ := r.String(key)
		return s
	case 't':
		return "true"
	case 'f', 'n', '{', '[':
		return ""
	default:
		return string(raw)
	}
}

func (r Record) Object(key string) (Record, bool) {
	raw, ok := r.fields[key]
	if !ok {
		return Record{}, false
	}
	obj, err := ParseRecord(raw)
	if err != nil {
		return Record{}, false
	}
	return obj, true
}

// Set replaces the value of an existing key in place, or appends a new key.
func (r *Record) Set(key string, value json.RawMessage) {
	if r.fields == nil {
		r.fields = make(map[string]json.RawMessage)
	}
	if _, ok := r.fields[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.fields[key] = append(json.RawMessage(nil), value...)
}

func (r *Record) SetString(key string, value string) {
	b, _ := marshalNoEscape(value)
	r.Set(key, b)
}

// Clone returns a shallow copy; raw values are shared because they are never
// mutated in place.
func (r Record) Clone() Record {
	out := Record{
		keys:   append([]string(nil), r.keys...),
		fields: make(map[string]json.RawMessage, len(r.fields)),
	}
	for k, v := range r.fields {
		out.fields[k] = v
	}
	return out
}

// ToMap decodes the record into generic Go values (numbers become float64).
func (r Record) ToMap() (map[string]any, error) {
	out := make(map[string]any, len(r.keys))
	for _, k := range r.keys {
		var v any
		if err := json.Unmarshal(r.fields[k], &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := marshalNoEscape(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		v := r.fields[k]
		if len(v) == 0 {
			buf.WriteString("null")
			continue
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (r *Record) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	keys, fields, err := decodeObject(dec)
	if err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("roster: trailing data after object")
	}
	r.keys = keys
	r.fields = fields
	return nil
}

func decodeObject(dec *json.Decoder) ([]string, map[string]json.RawMessage, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, ErrNotObject
	}

	var keys []string
	fields := make(map[string]json.RawMessage)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, ErrNotObject
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, nil, err
		}
		if _, seen := fields[key]; !seen {
			keys = append(keys, key)
		}
		fields[key] = raw
	}
	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}
	return keys, fields, nil
}

func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
