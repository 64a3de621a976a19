package types

import (
	"bytes"
	"encoding/json"
	"errors"
)

var (
	ErrMalformedJSON = errors.New("roster: malformed json")
	ErrDatasetShape  = errors.New("roster: dataset must be a list or an object with a data list")
)

// DecodeDataset accepts both persisted layouts: a bare list of records, or an
// object wrapping the list under "data".
func DecodeDataset(b []byte) ([]Record, error) {
	if !json.Valid(b) {
		return nil, ErrMalformedJSON
	}
	trimmed := bytes.TrimSpace(b)
	switch trimmed[0] {
	case '[':
		return decodeRecordList(trimmed)
	case '{':
		wrapper, err := ParseRecord(trimmed)
		if err != nil {
			return nil, err
		}
		data, ok := wrapper.Raw("data")
		if !ok {
			return nil, ErrDatasetShape
		}
		data = bytes.TrimSpace(data)
		if len(data) == 0 || data[0] != '[' {
			return nil, ErrDatasetShape
		}
		return decodeRecordList(data)
	default:
		return nil, ErrDatasetShape
	}
}

func decodeRecordList(b []byte) ([]Record, error) {
	out := make([]Record, 0)
	if err := json.Unmarshal(b, &out); err != nil {
		if errors.Is(err, ErrNotObject) {
			return nil, ErrNotObject
		}
		return nil, err
	}
	return out, nil
}

// EncodeDataset produces the canonical stored layout: {"data": [...]}, indented,
// with non-ASCII and HTML characters written as-is.
func EncodeDataset(records []Record) ([]byte, error) {
	if records == nil {
		records = []Record{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(struct {
		Data []Record `json:"data"`
	}{Data: records}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
