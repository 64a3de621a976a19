package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
)

type UnitEntry struct {
	Code string
	Name string
}

// UnitMapping maps unit codes to display names. Its order is significant: it
// drives listing order and the stats table.
type UnitMapping struct {
	codes []string
	names []string
	pos   map[string]int
}

func NewUnitMapping(entries ...UnitEntry) UnitMapping {
	var m UnitMapping
	for _, e := range entries {
		m.add(e.Code, e.Name)
	}
	return m
}

func (m *UnitMapping) add(code string, name string) {
	if m.pos == nil {
		m.pos = make(map[string]int)
	}
	if i, ok := m.pos[code]; ok {
		m.names[i] = name
		return
	}
	m.pos[code] = len(m.codes)
	m.codes = append(m.codes, code)
	m.names = append(m.names, name)
}

func (m UnitMapping) Len() int { return len(m.codes) }

func (m UnitMapping) Codes() []string { return append([]string(nil), m.codes...) }

func (m UnitMapping) Entries() []UnitEntry {
	out := make([]UnitEntry, 0, len(m.codes))
	for i, c := range m.codes {
		out = append(out, UnitEntry{Code: c, Name: m.names[i]})
	}
	return out
}

func (m UnitMapping) Has(code string) bool {
	_, ok := m.pos[code]
	return ok
}

func (m UnitMapping) Name(code string) (string, bool) {
	i, ok := m.pos[code]
	if !ok {
		return "", false
	}
	return m.names[i], true
}

// Index reports the position of code in mapping order, or -1.
func (m UnitMapping) Index(code string) int {
	if i, ok := m.pos[code]; ok {
		return i
	}
	return -1
}

func (m UnitMapping) Filter(keep func(code string) bool) UnitMapping {
	var out UnitMapping
	for i, c := range m.codes {
		if keep(c) {
			out.add(c, m.names[i])
		}
	}
	return out
}

func (m *UnitMapping) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	keys, fields, err := decodeObject(dec)
	if err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("roster: trailing data after mapping")
	}
	var out UnitMapping
	for _, k := range keys {
		raw := fields[k]
		var name string
		if err := json.Unmarshal(raw, &name); err != nil {
			name = string(bytes.TrimSpace(raw))
		}
		out.add(k, name)
	}
	*m = out
	return nil
}
