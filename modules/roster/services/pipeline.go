package services

import (
	"slices"
	"strings"

	"github.com/jacksonlee411/unit-roster/modules/roster/domain/types"
	"github.com/jacksonlee411/unit-roster/pkg/unitscope"
)

// CanonicalID prefers So_HSQ_BS and falls back to So_CMSQ_CMQNCN_CMCCQP, each
// trimmed. A field that is blank after trimming counts as absent.
func CanonicalID(r types.Record) string {
	if id := strings.TrimSpace(r.Text(types.FieldSoldierID)); id != "" {
		return id
	}
	return strings.TrimSpace(r.Text(types.FieldCitizenID))
}

func DisplayName(r types.Record) string {
	info, ok := r.Object(types.FieldPersonalInfo)
	if !ok {
		return ""
	}
	name, _ := info.String(types.FieldFullName)
	return name
}

func UnitCode(r types.Record) string {
	code, _ := r.String(types.FieldUnit)
	return code
}

func FilterByScope(mapping types.UnitMapping, scope string) types.UnitMapping {
	return unitscope.Filter(mapping, scope)
}

// EnrichAndFilter keeps, in input order, the records whose unit is a key of
// mapping, and annotates copies of them with id and don_vi_name.
func EnrichAndFilter(records []types.Record, mapping types.UnitMapping) []types.EnrichedRecord {
	out := make([]types.EnrichedRecord, 0, len(records))
	for _, r := range records {
		code, ok := r.String(types.FieldUnit)
		if !ok {
			continue
		}
		unitName, ok := mapping.Name(code)
		if !ok {
			continue
		}
		id := CanonicalID(r)
		rec := r.Clone()
		rec.SetString(types.FieldID, id)
		rec.SetString(types.FieldUnitName, unitName)
		out = append(out, types.EnrichedRecord{
			Record:   rec,
			ID:       id,
			Name:     DisplayName(r),
			Unit:     code,
			UnitName: unitName,
		})
	}
	return out
}

// SortByMapping orders items by the position of their unit in mapping. Units
// missing from mapping sort last; ties keep input order.
func SortByMapping[T any](items []T, mapping types.UnitMapping, unitOf func(T) string) []T {
	out := slices.Clone(items)
	key := func(it T) int {
		if i := mapping.Index(unitOf(it)); i >= 0 {
			return i
		}
		return mapping.Len()
	}
	slices.SortStableFunc(out, func(a, b T) int { return key(a) - key(b) })
	return out
}

func SortEnriched(items []types.EnrichedRecord, mapping types.UnitMapping) []types.EnrichedRecord {
	return SortByMapping(items, mapping, func(e types.EnrichedRecord) string { return e.Unit })
}

// UnitStats lists every mapping entry, in mapping order, with its record count.
func UnitStats(enriched []types.EnrichedRecord, mapping types.UnitMapping) []types.UnitStat {
	counts := make(map[string]int, mapping.Len())
	for _, e := range enriched {
		if e.Unit != "" {
			counts[e.Unit]++
		}
	}
	entries := mapping.Entries()
	out := make([]types.UnitStat, 0, len(entries))
	for _, e := range entries {
		out = append(out, types.UnitStat{Code: e.Code, Name: e.Name, Count: counts[e.Code]})
	}
	return out
}

func project(e types.EnrichedRecord) types.Projection {
	return types.Projection{ID: e.ID, Name: e.Name, Unit: e.Unit, UnitName: e.UnitName}
}
