package controllers

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/jacksonlee411/unit-roster/modules/roster/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// writeRosterXLSX renders the listing view as two sheets: the records in
// display order and the per-unit counts.
func writeRosterXLSX(w io.Writer, lang string, view services.ListView) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	rosterSheet := tr(lang, "sheet_roster")
	statsSheet := tr(lang, "sheet_stats")
	if err := f.SetSheetName("Sheet1", rosterSheet); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}
	if _, err := f.NewSheet(statsSheet); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}

	header := []any{tr(lang, "col_no"), tr(lang, "col_id"), tr(lang, "col_name"), tr(lang, "col_unit_code"), tr(lang, "col_unit")}
	if err := f.SetSheetRow(rosterSheet, "A1", &header); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}
	for i, e := range view.Records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("xlsx: %w", err)
		}
		row := []any{i + 1, e.ID, e.Name, e.Unit, e.UnitName}
		if err := f.SetSheetRow(rosterSheet, cell, &row); err != nil {
			return fmt.Errorf("xlsx: %w", err)
		}
	}
	if err := f.SetCellStyle(rosterSheet, "A1", "E1", bold); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}
	if err := f.SetColWidth(rosterSheet, "B", "E", 28); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}

	statsHeader := []any{tr(lang, "col_unit_code"), tr(lang, "col_unit"), tr(lang, "col_count")}
	if err := f.SetSheetRow(statsSheet, "A1", &statsHeader); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}
	for i, s := range view.Stats {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("xlsx: %w", err)
		}
		row := []any{s.Code, s.Name, s.Count}
		if err := f.SetSheetRow(statsSheet, cell, &row); err != nil {
			return fmt.Errorf("xlsx: %w", err)
		}
	}
	totalCell, err := excelize.CoordinatesToCellName(1, len(view.Stats)+2)
	if err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}
	total := []any{tr(lang, "total"), "", view.Total}
	if err := f.SetSheetRow(statsSheet, totalCell, &total); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}
	if err := f.SetCellStyle(statsSheet, "A1", "C1", bold); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}

	f.SetActiveSheet(0)
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}
	return nil
}
