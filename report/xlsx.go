package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/datum-labs/rdapexpiry/batch"
	"github.com/datum-labs/rdapexpiry/expiry"
)

const xlsxSheet = "Domains"

var xlsxHeader = []any{"Domain", "Status", "Expiration (UTC)", "Remaining", "Tier", "Attempts", "Error", "Source", "Checked (UTC)"}

// tierFills are the cell backgrounds of the Tier column.
var tierFills = map[expiry.Tier]string{
	expiry.Expired:  "F4CCCC",
	expiry.Critical: "F4CCCC",
	expiry.Warning:  "FFF2CC",
	expiry.Normal:   "D9EAD3",
}

// XLSX collects outcomes into a workbook written by Save.
type XLSX struct {
	path string
	full bool
	rows []batch.Outcome
}

func NewXLSX(path string, full bool) *XLSX { return &XLSX{path: path, full: full} }

func (x *XLSX) Begin(string) {}

func (x *XLSX) Report(o batch.Outcome) { x.rows = append(x.rows, o) }

// Flush writes the workbook to the configured path.
func (x *XLSX) Flush() error { return x.Save(x.path) }

// Save writes all collected outcomes to path.
func (x *XLSX) Save(path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return fmt.Errorf("xlsx: rename sheet: %w", err)
	}
	if err := f.SetSheetRow(xlsxSheet, "A1", &xlsxHeader); err != nil {
		return fmt.Errorf("xlsx: header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("xlsx: style: %w", err)
	}
	if err := f.SetRowStyle(xlsxSheet, 1, 1, bold); err != nil {
		return fmt.Errorf("xlsx: header style: %w", err)
	}

	styles := make(map[expiry.Tier]int, len(tierFills))
	for tier, color := range tierFills {
		id, err := f.NewStyle(&excelize.Style{Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}}})
		if err != nil {
			return fmt.Errorf("xlsx: style: %w", err)
		}
		styles[tier] = id
	}

	for i, o := range x.rows {
		row := i + 2
		e := NewEntry(o, x.full)
		cells := []any{e.Domain, e.Status, "", "", e.Tier, e.Attempts, e.ErrorKind, e.Source, o.CheckedAt.UTC().Format("2006-01-02 15:04:05")}
		if e.Expiration != nil {
			cells[2] = e.Expiration.UTC().Format("2006-01-02 15:04:05")
		}
		if o.Status == batch.Registered {
			cells[3] = expiry.Format(o.Remaining, x.full)
			if o.Remaining < 0 {
				cells[3] = "-" + cells[3].(string)
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(xlsxSheet, cell, &cells); err != nil {
			return fmt.Errorf("xlsx: row %d: %w", row, err)
		}
		if o.Status == batch.Registered {
			tierCell, _ := excelize.CoordinatesToCellName(5, row)
			if err := f.SetCellStyle(xlsxSheet, tierCell, tierCell, styles[o.Tier]); err != nil {
				return fmt.Errorf("xlsx: row %d style: %w", row, err)
			}
		}
	}
	if err := f.SetColWidth(xlsxSheet, "A", "A", 32); err != nil {
		return err
	}
	if err := f.SetColWidth(xlsxSheet, "C", "D", 28); err != nil {
		return err
	}
	return f.SaveAs(path)
}
