package exporter

import (
	"fmt"
	"math"
	"strings"

	"github.com/xuri/excelize/v2"

	"lobstat/internal/artifacts"
	"lobstat/internal/statistics"
	"lobstat/pkg/contracts/domain"
)

const maxSheetName = 31

// Workbook collects tables into an Excel file, one sheet per table.
type Workbook struct {
	file   *excelize.File
	sheets map[string]bool
	first  bool
}

// NewWorkbook creates an empty workbook.
func NewWorkbook() *Workbook {
	return &Workbook{file: excelize.NewFile(), sheets: make(map[string]bool), first: true}
}

// Sheets returns the sheet names in creation order.
func (b *Workbook) Sheets() []string {
	return b.file.GetSheetList()
}

// AddArtifact adds the table of a as a new sheet named after its key.
func (b *Workbook) AddArtifact(a *artifacts.Artifact) error {
	headers := a.Table.Columns
	rows := make([][]any, len(a.Table.Rows))
	for i, row := range a.Table.Rows {
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = cellValue(v)
		}
		rows[i] = cells
	}
	return b.addSheet(sheetName(a), headers, rows)
}

// AddStatistics adds a sheet with one row per ticker-year.
func (b *Workbook) AddStatistics(name string, years []statistics.YearStats) error {
	rows := make([][]any, len(years))
	for i, y := range years {
		rows[i] = []any{
			y.Ticker, y.Days,
			cellValue(y.AvgQuotes), cellValue(y.AvgTrades),
			cellValue(y.AvgSpread), cellValue(y.MidpointError),
		}
	}
	return b.addSheet(name, StatisticsHeaders, rows)
}

func (b *Workbook) addSheet(name string, headers []string, rows [][]any) error {
	name = b.uniqueName(name)
	if b.first {
		// reuse the default sheet of a new file
		if err := b.file.SetSheetName(b.file.GetSheetName(0), name); err != nil {
			return fmt.Errorf("rename sheet: %w", err)
		}
		b.first = false
	} else if _, err := b.file.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %s: %w", name, err)
	}
	b.sheets[name] = true

	header := make([]any, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := b.file.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("write header of %s: %w", name, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := b.file.SetSheetRow(name, cell, &row); err != nil {
			return fmt.Errorf("write row %d of %s: %w", i+1, name, err)
		}
	}
	return nil
}

func (b *Workbook) uniqueName(name string) string {
	if len(name) > maxSheetName {
		name = name[:maxSheetName]
	}
	candidate := name
	for i := 2; b.sheets[candidate]; i++ {
		suffix := fmt.Sprintf("~%d", i)
		base := name
		if len(base)+len(suffix) > maxSheetName {
			base = base[:maxSheetName-len(suffix)]
		}
		candidate = base + suffix
	}
	return candidate
}

// SaveAs writes the workbook to path.
func (b *Workbook) SaveAs(path string) error {
	if err := b.file.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}

// Close releases the workbook.
func (b *Workbook) Close() error {
	return b.file.Close()
}

// sheetName derives a short sheet name from an artifact key, e.g.
// "AAPL-MSFT ret-log s10".
func sheetName(a *artifacts.Artifact) string {
	k := a.Meta.Key
	var parts []string
	if k.Counterpart != "" && k.Counterpart != k.Ticker {
		parts = append(parts, k.Ticker+"-"+k.Counterpart)
	} else {
		parts = append(parts, k.Ticker)
	}
	if k.Kind != domain.ArtifactResponse {
		parts = append(parts, string(k.Kind))
	}
	if k.Date != "" {
		parts = append(parts, strings.ReplaceAll(k.Date, "-", ""))
	}
	if k.Statistic != "" {
		parts = append(parts, abbreviate(string(k.Statistic)))
	}
	if k.Scale != "" {
		parts = append(parts, string(k.Scale)[:1])
	}
	if k.ReturnKind != "" {
		parts = append(parts, string(k.ReturnKind))
	}
	if k.Shift != 0 {
		parts = append(parts, fmt.Sprintf("s%d", k.Shift))
	}
	return strings.Join(parts, " ")
}

func abbreviate(s string) string {
	if s == "sign_correlator" {
		return "corr"
	}
	return "resp"
}

// cellValue leaves NaN cells empty; excelize cannot store NaN.
func cellValue(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}
