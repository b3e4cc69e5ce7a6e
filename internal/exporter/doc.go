// Package exporter writes lobstat results for people: CSV reports and Excel
// workbooks.
//
// CSVWriter: Core CSV writing with headers, streaming and an optional UTF-8
// BOM for Excel compatibility. Relative paths resolve below the reports
// directory.
//
// Workbook: An excelize workbook with one sheet per exported table, used for
// year response functions and ticker statistics.
//
// Example usage:
//
//	w := exporter.NewCSVWriter(cfg.Paths.ReportsDir())
//	err := w.WriteStatistics("taq_avg_spread_2008.csv", years)
//
//	book := exporter.NewWorkbook()
//	defer book.Close()
//	err = book.AddArtifact(artifact)
//	err = book.SaveAs(filepath.Join(cfg.Paths.ReportsDir(), "responses_2008.xlsx"))
package exporter
