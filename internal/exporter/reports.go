package exporter

import (
	"lobstat/internal/artifacts"
	"lobstat/internal/statistics"
)

// StatisticsHeaders are the columns of a statistics report.
var StatisticsHeaders = []string{"Ticker", "Days", "Avg_Quotes", "Avg_Trades", "Avg_Spread", "Midpoint_Error"}

// WriteStatistics writes one row per ticker-year, in the given order.
func (w *CSVWriter) WriteStatistics(filePath string, years []statistics.YearStats) error {
	return w.WriteCSV(filePath, WriteOptions{
		Headers:   StatisticsHeaders,
		Records:   statisticsRows(years),
		BOMPrefix: true,
	})
}

func statisticsRows(years []statistics.YearStats) [][]string {
	rows := make([][]string, 0, len(years))
	for _, y := range years {
		rows = append(rows, []string{
			y.Ticker,
			formatInt(y.Days),
			formatFixed(y.AvgQuotes, 0),
			formatFixed(y.AvgTrades, 0),
			formatFixed(y.AvgSpread, 4),
			formatFloat(y.MidpointError),
		})
	}
	return rows
}

// WriteArtifact writes the table of an artifact with full precision.
func (w *CSVWriter) WriteArtifact(filePath string, a *artifacts.Artifact) error {
	stream, err := w.CreateStreamWriter(filePath, a.Table.Columns)
	if err != nil {
		return err
	}
	record := make([]string, len(a.Table.Columns))
	for _, row := range a.Table.Rows {
		for i, v := range row {
			record[i] = formatFloat(v)
		}
		if err := stream.WriteRecord(record); err != nil {
			stream.Close()
			return err
		}
	}
	return stream.Close()
}
