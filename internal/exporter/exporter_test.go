package exporter

import (
	"bytes"
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"lobstat/internal/artifacts"
	"lobstat/internal/statistics"
	"lobstat/pkg/contracts/domain"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data = bytes.TrimPrefix(data, utf8BOM)
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return records
}

func responseArtifact(shift int) *artifacts.Artifact {
	table := artifacts.NewTable("tau", "value", "count")
	table.Append(1, 1.5e-5, 100)
	table.Append(2, math.NaN(), 0)
	return artifacts.New(domain.ArtifactKey{
		Kind:        domain.ArtifactResponse,
		Ticker:      "AAPL",
		Counterpart: "MSFT",
		Year:        2008,
		Scale:       domain.ScalePhysical,
		Statistic:   domain.StatisticResponse,
		ReturnKind:  domain.ReturnLog,
		Shift:       shift,
	}, table)
}

func TestWriteCSVResolvesRelativePaths(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(dir)

	require.NoError(t, w.WriteCSV("nested/out.csv", WriteOptions{
		Headers:   []string{"a", "b"},
		Records:   [][]string{{"1", "2"}},
		BOMPrefix: true,
	}))
	path := filepath.Join(dir, "nested", "out.csv")
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, utf8BOM))
	assert.Equal(t, [][]string{{"a", "b"}, {"1", "2"}}, readCSV(t, path))

	require.NoError(t, w.WriteCSV("nested/out.csv", WriteOptions{
		Headers: []string{"c"},
		Records: [][]string{{"3"}},
	}))
	raw, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.False(t, bytes.HasPrefix(raw, utf8BOM))
	assert.Equal(t, [][]string{{"c"}, {"3"}}, readCSV(t, path))

	abs := filepath.Join(t.TempDir(), "abs.csv")
	stream, err := w.CreateStreamWriter(abs, []string{"x"})
	require.NoError(t, err)
	require.NoError(t, stream.WriteRecord([]string{"y"}))
	require.NoError(t, stream.Close())
	assert.Equal(t, [][]string{{"x"}, {"y"}}, readCSV(t, abs))
}

func TestWriteArtifact(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(dir)
	require.NoError(t, w.WriteArtifact("resp.csv", responseArtifact(0)))

	assert.Equal(t, [][]string{
		{"tau", "value", "count"},
		{"1", "1.5e-05", "100"},
		{"2", "NaN", "0"},
	}, readCSV(t, filepath.Join(dir, "resp.csv")))
}

func TestWriteStatistics(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(dir)
	years := []statistics.YearStats{
		{Ticker: "AAPL", Days: 250, AvgQuotes: 1234.4, AvgTrades: 99.5, AvgSpread: 0.012345, MidpointError: 1e-6},
		{Ticker: "MSFT", AvgQuotes: math.NaN(), AvgTrades: math.NaN(), AvgSpread: math.NaN(), MidpointError: math.NaN()},
	}
	require.NoError(t, w.WriteStatistics("stats.csv", years))

	records := readCSV(t, filepath.Join(dir, "stats.csv"))
	require.Len(t, records, 3)
	assert.Equal(t, StatisticsHeaders, records[0])
	assert.Equal(t, []string{"AAPL", "250", "1234", "100", "0.0123", "1e-06"}, records[1])
	assert.Equal(t, []string{"MSFT", "0", "NaN", "NaN", "NaN", "NaN"}, records[2])
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "NaN", formatFloat(math.NaN()))
	assert.Equal(t, "0.25", formatFloat(0.25))
	assert.Equal(t, "2.50", formatFixed(2.5, 2))
	assert.Equal(t, "+Inf", formatFixed(math.Inf(1), 2))
}

func TestWorkbook(t *testing.T) {
	book := NewWorkbook()
	defer book.Close()

	require.NoError(t, book.AddArtifact(responseArtifact(0)))
	require.NoError(t, book.AddArtifact(responseArtifact(0)))
	require.NoError(t, book.AddArtifact(responseArtifact(-10)))
	require.NoError(t, book.AddStatistics("statistics", []statistics.YearStats{
		{Ticker: "AAPL", Days: 2, AvgQuotes: 10, AvgTrades: 5, AvgSpread: 0.01, MidpointError: math.NaN()},
	}))

	assert.Equal(t, []string{
		"AAPL-MSFT resp p log",
		"AAPL-MSFT resp p log~2",
		"AAPL-MSFT resp p log s-10",
		"statistics",
	}, book.Sheets())

	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, book.SaveAs(path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("AAPL-MSFT resp p log")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"tau", "value", "count"}, rows[0])
	assert.Equal(t, "2", rows[2][0])
	assert.Equal(t, "0", rows[2][len(rows[2])-1])

	stats, err := f.GetRows("statistics")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", stats[1][0])
}

func TestUniqueSheetNameTruncates(t *testing.T) {
	book := NewWorkbook()
	defer book.Close()
	long := strings.Repeat("x", 40)

	first := book.uniqueName(long)
	assert.Len(t, first, maxSheetName)
	book.sheets[first] = true
	second := book.uniqueName(long)
	assert.Len(t, second, maxSheetName)
	assert.True(t, strings.HasSuffix(second, "~2"))
}
