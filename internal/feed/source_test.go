package feed

import (
	"compress/gzip"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lobstat/internal/normalize"
	"lobstat/internal/shared/testutil"
)

func writeDayFile(t *testing.T, root string, kind Kind, ticker, date, body string, compress bool) {
	t.Helper()
	dir := filepath.Join(root, kind.venue(), date[:4])
	require.NoError(t, os.MkdirAll(dir, 0o755))

	path := filepath.Join(dir, FileName(kind, ticker, date))
	if !compress {
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
		return
	}
	f, err := os.Create(path + ".gz")
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte(body))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())
}

func TestSourceOrders(t *testing.T) {
	root := t.TempDir()
	writeDayFile(t, root, KindOrders, "AAPL", "2008-01-02",
		"Time,ID,Type,Shares,Price\n34200000,1,B,100,1000000\n34200001,1,D,0,1000000\n", false)

	src := NewSource(root, nil)
	orders, found, err := src.Orders(context.Background(), "AAPL", "2008-01-02")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []normalize.RawOrder{
		{Time: "34200000", OrderID: "1", Type: "B", Volume: "100", Price: "1000000"},
		{Time: "34200001", OrderID: "1", Type: "D", Volume: "0", Price: "1000000"},
	}, orders)
}

func TestSourceGzipAndAliases(t *testing.T) {
	root := t.TempDir()
	writeDayFile(t, root, KindTrades, "MSFT", "2008-01-03", "Time,Ask\n34801,355000\n34802,355100\n", true)
	writeDayFile(t, root, KindQuotes, "MSFT", "2008-01-03", "time,bid,ask\n34800,354900,355100\n", true)

	src := NewSource(root, nil)
	trades, found, err := src.Trades(context.Background(), "MSFT", "2008-01-03")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []normalize.RawTrade{{Time: "34801", Price: "355000"}, {Time: "34802", Price: "355100"}}, trades)

	quotes, found, err := src.Quotes(context.Background(), "MSFT", "2008-01-03")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []normalize.RawQuote{{Time: "34800", Bid: "354900", Ask: "355100"}}, quotes)
}

func TestSourceMissingDay(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	src := NewSource(t.TempDir(), logger)

	quotes, found, err := src.Quotes(context.Background(), "AAPL", "2008-01-01")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, quotes)
	testutil.AssertLogged(t, logs, slog.LevelWarn, "day file not found")
}

func TestSourceMalformedFile(t *testing.T) {
	root := t.TempDir()
	writeDayFile(t, root, KindQuotes, "AAPL", "2008-01-02", "time,bid\n1,2\n", false)

	_, _, err := NewSource(root, nil).Quotes(context.Background(), "AAPL", "2008-01-02")
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestSourceCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := NewSource(t.TempDir(), nil).Orders(ctx, "AAPL", "2008-01-02")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSourceDates(t *testing.T) {
	root := t.TempDir()
	writeDayFile(t, root, KindQuotes, "AAPL", "2008-01-03", "time,bid,ask\n", false)
	writeDayFile(t, root, KindQuotes, "AAPL", "2008-01-02", "time,bid,ask\n", true)
	writeDayFile(t, root, KindTrades, "AAPL", "2008-01-04", "time,price\n", false)
	writeDayFile(t, root, KindQuotes, "MSFT", "2008-01-04", "time,bid,ask\n", false)

	dates, err := NewSource(root, nil).Dates(KindQuotes, "AAPL", 2008)
	require.NoError(t, err)
	assert.Equal(t, []string{"2008-01-02", "2008-01-03"}, dates)

	dates, err = NewSource(root, nil).Dates(KindQuotes, "AAPL", 2009)
	require.NoError(t, err)
	assert.Empty(t, dates)
}

func TestBusinessDays(t *testing.T) {
	days, err := BusinessDays(2008, nil)
	require.NoError(t, err)
	assert.Len(t, days, 262)
	assert.Equal(t, "2008-01-01", days[0])
	assert.Equal(t, "2008-12-31", days[len(days)-1])

	days, err = BusinessDays(2008, []string{"2008-01-01", "2008-12-25"})
	require.NoError(t, err)
	assert.Len(t, days, 260)
	assert.Equal(t, "2008-01-02", days[0])

	_, err = BusinessDays(2008, []string{"Jan 1"})
	assert.Error(t, err)
}
