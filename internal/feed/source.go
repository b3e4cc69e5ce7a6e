package feed

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"lobstat/internal/normalize"
)

// Kind is the type of a decoded day file.
type Kind string

const (
	KindOrders Kind = "orders"
	KindQuotes Kind = "quotes"
	KindTrades Kind = "trades"
)

func (k Kind) venue() string {
	if k == KindOrders {
		return "itch"
	}
	return "taq"
}

var (
	orderColumns = []column{
		{name: "time", aliases: []string{"timestamp"}},
		{name: "order_id", aliases: []string{"id", "orderid"}},
		{name: "type", aliases: []string{"msg_type"}},
		{name: "volume", aliases: []string{"shares", "size"}},
		{name: "price"},
	}
	quoteColumns = []column{
		{name: "time"},
		{name: "bid"},
		{name: "ask"},
	}
	// Older decoded trade files keep the trade price in an "ask" column.
	tradeColumns = []column{
		{name: "time"},
		{name: "price", aliases: []string{"trade_price", "ask"}},
		{name: "volume", aliases: []string{"size", "shares"}, optional: true},
	}
)

// Source reads day files below a data root.
type Source struct {
	root   string
	logger *slog.Logger
}

// NewSource creates a Source rooted at dir.
func NewSource(dir string, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{
		root:   dir,
		logger: logger.With(slog.String("component", "feed")),
	}
}

// Root returns the data root.
func (s *Source) Root() string {
	return s.root
}

// FileName returns the uncompressed file name of a day file.
func FileName(kind Kind, ticker, date string) string {
	return fmt.Sprintf("%s_%s_%s.csv", ticker, date, kind)
}

// Locate returns the path of a day file, preferring the plain CSV over the
// gzip variant. found is false when neither exists.
func (s *Source) Locate(kind Kind, ticker, date string) (path string, found bool, err error) {
	if len(date) < 4 {
		return "", false, fmt.Errorf("invalid date %q", date)
	}
	base := filepath.Join(s.root, kind.venue(), date[:4], FileName(kind, ticker, date))
	for _, candidate := range []string{base, base + ".gz"} {
		info, err := os.Stat(candidate)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return "", false, fmt.Errorf("stat %s: %w", candidate, err)
		}
		if info.IsDir() {
			return "", false, fmt.Errorf("%s is a directory", candidate)
		}
		return candidate, true, nil
	}
	return "", false, nil
}

func (s *Source) load(ctx context.Context, kind Kind, ticker, date string, cols []column) ([][]string, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	path, found, err := s.Locate(kind, ticker, date)
	if err != nil {
		return nil, false, err
	}
	if !found {
		s.logger.WarnContext(ctx, "day file not found",
			slog.String("kind", string(kind)),
			slog.String("ticker", ticker),
			slog.String("date", date))
		return nil, false, nil
	}

	rc, err := openDayFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("open %s: %w", path, err)
	}
	defer rc.Close()

	rows, err := readTable(rc, cols)
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", path, err)
	}

	s.logger.DebugContext(ctx, "day file loaded",
		slog.String("path", path),
		slog.Int("rows", len(rows)))
	return rows, true, nil
}

// Orders loads the ITCH order records of one day.
func (s *Source) Orders(ctx context.Context, ticker, date string) ([]normalize.RawOrder, bool, error) {
	rows, found, err := s.load(ctx, KindOrders, ticker, date, orderColumns)
	if err != nil || !found {
		return nil, found, err
	}
	out := make([]normalize.RawOrder, len(rows))
	for i, r := range rows {
		out[i] = normalize.RawOrder{Time: r[0], OrderID: r[1], Type: r[2], Volume: r[3], Price: r[4]}
	}
	return out, true, nil
}

// Quotes loads the TAQ quote records of one day.
func (s *Source) Quotes(ctx context.Context, ticker, date string) ([]normalize.RawQuote, bool, error) {
	rows, found, err := s.load(ctx, KindQuotes, ticker, date, quoteColumns)
	if err != nil || !found {
		return nil, found, err
	}
	out := make([]normalize.RawQuote, len(rows))
	for i, r := range rows {
		out[i] = normalize.RawQuote{Time: r[0], Bid: r[1], Ask: r[2]}
	}
	return out, true, nil
}

// Trades loads the TAQ trade records of one day.
func (s *Source) Trades(ctx context.Context, ticker, date string) ([]normalize.RawTrade, bool, error) {
	rows, found, err := s.load(ctx, KindTrades, ticker, date, tradeColumns)
	if err != nil || !found {
		return nil, found, err
	}
	out := make([]normalize.RawTrade, len(rows))
	for i, r := range rows {
		out[i] = normalize.RawTrade{Time: r[0], Price: r[1], Volume: r[2]}
	}
	return out, true, nil
}

// Dates lists the dates of a year for which ticker has a file of kind,
// sorted ascending.
func (s *Source) Dates(kind Kind, ticker string, year int) ([]string, error) {
	dir := filepath.Join(s.root, kind.venue(), fmt.Sprintf("%04d", year))
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}

	prefix := ticker + "_"
	suffix := "_" + string(kind) + ".csv"
	var dates []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ".gz")
		if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, suffix) {
			continue
		}
		date := strings.TrimSuffix(strings.TrimPrefix(name, prefix), suffix)
		if len(date) == len("2006-01-02") {
			dates = append(dates, date)
		}
	}
	sort.Strings(dates)
	return dedupe(dates), nil
}

func dedupe(sorted []string) []string {
	out := sorted[:0]
	for i, s := range sorted {
		if i == 0 || s != sorted[i-1] {
			out = append(out, s)
		}
	}
	return out
}
