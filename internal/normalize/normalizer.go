package normalize

import (
	"log/slog"
	"sort"
	"strings"
	"time"

	"lobstat/pkg/contracts/domain"
)

// RawOrder is one decoded ITCH order-book record.
type RawOrder struct {
	Time    string
	OrderID string
	Type    string
	Volume  string
	Price   string
}

// RawQuote is one decoded TAQ quote record.
type RawQuote struct {
	Time string
	Bid  string
	Ask  string
}

// RawTrade is one decoded TAQ trade record.
type RawTrade struct {
	Time   string
	Price  string
	Volume string
}

var orderTypes = map[string]struct {
	kind domain.EventKind
	side domain.Side
}{
	"B": {domain.EventInsert, domain.SideBid},
	"S": {domain.EventInsert, domain.SideAsk},
	"E": {domain.EventExecute, domain.SideUnknown},
	"C": {domain.EventCancel, domain.SideUnknown},
	"F": {domain.EventFullExecute, domain.SideUnknown},
	"D": {domain.EventDelete, domain.SideUnknown},
	"X": {domain.EventBulkCross, domain.SideUnknown},
	"T": {domain.EventHiddenExecute, domain.SideUnknown},
}

// NormalizeOrder converts a raw ITCH record. unit is the resolution of the
// time field (milliseconds for the decoded ITCH files).
func NormalizeOrder(raw RawOrder, unit time.Duration) (domain.OrderEvent, error) {
	typ, ok := orderTypes[strings.ToUpper(strings.TrimSpace(raw.Type))]
	if !ok {
		return domain.OrderEvent{}, reject(ReasonUnknownType, "type", raw.Type)
	}

	ts, err := parseTime(raw.Time, unit)
	if err != nil {
		return domain.OrderEvent{}, err
	}
	id, err := parseUint("order_id", raw.OrderID)
	if err != nil {
		return domain.OrderEvent{}, err
	}
	volume, err := parseInt("volume", raw.Volume)
	if err != nil {
		return domain.OrderEvent{}, err
	}

	ev := domain.OrderEvent{
		Time:    ts,
		OrderID: id,
		Kind:    typ.kind,
		Side:    typ.side,
		Volume:  volume,
	}

	// Only inserts need a price; the book resolves every other event through
	// the order index. Prices on other kinds are kept when they parse.
	if strings.TrimSpace(raw.Price) != "" {
		price, err := parsePrice("price", raw.Price)
		if err != nil {
			return domain.OrderEvent{}, err
		}
		ev.Price = price
	}

	switch ev.Kind {
	case domain.EventInsert:
		if ev.Price <= 0 {
			return domain.OrderEvent{}, reject(ReasonZeroPrice, "price", raw.Price)
		}
		if ev.Volume <= 0 {
			return domain.OrderEvent{}, reject(ReasonZeroVolume, "volume", raw.Volume)
		}
	case domain.EventExecute, domain.EventCancel:
		if ev.Volume <= 0 {
			return domain.OrderEvent{}, reject(ReasonZeroVolume, "volume", raw.Volume)
		}
	}

	return ev, nil
}

// NormalizeQuote converts a raw TAQ quote. A zero or negative side is a
// corrupted record; an ask below the bid is a crossed one.
func NormalizeQuote(raw RawQuote, unit time.Duration) (domain.Quote, error) {
	ts, err := parseTime(raw.Time, unit)
	if err != nil {
		return domain.Quote{}, err
	}
	bid, err := parsePrice("bid", raw.Bid)
	if err != nil {
		return domain.Quote{}, err
	}
	ask, err := parsePrice("ask", raw.Ask)
	if err != nil {
		return domain.Quote{}, err
	}

	switch {
	case ask <= 0:
		return domain.Quote{}, reject(ReasonCorruptQuote, "ask", raw.Ask)
	case bid <= 0:
		return domain.Quote{}, reject(ReasonCorruptQuote, "bid", raw.Bid)
	case ask < bid:
		return domain.Quote{}, reject(ReasonCrossedQuote, "ask", raw.Ask)
	}

	return domain.Quote{Time: ts, Bid: bid, Ask: ask}, nil
}

// NormalizeTrade converts a raw TAQ trade. An empty volume field is treated
// as a single share, since several decoded files only carry prices.
func NormalizeTrade(raw RawTrade, unit time.Duration) (domain.TradePrint, error) {
	ts, err := parseTime(raw.Time, unit)
	if err != nil {
		return domain.TradePrint{}, err
	}
	price, err := parsePrice("price", raw.Price)
	if err != nil {
		return domain.TradePrint{}, err
	}
	if price <= 0 {
		return domain.TradePrint{}, reject(ReasonZeroPrice, "price", raw.Price)
	}

	volume := int64(1)
	if strings.TrimSpace(raw.Volume) != "" {
		volume, err = parseInt("volume", raw.Volume)
		if err != nil {
			return domain.TradePrint{}, err
		}
	}
	if volume <= 0 {
		return domain.TradePrint{}, reject(ReasonZeroVolume, "volume", raw.Volume)
	}

	return domain.TradePrint{Time: ts, Price: price, Volume: volume}, nil
}

// Stats summarizes one normalized stream.
type Stats struct {
	Accepted    int            `json:"accepted"`
	Rejected    int            `json:"rejected"`
	ByReason    map[Reason]int `json:"by_reason,omitempty"`
	Resequenced bool           `json:"resequenced"`
}

func (s *Stats) record(err error) {
	s.Rejected++
	if s.ByReason == nil {
		s.ByReason = make(map[Reason]int)
	}
	reason, ok := ReasonOf(err)
	if !ok {
		reason = ReasonBadNumber
	}
	s.ByReason[reason]++
}

// Normalizer applies the record rules to whole day streams.
type Normalizer struct {
	logger    *slog.Logger
	orderUnit time.Duration
	taqUnit   time.Duration
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithOrderTimeUnit sets the resolution of ITCH time fields.
func WithOrderTimeUnit(unit time.Duration) Option {
	return func(n *Normalizer) { n.orderUnit = unit }
}

// WithTAQTimeUnit sets the resolution of TAQ time fields.
func WithTAQTimeUnit(unit time.Duration) Option {
	return func(n *Normalizer) { n.taqUnit = unit }
}

// New creates a Normalizer. ITCH times default to milliseconds, TAQ times
// to seconds.
func New(logger *slog.Logger, opts ...Option) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	n := &Normalizer{
		logger:    logger.With(slog.String("component", "normalizer")),
		orderUnit: time.Millisecond,
		taqUnit:   time.Second,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Orders normalizes an ITCH stream. Once an insert is rejected, later
// events on its order id are rejected as orphaned instead of reaching the
// book as references to an unknown order. A later valid insert reusing the
// id clears it.
func (n *Normalizer) Orders(raws []RawOrder) ([]domain.OrderEvent, Stats) {
	dropped := make(map[uint64]bool)
	return run(n, "orders", raws, func(r RawOrder) (domain.OrderEvent, error) {
		ev, err := NormalizeOrder(r, n.orderUnit)
		if err != nil {
			if typ, ok := orderTypes[strings.ToUpper(strings.TrimSpace(r.Type))]; ok && typ.kind == domain.EventInsert {
				if id, perr := parseUint("order_id", r.OrderID); perr == nil {
					dropped[id] = true
				}
			}
			return ev, err
		}
		switch {
		case ev.Kind == domain.EventInsert:
			delete(dropped, ev.OrderID)
		case ev.Kind.TouchesBook() && dropped[ev.OrderID]:
			return domain.OrderEvent{}, reject(ReasonOrphaned, "order_id", r.OrderID)
		}
		return ev, nil
	}, func(e domain.OrderEvent) time.Duration { return e.Time })
}

// Quotes normalizes a TAQ quote stream.
func (n *Normalizer) Quotes(raws []RawQuote) ([]domain.Quote, Stats) {
	return run(n, "quotes", raws, func(r RawQuote) (domain.Quote, error) {
		return NormalizeQuote(r, n.taqUnit)
	}, func(q domain.Quote) time.Duration { return q.Time })
}

// Trades normalizes a TAQ trade stream.
func (n *Normalizer) Trades(raws []RawTrade) ([]domain.TradePrint, Stats) {
	return run(n, "trades", raws, func(r RawTrade) (domain.TradePrint, error) {
		return NormalizeTrade(r, n.taqUnit)
	}, func(p domain.TradePrint) time.Duration { return p.Time })
}

func run[R, E any](n *Normalizer, stream string, raws []R, conv func(R) (E, error), timeOf func(E) time.Duration) ([]E, Stats) {
	var stats Stats
	out := make([]E, 0, len(raws))

	for i, raw := range raws {
		ev, err := conv(raw)
		if err != nil {
			stats.record(err)
			n.logger.Debug("record rejected",
				slog.String("stream", stream),
				slog.Int("line", i),
				slog.String("error", err.Error()))
			continue
		}
		out = append(out, ev)
	}
	stats.Accepted = len(out)

	if !sort.SliceIsSorted(out, func(i, j int) bool { return timeOf(out[i]) < timeOf(out[j]) }) {
		sort.SliceStable(out, func(i, j int) bool { return timeOf(out[i]) < timeOf(out[j]) })
		stats.Resequenced = true
		n.logger.Warn("stream out of time order, resequenced",
			slog.String("stream", stream),
			slog.Int("events", len(out)))
	}

	if stats.Rejected > 0 {
		n.logger.Info("records rejected",
			slog.String("stream", stream),
			slog.Int("accepted", stats.Accepted),
			slog.Int("rejected", stats.Rejected))
	}
	return out, stats
}
