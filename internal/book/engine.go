package book

import (
	"fmt"
	"log/slog"
	"time"

	"lobstat/pkg/contracts/domain"
)

// restingOrder is an entry of the order index.
type restingOrder struct {
	side       domain.Side
	price      domain.Ticks
	level      int
	onGrid     bool
	remaining  int64
	insertedAt time.Duration
}

// Engine replays one day of order events.
//
// Level counts track presence, not volume. The lowest bid level and the
// highest ask level carry a permanent resting count of one, so once a side
// has been populated its best price never falls back to the sentinel: an
// emptied side reports the grid extreme instead.
type Engine struct {
	grid   Grid
	logger *slog.Logger

	orders map[uint64]*restingOrder
	bids   []int32
	asks   []int32

	// best level per side, -1 until the side is first populated
	bestBid int
	bestAsk int

	applied   int
	snapshots []domain.BookSnapshot
	trades    []domain.Trade
	last      domain.BookSnapshot
}

// NewEngine creates an empty book on grid.
func NewEngine(grid Grid, logger *slog.Logger) (*Engine, error) {
	if err := grid.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	n := grid.Levels()
	e := &Engine{
		grid:    grid,
		logger:  logger.With(slog.String("component", "book_engine")),
		orders:  make(map[uint64]*restingOrder),
		bids:    make([]int32, n),
		asks:    make([]int32, n),
		bestBid: -1,
		bestAsk: -1,
		last:    domain.BookSnapshot{BestBid: domain.NoBid, BestAsk: domain.NoAsk},
	}
	e.bids[0] = 1
	e.asks[n-1] = 1
	return e, nil
}

// Grid returns the engine's price grid.
func (e *Engine) Grid() Grid {
	return e.grid
}

// Best returns the current best bid and best ask.
func (e *Engine) Best() (bid, ask domain.Ticks) {
	bid, ask = domain.NoBid, domain.NoAsk
	if e.bestBid >= 0 {
		bid = e.grid.Price(e.bestBid)
	}
	if e.bestAsk >= 0 {
		ask = e.grid.Price(e.bestAsk)
	}
	return bid, ask
}

// Snapshots returns the snapshots emitted so far.
func (e *Engine) Snapshots() []domain.BookSnapshot {
	return e.snapshots
}

// Trades returns the side-signed trades emitted so far.
func (e *Engine) Trades() []domain.Trade {
	return e.trades
}

// Resting returns the number of orders in the index.
func (e *Engine) Resting() int {
	return len(e.orders)
}

// Apply processes one event. Any error is fatal for the day: the order index
// no longer reflects the feed.
func (e *Engine) Apply(ev domain.OrderEvent) error {
	idx := e.applied
	e.applied++

	var err error
	switch ev.Kind {
	case domain.EventInsert:
		err = e.insert(ev)
	case domain.EventExecute, domain.EventCancel:
		err = e.reduce(ev)
	case domain.EventFullExecute, domain.EventDelete:
		err = e.remove(ev)
	case domain.EventBulkCross, domain.EventHiddenExecute:
		return nil
	default:
		err = ErrUnknownEvent
	}
	if err != nil {
		return &EventError{Index: idx, OrderID: ev.OrderID, Kind: ev.Kind, Cause: err}
	}

	e.emit(ev.Time)
	return nil
}

func (e *Engine) insert(ev domain.OrderEvent) error {
	if _, ok := e.orders[ev.OrderID]; ok {
		return ErrDuplicateOrder
	}
	if ev.Side != domain.SideBid && ev.Side != domain.SideAsk {
		return fmt.Errorf("insert without side: %w", ErrUnknownEvent)
	}

	o := &restingOrder{
		side:       ev.Side,
		price:      ev.Price,
		remaining:  ev.Volume,
		insertedAt: ev.Time,
	}
	o.level, o.onGrid = e.grid.Index(ev.Price)
	e.orders[ev.OrderID] = o

	if !o.onGrid {
		e.logger.Debug("order outside price grid",
			slog.Uint64("order_id", ev.OrderID),
			slog.String("price", ev.Price.String()))
		return nil
	}

	if o.side == domain.SideBid {
		e.bids[o.level]++
		if o.level > e.bestBid {
			e.bestBid = o.level
		}
	} else {
		e.asks[o.level]++
		if e.bestAsk < 0 || o.level < e.bestAsk {
			e.bestAsk = o.level
		}
	}
	return nil
}

func (e *Engine) reduce(ev domain.OrderEvent) error {
	o, ok := e.orders[ev.OrderID]
	if !ok {
		return ErrUnknownOrder
	}
	o.remaining -= ev.Volume
	if o.remaining < 0 {
		o.remaining = 0
	}
	if ev.Kind == domain.EventExecute {
		e.trade(ev.Time, o)
	}
	return nil
}

func (e *Engine) remove(ev domain.OrderEvent) error {
	o, ok := e.orders[ev.OrderID]
	if !ok {
		return ErrUnknownOrder
	}
	delete(e.orders, ev.OrderID)
	if ev.Kind == domain.EventFullExecute {
		e.trade(ev.Time, o)
	}
	if !o.onGrid {
		return nil
	}

	if o.side == domain.SideBid {
		e.bids[o.level]--
		if e.bids[o.level] == 0 && o.level == e.bestBid {
			e.bestBid = e.scanDown(o.level)
		}
	} else {
		e.asks[o.level]--
		if e.asks[o.level] == 0 && o.level == e.bestAsk {
			e.bestAsk = e.scanUp(o.level)
		}
	}
	return nil
}

// scanDown finds the highest occupied bid level below from. The floor level
// is always occupied.
func (e *Engine) scanDown(from int) int {
	for i := from - 1; i > 0; i-- {
		if e.bids[i] > 0 {
			return i
		}
	}
	return 0
}

// scanUp finds the lowest occupied ask level above from. The ceiling level
// is always occupied.
func (e *Engine) scanUp(from int) int {
	last := len(e.asks) - 1
	for i := from + 1; i < last; i++ {
		if e.asks[i] > 0 {
			return i
		}
	}
	return last
}

// trade records an execution against o. Executing a resting ask means a
// buyer crossed the spread.
func (e *Engine) trade(at time.Duration, o *restingOrder) {
	sign := domain.SignSell
	if o.side == domain.SideAsk {
		sign = domain.SignBuy
	}
	e.trades = append(e.trades, domain.Trade{Time: at, Price: o.price, Sign: sign})
}

func (e *Engine) emit(at time.Duration) {
	bid, ask := e.Best()
	if bid == e.last.BestBid && ask == e.last.BestAsk {
		return
	}
	e.last = domain.BookSnapshot{Time: at, BestBid: bid, BestAsk: ask}
	e.snapshots = append(e.snapshots, e.last)
}
