package book

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lobstat/pkg/contracts/domain"
)

var testGrid = Grid{Min: 90, Max: 120, Step: 1}

func insert(at int, id uint64, side domain.Side, price domain.Ticks) domain.OrderEvent {
	return domain.OrderEvent{Time: time.Duration(at) * time.Millisecond, OrderID: id, Kind: domain.EventInsert, Side: side, Volume: 100, Price: price}
}

func event(at int, id uint64, kind domain.EventKind, volume int64) domain.OrderEvent {
	return domain.OrderEvent{Time: time.Duration(at) * time.Millisecond, OrderID: id, Kind: kind, Volume: volume}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(testGrid, nil)
	require.NoError(t, err)
	return e
}

func applyAll(t *testing.T, e *Engine, events ...domain.OrderEvent) {
	t.Helper()
	for _, ev := range events {
		require.NoError(t, e.Apply(ev))
	}
}

func TestEngineInsertImprovesBest(t *testing.T) {
	e := newTestEngine(t)

	applyAll(t, e,
		insert(1, 1, domain.SideBid, 100),
		insert(2, 2, domain.SideAsk, 105),
	)
	snaps := e.Snapshots()
	require.Len(t, snaps, 2)
	last := snaps[1]
	assert.True(t, last.Valid())
	assert.InDelta(t, 102.5, last.Midpoint(), 1e-9)
	assert.Equal(t, domain.Ticks(5), last.Spread())

	applyAll(t, e, insert(3, 3, domain.SideAsk, 103))
	snaps = e.Snapshots()
	require.Len(t, snaps, 3)
	assert.Equal(t, domain.Ticks(103), snaps[2].BestAsk)
	assert.InDelta(t, 101.5, snaps[2].Midpoint(), 1e-9)
}

func TestEngineDeleteBestRescans(t *testing.T) {
	e := newTestEngine(t)
	applyAll(t, e,
		insert(1, 1, domain.SideBid, 100),
		insert(2, 2, domain.SideAsk, 105),
		insert(3, 3, domain.SideAsk, 103),
		event(4, 3, domain.EventDelete, 0),
	)

	bid, ask := e.Best()
	assert.Equal(t, domain.Ticks(100), bid)
	assert.Equal(t, domain.Ticks(105), ask)
	snaps := e.Snapshots()
	assert.Equal(t, domain.BookSnapshot{Time: 4 * time.Millisecond, BestBid: 100, BestAsk: 105}, snaps[len(snaps)-1])
}

func TestEngineLevelSurvivesWhileOccupied(t *testing.T) {
	e := newTestEngine(t)
	applyAll(t, e,
		insert(1, 1, domain.SideBid, 100),
		insert(2, 2, domain.SideBid, 100),
		insert(3, 3, domain.SideAsk, 105),
	)
	before := len(e.Snapshots())

	applyAll(t, e, event(4, 1, domain.EventDelete, 0))
	bid, _ := e.Best()
	assert.Equal(t, domain.Ticks(100), bid)
	assert.Len(t, e.Snapshots(), before, "unchanged best must not emit a snapshot")
}

func TestEngineEmptySideKeepsGridExtreme(t *testing.T) {
	e := newTestEngine(t)
	applyAll(t, e,
		insert(1, 1, domain.SideBid, 100),
		insert(2, 2, domain.SideAsk, 105),
		event(3, 1, domain.EventFullExecute, 100),
		event(4, 2, domain.EventDelete, 0),
	)

	bid, ask := e.Best()
	assert.Equal(t, testGrid.Min, bid)
	assert.Equal(t, testGrid.Max, ask)
	assert.NotEqual(t, domain.NoBid, bid)
	assert.NotEqual(t, domain.NoAsk, ask)
}

func TestEngineSentinelsBeforeFirstInsert(t *testing.T) {
	e := newTestEngine(t)
	applyAll(t, e, insert(1, 1, domain.SideBid, 100))

	bid, ask := e.Best()
	assert.Equal(t, domain.Ticks(100), bid)
	assert.Equal(t, domain.NoAsk, ask)
	require.Len(t, e.Snapshots(), 1)
	assert.False(t, e.Snapshots()[0].Valid())
}

func TestEnginePartialExecutionKeepsPresence(t *testing.T) {
	e := newTestEngine(t)
	applyAll(t, e,
		insert(1, 1, domain.SideBid, 100),
		insert(2, 2, domain.SideAsk, 105),
	)
	before := len(e.Snapshots())

	// Executing more than the order's volume still leaves the level occupied.
	applyAll(t, e,
		event(3, 2, domain.EventExecute, 60),
		event(4, 2, domain.EventExecute, 60),
		event(5, 1, domain.EventCancel, 100),
	)
	bid, ask := e.Best()
	assert.Equal(t, domain.Ticks(100), bid)
	assert.Equal(t, domain.Ticks(105), ask)
	assert.Len(t, e.Snapshots(), before)
	assert.Equal(t, 2, e.Resting())
}

func TestEngineSideSignedTrades(t *testing.T) {
	e := newTestEngine(t)
	applyAll(t, e,
		insert(1, 1, domain.SideBid, 100),
		insert(2, 2, domain.SideAsk, 105),
		event(3, 2, domain.EventExecute, 10),
		event(4, 1, domain.EventFullExecute, 100),
		event(5, 0, domain.EventHiddenExecute, 50),
		event(6, 0, domain.EventBulkCross, 50),
		event(7, 2, domain.EventCancel, 10),
	)

	assert.Equal(t, []domain.Trade{
		{Time: 3 * time.Millisecond, Price: 105, Sign: domain.SignBuy},
		{Time: 4 * time.Millisecond, Price: 100, Sign: domain.SignSell},
	}, e.Trades())
}

func TestEngineFullExecuteUsesIndexedPrice(t *testing.T) {
	e := newTestEngine(t)
	applyAll(t, e,
		insert(1, 1, domain.SideBid, 100),
		insert(2, 2, domain.SideAsk, 105),
		insert(3, 3, domain.SideAsk, 103),
	)

	// The feed reports a different price; the order index is authoritative.
	ev := event(4, 3, domain.EventFullExecute, 100)
	ev.Price = 110
	applyAll(t, e, ev)

	_, ask := e.Best()
	assert.Equal(t, domain.Ticks(105), ask)
	trades := e.Trades()
	require.Len(t, trades, 1)
	assert.Equal(t, domain.Ticks(103), trades[0].Price)
}

func TestEngineOutOfGridOrders(t *testing.T) {
	e := newTestEngine(t)
	applyAll(t, e,
		insert(1, 1, domain.SideBid, 100),
		insert(2, 2, domain.SideAsk, 500),
	)
	_, ask := e.Best()
	assert.Equal(t, domain.NoAsk, ask)

	applyAll(t, e, event(3, 2, domain.EventDelete, 0))
	assert.Equal(t, 1, e.Resting())
}

func TestEngineFatalErrors(t *testing.T) {
	tests := []struct {
		name   string
		events []domain.OrderEvent
		want   error
		index  int
	}{
		{
			name:   "unknown order on delete",
			events: []domain.OrderEvent{insert(1, 1, domain.SideBid, 100), event(2, 9, domain.EventDelete, 0)},
			want:   ErrUnknownOrder,
			index:  1,
		},
		{
			name:   "unknown order on execute",
			events: []domain.OrderEvent{event(1, 9, domain.EventExecute, 5)},
			want:   ErrUnknownOrder,
		},
		{
			name:   "unknown order on cancel",
			events: []domain.OrderEvent{event(1, 9, domain.EventCancel, 5)},
			want:   ErrUnknownOrder,
		},
		{
			name:   "duplicate insert",
			events: []domain.OrderEvent{insert(1, 1, domain.SideBid, 100), insert(2, 1, domain.SideAsk, 105)},
			want:   ErrDuplicateOrder,
			index:  1,
		},
		{
			name:   "unknown kind",
			events: []domain.OrderEvent{{OrderID: 1}},
			want:   ErrUnknownEvent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t)
			var err error
			for _, ev := range tt.events {
				if err = e.Apply(ev); err != nil {
					break
				}
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var evErr *EventError
			require.True(t, errors.As(err, &evErr))
			assert.Equal(t, tt.index, evErr.Index)
		})
	}
}

func TestNewEngineRejectsInvalidGrid(t *testing.T) {
	_, err := NewEngine(Grid{Min: 10, Max: 5, Step: 1}, nil)
	assert.ErrorIs(t, err, ErrInvalidGrid)
}

// randomDay produces a well-formed, uncrossed event stream.
func randomDay(seed int64, n int) []domain.OrderEvent {
	rng := rand.New(rand.NewSource(seed))
	var events []domain.OrderEvent
	var live []uint64
	nextID := uint64(1)

	for i := 0; i < n; i++ {
		at := i
		if len(live) == 0 || rng.Intn(3) > 0 {
			side := domain.SideBid
			price := domain.Ticks(91 + rng.Intn(10))
			if rng.Intn(2) == 0 {
				side = domain.SideAsk
				price = domain.Ticks(101 + rng.Intn(18))
			}
			events = append(events, insert(at, nextID, side, price))
			live = append(live, nextID)
			nextID++
			continue
		}

		k := rng.Intn(len(live))
		id := live[k]
		switch rng.Intn(4) {
		case 0:
			events = append(events, event(at, id, domain.EventExecute, 10))
		case 1:
			events = append(events, event(at, id, domain.EventCancel, 10))
		case 2:
			events = append(events, event(at, id, domain.EventFullExecute, 100))
			live = append(live[:k], live[k+1:]...)
		default:
			events = append(events, event(at, id, domain.EventDelete, 0))
			live = append(live[:k], live[k+1:]...)
		}
	}
	return events
}

func TestEngineInvariantAskAboveBid(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		e := newTestEngine(t)
		for _, ev := range randomDay(seed, 500) {
			require.NoError(t, e.Apply(ev))
			bid, ask := e.Best()
			if bid != domain.NoBid && ask != domain.NoAsk {
				require.GreaterOrEqual(t, ask, bid, "seed %d", seed)
			}
		}

		snaps := e.Snapshots()
		for i := 1; i < len(snaps); i++ {
			changed := snaps[i].BestBid != snaps[i-1].BestBid || snaps[i].BestAsk != snaps[i-1].BestAsk
			require.True(t, changed, "seed %d: snapshot %d repeats its predecessor", seed, i)
		}
	}
}

func TestReconstructIsDeterministic(t *testing.T) {
	events := randomDay(42, 1000)

	first, err := Reconstruct(events, Options{Grid: testGrid})
	require.NoError(t, err)
	second, err := Reconstruct(events, Options{Grid: testGrid})
	require.NoError(t, err)

	assert.Equal(t, first.Snapshots, second.Snapshots)
	assert.Equal(t, first.Trades, second.Trades)
	assert.NotEmpty(t, first.Snapshots)
}

func TestReconstructDerivesGrid(t *testing.T) {
	events := []domain.OrderEvent{
		insert(1, 1, domain.SideBid, 1000000),
		insert(2, 2, domain.SideAsk, 1001000),
		insert(3, 3, domain.SideAsk, 1002000),
		event(4, 2, domain.EventFullExecute, 100),
		event(5, 3, domain.EventFullExecute, 100),
	}

	res, err := Reconstruct(events, Options{})
	require.NoError(t, err)
	assert.Equal(t, Grid{Min: 900900, Max: 1102200, Step: DefaultStep}, res.Grid)
	assert.Equal(t, 5, res.Events)
	assert.Equal(t, 1, res.Resting)
	require.Len(t, res.Trades, 2)

	last := res.Snapshots[len(res.Snapshots)-1]
	assert.Equal(t, domain.Ticks(1000000), last.BestBid)
	assert.Equal(t, res.Grid.Max, last.BestAsk)
}

func TestReconstructPropagatesEventError(t *testing.T) {
	_, err := Reconstruct([]domain.OrderEvent{
		insert(1, 1, domain.SideBid, 100),
		event(2, 7, domain.EventCancel, 1),
	}, Options{Grid: testGrid})
	assert.ErrorIs(t, err, ErrUnknownOrder)
}

func TestSnapshotsFromQuotes(t *testing.T) {
	snaps := SnapshotsFromQuotes([]domain.Quote{
		{Time: 1, Bid: 100, Ask: 101},
		{Time: 2, Bid: 100, Ask: 101},
		{Time: 3, Bid: 100, Ask: 102},
		{Time: 4, Bid: 100, Ask: 102},
	})
	assert.Equal(t, []domain.BookSnapshot{
		{Time: 1, BestBid: 100, BestAsk: 101},
		{Time: 3, BestBid: 100, BestAsk: 102},
	}, snaps)
}
