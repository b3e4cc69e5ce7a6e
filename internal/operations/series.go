package operations

import (
	"fmt"
	"math"
	"time"

	"lobstat/internal/artifacts"
	"lobstat/pkg/contracts/domain"
)

// Column names of the series artifacts.
const (
	colTime     = "time"
	colBucket   = "bucket"
	colBestBid  = "best_bid"
	colBestAsk  = "best_ask"
	colPrice    = "price"
	colSign     = "sign"
	colMidpoint = "midpoint"
)

func seconds(d time.Duration) float64 {
	return d.Seconds()
}

func fromSeconds(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}

// snapshotsTable stores ticks; empty sides are written as NaN.
func snapshotsTable(snaps []domain.BookSnapshot) artifacts.Table {
	t := artifacts.NewTable(colTime, colBestBid, colBestAsk)
	for _, s := range snaps {
		bid, ask := float64(s.BestBid), float64(s.BestAsk)
		if s.BestBid == domain.NoBid {
			bid = math.NaN()
		}
		if s.BestAsk == domain.NoAsk {
			ask = math.NaN()
		}
		t.Append(seconds(s.Time), bid, ask)
	}
	return t
}

// tradesTable stores classified trades with the midpoint prevailing at each.
func tradesTable(trades []domain.Trade, mids []float64) artifacts.Table {
	t := artifacts.NewTable(colTime, colPrice, colSign, colMidpoint)
	for i, tr := range trades {
		t.Append(seconds(tr.Time), float64(tr.Price), float64(tr.Sign), mids[i])
	}
	return t
}

func midpointTable(mid []float64) artifacts.Table {
	t := artifacts.NewTable(colBucket, colMidpoint)
	for i, m := range mid {
		t.Append(float64(i), m)
	}
	return t
}

func signTable(signs []domain.Sign) artifacts.Table {
	t := artifacts.NewTable(colBucket, colSign)
	for i, s := range signs {
		t.Append(float64(i), float64(s))
	}
	return t
}

func column(a *artifacts.Artifact, name string) ([]float64, error) {
	values, ok := a.Table.Column(name)
	if !ok {
		return nil, fmt.Errorf("%s: %w: no column %q", a.Meta.Key, artifacts.ErrCorrupt, name)
	}
	return values, nil
}

func toSigns(values []float64) []domain.Sign {
	out := make([]domain.Sign, len(values))
	for i, v := range values {
		out[i] = domain.Sign(v)
	}
	return out
}

// tradeSeries is the trade-clock view of a trades artifact.
type tradeSeries struct {
	Times []time.Duration
	Signs []domain.Sign
	Mid   []float64
}

func readTrades(a *artifacts.Artifact) (tradeSeries, error) {
	times, err := column(a, colTime)
	if err != nil {
		return tradeSeries{}, err
	}
	signs, err := column(a, colSign)
	if err != nil {
		return tradeSeries{}, err
	}
	mid, err := column(a, colMidpoint)
	if err != nil {
		return tradeSeries{}, err
	}
	ts := tradeSeries{Times: make([]time.Duration, len(times)), Signs: toSigns(signs), Mid: mid}
	for i, s := range times {
		ts.Times[i] = fromSeconds(s)
	}
	return ts, nil
}
