package domain

import (
	"fmt"
	"path"
	"strconv"
	"strings"
)

// ArtifactKind names the kind of persisted per-unit output.
type ArtifactKind string

const (
	ArtifactSnapshots  ArtifactKind = "snapshots"
	ArtifactTrades     ArtifactKind = "trades"
	ArtifactMidpoint   ArtifactKind = "midpoint"
	ArtifactTradeSigns ArtifactKind = "trade_signs"
	ArtifactResponse   ArtifactKind = "response"
	ArtifactStatistics ArtifactKind = "statistics"
)

// Scale is the clock a series is sampled on.
type Scale string

const (
	// ScalePhysical samples on a fixed wall-clock grid.
	ScalePhysical Scale = "physical"
	// ScaleEvent pairs every trade with the physical grid bucket it falls in.
	ScaleEvent Scale = "event"
	// ScaleTrade advances one step per trade.
	ScaleTrade Scale = "trade"
)

// ReturnKind selects how midpoint returns are computed.
type ReturnKind string

const (
	ReturnSimple ReturnKind = "simple"
	ReturnLog    ReturnKind = "log"
)

// Statistic selects the observable paired with the driving trade signs.
type Statistic string

const (
	// StatisticResponse uses the midpoint return of the first ticker.
	StatisticResponse Statistic = "response"
	// StatisticSignCorrelator uses the trade sign of the first ticker.
	StatisticSignCorrelator Statistic = "sign_correlator"
)

// ArtifactKey is the logical identity of a persisted artifact. Storage
// layouts derive paths from it but never the other way around.
type ArtifactKey struct {
	Kind        ArtifactKind `json:"kind" validate:"required"`
	Ticker      string       `json:"ticker" validate:"required,ticker"`
	Counterpart string       `json:"counterpart,omitempty" validate:"omitempty,ticker"`
	Year        int          `json:"year" validate:"required,gte=1990,lte=2100"`
	Date        string       `json:"date,omitempty" validate:"omitempty,isodate"`
	Scale       Scale        `json:"scale,omitempty"`
	Statistic   Statistic    `json:"statistic,omitempty"`
	ReturnKind  ReturnKind   `json:"return_kind,omitempty"`
	LagGrid     string       `json:"lag_grid,omitempty"`
	Shift       int          `json:"shift,omitempty"`
}

// IsCross reports whether the key refers to a ticker pair.
func (k ArtifactKey) IsCross() bool {
	return k.Counterpart != "" && k.Counterpart != k.Ticker
}

// Path returns the deterministic, collision-free relative path of the
// artifact, without extension. Every non-empty field is encoded.
func (k ArtifactKey) Path() string {
	tickers := k.Ticker
	if k.Counterpart != "" {
		tickers = k.Ticker + "__" + k.Counterpart
	}

	var parts []string
	if k.Date != "" {
		parts = append(parts, strings.ReplaceAll(k.Date, "-", ""))
	} else {
		parts = append(parts, "year")
	}
	if k.Scale != "" {
		parts = append(parts, "scale-"+string(k.Scale))
	}
	if k.Statistic != "" {
		parts = append(parts, "stat-"+string(k.Statistic))
	}
	if k.ReturnKind != "" {
		parts = append(parts, "ret-"+string(k.ReturnKind))
	}
	if k.LagGrid != "" {
		parts = append(parts, "lag-"+k.LagGrid)
	}
	if k.Shift != 0 {
		parts = append(parts, "shift-"+strconv.Itoa(k.Shift))
	}

	return path.Join(string(k.Kind), strconv.Itoa(k.Year), tickers, strings.Join(parts, "__"))
}

// String returns a short human-readable description for logs.
func (k ArtifactKey) String() string {
	if k.Counterpart != "" {
		return fmt.Sprintf("%s %s/%s %s", k.Kind, k.Ticker, k.Counterpart, k.period())
	}
	return fmt.Sprintf("%s %s %s", k.Kind, k.Ticker, k.period())
}

func (k ArtifactKey) period() string {
	if k.Date != "" {
		return k.Date
	}
	return strconv.Itoa(k.Year)
}

// ForDay returns a copy of the key narrowed to one trading date.
func (k ArtifactKey) ForDay(date string) ArtifactKey {
	k.Date = date
	return k
}
