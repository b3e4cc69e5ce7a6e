package normalize

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"lobstat/pkg/contracts/domain"
)

var ticksPerDollar = decimal.NewFromInt(domain.TicksPerDollar)

// parsePrice accepts integer ticks or decimal dollars.
func parsePrice(field, raw string) (domain.Ticks, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, reject(ReasonMissingFields, field, raw)
	}

	if !strings.ContainsAny(s, ".eE") {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, &RejectError{Reason: ReasonBadNumber, Field: field, Value: raw, Cause: err}
		}
		return domain.Ticks(v), nil
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, &RejectError{Reason: ReasonBadNumber, Field: field, Value: raw, Cause: err}
	}
	return domain.Ticks(d.Mul(ticksPerDollar).Round(0).IntPart()), nil
}

func parseInt(field, raw string) (int64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, reject(ReasonMissingFields, field, raw)
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, &RejectError{Reason: ReasonBadNumber, Field: field, Value: raw, Cause: err}
	}
	return v, nil
}

func parseUint(field, raw string) (uint64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, reject(ReasonMissingFields, field, raw)
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, &RejectError{Reason: ReasonBadNumber, Field: field, Value: raw, Cause: err}
	}
	return v, nil
}

// parseTime reads a time-of-day offset in the given unit. Fractional values
// are allowed ("34200.5" seconds).
func parseTime(raw string, unit time.Duration) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, reject(ReasonMissingFields, "time", raw)
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		if v < 0 {
			return 0, reject(ReasonBadNumber, "time", raw)
		}
		return time.Duration(v) * unit, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return 0, &RejectError{Reason: ReasonBadNumber, Field: "time", Value: raw, Cause: err}
	}
	return time.Duration(d.Mul(decimal.NewFromInt(int64(unit))).IntPart()), nil
}
