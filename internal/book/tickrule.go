package book

import (
	"fmt"
	"strings"

	"lobstat/pkg/contracts/domain"
)

// SeedPolicy decides the sign of leading trades that do not change price.
type SeedPolicy int

const (
	// SeedBackfill gives leading ties the sign of the first price change.
	SeedBackfill SeedPolicy = iota
	// SeedUndefined leaves leading ties unsigned.
	SeedUndefined
	// SeedWraparound compares the first trade with the day's last trade and
	// seeds +1 when they are equal. It reproduces older published figures.
	SeedWraparound
)

var seedPolicyNames = map[SeedPolicy]string{
	SeedBackfill:   "backfill",
	SeedUndefined:  "undefined",
	SeedWraparound: "wraparound",
}

// String returns the string representation of the policy
func (p SeedPolicy) String() string {
	if name, ok := seedPolicyNames[p]; ok {
		return name
	}
	return fmt.Sprintf("SeedPolicy(%d)", int(p))
}

// ParseSeedPolicy parses a policy name.
func ParseSeedPolicy(s string) (SeedPolicy, error) {
	for p, name := range seedPolicyNames {
		if strings.EqualFold(s, name) {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown seed policy %q", s)
}

// ClassifyTicks signs trades with the tick rule: an uptick is a buy, a
// downtick a sell, and an unchanged price repeats the previous sign.
//
// Under SeedBackfill every returned sign is non-zero; a day whose price
// never changes yields ErrUnresolvedSigns. Under SeedUndefined the trades
// before the first price change carry SignUndefined.
func ClassifyTicks(prints []domain.TradePrint, policy SeedPolicy) ([]domain.Trade, error) {
	if len(prints) == 0 {
		return nil, nil
	}

	trades := make([]domain.Trade, len(prints))
	for i, p := range prints {
		trades[i] = domain.Trade{Time: p.Time, Price: p.Price}
	}

	switch policy {
	case SeedBackfill:
		seed := domain.SignUndefined
		for i := 1; i < len(prints) && seed == domain.SignUndefined; i++ {
			seed = domain.SignOf(int64(prints[i].Price - prints[i-1].Price))
		}
		if seed == domain.SignUndefined {
			return nil, fmt.Errorf("%w (%d trades)", ErrUnresolvedSigns, len(prints))
		}
		trades[0].Sign = seed
	case SeedUndefined:
		trades[0].Sign = domain.SignUndefined
	case SeedWraparound:
		trades[0].Sign = domain.SignOf(int64(prints[0].Price - prints[len(prints)-1].Price))
		if trades[0].Sign == domain.SignUndefined {
			trades[0].Sign = domain.SignBuy
		}
	default:
		return nil, fmt.Errorf("classify trades: %s", policy)
	}

	for i := 1; i < len(prints); i++ {
		s := domain.SignOf(int64(prints[i].Price - prints[i-1].Price))
		if s == domain.SignUndefined {
			s = trades[i-1].Sign
		}
		trades[i].Sign = s
	}
	return trades, nil
}
