package domain

import (
	"time"
)

// Sign is the inferred direction of a trade.
type Sign int8

const (
	// SignUndefined marks a bucket without trades or a trade whose
	// direction could not be inferred.
	SignUndefined Sign = 0
	// SignBuy is a buyer-initiated trade (it lifted the ask).
	SignBuy Sign = 1
	// SignSell is a seller-initiated trade (it hit the bid).
	SignSell Sign = -1
)

// String returns the string representation of the sign
func (s Sign) String() string {
	switch s {
	case SignBuy:
		return "buy"
	case SignSell:
		return "sell"
	default:
		return "undefined"
	}
}

// SignOf returns the sign of an integer difference.
func SignOf(diff int64) Sign {
	switch {
	case diff > 0:
		return SignBuy
	case diff < 0:
		return SignSell
	default:
		return SignUndefined
	}
}

// TradePrint is one executed transaction as delivered by a trade feed,
// before classification.
type TradePrint struct {
	Time   time.Duration `json:"time"`
	Price  Ticks         `json:"price" validate:"gt=0"`
	Volume int64         `json:"volume" validate:"gt=0"`
}

// Trade is a classified trade. It is immutable once produced by a classifier.
type Trade struct {
	Time  time.Duration `json:"time"`
	Price Ticks         `json:"price"`
	Sign  Sign          `json:"sign"`
}
