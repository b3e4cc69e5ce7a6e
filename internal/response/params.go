package response

import (
	"errors"
	"fmt"
	"math"

	"lobstat/internal/validation"
	"lobstat/pkg/contracts/domain"
)

var (
	// ErrLengthMismatch is returned when observed and driving series are not
	// aligned.
	ErrLengthMismatch = errors.New("series length mismatch")
	// ErrMissingObservable is returned when the series needed by the
	// statistic was not supplied.
	ErrMissingObservable = errors.New("observable series missing")
)

// Params selects the statistic computed for one sweep entry.
type Params struct {
	TauMax    int               `json:"tau_max" validate:"gt=0,lte=100000"`
	Return    domain.ReturnKind `json:"return" validate:"required,oneof=simple log"`
	Statistic domain.Statistic  `json:"statistic" validate:"required,oneof=response sign_correlator"`
	// Shift pairs signs at t+Shift with midpoints at t.
	Shift int `json:"shift"`
}

// Validate checks the parameters.
func (p Params) Validate() error {
	return validation.Struct(p)
}

// DefaultParams is the simple-return response over 1000 lags.
func DefaultParams() Params {
	return Params{TauMax: 1000, Return: domain.ReturnSimple, Statistic: domain.StatisticResponse}
}

// LagGrid returns the identifier of the lag grid used in artifact keys.
func (p Params) LagGrid() string {
	return fmt.Sprintf("tau%d", p.TauMax)
}

func returnFunc(kind domain.ReturnKind) func(from, to float64) float64 {
	if kind == domain.ReturnLog {
		return func(from, to float64) float64 { return math.Log(to / from) }
	}
	return func(from, to float64) float64 { return (to - from) / from }
}
