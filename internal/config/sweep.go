package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"lobstat/internal/validation"
)

// Pair selection modes of a sweep job.
const (
	PairsSelf  = "self"
	PairsCross = "cross"
	PairsAll   = "all"
)

// Sweep describes a batch of response computations over one year.
type Sweep struct {
	Year    int        `toml:"year" validate:"gte=1990,lte=2100"`
	Tickers []string   `toml:"tickers" validate:"required,min=1,dive,ticker"`
	Source  string     `toml:"source" validate:"omitempty,oneof=itch taq"`
	Jobs    []SweepJob `toml:"jobs" validate:"required,min=1,dive"`
}

// SweepJob is one statistic computed for a set of ticker pairs.
type SweepJob struct {
	Statistic string `toml:"statistic" validate:"required,oneof=response sign_correlator"`
	Pairs     string `toml:"pairs" validate:"required,oneof=self cross all"`
	Scale     string `toml:"scale" validate:"required,oneof=physical event trade"`
	TauMax    int    `toml:"tau_max" validate:"gt=0,lte=100000"`
	Return    string `toml:"return" validate:"omitempty,oneof=simple log"`
	Shifts    []int  `toml:"shifts"`
}

// ResponseJob is a single expanded (pair, shift) entry of a sweep.
type ResponseJob struct {
	TickerI   string
	TickerJ   string
	Year      int
	Statistic string
	Scale     string
	TauMax    int
	Return    string
	Shift     int
}

// LoadSweep reads and validates a TOML sweep file.
func LoadSweep(path string) (*Sweep, error) {
	var s Sweep
	meta, err := toml.DecodeFile(path, &s)
	if err != nil {
		return nil, fmt.Errorf("failed to decode sweep %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("sweep %s: unknown keys %v", path, undecoded)
	}
	if err := validation.Struct(s); err != nil {
		return nil, fmt.Errorf("sweep %s: %w", path, err)
	}
	for i, job := range s.Jobs {
		// each ticker trades on its own clock
		if job.Scale == "trade" && job.Pairs != PairsSelf {
			return nil, fmt.Errorf("sweep %s: job %d: trade scale supports self pairs only", path, i+1)
		}
	}
	return &s, nil
}

// Expand returns one ResponseJob per job, ticker pair and shift, in file
// order. A job without shifts runs unshifted.
func (s *Sweep) Expand() []ResponseJob {
	var out []ResponseJob
	for _, job := range s.Jobs {
		ret := job.Return
		if ret == "" {
			ret = "simple"
		}
		shifts := job.Shifts
		if len(shifts) == 0 {
			shifts = []int{0}
		}
		for _, pair := range s.pairs(job.Pairs) {
			for _, shift := range shifts {
				out = append(out, ResponseJob{
					TickerI:   pair[0],
					TickerJ:   pair[1],
					Year:      s.Year,
					Statistic: job.Statistic,
					Scale:     job.Scale,
					TauMax:    job.TauMax,
					Return:    ret,
					Shift:     shift,
				})
			}
		}
	}
	return out
}

func (s *Sweep) pairs(mode string) [][2]string {
	var out [][2]string
	for _, i := range s.Tickers {
		for _, j := range s.Tickers {
			switch {
			case i == j && mode != PairsCross:
				out = append(out, [2]string{i, j})
			case i != j && mode != PairsSelf:
				out = append(out, [2]string{i, j})
			}
		}
	}
	return out
}
