package feed

import (
	"fmt"
	"time"
)

// BusinessDays returns the weekdays of year as YYYY-MM-DD, skipping the
// given holidays.
func BusinessDays(year int, holidays []string) ([]string, error) {
	skip := make(map[string]bool, len(holidays))
	for _, h := range holidays {
		if _, err := time.Parse(time.DateOnly, h); err != nil {
			return nil, fmt.Errorf("parse holiday %q: %w", h, err)
		}
		skip[h] = true
	}

	var days []string
	for d := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC); d.Year() == year; d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		s := d.Format(time.DateOnly)
		if !skip[s] {
			days = append(days, s)
		}
	}
	return days, nil
}
