package finbook

import (
	"fmt"
	"strings"
	"time"
)

// FrequencyUnit is the calendar unit a Frequency advances by.
type FrequencyUnit string

const (
	Days   FrequencyUnit = "days"
	Weeks  FrequencyUnit = "weeks"
	Months FrequencyUnit = "months"
)

// ParseFrequencyUnit parses a string into a FrequencyUnit.
func ParseFrequencyUnit(s string) (FrequencyUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "day", "days":
		return Days, nil
	case "week", "weeks":
		return Weeks, nil
	case "month", "months":
		return Months, nil
	default:
		return "", fmt.Errorf("unknown frequency unit %q", s)
	}
}

// Frequency is reference data consumed by the recurrence projector: advance
// by Interval units of Unit per occurrence. Templates reference a Frequency
// by name.
type Frequency struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Interval int           `json:"interval"`
	Unit     FrequencyUnit `json:"unit"`
}

// Advance returns t moved forward by one frequency step. Months use calendar
// arithmetic, so advancing Jan 31 by one month normalizes per time.AddDate.
func (f Frequency) Advance(t time.Time) time.Time {
	switch f.Unit {
	case Days:
		return t.AddDate(0, 0, f.Interval)
	case Weeks:
		return t.AddDate(0, 0, 7*f.Interval)
	case Months:
		return t.AddDate(0, f.Interval, 0)
	default:
		return t.AddDate(0, 0, f.Interval)
	}
}

// DefaultFrequencies are the reference rows a fresh registry is seeded with.
func DefaultFrequencies() []Frequency {
	return []Frequency{
		{ID: "daily", Name: "daily", Interval: 1, Unit: Days},
		{ID: "weekly", Name: "weekly", Interval: 1, Unit: Weeks},
		{ID: "biweekly", Name: "biweekly", Interval: 2, Unit: Weeks},
		{ID: "monthly", Name: "monthly", Interval: 1, Unit: Months},
	}
}
