package temporal

import (
	"fmt"
	"time"
)

// Granularity is the aggregation resolution of an analytics bucket.
type Granularity string

const (
	Daily   Granularity = "daily"
	Weekly  Granularity = "weekly"
	Monthly Granularity = "monthly"
	Yearly  Granularity = "yearly"
)

// All lists every supported granularity, coarsest last.
// Recalculation iterates this slice so bucket writes happen in a fixed order.
var All = []Granularity{Daily, Weekly, Monthly, Yearly}

// ParseGranularity validates and normalizes a granularity label.
func ParseGranularity(s string) (Granularity, error) {
	switch Granularity(s) {
	case Daily, Weekly, Monthly, Yearly:
		return Granularity(s), nil
	}
	return "", fmt.Errorf("invalid granularity %q (must be daily, weekly, monthly, or yearly)", s)
}

// Valid reports whether g is a supported granularity.
func (g Granularity) Valid() bool {
	_, err := ParseGranularity(string(g))
	return err == nil
}

// Key is the canonical temporal identity of a bucket.
// Fields not applicable to a granularity are zero:
// yearly keys carry only Year, monthly Year+Month, weekly Year+Month+Week,
// daily Year+Month+Day. For weekly keys Year is the ISO week-year, which can
// differ from the calendar year at year boundaries.
type Key struct {
	Year  int `json:"year"`
	Month int `json:"month,omitempty"`
	Week  int `json:"week,omitempty"`
	Day   int `json:"day,omitempty"`
}

// KeyFor derives the canonical bucket key for a granularity and reference date.
// Pure function: the aggregation engine and every caller classifying a
// timestamp must go through here so a booking always lands in the same bucket.
func KeyFor(g Granularity, t time.Time) Key {
	t = dateOnly(t)
	switch g {
	case Daily:
		return Key{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
	case Weekly:
		year, week, month := isoWeek(t)
		return Key{Year: year, Month: month, Week: week}
	case Monthly:
		return Key{Year: t.Year(), Month: int(t.Month())}
	case Yearly:
		return Key{Year: t.Year()}
	}
	return Key{}
}

// AnchorFor returns the representative date of the bucket containing t:
// the day itself, the Monday of the ISO week, the first of the month,
// or January 1st.
func AnchorFor(g Granularity, t time.Time) time.Time {
	t = dateOnly(t)
	switch g {
	case Daily:
		return t
	case Weekly:
		return mondayOf(t)
	case Monthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	case Yearly:
		return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return t
}

// Anchor reconstructs the anchor date from a canonical key.
// Inverse of KeyFor + AnchorFor for every granularity.
func Anchor(g Granularity, k Key) time.Time {
	switch g {
	case Daily:
		return time.Date(k.Year, time.Month(k.Month), k.Day, 0, 0, 0, 0, time.UTC)
	case Weekly:
		// January 4th is always inside ISO week 1 of its year.
		jan4 := time.Date(k.Year, 1, 4, 0, 0, 0, 0, time.UTC)
		return mondayOf(jan4).AddDate(0, 0, (k.Week-1)*7)
	case Monthly:
		return time.Date(k.Year, time.Month(k.Month), 1, 0, 0, 0, 0, time.UTC)
	case Yearly:
		return time.Date(k.Year, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return time.Time{}
}

// Previous returns the key of the bucket immediately preceding k in calendar
// order at the same granularity, handling month and ISO-week year rollover.
func Previous(g Granularity, k Key) Key {
	anchor := Anchor(g, k)
	switch g {
	case Daily:
		return KeyFor(Daily, anchor.AddDate(0, 0, -1))
	case Weekly:
		return KeyFor(Weekly, anchor.AddDate(0, 0, -7))
	case Monthly:
		return KeyFor(Monthly, anchor.AddDate(0, -1, 0))
	case Yearly:
		return KeyFor(Yearly, anchor.AddDate(-1, 0, 0))
	}
	return Key{}
}

// isoWeek computes the ISO-8601 week of t: shift to the Thursday of t's
// Monday-start week, then index weeks from January 1st of the Thursday's year.
// The last days of December can land in week 1 of the next year, and the
// first days of January in week 52/53 of the previous one.
// Returns the ISO week-year, the week number, and the Thursday's month
// (the month context stored on weekly keys).
func isoWeek(t time.Time) (year, week, month int) {
	thursday := t.AddDate(0, 0, 3-mondayIndex(t))
	week = (thursday.YearDay() + 6) / 7
	return thursday.Year(), week, int(thursday.Month())
}

// mondayIndex maps time.Weekday (Sunday=0) to a Monday-start index (Monday=0).
func mondayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func mondayOf(t time.Time) time.Time {
	return t.AddDate(0, 0, -mondayIndex(t))
}

func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
