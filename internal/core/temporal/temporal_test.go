package temporal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseGranularity(t *testing.T) {
	for _, g := range []string{"daily", "weekly", "monthly", "yearly"} {
		parsed, err := ParseGranularity(g)
		require.NoError(t, err)
		require.Equal(t, Granularity(g), parsed)
	}

	_, err := ParseGranularity("hourly")
	require.Error(t, err)
	_, err = ParseGranularity("")
	require.Error(t, err)
}

func TestKeyFor_Daily(t *testing.T) {
	key := KeyFor(Daily, time.Date(2024, 6, 1, 15, 30, 0, 0, time.UTC))
	require.Equal(t, Key{Year: 2024, Month: 6, Day: 1}, key)
}

func TestKeyFor_MonthlyYearly(t *testing.T) {
	require.Equal(t, Key{Year: 2024, Month: 6}, KeyFor(Monthly, date(2024, 6, 15)))
	require.Equal(t, Key{Year: 2024}, KeyFor(Yearly, date(2024, 6, 15)))
}

func TestKeyFor_ISOWeekBoundaries(t *testing.T) {
	tests := []struct {
		name     string
		date     time.Time
		wantYear int
		wantWeek int
	}{
		{name: "monday jan 1 2024 is week 1 of 2024", date: date(2024, 1, 1), wantYear: 2024, wantWeek: 1},
		{name: "tuesday dec 31 2024 is week 1 of 2025", date: date(2024, 12, 31), wantYear: 2025, wantWeek: 1},
		{name: "jan 1 2023 (sunday) belongs to week 52 of 2022", date: date(2023, 1, 1), wantYear: 2022, wantWeek: 52},
		{name: "jan 1 2021 (friday) belongs to week 53 of 2020", date: date(2021, 1, 1), wantYear: 2020, wantWeek: 53},
		{name: "mid-year week", date: date(2024, 6, 5), wantYear: 2024, wantWeek: 23},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			key := KeyFor(Weekly, tc.date)
			require.Equal(t, tc.wantYear, key.Year)
			require.Equal(t, tc.wantWeek, key.Week)
		})
	}
}

func TestKeyFor_WeeklyMatchesStdlib(t *testing.T) {
	// The explicit Thursday-shift formula must agree with time.ISOWeek
	// across a multi-year sweep including leap years and year boundaries.
	day := date(2019, 12, 20)
	for day.Before(date(2026, 1, 10)) {
		wantYear, wantWeek := day.ISOWeek()
		key := KeyFor(Weekly, day)
		require.Equal(t, wantYear, key.Year, "year mismatch at %s", day)
		require.Equal(t, wantWeek, key.Week, "week mismatch at %s", day)
		day = day.AddDate(0, 0, 1)
	}
}

func TestAnchorFor(t *testing.T) {
	ref := time.Date(2024, 6, 5, 18, 45, 0, 0, time.UTC) // a Wednesday

	require.Equal(t, date(2024, 6, 5), AnchorFor(Daily, ref))
	require.Equal(t, date(2024, 6, 3), AnchorFor(Weekly, ref)) // Monday of that week
	require.Equal(t, date(2024, 6, 1), AnchorFor(Monthly, ref))
	require.Equal(t, date(2024, 1, 1), AnchorFor(Yearly, ref))
}

func TestAnchor_RoundTrips(t *testing.T) {
	day := date(2022, 11, 15)
	for day.Before(date(2025, 2, 15)) {
		for _, g := range All {
			key := KeyFor(g, day)
			anchor := Anchor(g, key)
			require.Equal(t, key, KeyFor(g, anchor), "key not stable through anchor for %s at %s", g, day)
			require.Equal(t, AnchorFor(g, day), anchor, "anchor mismatch for %s at %s", g, day)
		}
		day = day.AddDate(0, 0, 7)
	}
}

func TestPrevious(t *testing.T) {
	tests := []struct {
		name string
		g    Granularity
		key  Key
		want Key
	}{
		{name: "daily within month", g: Daily, key: Key{Year: 2024, Month: 6, Day: 2}, want: Key{Year: 2024, Month: 6, Day: 1}},
		{name: "daily across month", g: Daily, key: Key{Year: 2024, Month: 6, Day: 1}, want: Key{Year: 2024, Month: 5, Day: 31}},
		{name: "daily across year", g: Daily, key: Key{Year: 2024, Month: 1, Day: 1}, want: Key{Year: 2023, Month: 12, Day: 31}},
		{name: "monthly across year", g: Monthly, key: Key{Year: 2024, Month: 1}, want: Key{Year: 2023, Month: 12}},
		{name: "yearly", g: Yearly, key: Key{Year: 2024}, want: Key{Year: 2023}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Previous(tc.g, tc.key))
		})
	}
}

func TestPrevious_WeeklyYearRollover(t *testing.T) {
	// Week 1 of 2025 anchors at Monday 2024-12-30; the previous ISO week
	// is week 52 of 2024.
	week1 := KeyFor(Weekly, date(2024, 12, 31))
	require.Equal(t, 2025, week1.Year)
	require.Equal(t, 1, week1.Week)

	prev := Previous(Weekly, week1)
	require.Equal(t, 2024, prev.Year)
	require.Equal(t, 52, prev.Week)
}
