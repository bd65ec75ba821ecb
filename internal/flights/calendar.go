package flights

import (
	"sort"
	"time"
)

// Pure calendar arithmetic for the weekly operating pattern. Everything here
// works on UTC midnights; ledger rows are keyed by these dates.

const dateLayout = "2006-01-02"

// NormalizeDate truncates t to UTC midnight.
func NormalizeDate(t time.Time) time.Time {
	return time.Date(t.UTC().Year(), t.UTC().Month(), t.UTC().Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a wire date string ("2006-01-02" or RFC 3339) and
// normalizes it to UTC midnight.
func ParseDate(value string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, value); err == nil {
		return NormalizeDate(t), nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, err
	}
	return NormalizeDate(t), nil
}

// DateKey formats a normalized date as a compact ledger key (YYYYMMDD).
func DateKey(t time.Time) string {
	return t.UTC().Format("20060102")
}

// ISOWeekday returns the weekday of t with Monday=1 .. Sunday=7.
func ISOWeekday(t time.Time) int {
	wd := int(t.UTC().Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// NormalizeWeekDays deduplicates and sorts a weekday pattern.
func NormalizeWeekDays(weekDays []int) []int {
	seen := make(map[int]bool, len(weekDays))
	out := make([]int, 0, len(weekDays))
	for _, d := range weekDays {
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	sort.Ints(out)
	return out
}

// ExpandCalendar returns the ascending list of UTC-midnight dates in
// [dateFrom, dateTo] whose ISO weekday is in weekDays. Deterministic: the
// same inputs always yield the same set.
func ExpandCalendar(dateFrom, dateTo time.Time, weekDays []int) []time.Time {
	daySet := make(map[int]bool, len(weekDays))
	for _, d := range weekDays {
		daySet[d] = true
	}

	start := NormalizeDate(dateFrom)
	end := NormalizeDate(dateTo)

	var out []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if daySet[ISOWeekday(d)] {
			out = append(out, d)
		}
	}
	return out
}
