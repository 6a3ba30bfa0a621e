// Package period resolves calendar months into concrete time windows.
//
// A month is identified by a MonthKey, the integer year*100+month (202403 is
// March 2024). Windows are always resolved in an explicit location so that
// "this month" means the same thing to the service as it does to the user.
package period

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidMonthKey is returned when a key does not name a real month.
var ErrInvalidMonthKey = errors.New("invalid month key")

// MonthKey identifies a calendar month as year*100+month.
type MonthKey int

// ParseMonthKey validates k and returns it as a MonthKey.
func ParseMonthKey(k int) (MonthKey, error) {
	year, month := k/100, k%100
	if year < 1 || year > 9999 || month < 1 || month > 12 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidMonthKey, k)
	}
	return MonthKey(k), nil
}

// MonthKeyOf returns the key of the month containing t, in t's location.
func MonthKeyOf(t time.Time) MonthKey {
	return MonthKey(t.Year()*100 + int(t.Month()))
}

// Year returns the calendar year.
func (k MonthKey) Year() int { return int(k) / 100 }

// Month returns the calendar month.
func (k MonthKey) Month() time.Month { return time.Month(int(k) % 100) }

// Valid reports whether k names a real month.
func (k MonthKey) Valid() bool {
	_, err := ParseMonthKey(int(k))
	return err == nil
}

// String formats the key as YYYY-MM.
func (k MonthKey) String() string {
	return fmt.Sprintf("%04d-%02d", k.Year(), int(k.Month()))
}

// Prev returns the key of the preceding month.
func (k MonthKey) Prev() MonthKey {
	if k.Month() == time.January {
		return MonthKey((k.Year()-1)*100 + 12)
	}
	return k - 1
}

// Window returns the closed interval covering the whole month in loc.
func (k MonthKey) Window(loc *time.Location) Window {
	if loc == nil {
		loc = time.UTC
	}
	start := time.Date(k.Year(), k.Month(), 1, 0, 0, 0, 0, loc)
	end := time.Date(k.Year(), k.Month()+1, 1, 0, 0, 0, 0, loc).Add(-time.Nanosecond)
	return Window{Month: k, Start: start, End: end}
}

// Window is a closed time interval [Start, End] covering one calendar month.
type Window struct {
	Month MonthKey
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window, bounds included.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Days returns the number of calendar days in the window.
func (w Window) Days() int {
	return w.End.Day()
}

// Current returns the window of the month containing ref, in ref's location.
func Current(ref time.Time) Window {
	return MonthKeyOf(ref).Window(ref.Location())
}

// Trailing returns n consecutive month windows ending with the month that
// contains ref, most recent first. Windows use ref's location.
func Trailing(n int, ref time.Time) []Window {
	if n <= 0 {
		return []Window{}
	}
	windows := make([]Window, 0, n)
	key := MonthKeyOf(ref)
	for i := 0; i < n; i++ {
		windows = append(windows, key.Window(ref.Location()))
		key = key.Prev()
	}
	return windows
}

// Span returns the interval covering every window in ws, which must be
// ordered most recent first as returned by Trailing.
func Span(ws []Window) (start, end time.Time, ok bool) {
	if len(ws) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return ws[len(ws)-1].Start, ws[0].End, true
}

// ResolveLocation loads the named IANA zone, falling back to def when name
// is empty.
func ResolveLocation(name string, def *time.Location) (*time.Location, error) {
	if name == "" {
		if def == nil {
			return time.UTC, nil
		}
		return def, nil
	}
	return time.LoadLocation(name)
}
