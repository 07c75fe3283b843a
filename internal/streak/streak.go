// Package streak computes habit streaks from a sparse, date-keyed log of
// daily results. Everything here is pure: no store access, no clock.
package streak

import (
	"sort"
	"time"

	"github.com/nevroth/nevroth/internal/models"
)

// Entry is one logged day for a single user and habit.
type Entry struct {
	Date   time.Time
	Status models.ProgressStatus
}

// Result holds both streak lengths in days.
type Result struct {
	Current int `json:"current"`
	Max     int `json:"max"`
}

// Compute returns the current and the longest streak of entries as seen on
// the calendar day of today. Missing data is a zero streak, never an error.
func Compute(entries []Entry, today time.Time) Result {
	return Result{
		Current: Current(entries, today),
		Max:     Max(entries),
	}
}

// Current counts consecutive success days walking back from today. The walk
// stops at the first day that is missing or failed.
func Current(entries []Entry, today time.Time) int {
	done := successDays(entries)

	streak := 0
	for day := dayNumber(today); done[day]; day-- {
		streak++
	}
	return streak
}

// Max returns the length of the longest run of consecutive calendar days
// that are all success. A day with no entry breaks a run like a failure.
//
// Sorted success days d0 < d1 < ... get the key d_i - i. Inside a run both
// the day and the index advance by one, so the key is constant; any gap
// makes it jump. Each key is therefore exactly one run.
func Max(entries []Entry) int {
	done := successDays(entries)
	if len(done) == 0 {
		return 0
	}

	days := make([]int64, 0, len(done))
	for day := range done {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })

	runs := make(map[int64]int, len(days))
	best := 0
	for i, day := range days {
		key := day - int64(i)
		runs[key]++
		if runs[key] > best {
			best = runs[key]
		}
	}
	return best
}

func successDays(entries []Entry) map[int64]bool {
	done := make(map[int64]bool, len(entries))
	for _, e := range entries {
		if e.Status == models.StatusSuccess {
			done[dayNumber(e.Date)] = true
		}
	}
	return done
}

// dayNumber maps the civil date of t, in t's own location, to a day count
// since the Unix epoch.
func dayNumber(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}
