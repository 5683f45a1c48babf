// Package cycle computes heat-cycle statistics and projections from observed
// event history, and evaluates manual cycle-length overrides against them.
// Everything in this package is a pure function over its inputs.
package cycle

import (
	"math"
	"sort"
	"time"

	"github.com/montanaflynn/stats"
)

// Rounding selects how fractional day averages collapse to whole days.
type Rounding string

// Rounding modes.
const (
	RoundNearest Rounding = "nearest"
	RoundFloor   Rounding = "floor"
	RoundCeil    Rounding = "ceil"
)

// DefaultLastN is the window used for the recent-cycle average when the
// caller does not specify one.
const DefaultLastN = 3

// Options tunes a summary computation. Zero values select the documented
// defaults; FallbackAvgDays and SpeciesDefaultDays of zero mean "absent".
type Options struct {
	LastN              int
	FallbackAvgDays    int
	SpeciesDefaultDays int
	Rounding           Rounding
}

// Summary is the derived, non-persisted cycle statistic set. It is recomputed
// on demand from the current event history and never cached across mutations.
type Summary struct {
	Last     *time.Time `json:"last"`
	AvgAll   *int       `json:"avg_all"`
	AvgLastN *int       `json:"avg_last_n"`
	Next     *time.Time `json:"next"`
}

// Basis returns the projection basis in effect: the recent average when
// available, otherwise the overall average, otherwise the configured
// fallback, otherwise the species default. ok=false when no basis exists.
func (s Summary) Basis(opts Options) (int, bool) {
	if s.AvgLastN != nil {
		return *s.AvgLastN, true
	}
	if s.AvgAll != nil {
		return *s.AvgAll, true
	}
	if opts.FallbackAvgDays > 0 {
		return opts.FallbackAvgDays, true
	}
	if opts.SpeciesDefaultDays > 0 {
		return opts.SpeciesDefaultDays, true
	}
	return 0, false
}

// ComputeSummary parses ISO date strings and computes the cycle summary.
// Malformed entries are excluded from the computation, not fatal.
func ComputeSummary(dates []string, opts Options) Summary {
	parsed := make([]time.Time, 0, len(dates))
	for _, raw := range dates {
		if t, ok := parseDate(raw); ok {
			parsed = append(parsed, t)
		}
	}
	return ComputeFromDates(parsed, opts)
}

// ComputeFromDates computes the cycle summary from already-parsed timestamps.
// Inputs may be unordered; they are normalised to UTC date granularity and
// duplicate dates collapse to one observation.
func ComputeFromDates(dates []time.Time, opts Options) Summary {
	if opts.LastN <= 0 {
		opts.LastN = DefaultLastN
	}
	days := normalize(dates)

	var summary Summary
	if len(days) == 0 {
		return summary
	}
	last := days[len(days)-1]
	summary.Last = &last

	if len(days) >= 2 {
		deltas := make([]float64, 0, len(days)-1)
		for i := 1; i < len(days); i++ {
			deltas = append(deltas, days[i].Sub(days[i-1]).Hours()/24)
		}
		summary.AvgAll = roundedMean(deltas, opts.Rounding)
		if len(deltas) >= opts.LastN {
			summary.AvgLastN = roundedMean(deltas[len(deltas)-opts.LastN:], opts.Rounding)
		}
	}

	if basis, ok := summary.Basis(opts); ok {
		next := last.AddDate(0, 0, basis)
		summary.Next = &next
	}
	return summary
}

func roundedMean(deltas []float64, mode Rounding) *int {
	mean, err := stats.Mean(deltas)
	if err != nil {
		return nil
	}
	var rounded int
	switch mode {
	case RoundFloor:
		rounded = int(math.Floor(mean))
	case RoundCeil:
		rounded = int(math.Ceil(mean))
	default:
		rounded = int(math.Round(mean))
	}
	return &rounded
}

// normalize truncates to UTC date-only, deduplicates, and sorts ascending.
func normalize(dates []time.Time) []time.Time {
	seen := make(map[time.Time]struct{}, len(dates))
	out := make([]time.Time, 0, len(dates))
	for _, t := range dates {
		day := DateOnly(t)
		if _, dup := seen[day]; dup {
			continue
		}
		seen[day] = struct{}{}
		out = append(out, day)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// DateOnly normalises a timestamp to midnight UTC on its calendar date.
func DateOnly(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// parseDate accepts ISO date strings, with or without a time component.
func parseDate(raw string) (time.Time, bool) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}
