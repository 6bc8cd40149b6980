// Package aggregate derives display views from a snapshot of ledger
// records: time-filtered listings, totals, category breakdowns, trend
// series and period-over-period deltas.
//
// Every function is pure and deterministic: identical input plus the same
// reference instant produces identical output. The reference "now" is a
// parameter so callers and tests control it.
package aggregate

import (
	"sort"
	"time"

	"github.com/ycaws1/expensy/expense"
)

// TimeFilter selects which records participate in aggregation.
type TimeFilter string

const (
	Week  TimeFilter = "week"
	Month TimeFilter = "month"
	All   TimeFilter = "all"
)

// IsValid reports whether f is a known filter.
func (f TimeFilter) IsValid() bool {
	switch f {
	case Week, Month, All:
		return true
	default:
		return false
	}
}

type (
	// CategoryTotal is an amount aggregated by category.
	CategoryTotal struct {
		Category expense.Category
		Total    expense.Money
	}

	// TrendPoint is the total spent on one calendar date.
	TrendPoint struct {
		Date  expense.Date
		Total expense.Money
	}
)

// Filter keeps the records selected by the time filter, sorted descending
// by date. Ties keep the input order (most-recent-first insertion shows
// newest additions first within a day).
//
// Week keeps records dated within the trailing 7 days of now; Month keeps
// records in now's calendar month and year; All keeps everything.
func Filter(records []expense.Expense, filter TimeFilter, now time.Time) []expense.Expense {
	weekAgo := now.Add(-7 * 24 * time.Hour)
	nowY, nowM, _ := now.UTC().Date()

	out := make([]expense.Expense, 0, len(records))
	for _, e := range records {
		switch filter {
		case Week:
			if e.Date.Before(weekAgo) {
				continue
			}
		case Month:
			y, m, _ := e.Date.Date()
			if y != nowY || m != nowM {
				continue
			}
		}
		out = append(out, e)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[j].Date.Before(out[i].Date.Time)
	})
	return out
}

// TotalSpent sums the prices of the given records. Zero for empty input.
func TotalSpent(records []expense.Expense) expense.Money {
	var cents int64
	for _, e := range records {
		cents += e.Price.Cents
	}
	return expense.Money{Cents: cents}
}

// CategoryBreakdown groups records by category and sums each group, sorted
// descending by total. Categories without a matching record are omitted
// rather than zero-filled. Equal totals keep first-appearance order.
func CategoryBreakdown(records []expense.Expense) []CategoryTotal {
	totals := make(map[expense.Category]int64)
	var order []expense.Category
	for _, e := range records {
		if _, seen := totals[e.Category]; !seen {
			order = append(order, e.Category)
		}
		totals[e.Category] += e.Price.Cents
	}

	out := make([]CategoryTotal, 0, len(order))
	for _, c := range order {
		out = append(out, CategoryTotal{Category: c, Total: expense.Money{Cents: totals[c]}})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Total.Cents > out[j].Total.Cents
	})
	return out
}

// TrendSeries groups records by calendar date and sums each day, sorted
// ascending by date for time-series display. Dates are normalized before
// grouping so a record carrying a non-UTC or intraday time still lands on
// its calendar day.
func TrendSeries(records []expense.Expense) []TrendPoint {
	totals := make(map[expense.Date]int64)
	var order []expense.Date
	for _, e := range records {
		day := expense.DateOf(e.Date.Time)
		if _, seen := totals[day]; !seen {
			order = append(order, day)
		}
		totals[day] += e.Price.Cents
	}

	out := make([]TrendPoint, 0, len(order))
	for _, d := range order {
		out = append(out, TrendPoint{Date: d, Total: expense.Money{Cents: totals[d]}})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date.Time)
	})
	return out
}

// PeriodOverPeriodDelta compares the trailing 30 days against the prior
// 30-day window and returns the percentage change. A zero prior window
// yields 100 when the trailing window is positive, else 0.
//
// The comparison deliberately ignores the active time filter: it always
// operates on trailing/prior 30-day windows relative to now.
func PeriodOverPeriodDelta(records []expense.Expense, now time.Time) float64 {
	thirtyDaysAgo := now.Add(-30 * 24 * time.Hour)
	sixtyDaysAgo := now.Add(-60 * 24 * time.Hour)

	var trailing, prior int64
	for _, e := range records {
		d := e.Date.Time
		switch {
		case !d.Before(thirtyDaysAgo) && !d.After(now):
			trailing += e.Price.Cents
		case !d.Before(sixtyDaysAgo) && d.Before(thirtyDaysAgo):
			prior += e.Price.Cents
		}
	}

	if prior == 0 {
		if trailing > 0 {
			return 100
		}
		return 0
	}
	return float64(trailing-prior) / float64(prior) * 100
}
