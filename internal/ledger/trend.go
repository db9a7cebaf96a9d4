package ledger

import (
	"time"

	"fondo/internal/core"
)

const (
	Weekly  Granularity = "weekly"
	Monthly Granularity = "monthly"
)

// Granularity selects the calendar interval trend buckets are cut on.
type Granularity string

// Bucket is one column of the spending trend chart.
type Bucket struct {
	Label string
	Start time.Time
	End   time.Time
	Total core.Money
}

// maxTrendBuckets bounds how many non-empty buckets the chart shows.
const maxTrendBuckets = 6

// trendWindowMonths is the trailing window the trend looks back over.
const trendWindowMonths = 6

// ComputeTrend buckets expense amounts over the six calendar months
// ending at windowEnd: ISO weeks (Monday start) for Weekly, calendar
// months for Monthly. Bucket bounds are inclusive. Buckets that sum to
// zero are dropped, and at most the last six non-empty buckets are
// returned, oldest first — sparse data should not render empty chart
// columns, but the chart still shows a bounded, recent window.
//
// Non-expense transactions in the input are ignored, so callers may pass
// either a pre-filtered expense list or a mixed one.
//
// The window filter wins over bucket bounds: the first bucket can start
// before windowStart, and expenses in that gap are excluded, so the
// oldest bucket may carry a partial total for its nominal range.
func ComputeTrend(txs []core.Transaction, g Granularity, windowEnd time.Time) []Bucket {
	windowStart := windowEnd.AddDate(0, -trendWindowMonths, 0)

	var buckets []Bucket
	switch g {
	case Weekly:
		start := startOfISOWeek(windowStart)
		for !start.After(windowEnd) {
			end := start.AddDate(0, 0, 7).Add(-time.Nanosecond)
			buckets = append(buckets, Bucket{
				Label: start.Format("02 Jan"),
				Start: start,
				End:   end,
			})
			start = start.AddDate(0, 0, 7)
		}
	default: // Monthly
		start := time.Date(windowStart.Year(), windowStart.Month(), 1, 0, 0, 0, 0, windowStart.Location())
		for !start.After(windowEnd) {
			end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
			buckets = append(buckets, Bucket{
				Label: start.Format("Jan 2006"),
				Start: start,
				End:   end,
			})
			start = start.AddDate(0, 1, 0)
		}
	}

	for _, tx := range txs {
		if tx.Type != core.Expense {
			continue
		}
		if tx.Date.Before(windowStart) || tx.Date.After(windowEnd) {
			continue
		}
		for i := range buckets {
			if !tx.Date.Before(buckets[i].Start) && !tx.Date.After(buckets[i].End) {
				buckets[i].Total.Cents += tx.Amount.Cents
				break
			}
		}
	}

	nonEmpty := buckets[:0:0]
	for _, b := range buckets {
		if b.Total.Cents != 0 {
			nonEmpty = append(nonEmpty, b)
		}
	}
	if len(nonEmpty) > maxTrendBuckets {
		nonEmpty = nonEmpty[len(nonEmpty)-maxTrendBuckets:]
	}
	return nonEmpty
}

// startOfISOWeek returns midnight of the Monday on or before t.
func startOfISOWeek(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := (int(day.Weekday()) + 6) % 7 // Monday = 0
	return day.AddDate(0, 0, -offset)
}
