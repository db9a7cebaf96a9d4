package ledger

import (
	"testing"
	"time"

	"fondo/internal/core"
)

func TestComputeTrendMonthly(t *testing.T) {
	end := time.Date(2025, 6, 30, 23, 59, 0, 0, time.UTC)
	txs := []core.Transaction{
		tx("t1", core.Expense, 1000, "p1", "c1", "u1", time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC)),
		tx("t2", core.Expense, 2000, "p1", "c1", "u1", time.Date(2025, 2, 28, 23, 59, 59, 0, time.UTC)),
		tx("t3", core.Expense, 500, "p1", "c1", "u1", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)),
		tx("t4", core.Contribution, 9999, "", "", "u1", time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)),
	}

	buckets := ComputeTrend(txs, Monthly, end)

	if len(buckets) != 2 {
		t.Fatalf("expected 2 non-empty buckets, got %d: %+v", len(buckets), buckets)
	}
	// Oldest first.
	if buckets[0].Label != "Feb 2025" || buckets[0].Total.Cents != 3000 {
		t.Fatalf("first bucket = %+v", buckets[0])
	}
	if buckets[1].Label != "Jun 2025" || buckets[1].Total.Cents != 500 {
		t.Fatalf("second bucket = %+v", buckets[1])
	}
}

func TestComputeTrendMonthlyCap(t *testing.T) {
	// Eight consecutive months of spend; only the last six non-empty
	// buckets survive, and the window itself only reaches back six
	// months, so the earliest months fall away twice over.
	end := time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC)
	var txs []core.Transaction
	for m := 1; m <= 8; m++ {
		txs = append(txs, tx("t", core.Expense, int64(m*100), "p1", "c1", "u1",
			time.Date(2025, time.Month(m), 15, 0, 0, 0, 0, time.UTC)))
	}

	buckets := ComputeTrend(txs, Monthly, end)

	if len(buckets) > maxTrendBuckets {
		t.Fatalf("got %d buckets, cap is %d", len(buckets), maxTrendBuckets)
	}
	for i := 1; i < len(buckets); i++ {
		if !buckets[i-1].Start.Before(buckets[i].Start) {
			t.Fatalf("buckets not oldest first: %+v", buckets)
		}
	}
	if got := buckets[len(buckets)-1].Label; got != "Aug 2025" {
		t.Fatalf("newest bucket = %q, want Aug 2025", got)
	}
}

func TestComputeTrendWeeklyMondayStart(t *testing.T) {
	// 2025-06-15 is a Sunday; its ISO week starts Monday 2025-06-09.
	end := time.Date(2025, 6, 15, 23, 0, 0, 0, time.UTC)
	txs := []core.Transaction{
		tx("t1", core.Expense, 700, "p1", "c1", "u1", time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)),
		tx("t2", core.Expense, 300, "p1", "c1", "u1", time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)),
		tx("t3", core.Expense, 100, "p1", "c1", "u1", time.Date(2025, 6, 8, 12, 0, 0, 0, time.UTC)),
	}

	buckets := ComputeTrend(txs, Weekly, end)

	if len(buckets) != 2 {
		t.Fatalf("expected 2 buckets, got %d: %+v", len(buckets), buckets)
	}
	last := buckets[len(buckets)-1]
	if last.Start.Weekday() != time.Monday {
		t.Fatalf("week should start on Monday, got %s", last.Start.Weekday())
	}
	// Monday and Sunday of the same ISO week share a bucket.
	if last.Total.Cents != 1000 {
		t.Fatalf("week total = %d, want 1000", last.Total.Cents)
	}
	if buckets[0].Total.Cents != 100 {
		t.Fatalf("prior week total = %d, want 100", buckets[0].Total.Cents)
	}
}

func TestComputeTrendDropsZeroBuckets(t *testing.T) {
	end := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	txs := []core.Transaction{
		tx("t1", core.Expense, 100, "p1", "c1", "u1", time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)),
		tx("t2", core.Expense, 200, "p1", "c1", "u1", time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)),
	}

	buckets := ComputeTrend(txs, Monthly, end)
	for _, b := range buckets {
		if b.Total.Cents == 0 {
			t.Fatalf("zero bucket leaked through: %+v", b)
		}
	}
	if len(buckets) != 2 {
		t.Fatalf("expected 2 buckets, got %+v", buckets)
	}
}

func TestComputeTrendOutsideWindow(t *testing.T) {
	end := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	txs := []core.Transaction{
		tx("t1", core.Expense, 100, "p1", "c1", "u1", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)),
		tx("t2", core.Expense, 100, "p1", "c1", "u1", end.AddDate(0, 0, 1)),
	}
	if buckets := ComputeTrend(txs, Monthly, end); len(buckets) != 0 {
		t.Fatalf("out-of-window spend produced buckets: %+v", buckets)
	}
}

func TestComputeTrendEmptyInput(t *testing.T) {
	if buckets := ComputeTrend(nil, Weekly, day); len(buckets) != 0 {
		t.Fatalf("empty input produced buckets: %+v", buckets)
	}
}
