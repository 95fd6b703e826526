// Package stats derives the small presentation-ready views the UI
// renders from cached rows: trailing-period filters, insider activity
// totals and per-year compensation slices.
package stats

import (
	"sort"
	"time"

	"findoss/internal/models"
)

// FilterByPeriod keeps insider rows whose period-of-report date falls
// within the trailing window of the given number of days. days <= 0
// returns the rows unchanged. Rows with unparseable dates are dropped.
func FilterByPeriod(rows []models.InsiderTransactionRow, days int, asOf time.Time) []models.InsiderTransactionRow {
	if days <= 0 {
		return rows
	}
	cutoff := asOf.AddDate(0, 0, -days)
	out := make([]models.InsiderTransactionRow, 0, len(rows))
	for _, r := range rows {
		t, ok := parseDate(r.PeriodOfReport)
		if !ok {
			continue
		}
		if !t.Before(cutoff) {
			out = append(out, r)
		}
	}
	return out
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if len(s) > 10 {
		s = s[:10]
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// InsiderSummary aggregates one dataset's buy/sell activity.
type InsiderSummary struct {
	Ticker       string  `json:"ticker"`
	Transactions int     `json:"transactions"`
	Acquired     float64 `json:"acquiredShares"`
	Disposed     float64 `json:"disposedShares"`
	NetShares    float64 `json:"netShares"`
	TotalValue   int64   `json:"totalValue"`
}

// Summarize totals share counts by acquired/disposed code and sums
// transaction values across the rows.
func Summarize(ticker string, rows []models.InsiderTransactionRow) InsiderSummary {
	s := InsiderSummary{Ticker: ticker, Transactions: len(rows)}
	for _, r := range rows {
		switch r.AcquiredDisposed {
		case "A":
			s.Acquired += r.Shares
		case "D":
			s.Disposed += r.Shares
		}
		s.TotalValue += r.Total
	}
	s.NetShares = s.Acquired - s.Disposed
	return s
}

// CompensationYears lists the distinct fiscal years present, newest
// first.
func CompensationYears(rows []models.CompensationRow) []int {
	seen := make(map[int]bool)
	years := make([]int, 0)
	for _, r := range rows {
		if !seen[r.Year] {
			seen[r.Year] = true
			years = append(years, r.Year)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}

// CompensationForYear returns the rows for one fiscal year, order
// preserved.
func CompensationForYear(rows []models.CompensationRow, year int) []models.CompensationRow {
	out := make([]models.CompensationRow, 0, len(rows))
	for _, r := range rows {
		if r.Year == year {
			out = append(out, r)
		}
	}
	return out
}
