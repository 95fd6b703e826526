package stats

import (
	"reflect"
	"testing"
	"time"

	"findoss/internal/models"
)

func txRow(period, code string, shares float64, total int64) models.InsiderTransactionRow {
	return models.InsiderTransactionRow{
		IssuerTicker:     "AAPL",
		PeriodOfReport:   period,
		AcquiredDisposed: code,
		Shares:           shares,
		Total:            total,
	}
}

func TestFilterByPeriod(t *testing.T) {
	asOf := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	rows := []models.InsiderTransactionRow{
		txRow("2024-05-20", "D", 100, 1000),             // inside 30 days
		txRow("2024-05-02", "A", 50, 500),               // exactly on the cutoff
		txRow("2024-01-01", "D", 10, 100),               // outside
		txRow("2024-05-25T10:00:00-04:00", "A", 5, 50),  // timestamp, truncated to date
		txRow("not-a-date", "A", 1, 1),                  // dropped
	}

	got := FilterByPeriod(rows, 30, asOf)
	if len(got) != 3 {
		t.Fatalf("expected 3 rows in window, got %d", len(got))
	}
	if got[0].PeriodOfReport != "2024-05-20" || got[1].PeriodOfReport != "2024-05-02" {
		t.Errorf("unexpected rows kept: %+v", got)
	}
}

func TestFilterByPeriod_ZeroDaysIsUnfiltered(t *testing.T) {
	rows := []models.InsiderTransactionRow{txRow("not-a-date", "A", 1, 1)}
	if got := FilterByPeriod(rows, 0, time.Now()); len(got) != 1 {
		t.Errorf("days<=0 must return rows unchanged, got %d", len(got))
	}
}

func TestSummarize(t *testing.T) {
	rows := []models.InsiderTransactionRow{
		txRow("2024-05-20", "A", 500, 6250),
		txRow("2024-05-21", "D", 100, 1001),
		txRow("2024-05-22", "D", 200, 2000),
		txRow("2024-05-23", "", 999, 10), // unknown code counts value only
	}

	s := Summarize("AAPL", rows)
	if s.Ticker != "AAPL" || s.Transactions != 4 {
		t.Errorf("header mismatch: %+v", s)
	}
	if s.Acquired != 500 || s.Disposed != 300 {
		t.Errorf("share totals: acquired=%v disposed=%v", s.Acquired, s.Disposed)
	}
	if s.NetShares != 200 {
		t.Errorf("net shares = %v", s.NetShares)
	}
	if s.TotalValue != 9261 {
		t.Errorf("total value = %d", s.TotalValue)
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize("MSFT", nil)
	if s.Transactions != 0 || s.NetShares != 0 || s.TotalValue != 0 {
		t.Errorf("expected zero summary, got %+v", s)
	}
}

func TestCompensationYears(t *testing.T) {
	rows := []models.CompensationRow{
		{Year: 2022}, {Year: 2023}, {Year: 2022}, {Year: 2021}, {Year: 2023},
	}
	got := CompensationYears(rows)
	want := []int{2023, 2022, 2021}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("years = %v, want %v", got, want)
	}
}

func TestCompensationForYear(t *testing.T) {
	rows := []models.CompensationRow{
		{Name: "a", Year: 2023},
		{Name: "b", Year: 2022},
		{Name: "c", Year: 2023},
	}
	got := CompensationForYear(rows, 2023)
	if len(got) != 2 || got[0].Name != "a" || got[1].Name != "c" {
		t.Errorf("unexpected slice: %+v", got)
	}
	if out := CompensationForYear(rows, 1999); len(out) != 0 {
		t.Errorf("expected empty slice for absent year, got %+v", out)
	}
}
