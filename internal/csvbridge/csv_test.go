package csvbridge

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"findoss/internal/models"
)

func compRows() []models.CompensationRow {
	return []models.CompensationRow{
		{
			ID: "r1", CIK: "320193", Ticker: "AAPL", Name: "Doe, Jane",
			Position: "CEO", Year: 2023,
			Salary: 1000000, Bonus: 250000.5, StockAwards: 40000000,
			OptionAwards: 0, NonEquityComp: 10000000, PensionChange: 0,
			OtherComp: 1500000.25, Total: 52750000.75,
		},
		{
			ID: "r2", CIK: "320193", Ticker: "AAPL", Name: "Smith \"JS\" John",
			Position: "CFO", Year: 2022, Salary: 900000, Total: 900000,
		},
	}
}

func insiderRows() []models.InsiderTransactionRow {
	return []models.InsiderTransactionRow{
		{
			FilingID: "f1", PeriodOfReport: "2024-03-15", IssuerCIK: "320193",
			IssuerTicker: "AAPL", ReportingPersonName: "Jane Doe",
			ReportingPersonCIK: "123", OfficerTitle: "CFO", IsDirector: "Yes",
			IsTenPercentOwner: "No", Remarks: "N/A",
			Type: models.TransactionNonDerivative, SecurityTitle: "Common Stock",
			CodingCode: "S", AcquiredDisposed: "D",
			Shares: 100, SharePrice: 10.004, Total: 1001, SharesOwnedFollowing: 900,
		},
		{
			FilingID: "f1", PeriodOfReport: "2024-03-15", IssuerCIK: "320193",
			IssuerTicker: "AAPL", ReportingPersonName: "Jane Doe",
			OfficerTitle: "N/A", IsDirector: "No", IsTenPercentOwner: "No",
			Remarks: "multi\nline remark", Type: models.TransactionDerivative,
			SecurityTitle: "Stock Option", UnderlyingSecurity: "Common Stock",
			CodingCode: "M", AcquiredDisposed: "A",
			Shares: 500, SharePrice: 12.5, Total: 6250, SharesOwnedFollowing: 1400,
		},
	}
}

func TestCompensationRoundTrip(t *testing.T) {
	// Export then import must reproduce the rows exactly, embedded
	// commas and quotes included.
	rows := compRows()
	got, err := CompensationFromCSV(CompensationToCSV(rows))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, rows) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, rows)
	}
}

func TestInsiderRoundTrip(t *testing.T) {
	rows := insiderRows()
	got, err := InsiderFromCSV(InsiderToCSV(rows))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, rows) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, rows)
	}
}

func TestCompensationFromCSV_MissingTickerColumn(t *testing.T) {
	text := "Name,Year\nJane,2023\n"
	_, err := CompensationFromCSV(text)
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	if schemaErr.Column != "Ticker" {
		t.Errorf("expected Ticker discriminator, got %q", schemaErr.Column)
	}
}

func TestInsiderFromCSV_MissingIssuerTickerColumn(t *testing.T) {
	text := "filingId,shares\nf1,100\n"
	_, err := InsiderFromCSV(text)
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	if schemaErr.Column != "issuerTicker" {
		t.Errorf("expected issuerTicker discriminator, got %q", schemaErr.Column)
	}
}

func TestFromCSV_EmptyInputs(t *testing.T) {
	for _, text := range []string{"", "ID,Ticker,Year\n", "ID,Ticker,Year\n,,\n"} {
		_, err := CompensationFromCSV(text)
		if !errors.Is(err, ErrEmptyData) {
			t.Errorf("input %q: expected ErrEmptyData, got %v", text, err)
		}
	}
}

func TestFromCSV_NumericCoercion(t *testing.T) {
	text := strings.Join([]string{
		"Ticker,Year,Salary,Total",
		"AAPL,2023,1000000.5,1000000.5",
		"AAPL,2022,,", // blank numeric cells coerce to zero
	}, "\n") + "\n"

	rows, err := CompensationFromCSV(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rows[0].Salary != 1000000.5 || rows[0].Year != 2023 {
		t.Errorf("coercion failed: %+v", rows[0])
	}
	if rows[1].Salary != 0 || rows[1].Total != 0 {
		t.Errorf("blank cells must coerce to zero: %+v", rows[1])
	}
}

func TestFromCSV_BadNumericCellRejected(t *testing.T) {
	text := "Ticker,Year,Salary\nAAPL,2023,lots\n"
	_, err := CompensationFromCSV(text)
	if err == nil || !strings.Contains(err.Error(), "Salary") {
		t.Fatalf("expected error naming the bad column, got %v", err)
	}
}

func TestFromCSV_UnknownColumnsIgnored(t *testing.T) {
	text := "Ticker,Year,Mood\nAAPL,2023,optimistic\n"
	rows, err := CompensationFromCSV(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 || rows[0].Ticker != "AAPL" {
		t.Errorf("unexpected rows: %+v", rows)
	}
}

func TestFromCSV_RowMissingDiscriminatorRejected(t *testing.T) {
	text := "Ticker,Year\nAAPL,2023\n,2022\n"
	_, err := CompensationFromCSV(text)
	if err == nil {
		t.Fatal("expected error for record missing Ticker")
	}
}

func TestToCSV_HeaderRow(t *testing.T) {
	text := CompensationToCSV(nil)
	first := strings.SplitN(text, "\n", 2)[0]
	if !strings.HasPrefix(first, "ID,CIK,Ticker,") {
		t.Errorf("unexpected header: %q", first)
	}
	if !strings.Contains(first, "Change_in_Pension_Value_and_Deferred_Earnings") {
		t.Errorf("header missing pension column: %q", first)
	}
}
