package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"findoss/internal/models"
	"findoss/internal/secapi"
	"findoss/internal/storage"
)

// fakeUpstream serves compensation for AAPL and MSFT and insider
// filings for AAPL; everything else gets the named status.
type fakeUpstream struct {
	srv  *httptest.Server
	hits atomic.Int64
}

func newFakeUpstream(t *testing.T) *fakeUpstream {
	t.Helper()
	f := &fakeUpstream{}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /compensation/{ticker}", func(w http.ResponseWriter, r *http.Request) {
		f.hits.Add(1)
		ticker := r.PathValue("ticker")
		switch ticker {
		case "AAPL", "MSFT":
			json.NewEncoder(w).Encode([]secapi.CompensationRecord{
				{ID: ticker + "-1", Ticker: ticker, Name: "Jane Doe", Year: 2023, Salary: 1e6, Total: 2e6},
				{ID: ticker + "-2", Ticker: ticker, Name: "John Smith", Year: 2022, Salary: 9e5, Total: 9e5},
			})
		case "QUOTA":
			w.WriteHeader(http.StatusForbidden)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	mux.HandleFunc("POST /insider-trading", func(w http.ResponseWriter, r *http.Request) {
		f.hits.Add(1)
		var q struct {
			Query struct {
				QueryString struct {
					Query string `json:"query"`
				} `json:"query_string"`
			} `json:"query"`
		}
		json.NewDecoder(r.Body).Decode(&q)
		if !strings.HasSuffix(q.Query.QueryString.Query, ":AAPL") {
			json.NewEncoder(w).Encode(map[string]any{"transactions": []secapi.Filing{}})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"transactions": []secapi.Filing{
				{
					ID:             "f1",
					PeriodOfReport: "2024-03-15",
					Issuer:         &secapi.Issuer{CIK: "320193", TradingSymbol: "AAPL"},
					ReportingOwner: &secapi.ReportingOwner{Name: "Jane Doe"},
					NonDerivativeTable: &secapi.TransactionTable{
						Transactions: []secapi.Transaction{
							{
								SecurityTitle: "Common Stock",
								Coding:        &secapi.Coding{Code: "S"},
								Amounts:       &secapi.Amounts{Shares: 100, PricePerShare: 10, AcquiredDisposedCode: "D"},
							},
						},
					},
				},
			},
		})
	})
	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func newTestService(t *testing.T, f *fakeUpstream) *Service {
	t.Helper()
	api := &secapi.Client{BaseURL: f.srv.URL, HTTP: f.srv.Client()}
	svc := New(storage.NewMemory(), api, time.Minute)
	svc.SetAPIKey("test-key")
	return svc
}

func TestFetchCompensation_CachesAndClearsError(t *testing.T) {
	f := newFakeUpstream(t)
	svc := newTestService(t, f)

	rows, err := svc.FetchCompensation(context.Background(), " aapl ")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	ds, ok := svc.FindCompensation("AAPL")
	require.True(t, ok, "fetched dataset must land in the cache")
	assert.Equal(t, "AAPL", ds.Ticker)
	assert.Len(t, ds.Rows, 2)
	assert.Empty(t, svc.LastError(models.DomainCompensation))
}

func TestFetchCompensation_MissingCredential(t *testing.T) {
	f := newFakeUpstream(t)
	api := &secapi.Client{BaseURL: f.srv.URL, HTTP: f.srv.Client()}
	svc := New(storage.NewMemory(), api, time.Minute)

	_, err := svc.FetchCompensation(context.Background(), "AAPL")
	require.ErrorIs(t, err, secapi.ErrMissingCredential)
	assert.Equal(t, int64(0), f.hits.Load(), "no upstream call without a credential")
	assert.NotEmpty(t, svc.LastError(models.DomainCompensation))
}

func TestFetchCompensation_Memoized(t *testing.T) {
	f := newFakeUpstream(t)
	svc := newTestService(t, f)

	_, err := svc.FetchCompensation(context.Background(), "AAPL")
	require.NoError(t, err)
	rows, err := svc.FetchCompensation(context.Background(), "AAPL")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, int64(1), f.hits.Load(), "second fetch within TTL must not hit upstream")
}

func TestFetchInsiderTrading_FlattensAndCaches(t *testing.T) {
	f := newFakeUpstream(t)
	svc := newTestService(t, f)

	rows, err := svc.FetchInsiderTrading(context.Background(), "aapl")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "AAPL", rows[0].IssuerTicker)
	assert.Equal(t, int64(1000), rows[0].Total)

	_, ok := svc.FindInsider("AAPL")
	assert.True(t, ok)
}

func TestFetchInsiderTrading_NoDataSetsLastError(t *testing.T) {
	f := newFakeUpstream(t)
	svc := newTestService(t, f)

	_, err := svc.FetchInsiderTrading(context.Background(), "ZZZZ")
	require.ErrorIs(t, err, secapi.ErrNoData)
	assert.NotEmpty(t, svc.LastError(models.DomainInsiderTrading))

	// A later success on the same domain clears the slot.
	_, err = svc.FetchInsiderTrading(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Empty(t, svc.LastError(models.DomainInsiderTrading))
}

func TestFetchBatch_PartialFailure(t *testing.T) {
	f := newFakeUpstream(t)
	svc := newTestService(t, f)

	report := svc.FetchBatch(context.Background(),
		models.DomainCompensation, []string{"aapl", "QUOTA", "msft", ""})

	assert.NotEmpty(t, report.JobID)
	require.Len(t, report.Results, 3, "blank tickers are dropped, failures are not")

	// Sequential processing preserves input order.
	assert.Equal(t, "AAPL", report.Results[0].Ticker)
	assert.Equal(t, "QUOTA", report.Results[1].Ticker)
	assert.Equal(t, "MSFT", report.Results[2].Ticker)

	assert.Equal(t, 2, report.Results[0].Rows)
	assert.Empty(t, report.Results[0].Err)
	assert.NotEmpty(t, report.Results[1].Err, "quota failure must be attributed to its ticker")
	assert.Equal(t, 2, report.Results[2].Rows, "failure must not stop the rest of the batch")
	assert.Equal(t, 1, report.Failed())

	// Both successful tickers are cached.
	_, ok := svc.FindCompensation("AAPL")
	assert.True(t, ok)
	_, ok = svc.FindCompensation("MSFT")
	assert.True(t, ok)
}

func TestImportExportCSV(t *testing.T) {
	f := newFakeUpstream(t)
	svc := newTestService(t, f)

	_, err := svc.FetchCompensation(context.Background(), "AAPL")
	require.NoError(t, err)

	filename, text, err := svc.ExportCSV(models.DomainCompensation, "aapl")
	require.NoError(t, err)
	assert.Equal(t, "AAPL_compensation_data.csv", filename)

	// Import the export into a fresh service: same dataset comes back.
	svc2 := newTestService(t, f)
	ticker, count, err := svc2.ImportCSV(models.DomainCompensation, text)
	require.NoError(t, err)
	assert.Equal(t, "AAPL", ticker)
	assert.Equal(t, 2, count)

	ds, ok := svc2.FindCompensation("AAPL")
	require.True(t, ok)
	assert.Equal(t, svc.CompensationDatasets()[0].Rows, ds.Rows)
}

func TestExportCSV_NoDataIsError(t *testing.T) {
	svc := newTestService(t, newFakeUpstream(t))

	_, _, err := svc.ExportCSV(models.DomainInsiderTrading, "AAPL")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no data available")
	assert.NotEmpty(t, svc.LastError(models.DomainInsiderTrading))
}

func TestImportCSV_BadPayloadLeavesCacheUntouched(t *testing.T) {
	svc := newTestService(t, newFakeUpstream(t))

	_, _, err := svc.ImportCSV(models.DomainCompensation, "Name,Year\nJane,2023\n")
	require.Error(t, err)
	assert.Empty(t, svc.CompensationDatasets())
}

func TestRemove_ByDomain(t *testing.T) {
	f := newFakeUpstream(t)
	svc := newTestService(t, f)

	_, err := svc.FetchCompensation(context.Background(), "AAPL")
	require.NoError(t, err)
	_, err = svc.FetchInsiderTrading(context.Background(), "AAPL")
	require.NoError(t, err)

	svc.Remove(models.DomainCompensation, "aapl")

	_, ok := svc.FindCompensation("AAPL")
	assert.False(t, ok)
	_, ok = svc.FindInsider("AAPL")
	assert.True(t, ok, "removal is scoped to its domain")
}

func TestSplitTickers(t *testing.T) {
	assert.Equal(t, []string{"AAPL", "MSFT", "TSLA"}, SplitTickers("aapl, MSFT ,tsla"))
	assert.Empty(t, SplitTickers(" , ,"))
	assert.Equal(t, []string{"AAPL"}, SplitTickers("AAPL"))
}
