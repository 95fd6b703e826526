package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"findoss/internal/models"
)

// BatchResult is the per-ticker outcome of one batch fetch.
type BatchResult struct {
	Ticker string `json:"ticker"`
	Rows   int    `json:"rows"`
	Err    string `json:"error,omitempty"`
}

// BatchReport collects a whole batch run under one job ID.
type BatchReport struct {
	JobID   string        `json:"jobId"`
	Domain  models.Domain `json:"domain"`
	Results []BatchResult `json:"results"`
}

// Failed reports how many tickers in the batch errored.
func (r BatchReport) Failed() int {
	n := 0
	for _, res := range r.Results {
		if res.Err != "" {
			n++
		}
	}
	return n
}

// FetchBatch processes tickers strictly one at a time, awaiting each
// fetch before starting the next. Quota usage stays predictable and
// every failure is attributed to its own ticker; a partial failure
// never stops the rest of the batch. Must not be parallelized.
func (s *Service) FetchBatch(ctx context.Context, domain models.Domain, tickers []string) BatchReport {
	ctx, span := s.tracer.Start(ctx, "FetchBatch",
		trace.WithAttributes(
			attribute.String("domain", string(domain)),
			attribute.Int("tickers", len(tickers)),
		))
	defer span.End()

	report := BatchReport{JobID: uuid.NewString(), Domain: domain}
	for _, raw := range tickers {
		ticker := canonical(raw)
		if ticker == "" {
			continue
		}
		res := BatchResult{Ticker: ticker}
		var err error
		switch domain {
		case models.DomainCompensation:
			var rows []models.CompensationRow
			rows, err = s.FetchCompensation(ctx, ticker)
			res.Rows = len(rows)
		case models.DomainInsiderTrading:
			var rows []models.InsiderTransactionRow
			rows, err = s.FetchInsiderTrading(ctx, ticker)
			res.Rows = len(rows)
		default:
			err = fmt.Errorf("unknown domain %q", domain)
		}
		if err != nil {
			res.Err = err.Error()
		}
		report.Results = append(report.Results, res)
	}
	return report
}

// SplitTickers parses the comma-separated ticker input the UI
// accepts ("aapl, MSFT,tsla") into trimmed uppercase symbols.
func SplitTickers(input string) []string {
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := canonical(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
