// Package service ties the credential store, the upstream client and
// both domain caches together behind the operations the UI calls.
package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"findoss/internal/credential"
	"findoss/internal/csvbridge"
	"findoss/internal/dataset"
	"findoss/internal/models"
	"findoss/internal/normalize"
	"findoss/internal/secapi"
	"findoss/internal/storage"
)

type Service struct {
	creds   *credential.Store
	api     *secapi.Client
	comp    *dataset.Cache[models.CompensationRow]
	insider *dataset.Cache[models.InsiderTransactionRow]
	// memo holds recent upstream responses so repeated fetches of the
	// same ticker within the TTL don't burn API quota.
	memo   *gocache.Cache
	tracer trace.Tracer

	mu      sync.Mutex
	lastErr map[models.Domain]string
}

func New(store storage.Store, api *secapi.Client, memoTTL time.Duration) *Service {
	return &Service{
		creds:   credential.NewStore(store),
		api:     api,
		comp:    dataset.New[models.CompensationRow](store, storage.KeyCompensation),
		insider: dataset.New[models.InsiderTransactionRow](store, storage.KeyInsiderTrades),
		memo:    gocache.New(memoTTL, 10*time.Minute),
		tracer:  otel.Tracer("findoss/service"),
		lastErr: make(map[models.Domain]string),
	}
}

// Credential operations delegate to the credential store.

func (s *Service) Credential() credential.Credential { return s.creds.Get() }
func (s *Service) SetAPIKey(value string)            { s.creds.Set(value) }
func (s *Service) ClearAPIKey()                      { s.creds.Clear() }

func (s *Service) ValidateAPIKey(ctx context.Context) bool {
	ctx, span := s.tracer.Start(ctx, "ValidateAPIKey")
	defer span.End()
	return s.creds.Validate(ctx, s.api)
}

// LastError is the one user-visible error slot per domain. Every
// operation on the domain overwrites it; success clears it.
func (s *Service) LastError(domain models.Domain) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr[domain]
}

func (s *Service) setErr(domain models.Domain, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		s.lastErr[domain] = ""
		return
	}
	s.lastErr[domain] = err.Error()
}

// FetchCompensation fetches, caches and returns compensation rows for
// one ticker.
func (s *Service) FetchCompensation(ctx context.Context, ticker string) ([]models.CompensationRow, error) {
	ctx, span := s.tracer.Start(ctx, "FetchCompensation",
		trace.WithAttributes(attribute.String("ticker", ticker)))
	defer span.End()

	ticker = canonical(ticker)
	rows, err := s.fetchCompensation(ctx, ticker)
	s.setErr(models.DomainCompensation, err)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return rows, nil
}

func (s *Service) fetchCompensation(ctx context.Context, ticker string) ([]models.CompensationRow, error) {
	memoKey := string(models.DomainCompensation) + ":" + ticker
	if v, ok := s.memo.Get(memoKey); ok {
		rows := v.([]models.CompensationRow)
		s.comp.Upsert(ticker, rows)
		return rows, nil
	}
	records, err := s.api.FetchCompensation(ctx, ticker, s.creds.Get())
	if err != nil {
		return nil, err
	}
	rows := normalize.Compensation(records)
	s.memo.Set(memoKey, rows, gocache.DefaultExpiration)
	s.comp.Upsert(ticker, rows)
	return rows, nil
}

// FetchInsiderTrading fetches the most recent filings for one ticker,
// flattens them and caches the resulting rows.
func (s *Service) FetchInsiderTrading(ctx context.Context, ticker string) ([]models.InsiderTransactionRow, error) {
	ctx, span := s.tracer.Start(ctx, "FetchInsiderTrading",
		trace.WithAttributes(attribute.String("ticker", ticker)))
	defer span.End()

	ticker = canonical(ticker)
	rows, err := s.fetchInsiderTrading(ctx, ticker)
	s.setErr(models.DomainInsiderTrading, err)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return rows, nil
}

func (s *Service) fetchInsiderTrading(ctx context.Context, ticker string) ([]models.InsiderTransactionRow, error) {
	memoKey := string(models.DomainInsiderTrading) + ":" + ticker
	if v, ok := s.memo.Get(memoKey); ok {
		rows := v.([]models.InsiderTransactionRow)
		s.insider.Upsert(ticker, rows)
		return rows, nil
	}
	filings, err := s.api.FetchInsiderFilings(ctx, ticker, s.creds.Get())
	if err != nil {
		return nil, err
	}
	rows := normalize.FlattenFilings(filings)
	s.memo.Set(memoKey, rows, gocache.DefaultExpiration)
	s.insider.Upsert(ticker, rows)
	return rows, nil
}

// Cache reads and removals.

func (s *Service) CompensationDatasets() []models.CompanyDataset[models.CompensationRow] {
	return s.comp.Load()
}

func (s *Service) InsiderDatasets() []models.CompanyDataset[models.InsiderTransactionRow] {
	return s.insider.Load()
}

func (s *Service) FindCompensation(ticker string) (models.CompanyDataset[models.CompensationRow], bool) {
	return s.comp.Find(ticker)
}

func (s *Service) FindInsider(ticker string) (models.CompanyDataset[models.InsiderTransactionRow], bool) {
	return s.insider.Find(ticker)
}

func (s *Service) Remove(domain models.Domain, ticker string) {
	switch domain {
	case models.DomainCompensation:
		s.comp.Remove(ticker)
	case models.DomainInsiderTrading:
		s.insider.Remove(ticker)
	}
}

// ImportCSV parses an uploaded CSV for the domain and caches it under
// the ticker named by the first record's discriminator column.
// Returns the ticker and row count.
func (s *Service) ImportCSV(domain models.Domain, text string) (string, int, error) {
	var ticker string
	var count int
	var err error
	switch domain {
	case models.DomainCompensation:
		var rows []models.CompensationRow
		rows, err = csvbridge.CompensationFromCSV(text)
		if err == nil {
			ticker = canonical(rows[0].Ticker)
			count = len(rows)
			s.comp.Upsert(ticker, rows)
		}
	case models.DomainInsiderTrading:
		var rows []models.InsiderTransactionRow
		rows, err = csvbridge.InsiderFromCSV(text)
		if err == nil {
			ticker = canonical(rows[0].IssuerTicker)
			count = len(rows)
			s.insider.Upsert(ticker, rows)
		}
	default:
		err = fmt.Errorf("unknown domain %q", domain)
	}
	s.setErr(domain, err)
	if err != nil {
		return "", 0, err
	}
	return ticker, count, nil
}

// ExportCSV serializes the ticker's cached dataset and returns the
// download filename alongside the CSV text.
func (s *Service) ExportCSV(domain models.Domain, ticker string) (filename, text string, err error) {
	ticker = canonical(ticker)
	switch domain {
	case models.DomainCompensation:
		ds, ok := s.comp.Find(ticker)
		if !ok || len(ds.Rows) == 0 {
			err = fmt.Errorf("no data available for %s", ticker)
			break
		}
		filename = fmt.Sprintf("%s_compensation_data.csv", ds.Ticker)
		text = csvbridge.CompensationToCSV(ds.Rows)
	case models.DomainInsiderTrading:
		ds, ok := s.insider.Find(ticker)
		if !ok || len(ds.Rows) == 0 {
			err = fmt.Errorf("no data available for %s", ticker)
			break
		}
		filename = fmt.Sprintf("%s_insider_trading_data.csv", ds.Ticker)
		text = csvbridge.InsiderToCSV(ds.Rows)
	default:
		err = fmt.Errorf("unknown domain %q", domain)
	}
	s.setErr(domain, err)
	if err != nil {
		return "", "", err
	}
	return filename, text, nil
}

func canonical(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}
