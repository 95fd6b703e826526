// Package secapi is the client for the filings API. It owns request
// construction, token auth, pacing and the translation of HTTP
// outcomes into the domain error taxonomy.
package secapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"findoss/internal/config"
	"findoss/internal/credential"
	"findoss/internal/httpclient"
)

// insiderPageSize is the most filings the API returns per call. Only
// the first page is requested; there is no automatic pagination.
const insiderPageSize = "50"

// probeTicker backs credential validation: one compensation record
// for a ticker that always has data.
const probeTicker = "AAPL"

type Client struct {
	BaseURL string
	HTTP    *http.Client
	// Limiter paces outbound calls so batch fetches stay polite.
	// Nil disables pacing.
	Limiter *rate.Limiter
}

func New() *Client {
	return &Client{
		BaseURL: config.APIBaseURL,
		HTTP:    httpclient.Default,
		Limiter: rate.NewLimiter(rate.Every(500*time.Millisecond), 1),
	}
}

func checkCredential(cred credential.Credential) error {
	if cred.Value == "" {
		return ErrMissingCredential
	}
	if !cred.Usable() {
		return ErrUnvalidatedCredential
	}
	return nil
}

func (c *Client) wait(ctx context.Context) error {
	if c.Limiter == nil {
		return nil
	}
	return c.Limiter.Wait(ctx)
}

// FetchCompensation returns all compensation records the API has for
// the ticker. Credential preconditions are checked locally before any
// request is issued.
func (c *Client) FetchCompensation(ctx context.Context, ticker string, cred credential.Credential) ([]CompensationRecord, error) {
	if err := checkCredential(cred); err != nil {
		return nil, err
	}
	if err := c.wait(ctx); err != nil {
		return nil, &FetchError{Ticker: ticker, Err: err}
	}

	u := fmt.Sprintf("%s/compensation/%s?token=%s", c.BaseURL, url.PathEscape(ticker), url.QueryEscape(cred.Value))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &FetchError{Ticker: ticker, Err: err}
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, &FetchError{Ticker: ticker, Err: err}
	}
	defer resp.Body.Close()
	if err := statusError(ticker, resp.StatusCode, false); err != nil {
		return nil, err
	}

	var records []CompensationRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, &FetchError{Ticker: ticker, Status: resp.StatusCode, Err: err}
	}
	if len(records) == 0 {
		return nil, ErrNoData
	}
	return records, nil
}

// insiderQuery is the structured search the insider-trading endpoint
// expects: full-text match on the issuer's trading symbol, newest
// filings first, one page of insiderPageSize.
type insiderQuery struct {
	Query struct {
		QueryString struct {
			Query string `json:"query"`
		} `json:"query_string"`
	} `json:"query"`
	From string                `json:"from"`
	Size string                `json:"size"`
	Sort []map[string]sortSpec `json:"sort"`
}

type sortSpec struct {
	Order string `json:"order"`
}

type insiderResponse struct {
	Transactions []Filing `json:"transactions"`
}

// FetchInsiderFilings returns the most recent insider-trading filings
// for the ticker (first page only, filed-date descending).
func (c *Client) FetchInsiderFilings(ctx context.Context, ticker string, cred credential.Credential) ([]Filing, error) {
	if err := checkCredential(cred); err != nil {
		return nil, err
	}
	if err := c.wait(ctx); err != nil {
		return nil, &FetchError{Ticker: ticker, Err: err}
	}

	var q insiderQuery
	q.Query.QueryString.Query = "issuer.tradingSymbol:" + ticker
	q.From = "0"
	q.Size = insiderPageSize
	q.Sort = []map[string]sortSpec{{"filedAt": {Order: "desc"}}}

	body, err := json.Marshal(q)
	if err != nil {
		return nil, &FetchError{Ticker: ticker, Err: err}
	}
	u := fmt.Sprintf("%s/insider-trading?token=%s", c.BaseURL, url.QueryEscape(cred.Value))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, &FetchError{Ticker: ticker, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, &FetchError{Ticker: ticker, Err: err}
	}
	defer resp.Body.Close()
	if err := statusError(ticker, resp.StatusCode, true); err != nil {
		return nil, err
	}

	var out insiderResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &FetchError{Ticker: ticker, Status: resp.StatusCode, Err: err}
	}
	if len(out.Transactions) == 0 {
		return nil, ErrNoData
	}
	return out.Transactions, nil
}

// Probe issues the minimal authenticated request used to validate a
// key. Any non-2xx status or transport failure is an error.
func (c *Client) Probe(ctx context.Context, key string) error {
	if err := c.wait(ctx); err != nil {
		return err
	}
	u := fmt.Sprintf("%s/compensation/%s?token=%s&limit=1", c.BaseURL, probeTicker, url.QueryEscape(key))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("probe returned status %d", resp.StatusCode)
	}
	return nil
}

// statusError maps an HTTP status to the error taxonomy. 404 means
// "endpoint not found" only on the insider-trading path; the
// compensation endpoint folds it into the generic fetch failure.
func statusError(ticker string, code int, insider bool) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusUnauthorized:
		return ErrUnauthorized
	case code == http.StatusForbidden:
		return ErrQuotaExceeded
	case insider && code == http.StatusNotFound:
		return ErrEndpointNotFound
	default:
		return &FetchError{Ticker: ticker, Status: code, Err: fmt.Errorf("unexpected status %d", code)}
	}
}
