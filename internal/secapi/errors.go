package secapi

import (
	"errors"
	"fmt"
)

// Error taxonomy for fetch outcomes. The precondition errors are
// raised locally, before any request is made.
var (
	ErrMissingCredential     = errors.New("secapi: no API key provided")
	ErrUnvalidatedCredential = errors.New("secapi: API key has not been validated")
	ErrUnauthorized          = errors.New("secapi: API key unauthorized")
	ErrQuotaExceeded         = errors.New("secapi: access forbidden, quota may be exhausted")
	ErrEndpointNotFound      = errors.New("secapi: endpoint not found")
	ErrNoData                = errors.New("secapi: no data found")
)

// FetchError covers transport failures and unexpected HTTP statuses.
// Status is 0 when the request never completed.
type FetchError struct {
	Ticker string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("secapi: fetch for %s failed with status %d: %v", e.Ticker, e.Status, e.Err)
	}
	return fmt.Sprintf("secapi: fetch for %s failed: %v", e.Ticker, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
