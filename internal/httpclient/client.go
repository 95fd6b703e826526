package httpclient

import (
	"net/http"
	"time"
)

// Shared HTTP client with timeout and connection reuse. All upstream
// calls go through this client so idle connections are pooled.
var Default = &http.Client{
	Timeout: 30 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	},
}
