package main

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"findoss/internal/config"
	"findoss/internal/csvbridge"
	"findoss/internal/logger"
	"findoss/internal/models"
	"findoss/internal/secapi"
	"findoss/internal/service"
	"findoss/internal/stats"
	"findoss/internal/storage"
)

const maxUploadBytes = 10 << 20

func main() {
	logger.Init(config.LogLevel)
	shutdown := setupTracing()
	defer shutdown()

	store, err := storage.OpenSQLite(filepath.Join(config.DataDir, "findoss.db"))
	if err != nil {
		slog.Error("failed to open storage", "err", err)
		os.Exit(1)
	}
	defer store.Close()

	svc := service.New(store, secapi.New(), config.FetchCacheTTL)
	// Seed the credential from the environment on first run.
	if svc.Credential().Value == "" && config.SECAPIKey != "" {
		svc.SetAPIKey(config.SECAPIKey)
	}

	srv := &server{svc: svc}

	r := chi.NewRouter()
	r.Use(securityHeaders)
	r.Use(requestLogger)

	r.Get("/api/health", srv.handleHealth)

	r.Route("/api/credential", func(r chi.Router) {
		r.Get("/", srv.handleCredentialGet)
		r.Put("/", srv.handleCredentialSet)
		r.Delete("/", srv.handleCredentialClear)
		r.With(protect).Post("/validate", srv.handleCredentialValidate)
	})

	r.Route("/api/{domain}", func(r chi.Router) {
		r.With(protect).Post("/fetch", srv.handleFetch)
		r.Get("/companies", srv.handleCompanies)
		r.Get("/error", srv.handleLastError)
		r.Post("/csv", srv.handleCSVUpload)
		r.Get("/{ticker}/csv", srv.handleCSVDownload)
		r.Get("/{ticker}/summary", srv.handleSummary)
		r.Delete("/{ticker}", srv.handleRemove)
	})

	addr := ":" + config.Port
	slog.Info("api listening", "addr", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		slog.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

type server struct {
	svc *service.Service
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleCredentialGet(w http.ResponseWriter, r *http.Request) {
	cred := s.svc.Credential()
	jsonResponse(w, http.StatusOK, map[string]any{
		"value":           maskKey(cred.Value),
		"set":             cred.Value != "",
		"assumedValid":    cred.AssumedValid,
		"valid":           cred.Valid,
		"lastValidatedAt": cred.LastValidatedAt,
	})
}

func (s *server) handleCredentialSet(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Key string `json:"key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	s.svc.SetAPIKey(body.Key)
	jsonResponse(w, http.StatusOK, map[string]bool{"saved": true})
}

func (s *server) handleCredentialClear(w http.ResponseWriter, r *http.Request) {
	s.svc.ClearAPIKey()
	jsonResponse(w, http.StatusOK, map[string]bool{"cleared": true})
}

func (s *server) handleCredentialValidate(w http.ResponseWriter, r *http.Request) {
	valid := s.svc.ValidateAPIKey(r.Context())
	jsonResponse(w, http.StatusOK, map[string]bool{"valid": valid})
}

func (s *server) handleFetch(w http.ResponseWriter, r *http.Request) {
	domain, ok := s.domain(w, r)
	if !ok {
		return
	}
	var body struct {
		Tickers string `json:"tickers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	tickers := service.SplitTickers(body.Tickers)
	if len(tickers) == 0 {
		errorResponse(w, http.StatusBadRequest, "no tickers given")
		return
	}
	report := s.svc.FetchBatch(r.Context(), domain, tickers)
	jsonResponse(w, http.StatusOK, report)
}

func (s *server) handleCompanies(w http.ResponseWriter, r *http.Request) {
	domain, ok := s.domain(w, r)
	if !ok {
		return
	}
	switch domain {
	case models.DomainCompensation:
		jsonResponse(w, http.StatusOK, s.svc.CompensationDatasets())
	case models.DomainInsiderTrading:
		jsonResponse(w, http.StatusOK, s.svc.InsiderDatasets())
	}
}

func (s *server) handleLastError(w http.ResponseWriter, r *http.Request) {
	domain, ok := s.domain(w, r)
	if !ok {
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"error": s.svc.LastError(domain)})
}

func (s *server) handleCSVUpload(w http.ResponseWriter, r *http.Request) {
	domain, ok := s.domain(w, r)
	if !ok {
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxUploadBytes))
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "failed to read upload")
		return
	}
	ticker, rows, err := s.svc.ImportCSV(domain, string(body))
	if err != nil {
		errorResponse(w, statusFor(err), err.Error())
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"ticker": ticker, "rows": rows})
}

func (s *server) handleCSVDownload(w http.ResponseWriter, r *http.Request) {
	domain, ok := s.domain(w, r)
	if !ok {
		return
	}
	filename, text, err := s.svc.ExportCSV(domain, chi.URLParam(r, "ticker"))
	if err != nil {
		errorResponse(w, http.StatusNotFound, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Write([]byte(text))
}

func (s *server) handleSummary(w http.ResponseWriter, r *http.Request) {
	domain, ok := s.domain(w, r)
	if !ok {
		return
	}
	if domain != models.DomainInsiderTrading {
		errorResponse(w, http.StatusNotFound, "summary is only available for insider-trading")
		return
	}
	ds, found := s.svc.FindInsider(chi.URLParam(r, "ticker"))
	if !found {
		errorResponse(w, http.StatusNotFound, "no data available for "+chi.URLParam(r, "ticker"))
		return
	}
	rows := ds.Rows
	if v := r.URL.Query().Get("days"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil || days < 0 {
			errorResponse(w, http.StatusBadRequest, "invalid days parameter")
			return
		}
		rows = stats.FilterByPeriod(rows, days, time.Now())
	}
	jsonResponse(w, http.StatusOK, stats.Summarize(ds.Ticker, rows))
}

func (s *server) handleRemove(w http.ResponseWriter, r *http.Request) {
	domain, ok := s.domain(w, r)
	if !ok {
		return
	}
	s.svc.Remove(domain, chi.URLParam(r, "ticker"))
	jsonResponse(w, http.StatusOK, map[string]bool{"removed": true})
}

func (s *server) domain(w http.ResponseWriter, r *http.Request) (models.Domain, bool) {
	domain, err := models.ParseDomain(chi.URLParam(r, "domain"))
	if err != nil {
		errorResponse(w, http.StatusNotFound, err.Error())
		return "", false
	}
	return domain, true
}

// statusFor maps domain errors to HTTP statuses for the local API.
func statusFor(err error) int {
	var schemaErr *csvbridge.SchemaError
	var fetchErr *secapi.FetchError
	switch {
	case errors.Is(err, secapi.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, secapi.ErrQuotaExceeded):
		return http.StatusForbidden
	case errors.Is(err, secapi.ErrNoData), errors.Is(err, secapi.ErrEndpointNotFound):
		return http.StatusNotFound
	case errors.Is(err, secapi.ErrMissingCredential),
		errors.Is(err, secapi.ErrUnvalidatedCredential),
		errors.Is(err, csvbridge.ErrEmptyData),
		errors.As(err, &schemaErr):
		return http.StatusBadRequest
	case errors.As(err, &fetchErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func jsonResponse(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func errorResponse(w http.ResponseWriter, status int, msg string) {
	jsonResponse(w, status, map[string]string{"error": msg})
}

// maskKey hides all but the last four characters of the stored key.
func maskKey(key string) string {
	if len(key) <= 4 {
		return key
	}
	return "****" + key[len(key)-4:]
}
