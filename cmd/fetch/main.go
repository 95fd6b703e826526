package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"findoss/internal/config"
	"findoss/internal/logger"
	"findoss/internal/models"
	"findoss/internal/secapi"
	"findoss/internal/service"
	"findoss/internal/storage"
)

func main() {
	domainFlag := flag.String("domain", "compensation", "Data domain: compensation or insider-trading")
	tickersFlag := flag.String("tickers", "", "Comma-separated ticker symbols")
	csvDir := flag.String("csv", "", "Directory to write one CSV per ticker")
	validate := flag.Bool("validate", false, "Validate the API key before fetching")
	flag.Parse()

	logger.Init(config.LogLevel)

	domain, err := models.ParseDomain(*domainFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	tickers := service.SplitTickers(*tickersFlag)
	if len(tickers) == 0 {
		fmt.Fprintln(os.Stderr, "No tickers given. Use -tickers AAPL,MSFT")
		os.Exit(1)
	}

	store, err := storage.OpenSQLite(filepath.Join(config.DataDir, "findoss.db"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open storage: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	svc := service.New(store, secapi.New(), config.FetchCacheTTL)
	if svc.Credential().Value == "" && config.SECAPIKey != "" {
		svc.SetAPIKey(config.SECAPIKey)
	}

	ctx := context.Background()
	if *validate {
		if !svc.ValidateAPIKey(ctx) {
			fmt.Fprintln(os.Stderr, "API key validation failed.")
			os.Exit(1)
		}
		fmt.Println("API key validated.")
	}

	report := svc.FetchBatch(ctx, domain, tickers)
	for _, res := range report.Results {
		if res.Err != "" {
			fmt.Printf("%-8s FAILED  %s\n", res.Ticker, res.Err)
			continue
		}
		fmt.Printf("%-8s ok      %d rows\n", res.Ticker, res.Rows)
	}

	if *csvDir != "" {
		if err := os.MkdirAll(*csvDir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create %s: %v\n", *csvDir, err)
			os.Exit(1)
		}
		for _, res := range report.Results {
			if res.Err != "" {
				continue
			}
			filename, text, err := svc.ExportCSV(domain, res.Ticker)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Export %s failed: %v\n", res.Ticker, err)
				continue
			}
			path := filepath.Join(*csvDir, filename)
			if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
				fmt.Fprintf(os.Stderr, "Write %s failed: %v\n", path, err)
				continue
			}
			fmt.Printf("Wrote %s\n", path)
		}
	}

	if n := report.Failed(); n > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d tickers failed.\n", n, len(report.Results))
		os.Exit(1)
	}
}
