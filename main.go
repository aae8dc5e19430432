package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gorilla/mux"
	"github.com/labstack/gommon/log"
	"github.com/shopspring/decimal"

	"github.com/credditor/credditor/internal/api"
	"github.com/credditor/credditor/internal/config"
	"github.com/credditor/credditor/internal/extract"
	"github.com/credditor/credditor/internal/ingest"
	"github.com/credditor/credditor/internal/models"
	"github.com/credditor/credditor/internal/reddit"
	"github.com/credditor/credditor/internal/redditloans"
	"github.com/credditor/credditor/internal/report"
	"github.com/credditor/credditor/internal/store"
)

const version = "1.0.0"

func main() {
	// CLI flags
	configFlag := flag.String("config", "config.yaml", "Path to YAML config file (optional)")
	titleFlag := flag.String("title", "", "One-shot mode: extract loan terms from this post title")
	dateFlag := flag.String("date", "", "Post date for one-shot extraction, YYYY-MM-DD (defaults to today)")
	strategyFlag := flag.String("strategy", "", "Extraction strategy: pattern or generative (overrides config)")
	userFlag := flag.String("user", "", "Reddit username to ingest and reconcile")
	outputFlag := flag.String("output", "", "Output CSV file path for user mode (printed as a table if omitted)")
	headerFlag := flag.Bool("header", true, "Include user metadata header rows in CSV")
	serveFlag := flag.Bool("serve", false, "Run the HTTP API server")
	listenFlag := flag.String("listen", "", "Listen address for serve mode (overrides config)")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	helpFlag := flag.Bool("help", false, "Show usage help")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Credditor - Loan Request Extraction & Reconciliation

Extracts borrow amount, repay amount, and repay date from r/borrow-style
request post titles, and reconciles them against the redditloans ledger.

Usage:
  credditor [flags]

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Extract terms from a single post title
  credditor --title='[REQ] ($500) (repay $550 by 3/15)' --date=2024-03-01

  # Use the generative strategy for a messy title
  credditor --strategy=generative --title='[REQ] need 200, will give back 250 mid june'

  # Ingest a user's loan history and print the reconciliation table
  credditor --user=some_redditor

  # Export the history to CSV instead
  credditor --user=some_redditor --output=history.csv

  # Run the HTTP API
  credditor --serve --listen=:8080

Strategies:
  pattern     - regex extraction of the (amount) (repay ... by date) convention
  generative  - Claude-backed extraction for titles the patterns miss
`)
	}

	flag.Parse()

	if *versionFlag {
		fmt.Printf("credditor v%s\n", version)
		os.Exit(0)
	}

	if *helpFlag || (*titleFlag == "" && *userFlag == "" && !*serveFlag) {
		flag.Usage()
		os.Exit(0)
	}

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fatalf("Config error: %v\n", err)
	}
	// Validate strategy flag if provided
	if *strategyFlag != "" {
		switch *strategyFlag {
		case "pattern":
			cfg.Strategy = extract.StrategyPattern
		case "generative":
			cfg.Strategy = extract.StrategyGenerative
		default:
			fatalf("Unknown strategy %q. Supported: pattern, generative\n", *strategyFlag)
		}
	}
	if *listenFlag != "" {
		cfg.ListenAddr = *listenFlag
	}

	switch {
	case *titleFlag != "":
		if err := runExtract(cfg, *titleFlag, *dateFlag); err != nil {
			fatalf("Error: %v\n", err)
		}
	case *userFlag != "":
		if err := runUser(cfg, *userFlag, *outputFlag, *headerFlag); err != nil {
			fatalf("Error processing %s: %v\n", *userFlag, err)
		}
	case *serveFlag:
		if err := runServe(cfg); err != nil {
			fatalf("Server error: %v\n", err)
		}
	}
}

func runExtract(cfg config.Config, title, dateArg string) error {
	postDate := time.Now().UTC()
	if dateArg != "" {
		parsed, err := time.Parse("2006-01-02", dateArg)
		if err != nil {
			return fmt.Errorf("invalid --date %q: use YYYY-MM-DD", dateArg)
		}
		postDate = parsed
	}

	e, err := cfg.NewExtractor()
	if err != nil {
		return err
	}

	fmt.Printf("Title:    %s\n", title)
	fmt.Printf("Strategy: %s\n", e.Name())

	result, warnings := e.Extract(context.Background(), title, postDate)

	fmt.Printf("  Borrow amount: %s\n", optAmount(result.BorrowAmount))
	fmt.Printf("  Repay amount:  %s\n", optAmount(result.RepayAmount))
	fmt.Printf("  Repay date:    %s\n", optDate(result.RepayDate))
	if len(result.Installments) > 0 {
		fmt.Printf("  Installments:  %d\n", len(result.Installments))
		for _, inst := range result.Installments {
			fmt.Printf("    - %s on %s\n", optAmount(inst.RepayAmount), optDate(inst.RepayDate))
		}
	}
	if len(result.PaymentTypes) > 0 {
		fmt.Printf("  Payment types: %v\n", result.PaymentTypes)
	}
	for _, warning := range warnings {
		fmt.Printf("  Warning: %s\n", warning)
	}
	return nil
}

func runUser(cfg config.Config, username, outputPath string, includeHeader bool) error {
	e, err := cfg.NewExtractor()
	if err != nil {
		return err
	}

	loader := &ingest.Loader{
		Reddit:           reddit.NewClient(),
		Loans:            redditloans.NewClient(),
		Extractor:        e,
		ActivityDaysBack: cfg.ActivityDaysBack,
		CommentLimit:     cfg.CommentLimit,
	}

	fmt.Printf("Loading: %s\n", username)

	data, warnings, err := loader.LoadUser(context.Background(), username)
	if err != nil {
		return err
	}

	fmt.Printf("  Found %d loan(s)\n", len(data.LoanHistory))
	for _, warning := range warnings {
		fmt.Printf("  Warning: %s\n", warning)
	}

	if outputPath != "" {
		w := &report.CSVWriter{IncludeHeader: includeHeader}
		if err := w.WriteToFile(outputPath, data); err != nil {
			return fmt.Errorf("CSV write failed: %w", err)
		}
		fmt.Printf("  Output: %s\n", outputPath)
	} else {
		fmt.Println()
		if err := report.WriteTable(os.Stdout, data); err != nil {
			return err
		}
	}

	// Best effort snapshot; the report already rendered.
	if err := saveSnapshot(cfg.StatePath, data); err != nil {
		fmt.Fprintf(os.Stderr, "  Warning: snapshot not saved: %v\n", err)
	}

	fmt.Println("  Done.")
	return nil
}

func saveSnapshot(path string, data models.UserData) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	s, err := store.Open(path)
	if err != nil {
		return err
	}
	defer s.Close()
	return s.PutUser(data)
}

func runServe(cfg config.Config) error {
	e, err := cfg.NewExtractor()
	if err != nil {
		return err
	}

	r := mux.NewRouter()
	h := &api.Handler{Extractor: e}
	h.RegisterRoutes(r)

	log.Infof("[Serve] listening on %s (strategy=%s)", cfg.ListenAddr, e.Name())
	return http.ListenAndServe(cfg.ListenAddr, r)
}

func optAmount(d *decimal.Decimal) string {
	if d == nil {
		return "(not found)"
	}
	return d.String()
}

func optDate(t *time.Time) string {
	if t == nil {
		return "(not found)"
	}
	return t.Format("2006-01-02")
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}
