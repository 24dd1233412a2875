package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"

	"github.com/stevenh6696/bookkeeping-notebook/internal/api"
	"github.com/stevenh6696/bookkeeping-notebook/internal/config"
	"github.com/stevenh6696/bookkeeping-notebook/internal/importer"
	"github.com/stevenh6696/bookkeeping-notebook/internal/ledger"
	"github.com/stevenh6696/bookkeeping-notebook/internal/logger"
	"github.com/stevenh6696/bookkeeping-notebook/internal/models"
	"github.com/stevenh6696/bookkeeping-notebook/internal/parser"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "import":
		runImport(os.Args[2:])
	case "add":
		runAdd(os.Args[2:])
	case "totals":
		runTotals(os.Args[2:])
	case "serve":
		runServe(os.Args[2:])
	case "export":
		runExport(os.Args[2:])
	case "version", "-version", "--version":
		fmt.Printf("bookkeeper v%s\n", api.Version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Bookkeeper
Reads bank and credit card statements into a sorted ledger.

Usage:
  bookkeeper <command> [flags]

Commands:
  import    Extract entries from statements dated on or after -since
  add       Write one entry typed in by hand
  totals    Print the balance of every configured account
  export    Write the ledger and totals to a spreadsheet
  serve     Run the JSON API
  version   Print version and exit

Examples:
  # Preview everything stamped since March
  bookkeeper import -since 2024-03-01

  # Append it to the ledger
  bookkeeper import -since 2024-03-01 -write

  # Record a cash purchase
  bookkeeper add -account Cash -store "Farmers market" -amount -18.00 -category Food

Configuration is read from the environment or a .env file:
  STATEMENT_ROOT, ACCOUNTS_FILE, LEDGER_BACKEND (csv|sqlite),
  LEDGER_CSV_PATH, SQLITE_DB_PATH, PORT, LOG_LEVEL, TIMEZONE
`)
}

// app is what every command needs once configuration has been read.
type app struct {
	cfg        *config.Config
	log        zerolog.Logger
	accounts   []models.Account
	categories models.Categories
}

func setup() *app {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	accounts, err := config.LoadAccounts(cfg.AccountsFile)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.AccountsFile).Msg("Failed to load accounts")
	}

	categories, err := config.LoadCategories(cfg.AccountsFile)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.AccountsFile).Msg("Failed to load categories")
	}

	log.Debug().
		Str("backend", cfg.LedgerBackend).
		Strs("accounts", config.AccountNames(accounts)).
		Int("categories", len(categories)).
		Msg("Configuration loaded")
	return &app{cfg: cfg, log: log, accounts: accounts, categories: categories}
}

// openStore returns the configured ledger store and a function releasing it.
func (a *app) openStore() (ledger.Store, func()) {
	switch a.cfg.LedgerBackend {
	case config.BackendSQLite:
		store, err := ledger.NewSQLiteStore(a.cfg.SQLiteDBPath)
		if err != nil {
			a.log.Fatal().Err(err).Str("path", a.cfg.SQLiteDBPath).Msg("Failed to open ledger database")
		}
		return store, func() {
			if err := store.Close(); err != nil {
				a.log.Error().Err(err).Msg("Failed to close ledger database")
			}
		}
	default:
		return ledger.NewCSVStore(a.cfg.LedgerCSVPath), func() {}
	}
}

func runImport(args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	sinceFlag := fs.String("since", "", "Earliest statement date to read (YYYY-MM-DD)")
	writeFlag := fs.Bool("write", false, "Append the extracted entries to the ledger")
	fs.Parse(args)

	if *sinceFlag == "" {
		fatalf("Error: -since is required\n")
	}
	since, err := civil.ParseDate(*sinceFlag)
	if err != nil {
		fatalf("Invalid -since date %q: want YYYY-MM-DD\n", *sinceFlag)
	}

	a := setup()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, a.log)

	im := &importer.Importer{Accounts: a.accounts, Today: a.cfg.Today()}
	res, err := im.ImportSince(ctx, a.cfg.StatementRoot, since)
	if err != nil {
		a.log.Fatal().Err(err).Msg("Import failed")
	}

	printEntries(res.Batch.Entries)
	fmt.Printf("\n%d entries from %d statement(s)\n", res.Batch.Len(), len(res.Batch.Documents))
	for _, f := range res.Failures {
		fmt.Printf("  Skipped %s: %v\n", f.Document, f.Err)
	}

	if !*writeFlag {
		return
	}

	store, closeStore := a.openStore()
	defer closeStore()

	merged, err := ledger.Commit(ctx, store, res.Batch)
	if err != nil {
		a.log.Fatal().Err(err).Msg("Write failed")
	}
	fmt.Println(ledger.FormatTotals(ledger.Totals(merged, config.AccountNames(a.accounts))))
}

func runAdd(args []string) {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	accountFlag := fs.String("account", "", "Account the entry belongs to")
	dateFlag := fs.String("date", "", "Entry date (YYYY-MM-DD, default today)")
	storeFlag := fs.String("store", "", "Store or payee")
	amountFlag := fs.String("amount", "", "Signed amount, negative for spending")
	descriptionFlag := fs.String("description", "", "Free-text description")
	categoryFlag := fs.String("category", "", "Category")
	subcategoryFlag := fs.String("subcategory", "", "Subcategory of -category")
	notesFlag := fs.String("notes", "", "Notes")
	fs.Parse(args)

	if *amountFlag == "" {
		fatalf("Error: -amount is required\n")
	}
	amount, err := parser.ParseAmount(*amountFlag)
	if err != nil {
		fatalf("Invalid -amount: %v\n", err)
	}

	a := setup()
	date := a.cfg.Today()
	if *dateFlag != "" {
		if date, err = civil.ParseDate(*dateFlag); err != nil {
			fatalf("Invalid -date %q: want YYYY-MM-DD\n", *dateFlag)
		}
	}

	e := models.Entry{
		Date:        date,
		Store:       *storeFlag,
		Amount:      amount,
		Account:     *accountFlag,
		Description: *descriptionFlag,
		Category:    *categoryFlag,
		Subcategory: *subcategoryFlag,
		Notes:       *notesFlag,
	}
	if err := e.ValidateFor(a.accounts, a.categories); err != nil {
		fatalf("Error: %v\n", err)
	}

	store, closeStore := a.openStore()
	defer closeStore()

	batch := models.NewBatch()
	batch.Add("manual", []models.Entry{e})
	merged, err := ledger.Commit(context.Background(), store, batch)
	if err != nil {
		a.log.Fatal().Err(err).Msg("Write failed")
	}
	printEntries([]models.Entry{e})
	fmt.Println(ledger.FormatTotals(ledger.Totals(merged, config.AccountNames(a.accounts))))
}

func runTotals(args []string) {
	fs := flag.NewFlagSet("totals", flag.ExitOnError)
	fs.Parse(args)

	a := setup()
	store, closeStore := a.openStore()
	defer closeStore()

	entries, err := store.Load(context.Background())
	if err != nil {
		a.log.Fatal().Err(err).Msg("Failed to load ledger")
	}
	fmt.Println(ledger.FormatTotals(ledger.Totals(entries, config.AccountNames(a.accounts))))
}

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	outFlag := fs.String("o", "ledger.xlsx", "Output spreadsheet path")
	fs.Parse(args)

	a := setup()
	store, closeStore := a.openStore()
	defer closeStore()

	entries, err := store.Load(context.Background())
	if err != nil {
		a.log.Fatal().Err(err).Msg("Failed to load ledger")
	}

	f, err := os.Create(*outFlag)
	if err != nil {
		a.log.Fatal().Err(err).Str("path", *outFlag).Msg("Failed to create spreadsheet")
	}
	defer f.Close()

	totals := ledger.Totals(entries, config.AccountNames(a.accounts))
	if err := ledger.WriteXLSX(f, entries, totals); err != nil {
		a.log.Fatal().Err(err).Msg("Export failed")
	}
	fmt.Printf("Wrote %d entries to %s\n", len(entries), *outFlag)
}

func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	portFlag := fs.String("port", "", "Port to listen on (overrides PORT)")
	fs.Parse(args)

	a := setup()
	if *portFlag != "" {
		a.cfg.Port = *portFlag
	}

	store, closeStore := a.openStore()
	defer closeStore()

	server := api.NewApp(&api.Handler{
		Accounts:      a.accounts,
		Categories:    a.categories,
		Store:         store,
		StatementRoot: a.cfg.StatementRoot,
		Today:         a.cfg.Today,
		Log:           a.log,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.log.Info().Str("port", a.cfg.Port).Msg("Starting API server")
		errCh <- server.Listen(":" + a.cfg.Port)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			a.log.Error().Err(err).Msg("Server stopped")
		}
		return
	case <-ctx.Done():
	}

	a.log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		a.log.Error().Err(err).Msg("Shutdown failed")
	}
}

func printEntries(entries []models.Entry) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Date\tAccount\tStore\tAmount\t")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n", e.Date, e.Account, e.Store, e.Amount.StringFixed(2))
	}
	w.Flush()
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}
