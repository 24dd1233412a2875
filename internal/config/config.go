package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/joho/godotenv"
)

// Ledger backends.
const (
	BackendCSV    = "csv"
	BackendSQLite = "sqlite"
)

type Config struct {
	// Statements
	StatementRoot string
	AccountsFile  string

	// Ledger store
	LedgerBackend string
	LedgerCSVPath string
	SQLiteDBPath  string

	// HTTP server
	Port string

	LogLevel string
	// Timezone decides which calendar day is "today" when resolving
	// statement years.
	Timezone string
}

// Load reads configuration from the environment, after loading a .env
// file from the working directory if there is one.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		StatementRoot: getEnv("STATEMENT_ROOT", "./statements"),
		AccountsFile:  getEnv("ACCOUNTS_FILE", "./accounts.yaml"),

		LedgerBackend: getEnv("LEDGER_BACKEND", BackendCSV),
		LedgerCSVPath: getEnv("LEDGER_CSV_PATH", "./data.csv"),
		SQLiteDBPath:  getEnv("SQLITE_DB_PATH", "./data/ledger.db"),

		Port: getEnv("PORT", "8080"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		Timezone: getEnv("TIMEZONE", "Local"),
	}
}

// Validate returns every configuration problem in a single error.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	validBackends := []string{BackendCSV, BackendSQLite}
	if !slices.Contains(validBackends, c.LedgerBackend) {
		errors = append(errors, fmt.Sprintf("invalid ledger backend '%s': must be one of %v", c.LedgerBackend, validBackends))
	}
	if c.LedgerBackend == BackendCSV && c.LedgerCSVPath == "" {
		errors = append(errors, "ledger CSV path cannot be empty when using csv backend")
	}
	if c.LedgerBackend == BackendSQLite && c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
	}

	if c.AccountsFile == "" {
		errors = append(errors, "accounts file path cannot be empty")
	} else if _, err := os.Stat(c.AccountsFile); err != nil {
		errors = append(errors, fmt.Sprintf("accounts file %s: %v", c.AccountsFile, err))
	}

	if c.StatementRoot == "" {
		errors = append(errors, "statement root cannot be empty")
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errors = append(errors, fmt.Sprintf("invalid timezone '%s': %v", c.Timezone, err))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// Today returns the current date in the configured time zone.
func (c *Config) Today() civil.Date {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		loc = time.Local
	}
	return civil.DateOf(time.Now().In(loc))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
