package api

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"cloud.google.com/go/civil"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/stevenh6696/bookkeeping-notebook/internal/config"
	"github.com/stevenh6696/bookkeeping-notebook/internal/extractor"
	"github.com/stevenh6696/bookkeeping-notebook/internal/importer"
	"github.com/stevenh6696/bookkeeping-notebook/internal/ledger"
	"github.com/stevenh6696/bookkeeping-notebook/internal/logger"
	"github.com/stevenh6696/bookkeeping-notebook/internal/models"
	"github.com/stevenh6696/bookkeeping-notebook/internal/parser"
)

const Version = "1.0.0"

// Response is the JSON body of every API endpoint.
type Response struct {
	Success   bool           `json:"success"`
	Error     string         `json:"error,omitempty"`
	Batch     string         `json:"batch,omitempty"`
	Documents []string       `json:"documents,omitempty"`
	Entries   []models.Entry `json:"entries"`
	Count     int            `json:"count"`
	Failures  []Failure      `json:"failures,omitempty"`
	Totals    []ledger.Total `json:"totals,omitempty"`
}

// OptionsResponse lists the values an entry may use.
type OptionsResponse struct {
	Accounts   []string          `json:"accounts"`
	Categories models.Categories `json:"categories"`
}

// Failure is a statement that contributed no entries.
type Failure struct {
	Document string `json:"document"`
	Error    string `json:"error"`
}

// ImportRequest is the body of POST /api/import.
type ImportRequest struct {
	Since civil.Date `json:"since"`
}

// CommitRequest is the body of POST /api/commit.
type CommitRequest struct {
	Entries []models.Entry `json:"entries"`
}

// Handler holds the HTTP handlers for the API.
type Handler struct {
	Accounts []models.Account
	// Categories restricts the category of committed entries; empty means
	// any category is accepted.
	Categories    models.Categories
	Store         ledger.Store
	StatementRoot string
	// Today is asked on every request; nil means the local calendar day.
	Today func() civil.Date
	// ReadLines defaults to extractor.ReadLines.
	ReadLines importer.LineReader
	Log       zerolog.Logger

	// commits serialises load-merge-save against the store.
	commits sync.Mutex
}

// NewApp builds the fiber application serving h.
func NewApp(h *Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "bookkeeper",
		BodyLimit:             32 << 20,
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
			}
			return writeError(c, code, err.Error())
		},
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Content-Type",
	}))
	app.Use(h.withLogger)
	h.RegisterRoutes(app)
	return app
}

// RegisterRoutes sets up the API routes.
func (h *Handler) RegisterRoutes(app *fiber.App) {
	api := app.Group("/api")
	api.Get("/health", h.handleHealth)
	api.Get("/options", h.handleOptions)
	api.Post("/statements", h.handleStatement)
	api.Post("/import", h.handleImport)
	api.Post("/commit", h.handleCommit)
	api.Get("/totals", h.handleTotals)
	api.Get("/ledger.xlsx", h.handleExport)
}

func (h *Handler) withLogger(c *fiber.Ctx) error {
	start := time.Now()
	c.SetUserContext(logger.WithContext(c.UserContext(), h.Log))

	err := c.Next()

	h.Log.Debug().
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", c.Response().StatusCode()).
		Dur("duration", time.Since(start)).
		Msg("Request handled")
	return err
}

func (h *Handler) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": Version,
	})
}

func (h *Handler) handleOptions(c *fiber.Ctx) error {
	categories := h.Categories
	if categories == nil {
		categories = models.Categories{}
	}
	return c.JSON(OptionsResponse{
		Accounts:   config.AccountNames(h.Accounts),
		Categories: categories,
	})
}

// handleStatement previews the entries of one uploaded statement. The
// upload's file name decides the account; nothing is written.
func (h *Handler) handleStatement(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "No file uploaded. Use form field 'file'.")
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".pdf" && ext != ".txt" {
		return writeError(c, fiber.StatusBadRequest, "Only .pdf and .txt statements are supported.")
	}

	tmpFile, err := os.CreateTemp("", "statement-*"+ext)
	if err != nil {
		return writeError(c, fiber.StatusInternalServerError, "Failed to create temp file.")
	}
	tmpPath := tmpFile.Name()
	tmpFile.Close()
	defer os.Remove(tmpPath)

	if err := c.SaveFile(header, tmpPath); err != nil {
		return writeError(c, fiber.StatusInternalServerError, "Failed to save uploaded file.")
	}

	lines, err := h.readLines(tmpPath)
	if err != nil {
		return writeError(c, fiber.StatusUnprocessableEntity, fmt.Sprintf("Text extraction failed: %v", err))
	}

	entries, err := h.importer().ImportLines(c.UserContext(), header.Filename, lines)
	if err != nil {
		return writeError(c, statusFor(err), err.Error())
	}

	return c.JSON(Response{
		Success:   true,
		Documents: []string{filepath.Base(header.Filename)},
		Entries:   nonNil(entries),
		Count:     len(entries),
	})
}

// handleImport previews every statement under the statement root stamped
// on or after the requested date.
func (h *Handler) handleImport(c *fiber.Ctx) error {
	var req ImportRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, fiber.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
	}
	if !req.Since.IsValid() {
		return writeError(c, fiber.StatusBadRequest, "Field 'since' must be a YYYY-MM-DD date.")
	}

	res, err := h.importer().ImportSince(c.UserContext(), h.StatementRoot, req.Since)
	if err != nil {
		return writeError(c, fiber.StatusInternalServerError, err.Error())
	}

	failures := make([]Failure, 0, len(res.Failures))
	for _, f := range res.Failures {
		failures = append(failures, Failure{Document: f.Document, Error: f.Err.Error()})
	}

	return c.JSON(Response{
		Success:   true,
		Batch:     res.Batch.ID.String(),
		Documents: res.Batch.Documents,
		Entries:   nonNil(res.Batch.Entries),
		Count:     res.Batch.Len(),
		Failures:  failures,
	})
}

// handleCommit merges the posted entries into the ledger and returns the
// new account balances.
func (h *Handler) handleCommit(c *fiber.Ctx) error {
	var req CommitRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, fiber.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
	}
	for i, e := range req.Entries {
		if err := e.ValidateFor(h.Accounts, h.Categories); err != nil {
			return writeError(c, fiber.StatusBadRequest, fmt.Sprintf("entry %d: %v", i, err))
		}
	}

	batch := models.NewBatch()
	batch.Add("api", req.Entries)
	count := batch.Len()

	h.commits.Lock()
	merged, err := ledger.Commit(c.UserContext(), h.Store, batch)
	h.commits.Unlock()
	if err != nil {
		return writeError(c, fiber.StatusInternalServerError, err.Error())
	}

	logger.FromContext(c.UserContext()).Info().
		Str("batch", batch.ID.String()).
		Int("entries", count).
		Int("ledger", len(merged)).
		Msg("Batch committed")

	return c.JSON(Response{
		Success: true,
		Batch:   batch.ID.String(),
		Entries: []models.Entry{},
		Count:   count,
		Totals:  ledger.Totals(merged, config.AccountNames(h.Accounts)),
	})
}

func (h *Handler) handleTotals(c *fiber.Ctx) error {
	entries, err := h.Store.Load(c.UserContext())
	if err != nil {
		return writeError(c, fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(Response{
		Success: true,
		Entries: []models.Entry{},
		Count:   len(entries),
		Totals:  ledger.Totals(entries, config.AccountNames(h.Accounts)),
	})
}

// handleExport downloads the stored ledger and its totals as a spreadsheet.
func (h *Handler) handleExport(c *fiber.Ctx) error {
	entries, err := h.Store.Load(c.UserContext())
	if err != nil {
		return writeError(c, fiber.StatusInternalServerError, err.Error())
	}

	var buf bytes.Buffer
	totals := ledger.Totals(entries, config.AccountNames(h.Accounts))
	if err := ledger.WriteXLSX(&buf, entries, totals); err != nil {
		return writeError(c, fiber.StatusInternalServerError, fmt.Sprintf("Export failed: %v", err))
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=\"ledger_%s.xlsx\"", time.Now().Format("20060102")))
	return c.Send(buf.Bytes())
}

func (h *Handler) importer() *importer.Importer {
	today := civil.DateOf(time.Now())
	if h.Today != nil {
		today = h.Today()
	}
	return &importer.Importer{
		Accounts:  h.Accounts,
		Today:     today,
		ReadLines: h.ReadLines,
	}
}

func (h *Handler) readLines(path string) ([]string, error) {
	if h.ReadLines != nil {
		return h.ReadLines(path)
	}
	return extractor.ReadLines(path)
}

// statusFor maps a statement failure to a response code. Statements that
// cannot be read as transactions are the client's problem.
func statusFor(err error) int {
	for _, target := range []error{
		parser.ErrNoMatchingAccount,
		parser.ErrNoGrammarMatches,
		parser.ErrSeparatorNotFound,
		parser.ErrUnparseableDate,
		parser.ErrUnparseableAmount,
		parser.ErrBlankStore,
	} {
		if errors.Is(err, target) {
			return fiber.StatusUnprocessableEntity
		}
	}
	return fiber.StatusInternalServerError
}

// nonNil keeps empty entry lists encoding as [] rather than null.
func nonNil(entries []models.Entry) []models.Entry {
	if entries == nil {
		return []models.Entry{}
	}
	return entries
}

func writeError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(Response{
		Success: false,
		Error:   msg,
		Entries: []models.Entry{},
	})
}
