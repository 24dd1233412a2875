// Package importer runs statements through the extraction pipeline and
// stages the resulting entries for a ledger write.
package importer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"cloud.google.com/go/civil"

	"github.com/stevenh6696/bookkeeping-notebook/internal/discovery"
	"github.com/stevenh6696/bookkeeping-notebook/internal/extractor"
	"github.com/stevenh6696/bookkeeping-notebook/internal/ledger"
	"github.com/stevenh6696/bookkeeping-notebook/internal/logger"
	"github.com/stevenh6696/bookkeeping-notebook/internal/models"
	"github.com/stevenh6696/bookkeeping-notebook/internal/parser"
)

// LineReader returns the text lines of a statement document.
type LineReader func(path string) ([]string, error)

// Importer reads statements for a fixed set of accounts.
type Importer struct {
	Accounts []models.Account
	// Today anchors year resolution of statement dates.
	Today civil.Date
	// ReadLines defaults to extractor.ReadLines.
	ReadLines LineReader
}

// DocumentError records why one statement contributed nothing.
type DocumentError struct {
	Document string
	Err      error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("%s: %v", e.Document, e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}

// Result is a staged batch and the statements that failed.
type Result struct {
	Batch    *models.Batch
	Failures []*DocumentError
}

// ImportDocument extracts the entries of a single statement, tagged with
// the account its filename resolves to.
func (im *Importer) ImportDocument(ctx context.Context, path string) ([]models.Entry, error) {
	return im.importLines(ctx, filepath.Base(path), func() ([]string, error) {
		return im.readLines(path)
	})
}

// ImportLines is ImportDocument for lines that were already extracted.
// name is the document's file name and decides the account.
func (im *Importer) ImportLines(ctx context.Context, name string, lines []string) ([]models.Entry, error) {
	return im.importLines(ctx, filepath.Base(name), func() ([]string, error) {
		return lines, nil
	})
}

func (im *Importer) importLines(ctx context.Context, name string, read func() ([]string, error)) ([]models.Entry, error) {
	log := logger.FromContext(ctx).With().Str("document", name).Logger()

	acct, err := parser.ResolveAccount(im.Accounts, name)
	if err != nil {
		return nil, &DocumentError{Document: name, Err: err}
	}

	lines, err := read()
	if err != nil {
		return nil, &DocumentError{Document: name, Err: err}
	}

	x := parser.Extractor{Today: im.Today}
	st, err := x.Statement(lines, acct)
	if err != nil {
		return nil, &DocumentError{Document: name, Err: err}
	}

	entries := make([]models.Entry, len(st.Entries))
	for i, e := range st.Entries {
		e.Account = acct.Name
		if err := e.Validate(); err != nil {
			return nil, &DocumentError{Document: name, Err: err}
		}
		entries[i] = e
	}

	log.Debug().
		Str("account", acct.Name).
		Stringer("grammar", st.Grammar).
		Int("lines", len(lines)).
		Int("entries", len(entries)).
		Msg("Statement extracted")
	return entries, nil
}

// ImportSince stages every statement under root stamped on or after
// minDate. Statements are processed one at a time; a failing statement is
// reported in Failures and does not stop the others.
func (im *Importer) ImportSince(ctx context.Context, root string, minDate civil.Date) (*Result, error) {
	log := logger.FromContext(ctx)

	names, err := discovery.FindStatements(root, minDate)
	if err != nil {
		return nil, err
	}

	res := &Result{Batch: models.NewBatch()}
	for _, name := range names {
		entries, err := im.ImportDocument(ctx, filepath.Join(root, name))
		if err != nil {
			log.Warn().Err(err).Str("document", name).Msg("Statement skipped")
			res.Failures = append(res.Failures, asDocumentError(name, err))
			continue
		}
		res.Batch.Add(name, entries)
	}
	ledger.Sort(res.Batch.Entries)

	log.Info().
		Str("batch", res.Batch.ID.String()).
		Int("documents", len(res.Batch.Documents)).
		Int("entries", res.Batch.Len()).
		Int("failures", len(res.Failures)).
		Msg("Import finished")
	return res, nil
}

func (im *Importer) readLines(path string) ([]string, error) {
	if im.ReadLines != nil {
		return im.ReadLines(path)
	}
	return extractor.ReadLines(path)
}

func asDocumentError(name string, err error) *DocumentError {
	var de *DocumentError
	if errors.As(err, &de) {
		return de
	}
	return &DocumentError{Document: name, Err: err}
}
