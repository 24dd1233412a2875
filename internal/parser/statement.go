package parser

import (
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/stevenh6696/bookkeeping-notebook/internal/models"
)

// Statement is the result of reading one document's lines.
type Statement struct {
	Grammar Grammar
	Entries []models.Entry
}

// Extractor turns statement lines into normalised, untagged entries.
type Extractor struct {
	// Today anchors year resolution for statement dates.
	Today civil.Date
}

// SplitAtSeparator splits lines at the first line exactly equal to sep.
// The separator line starts the tail region.
func SplitAtSeparator(lines []string, sep string) (head, tail []string, err error) {
	for i, line := range lines {
		if line == sep {
			return lines[:i], lines[i:], nil
		}
	}
	return nil, nil, fmt.Errorf("%q: %w", sep, ErrSeparatorNotFound)
}

// Statement reads a whole document for acct. Accounts with a negative
// separator have their head and tail regions read with opposite sign
// conventions; the grammar is chosen once for the whole document.
func (x Extractor) Statement(lines []string, acct models.Account) (*Statement, error) {
	g, err := SelectGrammar(lines)
	if err != nil {
		return nil, err
	}
	reverse := acct.Type.Reverse()

	if acct.NegativeSeparator == "" {
		entries, err := x.normalize(g, lines, 0, reverse)
		if err != nil {
			return nil, err
		}
		return &Statement{Grammar: g, Entries: entries}, nil
	}

	head, tail, err := SplitAtSeparator(lines, acct.NegativeSeparator)
	if err != nil {
		return nil, err
	}
	first, err := x.normalize(g, head, 0, reverse)
	if err != nil {
		return nil, err
	}
	second, err := x.normalize(g, tail, len(head), !reverse)
	if err != nil {
		return nil, err
	}
	return &Statement{Grammar: g, Entries: append(first, second...)}, nil
}

func (x Extractor) normalize(g Grammar, lines []string, offset int, reverse bool) ([]models.Entry, error) {
	var entries []models.Entry
	for raw := range g.Matches(lines, offset) {
		e, err := x.Normalize(raw, reverse)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Normalize resolves the captured date and amount of one line.
func (x Extractor) Normalize(raw RawEntry, reverse bool) (models.Entry, error) {
	if raw.Description == "" {
		return models.Entry{}, fmt.Errorf("line %d: %w", raw.Line, ErrBlankStore)
	}
	date, err := ResolveDate(raw.DateText, x.Today)
	if err != nil {
		return models.Entry{}, fmt.Errorf("line %d: %w", raw.Line, err)
	}
	amount, err := ParseAmount(raw.PriceText)
	if err != nil {
		return models.Entry{}, fmt.Errorf("line %d: %w", raw.Line, err)
	}
	return models.Entry{
		Date:   date,
		Store:  raw.Description,
		Amount: ApplySign(amount, reverse),
	}, nil
}
