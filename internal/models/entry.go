package models

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Entry is a single ledger row, extracted from a statement or added by
// hand.
type Entry struct {
	Date    civil.Date      `json:"date"`
	Store   string          `json:"store"`
	Amount  decimal.Decimal `json:"amount"`
	Account string          `json:"account"`

	// Filled in by hand before a write; statements never set them.
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Subcategory string `json:"subcategory,omitempty"`
	Notes       string `json:"notes,omitempty"`

	// Extra holds ledger columns nothing here interprets, keyed by column
	// name, so they survive a load and save.
	Extra map[string]string `json:"extra,omitempty"`
}

// MarshalJSON writes the amount with exactly two decimal places.
func (e Entry) MarshalJSON() ([]byte, error) {
	type plain Entry
	return json.Marshal(struct {
		plain
		Amount string `json:"amount"`
	}{plain(e), e.Amount.StringFixed(2)})
}

// Validate reports whether every field of the entry is populated.
func (e Entry) Validate() error {
	switch {
	case !e.Date.IsValid():
		return fmt.Errorf("entry has invalid date %q", e.Date)
	case strings.TrimSpace(e.Store) == "":
		return fmt.Errorf("entry on %s has empty store", e.Date)
	case e.Account == "":
		return fmt.Errorf("entry on %s (%s) has no account", e.Date, e.Store)
	}
	return nil
}

// ValidateFor additionally checks the entry against the configured
// accounts and categories.
func (e Entry) ValidateFor(accounts []Account, categories Categories) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if !slices.ContainsFunc(accounts, func(a Account) bool { return a.Name == e.Account }) {
		return fmt.Errorf("entry on %s (%s): unknown account %q", e.Date, e.Store, e.Account)
	}
	if err := categories.Check(e.Category, e.Subcategory); err != nil {
		return fmt.Errorf("entry on %s (%s): %w", e.Date, e.Store, err)
	}
	return nil
}

// SignType is the sign convention an account's statements are printed in.
type SignType string

const (
	// SignDebit statements already show spends as negative amounts.
	SignDebit SignType = "debit"
	// SignCredit statements show spends as positive amounts, so every
	// parsed amount is negated.
	SignCredit SignType = "credit"
)

// ParseSignType accepts the configured account type, case-insensitively.
func ParseSignType(s string) (SignType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debit", "debit-style":
		return SignDebit, nil
	case "credit", "credit-style":
		return SignCredit, nil
	default:
		return "", fmt.Errorf("unknown account type %q (want debit or credit)", s)
	}
}

// Reverse reports whether amounts on this kind of statement are negated.
func (t SignType) Reverse() bool {
	return t == SignCredit
}

// Account is the configured identity of a statement source.
type Account struct {
	Name   string
	Prefix string
	Type   SignType
	// NegativeSeparator, when set, is the exact line at which the sign
	// convention flips within one statement.
	NegativeSeparator string
}

// Category is a spending category and the subcategories allowed under it.
type Category struct {
	Name          string   `json:"name"`
	Subcategories []string `json:"subcategories"`
}

// Categories is the configured category list. An empty list places no
// restriction on entries.
type Categories []Category

// Check reports whether category and subcategory may be used together.
// Both may be empty.
func (cs Categories) Check(category, subcategory string) error {
	if category == "" {
		if subcategory != "" {
			return fmt.Errorf("subcategory %q given without a category", subcategory)
		}
		return nil
	}
	if len(cs) == 0 {
		return nil
	}
	i := slices.IndexFunc(cs, func(c Category) bool { return c.Name == category })
	if i < 0 {
		return fmt.Errorf("unknown category %q", category)
	}
	if subcategory != "" && !slices.Contains(cs[i].Subcategories, subcategory) {
		return fmt.Errorf("unknown subcategory %q of %q", subcategory, category)
	}
	return nil
}

// Batch holds entries staged by an import run and not yet merged into
// the ledger.
type Batch struct {
	ID        uuid.UUID `json:"id"`
	Entries   []Entry   `json:"entries"`
	Documents []string  `json:"documents"`
}

// NewBatch returns an empty batch with a fresh ID.
func NewBatch() *Batch {
	return &Batch{ID: uuid.New()}
}

// Add stages the entries read from one document.
func (b *Batch) Add(document string, entries []Entry) {
	b.Documents = append(b.Documents, document)
	b.Entries = append(b.Entries, entries...)
}

// Len returns the number of staged entries.
func (b *Batch) Len() int {
	return len(b.Entries)
}

// Clear drops staged entries once they have been committed.
func (b *Batch) Clear() {
	b.Entries = nil
	b.Documents = nil
}
