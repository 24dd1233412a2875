// Package ledger merges imported entries into the persistent ledger and
// derives per-account totals from it.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/stevenh6696/bookkeeping-notebook/internal/models"
)

// Store loads and saves the full ledger. Save replaces whatever was stored
// before.
type Store interface {
	Load(ctx context.Context) ([]models.Entry, error)
	Save(ctx context.Context, entries []models.Entry) error
}

// Less orders entries by date, then account.
func Less(a, b models.Entry) bool {
	if a.Date != b.Date {
		return a.Date.Before(b.Date)
	}
	return a.Account < b.Account
}

// Sort orders entries in place by date and account, keeping the relative
// order of entries that tie.
func Sort(entries []models.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return Less(entries[i], entries[j])
	})
}

// Merge returns existing followed by pending, sorted. Neither input is
// modified and nothing is deduplicated.
func Merge(existing, pending []models.Entry) []models.Entry {
	merged := make([]models.Entry, 0, len(existing)+len(pending))
	merged = append(merged, existing...)
	merged = append(merged, pending...)
	Sort(merged)
	return merged
}

// Commit appends the batch to the stored ledger and saves the result in a
// single write. The batch is cleared only once the save succeeded.
func Commit(ctx context.Context, store Store, batch *models.Batch) ([]models.Entry, error) {
	for i, e := range batch.Entries {
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("pending entry %d: %w", i, err)
		}
	}

	existing, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}

	merged := Merge(existing, batch.Entries)
	if err := store.Save(ctx, merged); err != nil {
		return nil, fmt.Errorf("save ledger: %w", err)
	}

	batch.Clear()
	return merged, nil
}

// Total is the balance of one account.
type Total struct {
	Account string          `json:"account"`
	Amount  decimal.Decimal `json:"amount"`
}

// MarshalJSON writes the amount with exactly two decimal places.
func (t Total) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Account string `json:"account"`
		Amount  string `json:"amount"`
	}{t.Account, t.Amount.StringFixed(2)})
}

func (t Total) String() string {
	return fmt.Sprintf("%s: %s", t.Account, t.Amount.StringFixed(2))
}

// Totals sums the amounts of each requested account, rounded to cents.
// Accounts are reported in lexical order; accounts without entries total
// zero.
func Totals(entries []models.Entry, accounts []string) []Total {
	names := slices.Clone(accounts)
	slices.Sort(names)
	names = slices.Compact(names)

	sums := make(map[string]decimal.Decimal, len(names))
	for _, name := range names {
		sums[name] = decimal.Zero
	}
	for _, e := range entries {
		if sum, ok := sums[e.Account]; ok {
			sums[e.Account] = sum.Add(e.Amount)
		}
	}

	totals := make([]Total, 0, len(names))
	for _, name := range names {
		totals = append(totals, Total{Account: name, Amount: sums[name].Round(2)})
	}
	return totals
}

// FormatTotals renders totals one per line, as shown after a write.
func FormatTotals(totals []Total) string {
	var b strings.Builder
	b.WriteString("New account balances:")
	for _, t := range totals {
		b.WriteString("\n\t")
		b.WriteString(t.String())
	}
	return b.String()
}
