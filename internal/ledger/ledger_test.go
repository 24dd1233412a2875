package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stevenh6696/bookkeeping-notebook/internal/models"
)

func entry(date, store, amount, account string) models.Entry {
	d, err := civil.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return models.Entry{
		Date:    d,
		Store:   store,
		Amount:  decimal.RequireFromString(amount),
		Account: account,
	}
}

// memStore is an in-memory Store that can be told to fail.
type memStore struct {
	entries []models.Entry
	loadErr error
	saveErr error
	saves   int
}

func (m *memStore) Load(ctx context.Context) ([]models.Entry, error) {
	return m.entries, m.loadErr
}

func (m *memStore) Save(ctx context.Context, entries []models.Entry) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.entries = entries
	return nil
}

func TestMerge_SortsByDateThenAccount(t *testing.T) {
	existing := []models.Entry{
		entry("2024-03-01", "rent", "-1000.00", "Checking"),
		entry("2024-03-03", "coffee", "-4.50", "Visa"),
	}
	pending := []models.Entry{
		entry("2024-03-02", "grocer", "-50.00", "Visa"),
		entry("2024-03-01", "book", "-12.00", "Amex"),
		entry("2024-03-03", "salary", "2000.00", "Checking"),
	}

	got := Merge(existing, pending)

	var stores []string
	for _, e := range got {
		stores = append(stores, e.Store)
	}
	assert.Equal(t, []string{"book", "rent", "grocer", "salary", "coffee"}, stores)
	assert.Len(t, existing, 2, "existing must not be modified")
	assert.Equal(t, "grocer", pending[0].Store, "pending must not be modified")
}

func TestMerge_StableOnTies(t *testing.T) {
	existing := []models.Entry{
		entry("2024-03-05", "first", "-1.00", "Visa"),
		entry("2024-03-05", "second", "-2.00", "Visa"),
	}
	pending := []models.Entry{
		entry("2024-03-05", "third", "-3.00", "Visa"),
		entry("2024-03-04", "earlier", "-4.00", "Visa"),
	}

	got := Merge(existing, pending)
	require.Len(t, got, 4)
	assert.Equal(t, "earlier", got[0].Store)
	assert.Equal(t, "first", got[1].Store)
	assert.Equal(t, "second", got[2].Store)
	assert.Equal(t, "third", got[3].Store)

	// Sorting an already sorted ledger changes nothing.
	again := Merge(got, nil)
	assert.Equal(t, got, again)
}

func TestMerge_KeepsDuplicates(t *testing.T) {
	e := entry("2024-03-05", "coffee", "-4.50", "Visa")
	got := Merge([]models.Entry{e}, []models.Entry{e})
	assert.Len(t, got, 2)
}

func TestCommit(t *testing.T) {
	store := &memStore{entries: []models.Entry{entry("2024-03-02", "rent", "-1000.00", "Checking")}}
	batch := models.NewBatch()
	batch.Add("visa-2024-03-05.pdf", []models.Entry{entry("2024-03-01", "coffee", "-4.50", "Visa")})

	merged, err := Commit(context.Background(), store, batch)
	require.NoError(t, err)
	require.Len(t, merged, 2)
	assert.Equal(t, "coffee", merged[0].Store)
	assert.Equal(t, 1, store.saves)
	assert.Equal(t, merged, store.entries)
	assert.Zero(t, batch.Len(), "batch should be cleared after commit")
	assert.Empty(t, batch.Documents)
}

func TestCommit_FailureKeepsBatch(t *testing.T) {
	batch := models.NewBatch()
	batch.Add("visa-2024-03-05.pdf", []models.Entry{entry("2024-03-01", "coffee", "-4.50", "Visa")})

	_, err := Commit(context.Background(), &memStore{saveErr: errors.New("disk full")}, batch)
	require.Error(t, err)
	assert.Equal(t, 1, batch.Len())

	_, err = Commit(context.Background(), &memStore{loadErr: errors.New("corrupt")}, batch)
	require.Error(t, err)
	assert.Equal(t, 1, batch.Len())
}

func TestCommit_RejectsIncompleteEntries(t *testing.T) {
	store := &memStore{}
	batch := models.NewBatch()
	batch.Add("x.pdf", []models.Entry{entry("2024-03-01", "coffee", "-4.50", "")})

	_, err := Commit(context.Background(), store, batch)
	require.Error(t, err)
	assert.Zero(t, store.saves)
}

func TestTotals(t *testing.T) {
	entries := []models.Entry{
		entry("2024-03-01", "a", "-10.00", "A"),
		entry("2024-03-02", "b", "5.00", "A"),
		entry("2024-03-03", "c", "20.00", "B"),
		entry("2024-03-03", "d", "99.99", "Other"),
	}

	got := Totals(entries, []string{"B", "A", "Empty", "A"})
	require.Len(t, got, 3)

	assert.Equal(t, "A", got[0].Account)
	assert.True(t, got[0].Amount.Equal(decimal.RequireFromString("-5.00")), "A total %s", got[0].Amount)
	assert.Equal(t, "B", got[1].Account)
	assert.True(t, got[1].Amount.Equal(decimal.RequireFromString("20.00")), "B total %s", got[1].Amount)
	assert.Equal(t, "Empty", got[2].Account)
	assert.Equal(t, "0.00", got[2].Amount.StringFixed(2))
}

func TestTotals_RoundsToCents(t *testing.T) {
	entries := []models.Entry{
		entry("2024-03-01", "a", "0.1", "A"),
		entry("2024-03-01", "b", "0.2", "A"),
		entry("2024-03-01", "c", "0.005", "A"),
	}
	got := Totals(entries, []string{"A"})
	assert.Equal(t, "A: 0.31", got[0].String())
}

func TestFormatTotals(t *testing.T) {
	totals := []Total{
		{Account: "A", Amount: decimal.RequireFromString("-5")},
		{Account: "B", Amount: decimal.RequireFromString("20")},
	}
	assert.Equal(t, "New account balances:\n\tA: -5.00\n\tB: 20.00", FormatTotals(totals))
}

func TestTotal_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(Totals([]models.Entry{entry("2024-03-01", "a", "-5", "A")}, []string{"A", "B"}))
	require.NoError(t, err)
	assert.JSONEq(t, `[{"account":"A","amount":"-5.00"},{"account":"B","amount":"0.00"}]`, string(b))
}
