package ledger

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/stevenh6696/bookkeeping-notebook/internal/models"
)

// csvColumns are the columns every ledger file has.
var csvColumns = []string{"date", "store", "amount", "account"}

// detailColumns are optional columns mapped onto Entry fields. They are
// written only when the existing file or some entry uses them.
var detailColumns = []string{"description", "category", "subcategory", "notes"}

// CSVStore keeps the ledger in a flat CSV file.
type CSVStore struct {
	Path string
}

// NewCSVStore returns a store backed by the file at path. The file does not
// need to exist yet.
func NewCSVStore(path string) *CSVStore {
	return &CSVStore{Path: path}
}

// Load reads every row of the ledger file. A missing file is an empty
// ledger.
func (s *CSVStore) Load(ctx context.Context) ([]models.Entry, error) {
	f, err := os.Open(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open ledger %q: %w", s.Path, err)
	}
	defer f.Close()

	return ReadCSV(f)
}

// Save rewrites the ledger file with entries. The new content is written
// to a temporary file and renamed over the old one. The existing header
// order is kept and columns are only ever added.
func (s *CSVStore) Save(ctx context.Context, entries []models.Entry) error {
	existing, err := s.header()
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create ledger directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".ledger-*.csv")
	if err != nil {
		return fmt.Errorf("failed to create temp ledger file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := writeCSV(tmp, Columns(existing, entries), entries); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp ledger file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("failed to replace ledger %q: %w", s.Path, err)
	}
	return nil
}

// header returns the column names of the current ledger file, or nil when
// there is no file yet.
func (s *CSVStore) header() ([]string, error) {
	f, err := os.Open(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open ledger %q: %w", s.Path, err)
	}
	defer f.Close()

	header, err := csv.NewReader(f).Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read CSV header: %w", err)
	}
	return header, nil
}

// Columns returns the header for writing entries: existing in its order,
// then any required or used column it lacks.
func Columns(existing []string, entries []models.Entry) []string {
	columns := slices.Clone(existing)
	add := func(name string) {
		if !slices.Contains(columns, name) {
			columns = append(columns, name)
		}
	}

	for _, c := range csvColumns {
		add(c)
	}
	for _, c := range detailColumns {
		if slices.ContainsFunc(entries, func(e models.Entry) bool { return field(e, c) != "" }) {
			add(c)
		}
	}

	var extra []string
	for _, e := range entries {
		for name := range e.Extra {
			if !isKnownColumn(name) && !slices.Contains(extra, name) {
				extra = append(extra, name)
			}
		}
	}
	slices.Sort(extra)
	for _, c := range extra {
		add(c)
	}
	return columns
}

// WriteCSV writes the header and one row per entry.
func WriteCSV(out io.Writer, entries []models.Entry) error {
	return writeCSV(out, Columns(nil, entries), entries)
}

func writeCSV(out io.Writer, columns []string, entries []models.Entry) error {
	writer := csv.NewWriter(out)

	if err := writer.Write(columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	row := make([]string, len(columns))
	for _, e := range entries {
		for i, c := range columns {
			row[i] = field(e, c)
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// field returns the text of column name for e.
func field(e models.Entry, name string) string {
	switch name {
	case "date":
		return e.Date.String()
	case "store":
		return e.Store
	case "amount":
		return e.Amount.StringFixed(2)
	case "account":
		return e.Account
	case "description":
		return e.Description
	case "category":
		return e.Category
	case "subcategory":
		return e.Subcategory
	case "notes":
		return e.Notes
	default:
		return e.Extra[name]
	}
}

func isKnownColumn(name string) bool {
	return slices.Contains(csvColumns, name) || slices.Contains(detailColumns, name)
}

// ReadCSV parses a ledger file. Columns are located by header name; columns
// other than the entry fields are kept in Entry.Extra.
func ReadCSV(in io.Reader) ([]models.Entry, error) {
	reader := csv.NewReader(in)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read CSV header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}
	for _, col := range csvColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("ledger is missing column %q", col)
		}
	}

	var entries []models.Entry
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read CSV row %d: %w", line, err)
		}
		if len(record) < len(header) {
			return nil, fmt.Errorf("row %d: got %d fields, want %d", line, len(record), len(header))
		}

		date, err := civil.ParseDate(record[index["date"]])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		amount, err := decimal.NewFromString(record[index["amount"]])
		if err != nil {
			return nil, fmt.Errorf("row %d: amount: %w", line, err)
		}
		e := models.Entry{
			Date:    date,
			Store:   record[index["store"]],
			Amount:  amount,
			Account: record[index["account"]],
		}
		for i, name := range header {
			value := record[i]
			switch name {
			case "description":
				e.Description = value
			case "category":
				e.Category = value
			case "subcategory":
				e.Subcategory = value
			case "notes":
				e.Notes = value
			default:
				if isKnownColumn(name) || value == "" {
					continue
				}
				if e.Extra == nil {
					e.Extra = make(map[string]string)
				}
				e.Extra[name] = value
			}
		}
		entries = append(entries, e)
	}
	return entries, nil
}
