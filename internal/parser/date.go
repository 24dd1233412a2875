package parser

import (
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// Statement date layouts, tried in order. Neither carries a year.
var dateLayouts = []string{
	"01/02",  // 02/10
	"Jan 02", // Feb 10, month name matched case-insensitively
}

// ResolveDate parses a month/day statement date and places it in the most
// recent year that does not put it after today: a December entry read in
// January belongs to last year. Entries more than a year old resolve to
// the wrong year.
func ResolveDate(text string, today civil.Date) (civil.Date, error) {
	text = strings.TrimSpace(text)

	var (
		parsed time.Time
		err    error
	)
	for _, layout := range dateLayouts {
		parsed, err = time.Parse(layout, text)
		if err == nil {
			break
		}
	}
	if err != nil {
		return civil.Date{}, fmt.Errorf("%q: %w", text, ErrUnparseableDate)
	}

	guess := civil.Date{Year: today.Year, Month: parsed.Month(), Day: parsed.Day()}
	if !guess.IsValid() || guess.After(today) {
		guess.Year--
	}
	// Feb 29 may not exist in either candidate year.
	if !guess.IsValid() {
		return civil.Date{}, fmt.Errorf("%q has no valid year near %s: %w", text, today, ErrUnparseableDate)
	}
	return guess, nil
}
