// Package discovery finds statement documents waiting to be imported.
package discovery

import (
	"fmt"
	"os"
	"regexp"

	"cloud.google.com/go/civil"
)

// stampPattern matches the statement date embedded in a file name,
// e.g. "visa_statement_2024-03-01.pdf".
var stampPattern = regexp.MustCompile(`(?P<date>\d{4}-\d{2}-\d{2})\.(?:pdf|txt)$`)

// Stamp returns the statement date embedded in name.
func Stamp(name string) (civil.Date, bool) {
	m := stampPattern.FindStringSubmatch(name)
	if m == nil {
		return civil.Date{}, false
	}
	d, err := civil.ParseDate(m[stampPattern.SubexpIndex("date")])
	if err != nil {
		return civil.Date{}, false
	}
	return d, true
}

// FindStatements lists the statement files directly under root whose date
// stamp is on or after minDate, in lexical order.
func FindStatements(root string, minDate civil.Date) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("list statements in %s: %w", root, err)
	}

	var names []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		stamp, ok := Stamp(e.Name())
		if !ok || stamp.Before(minDate) {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}
