package parser

import (
	"iter"
	"regexp"
	"slices"
	"strings"
)

// Grammar is one of the fixed statement line layouts. The set is closed and
// ordered; SelectGrammar tries them in declaration order.
type Grammar int

const (
	// GrammarSlashDate matches "MM/DD[/YY][*] description $1,234.56".
	GrammarSlashDate Grammar = iota
	// GrammarMonthDay matches "Mon DD description -$ 1,234.56".
	GrammarMonthDay
)

// Every grammar captures the named groups date, purchase and price.
var grammarPatterns = [...]*regexp.Regexp{
	GrammarSlashDate: regexp.MustCompile(`(?P<date>\d{2}/\d{2})(?:/\d{2}\*?)?\s+(?P<purchase>[^$]+?)\s+(?P<price>[-$]*[\d,]+\.\d{2})`),
	GrammarMonthDay:  regexp.MustCompile(`(?:^|\s)(?P<date>\w{3} \d{2})\s+(?P<purchase>[^$]+)\s+(?P<price>[-$ ]*[\d,]+\.\d{2})`),
}

var grammarNames = [...]string{
	GrammarSlashDate: "slash-date",
	GrammarMonthDay:  "month-day",
}

// Grammars returns the grammar set in selection order.
func Grammars() []Grammar {
	return []Grammar{GrammarSlashDate, GrammarMonthDay}
}

func (g Grammar) String() string {
	if g < 0 || int(g) >= len(grammarNames) {
		return "unknown"
	}
	return grammarNames[g]
}

// RawEntry holds the text captured from one matching statement line.
type RawEntry struct {
	Line        int // 1-based position in the document
	DateText    string
	Description string
	PriceText   string
}

// Match applies the grammar to a single line.
func (g Grammar) Match(line string) (RawEntry, bool) {
	re := grammarPatterns[g]
	m := re.FindStringSubmatch(line)
	if m == nil {
		return RawEntry{}, false
	}
	return RawEntry{
		DateText:    m[re.SubexpIndex("date")],
		Description: strings.TrimSpace(m[re.SubexpIndex("purchase")]),
		PriceText:   m[re.SubexpIndex("price")],
	}, true
}

// SelectGrammar picks the first grammar that matches at least one line.
// A single incidental match on header or footer noise is enough to select
// a grammar.
func SelectGrammar(lines []string) (Grammar, error) {
	for _, g := range Grammars() {
		if slices.ContainsFunc(lines, grammarPatterns[g].MatchString) {
			return g, nil
		}
	}
	return 0, ErrNoGrammarMatches
}

// Matches yields the raw entries of every line the grammar matches, in
// document order. Lines that do not match are skipped. offset is added to
// the reported line numbers when lines is a region of a larger document.
func (g Grammar) Matches(lines []string, offset int) iter.Seq[RawEntry] {
	return func(yield func(RawEntry) bool) {
		for i, line := range lines {
			raw, ok := g.Match(line)
			if !ok {
				continue
			}
			raw.Line = offset + i + 1
			if !yield(raw) {
				return
			}
		}
	}
}
