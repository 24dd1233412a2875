package parser

import (
	"errors"
	"slices"
	"testing"
)

func TestGrammarMatch(t *testing.T) {
	tests := []struct {
		name    string
		grammar Grammar
		line    string
		want    RawEntry
		match   bool
	}{
		{
			name:    "slash date with dollar amount",
			grammar: GrammarSlashDate,
			line:    "03/01 Payment $100.00",
			want:    RawEntry{DateText: "03/01", Description: "Payment", PriceText: "$100.00"},
			match:   true,
		},
		{
			name:    "slash date with trailing year and star",
			grammar: GrammarSlashDate,
			line:    "12/28/23* AMAZON MKTP US 1,234.56",
			want:    RawEntry{DateText: "12/28", Description: "AMAZON MKTP US", PriceText: "1,234.56"},
			match:   true,
		},
		{
			name:    "slash date with negative amount",
			grammar: GrammarSlashDate,
			line:    "02/14 ONLINE PAYMENT THANK YOU -$250.00",
			want:    RawEntry{DateText: "02/14", Description: "ONLINE PAYMENT THANK YOU", PriceText: "-$250.00"},
			match:   true,
		},
		{
			name:    "slash date without amount",
			grammar: GrammarSlashDate,
			line:    "Statement closing date 03/05",
			match:   false,
		},
		{
			name:    "month day inside line",
			grammar: GrammarMonthDay,
			line:    "1 Feb 10 COFFEE SHOP $ 4.50",
			want:    RawEntry{DateText: "Feb 10", Description: "COFFEE SHOP", PriceText: "$ 4.50"},
			match:   true,
		},
		{
			name:    "month day at line start",
			grammar: GrammarMonthDay,
			line:    "Mar 02 GROCERY OUTLET 56.10",
			want:    RawEntry{DateText: "Mar 02", Description: "GROCERY OUTLET", PriceText: "56.10"},
			match:   true,
		},
		{
			name:    "month day header",
			grammar: GrammarMonthDay,
			line:    "Trans Date Description Amount",
			match:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.grammar.Match(tt.line)
			if ok != tt.match {
				t.Fatalf("Match(%q): got match=%v, want %v", tt.line, ok, tt.match)
			}
			if got != tt.want {
				t.Errorf("Match(%q): got %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}

func TestSelectGrammar(t *testing.T) {
	tests := []struct {
		name     string
		lines    []string
		expected Grammar
		wantErr  bool
	}{
		{
			name:     "slash dates",
			lines:    []string{"ACME BANK", "Date Description Amount", "03/01 Payment $100.00"},
			expected: GrammarSlashDate,
		},
		{
			name:     "month day dates",
			lines:    []string{"ACME CARD", " Mar 01 Coffee Shop 4.50", "Page 1 of 2"},
			expected: GrammarMonthDay,
		},
		{
			name:     "first grammar wins when both match",
			lines:    []string{" Mar 01 Coffee Shop 4.50", "03/01 Payment $100.00"},
			expected: GrammarSlashDate,
		},
		{
			name:    "no transaction lines",
			lines:   []string{"ACME BANK", "Nothing to see here"},
			wantErr: true,
		},
		{
			name:    "empty document",
			lines:   nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SelectGrammar(tt.lines)
			if tt.wantErr {
				if !errors.Is(err, ErrNoGrammarMatches) {
					t.Errorf("expected ErrNoGrammarMatches, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("got %s, want %s", got, tt.expected)
			}
			// Selection must not depend on anything but the lines.
			again, _ := SelectGrammar(tt.lines)
			if again != got {
				t.Errorf("second selection got %s, want %s", again, got)
			}
		})
	}
}

func TestMatches_SkipsUnmatchedLines(t *testing.T) {
	lines := []string{
		"ACME BANK",
		"03/01 Payment $100.00",
		"   continued on next page",
		"",
		"03/02 Coffee Shop $4.50",
	}

	got := slices.Collect(GrammarSlashDate.Matches(lines, 0))
	if len(got) != 2 {
		t.Fatalf("entries: got %d, want 2", len(got))
	}
	if got[0].Line != 2 || got[1].Line != 5 {
		t.Errorf("line numbers: got %d and %d, want 2 and 5", got[0].Line, got[1].Line)
	}
	if got[1].Description != "Coffee Shop" {
		t.Errorf("description: got %q, want %q", got[1].Description, "Coffee Shop")
	}
}

func TestMatches_StopsEarly(t *testing.T) {
	lines := []string{"03/01 A $1.00", "03/02 B $2.00", "03/03 C $3.00"}

	var seen []string
	for raw := range GrammarSlashDate.Matches(lines, 10) {
		seen = append(seen, raw.Description)
		if raw.Line != 10+len(seen) {
			t.Errorf("line: got %d, want %d", raw.Line, 10+len(seen))
		}
		if len(seen) == 2 {
			break
		}
	}
	if len(seen) != 2 {
		t.Errorf("got %d entries, want 2", len(seen))
	}
}

func TestGrammarString(t *testing.T) {
	if GrammarSlashDate.String() != "slash-date" {
		t.Errorf("got %q", GrammarSlashDate.String())
	}
	if Grammar(99).String() != "unknown" {
		t.Errorf("got %q", Grammar(99).String())
	}
}
