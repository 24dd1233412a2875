package parser

import (
	"errors"
	"fmt"
	"testing"

	"cloud.google.com/go/civil"
)

var testToday = civil.Date{Year: 2024, Month: 3, Day: 15}

func TestResolveDate(t *testing.T) {
	tests := []struct {
		input    string
		today    civil.Date
		expected civil.Date
		wantErr  bool
	}{
		{"02/10", testToday, civil.Date{Year: 2024, Month: 2, Day: 10}, false},
		{"12/25", testToday, civil.Date{Year: 2023, Month: 12, Day: 25}, false},
		{"03/15", testToday, civil.Date{Year: 2024, Month: 3, Day: 15}, false},
		{"03/16", testToday, civil.Date{Year: 2023, Month: 3, Day: 16}, false},
		{"Feb 10", testToday, civil.Date{Year: 2024, Month: 2, Day: 10}, false},
		{"DEC 31", testToday, civil.Date{Year: 2023, Month: 12, Day: 31}, false},
		{"jan 05", civil.Date{Year: 2025, Month: 1, Day: 2}, civil.Date{Year: 2024, Month: 1, Day: 5}, false},
		{"02/29", testToday, civil.Date{Year: 2024, Month: 2, Day: 29}, false},
		{"02/29", civil.Date{Year: 2025, Month: 3, Day: 1}, civil.Date{Year: 2024, Month: 2, Day: 29}, false},
		{"02/29", civil.Date{Year: 2026, Month: 3, Day: 1}, civil.Date{}, true},
		{"13/01", testToday, civil.Date{}, true},
		{"Foo 10", testToday, civil.Date{}, true},
		{"", testToday, civil.Date{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input+"@"+tt.today.String(), func(t *testing.T) {
			got, err := ResolveDate(tt.input, tt.today)
			if tt.wantErr {
				if !errors.Is(err, ErrUnparseableDate) {
					t.Errorf("expected ErrUnparseableDate, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("ResolveDate(%q): got %s, want %s", tt.input, got, tt.expected)
			}
		})
	}
}

func TestResolveDate_NeverInFuture(t *testing.T) {
	for month := 1; month <= 12; month++ {
		for _, day := range []int{1, 15, 28} {
			text := fmt.Sprintf("%02d/%02d", month, day)
			got, err := ResolveDate(text, testToday)
			if err != nil {
				t.Fatalf("%s: unexpected error: %v", text, err)
			}
			if got.After(testToday) {
				t.Errorf("%s resolved to %s, after today", text, got)
			}
			if testToday.DaysSince(got) >= 366 {
				t.Errorf("%s resolved to %s, more than a year back", text, got)
			}
		}
	}
}
