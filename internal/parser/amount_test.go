package parser

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		wantErr  bool
	}{
		{"$1,234.56", "1234.56", false},
		{"-45.00", "-45.00", false},
		{"-$50.00", "-50.00", false},
		{"$ 4.50", "4.50", false},
		{"- $12.00", "-12.00", false},
		{"£25.99", "25.99", false},
		{"1,234,567.89", "1234567.89", false},
		{" 25.99 ", "25.99", false},
		{"0.00", "0", false},
		{"", "", true},
		{"$", "", true},
		{"-", "", true},
		{"--5.00", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrUnparseableAmount) {
					t.Errorf("expected ErrUnparseableAmount, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(decimal.RequireFromString(tt.expected)) {
				t.Errorf("ParseAmount(%q): got %s, want %s", tt.input, got, tt.expected)
			}
		})
	}
}

func TestApplySign(t *testing.T) {
	tests := []struct {
		input    string
		reverse  bool
		expected string
	}{
		{"$50.00", false, "50.00"},
		{"$50.00", true, "-50.00"},
		{"-$50.00", false, "-50.00"},
		{"-$50.00", true, "50.00"},
	}

	for _, tt := range tests {
		amount, err := ParseAmount(tt.input)
		if err != nil {
			t.Fatalf("ParseAmount(%q): %v", tt.input, err)
		}
		got := ApplySign(amount, tt.reverse)
		if !got.Equal(decimal.RequireFromString(tt.expected)) {
			t.Errorf("ApplySign(%q, %v): got %s, want %s", tt.input, tt.reverse, got, tt.expected)
		}
	}
}
