package handlers

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"empty is zero", "", "0", false},
		{"whitespace is zero", "   ", "0", false},
		{"plain value", "129.99", "129.99", false},
		{"negative allowed", "-80", "-80", false},
		{"garbage rejected", "12,50", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseMoney(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse %q: %v", tt.raw, err)
			}
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestParseOptionalPercent(t *testing.T) {
	// пустая строка и явный ноль — разные вещи
	got, err := parseOptionalPercent("")
	if err != nil {
		t.Fatalf("empty: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for empty input, got %s", got)
	}

	got, err = parseOptionalPercent("0")
	if err != nil {
		t.Fatalf("zero: %v", err)
	}
	if got == nil || !got.IsZero() {
		t.Fatalf("expected explicit zero, got %v", got)
	}

	got, err = parseOptionalPercent("12.5")
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	if got == nil || !got.Equal(decimal.RequireFromString("12.5")) {
		t.Fatalf("expected 12.5, got %v", got)
	}

	if _, err := parseOptionalPercent("ten"); err == nil {
		t.Fatal("expected error for non-numeric percent")
	}
}

func TestParseDateOrToday(t *testing.T) {
	got, err := parseDateOrToday("2026-03-01")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.Year() != 2026 || got.Month() != time.March || got.Day() != 1 {
		t.Fatalf("expected 2026-03-01, got %s", got)
	}

	today, err := parseDateOrToday("")
	if err != nil {
		t.Fatalf("empty: %v", err)
	}
	now := time.Now()
	if today.Year() != now.Year() || today.YearDay() != now.YearDay() {
		t.Fatalf("expected today, got %s", today)
	}

	if _, err := parseDateOrToday("01.03.2026"); err == nil {
		t.Fatal("expected error for wrong date format")
	}
}
