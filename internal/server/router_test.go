package server

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "$0.00"},
		{"5", "$5.00"},
		{"129.9", "$129.90"},
		{"1234.56", "$1,234.56"},
		{"1234567.89", "$1,234,567.89"},
		{"-80", "-$80.00"},
		{"-1234.5", "-$1,234.50"},
	}
	for _, tt := range tests {
		got := formatMoney(decimal.RequireFromString(tt.in))
		if got != tt.want {
			t.Errorf("formatMoney(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
