package utils

import "testing"

func TestFormatMoney(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{10.456, "$10.46"},
		{1234.5, "$1,234.50"},
		{1234567.891, "$1,234,567.89"},
		{-98765.4, "-$98,765.40"},
	}
	for _, tc := range cases {
		if got := FormatMoney(tc.in); got != tc.want {
			t.Errorf("FormatMoney(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(0.05); got != "5.00%" {
		t.Errorf("FormatPercent(0.05) = %q", got)
	}
	if got := FormatPercent(0.2345); got != "23.45%" {
		t.Errorf("FormatPercent(0.2345) = %q", got)
	}
}

func TestFormatCount(t *testing.T) {
	if got := FormatCount(10000); got != "10,000" {
		t.Errorf("FormatCount(10000) = %q", got)
	}
	if got := FormatCount(-999); got != "-999" {
		t.Errorf("FormatCount(-999) = %q", got)
	}
}
