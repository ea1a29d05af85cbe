package core

import "testing"

func TestParseSignedDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"0", 0, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"-1", -100, true},
		{"-20,00", -2000, true},
		{"+50", 5000, true},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"-", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseSignedDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestFormatBRL(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{0, "R$ 0,00"},
		{1, "R$ 0,01"},
		{1234, "R$ 12,34"},
		{-1234, "R$ 12,34"}, // sign conveyed by label, not glyph
		{130000, "R$ 1300,00"},
	}
	for _, tc := range cases {
		if got := FormatBRL(Money{Cents: tc.cents}); got != tc.want {
			t.Fatalf("FormatBRL(%d) = %q, want %q", tc.cents, got, tc.want)
		}
	}
}

func TestMoneyDirection(t *testing.T) {
	if !(Money{Cents: 0}).IsInflow() {
		t.Fatalf("zero must count as inflow")
	}
	if (Money{Cents: -1}).IsInflow() {
		t.Fatalf("negative must count as outflow")
	}
	if got := (Money{Cents: -250}).Abs(); got.Cents != 250 {
		t.Fatalf("Abs: got %d", got.Cents)
	}
}
