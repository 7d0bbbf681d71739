package utils

import (
	"math"
	"testing"
)

func TestAtoiDefault(t *testing.T) {
	cases := []struct {
		s    string
		def  int
		want int
	}{
		{"", 10, 10},
		{"   ", 3, 3},
		{"42", 0, 42},
		{" 42 ", 7, 42},
		{"-13", 1, -13},
		{"0012", 99, 12},
		{"x", 5, 5},
		{"4.5", 2, 2},
		// overflow -> default
		{"999999999999999999999999", -1, -1},
	}

	for _, tc := range cases {
		if got := AtoiDefault(tc.s, tc.def); got != tc.want {
			t.Fatalf("AtoiDefault(%q, %d) = %d; want %d", tc.s, tc.def, got, tc.want)
		}
	}
}

func TestParseCageID(t *testing.T) {
	good := map[string]int{"1": 1, "17": 17, " 5 ": 5}
	for in, want := range good {
		if got, ok := ParseCageID(in); !ok || got != want {
			t.Fatalf("ParseCageID(%q) = %d,%v", in, got, ok)
		}
	}
	for _, in := range []string{"", "0", "-3", "cage", "3a"} {
		if got, ok := ParseCageID(in); ok || got != 0 {
			t.Fatalf("ParseCageID(%q) = %d,%v; want rejection", in, got, ok)
		}
	}
}

func TestClamp(t *testing.T) {
	cases := []struct{ n, lo, hi, want int }{
		{0, 1, 100, 1},
		{50, 1, 100, 50},
		{500, 1, 100, 100},
		{1, 1, 1, 1},
	}
	for _, tc := range cases {
		if got := Clamp(tc.n, tc.lo, tc.hi); got != tc.want {
			t.Fatalf("Clamp(%d,%d,%d) = %d; want %d", tc.n, tc.lo, tc.hi, got, tc.want)
		}
	}
}

func TestPageOffsetAndTotalPages(t *testing.T) {
	if got := PageOffset(1, 20); got != 0 {
		t.Fatalf("first page offset = %d", got)
	}
	if got := PageOffset(3, 20); got != 40 {
		t.Fatalf("third page offset = %d", got)
	}
	if got := PageOffset(0, 20); got != 0 {
		t.Fatalf("invalid page offset = %d", got)
	}
	if got := PageOffset(math.MaxInt, 100); got != math.MaxInt {
		t.Fatalf("huge page offset = %d; want saturation", got)
	}
	if got := PageOffset(math.MaxInt/20+1, 20); got != math.MaxInt/20*20 {
		t.Fatalf("largest exact offset = %d", got)
	}

	cases := []struct {
		total int64
		size  int
		want  int
	}{
		{0, 20, 0},
		{1, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
		{5, 0, 0},
	}
	for _, tc := range cases {
		if got := TotalPages(tc.total, tc.size); got != tc.want {
			t.Fatalf("TotalPages(%d,%d) = %d; want %d", tc.total, tc.size, got, tc.want)
		}
	}
}
