// Package utils holds the small parsing and paging helpers shared by the
// HTTP handlers, the bot and the services.
package utils

import (
	"math"
	"strconv"
	"strings"
)

// AtoiDefault parses s as a base-10 int after trimming spaces and returns def
// when s is blank or malformed.
func AtoiDefault(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// ParseCageID parses a cage number. Only positive integers are cage numbers.
func ParseCageID(s string) (int, bool) {
	n := AtoiDefault(s, 0)
	if n <= 0 {
		return 0, false
	}
	return n, true
}

// Clamp bounds n to [lo, hi].
func Clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

// PageOffset converts a 1-based page number into a row offset. Offsets that
// do not fit an int saturate at math.MaxInt.
func PageOffset(page, pageSize int) int {
	if page < 1 || pageSize < 1 {
		return 0
	}
	if page-1 > math.MaxInt/pageSize {
		return math.MaxInt
	}
	return (page - 1) * pageSize
}

// TotalPages returns how many pages of pageSize hold total rows.
func TotalPages(total int64, pageSize int) int {
	if total <= 0 || pageSize < 1 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}
