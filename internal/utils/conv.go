package utils

import (
	"strconv"
)

// StringToInt converts string to int, returns 0 if error
func StringToInt(s string) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return i
}

// PageNumber parses a 1-based page query value. Anything missing or below
// one becomes page 1.
func PageNumber(s string) int {
	if p := StringToInt(s); p > 1 {
		return p
	}
	return 1
}
