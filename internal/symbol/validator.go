// Package symbol decides which tickers are eligible for aggregation.
package symbol

import (
	"regexp"
	"strings"
)

// validPattern matches 1 to 4 uppercase Latin letters and nothing else.
var validPattern = regexp.MustCompile(`^[A-Z]{1,4}$`)

// IsValid reports whether a ticker is eligible for aggregation.
//
// Rejected: empty strings, anything containing the substring "TEST"
// (exchange test issues), anything containing '.', '^' or '/' (share
// classes, indices, units), and anything outside 1-4 uppercase letters.
func IsValid(ticker string) bool {
	if ticker == "" {
		return false
	}
	if strings.Contains(ticker, "TEST") {
		return false
	}
	if strings.ContainsAny(ticker, ".^/") {
		return false
	}
	return validPattern.MatchString(ticker)
}
