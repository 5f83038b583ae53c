package analytics

import (
	"regexp"
	"strings"
)

var (
	nonAlnumPattern   = regexp.MustCompile(`[^a-z0-9\s]`)
	stopWordPattern   = regexp.MustCompile(`\b(za|pty|ltd|store|branch|online|approved|payment)\b`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// NormalizeMerchant canonicalizes a free-text transaction description into a
// stable merchant key, so "CHECKERS SEA PNT ZA (Card 1234)" and
// "Checkers Sea Pnt" group together. It never fails; empty input yields an
// empty string.
func NormalizeMerchant(description string) string {
	s := strings.ToLower(description)
	s = nonAlnumPattern.ReplaceAllString(s, "")
	s = stopWordPattern.ReplaceAllString(s, "")
	s = whitespacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
