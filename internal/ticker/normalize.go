// Package ticker canonicalizes symbol strings into the join key used
// across every table in the pipeline.
package ticker

import (
	"regexp"
	"strings"
)

var (
	exchangeSuffix = regexp.MustCompile(`\.(AX|ASX)$`)
	nonAlnum       = regexp.MustCompile(`[^0-9A-Z]+`)
)

// Normalize canonicalizes an arbitrary ticker string: uppercase,
// whitespace stripped, trailing .AX/.ASX exchange suffix removed, then
// every character outside [0-9A-Z] dropped.
//
// Idempotent; never fails. Empty input yields empty output; validity
// is the caller's concern.
func Normalize(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = exchangeSuffix.ReplaceAllString(s, "")
	return nonAlnum.ReplaceAllString(s, "")
}
