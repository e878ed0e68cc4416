// Package normalizer pulls dates and monetary amounts out of raw statement lines.
package normalizer

import (
	"regexp"
)

const monthAbbrev = `(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?`

// datePatterns are tried in order; the first pattern with a match wins.
var datePatterns = []*regexp.Regexp{
	// 01/02/2024, 1.2.24, 15-03-2024, and year-first 2024-03-15
	regexp.MustCompile(`\b(?:\d{4}[./-]\d{1,2}[./-]\d{1,2}|\d{1,2}[./-]\d{1,2}[./-](?:\d{4}|\d{2}))\b`),
	// 15 Mar 2024, 5 January 24
	regexp.MustCompile(`(?i)\b\d{1,2}\s+` + monthAbbrev + `\s+(?:\d{4}|\d{2})\b`),
	// Mar 15, 2024
	regexp.MustCompile(`(?i)\b` + monthAbbrev + `\s+\d{1,2},\s*\d{4}\b`),
}

// ExtractDate returns the first date-like substring in line, or "" when none is found.
// The substring is returned verbatim; no calendar validation is performed.
func ExtractDate(line string) string {
	for _, re := range datePatterns {
		if m := re.FindString(line); m != "" {
			return m
		}
	}
	return ""
}
