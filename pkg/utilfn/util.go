// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package utilfn

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var lowerCaser = cases.Lower(language.English)

// Normalize returns the lowercase (English locale), trimmed form of s.
func Normalize(s string) string {
	return LowerCase(strings.TrimSpace(s))
}

// LowerCase returns the lowercase (English locale) form of s.
func LowerCase(s string) string {
	return lowerCaser.String(s)
}

// IsWhitespace reports whether r is whitespace as the document model
// defines it: space, tab, newline, form feed, or carriage return.
func IsWhitespace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\f' || r == '\r'
}

// IsLetterOrDigit reports whether r is a Unicode letter or digit.
func IsLetterOrDigit(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// IsNumeric reports whether s is non-empty and all ASCII digits.
func IsNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// SafeSubstring returns s[start:end] clamped to valid bounds.
func SafeSubstring(s string, start int, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(s) {
		end = len(s)
	}
	if start >= end {
		return ""
	}
	return s[start:end]
}

// IndentString prefixes each non-empty line of str with indent.
func IndentString(indent string, str string) string {
	splitArr := strings.Split(str, "\n")
	var rtn strings.Builder
	for _, line := range splitArr {
		if line == "" {
			rtn.WriteByte('\n')
			continue
		}
		rtn.WriteString(indent)
		rtn.WriteString(line)
		rtn.WriteByte('\n')
	}
	return rtn.String()
}
