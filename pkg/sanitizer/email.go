// Package sanitizer normalizes user-supplied identifiers before they are
// used as lookup keys.
package sanitizer

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// FoldEmail returns the caseless form of an email address: surrounding
// whitespace removed, Unicode full case folding applied and the result
// NFKC-normalized. Two addresses that differ only in case fold to the
// same string.
func FoldEmail(email string) string {
	email = strings.TrimSpace(email)
	if email == "" {
		return ""
	}
	return norm.NFKC.String(cases.Fold().String(email))
}
