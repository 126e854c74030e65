package utils

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// Slugify lowercases the input and collapses every non-alphanumeric run into
// a single hyphen.
func Slugify(s string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// NewOrderNumber builds a human-readable order reference like
// ORD-20260901-4F7A2C1B.
func NewOrderNumber(suffix string) string {
	return fmt.Sprintf("ORD-%s-%s",
		time.Now().UTC().Format("20060102"),
		strings.ToUpper(suffix),
	)
}
