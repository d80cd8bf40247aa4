// utils/redact.go
package utils

import "regexp"

var (
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	phonePattern = regexp.MustCompile(`(\+?1[\s.\-]?)?\(?\d{3}\)?[\s.\-]?\d{3}[\s.\-]?\d{4}`)
	cardPattern  = regexp.MustCompile(`\b(?:\d[ \-]?){13,16}\b`)
)

// RedactPII strips emails, phone numbers and card-like digit runs from OCR text
// before it is persisted in the receipt metadata blob
func RedactPII(text string) string {
	text = emailPattern.ReplaceAllString(text, "[EMAIL]")
	text = cardPattern.ReplaceAllString(text, "[CARD]")
	text = phonePattern.ReplaceAllString(text, "[PHONE]")
	return text
}
