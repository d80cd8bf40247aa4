package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedactPII(t *testing.T) {
	in := "Contact jane.doe@example.com or call (555) 123-4567\nCard 4111 1111 1111 1111"
	out := RedactPII(in)

	assert.NotContains(t, out, "jane.doe@example.com")
	assert.NotContains(t, out, "4111 1111 1111 1111")
	assert.NotContains(t, out, "123-4567")
	assert.Contains(t, out, "[EMAIL]")
	assert.Contains(t, out, "[CARD]")
	assert.Contains(t, out, "[PHONE]")
}

func TestRedactPIIKeepsReceiptText(t *testing.T) {
	in := "STARBUCKS STORE #1234\nTotal: 9.81"
	assert.Equal(t, in, RedactPII(in))
}

func TestReceiptObjectKey(t *testing.T) {
	key := ReceiptObjectKey("My Receipt (1).JPG")
	assert.Contains(t, key, "receipts/")
	assert.Contains(t, key, "my-receipt-1")
	assert.Contains(t, key, ".jpg")

	// hostile names still produce a usable key
	key = ReceiptObjectKey("../../etc/passwd")
	assert.NotContains(t, key, "..")
}
