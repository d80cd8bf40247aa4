// utils/http.go
package utils

import (
	"net/http"
	"time"
)

var HTTPClient = &http.Client{
	Timeout: 60 * time.Second, // OCR calls on large images can be slow
}
