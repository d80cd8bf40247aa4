package middleware

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterWindow(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		res := rl.Check("1.2.3.4")
		assert.True(t, res.Allowed)
		assert.Equal(t, 2-i, res.Remaining)
	}

	res := rl.Check("1.2.3.4")
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)

	// other clients are unaffected
	res = rl.Check("5.6.7.8")
	assert.True(t, res.Allowed)
}

func TestRateLimiterWindowResets(t *testing.T) {
	rl := NewRateLimiter(1, 10*time.Millisecond)

	assert.True(t, rl.Check("k").Allowed)
	assert.False(t, rl.Check("k").Allowed)

	time.Sleep(20 * time.Millisecond)
	assert.True(t, rl.Check("k").Allowed)
}

func TestRateLimitMiddleware(t *testing.T) {
	app := fiber.New()
	app.Post("/submit", RateLimitMiddleware(NewRateLimiter(2, time.Minute)), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"success": true})
	})

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest("POST", "/submit", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "2", resp.Header.Get("X-RateLimit-Limit"))
	}

	resp, err := app.Test(httptest.NewRequest("POST", "/submit", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "0", resp.Header.Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, resp.Header.Get("X-RateLimit-Reset"))

	var body struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body.Success)
	assert.Contains(t, body.Error, "Too many requests")
}
