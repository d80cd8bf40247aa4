package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Fixed-window rate limiter keyed by client IP. Process-local by design for the
// MVP; a multi-instance deployment needs a shared counter with TTL instead.

type rateLimitEntry struct {
	count   int
	resetAt time.Time
}

// RateLimiter tracks request windows per key
type RateLimiter struct {
	mu      sync.Mutex
	entries map[string]*rateLimitEntry
	Max     int
	Window  time.Duration
}

// RateLimitResult is what one admission check decided
type RateLimitResult struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

func NewRateLimiter(max int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		entries: make(map[string]*rateLimitEntry),
		Max:     max,
		Window:  window,
	}
	go rl.cleanupLoop()
	return rl
}

// Check admits or rejects one request for the key within the current window
func (rl *RateLimiter) Check(key string) RateLimitResult {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	entry, ok := rl.entries[key]
	if !ok || entry.resetAt.Before(now) {
		resetAt := now.Add(rl.Window)
		rl.entries[key] = &rateLimitEntry{count: 1, resetAt: resetAt}
		return RateLimitResult{Allowed: true, Remaining: rl.Max - 1, ResetAt: resetAt}
	}

	if entry.count >= rl.Max {
		return RateLimitResult{Allowed: false, Remaining: 0, ResetAt: entry.resetAt}
	}

	entry.count++
	return RateLimitResult{Allowed: true, Remaining: rl.Max - entry.count, ResetAt: entry.resetAt}
}

// Expired windows are purged every 5 minutes to bound memory
func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		now := time.Now()
		rl.mu.Lock()
		for key, entry := range rl.entries {
			if entry.resetAt.Before(now) {
				delete(rl.entries, key)
			}
		}
		rl.mu.Unlock()
	}
}

func setRateLimitHeaders(c *fiber.Ctx, max int, result RateLimitResult) {
	c.Set("X-RateLimit-Limit", strconv.Itoa(max))
	c.Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	c.Set("X-RateLimit-Reset", result.ResetAt.UTC().Format(time.RFC3339))
}

// RateLimitMiddleware bounds submissions per client IP and always attaches the
// rate-limit headers, including on successful responses
func RateLimitMiddleware(rl *RateLimiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		result := rl.Check(c.IP())
		setRateLimitHeaders(c, rl.Max, result)
		if !result.Allowed {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"error":   "Too many requests. Please try again later.",
			})
		}
		return c.Next()
	}
}
