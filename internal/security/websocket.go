package security

import (
	"sync"
	"time"

	"github.com/coder/websocket"
)

// validMessageTypes is the inbound allowlist; anything else is rejected
// before dispatch.
var validMessageTypes = map[string]bool{
	"join":            true,
	"leave":           true,
	"start":           true,
	"move":            true,
	"request_rematch": true,
	"rejoin":          true,
}

// IsValidMessageType checks if an inbound message type is valid.
func IsValidMessageType(msgType string) bool {
	return validMessageTypes[msgType]
}

// RateLimiter provides per-identity fixed-window rate limiting. It protects
// the coordinator from a single abusive sender and is checked before any
// room lookup; it is independent of the per-room move guard.
type RateLimiter struct {
	mu        sync.Mutex
	tokens    map[string]int
	lastReset time.Time
	maxTokens int
	window    time.Duration
}

// NewRateLimiter creates a new rate limiter.
// maxTokens: maximum messages per window
// window: time window for rate limiting (e.g., 1 second)
func NewRateLimiter(maxTokens int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		tokens:    make(map[string]int),
		lastReset: time.Now(),
		maxTokens: maxTokens,
		window:    window,
	}
}

// Allow checks if an identity is allowed to send a message.
// Returns true if allowed, false if the rate limit is exceeded.
func (rl *RateLimiter) Allow(identity string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if time.Since(rl.lastReset) > rl.window {
		rl.tokens = make(map[string]int)
		rl.lastReset = time.Now()
	}

	rl.tokens[identity]++
	return rl.tokens[identity] <= rl.maxTokens
}

// Remove cleans up limiter state for a departed identity.
func (rl *RateLimiter) Remove(identity string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.tokens, identity)
}

// OriginValidator validates WebSocket connection origins.
type OriginValidator struct {
	allowedPatterns []string
}

func NewOriginValidator(patterns []string) *OriginValidator {
	return &OriginValidator{allowedPatterns: patterns}
}

// GetAcceptOptions returns websocket.AcceptOptions with origin patterns.
func (ov *OriginValidator) GetAcceptOptions() *websocket.AcceptOptions {
	return &websocket.AcceptOptions{
		OriginPatterns: ov.allowedPatterns,
	}
}
