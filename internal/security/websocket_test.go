package security_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Louislam09/dots-and-boxes-game-sub000/internal/security"
)

func TestIsValidMessageType(t *testing.T) {
	for _, valid := range []string{"join", "leave", "start", "move", "request_rematch", "rejoin"} {
		assert.Truef(t, security.IsValidMessageType(valid), "%q should be allowed", valid)
	}
	for _, invalid := range []string{"", "MOVE", "admin", "room_state", "error"} {
		assert.Falsef(t, security.IsValidMessageType(invalid), "%q should be rejected", invalid)
	}
}

func TestRateLimiter_Allow(t *testing.T) {
	rl := security.NewRateLimiter(3, time.Hour)

	for i := 0; i < 3; i++ {
		require.Truef(t, rl.Allow("p1"), "message %d should pass", i+1)
	}
	assert.False(t, rl.Allow("p1"), "fourth message in the window is rejected")

	assert.True(t, rl.Allow("p2"), "identities are limited independently")
}

func TestRateLimiter_WindowReset(t *testing.T) {
	rl := security.NewRateLimiter(1, 20*time.Millisecond)

	require.True(t, rl.Allow("p1"))
	require.False(t, rl.Allow("p1"))

	time.Sleep(30 * time.Millisecond)
	assert.True(t, rl.Allow("p1"), "a new window restores the budget")
}

func TestRateLimiter_Remove(t *testing.T) {
	rl := security.NewRateLimiter(1, time.Hour)

	require.True(t, rl.Allow("p1"))
	require.False(t, rl.Allow("p1"))

	rl.Remove("p1")
	assert.True(t, rl.Allow("p1"), "removal clears the identity's spent budget")
}

func TestOriginValidator(t *testing.T) {
	ov := security.NewOriginValidator([]string{"example.com", "*.example.com"})
	opts := ov.GetAcceptOptions()
	require.NotNil(t, opts)
	assert.Equal(t, []string{"example.com", "*.example.com"}, opts.OriginPatterns)
}
