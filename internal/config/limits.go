package config

import "time"

// WebSocket connection limits and constraints
const (
	// Connection limits
	MaxConnectionsPerRoom = 16
	MaxRoomsPerInstance   = 1000
	MaxTotalConnections   = 10000

	// Room limits
	MaxPlayersPerRoom = 6
	DefaultMaxPlayers = 2
	MinPlayersToStart = 2

	// Rate limiting (per identity, fixed window)
	MaxMessagesPerSecond = 10
	RateLimitWindow      = time.Second

	// Timeouts
	WriteTimeout = 10 * time.Second
	PingInterval = 30 * time.Second
	PongTimeout  = 90 * time.Second // 3x ping interval for network delay tolerance

	// Channel buffers
	ClientSendBufferSize   = 256
	HubBroadcastBufferSize = 256
)
