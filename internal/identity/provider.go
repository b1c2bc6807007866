// Package identity abstracts the external identity/authentication service.
// The coordinator only needs a stable player id and a display name for a
// presented token; a failure here is fatal to that join attempt only.
package identity

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Identity is the resolved result of a token lookup.
type Identity struct {
	PlayerID string
	Name     string
}

// Provider maps a presented token to a stable player identity.
type Provider interface {
	Authenticate(ctx context.Context, token string) (*Identity, error)
}

// GuestProvider is the local fallback provider: an empty token mints a new
// guest identity, and a previously issued "guest:<uuid>" token resolves back
// to the same id, which is what makes reconnection with the same identity
// work without an external identity store.
type GuestProvider struct{}

func NewGuestProvider() *GuestProvider {
	return &GuestProvider{}
}

const guestTokenPrefix = "guest:"

func (p *GuestProvider) Authenticate(_ context.Context, token string) (*Identity, error) {
	if token == "" {
		id := uuid.NewString()
		return &Identity{PlayerID: id, Name: "Player-" + id[:4]}, nil
	}

	raw, ok := strings.CutPrefix(token, guestTokenPrefix)
	if !ok {
		return nil, fmt.Errorf("unrecognized token format")
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid guest token: %w", err)
	}
	id := parsed.String()
	return &Identity{PlayerID: id, Name: "Player-" + id[:4]}, nil
}

// Token returns the reusable token for a guest id, handed to clients so a
// reconnect presents the same identity.
func (p *GuestProvider) Token(playerID string) string {
	return guestTokenPrefix + playerID
}
