package auth

import "github.com/mwalczyk/socialfeed/internal/domain"

// Guard is the resource authorization guard: it decides whether a session
// token permits acting on a resource owned by a given account before any
// mutation is attempted.
type Guard struct {
	tokens domain.TokenCodec
}

// NewGuard creates a Guard verifying tokens with the given codec.
func NewGuard(tokens domain.TokenCodec) *Guard {
	return &Guard{tokens: tokens}
}

// Authorize returns nil only when the token verifies and its subject equals
// claimedOwnerID exactly. A missing token is domain.ErrNoToken, a bad one
// domain.ErrInvalidToken, and a subject mismatch domain.ErrNotOwner.
func (g *Guard) Authorize(token, claimedOwnerID string) error {
	if token == "" {
		return domain.ErrNoToken
	}

	subject, err := g.tokens.Verify(token)
	if err != nil {
		return err
	}

	if subject != claimedOwnerID {
		return domain.ErrNotOwner
	}
	return nil
}
