package domain

import "errors"

// Failure categories surfaced by the domain service. The HTTP layer maps
// these to response statuses with errors.Is; anything else is treated as an
// internal error and never shown to the caller in detail.
var (
	// ErrNoToken indicates the request carried no session token.
	ErrNoToken = errors.New("no session token provided")

	// ErrInvalidToken indicates the session token failed verification:
	// bad signature, malformed encoding, or expired.
	ErrInvalidToken = errors.New("invalid session token")

	// ErrNotOwner indicates the token subject does not match the owner of
	// the resource being mutated.
	ErrNotOwner = errors.New("token subject is not the resource owner")

	// ErrNotFound indicates the referenced post or account does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyLiked indicates the acting account already likes the post.
	// This is an idempotent rejection, not a server error.
	ErrAlreadyLiked = errors.New("post already liked")

	// ErrValidation indicates input outside declared bounds. Violating
	// input is rejected before any store write, never truncated.
	ErrValidation = errors.New("validation failed")

	// ErrRetrievalFailed wraps storage errors during feed reads.
	ErrRetrievalFailed = errors.New("feed retrieval failed")

	// ErrStoreFailed wraps storage errors during mutations.
	ErrStoreFailed = errors.New("store operation failed")
)

// isDomainErr reports whether err already belongs to the taxonomy above, so
// services can pass it through instead of re-wrapping it as a store failure.
func isDomainErr(err error) bool {
	for _, target := range []error{
		ErrNoToken, ErrInvalidToken, ErrNotOwner, ErrNotFound,
		ErrAlreadyLiked, ErrValidation, ErrRetrievalFailed, ErrStoreFailed,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
