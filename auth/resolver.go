package auth

import (
	"chat-relay/domain"
	"chat-relay/errors"
	"fmt"
	"net/http"
)

// cookieName is the cookie carrying the bearer token. It is only available
// at websocket upgrade time, not on individual frames.
const cookieName = "token"

// TokenVerifier turns a bearer token into the identity it encodes.
type TokenVerifier interface {
	VerifyToken(token string) (domain.Identity, error)
}

// Resolver extracts a caller's identity from connection handshake metadata.
// A failed resolution is a typed outcome, never a panic: the session layer
// keeps the connection unauthenticated and out of the registry.
type Resolver struct {
	verifier TokenVerifier
}

func NewResolver(verifier TokenVerifier) *Resolver {
	return &Resolver{verifier: verifier}
}

// Resolve reads the token cookie from the upgrade request headers and
// delegates verification. Pure lookup, no side effects.
func (r *Resolver) Resolve(header http.Header) (domain.Identity, error) {
	// http.Request.Cookie does the header parsing; only headers exist here.
	req := http.Request{Header: header}
	cookie, err := req.Cookie(cookieName)
	if err != nil || cookie.Value == "" {
		return domain.Identity{}, errors.ErrNoToken
	}

	identity, err := r.verifier.VerifyToken(cookie.Value)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", errors.ErrInvalidToken, err)
	}
	return identity, nil
}
