package auth

import (
	"chat-relay/domain"
	"chat-relay/errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeVerifier struct {
	accept   string
	identity domain.Identity
}

func (v fakeVerifier) VerifyToken(token string) (domain.Identity, error) {
	if token != v.accept {
		return domain.Identity{}, fmt.Errorf("unknown token")
	}
	return v.identity, nil
}

func TestResolver_Valid_Cookie(t *testing.T) {
	req := require.New(t)
	alice := domain.Identity{ID: "user-1", Username: "alice"}
	resolver := NewResolver(fakeVerifier{accept: "good-token", identity: alice})

	header := http.Header{}
	header.Set("Cookie", "theme=dark; token=good-token")

	identity, err := resolver.Resolve(header)
	req.NoError(err)
	req.Equal(alice, identity)
}

func TestResolver_Missing_Cookie(t *testing.T) {
	req := require.New(t)
	resolver := NewResolver(fakeVerifier{accept: "good-token"})

	_, err := resolver.Resolve(http.Header{})
	req.ErrorIs(err, errors.ErrNoToken)

	header := http.Header{}
	header.Set("Cookie", "theme=dark")
	_, err = resolver.Resolve(header)
	req.ErrorIs(err, errors.ErrNoToken)
}

func TestResolver_Rejected_Token(t *testing.T) {
	req := require.New(t)
	resolver := NewResolver(fakeVerifier{accept: "good-token"})

	header := http.Header{}
	header.Set("Cookie", "token=forged")

	_, err := resolver.Resolve(header)
	req.ErrorIs(err, errors.ErrInvalidToken)
}
