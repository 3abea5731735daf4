package security

import (
	"context"
	"fmt"
	"strings"

	apperrors "imagemarket/internal/errors"
	"imagemarket/internal/models"
)

// Mode selects how bearer tokens are checked.
type Mode string

const (
	// ModeMock only requires a non-empty bearer token.
	ModeMock Mode = "mock"
	// ModeSigned verifies the token and takes the identity from its claims.
	ModeSigned Mode = "signed"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeMock:
		return ModeMock, nil
	case ModeSigned:
		return ModeSigned, nil
	}
	return "", fmt.Errorf("unknown auth mode %q", s)
}

// Identity is the caller a request acts for. Verified is set only when the
// user id came from a checked token.
type Identity struct {
	UserID   string
	Email    string
	Verified bool
}

type Authenticator struct {
	mode   Mode
	tokens *TokenIssuer
}

func NewAuthenticator(mode Mode, tokens *TokenIssuer) *Authenticator {
	return &Authenticator{mode: mode, tokens: tokens}
}

func (a *Authenticator) Mode() Mode { return a.mode }

// Authenticate resolves an Authorization header value to an identity.
func (a *Authenticator) Authenticate(header string) (Identity, error) {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return Identity{}, apperrors.ErrUnauthorized
	}

	if a.mode != ModeSigned {
		return Identity{UserID: models.DemoUserID, Email: models.DemoEmail}, nil
	}

	claims, err := a.tokens.Verify(token)
	if err != nil {
		return Identity{}, apperrors.Wrap(apperrors.KindUnauthorized, "Unauthorized", err)
	}
	return Identity{UserID: claims.Subject, Email: claims.Email, Verified: true}, nil
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the identity stored by WithIdentity.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
