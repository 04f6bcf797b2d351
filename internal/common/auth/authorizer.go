package auth

import (
	"context"
	"fmt"

	"scholarship-workers/internal/common/errors"
	"scholarship-workers/internal/models"
)

// TokenValidator is implemented by KeycloakClient.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*TokenInfo, error)
}

// TokenAuthorizer requires an active token whose subject or username is the principal.
type TokenAuthorizer struct {
	validator TokenValidator
}

func NewTokenAuthorizer(v TokenValidator) *TokenAuthorizer {
	return &TokenAuthorizer{validator: v}
}

func (a *TokenAuthorizer) RequireAuth(ctx context.Context, principal models.Identity, token string) error {
	if principal == "" {
		return errors.NewAuthenticationError("principal is empty")
	}
	if token == "" {
		return errors.NewAuthenticationError("missing access token")
	}

	info, err := a.validator.ValidateToken(ctx, token)
	if err != nil {
		return err
	}
	if models.Identity(info.Sub) != principal && models.Identity(info.Username) != principal {
		return errors.NewAuthenticationError(fmt.Sprintf("token belongs to %q, not %q", info.Username, principal))
	}
	return nil
}

// TrustedAuthorizer accepts any non-empty principal. Use it only when the process
// engine has already authenticated whoever started the workflow.
type TrustedAuthorizer struct{}

func (TrustedAuthorizer) RequireAuth(_ context.Context, principal models.Identity, _ string) error {
	if principal == "" {
		return errors.NewAuthenticationError("principal is empty")
	}
	return nil
}
