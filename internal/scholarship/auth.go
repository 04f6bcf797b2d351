package scholarship

import (
	"context"
	"fmt"

	"scholarship-workers/internal/models"
)

// Authorizer proves that the caller presenting token acts as principal.
type Authorizer interface {
	RequireAuth(ctx context.Context, principal models.Identity, token string) error
}

// AuthorizerFunc adapts a function to Authorizer.
type AuthorizerFunc func(ctx context.Context, principal models.Identity, token string) error

func (f AuthorizerFunc) RequireAuth(ctx context.Context, principal models.Identity, token string) error {
	return f(ctx, principal, token)
}

// ApprovalPolicy decides who may approve applications.
type ApprovalPolicy interface {
	AuthorizeApproval(ctx context.Context, approver models.Identity, token string) error
}

// OpenApproval lets any caller approve, matching the unrestricted ledger behaviour.
type OpenApproval struct{}

func (OpenApproval) AuthorizeApproval(context.Context, models.Identity, string) error { return nil }

// AuthorityApproval restricts approval to a fixed set of authenticated identities.
type AuthorityApproval struct {
	Authorizer  Authorizer
	Authorities map[models.Identity]struct{}
}

func NewAuthorityApproval(auth Authorizer, authorities ...models.Identity) *AuthorityApproval {
	set := make(map[models.Identity]struct{}, len(authorities))
	for _, a := range authorities {
		set[a] = struct{}{}
	}
	return &AuthorityApproval{Authorizer: auth, Authorities: set}
}

func (p *AuthorityApproval) AuthorizeApproval(ctx context.Context, approver models.Identity, token string) error {
	if _, ok := p.Authorities[approver]; !ok {
		return fmt.Errorf("%w: %q is not an approval authority", ErrUnauthorized, approver)
	}
	if err := p.Authorizer.RequireAuth(ctx, approver, token); err != nil {
		return authFailure(err)
	}
	return nil
}
