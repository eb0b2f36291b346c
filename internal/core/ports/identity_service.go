package ports

import (
	"context"

	"github.com/userhub/identity-service/internal/core/domain"
)

// IdentityService exposes the user-facing authentication operations.
type IdentityService interface {
	// Register creates an account, reporting *domain.ConflictError on an
	// identifier collision. The returned user is sanitized.
	Register(ctx context.Context, username, email, password string) (*domain.User, error)
	// Authenticate verifies an identifier+password pair. It returns (nil, nil)
	// both for an unknown identifier and for a wrong password so the two cases
	// cannot be told apart. It does not gate on IsActive; that is enforced at
	// token verification.
	Authenticate(ctx context.Context, identifier, password string) (*domain.User, error)
	// Login authenticates and issues a session token.
	Login(ctx context.Context, identifier, password string) (string, *domain.User, error)
	// ForgotPassword issues a reset challenge when the identifier is known and
	// does nothing visible when it is not. Both branches look identical to the
	// caller.
	ForgotPassword(ctx context.Context, identifier string) error
	// ResetPassword redeems a reset secret exactly once, replacing the
	// password. Unknown and expired secrets both fail with
	// domain.ErrResetTokenInvalid.
	ResetPassword(ctx context.Context, secret, newPassword string) error
}
