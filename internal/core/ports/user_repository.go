package ports

import (
	"context"
	"time"

	"github.com/userhub/identity-service/internal/core/domain"
)

// UserUpdate is a partial update of a user record; nil fields are untouched.
// ClearResetToken removes the reset challenge regardless of the digest/expiry
// fields.
type UserUpdate struct {
	Username         *string
	Email            *string
	PasswordHash     *string
	IsActive         *bool
	ResetTokenDigest *string
	ResetTokenExpiry *time.Time
	ClearResetToken  bool
}

// ListQuery narrows and pages a user listing.
type ListQuery struct {
	Page     int
	Limit    int
	Search   string
	IsActive *bool
	SortBy   string // field_direction, e.g. "created_at_desc"
}

// UserRepository is the persistence contract for user records. The store is
// the authoritative uniqueness guard: Create and Update must fail with
// domain.ErrUserExists when username or email collide, regardless of any
// pre-check the caller performed.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// FindByEmailOrUsername matches the identifier exactly against either field.
	FindByEmailOrUsername(ctx context.Context, identifier string) (*domain.User, error)
	// FindByConflict probes for another record holding the given username or
	// email, excluding excludeID when non-empty.
	FindByConflict(ctx context.Context, username, email, excludeID string) (*domain.User, error)
	FindByResetDigest(ctx context.Context, digest string) (*domain.User, error)
	List(ctx context.Context, q ListQuery) ([]*domain.User, int64, error)
	Update(ctx context.Context, id string, fields UserUpdate) (*domain.User, error)
	// RedeemResetToken atomically sets the password hash and clears the reset
	// challenge on the single record whose digest matches and whose expiry is
	// after now. Returns domain.ErrUserNotFound when no such record exists, so
	// a concurrent second redemption of the same secret cannot succeed.
	RedeemResetToken(ctx context.Context, digest, passwordHash string, now time.Time) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}
