package ports

import (
	"context"

	"github.com/userhub/identity-service/internal/core/domain"
)

// UserPage is one page of a user listing.
type UserPage struct {
	Data []*domain.User `json:"data"`
	Meta PageMeta       `json:"meta"`
}

type PageMeta struct {
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	Limit    int   `json:"limit"`
	LastPage int64 `json:"last_page"`
}

// UserService exposes administrative user management.
type UserService interface {
	List(ctx context.Context, q ListQuery) (*UserPage, error)
	Get(ctx context.Context, id string) (*domain.User, error)
	Update(ctx context.Context, id string, username, email *string) (*domain.User, error)
	UpdateStatus(ctx context.Context, id string, isActive bool) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}
