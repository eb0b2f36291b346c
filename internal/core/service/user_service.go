package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/userhub/identity-service/internal/core/domain"
	"github.com/userhub/identity-service/internal/core/ports"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// UserService implements administrative user management on top of the
// repository. User creation lives on the identity gateway (register).
type UserService struct {
	repo ports.UserRepository
	log  zerolog.Logger
}

func NewUserService(repo ports.UserRepository, log zerolog.Logger) *UserService {
	return &UserService{repo: repo, log: log}
}

func (s *UserService) List(ctx context.Context, q ports.ListQuery) (*ports.UserPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = defaultPageLimit
	}
	if q.Limit > maxPageLimit {
		q.Limit = maxPageLimit
	}
	if q.SortBy == "" {
		q.SortBy = "created_at_desc"
	}

	users, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, err
	}

	sanitized := make([]*domain.User, len(users))
	for i, u := range users {
		sanitized[i] = u.Sanitized()
	}

	lastPage := total / int64(q.Limit)
	if total%int64(q.Limit) != 0 {
		lastPage++
	}

	return &ports.UserPage{
		Data: sanitized,
		Meta: ports.PageMeta{Total: total, Page: q.Page, Limit: q.Limit, LastPage: lastPage},
	}, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.Sanitized(), nil
}

// Update changes username and/or email, probing for collisions with other
// accounts first. Nil fields are left untouched.
func (s *UserService) Update(ctx context.Context, id string, username, email *string) (*domain.User, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}

	if username != nil || email != nil {
		probeUsername, probeEmail := "", ""
		if username != nil {
			probeUsername = *username
		}
		if email != nil {
			probeEmail = *email
		}
		conflict, err := s.repo.FindByConflict(ctx, probeUsername, probeEmail, id)
		if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		if conflict != nil {
			field := "username"
			if email != nil && conflict.Email == probeEmail {
				field = "email"
			}
			return nil, &domain.ConflictError{Field: field}
		}
	}

	updated, err := s.repo.Update(ctx, id, ports.UserUpdate{Username: username, Email: email})
	if err != nil {
		return nil, err
	}
	return updated.Sanitized(), nil
}

func (s *UserService) UpdateStatus(ctx context.Context, id string, isActive bool) (*domain.User, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, id, ports.UserUpdate{IsActive: &isActive})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", id).Bool("is_active", isActive).Msg("user status changed")
	return updated.Sanitized(), nil
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("user_id", id).Msg("user deleted")
	return nil
}
