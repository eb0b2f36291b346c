package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/userhub/identity-service/internal/core/domain"
	"github.com/userhub/identity-service/internal/core/password"
	"github.com/userhub/identity-service/internal/core/ports"
	"github.com/userhub/identity-service/internal/core/token"
)

const (
	defaultTokenTTL = time.Hour
	defaultResetTTL = 15 * time.Minute
	resetSecretLen  = 32 // bytes of entropy behind each reset secret
)

// IdentityService implements registration, login and the password reset flow.
type IdentityService struct {
	repo     ports.UserRepository
	hasher   *password.Hasher
	signer   *token.Signer
	notifier ports.ResetNotifier
	tokenTTL time.Duration
	resetTTL time.Duration
	log      zerolog.Logger
}

// NewIdentityService wires the identity gateway. notifier may be nil when no
// delivery collaborator is configured.
func NewIdentityService(
	repo ports.UserRepository,
	hasher *password.Hasher,
	signer *token.Signer,
	notifier ports.ResetNotifier,
	tokenTTL, resetTTL time.Duration,
	log zerolog.Logger,
) *IdentityService {
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}
	if resetTTL <= 0 {
		resetTTL = defaultResetTTL
	}
	return &IdentityService{
		repo:     repo,
		hasher:   hasher,
		signer:   signer,
		notifier: notifier,
		tokenTTL: tokenTTL,
		resetTTL: resetTTL,
		log:      log,
	}
}

// Register creates a new active user with the default role. The email
// conflict is probed before the username one, so a request colliding on both
// reports the email. The probe gives a precise error; the repository's unique
// indexes remain the authoritative guard against racing registrations.
func (s *IdentityService) Register(ctx context.Context, username, email, pass string) (*domain.User, error) {
	if u, err := s.repo.FindByEmailOrUsername(ctx, email); err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	} else if u != nil {
		return nil, &domain.ConflictError{Field: "email"}
	}
	if u, err := s.repo.FindByEmailOrUsername(ctx, username); err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	} else if u != nil {
		return nil, &domain.ConflictError{Field: "username"}
	}

	hash, err := s.hasher.Hash(pass)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", created.ID).Str("username", username).Msg("user registered")
	return created.Sanitized(), nil
}

// Authenticate verifies the identifier+password pair. Unknown identifier and
// wrong password both return (nil, nil); only store failures surface as
// errors. IsActive is deliberately not checked here.
func (s *IdentityService) Authenticate(ctx context.Context, identifier, pass string) (*domain.User, error) {
	user, err := s.repo.FindByEmailOrUsername(ctx, identifier)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !s.hasher.Verify(pass, user.PasswordHash) {
		return nil, nil
	}
	return user.Sanitized(), nil
}

// Login authenticates and issues a session token carrying the principal's
// claims at this instant.
func (s *IdentityService) Login(ctx context.Context, identifier, pass string) (string, *domain.User, error) {
	user, err := s.Authenticate(ctx, identifier, pass)
	if err != nil {
		return "", nil, err
	}
	if user == nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	signed, err := s.signer.Issue(user, s.tokenTTL)
	if err != nil {
		return "", nil, err
	}
	return signed, user, nil
}

// ForgotPassword issues a reset challenge for a known identifier and is a
// silent no-op for an unknown one; callers observe the same outcome either
// way. Issuing overwrites any prior challenge on the account.
func (s *IdentityService) ForgotPassword(ctx context.Context, identifier string) error {
	user, err := s.repo.FindByEmailOrUsername(ctx, identifier)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.log.Warn().Str("identifier", identifier).Msg("password reset requested for unknown identifier")
			return nil
		}
		return err
	}

	secret, digest, err := newResetSecret()
	if err != nil {
		return err
	}

	expiry := time.Now().UTC().Add(s.resetTTL)
	if _, err := s.repo.Update(ctx, user.ID, ports.UserUpdate{
		ResetTokenDigest: &digest,
		ResetTokenExpiry: &expiry,
	}); err != nil {
		return err
	}

	// The plaintext secret goes to the delivery collaborator only.
	if s.notifier != nil {
		s.notifier.Notify(ports.ResetNotification{UserID: user.ID, Email: user.Email, Secret: secret})
	}

	s.log.Info().Str("user_id", user.ID).Time("expires_at", expiry).Msg("password reset challenge issued")
	return nil
}

// ResetPassword redeems a reset secret, replacing the password and clearing
// the challenge in one atomic store update. Unknown and expired secrets fail
// identically with domain.ErrResetTokenInvalid; the distinction is logged for
// diagnostics only.
func (s *IdentityService) ResetPassword(ctx context.Context, secret, newPassword string) error {
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	digest := digestResetSecret(secret)
	now := time.Now().UTC()

	user, err := s.repo.RedeemResetToken(ctx, digest, hash, now)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			if stale, ferr := s.repo.FindByResetDigest(ctx, digest); ferr == nil && stale != nil {
				s.log.Warn().Str("user_id", stale.ID).Msg("password reset attempted with expired token")
			} else {
				s.log.Warn().Msg("password reset attempted with unknown token")
			}
			return domain.ErrResetTokenInvalid
		}
		return err
	}

	s.log.Info().Str("user_id", user.ID).Msg("password reset completed")
	return nil
}

// newResetSecret draws a fresh random secret and its storage digest. The
// digest, not the secret, is what gets persisted: the secret carries enough
// entropy that an indexed equality lookup on a fast hash is safe, unlike the
// constant-time compare low-entropy passwords require.
func newResetSecret() (secret, digest string, err error) {
	buf := make([]byte, resetSecretLen)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}
	secret = hex.EncodeToString(buf)
	return secret, digestResetSecret(secret), nil
}

func digestResetSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
