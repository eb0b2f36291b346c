package domain

import (
	"errors"
	"fmt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("username or email already in use")

// ErrResetTokenInvalid covers both an unknown and an expired reset token.
// The two cases are logged separately but must stay indistinguishable to
// callers so a failed redemption leaks nothing about why it failed.
var ErrResetTokenInvalid = errors.New("invalid or expired reset token")

// ConflictError reports which identifier collided during registration or a
// profile update. It matches ErrUserExists under errors.Is.
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s already in use", e.Field)
}

func (e *ConflictError) Unwrap() error {
	return ErrUserExists
}
