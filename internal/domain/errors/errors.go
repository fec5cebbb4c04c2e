package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrInternal            = errors.New("internal error")
	ErrNotFound            = errors.New("not found")
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrEmailNotConfirmed   = errors.New("email is not confirmed")
	ErrEmailTaken          = errors.New("user with this email already exists")
	ErrUsernameTaken       = errors.New("user with this username already exists")
	ErrInvalidToken        = errors.New("invalid token")
	ErrTokenExpired        = errors.New("token expired")
	ErrTokenPurpose        = errors.New("unexpected token purpose")
	ErrTokenMalformed      = errors.New("token is not correct")
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
	ErrForbidden           = errors.New("not enough permissions")
	ErrVerification        = errors.New("verification error")
)

func NewInvalidArgument(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, msg)
}

// WrapInternal marks err as an infrastructure failure, distinct from any
// authentication verdict.
func WrapInternal(err error, context string) error {
	return fmt.Errorf("%w: %s: %v", ErrInternal, context, err)
}

func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

func IsInternal(err error) bool {
	return errors.Is(err, ErrInternal)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsInvalidCredentials(err error) bool {
	return errors.Is(err, ErrInvalidCredentials)
}

func IsEmailNotConfirmed(err error) bool {
	return errors.Is(err, ErrEmailNotConfirmed)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrEmailTaken) || errors.Is(err, ErrUsernameTaken)
}

// IsInvalidToken covers every way an access token can fail verification:
// bad signature, expiry, wrong purpose.
func IsInvalidToken(err error) bool {
	return errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrTokenPurpose)
}

func IsTokenMalformed(err error) bool {
	return errors.Is(err, ErrTokenMalformed)
}

func IsInvalidRefreshToken(err error) bool {
	return errors.Is(err, ErrInvalidRefreshToken)
}

func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

func IsVerification(err error) bool {
	return errors.Is(err, ErrVerification)
}
