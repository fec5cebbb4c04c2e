package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	customErrors "github.com/okravchenko/contactbook/internal/domain/errors"
	"github.com/okravchenko/contactbook/internal/infra/config"
)

// Purpose tags a token with its single valid use site so an e-mail token
// can never be replayed as an access token and vice versa.
type Purpose string

const (
	PurposeAccess        Purpose = "access"
	PurposeRefresh       Purpose = "refresh"
	PurposeEmailVerify   Purpose = "email_verify"
	PurposePasswordReset Purpose = "password_reset"
)

// EmailVerifyTTL is fixed: confirmation links stay valid for a week.
const EmailVerifyTTL = 7 * 24 * time.Hour

type Claims struct {
	Purpose Purpose `json:"purpose"`
	// NewPasswordHash rides inside password-reset tokens so nothing has to
	// be persisted until the user confirms the reset link.
	NewPasswordHash string `json:"new_password_hash,omitempty"`
	jwt.RegisteredClaims
}

// Codec signs and verifies the compact tokens used across the service.
// Verification is pure: no clock state beyond time.Now, no side effects.
type Codec struct {
	secret     []byte
	method     jwt.SigningMethod
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewCodec(cfg *config.Config) (*Codec, error) {
	method := jwt.GetSigningMethod(cfg.JWTAlgorithm)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, customErrors.NewInvalidArgument("signing algorithm must be an HMAC variant")
	}
	return &Codec{
		secret:     []byte(cfg.JWTSecret),
		method:     method,
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
	}, nil
}

func (c *Codec) AccessTTL() time.Duration { return c.accessTTL }

func (c *Codec) IssueAccess(username string) (string, error) {
	return c.issue(username, PurposeAccess, c.accessTTL, "")
}

func (c *Codec) IssueRefresh(username string) (string, error) {
	return c.issue(username, PurposeRefresh, c.refreshTTL, "")
}

func (c *Codec) IssueEmailVerify(email string) (string, error) {
	return c.issue(email, PurposeEmailVerify, EmailVerifyTTL, "")
}

// IssuePasswordReset embeds the already-hashed replacement password in the
// token itself; the reset link carries everything needed to complete the
// flow. Reuses the access-token TTL.
func (c *Codec) IssuePasswordReset(email, newPasswordHash string) (string, error) {
	return c.issue(email, PurposePasswordReset, c.accessTTL, newPasswordHash)
}

func (c *Codec) issue(subject string, purpose Purpose, ttl time.Duration, newPasswordHash string) (string, error) {
	now := time.Now()
	claims := Claims{
		Purpose:         purpose,
		NewPasswordHash: newPasswordHash,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
	if err != nil {
		return "", customErrors.WrapInternal(err, "sign token")
	}
	return signed, nil
}

// Verify checks signature, expiry and purpose, in that order.
func (c *Codec) Verify(raw string, want Purpose) (Claims, error) {
	parsed, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != c.method.Alg() {
			return nil, customErrors.ErrInvalidToken
		}
		return c.secret, nil
	}, jwt.WithIssuedAt())

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, customErrors.ErrTokenExpired
		}
		return Claims{}, customErrors.ErrInvalidToken
	}
	if !parsed.Valid {
		return Claims{}, customErrors.ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return Claims{}, customErrors.ErrInvalidToken
	}
	if claims.Purpose != want {
		return Claims{}, customErrors.ErrTokenPurpose
	}
	return *claims, nil
}
