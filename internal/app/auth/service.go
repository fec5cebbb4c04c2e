package auth

import (
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/okravchenko/contactbook/internal/app/dto"
	"github.com/okravchenko/contactbook/internal/app/hash"
	"github.com/okravchenko/contactbook/internal/app/token"
	customErrors "github.com/okravchenko/contactbook/internal/domain/errors"
	"github.com/okravchenko/contactbook/internal/domain/model"
	"github.com/okravchenko/contactbook/internal/domain/repo"
	"github.com/okravchenko/contactbook/internal/infra/config"
)

// Mailer delivers account mails. Calls are fire-and-forget: the service
// launches them on their own goroutine and only logs failures.
type Mailer interface {
	SendConfirmation(ctx context.Context, email, username, link string) error
	SendPasswordReset(ctx context.Context, email, username, link string) error
}

type Service interface {
	Register(ctx context.Context, in dto.RegisterDTO) (model.User, error)
	Login(ctx context.Context, in dto.LoginDTO) (model.TokenPair, error)
	Refresh(ctx context.Context, in dto.RefreshDTO) (model.TokenPair, error)
	Authenticate(ctx context.Context, accessToken string) (model.User, error)
	ConfirmEmail(ctx context.Context, rawToken string) (alreadyConfirmed bool, err error)
	ResendConfirmation(ctx context.Context, email string) (alreadyConfirmed bool, err error)
	RequestPasswordReset(ctx context.Context, in dto.ResetPasswordDTO) error
	ConfirmPasswordReset(ctx context.Context, rawToken string) error
}

type authService struct {
	userRepo repo.UserRepo
	cache    repo.UserCache
	codec    *token.Codec
	hasher   *hash.Hasher
	mailer   Mailer
	cfg      *config.Config
	v        *validator.Validate
	log      *zap.Logger
}

func New(
	ur repo.UserRepo,
	cache repo.UserCache,
	codec *token.Codec,
	hasher *hash.Hasher,
	mailer Mailer,
	cfg *config.Config,
	v *validator.Validate,
	log *zap.Logger,
) Service {
	return &authService{
		userRepo: ur, cache: cache, codec: codec, hasher: hasher,
		mailer: mailer, cfg: cfg, v: v, log: log,
	}
}

func (a *authService) Register(ctx context.Context, in dto.RegisterDTO) (model.User, error) {
	if err := a.v.Struct(in); err != nil {
		return model.User{}, customErrors.NewInvalidArgument(err.Error())
	}
	role := in.Role
	if role == "" {
		role = model.RoleUser
	}
	if !role.Valid() {
		return model.User{}, customErrors.NewInvalidArgument("unknown role")
	}

	if _, err := a.userRepo.GetByEmail(ctx, in.Email); err == nil {
		return model.User{}, customErrors.ErrEmailTaken
	} else if !errors.Is(err, customErrors.ErrNotFound) {
		return model.User{}, err
	}
	if _, err := a.userRepo.GetByUsername(ctx, in.Username); err == nil {
		return model.User{}, customErrors.ErrUsernameTaken
	} else if !errors.Is(err, customErrors.ErrNotFound) {
		return model.User{}, err
	}

	passwordHash, err := a.hasher.Hash(in.Password)
	if err != nil {
		return model.User{}, customErrors.WrapInternal(err, "Register")
	}

	user, err := a.userRepo.Create(ctx, model.User{
		ID:             uuid.New(),
		Username:       in.Username,
		Email:          in.Email,
		HashedPassword: passwordHash,
		Role:           role,
		Confirmed:      false,
		Avatar:         gravatarURL(in.Email),
	})
	if err != nil {
		return model.User{}, err
	}

	a.sendConfirmationAsync(user.Email, user.Username)

	return user, nil
}

func (a *authService) Login(ctx context.Context, in dto.LoginDTO) (model.TokenPair, error) {
	if err := a.v.Struct(in); err != nil {
		return model.TokenPair{}, customErrors.NewInvalidArgument(err.Error())
	}

	user, err := a.userRepo.GetByUsername(ctx, in.Username)
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		// Same verdict as a wrong password: no account enumeration.
		return model.TokenPair{}, customErrors.ErrInvalidCredentials
	case err != nil:
		return model.TokenPair{}, err
	}

	if !a.hasher.Verify(in.Password, user.HashedPassword) {
		return model.TokenPair{}, customErrors.ErrInvalidCredentials
	}
	if !user.Confirmed {
		return model.TokenPair{}, customErrors.ErrEmailNotConfirmed
	}

	accessToken, err := a.codec.IssueAccess(user.Username)
	if err != nil {
		return model.TokenPair{}, err
	}
	refreshToken, err := a.codec.IssueRefresh(user.Username)
	if err != nil {
		return model.TokenPair{}, err
	}

	// Overwrites any previously issued refresh token: one active per user.
	if err := a.userRepo.UpdateRefreshToken(ctx, user.ID, &refreshToken); err != nil {
		return model.TokenPair{}, err
	}

	return model.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
	}, nil
}

func (a *authService) Refresh(ctx context.Context, in dto.RefreshDTO) (model.TokenPair, error) {
	if err := a.v.Struct(in); err != nil {
		return model.TokenPair{}, customErrors.NewInvalidArgument(err.Error())
	}

	claims, err := a.codec.Verify(in.RefreshToken, token.PurposeRefresh)
	if err != nil {
		return model.TokenPair{}, customErrors.ErrInvalidRefreshToken
	}

	user, err := a.userRepo.GetByUsername(ctx, claims.Subject)
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		return model.TokenPair{}, customErrors.ErrInvalidRefreshToken
	case err != nil:
		return model.TokenPair{}, err
	}

	// A signature-valid token that is not the one currently on the row was
	// superseded by a later login; treat it as revoked.
	if user.RefreshToken == nil || *user.RefreshToken != in.RefreshToken {
		return model.TokenPair{}, customErrors.ErrInvalidRefreshToken
	}

	accessToken, err := a.codec.IssueAccess(user.Username)
	if err != nil {
		return model.TokenPair{}, err
	}

	// The refresh token is echoed back unchanged: no rotation on use.
	return model.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: in.RefreshToken,
		TokenType:    "bearer",
	}, nil
}

func (a *authService) Authenticate(ctx context.Context, accessToken string) (model.User, error) {
	claims, err := a.codec.Verify(accessToken, token.PurposeAccess)
	if err != nil {
		return model.User{}, err
	}
	username := claims.Subject
	if username == "" {
		return model.User{}, customErrors.ErrInvalidToken
	}

	if user, ok := a.cachedUser(ctx, username); ok {
		return user, nil
	}

	user, err := a.userRepo.GetByUsername(ctx, username)
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		return model.User{}, customErrors.ErrInvalidToken
	case err != nil:
		return model.User{}, err
	}

	if err := a.cache.Put(ctx, username, user); err != nil {
		a.log.Warn("user cache put failed", zap.Error(err))
	}
	return user, nil
}

// cachedUser reads the session cache, retrying once on infrastructure
// errors before treating the lookup as a miss.
func (a *authService) cachedUser(ctx context.Context, username string) (model.User, bool) {
	for attempt := 0; attempt < 2; attempt++ {
		user, ok, err := a.cache.Get(ctx, username)
		if err == nil {
			return user, ok
		}
		a.log.Warn("user cache get failed", zap.Int("attempt", attempt+1), zap.Error(err))
	}
	return model.User{}, false
}

func (a *authService) ConfirmEmail(ctx context.Context, rawToken string) (bool, error) {
	claims, err := a.codec.Verify(rawToken, token.PurposeEmailVerify)
	if err != nil {
		return false, customErrors.ErrTokenMalformed
	}

	user, err := a.userRepo.GetByEmail(ctx, claims.Subject)
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		return false, customErrors.ErrVerification
	case err != nil:
		return false, err
	}

	if user.Confirmed {
		return true, nil
	}
	if err := a.userRepo.ConfirmEmail(ctx, user.Email); err != nil {
		return false, err
	}
	return false, nil
}

func (a *authService) ResendConfirmation(ctx context.Context, email string) (bool, error) {
	user, err := a.userRepo.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		// Indistinguishable from success on the outside.
		return false, nil
	case err != nil:
		return false, err
	}

	if user.Confirmed {
		return true, nil
	}
	a.sendConfirmationAsync(user.Email, user.Username)
	return false, nil
}

func (a *authService) RequestPasswordReset(ctx context.Context, in dto.ResetPasswordDTO) error {
	if err := a.v.Struct(in); err != nil {
		return customErrors.NewInvalidArgument(err.Error())
	}

	user, err := a.userRepo.GetByEmail(ctx, in.Email)
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		return customErrors.ErrVerification
	case err != nil:
		return err
	}
	if !user.Confirmed {
		return customErrors.ErrEmailNotConfirmed
	}

	// Hash now; the hash travels inside the token and nothing is persisted
	// until the user visits the confirmation link.
	newHash, err := a.hasher.Hash(in.Password)
	if err != nil {
		return customErrors.WrapInternal(err, "RequestPasswordReset")
	}
	resetToken, err := a.codec.IssuePasswordReset(user.Email, newHash)
	if err != nil {
		return err
	}

	link := fmt.Sprintf("%s/api/auth/confirm_reset_password/%s", strings.TrimRight(a.cfg.BaseURL, "/"), resetToken)
	a.sendAsync("password reset", func(ctx context.Context) error {
		return a.mailer.SendPasswordReset(ctx, user.Email, user.Username, link)
	})
	return nil
}

func (a *authService) ConfirmPasswordReset(ctx context.Context, rawToken string) error {
	claims, err := a.codec.Verify(rawToken, token.PurposePasswordReset)
	if err != nil {
		return customErrors.ErrTokenMalformed
	}
	if claims.Subject == "" || claims.NewPasswordHash == "" {
		return customErrors.ErrVerification
	}

	user, err := a.userRepo.GetByEmail(ctx, claims.Subject)
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		return customErrors.ErrNotFound
	case err != nil:
		return err
	}

	return a.userRepo.UpdatePassword(ctx, user.ID, claims.NewPasswordHash)
}

func (a *authService) sendConfirmationAsync(email, username string) {
	verifyToken, err := a.codec.IssueEmailVerify(email)
	if err != nil {
		a.log.Error("issue email-verify token", zap.Error(err))
		return
	}
	link := fmt.Sprintf("%s/api/auth/confirmed_email/%s", strings.TrimRight(a.cfg.BaseURL, "/"), verifyToken)
	a.sendAsync("confirmation", func(ctx context.Context) error {
		return a.mailer.SendConfirmation(ctx, email, username, link)
	})
}

// sendAsync runs a mail delivery detached from the request lifetime. A
// failure must not fail the parent operation, so it is only logged.
func (a *authService) sendAsync(kind string, send func(context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := send(ctx); err != nil {
			a.log.Error("send mail failed", zap.String("kind", kind), zap.Error(err))
		}
	}()
}

func gravatarURL(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%x", sum)
}
