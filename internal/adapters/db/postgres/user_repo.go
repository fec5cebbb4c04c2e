package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	customErrors "github.com/okravchenko/contactbook/internal/domain/errors"
	"github.com/okravchenko/contactbook/internal/domain/model"
)

type UserRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	var u model.User
	res := r.db.WithContext(ctx).Where("id = ?", id).First(&u)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.User{}, customErrors.ErrNotFound
	}
	if err := res.Error; err != nil {
		return model.User{}, customErrors.WrapInternal(err, "GetByID")
	}
	return u, nil
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	var u model.User
	res := r.db.WithContext(ctx).Where("username = ?", username).First(&u)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.User{}, customErrors.ErrNotFound
	}
	if err := res.Error; err != nil {
		return model.User{}, customErrors.WrapInternal(err, "GetByUsername")
	}
	return u, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	var u model.User
	res := r.db.WithContext(ctx).Where("email = ?", email).First(&u)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.User{}, customErrors.ErrNotFound
	}
	if err := res.Error; err != nil {
		return model.User{}, customErrors.WrapInternal(err, "GetByEmail")
	}
	return u, nil
}

func (r *UserRepo) Create(ctx context.Context, user model.User) (model.User, error) {
	res := r.db.WithContext(ctx).Create(&user)
	if err := res.Error; err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			// The constraint name says which uniqueness rule fired.
			if strings.Contains(pgErr.ConstraintName, "email") {
				return model.User{}, customErrors.ErrEmailTaken
			}
			return model.User{}, customErrors.ErrUsernameTaken
		}
		return model.User{}, customErrors.WrapInternal(err, "Create")
	}
	return user, nil
}

// UpdateRefreshToken overwrites the stored refresh token; passing nil
// revokes it. A single-row update, serialized by the store.
func (r *UserRepo) UpdateRefreshToken(ctx context.Context, id uuid.UUID, token *string) error {
	res := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Update("refresh_token", token)
	if err := res.Error; err != nil {
		return customErrors.WrapInternal(err, "UpdateRefreshToken")
	}
	if res.RowsAffected == 0 {
		return customErrors.ErrNotFound
	}
	return nil
}

func (r *UserRepo) ConfirmEmail(ctx context.Context, email string) error {
	res := r.db.WithContext(ctx).Model(&model.User{}).
		Where("email = ?", email).
		Update("confirmed", true)
	if err := res.Error; err != nil {
		return customErrors.WrapInternal(err, "ConfirmEmail")
	}
	if res.RowsAffected == 0 {
		return customErrors.ErrNotFound
	}
	return nil
}

func (r *UserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, hashedPassword string) error {
	res := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Update("hashed_password", hashedPassword)
	if err := res.Error; err != nil {
		return customErrors.WrapInternal(err, "UpdatePassword")
	}
	if res.RowsAffected == 0 {
		return customErrors.ErrNotFound
	}
	return nil
}

func (r *UserRepo) UpdateAvatar(ctx context.Context, email string, url string) (model.User, error) {
	res := r.db.WithContext(ctx).Model(&model.User{}).
		Where("email = ?", email).
		Update("avatar", url)
	if err := res.Error; err != nil {
		return model.User{}, customErrors.WrapInternal(err, "UpdateAvatar")
	}
	if res.RowsAffected == 0 {
		return model.User{}, customErrors.ErrNotFound
	}
	return r.GetByEmail(ctx, email)
}
