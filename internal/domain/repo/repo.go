package repo

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/okravchenko/contactbook/internal/domain/model"
)

// UserRepo is the persistent, authoritative store for users. Every mutation
// is a single-row update relying on the store's own atomicity.
type UserRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (model.User, error)
	GetByUsername(ctx context.Context, username string) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	Create(ctx context.Context, user model.User) (model.User, error)
	UpdateRefreshToken(ctx context.Context, id uuid.UUID, token *string) error
	ConfirmEmail(ctx context.Context, email string) error
	UpdatePassword(ctx context.Context, id uuid.UUID, hashedPassword string) error
	UpdateAvatar(ctx context.Context, email string, url string) (model.User, error)
}

// UserCache fronts UserRepo on the hot authentication path. It is a
// best-effort accelerator: entries expire by TTL and are never invalidated
// on user mutation, so a cached snapshot can be stale for up to the TTL.
type UserCache interface {
	Get(ctx context.Context, username string) (model.User, bool, error)
	Put(ctx context.Context, username string, user model.User) error
}

type ContactFilter struct {
	FirstName string
	LastName  string
	Email     string
	Skip      int
	Limit     int
}

type ContactUpdate struct {
	FirstName      *string
	LastName       *string
	Email          *string
	PhoneNumber    *string
	Birthday       *time.Time
	AdditionalInfo *string
}

type ContactRepo interface {
	List(ctx context.Context, ownerID uuid.UUID, f ContactFilter) ([]model.Contact, error)
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (model.Contact, error)
	Create(ctx context.Context, contact model.Contact) (model.Contact, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, upd ContactUpdate) (model.Contact, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) (model.Contact, error)
	UpcomingBirthdays(ctx context.Context, ownerID uuid.UUID, days int) ([]model.Contact, error)
}
