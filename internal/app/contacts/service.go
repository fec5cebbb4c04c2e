package contacts

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/okravchenko/contactbook/internal/app/dto"
	customErrors "github.com/okravchenko/contactbook/internal/domain/errors"
	"github.com/okravchenko/contactbook/internal/domain/model"
	"github.com/okravchenko/contactbook/internal/domain/repo"
)

const defaultBirthdayWindow = 7

// Service owns the contact CRUD. Every operation is scoped to the calling
// user: a contact is only ever visible to the user who created it.
type Service struct {
	contacts repo.ContactRepo
	v        *validator.Validate
}

func New(contacts repo.ContactRepo, v *validator.Validate) *Service {
	return &Service{contacts: contacts, v: v}
}

func (s *Service) List(ctx context.Context, owner model.User, f repo.ContactFilter) ([]model.Contact, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 100
	}
	return s.contacts.List(ctx, owner.ID, f)
}

func (s *Service) Get(ctx context.Context, owner model.User, id uuid.UUID) (model.Contact, error) {
	return s.contacts.GetByID(ctx, owner.ID, id)
}

func (s *Service) Create(ctx context.Context, owner model.User, in dto.ContactDTO) (model.Contact, error) {
	if err := s.v.Struct(in); err != nil {
		return model.Contact{}, customErrors.NewInvalidArgument(err.Error())
	}
	return s.contacts.Create(ctx, model.Contact{
		ID:             uuid.New(),
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		Email:          in.Email,
		PhoneNumber:    in.PhoneNumber,
		Birthday:       in.Birthday,
		AdditionalInfo: in.AdditionalInfo,
		UserID:         owner.ID,
	})
}

func (s *Service) Update(ctx context.Context, owner model.User, id uuid.UUID, in dto.ContactUpdateDTO) (model.Contact, error) {
	if err := s.v.Struct(in); err != nil {
		return model.Contact{}, customErrors.NewInvalidArgument(err.Error())
	}
	return s.contacts.Update(ctx, owner.ID, id, repo.ContactUpdate{
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		Email:          in.Email,
		PhoneNumber:    in.PhoneNumber,
		Birthday:       in.Birthday,
		AdditionalInfo: in.AdditionalInfo,
	})
}

func (s *Service) Delete(ctx context.Context, owner model.User, id uuid.UUID) (model.Contact, error) {
	return s.contacts.Delete(ctx, owner.ID, id)
}

func (s *Service) UpcomingBirthdays(ctx context.Context, owner model.User, days int) ([]model.Contact, error) {
	if days <= 0 {
		days = defaultBirthdayWindow
	}
	return s.contacts.UpcomingBirthdays(ctx, owner.ID, days)
}
