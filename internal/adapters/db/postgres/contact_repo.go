package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	customErrors "github.com/okravchenko/contactbook/internal/domain/errors"
	"github.com/okravchenko/contactbook/internal/domain/model"
	"github.com/okravchenko/contactbook/internal/domain/repo"
)

type ContactRepo struct {
	db *gorm.DB
}

func NewContactRepo(db *gorm.DB) *ContactRepo {
	return &ContactRepo{db: db}
}

func (r *ContactRepo) List(ctx context.Context, ownerID uuid.UUID, f repo.ContactFilter) ([]model.Contact, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", ownerID)
	if f.FirstName != "" {
		q = q.Where("first_name LIKE ?", "%"+f.FirstName+"%")
	}
	if f.LastName != "" {
		q = q.Where("last_name LIKE ?", "%"+f.LastName+"%")
	}
	if f.Email != "" {
		q = q.Where("email LIKE ?", "%"+f.Email+"%")
	}
	if f.Skip > 0 {
		q = q.Offset(f.Skip)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var contacts []model.Contact
	if err := q.Order("created_at").Find(&contacts).Error; err != nil {
		return nil, customErrors.WrapInternal(err, "List")
	}
	return contacts, nil
}

func (r *ContactRepo) GetByID(ctx context.Context, ownerID, id uuid.UUID) (model.Contact, error) {
	var c model.Contact
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, ownerID).First(&c)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.Contact{}, customErrors.ErrNotFound
	}
	if err := res.Error; err != nil {
		return model.Contact{}, customErrors.WrapInternal(err, "GetByID")
	}
	return c, nil
}

func (r *ContactRepo) Create(ctx context.Context, contact model.Contact) (model.Contact, error) {
	if err := r.db.WithContext(ctx).Create(&contact).Error; err != nil {
		return model.Contact{}, customErrors.WrapInternal(err, "Create")
	}
	return contact, nil
}

func (r *ContactRepo) Update(ctx context.Context, ownerID, id uuid.UUID, upd repo.ContactUpdate) (model.Contact, error) {
	contact, err := r.GetByID(ctx, ownerID, id)
	if err != nil {
		return model.Contact{}, err
	}

	fields := map[string]interface{}{}
	if upd.FirstName != nil {
		fields["first_name"] = *upd.FirstName
	}
	if upd.LastName != nil {
		fields["last_name"] = *upd.LastName
	}
	if upd.Email != nil {
		fields["email"] = *upd.Email
	}
	if upd.PhoneNumber != nil {
		fields["phone_number"] = *upd.PhoneNumber
	}
	if upd.Birthday != nil {
		fields["birthday"] = *upd.Birthday
	}
	if upd.AdditionalInfo != nil {
		fields["additional_info"] = *upd.AdditionalInfo
	}
	if len(fields) == 0 {
		return contact, nil
	}

	res := r.db.WithContext(ctx).Model(&model.Contact{}).
		Where("id = ? AND user_id = ?", id, ownerID).
		Updates(fields)
	if err := res.Error; err != nil {
		return model.Contact{}, customErrors.WrapInternal(err, "Update")
	}
	return r.GetByID(ctx, ownerID, id)
}

func (r *ContactRepo) Delete(ctx context.Context, ownerID, id uuid.UUID) (model.Contact, error) {
	contact, err := r.GetByID(ctx, ownerID, id)
	if err != nil {
		return model.Contact{}, err
	}
	if err := r.db.WithContext(ctx).Delete(&model.Contact{}, "id = ? AND user_id = ?", id, ownerID).Error; err != nil {
		return model.Contact{}, customErrors.WrapInternal(err, "Delete")
	}
	return contact, nil
}

// UpcomingBirthdays returns the owner's contacts whose birthday falls within
// the next days, year-wrap included. The month/day comparison is done here
// rather than in SQL so the query stays portable across dialects.
func (r *ContactRepo) UpcomingBirthdays(ctx context.Context, ownerID uuid.UUID, days int) ([]model.Contact, error) {
	var contacts []model.Contact
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND birthday IS NOT NULL", ownerID).
		Find(&contacts).Error
	if err != nil {
		return nil, customErrors.WrapInternal(err, "UpcomingBirthdays")
	}

	today := time.Now()
	upcoming := contacts[:0]
	for _, c := range contacts {
		if birthdayWithin(*c.Birthday, today, days) {
			upcoming = append(upcoming, c)
		}
	}
	return upcoming, nil
}

func birthdayWithin(birthday, from time.Time, days int) bool {
	next := time.Date(from.Year(), birthday.Month(), birthday.Day(), 0, 0, 0, 0, from.Location())
	startOfDay := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	if next.Before(startOfDay) {
		next = next.AddDate(1, 0, 0)
	}
	return !next.After(startOfDay.AddDate(0, 0, days))
}
