package users

import (
	"context"
	"io"
	"path"

	"github.com/okravchenko/contactbook/internal/domain/model"
	"github.com/okravchenko/contactbook/internal/domain/repo"
)

// AvatarStore is the object-storage collaborator for avatar images.
type AvatarStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}

type Service struct {
	users repo.UserRepo
	store AvatarStore
}

func New(users repo.UserRepo, store AvatarStore) *Service {
	return &Service{users: users, store: store}
}

// UpdateAvatar uploads the image and persists the resulting URL on the user
// row. The cached identity snapshot is not invalidated; readers may see the
// old avatar until the cache entry expires.
func (s *Service) UpdateAvatar(ctx context.Context, user model.User, filename, contentType string, body io.Reader) (model.User, error) {
	key := path.Join("avatars", user.Username+path.Ext(filename))
	url, err := s.store.Upload(ctx, key, contentType, body)
	if err != nil {
		return model.User{}, err
	}
	return s.users.UpdateAvatar(ctx, user.Email, url)
}
