package auth

import (
	customErrors "github.com/okravchenko/contactbook/internal/domain/errors"
	"github.com/okravchenko/contactbook/internal/domain/model"
)

// RequireRole checks the resolved user's role against the exact set a route
// accepts. The hierarchy is flat: admin is not implicitly granted access to
// moderator-only routes, each route names every role it allows.
func RequireRole(user model.User, allowed ...model.Role) error {
	for _, role := range allowed {
		if user.Role == role {
			return nil
		}
	}
	return customErrors.ErrForbidden
}
