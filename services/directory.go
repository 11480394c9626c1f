package services

import (
	"context"
	"dm-lab/domain"
	"dm-lab/errors"
	"dm-lab/infrastructure/storage"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Directory resolves identities from the user repository.
type Directory struct {
	users storage.IUserRepository
}

func NewDirectory(users storage.IUserRepository) *Directory {
	return &Directory{users: users}
}

func (d *Directory) Resolve(_ context.Context, id string) (domain.Identity, error) {
	user, err := d.users.GetUserByID(id)
	if err != nil {
		return domain.Identity{}, err
	}
	return toIdentity(user), nil
}

// FindByNameOrEmail looks a user up by exact name, exact email, or both.
// Emails are unique but names are not, so the lookup is ambiguous when a name
// matches several users, or when name and email point at different users.
func (d *Directory) FindByNameOrEmail(_ context.Context, name, email string) (domain.Identity, error) {
	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	if name == "" && email == "" {
		return domain.Identity{}, fmt.Errorf("%w: name or email is required", errors.ErrValidation)
	}

	var byEmail *storage.User
	if email != "" {
		user, err := d.users.GetUserByEmail(email)
		switch {
		case err == nil:
			byEmail = &user
		case !stderrors.Is(err, errors.ErrNotFound):
			return domain.Identity{}, err
		}
	}

	var byName []storage.User
	if name != "" {
		users, err := d.users.FindUsersByName(name)
		if err != nil {
			return domain.Identity{}, err
		}
		byName = users
	}

	if byEmail != nil {
		if len(byName) > 0 && !lo.ContainsBy(byName, func(u storage.User) bool { return u.ID == byEmail.ID }) {
			return domain.Identity{}, fmt.Errorf("%w: name %q and email %q designate different users",
				errors.ErrAmbiguousIdentity, name, email)
		}
		return toIdentity(*byEmail), nil
	}

	switch len(byName) {
	case 0:
		return domain.Identity{}, fmt.Errorf("%w: no user named %q or with email %q", errors.ErrNotFound, name, email)
	case 1:
		return toIdentity(byName[0]), nil
	default:
		return domain.Identity{}, fmt.Errorf("%w: %d users named %q", errors.ErrAmbiguousIdentity, len(byName), name)
	}
}
