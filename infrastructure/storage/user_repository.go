//go:generate go run go.uber.org/mock/mockgen -source=user_repository.go -destination=../../mocks/mock_user_repository.go -package=mocks
package storage

import (
	"dm-lab/errors"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const (
	userPrefix      = "user:"
	userEmailPrefix = "user_email:"
	userNamePrefix  = "user_name:"
)

type IUserRepository interface {
	CreateUser(name, email, hashedPassword string) (string, error)
	GetUserByID(id string) (User, error)
	GetUserByEmail(email string) (User, error)
	FindUsersByName(name string) ([]User, error)
}

type UserRepository struct {
	db  *badger.DB
	now func() time.Time
}

func NewUserRepository(db *badger.DB) *UserRepository {
	return &UserRepository{db: db, now: time.Now}
}

// User is the domain-friendly representation of a user in the repository layer.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Roles        []string
	CreatedAt    time.Time
}

type diskUser struct {
	ID           string   `cbor:"id"`
	Name         string   `cbor:"name"`
	Email        string   `cbor:"email"`
	PasswordHash string   `cbor:"password_hash"`
	Roles        []string `cbor:"roles"`
	CreatedAt    int64    `cbor:"created_at"`
}

// CreateUser persists the user and returns the newly generated ID.
// Emails are unique (case-insensitive); names are not, lookups by name may be ambiguous.
func (u *UserRepository) CreateUser(name, email, hashedPassword string) (string, error) {
	newID := uuid.NewString()
	user := diskUser{
		ID:           newID,
		Name:         name,
		Email:        NormalizeEmail(email),
		PasswordHash: hashedPassword,
		Roles:        []string{"user"},
		CreatedAt:    u.now().UnixNano(),
	}
	data, err := encode(user)
	if err != nil {
		return "", fmt.Errorf("marshal failed: %w", err)
	}

	err = u.db.Update(func(txn *badger.Txn) error {
		emailKey := []byte(userEmailPrefix + user.Email)
		if _, err := txn.Get(emailKey); err == nil {
			return errors.ErrUserAlreadyExists
		} else if !stderrors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := txn.Set(emailKey, []byte(newID)); err != nil {
			return err
		}
		if err := txn.Set(userNameKey(name, newID), nil); err != nil {
			return err
		}
		return txn.Set([]byte(userPrefix+newID), data)
	})
	if err != nil {
		return "", err
	}
	return newID, nil
}

func (u *UserRepository) GetUserByID(id string) (User, error) {
	var user User
	err := u.db.View(func(txn *badger.Txn) error {
		var err error
		user, err = getUser(txn, id)
		return err
	})
	return user, err
}

func (u *UserRepository) GetUserByEmail(email string) (User, error) {
	var user User
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(userEmailPrefix + NormalizeEmail(email)))
		if stderrors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: user with email %s", errors.ErrNotFound, email)
		}
		if err != nil {
			return err
		}
		id, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		user, err = getUser(txn, string(id))
		return err
	})
	return user, err
}

// FindUsersByName returns every user whose name matches exactly. An empty slice means no match.
func (u *UserRepository) FindUsersByName(name string) ([]User, error) {
	var users []User
	err := u.db.View(func(txn *badger.Txn) error {
		prefix := []byte(userNamePrefix + name + ":")
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		options.Prefix = prefix
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			id := string(it.Item().Key()[len(prefix):])
			user, err := getUser(txn, id)
			if err != nil {
				return err
			}
			users = append(users, user)
		}
		return nil
	})
	return users, err
}

func getUser(txn *badger.Txn, id string) (User, error) {
	var user diskUser
	item, err := txn.Get([]byte(userPrefix + id))
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return User{}, fmt.Errorf("%w: user %s", errors.ErrNotFound, id)
	}
	if err != nil {
		return User{}, err
	}
	if err = item.Value(func(val []byte) error {
		return decode(val, &user)
	}); err != nil {
		return User{}, err
	}
	return toUserStruct(user), nil
}

// userNameKey puts the id after the name so that users sharing a name coexist.
// Names containing ':' would break the prefix scan and are rejected at registration.
func userNameKey(name, id string) []byte {
	return []byte(userNamePrefix + name + ":" + id)
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func toUserStruct(user diskUser) User {
	return User{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Roles:        user.Roles,
		CreatedAt:    time.Unix(0, user.CreatedAt).UTC(),
	}
}
