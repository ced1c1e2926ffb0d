package impactful

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

// dummyHash is compared against when the username does not exist so that
// unknown users cost the same as wrong passwords.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("impactful-dummy-password"), bcrypt.DefaultCost)

// HashPassword returns a salted bcrypt hash of raw.
func HashPassword(raw string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Accounts verifies admin credentials.
type Accounts struct {
	store *Store
}

// NewAccounts creates an Accounts over store.
func NewAccounts(store *Store) *Accounts {
	return &Accounts{store: store}
}

// Authenticate returns the admin account matching username and password.
// Unknown users, wrong passwords and non-admin accounts all yield
// ErrInvalidCredentials.
func (a *Accounts) Authenticate(ctx context.Context, username, password string) (User, error) {
	u, err := a.store.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil || !u.IsAdmin {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

// ChangePassword replaces the password of userID after checking current.
func (a *Accounts) ChangePassword(ctx context.Context, userID int64, current, next string) error {
	u, err := a.store.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)) != nil {
		return ErrInvalidCredentials
	}
	if len(next) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalid, minPasswordLength)
	}
	hash, err := HashPassword(next)
	if err != nil {
		return err
	}
	return a.store.UpdatePassword(ctx, userID, hash)
}
