// internal/store/accounts.go
//
// Player accounts on the kv backend.
// Keys:
//   - "account:<id>"            -> User JSON
//   - "account:byname:<lower>"  -> user id (case-insensitive username index)
//
// Password hashing and validation happen in the HTTP layer; this file only
// stores records.

package store

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUsernameTaken = errors.New("username taken")
	ErrNoUser        = errors.New("user not found")
)

// User is a registered player.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

const accountsLock = "_accounts"

func userKey(id string) string       { return "account:" + id }
func usernameKey(name string) string { return "account:byname:" + strings.ToLower(name) }

// CreateUser stores a new account with a fresh id.
func (r *Repo) CreateUser(username, passwordHash string) (User, error) {
	mu := r.lock(accountsLock)
	mu.Lock()
	defer mu.Unlock()

	var existing string
	switch err := r.readJSON(usernameKey(username), &existing); {
	case err == nil && existing != "":
		return User{}, ErrUsernameTaken
	case err != nil && !errors.Is(err, ErrNotFound):
		return User{}, fmt.Errorf("check username: %w", err)
	}
	u := User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	if !r.writeJSON(userKey(u.ID), u) {
		return User{}, errors.New("could not save user")
	}
	if !r.writeJSON(usernameKey(username), u.ID) {
		r.delete(userKey(u.ID))
		return User{}, errors.New("could not save user")
	}
	return u, nil
}

// UserByUsername looks an account up case-insensitively.
func (r *Repo) UserByUsername(username string) (User, error) {
	var id string
	if err := r.readJSON(usernameKey(username), &id); err != nil || id == "" {
		return User{}, ErrNoUser
	}
	return r.UserByID(id)
}

// UserByID returns the account with id.
func (r *Repo) UserByID(id string) (User, error) {
	var u User
	if id == "" || r.readJSON(userKey(id), &u) != nil {
		return User{}, ErrNoUser
	}
	return u, nil
}
