package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/jasonrodrigues28/product-landing-page/lib/store"
)

// UsersKey is the store key of the user directory.
const UsersKey = "users"

// ErrUserExists is returned when adding a second user with the same username.
var ErrUserExists = errors.New("auth: user already exists")

// User is a registered account as shown to administrators.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

// Directory is the administrator's view of all registered users.
type Directory struct {
	mu    sync.RWMutex
	kv    store.IStore
	users []User
}

// OpenDirectory loads the directory persisted in kv.
func OpenDirectory(kv store.IStore) (*Directory, error) {
	d := &Directory{kv: kv, users: make([]User, 0)}

	data, found, err := kv.Get(UsersKey)
	if err != nil {
		return nil, fmt.Errorf("auth: load users: %w", err)
	}
	if found {
		if err := json.Unmarshal(data, &d.users); err != nil {
			return nil, fmt.Errorf("auth: decode users: %w", err)
		}
	}
	return d, nil
}

func (d *Directory) persist() error {
	data, err := json.Marshal(d.users)
	if err != nil {
		return fmt.Errorf("auth: encode users: %w", err)
	}
	if err := d.kv.Set(UsersKey, data); err != nil {
		return fmt.Errorf("auth: save users: %w", err)
	}
	return nil
}

// List returns all users in registration order.
func (d *Directory) List() []User {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return slices.Clone(d.users)
}

// Add registers u under a new random id and returns the stored user.
func (d *Directory) Add(u User) (User, error) {
	if u.Username == "" {
		return User{}, fmt.Errorf("auth: username is required")
	}
	role, err := ParseRole(string(u.Role))
	if err != nil {
		return User{}, err
	}
	u.Role = role

	d.mu.Lock()
	defer d.mu.Unlock()

	if slices.ContainsFunc(d.users, func(existing User) bool { return existing.Username == u.Username }) {
		return User{}, fmt.Errorf("%w: %s", ErrUserExists, u.Username)
	}
	u.ID = uuid.New().String()
	d.users = append(d.users, u)
	return u, d.persist()
}

// Delete removes the user with the given id and reports whether it existed.
func (d *Directory) Delete(id string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := len(d.users)
	d.users = slices.DeleteFunc(d.users, func(u User) bool { return u.ID == id })
	if len(d.users) == n {
		return false, nil
	}
	Logger.Infof("deleted user %s", id)
	return true, d.persist()
}

// SyncFromCredentials adds every account of creds that is not registered yet.
func (d *Directory) SyncFromCredentials(creds Credentials) (int, error) {
	added := 0
	for _, a := range creds.Users {
		_, err := d.Add(User{Username: a.Username, Email: a.Email, Role: a.Role})
		switch {
		case errors.Is(err, ErrUserExists):
		case err != nil:
			return added, err
		default:
			added++
		}
	}
	return added, nil
}
