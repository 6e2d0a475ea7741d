package auth

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/jasonrodrigues28/product-landing-page/lib/store/lstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const credentialsYAML = `
users:
  - username: jane
    email: jane@example.com
    password: s3cret
    role: seller
  - username: bob
    email: bob@example.com
    password: hunter2
    role: Buyer
  - username: root
    email: root@example.com
    password: toor
    role: admin
`

func testAuthenticator(t *testing.T) *Authenticator {
	t.Helper()
	creds, err := ParseCredentials([]byte(credentialsYAML))
	require.NoError(t, err)
	return NewAuthenticator(creds)
}

func TestParseCredentials(t *testing.T) {
	creds, err := ParseCredentials([]byte(credentialsYAML))
	require.NoError(t, err)
	require.Len(t, creds.Users, 3)
	assert.Equal(t, RoleBuyer, creds.Users[1].Role, "roles are normalized")

	_, err = ParseCredentials([]byte("users:\n  - username: x\n    password: y\n    role: guest\n"))
	assert.Error(t, err)
	_, err = ParseCredentials([]byte("users:\n  - username: x\n    role: buyer\n"))
	assert.Error(t, err)
	_, err = ParseCredentials([]byte("users:\n  - {username: x, password: y, role: buyer}\n  - {username: x, password: z, role: buyer}\n"))
	assert.Error(t, err)
	_, err = ParseCredentials([]byte("users: [broken"))
	assert.Error(t, err)
}

func TestLoadCredentials(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.yaml")
	require.NoError(t, os.WriteFile(path, []byte(credentialsYAML), 0o600))

	creds, err := LoadCredentials(path)
	require.NoError(t, err)
	assert.Len(t, creds.Users, 3)

	_, err = LoadCredentials(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLogin(t *testing.T) {
	a := testAuthenticator(t)

	s, err := a.Login("jane", "s3cret", RoleSeller)
	require.NoError(t, err)
	assert.Equal(t, Session{Username: "jane", Email: "jane@example.com", Role: RoleSeller}, s)
	assert.True(t, s.IsAuthenticated())
	assert.True(t, s.IsSeller())
	assert.False(t, s.IsBuyer())
	assert.False(t, s.IsAdmin())

	_, err = a.Login("jane", "wrong", RoleSeller)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = a.Login("nobody", "s3cret", RoleSeller)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = a.Login("jane", "s3cret", RoleBuyer)
	assert.ErrorIs(t, err, ErrRoleMismatch)
	_, err = a.Login("jane", "s3cret-but-far-too-long-for-the-form", RoleSeller)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	a.Logout(&s)
	assert.False(t, s.IsAuthenticated())
	assert.False(t, s.IsSeller())
}

func TestGuards(t *testing.T) {
	a := testAuthenticator(t)
	seller, err := a.Login("jane", "s3cret", RoleSeller)
	require.NoError(t, err)
	buyer, err := a.Login("bob", "hunter2", RoleBuyer)
	require.NoError(t, err)

	assert.NoError(t, RequireAuth(buyer, "/cart"))
	assert.NoError(t, RequireSeller(seller, "/seller"))
	assert.NoError(t, RequireBuyer(buyer, "/cart"))

	err = RequireAuth(Session{}, "/cart")
	var redirect *RedirectError
	require.True(t, errors.As(err, &redirect))
	assert.Equal(t, LoginRoute, redirect.Route)
	assert.Equal(t, "/cart", redirect.Redirect)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	assert.ErrorIs(t, RequireSeller(buyer, "/seller"), ErrRoleMismatch)
	assert.ErrorIs(t, RequireBuyer(seller, "/cart"), ErrRoleMismatch)
	assert.ErrorIs(t, RequireSeller(Session{}, "/seller"), ErrNotAuthenticated)
}

func TestDirectory(t *testing.T) {
	kv := lstore.NewLocalStore()
	d, err := OpenDirectory(kv)
	require.NoError(t, err)

	u, err := d.Add(User{Username: "jane", Email: "jane@example.com", Role: "seller"})
	require.NoError(t, err)
	_, err = uuid.Parse(u.ID)
	assert.NoError(t, err, "ids are uuids")

	_, err = d.Add(User{Username: "jane", Role: RoleBuyer})
	assert.ErrorIs(t, err, ErrUserExists)
	_, err = d.Add(User{Username: "x", Role: "guest"})
	assert.Error(t, err)

	creds, err := ParseCredentials([]byte(credentialsYAML))
	require.NoError(t, err)
	added, err := d.SyncFromCredentials(creds)
	require.NoError(t, err)
	assert.Equal(t, 2, added)
	assert.Len(t, d.List(), 3)

	reopened, err := OpenDirectory(kv)
	require.NoError(t, err)
	assert.Equal(t, d.List(), reopened.List())

	ok, err := reopened.Delete(u.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = reopened.Delete(u.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Len(t, reopened.List(), 2)
}
