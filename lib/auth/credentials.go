package auth

import (
	"crypto/subtle"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/lni/dragonboat/v4/logger"
	"gopkg.in/yaml.v3"
)

var Logger = logger.GetLogger("auth")

// Input limits of the login form.
const (
	MaxUsernameLength = 30
	MaxPasswordLength = 20
)

// Account is one entry of the credential list.
type Account struct {
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Role     Role   `yaml:"role"`
}

// Credentials is the static list of accounts allowed to log in.
type Credentials struct {
	Users []Account `yaml:"users"`
}

// ParseCredentials decodes and validates a YAML credential list:
//
//	users:
//	  - username: jane
//	    email: jane@example.com
//	    password: secret
//	    role: seller
func ParseCredentials(data []byte) (Credentials, error) {
	var creds Credentials
	if err := yaml.Unmarshal(data, &creds); err != nil {
		return Credentials{}, fmt.Errorf("auth: parse credentials: %w", err)
	}

	seen := make(map[string]bool, len(creds.Users))
	for i, u := range creds.Users {
		if u.Username == "" || u.Password == "" {
			return Credentials{}, fmt.Errorf("auth: entry %d: username and password are required", i)
		}
		if seen[u.Username] {
			return Credentials{}, fmt.Errorf("auth: duplicate username %q", u.Username)
		}
		seen[u.Username] = true
		role, err := ParseRole(string(u.Role))
		if err != nil {
			return Credentials{}, fmt.Errorf("auth: entry %q: %w", u.Username, err)
		}
		creds.Users[i].Role = role
	}
	return creds, nil
}

// LoadCredentials reads a credential file.
func LoadCredentials(path string) (Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Credentials{}, fmt.Errorf("auth: read credentials: %w", err)
	}
	return ParseCredentials(data)
}

// Authenticator checks logins against a credential list.
type Authenticator struct {
	creds Credentials
}

func NewAuthenticator(creds Credentials) *Authenticator {
	return &Authenticator{creds: creds}
}

// Login returns the session of username if password matches and the account
// has the requested role.
func (a *Authenticator) Login(username, password string, role Role) (Session, error) {
	if utf8.RuneCountInString(username) > MaxUsernameLength || utf8.RuneCountInString(password) > MaxPasswordLength {
		return Session{}, ErrInvalidCredentials
	}

	for _, u := range a.creds.Users {
		if u.Username != username {
			continue
		}
		if subtle.ConstantTimeCompare([]byte(u.Password), []byte(password)) != 1 {
			break
		}
		if u.Role != role {
			Logger.Infof("login of %s rejected: role %s requested, account is %s", username, role, u.Role)
			return Session{}, ErrRoleMismatch
		}
		Logger.Debugf("%s logged in as %s", username, role)
		return Session{Username: u.Username, Email: u.Email, Role: u.Role}, nil
	}

	Logger.Infof("login of %q rejected: invalid credentials", username)
	return Session{}, ErrInvalidCredentials
}

// Logout clears the session.
func (a *Authenticator) Logout(s *Session) {
	if s.IsAuthenticated() {
		Logger.Debugf("%s logged out", s.Username)
	}
	*s = Session{}
}
