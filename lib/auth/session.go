package auth

import (
	"errors"
	"fmt"
	"strings"
)

// Role of a storefront account.
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

// ParseRole validates a role name.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleBuyer, RoleSeller, RoleAdmin:
		return r, nil
	default:
		return "", fmt.Errorf("invalid role %q (expected one of: buyer, seller, admin)", s)
	}
}

var (
	ErrInvalidCredentials = errors.New("auth: invalid username or password")
	ErrRoleMismatch       = errors.New("auth: account does not have the requested role")
	ErrNotAuthenticated   = errors.New("auth: not logged in")
)

// Session is the identity of the current user. The zero value is a logged
// out session.
type Session struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

func (s Session) IsAuthenticated() bool { return s.Username != "" }
func (s Session) IsSeller() bool        { return s.IsAuthenticated() && s.Role == RoleSeller }
func (s Session) IsBuyer() bool         { return s.IsAuthenticated() && s.Role == RoleBuyer }
func (s Session) IsAdmin() bool         { return s.IsAuthenticated() && s.Role == RoleAdmin }

// --------------------------------------------------------------------------
// Route guards
// --------------------------------------------------------------------------

// LoginRoute is the route unauthorized requests are sent to.
const LoginRoute = "login"

// RedirectError tells the caller to send the user to Route, coming back to
// Redirect after login.
type RedirectError struct {
	Route    string
	Redirect string
	Reason   error
}

func (e *RedirectError) Error() string {
	return fmt.Sprintf("redirect to %s (from %s): %v", e.Route, e.Redirect, e.Reason)
}

func (e *RedirectError) Unwrap() error {
	return e.Reason
}

func redirect(path string, reason error) error {
	return &RedirectError{Route: LoginRoute, Redirect: path, Reason: reason}
}

// RequireAuth guards a route that any logged in user may open.
func RequireAuth(s Session, path string) error {
	if !s.IsAuthenticated() {
		return redirect(path, ErrNotAuthenticated)
	}
	return nil
}

// RequireSeller guards seller pages.
func RequireSeller(s Session, path string) error {
	if !s.IsAuthenticated() {
		return redirect(path, ErrNotAuthenticated)
	}
	if !s.IsSeller() {
		return redirect(path, ErrRoleMismatch)
	}
	return nil
}

// RequireBuyer guards buyer pages.
func RequireBuyer(s Session, path string) error {
	if !s.IsAuthenticated() {
		return redirect(path, ErrNotAuthenticated)
	}
	if !s.IsBuyer() {
		return redirect(path, ErrRoleMismatch)
	}
	return nil
}
