// Package auth covers logins against a static credential list, the session of
// the current user, the route guards of the storefront pages and the user
// directory administrators work with.
//
// Credentials are read from a YAML file (see ParseCredentials). Sessions carry
// the user's email, which is the id namespace of a seller's products.
package auth
