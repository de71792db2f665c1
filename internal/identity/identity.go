// Package identity carries the authenticated-user capability that the HTTP
// boundary hands to every mutation. Credential verification is entirely the
// external auth provider's job; this backend only consumes the resulting
// opaque user record and never checks passwords or issues tokens.
package identity

// User is the opaque authenticated user record supplied by the auth
// provider. The zero value represents an anonymous caller.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Image string `json:"image"`
}

// Authenticated reports whether the capability represents a signed-in user.
func (u User) Authenticated() bool {
	return u.ID != ""
}

// DisplayName resolves the name stamped on comments: name, then email,
// then "Anonymous".
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	if u.Email != "" {
		return u.Email
	}
	return "Anonymous"
}
