package shopguard

import "context"

// Role values recognized by the role gate. The user store owns the role
// field; the core only compares it.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Identity is the authenticated principal attached to a request after the
// gate verified its access token. It never carries secret fields.
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Credentials is the lookup result used during login. It is the only place
// the password hash crosses the user-store boundary.
type Credentials struct {
	Identity
	PasswordHash string `json:"-"`
}

// TokenPair is the access/refresh pair produced by [Engine.IssuePair].
type TokenPair struct {
	Access  string
	Refresh string
}

// CreateUserInput carries the fields needed to create an account. The
// password arrives already hashed; the core never stores plaintext.
type CreateUserInput struct {
	Name         string
	Email        string
	PasswordHash string
	Role         string
}

// UserProvider is the interface callers implement to integrate shopguard
// with their user database. The password hash is exposed only through
// FindByEmail; FindByID excludes secret fields so its result can be attached
// to request context verbatim.
type UserProvider interface {
	FindByEmail(ctx context.Context, email string) (*Credentials, error)
	FindByID(ctx context.Context, id string) (*Identity, error)
	Create(ctx context.Context, input CreateUserInput) (*Identity, error)
}
