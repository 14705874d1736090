// Package memory is an in-process UserProvider for tests and local
// development. Not for production: state vanishes with the process.
package memory

import (
	"context"
	"strings"
	"sync"

	shopguard "github.com/calebrossi/shopguard"
	"github.com/google/uuid"
)

// Store implements shopguard.UserProvider over a map.
type Store struct {
	mu      sync.RWMutex
	byID    map[string]shopguard.Credentials
	idByEml map[string]string
}

var _ shopguard.UserProvider = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{
		byID:    make(map[string]shopguard.Credentials),
		idByEml: make(map[string]string),
	}
}

// Create adds an account with a fresh UUID, defaulting the role to "user".
func (s *Store) Create(_ context.Context, input shopguard.CreateUserInput) (*shopguard.Identity, error) {
	email := normalizeEmail(input.Email)
	role := input.Role
	if role == "" {
		role = shopguard.RoleUser
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.idByEml[email]; taken {
		return nil, shopguard.ErrAccountExists
	}

	cred := shopguard.Credentials{
		Identity: shopguard.Identity{
			ID:    uuid.NewString(),
			Name:  input.Name,
			Email: email,
			Role:  role,
		},
		PasswordHash: input.PasswordHash,
	}
	s.byID[cred.ID] = cred
	s.idByEml[email] = cred.ID

	identity := cred.Identity
	return &identity, nil
}

// FindByEmail returns the credentials for login, or ErrUserNotFound.
func (s *Store) FindByEmail(_ context.Context, email string) (*shopguard.Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.idByEml[normalizeEmail(email)]
	if !ok {
		return nil, shopguard.ErrUserNotFound
	}
	cred := s.byID[id]
	return &cred, nil
}

// FindByID returns the identity without secret fields, or ErrUserNotFound.
func (s *Store) FindByID(_ context.Context, id string) (*shopguard.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cred, ok := s.byID[id]
	if !ok {
		return nil, shopguard.ErrUserNotFound
	}
	identity := cred.Identity
	return &identity, nil
}

// Delete removes an account. Tests use it to simulate a deleted user holding
// a still-valid access token.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cred, ok := s.byID[id]; ok {
		delete(s.idByEml, cred.Email)
		delete(s.byID, id)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
