// Package postgres implements shopguard.UserProvider on a pgx connection
// pool. Schema lives in migrations/, applied by cmd/shopguard-migrate.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	shopguard "github.com/calebrossi/shopguard"
)

const uniqueViolation = "23505"

// Store is a Postgres-backed user provider.
type Store struct {
	pool         *pgxpool.Pool
	queryTimeout time.Duration
}

var _ shopguard.UserProvider = (*Store)(nil)

// New parses the pool configuration, connects, and pings so a bad DSN fails
// at startup instead of on the first login.
func New(ctx context.Context, cfg shopguard.DatabaseConfig) (*Store, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pcfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		pcfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		pcfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	if cfg.HealthCheckPeriod > 0 {
		pcfg.HealthCheckPeriod = cfg.HealthCheckPeriod
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return &Store{pool: pool, queryTimeout: cfg.QueryTimeout}, nil
}

// Close releases the pool.
func (s *Store) Close() { s.pool.Close() }

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.queryTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.queryTimeout)
}

const (
	qInsert = `
INSERT INTO users (id, name, email, password_hash, role)
VALUES ($1, $2, lower($3), $4, $5);`

	qByEmail = `
SELECT id, name, email, role, password_hash
FROM users
WHERE email = lower($1);`

	qByID = `
SELECT id, name, email, role
FROM users
WHERE id = $1;`
)

// Create inserts an account, defaulting the role to "user". A duplicate
// email maps to shopguard.ErrAccountExists.
func (s *Store) Create(ctx context.Context, input shopguard.CreateUserInput) (*shopguard.Identity, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	role := input.Role
	if role == "" {
		role = shopguard.RoleUser
	}

	identity := shopguard.Identity{
		ID:    uuid.NewString(),
		Name:  input.Name,
		Email: input.Email,
		Role:  role,
	}

	if _, err := s.pool.Exec(ctx, qInsert, identity.ID, identity.Name, identity.Email, input.PasswordHash, role); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, shopguard.ErrAccountExists
		}
		return nil, fmt.Errorf("user insert: %w", err)
	}
	return &identity, nil
}

// FindByEmail returns the credentials for login, or ErrUserNotFound.
func (s *Store) FindByEmail(ctx context.Context, email string) (*shopguard.Credentials, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var cred shopguard.Credentials
	err := s.pool.QueryRow(ctx, qByEmail, email).
		Scan(&cred.ID, &cred.Name, &cred.Email, &cred.Role, &cred.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shopguard.ErrUserNotFound
		}
		return nil, fmt.Errorf("user by email: %w", err)
	}
	return &cred, nil
}

// FindByID returns the identity, password hash excluded, or ErrUserNotFound.
func (s *Store) FindByID(ctx context.Context, id string) (*shopguard.Identity, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var identity shopguard.Identity
	err := s.pool.QueryRow(ctx, qByID, id).
		Scan(&identity.ID, &identity.Name, &identity.Email, &identity.Role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shopguard.ErrUserNotFound
		}
		return nil, fmt.Errorf("user by id: %w", err)
	}
	return &identity, nil
}
