package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Domain selects one of the two independent signing namespaces. Tokens are
// only ever valid within the domain that issued them: each domain has its own
// secret and lifetime, so an access token presented to refresh verification
// fails the signature check, and vice versa.
type Domain string

const (
	// DomainAccess signs the short-lived per-request credential.
	DomainAccess Domain = "access"
	// DomainRefresh signs the long-lived credential used only to mint new
	// access tokens.
	DomainRefresh Domain = "refresh"
)

var (
	// ErrExpired means the token authenticated correctly but its expiry has
	// passed. Callers special-case this as "needs refresh".
	ErrExpired = errors.New("token expired")
	// ErrMalformed means the value is not a structurally valid token.
	ErrMalformed = errors.New("malformed token")
	// ErrSignatureInvalid means the token failed authentication: tampered,
	// or signed under the other domain's secret.
	ErrSignatureInvalid = errors.New("invalid token signature")
	// ErrUnknownDomain means the caller passed a Domain the codec was not
	// configured for.
	ErrUnknownDomain = errors.New("unknown signing domain")
)

// Config carries the per-domain secrets and lifetimes.
type Config struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
	Leeway        time.Duration
}

// Codec issues and verifies signed, time-bound tokens. Signing is symmetric
// HS256; no public verification is exposed. A Codec is immutable after
// NewCodec and safe for concurrent use.
type Codec struct {
	config Config
	now    func() time.Time
}

// NewCodec validates the configuration and returns a ready Codec. Equal
// domain secrets are rejected: domain isolation is the whole point of having
// two of them.
func NewCodec(cfg Config) (*Codec, error) {
	if len(cfg.AccessSecret) == 0 || len(cfg.RefreshSecret) == 0 {
		return nil, errors.New("both domain secrets are required")
	}
	if string(cfg.AccessSecret) == string(cfg.RefreshSecret) {
		return nil, errors.New("domain secrets must differ")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	return &Codec{config: cfg, now: time.Now}, nil
}

func (c *Codec) domainSecret(domain Domain) ([]byte, error) {
	switch domain {
	case DomainAccess:
		return c.config.AccessSecret, nil
	case DomainRefresh:
		return c.config.RefreshSecret, nil
	default:
		return nil, ErrUnknownDomain
	}
}

func (c *Codec) domainTTL(domain Domain) time.Duration {
	if domain == DomainRefresh {
		return c.config.RefreshTTL
	}
	return c.config.AccessTTL
}

// Issue produces a signed token for subjectID in the given domain, expiring
// after the domain's lifetime. Every token carries a random jti, so two
// tokens issued for the same subject in the same second are still distinct.
func (c *Codec) Issue(domain Domain, subjectID string) (string, error) {
	secret, err := c.domainSecret(domain)
	if err != nil {
		return "", err
	}
	if subjectID == "" {
		return "", errors.New("empty subject")
	}

	now := c.now()
	claims := jwt.RegisteredClaims{
		Subject:   subjectID,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.domainTTL(domain))),
	}
	if c.config.Issuer != "" {
		claims.Issuer = c.config.Issuer
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// Verify authenticates token against the domain's secret and checks expiry.
// It returns the subject identifier, or ErrExpired, ErrSignatureInvalid, or
// ErrMalformed. Expiry is only reported for tokens that authenticated; a
// tampered token is never "expired".
func (c *Codec) Verify(domain Domain, token string) (string, error) {
	secret, err := c.domainSecret(domain)
	if err != nil {
		return "", err
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	}
	if c.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(c.config.Leeway))
	}
	if c.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(c.config.Issuer))
	}

	parsed, err := jwt.NewParser(options...).ParseWithClaims(
		token,
		&jwt.RegisteredClaims{},
		func(*jwt.Token) (interface{}, error) { return secret, nil },
	)
	if err != nil {
		return "", mapParseError(err)
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return "", ErrMalformed
	}
	return claims.Subject, nil
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrSignatureInvalid
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	default:
		return ErrMalformed
	}
}
