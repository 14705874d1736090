package shopguard

import (
	"errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/calebrossi/shopguard/jwt"
	"github.com/calebrossi/shopguard/session"
)

// Builder assembles an Engine from its injected dependencies. The session
// store is deliberately not ambient global state: the Redis client is
// connected by the caller (fail fast at startup) and passed in here.
type Builder struct {
	config Config
	redis  redis.UniversalClient
	users  UserProvider
	log    *zap.Logger
	built  bool
}

// New starts a Builder with development defaults.
func New() *Builder {
	return &Builder{config: DefaultConfig()}
}

// WithConfig replaces the configuration tree.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithRedis injects the connected Redis client backing the session store.
// Ownership stays with the caller, who closes it on shutdown.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithUserProvider injects the external user store.
func (b *Builder) WithUserProvider(users UserProvider) *Builder {
	b.users = users
	return b
}

// WithLogger injects the logger. Defaults to zap.NewNop.
func (b *Builder) WithLogger(log *zap.Logger) *Builder {
	b.log = log
	return b
}

// Build validates the configuration and returns a ready Engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	if b.redis == nil {
		return nil, errors.New("redis client required")
	}
	if b.users == nil {
		return nil, errors.New("user provider required")
	}
	if err := b.config.Validate(); err != nil {
		return nil, err
	}

	codec, err := jwt.NewCodec(jwt.Config{
		AccessSecret:  []byte(b.config.JWT.AccessSecret),
		RefreshSecret: []byte(b.config.JWT.RefreshSecret),
		AccessTTL:     b.config.JWT.AccessTTL,
		RefreshTTL:    b.config.JWT.RefreshTTL,
		Issuer:        b.config.JWT.Issuer,
		Leeway:        b.config.JWT.Leeway,
	})
	if err != nil {
		return nil, err
	}

	log := b.log
	if log == nil {
		log = zap.NewNop()
	}

	b.built = true
	return &Engine{
		config:   b.config,
		codec:    codec,
		sessions: session.NewStore(b.redis, b.config.Redis.KeyPrefix),
		users:    b.users,
		log:      log,
	}, nil
}
