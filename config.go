package shopguard

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/calebrossi/shopguard/password"
	"github.com/calebrossi/shopguard/transport"
)

const (
	// EnvProduction enables the strict cookie profile (Secure, SameSite=None).
	EnvProduction = "production"
	// EnvDevelopment is the default profile for local work (SameSite=Lax,
	// Secure off so cookies survive plain http).
	EnvDevelopment = "development"
)

// Config is the full configuration tree, resolved once at startup and treated
// as immutable afterwards. Environment-conditional behavior (cookie flags) is
// derived from it exactly once, in [Config.Cookies].
type Config struct {
	App      AppConfig
	Server   ServerConfig
	JWT      JWTConfig
	Redis    RedisConfig
	Database DatabaseConfig
	Password password.Config
	Log      LogConfig
}

// AppConfig identifies the deployment.
type AppConfig struct {
	Name string
	Env  string
}

// IsProduction reports whether the strict cookie/CORS profile applies.
func (a AppConfig) IsProduction() bool { return a.Env == EnvProduction }

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	GracefulTimeout time.Duration
}

// JWTConfig holds the two signing domains. Each domain has an independent
// secret so compromise of one key cannot forge tokens in the other.
type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
	Leeway        time.Duration
}

// RedisConfig holds session-store connection settings. Retry policy lives
// here, on the client, not in the engine: the core never retries store
// operations itself.
type RedisConfig struct {
	Addr            string
	Password        string
	DB              int
	KeyPrefix       string
	DialTimeout     time.Duration
	MaxRetries      int
	MinRetryBackoff time.Duration
	MaxRetryBackoff time.Duration
}

// DatabaseConfig holds the user-store pool settings.
type DatabaseConfig struct {
	URL               string
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
	QueryTimeout      time.Duration
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level  string
	Pretty bool
}

// DefaultConfig returns the development defaults: 15-minute access tokens,
// 7-day refresh tokens, Redis on localhost, lax cookies.
func DefaultConfig() Config {
	return Config{
		App: AppConfig{
			Name: "shopguard",
			Env:  EnvDevelopment,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    10 * time.Second,
			IdleTimeout:     60 * time.Second,
			GracefulTimeout: 15 * time.Second,
		},
		JWT: JWTConfig{
			AccessTTL:  15 * time.Minute,
			RefreshTTL: 7 * 24 * time.Hour,
			Issuer:     "shopguard",
			Leeway:     30 * time.Second,
		},
		Redis: RedisConfig{
			Addr:            "localhost:6379",
			KeyPrefix:       "refresh_token",
			DialTimeout:     5 * time.Second,
			MaxRetries:      3,
			MinRetryBackoff: 100 * time.Millisecond,
			MaxRetryBackoff: 3 * time.Second,
		},
		Database: DatabaseConfig{
			MaxConns:          20,
			MinConns:          2,
			MaxConnLifetime:   30 * time.Minute,
			MaxConnIdleTime:   10 * time.Minute,
			HealthCheckPeriod: 30 * time.Second,
			QueryTimeout:      2 * time.Second,
		},
		Password: password.Config{
			Memory:      64 * 1024,
			Time:        2,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate rejects configurations that would silently weaken the token
// design: missing or shared domain secrets, non-positive lifetimes, an access
// lifetime at or above the refresh lifetime.
func (c Config) Validate() error {
	if len(c.JWT.AccessSecret) < 32 {
		return errors.New("jwt: access secret must be at least 32 bytes")
	}
	if len(c.JWT.RefreshSecret) < 32 {
		return errors.New("jwt: refresh secret must be at least 32 bytes")
	}
	if c.JWT.AccessSecret == c.JWT.RefreshSecret {
		return errors.New("jwt: access and refresh secrets must differ")
	}
	if c.JWT.AccessTTL <= 0 || c.JWT.RefreshTTL <= 0 {
		return errors.New("jwt: token lifetimes must be positive")
	}
	if c.JWT.AccessTTL >= c.JWT.RefreshTTL {
		return errors.New("jwt: access lifetime must be shorter than refresh lifetime")
	}
	if c.JWT.Leeway < 0 || c.JWT.Leeway > 2*time.Minute {
		return errors.New("jwt: invalid leeway")
	}
	if c.Redis.Addr == "" {
		return errors.New("redis: addr required")
	}
	switch c.App.Env {
	case EnvProduction, EnvDevelopment, "test":
	default:
		return fmt.Errorf("app: unknown env %q", c.App.Env)
	}
	return nil
}

// Cookies resolves the environment-conditional cookie attributes. Production
// serves the SPA from a different origin, so cookies must be Secure with
// SameSite=None; everywhere else Lax over plain http.
func (c Config) Cookies() transport.Config {
	tc := transport.Config{
		Path:          "/",
		AccessMaxAge:  c.JWT.AccessTTL,
		RefreshMaxAge: c.JWT.RefreshTTL,
		Secure:        false,
		SameSite:      http.SameSiteLaxMode,
	}
	if c.App.IsProduction() {
		tc.Secure = true
		tc.SameSite = http.SameSiteNoneMode
	}
	return tc
}
