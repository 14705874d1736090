package shopguard

import (
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig reads YAML configuration from path (optional) with environment
// variable overrides (SHOPGUARD_JWT_ACCESS_SECRET and friends) layered on
// top of DefaultConfig. The result is validated before use.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	def := DefaultConfig()

	v.SetDefault("app.name", def.App.Name)
	v.SetDefault("app.env", def.App.Env)

	v.SetDefault("server.addr", def.Server.Addr)
	v.SetDefault("server.read_timeout", def.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", def.Server.WriteTimeout)
	v.SetDefault("server.idle_timeout", def.Server.IdleTimeout)
	v.SetDefault("server.graceful_timeout", def.Server.GracefulTimeout)

	v.SetDefault("jwt.access_ttl", def.JWT.AccessTTL)
	v.SetDefault("jwt.refresh_ttl", def.JWT.RefreshTTL)
	v.SetDefault("jwt.issuer", def.JWT.Issuer)
	v.SetDefault("jwt.leeway", def.JWT.Leeway)

	v.SetDefault("redis.addr", def.Redis.Addr)
	v.SetDefault("redis.key_prefix", def.Redis.KeyPrefix)
	v.SetDefault("redis.dial_timeout", def.Redis.DialTimeout)
	v.SetDefault("redis.max_retries", def.Redis.MaxRetries)
	v.SetDefault("redis.min_retry_backoff", def.Redis.MinRetryBackoff)
	v.SetDefault("redis.max_retry_backoff", def.Redis.MaxRetryBackoff)

	v.SetDefault("database.max_conns", def.Database.MaxConns)
	v.SetDefault("database.min_conns", def.Database.MinConns)
	v.SetDefault("database.max_conn_lifetime", def.Database.MaxConnLifetime)
	v.SetDefault("database.max_conn_idle_time", def.Database.MaxConnIdleTime)
	v.SetDefault("database.health_check_period", def.Database.HealthCheckPeriod)
	v.SetDefault("database.query_timeout", def.Database.QueryTimeout)

	v.SetDefault("password.memory", def.Password.Memory)
	v.SetDefault("password.time", def.Password.Time)
	v.SetDefault("password.parallelism", def.Password.Parallelism)
	v.SetDefault("password.salt_length", def.Password.SaltLength)
	v.SetDefault("password.key_length", def.Password.KeyLength)

	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.pretty", def.Log.Pretty)

	v.SetEnvPrefix("shopguard")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := def
	cfg.App.Name = v.GetString("app.name")
	cfg.App.Env = v.GetString("app.env")

	cfg.Server.Addr = v.GetString("server.addr")
	cfg.Server.ReadTimeout = v.GetDuration("server.read_timeout")
	cfg.Server.WriteTimeout = v.GetDuration("server.write_timeout")
	cfg.Server.IdleTimeout = v.GetDuration("server.idle_timeout")
	cfg.Server.GracefulTimeout = v.GetDuration("server.graceful_timeout")

	cfg.JWT.AccessSecret = v.GetString("jwt.access_secret")
	cfg.JWT.RefreshSecret = v.GetString("jwt.refresh_secret")
	cfg.JWT.AccessTTL = v.GetDuration("jwt.access_ttl")
	cfg.JWT.RefreshTTL = v.GetDuration("jwt.refresh_ttl")
	cfg.JWT.Issuer = v.GetString("jwt.issuer")
	cfg.JWT.Leeway = v.GetDuration("jwt.leeway")

	cfg.Redis.Addr = v.GetString("redis.addr")
	cfg.Redis.Password = v.GetString("redis.password")
	cfg.Redis.DB = v.GetInt("redis.db")
	cfg.Redis.KeyPrefix = v.GetString("redis.key_prefix")
	cfg.Redis.DialTimeout = v.GetDuration("redis.dial_timeout")
	cfg.Redis.MaxRetries = v.GetInt("redis.max_retries")
	cfg.Redis.MinRetryBackoff = v.GetDuration("redis.min_retry_backoff")
	cfg.Redis.MaxRetryBackoff = v.GetDuration("redis.max_retry_backoff")

	cfg.Database.URL = v.GetString("database.url")
	cfg.Database.MaxConns = int32(v.GetInt("database.max_conns"))
	cfg.Database.MinConns = int32(v.GetInt("database.min_conns"))
	cfg.Database.MaxConnLifetime = v.GetDuration("database.max_conn_lifetime")
	cfg.Database.MaxConnIdleTime = v.GetDuration("database.max_conn_idle_time")
	cfg.Database.HealthCheckPeriod = v.GetDuration("database.health_check_period")
	cfg.Database.QueryTimeout = v.GetDuration("database.query_timeout")

	cfg.Password.Memory = uint32(v.GetUint32("password.memory"))
	cfg.Password.Time = uint32(v.GetUint32("password.time"))
	cfg.Password.Parallelism = uint8(v.GetUint("password.parallelism"))
	cfg.Password.SaltLength = uint32(v.GetUint32("password.salt_length"))
	cfg.Password.KeyLength = uint32(v.GetUint32("password.key_length"))

	cfg.Log.Level = v.GetString("log.level")
	cfg.Log.Pretty = v.GetBool("log.pretty")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
