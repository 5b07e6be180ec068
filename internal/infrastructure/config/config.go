package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,     default=8080"`
	Env      string `env:"ENV,      default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Database DatabaseConfig
	Redis    RedisConfig
	Security SecurityConfig
	Root     RootConfig
	Audit    AuditConfig
}

type DatabaseConfig struct {
	// DSN is passed to the sqlite driver. foreign_keys must stay on for the
	// users_roles cascade constraints.
	DSN string `env:"DATABASE_DSN, default=file:directory.db?_pragma=foreign_keys(1)"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// SecurityConfig is the security.* surface: token signing material and the
// password hashing work factor.
type SecurityConfig struct {
	Secret     string `env:"SECURITY_SECRET"`
	Issuer     string `env:"SECURITY_ISSUER,      default=directory-api"`
	Audience   string `env:"SECURITY_AUDIENCE,    default=directory-clients"`
	Realm      string `env:"SECURITY_REALM,       default=directory"`
	TokenType  string `env:"SECURITY_TOKEN_TYPE,  default=Bearer"`
	ValidityMS int64  `env:"SECURITY_VALIDITY,    default=1800000"`
	HashRounds int    `env:"SECURITY_HASH_ROUNDS, default=12"`
}

// Validity returns the token TTL as a duration.
func (c SecurityConfig) Validity() time.Duration {
	return time.Duration(c.ValidityMS) * time.Millisecond
}

// RootConfig describes the bootstrap administrator account seeded on an
// empty user table.
type RootConfig struct {
	FirstName string `env:"ROOT_FIRST_NAME, default=root"`
	LastName  string `env:"ROOT_LAST_NAME,  default=root"`
	Email     string `env:"ROOT_EMAIL,      default=root@gmail.com"`
	Password  string `env:"ROOT_PASSWORD,   default=123456"`
}

type AuditConfig struct {
	Workers int `env:"AUDIT_WORKERS, default=4"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	return &cfg, nil
}
