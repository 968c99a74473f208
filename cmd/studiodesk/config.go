package main

import (
	"time"

	"github.com/dmitrymomot/studiodesk/pkg/httpserver"
	"github.com/dmitrymomot/studiodesk/pkg/logger"
	"github.com/dmitrymomot/studiodesk/pkg/pg"
	"github.com/dmitrymomot/studiodesk/pkg/redis"
)

const (
	driverMemory   = "memory"
	driverSQLite   = "sqlite"
	driverPostgres = "postgres"
)

type appConfig struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"studiodesk"`

	StoreDriver string `env:"STORE_DRIVER" envDefault:"sqlite"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"studiodesk.db"`
	SeedFile    string `env:"SEED_FILE"`

	JWTSecret string        `env:"JWT_SECRET,required,notEmpty"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"24h"`

	TenantRequired     bool     `env:"TENANT_REQUIRED" envDefault:"true"`
	AllowSuperAdmin    bool     `env:"ALLOW_SUPER_ADMIN" envDefault:"true"`
	ReservedSubdomains []string `env:"RESERVED_SUBDOMAINS" envSeparator:"," envDefault:"www,app,api"`

	// TenantCacheTTL enables organization caching when positive: in Redis if
	// REDIS_URL is set, in process memory otherwise.
	TenantCacheTTL  time.Duration `env:"TENANT_CACHE_TTL" envDefault:"0s"`
	TenantCacheSize int           `env:"TENANT_CACHE_SIZE" envDefault:"1000"`

	RolesFile      string `env:"RBAC_ROLES_FILE"`
	MetricsEnabled bool   `env:"METRICS_ENABLED" envDefault:"true"`

	Log   logger.Config
	HTTP  httpserver.Config
	PG    pg.Config
	Redis redis.Config
}
