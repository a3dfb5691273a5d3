package config

import (
	"strings"
	"time"
)

// Registry backend names.
const (
	RegistryBackendMemory = "memory"
	RegistryBackendRedis  = "redis"
)

// RegistryConfig selects and tunes the job registry backend.
type RegistryConfig struct {
	// Backend selects the registry implementation: "memory" (default,
	// single-instance, lost on restart) or "redis".
	Backend string `env:"REGISTRY_BACKEND" envDefault:"memory"`

	// KeyPrefix namespaces Redis job keys.
	KeyPrefix string `env:"REGISTRY_KEY_PREFIX" envDefault:"agent:jobs:"`

	// TTL bounds Redis record lifetime. Zero means records never expire.
	TTL time.Duration `env:"REGISTRY_TTL" envDefault:"0"`
}

// Sanitize applies guardrails to registry configuration values.
func (r *RegistryConfig) Sanitize() {
	r.Backend = strings.ToLower(strings.TrimSpace(r.Backend))
	if r.Backend != RegistryBackendRedis {
		r.Backend = RegistryBackendMemory
	}
	if r.KeyPrefix == "" {
		r.KeyPrefix = "agent:jobs:"
	}
	if r.TTL < 0 {
		r.TTL = 0
	}
}

// UsesRedis returns true when the Redis registry backend is selected.
func (r *RegistryConfig) UsesRedis() bool {
	return r.Backend == RegistryBackendRedis
}

// RedisConfig contains Redis configuration.
type RedisConfig struct {
	URI                string   `env:"URI"                  envDefault:"localhost:6379"`
	Password           string   `env:"PASSWORD"             envDefault:""`
	DB                 int      `env:"DB"                   envDefault:"0"`
	SentinelNodes      []string `env:"SENTINEL_NODES"       envDefault:"localhost:26379"`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	SentinelPassword   string   `env:"SENTINEL_PASSWORD"    envDefault:""`
	UseSentinel        bool     `env:"USE_SENTINEL"         envDefault:"false"`
}
