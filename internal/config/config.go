package config

import "time"

const (
	EnvDev   = "dev"
	EnvProd  = "prod"
	EnvLocal = "local"
)

var globalConfig *Config

func Global() *Config {
	return globalConfig
}

func SetGlobal(cfg *Config) {
	globalConfig = cfg
}

type Config struct {
	Env       string `env:"ENV" env-required:"true"`
	HTTP      HTTPConfig
	Session   SessionConfig
	Auth      AuthConfig
	Dashboard DashboardConfig
	RateLimit RateLimitConfig
}

type HTTPConfig struct {
	Host              string        `env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port              string        `env:"HTTP_PORT" env-default:"8080"`
	ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" env-default:"5s"`
	ShutdownTimeout   time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

type SessionConfig struct {
	// SigningKey is replaced with random bytes when empty.
	SigningKey    string        `env:"SESSION_SIGNING_KEY"`
	Issuer        string        `env:"SESSION_ISSUER" env-default:"taskflow"`
	IdleTTL       time.Duration `env:"SESSION_IDLE_TTL" env-default:"30m"`
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" env-default:"1m"`
}

type AuthConfig struct {
	SimulatedDelay time.Duration `env:"AUTH_SIMULATED_DELAY" env-default:"1s"`
}

type DashboardConfig struct {
	SeedDemo bool `env:"DASHBOARD_SEED_DEMO" env-default:"true"`
}

type RateLimitConfig struct {
	Enabled bool    `env:"RATE_LIMIT_ENABLED" env-default:"true"`
	RPS     float64 `env:"RATE_LIMIT_RPS" env-default:"5"`
	Burst   int     `env:"RATE_LIMIT_BURST" env-default:"10"`
}
