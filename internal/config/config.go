package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	AppPort  string `env:"APP_PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	PersonaAudience      string        `env:"PERSONA_AUDIENCE,required,notEmpty"`
	PersonaVerifierURL   string        `env:"PERSONA_VERIFIER_URL" envDefault:"https://verifier.login.persona.org/verify"`
	PersonaVerifyTimeout time.Duration `env:"PERSONA_VERIFY_TIMEOUT" envDefault:"10s"`

	RedisAddr        string        `env:"REDIS_ADDR"`
	RedisPassword    string        `env:"REDIS_PASSWORD"`
	IdentityCacheTTL time.Duration `env:"IDENTITY_CACHE_TTL" envDefault:"10m"`

	DatabaseDSN string `env:"DATABASE_DSN,required,notEmpty"`
}

func Load() (Config, error) {

	var cfg Config

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	return cfg, nil

}
