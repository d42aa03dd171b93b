package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Port int `env:"PORT" envDefault:"8080"`

	DatabaseURI string `env:"DATABASE_URI,required"`

	JwtSecret   string        `env:"JWT_SECRET,required"`
	TokenExpiry time.Duration `env:"TOKEN_EXPIRY" envDefault:"24h"`

	ShareDir string `env:"SHARE_DIR" envDefault:"/opt/mentorhub/share"`

	LogFile string `env:"LOG_FILE" envDefault:"mentorhub.log"`

	// When set, editing a plan re-applies the one-active-plan-per-mentee rule
	// instead of only enforcing it at creation.
	PdiRecheckActiveOnEdit bool `env:"PDI_RECHECK_ACTIVE_ON_EDIT" envDefault:"false"`
}

// Load reads configuration from the environment, with an optional .env file
// layered underneath for local development.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("error parsing environment config: %w", err)
	}

	return cfg, nil
}
