package config

import (
	"fmt"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

type Reader interface {
	Read() (*Config, error)
}

type EnvReader struct{}

func NewEnvReader() EnvReader {
	return EnvReader{}
}

func (EnvReader) Read() (*Config, error) {
	cfg := new(Config)
	err := cleanenv.ReadEnv(cfg)
	if err != nil {
		return nil, err
	}

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Env {
	case EnvLocal, EnvDev, EnvProd:
	default:
		return fmt.Errorf("unknown env: %q", c.Env)
	}

	switch c.Store.Driver {
	case "mongo", "postgres":
	default:
		return fmt.Errorf("unknown store driver: %q", c.Store.Driver)
	}

	for _, origin := range c.HTTP.AllowedOrigins {
		if !validOrigin(origin) {
			return fmt.Errorf("bad cors origin: %q must be \"*\" or start with http:// or https://", origin)
		}
	}
	return nil
}

func validOrigin(origin string) bool {
	if origin == "*" {
		return true
	}
	if strings.Contains(origin, "*") {
		return false
	}
	return strings.HasPrefix(origin, "http://") || strings.HasPrefix(origin, "https://")
}
