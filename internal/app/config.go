package app

import (
	"net"
	"strconv"

	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/todo-planner/internal/config"
)

func MustLoadConfig() {
	cfg, err := config.NewEnvReader().Read()
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to load config")
		panic(err)
	}
	globalLogger.Info().
		Dict("config", configSummary(cfg)).
		Msg("loaded config")

	config.SetGlobal(cfg)
}

// configSummary holds the settings worth seeing at startup. Credentials and
// connection strings stay out of it.
func configSummary(cfg *config.Config) *zerolog.Event {
	summary := zerolog.Dict().
		Str("env", cfg.Env).
		Str("http_addr", net.JoinHostPort(cfg.HTTP.Host, cfg.HTTP.Port)).
		Int("cors_origins", len(cfg.HTTP.AllowedOrigins)).
		Str("store_driver", cfg.Store.Driver)

	switch cfg.Store.Driver {
	case "mongo":
		summary.Str("store_target", cfg.Mongo.Database+"."+cfg.Mongo.Collection)
	case "postgres":
		summary.Str("store_target", net.JoinHostPort(cfg.Postgres.Host, strconv.Itoa(cfg.Postgres.Port))+"/"+cfg.Postgres.Database)
	}

	if cfg.NATS.URL == "" {
		return summary.Bool("events_enabled", false)
	}
	return summary.
		Bool("events_enabled", true).
		Str("events_subject_prefix", cfg.NATS.SubjectPrefix)
}
