package app

import (
	"github.com/nats-io/nats.go"

	"github.com/adanyl0v/todo-planner/internal/config"
	"github.com/adanyl0v/todo-planner/internal/events"
)

var (
	globalPublisher events.Publisher = events.NopPublisher{}
	globalNATSConn  *nats.Conn
)

func MustConnectNATS() {
	cfg := config.Global().NATS
	if cfg.URL == "" {
		globalLogger.Info().Msg("nats url is not set, task events are disabled")
		return
	}

	conn, err := nats.Connect(cfg.URL,
		nats.Name(cfg.Name),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			globalLogger.Warn().
				Err(err).
				Msg("disconnected from nats")
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			globalLogger.Info().
				Str("url", c.ConnectedUrl()).
				Msg("reconnected to nats")
		}),
	)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to connect to nats")
		panic(err)
	}

	globalNATSConn = conn
	globalPublisher = events.NewNATSPublisher(conn, cfg.SubjectPrefix)
	globalLogger.Info().
		Str("url", conn.ConnectedUrl()).
		Str("subject_prefix", cfg.SubjectPrefix).
		Msg("connected to nats")
}

func DisconnectNATS() {
	if globalNATSConn == nil {
		return
	}

	err := globalNATSConn.Drain()
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to drain nats connection")
		return
	}
	globalLogger.Info().Msg("disconnected from nats")
}
