package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/adanyl0v/todo-planner/internal/config"
	"github.com/adanyl0v/todo-planner/internal/storage"
)

var (
	globalTaskStore    storage.TaskStore
	globalMongoClient  *mongo.Client
	globalPostgresPool *pgxpool.Pool
)

func MustConnectStore() {
	driver := config.Global().Store.Driver
	switch driver {
	case storage.DriverMongo:
		mustConnectMongo()
	case storage.DriverPostgres:
		mustConnectPostgres()
	default:
		globalLogger.Error().
			Str("driver", driver).
			Msg("unknown store driver")
		panic(fmt.Errorf("unknown store driver: %s", driver))
	}
}

func DisconnectStore() {
	if globalMongoClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), config.Global().Mongo.ConnectTimeout)
		defer cancel()

		err := globalMongoClient.Disconnect(ctx)
		if err != nil {
			globalLogger.Error().
				Err(err).
				Msg("failed to disconnect from mongo")
			return
		}
		globalLogger.Info().Msg("disconnected from mongo")
	}
	if globalPostgresPool != nil {
		globalPostgresPool.Close()
		globalLogger.Info().Msg("disconnected from postgres")
	}
}

func mustConnectMongo() {
	cfg := config.Global().Mongo

	connectCtx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	clientOpts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.ConnectTimeout)
	client, err := mongo.Connect(connectCtx, clientOpts)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to connect to mongo")
		panic(err)
	}
	globalMongoClient = client

	store := storage.NewMongoTaskStore(
		globalLogger.With().Str("store", storage.DriverMongo).Logger(),
		client,
		cfg.Database,
		cfg.Collection,
	)

	pingCtx, cancel := context.WithTimeout(context.Background(), cfg.PingTimeout)
	defer cancel()

	err = store.Ping(pingCtx)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to ping mongo")
		panic(err)
	}

	err = store.EnsureIndexes(pingCtx)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to ensure mongo indexes")
		panic(err)
	}

	globalTaskStore = store
	globalLogger.Info().
		Str("database", cfg.Database).
		Str("collection", cfg.Collection).
		Msg("connected to mongo")
}

func mustConnectPostgres() {
	cfg := config.Global().Postgres
	connURL := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Username, cfg.Password, cfg.Host,
		cfg.Port, cfg.Database, cfg.SSLMode)

	poolCfg, err := pgxpool.ParseConfig(connURL)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to parse postgres config")
		panic(err)
	}
	poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout

	globalPostgresPool, err = pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to connect to postgres")
		panic(err)
	}

	store := storage.NewPostgresTaskStore(
		globalLogger.With().Str("store", storage.DriverPostgres).Logger(),
		globalPostgresPool,
	)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.PingTimeout)
	defer cancel()

	err = store.Ping(ctx)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to ping postgres")
		panic(err)
	}

	err = store.EnsureTable(ctx)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to ensure postgres table")
		panic(err)
	}

	globalTaskStore = store
	globalLogger.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Msg("connected to postgres")
}
