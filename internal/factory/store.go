package factory

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/hiver-ai/email-triage/internal/config"
	storepkg "github.com/hiver-ai/email-triage/internal/store"
	storemongo "github.com/hiver-ai/email-triage/internal/store/mongo"
	storepg "github.com/hiver-ai/email-triage/internal/store/postgres"
	storesqlite "github.com/hiver-ai/email-triage/internal/store/sqlite"
)

// CloseFunc releases the store's connections.
type CloseFunc func(ctx context.Context) error

// NewStore returns the store.Store selected by cfg.DBDriver.
// Connections are opened synchronously since health checks need them
// immediately; schema and index bootstrap runs async so startup stays fast.
func NewStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (storepkg.Store, CloseFunc, error) {
	bootstrapTimeout := time.Duration(cfg.BootstrapTimeoutSeconds) * time.Second
	if bootstrapTimeout <= 0 {
		bootstrapTimeout = 10 * time.Second
	}

	switch cfg.DBDriver {
	case "mongo":
		connectCtx, cancel := context.WithTimeout(ctx, bootstrapTimeout)
		defer cancel()
		client, err := storemongo.Connect(connectCtx, cfg.MongoURI)
		if err != nil {
			return nil, nil, fmt.Errorf("connect mongo: %w", err)
		}
		coll := client.Database(cfg.MongoDatabase).Collection(cfg.MongoCollection)
		bootstrapAsync(ctx, log, cfg.DBDriver, bootstrapTimeout, func(c context.Context) error {
			return storemongo.EnsureIndexes(c, coll)
		})
		return storemongo.New(client, cfg.MongoDatabase, cfg.MongoCollection), client.Disconnect, nil

	case "postgres":
		dsn := cfg.PostgresDSN
		if dsn == "" {
			return nil, nil, fmt.Errorf("EMAIL_TRIAGE_POSTGRES_DSN is required when DB_DRIVER=postgres")
		}
		db, err := storepg.Open(dsn)
		if err != nil {
			return nil, nil, err
		}
		bootstrapAsync(ctx, log, cfg.DBDriver, bootstrapTimeout, func(c context.Context) error {
			return storepg.Bootstrap(c, dsn)
		})
		return storepg.NewWithDB(db), closeDB(db), nil

	case "sqlite":
		db, err := storesqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		// Embedded schema is applied inline; there is no remote to wait on.
		if err := storesqlite.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("sqlite schema: %w", err)
		}
		return storesqlite.NewWithDB(db), closeDB(db), nil
	}
	return nil, nil, fmt.Errorf("unknown DB_DRIVER: %s", cfg.DBDriver)
}

func closeDB(db *sql.DB) CloseFunc {
	return func(context.Context) error { return db.Close() }
}

// bootstrapAsync runs fn with its own timeout and logs the result; it never
// blocks startup.
func bootstrapAsync(ctx context.Context, log zerolog.Logger, driver string, timeout time.Duration, fn func(context.Context) error) {
	go func() {
		bootstrapCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		if err := fn(bootstrapCtx); err != nil {
			log.Warn().Err(err).Str("driver", driver).Msg("store bootstrap check failed")
		} else {
			log.Debug().Str("driver", driver).Msg("store bootstrap check completed")
		}
	}()
}
