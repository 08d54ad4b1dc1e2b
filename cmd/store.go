package cmd

import (
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/parisxmas/OxiDB/OxiForms/internal/config"
	"github.com/parisxmas/OxiDB/OxiForms/internal/db"
	"github.com/parisxmas/OxiDB/OxiForms/internal/handler"
	"github.com/parisxmas/OxiDB/OxiForms/internal/repository"
)

// store bundles the repositories of the configured driver.
type store struct {
	forms  repository.FormRepository
	subs   repository.SubmissionRepository
	pinger handler.Pinger

	// prepare creates indexes or tables. It is safe to run in the
	// background for OxiDB; Postgres tables must exist before serving.
	prepare func() error
	close   func()
}

func openStore(cfg config.StoreConfig, log *zap.Logger) (*store, error) {
	switch cfg.Driver {
	case config.DriverOxiDB:
		return openOxiDB(cfg.OxiDB, log)
	case config.DriverPostgres:
		conn, err := db.OpenPostgres(cfg.Postgres.DSN)
		if err != nil {
			return nil, err
		}
		log.Info("Connected to Postgres")
		return postgresStore(conn), nil
	case config.DriverMemory:
		log.Info("Using in-memory store; data is lost on exit")
		return &store{
			forms:   repository.NewMemoryFormRepo(),
			subs:    repository.NewMemorySubmissionRepo(),
			prepare: func() error { return nil },
			close:   func() {},
		}, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

func openOxiDB(cfg config.OxiDBConfig, log *zap.Logger) (*store, error) {
	pool, err := db.NewPool(cfg.Host, cfg.Port, cfg.PoolSize, log)
	if err != nil {
		return nil, fmt.Errorf("connect to OxiDB: %w", err)
	}
	log.Info("Connected to OxiDB",
		zap.String("host", cfg.Host), zap.Int("port", cfg.Port), zap.Int("pool_size", cfg.PoolSize))

	prepare := func() error {
		// Index builds can be slow on large collections, so they run on a
		// dedicated connection rather than the request pool.
		var initPool db.Provider = pool
		dedicated, err := db.NewPool(cfg.Host, cfg.Port, 1, log)
		if err != nil {
			log.Warn("Init pool connect failed, using main pool", zap.Error(err))
		} else {
			defer dedicated.Close()
			initPool = dedicated
		}

		if err := repository.NewFormRepo(initPool).EnsureIndexes(); err != nil {
			return fmt.Errorf("form indexes: %w", err)
		}
		start := time.Now()
		if err := repository.NewSubmissionRepo(initPool).EnsureIndexes(); err != nil {
			return fmt.Errorf("submission indexes: %w", err)
		}
		log.Info("Submission indexes ready", zap.Duration("took", time.Since(start).Round(time.Millisecond)))
		return nil
	}

	return &store{
		forms:   repository.NewFormRepo(pool),
		subs:    repository.NewSubmissionRepo(pool),
		pinger:  pool,
		prepare: prepare,
		close:   func() { pool.Close() },
	}, nil
}

func postgresStore(conn *sql.DB) *store {
	forms := repository.NewPGFormRepo(conn)
	subs := repository.NewPGSubmissionRepo(conn)
	return &store{
		forms:  forms,
		subs:   subs,
		pinger: conn,
		prepare: func() error {
			if err := forms.EnsureSchema(); err != nil {
				return err
			}
			return subs.EnsureSchema()
		},
		close: func() { conn.Close() },
	}
}

// background reports whether prepare may run while the server is already
// accepting requests.
func background(driver string) bool {
	return driver == config.DriverOxiDB
}
