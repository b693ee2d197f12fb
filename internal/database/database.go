package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"exam-express/internal/config"
	"exam-express/internal/logger"

	"github.com/jmoiron/sqlx"
	_ "github.com/sijms/go-ora/v2" // Oracle driver, registers "oracle"
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // SQLite driver, registers "sqlite"
)

const (
	DriverOracle = "oracle"
	DriverSQLite = "sqlite"
)

func init() {
	// go-ora takes positional :name binds; modernc takes ?.
	sqlx.BindDriver(DriverOracle, sqlx.NAMED)
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// Open connects to the configured database, tunes the pool and verifies connectivity.
func Open(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	driver := strings.ToLower(cfg.DB.Driver)
	if driver != DriverOracle && driver != DriverSQLite {
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.DB.Driver)
	}

	db, err := sqlx.Open(driver, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	tunePool(driver, db)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", driver, err)
	}

	if driver == DriverSQLite {
		if err := applySQLitePragmas(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	logger.Get().Info("Connected to database", zap.String("driver", driver))
	return db, nil
}

func tunePool(driver string, db *sqlx.DB) {
	if driver == DriverSQLite {
		// single writer
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		return
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(45 * time.Minute)
	db.SetConnMaxIdleTime(15 * time.Minute)
}

func applySQLitePragmas(ctx context.Context, db *sqlx.DB) error {
	pragmas := []string{
		"PRAGMA foreign_keys = ON;",
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = NORMAL;",
		"PRAGMA busy_timeout = 5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("sqlite pragma %q: %w", p, err)
		}
	}
	return nil
}
