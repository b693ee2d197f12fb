package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"exam-express/internal/logger"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

//go:embed migrations
var migrationFS embed.FS

// RunMigrations brings the schema of db up to date. SQLite goes through golang-migrate;
// golang-migrate has no Oracle driver, so Oracle uses a small embedded runner that
// records applied files in schema_migrations.
func RunMigrations(ctx context.Context, db *sqlx.DB, driver string) error {
	switch driver {
	case DriverSQLite:
		return migrateSQLite(db)
	case DriverOracle:
		return migrateOracle(ctx, db)
	default:
		return fmt.Errorf("no migrations for driver %q", driver)
	}
}

func migrateSQLite(db *sqlx.DB) error {
	src, err := iofs.New(migrationFS, "migrations/sqlite")
	if err != nil {
		return fmt.Errorf("could not open sqlite migrations: %w", err)
	}
	target, err := migratesqlite.WithInstance(db.DB, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not prepare sqlite migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, DriverSQLite, target)
	if err != nil {
		return fmt.Errorf("could not create migrator: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not apply sqlite migrations: %w", err)
	}

	version, dirty, _ := m.Version()
	logger.Get().Info("Migrations completed", zap.String("driver", DriverSQLite), zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

const oracleMigrationsTable = `CREATE TABLE schema_migrations (
	version VARCHAR2(255) PRIMARY KEY,
	applied_at TIMESTAMP NOT NULL
)`

func migrateOracle(ctx context.Context, db *sqlx.DB) error {
	var exists int
	if err := db.GetContext(ctx, &exists,
		`SELECT COUNT(*) FROM user_tables WHERE table_name = 'SCHEMA_MIGRATIONS'`); err != nil {
		return fmt.Errorf("could not inspect schema_migrations: %w", err)
	}
	if exists == 0 {
		if _, err := db.ExecContext(ctx, oracleMigrationsTable); err != nil {
			return fmt.Errorf("could not create schema_migrations: %w", err)
		}
	}

	var applied []string
	if err := db.SelectContext(ctx, &applied, `SELECT version FROM schema_migrations`); err != nil {
		return fmt.Errorf("could not read schema_migrations: %w", err)
	}
	done := make(map[string]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}

	files, err := fs.Glob(migrationFS, "migrations/oracle/*.up.sql")
	if err != nil {
		return fmt.Errorf("could not list oracle migrations: %w", err)
	}
	sort.Strings(files)

	for _, file := range files {
		name := strings.TrimPrefix(file, "migrations/oracle/")
		if done[name] {
			continue
		}
		content, err := migrationFS.ReadFile(file)
		if err != nil {
			return fmt.Errorf("could not read migration file %s: %w", name, err)
		}
		for _, stmt := range SplitStatements(string(content)) {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("could not execute migration %s: %w", name, err)
			}
		}
		if _, err := db.ExecContext(ctx, db.Rebind(`INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)`), name, time.Now()); err != nil {
			return fmt.Errorf("could not record migration %s: %w", name, err)
		}
		logger.Get().Info("Executed migration", zap.String("file", name))
	}

	logger.Get().Info("Migrations completed", zap.String("driver", DriverOracle))
	return nil
}

// SplitStatements splits a migration script on semicolons that end a line.
// Oracle rejects multiple statements per Exec and a trailing semicolon.
func SplitStatements(script string) []string {
	var stmts []string
	var current strings.Builder
	for _, line := range strings.Split(script, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		current.WriteString(line)
		current.WriteString("\n")
		if strings.HasSuffix(trimmed, ";") {
			stmt := strings.TrimSuffix(strings.TrimSpace(current.String()), ";")
			if stmt != "" {
				stmts = append(stmts, stmt)
			}
			current.Reset()
		}
	}
	if rest := strings.TrimSpace(current.String()); rest != "" {
		stmts = append(stmts, rest)
	}
	return stmts
}
