package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migration is a single versioned schema change.
type Migration struct {
	Version string
	Name    string
	SQL     string
}

// Migrations returns the embedded migrations ordered by version. Versions
// come from the filename prefix, e.g. "001_init.sql" => "001".
func Migrations() ([]Migration, error) {
	return loadMigrations(migrationFiles, "migrations")
}

func loadMigrations(fsys fs.FS, dir string) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}
	var out []Migration
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		body, err := fs.ReadFile(fsys, dir+"/"+entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}
		out = append(out, Migration{
			Version: strings.SplitN(entry.Name(), "_", 2)[0],
			Name:    entry.Name(),
			SQL:     string(body),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// Migrator applies pending migrations and records them in schema_migrations.
type Migrator struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewMigrator constructs a Migrator.
func NewMigrator(db *sqlx.DB, logger *zap.Logger) *Migrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Migrator{db: db, logger: logger}
}

// Up applies every migration not yet recorded. Each migration runs in its own
// transaction together with its bookkeeping row.
func (m *Migrator) Up(ctx context.Context, migrations []Migration) (int, error) {
	const createTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
    version VARCHAR(255) PRIMARY KEY,
    applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`
	if _, err := m.db.ExecContext(ctx, createTable); err != nil {
		return 0, fmt.Errorf("create schema_migrations: %w", err)
	}

	applied := 0
	for _, mig := range migrations {
		var exists int
		err := m.db.GetContext(ctx, &exists, `SELECT 1 FROM schema_migrations WHERE version = $1`, mig.Version)
		if err == nil {
			continue
		}
		if err != sql.ErrNoRows {
			return applied, fmt.Errorf("check migration %s: %w", mig.Version, err)
		}
		if err := m.apply(ctx, mig); err != nil {
			return applied, err
		}
		m.logger.Info("migration applied", zap.String("version", mig.Version), zap.String("name", mig.Name))
		applied++
	}
	return applied, nil
}

func (m *Migrator) apply(ctx context.Context, mig Migration) (err error) {
	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration %s: %w", mig.Version, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, mig.SQL); err != nil {
		return fmt.Errorf("run migration %s: %w", mig.Version, err)
	}
	if _, err = tx.ExecContext(ctx, `INSERT INTO schema_migrations (version, applied_at) VALUES ($1, $2)`, mig.Version, time.Now().UTC()); err != nil {
		return fmt.Errorf("record migration %s: %w", mig.Version, err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %s: %w", mig.Version, err)
	}
	return nil
}
