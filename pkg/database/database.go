package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"homebudget/pkg/config"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
	"go.uber.org/zap"
)

type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// DB is a database/sql handle that knows which SQL dialect it speaks.
type DB struct {
	*sql.DB
	Dialect Dialect
	closers []func()
}

// Open connects to the configured driver and applies pending migrations.
func Open(ctx context.Context, cfg *config.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return OpenPostgres(ctx, cfg, logger)
	case config.DriverSQLite:
		return OpenSQLite(ctx, cfg.SQLitePath, logger)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Builder returns a squirrel statement builder with the dialect's
// placeholder format.
func (db *DB) Builder() squirrel.StatementBuilderType {
	if db.Dialect == DialectPostgres {
		return postgresBuilder()
	}
	return sqliteBuilder()
}

// InsertionOrder is the column that increases with every insert: the
// serial seq column on Postgres, the implicit rowid on SQLite.
func (db *DB) InsertionOrder() string {
	if db.Dialect == DialectPostgres {
		return "seq"
	}
	return "rowid"
}

func (db *DB) Close() error {
	err := db.DB.Close()
	for _, closeFn := range db.closers {
		closeFn()
	}
	return err
}

// WithTx runs fn inside a transaction, rolling back on any error.
func (db *DB) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// UniqueViolation reports whether err is a unique constraint violation and
// returns the driver's description of the violated constraint.
func UniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return pgErr.ConstraintName, true
	}

	var liteErr *sqlite.Error
	// the primary code is in the low byte, extended codes may or may not be on
	if errors.As(err, &liteErr) && liteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
		msg := liteErr.Error()
		if strings.Contains(msg, "UNIQUE") || strings.Contains(msg, "PRIMARY KEY") {
			return msg, true
		}
	}
	return "", false
}

// Time returns a scanner that accepts time.Time as well as the textual
// timestamps SQLite hands back.
func Time(dst *time.Time) sql.Scanner {
	return &timeScanner{dst: dst}
}

type timeScanner struct {
	dst *time.Time
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

func (s *timeScanner) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		*s.dst = v
		return nil
	case string:
		return s.parse(v)
	case []byte:
		return s.parse(string(v))
	case nil:
		*s.dst = time.Time{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into time.Time", src)
	}
}

func (s *timeScanner) parse(v string) error {
	v = strings.TrimSpace(v)
	// time.Time.String appends a monotonic clock reading
	if i := strings.Index(v, " m="); i >= 0 {
		v = v[:i]
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			*s.dst = t
			return nil
		}
	}
	return fmt.Errorf("cannot parse %q as time", v)
}
