// Package database centralises sqlx connection helpers.  The default driver
// is go-sql-driver/mysql, which also works with MariaDB when configured for
// the MySQL wire protocol.
//
// Public entry points:
//
//	Open(ctx, dsn)                          – quick helper with conservative pool sizes.
//	OpenWithOptions(ctx, dsn, maxOpen, maxIdle) – fine-grained control.
//	EnsureSubmissionTable(ctx, db, table)   – creates the form `store` target.
//
// Both Open helpers Ping the database before returning so callers can fail
// fast during bootstrap.  Callers should Close() the returned *sqlx.DB when
// no longer needed.
package database

import (
	"context"
	"fmt"
	"regexp"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

// Open returns a *sqlx.DB with sane defaults: 15 max open, 5 idle, and a
// 30-minute connection lifetime.
func Open(ctx context.Context, dsn string) (*sqlx.DB, error) {
	return OpenWithOptions(ctx, dsn, 15, 5)
}

// OpenWithOptions lets callers tune maxOpen and maxIdle per pool.
func OpenWithOptions(ctx context.Context, dsn string, maxOpen, maxIdle int) (*sqlx.DB, error) {
	db, err := sqlx.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,63}$`)

// ValidIdentifier reports whether name may be spliced into SQL as a table
// name.  Placeholders cannot bind identifiers, so callers check first.
func ValidIdentifier(name string) bool { return identifier.MatchString(name) }

// EnsureSubmissionTable creates table if it does not exist.  The layout
// matches the rows written by the form `store` action.
func EnsureSubmissionTable(ctx context.Context, db sqlx.ExecerContext, table string) error {
	if !ValidIdentifier(table) {
		return fmt.Errorf("database: invalid table name %q", table)
	}
	_, err := db.ExecContext(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
  id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
  form_id VARCHAR(191) NOT NULL,
  submitted_at DATETIME(6) NOT NULL,
  data JSON NOT NULL,
  KEY idx_form_submitted (form_id, submitted_at)
)`, table))
	if err != nil {
		return fmt.Errorf("database: create %s: %w", table, err)
	}
	return nil
}
