package db

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/matt-steen/attendance-tracker/pkg/ledger"

	// use the sqlite db driver.
	_ "github.com/mattn/go-sqlite3"
)

//go:embed base.sql
var baseSQL string

// Database is a key-value store kept in a single sqlite table.
type Database struct {
	conn *sql.DB
}

// NewDatabase connects to the sqlite database at the given filename and initializes the
// structure if not present.
func NewDatabase(ctx context.Context, filename string) (*Database, error) {
	conn, err := sql.Open("sqlite3", filename)
	if err != nil {
		return nil, fmt.Errorf("error connecting to sqlite db at %s: %w", filename, err)
	}

	// one writer at a time; the ledger never issues concurrent writes anyway
	conn.SetMaxOpenConns(1)

	database := Database{conn: conn}

	err = database.initialize(ctx)
	if err != nil {
		conn.Close()

		return nil, err
	}

	return &database, nil
}

func (d *Database) initialize(ctx context.Context) error {
	// run idempotent setup sql to create empty tables if they don't exist
	if _, err := d.conn.ExecContext(ctx, baseSQL); err != nil {
		return fmt.Errorf("error running base sql: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (d *Database) Close() error {
	return d.conn.Close()
}

// Get returns the value stored under key, or an error wrapping ledger.ErrKeyNotFound.
func (d *Database) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte

	err := d.conn.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("error loading key %s: %w", key, ledger.ErrKeyNotFound)
	}

	if err != nil {
		return nil, fmt.Errorf("error loading key %s: %w", key, err)
	}

	return value, nil
}

// Set stores value under key, replacing any previous value.
func (d *Database) Set(ctx context.Context, key string, value []byte) error {
	_, err := d.conn.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_datetime) VALUES ($1, $2, $3)
		     ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_datetime = excluded.updated_datetime`,
		key, value, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("error saving key %s: %w", key, err)
	}

	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (d *Database) Delete(ctx context.Context, key string) error {
	if _, err := d.conn.ExecContext(ctx, `DELETE FROM kv WHERE key = $1`, key); err != nil {
		return fmt.Errorf("error deleting key %s: %w", key, err)
	}

	return nil
}

// Keys lists every stored key in order.
func (d *Database) Keys(ctx context.Context) ([]string, error) {
	rows, err := d.conn.QueryContext(ctx, `SELECT key FROM kv ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("error loading keys: %w", err)
	}
	defer rows.Close()

	keys := []string{}

	for rows.Next() {
		var key string

		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("error scanning keys: %w", err)
		}

		keys = append(keys, key)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error scanning keys: %w", err)
	}

	return keys, nil
}
