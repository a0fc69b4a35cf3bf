package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteClient manages the connection to SQLite
type SQLiteClient struct {
	db *sql.DB
}

// NewSQLiteClient creates a new SQLite client
func NewSQLiteClient(ctx context.Context, path string) (*SQLiteClient, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps ":memory:" databases consistent across calls
	db.SetMaxOpenConns(1)

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteClient{db: db}, nil
}

// ExecAll runs the statements in a single transaction
func (c *SQLiteClient) ExecAll(ctx context.Context, statements []string) error {
	return execAllSQL(ctx, c.db, statements)
}

// Objects lists the tables, views and indices in the database
func (c *SQLiteClient) Objects(ctx context.Context) ([]Object, error) {
	query := `
		SELECT type, name
		FROM sqlite_master
		WHERE type IN ('table', 'view', 'index') AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`
	return queryObjects(ctx, c.db, query)
}

// Close closes the database connection
func (c *SQLiteClient) Close() error {
	return c.db.Close()
}
