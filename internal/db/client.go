package db

import (
	"context"
	"database/sql"
	"fmt"
)

// Object is a schema object found in a database
type Object struct {
	Type string // table, view or index
	Name string
}

// Client applies DDL to a database and lists the objects it contains
type Client interface {
	ExecAll(ctx context.Context, statements []string) error
	Objects(ctx context.Context) ([]Object, error)
	Close() error
}

var (
	_ Client = (*SQLiteClient)(nil)
	_ Client = (*MySQLClient)(nil)
	_ Client = (*PostgresClient)(nil)
)

// execAllSQL runs statements in order inside one transaction
func execAllSQL(ctx context.Context, db *sql.DB, statements []string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("statement %d failed: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// queryObjects scans (type, name) rows
func queryObjects(ctx context.Context, db *sql.DB, query string, args ...any) ([]Object, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var objects []Object
	for rows.Next() {
		var obj Object
		if err := rows.Scan(&obj.Type, &obj.Name); err != nil {
			return nil, err
		}
		objects = append(objects, obj)
	}

	return objects, rows.Err()
}
