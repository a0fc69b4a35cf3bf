package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// PostgresClient manages the connection to PostgreSQL
type PostgresClient struct {
	conn *pgx.Conn
}

// NewPostgresClient creates a new PostgreSQL client
func NewPostgresClient(ctx context.Context, connString string) (*PostgresClient, error) {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test the connection
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresClient{conn: conn}, nil
}

// ExecAll runs the statements in a single transaction
func (c *PostgresClient) ExecAll(ctx context.Context, statements []string) error {
	return pgx.BeginFunc(ctx, c.conn, func(tx pgx.Tx) error {
		for i, stmt := range statements {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("statement %d failed: %w", i+1, err)
			}
		}
		return nil
	})
}

// Objects lists the tables, views and indices in the current schema
func (c *PostgresClient) Objects(ctx context.Context) ([]Object, error) {
	query := `
		SELECT CASE table_type WHEN 'VIEW' THEN 'view' ELSE 'table' END, table_name
		FROM information_schema.tables
		WHERE table_schema = current_schema()
		UNION ALL
		SELECT 'index', indexname
		FROM pg_indexes
		WHERE schemaname = current_schema()
	`

	rows, err := c.conn.Query(ctx, query)
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

// Close closes the database connection
func (c *PostgresClient) Close() error {
	return c.conn.Close(context.Background())
}
