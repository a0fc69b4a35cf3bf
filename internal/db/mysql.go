package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

// MySQLClient manages the connection to MySQL
type MySQLClient struct {
	db *sql.DB
}

// NewMySQLClient creates a new MySQL client
func NewMySQLClient(ctx context.Context, connString string) (*MySQLClient, error) {
	if _, err := mysql.ParseDSN(connString); err != nil {
		return nil, fmt.Errorf("invalid MySQL connection string: %w", err)
	}

	db, err := sql.Open("mysql", connString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &MySQLClient{db: db}, nil
}

// ExecAll runs the statements in order. MySQL commits DDL implicitly, so a
// failure can leave earlier statements applied.
func (c *MySQLClient) ExecAll(ctx context.Context, statements []string) error {
	return execAllSQL(ctx, c.db, statements)
}

// Objects lists the tables, views and indices in the current database
func (c *MySQLClient) Objects(ctx context.Context) ([]Object, error) {
	query := `
		SELECT CASE table_type WHEN 'VIEW' THEN 'view' ELSE 'table' END, table_name
		FROM information_schema.tables
		WHERE table_schema = DATABASE()
		UNION ALL
		SELECT DISTINCT 'index', index_name
		FROM information_schema.statistics
		WHERE table_schema = DATABASE() AND index_name <> 'PRIMARY'
	`
	return queryObjects(ctx, c.db, query)
}

// Close closes the database connection
func (c *MySQLClient) Close() error {
	return c.db.Close()
}

