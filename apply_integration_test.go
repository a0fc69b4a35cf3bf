//go:build integration
// +build integration

package roomddl

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/roomddl/internal/schema"
)

func TestApplySchemaSQLite(t *testing.T) {
	ctx := context.Background()
	url := "sqlite://" + filepath.Join(t.TempDir(), "app.db")

	s, err := schema.Unmarshal([]byte(`{"database":{"version":1,"entities":[
		{"tableName":"users","createSql":"CREATE TABLE IF NOT EXISTS ` + "`${TABLE_NAME}`" + ` (id INTEGER PRIMARY KEY, email TEXT)",
		 "indices":[{"name":"index_users_email","createSql":"CREATE UNIQUE INDEX IF NOT EXISTS index_users_email ON ` + "`${TABLE_NAME}`" + ` (email)"}]},
		{"tableName":"notes","createSql":"-- notes are created lazily"}],
		"views":[{"viewName":"user_emails","createSql":"CREATE VIEW ` + "`${VIEW_NAME}`" + ` AS SELECT email FROM users"}]}}`))
	require.NoError(t, err)

	result, err := ApplySchema(ctx, url, s, &ApplyOptions{Verify: false})
	require.NoError(t, err)
	assert.Equal(t, "sqlite", result.DatabaseType)
	assert.Equal(t, 3, result.Executed)
	assert.Equal(t, 1, result.Skipped)
}

func TestApplySchemaSQLiteVerify(t *testing.T) {
	ctx := context.Background()
	url := "sqlite://" + filepath.Join(t.TempDir(), "app.db")

	s, err := schema.Unmarshal([]byte(workedExample))
	require.NoError(t, err)

	result, err := ApplySchema(ctx, url, s, &ApplyOptions{Verify: true})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Executed)
	assert.Len(t, result.Objects, 3)
}

func TestApplySchemaSQLiteVerifyMissing(t *testing.T) {
	ctx := context.Background()
	url := "sqlite://" + filepath.Join(t.TempDir(), "app.db")

	// The entity's DDL creates a table under a different name
	s, err := schema.Unmarshal([]byte(`{"database":{"entities":[{"tableName":"users","createSql":"CREATE TABLE accounts (id INTEGER)"}]}}`))
	require.NoError(t, err)

	_, err = ApplySchema(ctx, url, s, &ApplyOptions{Verify: true})
	require.ErrorIs(t, err, ErrVerification)
	assert.Contains(t, err.Error(), "table users")
}

func TestApplySchemaSQLiteRollsBack(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "app.db")

	s, err := schema.Unmarshal([]byte(`{"database":{"entities":[
		{"tableName":"users","createSql":"CREATE TABLE ${TABLE_NAME} (id INTEGER)"},
		{"tableName":"broken","createSql":"CREATE TABLE ${TABLE_NAME} ("}]}}`))
	require.NoError(t, err)

	_, err = ApplySchema(ctx, "sqlite://"+path, s, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "statement 2 failed")

	empty, err := schema.Unmarshal([]byte(`{"database":{}}`))
	require.NoError(t, err)
	result, err := ApplySchema(ctx, "sqlite://"+path, empty, &ApplyOptions{Verify: true})
	require.NoError(t, err)
	assert.Empty(t, result.Objects, "failed apply must leave no tables behind")
}
