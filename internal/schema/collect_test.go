package schema

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func sampleSchema() *Schema {
	return &Schema{
		Database: Database{
			Version: intPtr(7),
			Entities: []Entity{
				{
					Name: "users",
					DDL:  "CREATE TABLE ${TABLE_NAME} (id INTEGER)",
					Indices: []Index{
						{Name: "idx_a", DDL: "CREATE INDEX idx_a ON ${TABLE_NAME} (id)"},
						{Name: "idx_b", DDL: "CREATE UNIQUE INDEX idx_b ON `${TABLE_NAME}` (id)"},
					},
				},
				{
					Name: "accounts",
					DDL:  "CREATE TABLE `${TABLE_NAME}` (`${TABLE_NAME}_id` INTEGER)",
				},
			},
			Views: []View{
				{Name: "zeta", DDL: "CREATE VIEW ${VIEW_NAME} AS SELECT * FROM users"},
				{Name: "alpha", DDL: "CREATE VIEW `${VIEW_NAME}` AS SELECT '${TABLE_NAME}'"},
			},
		},
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name  string
		ddl   string
		token string
		value string
		want  string
	}{
		{"single occurrence", "CREATE TABLE ${TABLE_NAME} (id)", TablePlaceholder, "users", "CREATE TABLE users (id)"},
		{"every occurrence", "${TABLE_NAME}.${TABLE_NAME}", TablePlaceholder, "t", "t.t"},
		{"no occurrence", "CREATE TABLE x (id)", TablePlaceholder, "users", "CREATE TABLE x (id)"},
		{"other token untouched", "CREATE VIEW ${VIEW_NAME}", TablePlaceholder, "users", "CREATE VIEW ${VIEW_NAME}"},
		{"case sensitive", "CREATE TABLE ${table_name}", TablePlaceholder, "users", "CREATE TABLE ${table_name}"},
		{"regex characters in name", "CREATE TABLE ${TABLE_NAME}", TablePlaceholder, "a$1.*", "CREATE TABLE a$1.*"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.ddl, tt.token, tt.value))
		})
	}
}

func TestStatementsOrderAndResolution(t *testing.T) {
	s := sampleSchema()

	got := s.Statements(CollectOptions{})
	want := []string{
		"CREATE TABLE users (id INTEGER)",
		"CREATE INDEX idx_a ON users (id)",
		"CREATE UNIQUE INDEX idx_b ON `users` (id)",
		"CREATE TABLE `accounts` (`accounts_id` INTEGER)",
		"CREATE VIEW zeta AS SELECT * FROM users",
		"CREATE VIEW `alpha` AS SELECT '${TABLE_NAME}'",
	}
	assert.Equal(t, want, got)
	assert.Len(t, got, s.StatementCount())
}

func TestStatementsNoRemainingPlaceholders(t *testing.T) {
	s := sampleSchema()

	for _, g := range s.Groups() {
		token := TablePlaceholder
		if g.Kind == KindView {
			token = ViewPlaceholder
		}
		for _, stmt := range g.Statements {
			assert.NotContains(t, stmt, token, "group %s", g.Name)
		}
	}
}

func TestStatementsDoNotMutateSchema(t *testing.T) {
	s := sampleSchema()
	_ = s.Statements(CollectOptions{})

	assert.Equal(t, "CREATE TABLE ${TABLE_NAME} (id INTEGER)", s.Database.Entities[0].DDL)
	assert.Equal(t, "CREATE VIEW ${VIEW_NAME} AS SELECT * FROM users", s.Database.Views[0].DDL)
}

func TestStatementsEmptySchema(t *testing.T) {
	s := &Schema{}
	assert.Empty(t, s.Statements(CollectOptions{}))
	assert.Empty(t, s.Groups())
	assert.Equal(t, 0, s.StatementCount())
}

func TestGroups(t *testing.T) {
	groups := sampleSchema().Groups()
	require.Len(t, groups, 4)

	assert.Equal(t, KindTable, groups[0].Kind)
	assert.Equal(t, "users", groups[0].Name)
	assert.Len(t, groups[0].Statements, 3)

	assert.Equal(t, KindTable, groups[1].Kind)
	assert.Len(t, groups[1].Statements, 1)

	assert.Equal(t, KindView, groups[2].Kind)
	assert.Equal(t, "zeta", groups[2].Name)
	assert.Equal(t, "alpha", groups[3].Name)
}

func TestVersionComment(t *testing.T) {
	fixed := time.Date(2024, 3, 9, 14, 5, 6, 0, time.FixedZone("", -7*3600))
	opts := CollectOptions{VersionComment: true, Now: func() time.Time { return fixed }}

	tests := []struct {
		name    string
		schema  *Schema
		opts    CollectOptions
		want    string
		wantSet bool
	}{
		{
			name:    "enabled with version",
			schema:  sampleSchema(),
			opts:    opts,
			want:    "-- Generated 2024-03-09 14:05:06-0700 for database version 7",
			wantSet: true,
		},
		{
			name:   "disabled",
			schema: sampleSchema(),
			opts:   CollectOptions{Now: opts.Now},
		},
		{
			name:   "enabled without version",
			schema: &Schema{},
			opts:   opts,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.schema.VersionComment(tt.opts)
			assert.Equal(t, tt.wantSet, ok)
			assert.Equal(t, tt.want, got)

			stmts := tt.schema.Statements(tt.opts)
			assert.Len(t, stmts, tt.schema.StatementCount()+map[bool]int{true: 1, false: 0}[tt.wantSet])
			if tt.wantSet {
				assert.Equal(t, tt.want, stmts[0])
			}
		})
	}
}

func TestVersionCommentDefaultClock(t *testing.T) {
	got, ok := sampleSchema().VersionComment(CollectOptions{VersionComment: true})
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(got, "-- Generated "))
	assert.True(t, strings.HasSuffix(got, " for database version 7"))
}
