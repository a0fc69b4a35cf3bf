package schema

import (
	"fmt"
	"strings"
	"time"
)

const (
	// TablePlaceholder is replaced by the entity name in entity and index DDL
	TablePlaceholder = "${TABLE_NAME}"

	// ViewPlaceholder is replaced by the view name in view DDL
	ViewPlaceholder = "${VIEW_NAME}"

	versionCommentFormat = "-- Generated %s for database version %d"
	versionTimeLayout    = "2006-01-02 15:04:05-0700"
)

// CollectOptions controls the optional version preamble
type CollectOptions struct {
	// VersionComment prepends a generation comment when the database carries a version.
	VersionComment bool

	// Now supplies the generation time. Defaults to time.Now.
	Now func() time.Time
}

// Resolve replaces every literal occurrence of token in ddl with name.
func Resolve(ddl, token, name string) string {
	return strings.ReplaceAll(ddl, token, name)
}

// Groups returns the resolved statements of each table and view in declaration order.
func (s *Schema) Groups() []Group {
	groups := make([]Group, 0, len(s.Database.Entities)+len(s.Database.Views))

	for _, entity := range s.Database.Entities {
		stmts := make([]string, 0, 1+len(entity.Indices))
		stmts = append(stmts, Resolve(entity.DDL, TablePlaceholder, entity.Name))
		for _, idx := range entity.Indices {
			stmts = append(stmts, Resolve(idx.DDL, TablePlaceholder, entity.Name))
		}
		groups = append(groups, Group{Kind: KindTable, Name: entity.Name, Statements: stmts})
	}

	for _, view := range s.Database.Views {
		groups = append(groups, Group{
			Kind:       KindView,
			Name:       view.Name,
			Statements: []string{Resolve(view.DDL, ViewPlaceholder, view.Name)},
		})
	}

	return groups
}

// Statements flattens the schema into its resolved DDL fragments: each entity
// followed by its indices, then the views.
func (s *Schema) Statements(opts CollectOptions) []string {
	var stmts []string

	if comment, ok := s.VersionComment(opts); ok {
		stmts = append(stmts, comment)
	}

	for _, g := range s.Groups() {
		stmts = append(stmts, g.Statements...)
	}

	return stmts
}

// VersionComment returns the generation comment, if enabled and the database has a version.
func (s *Schema) VersionComment(opts CollectOptions) (string, bool) {
	if !opts.VersionComment || s.Database.Version == nil {
		return "", false
	}

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	return fmt.Sprintf(versionCommentFormat, now().Format(versionTimeLayout), *s.Database.Version), true
}

// StatementCount returns the number of DDL statements the schema declares, excluding any preamble.
func (s *Schema) StatementCount() int {
	n := len(s.Database.Views)
	for _, entity := range s.Database.Entities {
		n += 1 + len(entity.Indices)
	}
	return n
}
