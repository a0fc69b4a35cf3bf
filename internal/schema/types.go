package schema

// Schema represents a complete Room schema document
type Schema struct {
	Database Database
}

// Database represents the database declared by the schema
type Database struct {
	Version  *int // nil when the document carries no version
	Entities []Entity
	Views    []View
}

// Entity represents a table and the indices declared on it
type Entity struct {
	Name    string
	DDL     string
	Indices []Index
}

// Index represents an index on its owning entity's table
type Index struct {
	Name string // informational only
	DDL  string
}

// View represents a database view
type View struct {
	Name string
	DDL  string
}

// GroupKind identifies the element that owns a group of statements
type GroupKind string

const (
	KindTable GroupKind = "table"
	KindView  GroupKind = "view"
)

// Group holds the resolved statements owned by a single table or view
type Group struct {
	Kind       GroupKind
	Name       string
	Statements []string
}
