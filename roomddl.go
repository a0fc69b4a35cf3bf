// Package roomddl extracts the SQL DDL embedded in a Room database schema
// JSON file and writes it out as a SQL script.
//
// Room records each table, index and view of a database as a createSql
// fragment containing a ${TABLE_NAME} or ${VIEW_NAME} placeholder. roomddl
// substitutes the declared names, terminates every statement with a semicolon
// (comment lines are left alone) and separates statements with a blank line.
//
// # Quick Start
//
// The simplest way to use this package is with ExtractFile:
//
//	err := roomddl.ExtractFile("app/schemas/com.example.AppDatabase/3.json", "", nil)
//
// which writes build/ddl/ddl.sql, creating missing directories.
//
// # Output Formats
//
// Single-file output writes the whole script to one writer:
//
//	&OutputOptions{Writer: os.Stdout}  // or any io.Writer
//
// Multi-file output creates a directory with _overview.txt and one file per table and view:
//
//	&OutputOptions{OutputDir: "build/ddl"}
//
// Options.Format selects plain SQL (the default) or markdown.
package roomddl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tordrt/roomddl/internal/config"
	"github.com/tordrt/roomddl/internal/db"
	"github.com/tordrt/roomddl/internal/formatter"
	"github.com/tordrt/roomddl/internal/schema"
)

// DefaultDestination is the output path used by ExtractFile when none is given.
const DefaultDestination = config.DefaultDestination

var (
	// ErrInputUnavailable is returned when the schema source cannot be opened or read.
	ErrInputUnavailable = errors.New("input unavailable")

	// ErrMalformedDocument is returned when the schema source is not valid JSON.
	ErrMalformedDocument = schema.ErrMalformedDocument

	// ErrShapeMismatch is returned when the JSON lacks the database structure or a required field.
	ErrShapeMismatch = schema.ErrShapeMismatch

	// ErrOutputUnavailable is returned when the destination cannot be created or written.
	ErrOutputUnavailable = errors.New("output unavailable")

	// ErrVerification is returned by ApplySchema when a table or view is missing after apply.
	ErrVerification = errors.New("schema verification failed")
)

// Options configures how statements are rendered.
//
// All fields are optional. The zero value renders plain SQL without a
// version preamble and discards log output.
type Options struct {
	// VersionComment prepends "-- Generated <time> for database version <n>"
	// when the schema carries database.version.
	VersionComment bool

	// Now supplies the time used in the version comment. Defaults to time.Now.
	Now func() time.Time

	// Format is "sql" (default) or "markdown".
	Format string

	// Logger receives progress messages. Defaults to a discarding logger.
	Logger *slog.Logger
}

// OutputOptions configures where rendered output goes.
//
// If both are specified, OutputDir takes precedence and Writer is ignored.
// If neither is specified, output goes to os.Stdout.
type OutputOptions struct {
	// Writer receives single-file output.
	Writer io.Writer

	// OutputDir receives one file per table and view plus an overview.
	// The directory will be created if it doesn't exist.
	OutputDir string
}

// ApplyOptions configures ApplySchema.
type ApplyOptions struct {
	// Verify checks that every table and view exists after the statements run.
	Verify bool

	Logger *slog.Logger
}

// ApplyResult reports what ApplySchema did.
type ApplyResult struct {
	DatabaseType string
	Executed     int
	Skipped      int // comment fragments
	Objects      []db.Object
}

func (o *Options) collectOptions() schema.CollectOptions {
	return schema.CollectOptions{VersionComment: o.VersionComment, Now: o.Now}
}

func (o *Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.DiscardHandler)
}

func normalizeOptions(opts *Options) *Options {
	if opts == nil {
		return &Options{}
	}
	return opts
}

// ParseSchema reads a complete schema document from r.
//
// Use this function when you need to inspect the schema before formatting.
// Read failures wrap ErrInputUnavailable; decoding failures wrap
// ErrMalformedDocument or ErrShapeMismatch.
func ParseSchema(r io.Reader) (*schema.Schema, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInputUnavailable, err)
	}

	return schema.Unmarshal(data)
}

// FormatSchema renders a schema and writes it to the specified output.
//
// Single-file output is rendered in memory and written with one write, so a
// rendering failure writes nothing. A failed write wraps ErrOutputUnavailable
// and may leave partial output behind; the same holds for multi-file output,
// where files already written are left in place.
func FormatSchema(s *schema.Schema, opts *Options, outOpts *OutputOptions) error {
	opts = normalizeOptions(opts)
	if outOpts == nil {
		outOpts = &OutputOptions{Writer: os.Stdout}
	}

	format, err := resolveFormat(opts.Format)
	if err != nil {
		return err
	}

	// Multi-file output
	if outOpts.OutputDir != "" {
		f := formatter.NewMultiFileFormatter(outOpts.OutputDir, format)
		if err := f.Format(s, opts.collectOptions()); err != nil {
			return fmt.Errorf("%w: %w", ErrOutputUnavailable, err)
		}
		opts.logger().Info("wrote schema files", "dir", outOpts.OutputDir, "files", len(f.Files(s)))
		return nil
	}

	// Single-file output
	writer := outOpts.Writer
	if writer == nil {
		writer = os.Stdout
	}

	content, err := render(s, opts, format)
	if err != nil {
		return err
	}
	if _, err := writer.Write(content); err != nil {
		return fmt.Errorf("%w: %w", ErrOutputUnavailable, err)
	}
	return nil
}

// Parse reads a schema document from r and writes the rendered script to w.
func Parse(r io.Reader, w io.Writer, opts *Options) error {
	s, err := ParseSchema(r)
	if err != nil {
		return err
	}
	return FormatSchema(s, opts, &OutputOptions{Writer: w})
}

// ParseBytes renders the script for an in-memory schema document.
func ParseBytes(input []byte, opts *Options) ([]byte, error) {
	opts = normalizeOptions(opts)

	format, err := resolveFormat(opts.Format)
	if err != nil {
		return nil, err
	}

	s, err := schema.Unmarshal(input)
	if err != nil {
		return nil, err
	}
	return render(s, opts, format)
}

// ExtractFile reads the schema at source and writes the script to destination.
//
// An empty destination means DefaultDestination. Missing parent directories
// are created. The script is rendered before the destination is opened, so
// any read or decode failure leaves an existing destination untouched.
func ExtractFile(source, destination string, opts *Options) (err error) {
	opts = normalizeOptions(opts)
	log := opts.logger()

	if source == "" {
		return fmt.Errorf("%w: source is required", ErrInputUnavailable)
	}
	if destination == "" {
		destination = DefaultDestination
	}

	format, err := resolveFormat(opts.Format)
	if err != nil {
		return err
	}

	s, err := readSchemaFile(source)
	if err != nil {
		return err
	}
	log.Debug("parsed schema", "source", source, "entities", len(s.Database.Entities), "views", len(s.Database.Views))

	content, err := render(s, opts, format)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(destination), 0755); err != nil {
		return fmt.Errorf("%w: failed to create output directory: %w", ErrOutputUnavailable, err)
	}

	f, err := os.Create(destination)
	if err != nil {
		return fmt.Errorf("%w: failed to create output file: %w", ErrOutputUnavailable, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: failed to close output file: %w", ErrOutputUnavailable, cerr)
		}
	}()

	if _, err := f.Write(content); err != nil {
		return fmt.Errorf("%w: failed to write output file: %w", ErrOutputUnavailable, err)
	}

	log.Info("wrote DDL", "destination", destination, "statements", s.StatementCount())
	return nil
}

// ExtractDir reads the schema at source and writes one file per table and view into dir.
func ExtractDir(source, dir string, opts *Options) error {
	s, err := readSchemaFile(source)
	if err != nil {
		return err
	}
	return FormatSchema(s, opts, &OutputOptions{OutputDir: dir})
}

// ApplySchema executes the schema's statements against a database.
//
// Supported URL schemes are postgres:// (or postgresql://), mysql:// and
// sqlite://. Comment fragments are skipped. Statements run in one
// transaction; MySQL commits DDL implicitly, so a failure there can leave
// earlier statements applied.
func ApplySchema(ctx context.Context, databaseURL string, s *schema.Schema, opts *ApplyOptions) (*ApplyResult, error) {
	if opts == nil {
		opts = &ApplyOptions{}
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	dbType, connStr, err := parseDatabaseURL(databaseURL)
	if err != nil {
		return nil, err
	}

	client, err := openClient(ctx, dbType, connStr)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := client.Close(); err != nil {
			log.Warn("failed to close database connection", "error", err)
		}
	}()

	result := &ApplyResult{DatabaseType: dbType}
	var statements []string
	for _, stmt := range s.Statements(schema.CollectOptions{}) {
		if formatter.IsComment(stmt) {
			result.Skipped++
			continue
		}
		statements = append(statements, stmt)
	}

	log.Debug("applying statements", "database", dbType, "count", len(statements))
	if err := client.ExecAll(ctx, statements); err != nil {
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	result.Executed = len(statements)

	if !opts.Verify {
		return result, nil
	}

	objects, err := client.Objects(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list database objects: %w", err)
	}
	result.Objects = objects

	if missing := missingObjects(s, objects); len(missing) > 0 {
		return result, fmt.Errorf("%w: missing %s", ErrVerification, strings.Join(missing, ", "))
	}
	log.Info("verified schema", "database", dbType, "objects", len(objects))
	return result, nil
}

func readSchemaFile(source string) (*schema.Schema, error) {
	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInputUnavailable, err)
	}
	defer func() { _ = f.Close() }()

	return ParseSchema(f)
}

func resolveFormat(format string) (string, error) {
	switch format {
	case "", formatter.FormatSQL:
		return formatter.FormatSQL, nil
	case formatter.FormatMarkdown:
		return formatter.FormatMarkdown, nil
	default:
		return "", fmt.Errorf("invalid format: %s (must be 'sql' or 'markdown')", format)
	}
}

func render(s *schema.Schema, opts *Options, format string) ([]byte, error) {
	var buf bytes.Buffer
	var err error

	switch format {
	case formatter.FormatMarkdown:
		err = formatter.NewMarkdownFormatter(&buf).Format(s, opts.collectOptions())
	default:
		err = formatter.NewSQLFormatter(&buf).Format(s, opts.collectOptions())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to format output: %w", err)
	}
	return buf.Bytes(), nil
}

// parseDatabaseURL detects database type and returns connection string
func parseDatabaseURL(url string) (dbType, connectionStr string, err error) {
	if url == "" {
		return "", "", fmt.Errorf("database URL is required")
	}

	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		return "postgres", url, nil
	}

	if strings.HasPrefix(url, "mysql://") {
		// Strip mysql:// prefix for the Go MySQL driver
		return "mysql", strings.TrimPrefix(url, "mysql://"), nil
	}

	if strings.HasPrefix(url, "sqlite://") {
		// Strip sqlite:// prefix to get file path
		return "sqlite", strings.TrimPrefix(url, "sqlite://"), nil
	}

	return "", "", fmt.Errorf("invalid database URL scheme (must start with postgres://, mysql://, or sqlite://)")
}

func openClient(ctx context.Context, dbType, connStr string) (db.Client, error) {
	switch dbType {
	case "postgres":
		client, err := db.NewPostgresClient(ctx, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		return client, nil
	case "mysql":
		client, err := db.NewMySQLClient(ctx, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MySQL: %w", err)
		}
		return client, nil
	case "sqlite":
		client, err := db.NewSQLiteClient(ctx, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to SQLite: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", dbType)
	}
}

// missingObjects lists tables and views declared by s but absent from objects.
// Names are compared case-insensitively.
func missingObjects(s *schema.Schema, objects []db.Object) []string {
	present := make(map[string]bool, len(objects))
	for _, obj := range objects {
		present[obj.Type+":"+strings.ToLower(obj.Name)] = true
	}

	var missing []string
	for _, entity := range s.Database.Entities {
		if !present["table:"+strings.ToLower(entity.Name)] {
			missing = append(missing, "table "+entity.Name)
		}
	}
	for _, view := range s.Database.Views {
		if !present["view:"+strings.ToLower(view.Name)] {
			missing = append(missing, "view "+view.Name)
		}
	}
	return missing
}
