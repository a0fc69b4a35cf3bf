package formatter

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tordrt/roomddl/internal/schema"
)

// Output formats
const (
	FormatSQL      = "sql"
	FormatMarkdown = "markdown"
)

// MultiFileFormatter writes schema to multiple files in a directory
type MultiFileFormatter struct {
	OutputDir    string
	OutputFormat string // "sql" or "markdown"
}

// NewMultiFileFormatter creates a new multi-file formatter
func NewMultiFileFormatter(outputDir, format string) *MultiFileFormatter {
	return &MultiFileFormatter{
		OutputDir:    outputDir,
		OutputFormat: format,
	}
}

// Format writes an overview file plus one file per table and view
func (f *MultiFileFormatter) Format(s *schema.Schema, opts schema.CollectOptions) error {
	groups := s.Groups()

	// Names are compared case-insensitively so case-folding filesystems cannot merge files
	taken := map[string]bool{strings.ToLower("_overview" + f.getOverviewExtension()): true}
	for _, g := range groups {
		if err := validateFileName(g.Name); err != nil {
			return fmt.Errorf("invalid %s name %q: %w", g.Kind, g.Name, err)
		}
		file := strings.ToLower(g.Name + f.getFileExtension())
		if taken[file] {
			return fmt.Errorf("%s %q: file %s collides with another output file", g.Kind, g.Name, g.Name+f.getFileExtension())
		}
		taken[file] = true
	}

	// Create output directory if it doesn't exist
	if err := os.MkdirAll(f.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := f.writeOverview(s, groups, opts); err != nil {
		return fmt.Errorf("failed to write overview: %w", err)
	}

	for _, g := range groups {
		if err := f.writeGroupFile(g); err != nil {
			return fmt.Errorf("failed to write %s file for %s: %w", g.Kind, g.Name, err)
		}
	}

	return nil
}

// Files returns the paths Format would write, overview first
func (f *MultiFileFormatter) Files(s *schema.Schema) []string {
	groups := s.Groups()
	files := make([]string, 0, len(groups)+1)
	files = append(files, filepath.Join(f.OutputDir, "_overview"+f.getOverviewExtension()))
	for _, g := range groups {
		files = append(files, filepath.Join(f.OutputDir, g.Name+f.getFileExtension()))
	}
	return files
}

func (f *MultiFileFormatter) writeOverview(s *schema.Schema, groups []schema.Group, opts schema.CollectOptions) error {
	var buf bytes.Buffer
	comment, hasComment := s.VersionComment(opts)

	if f.OutputFormat == FormatMarkdown {
		_, _ = fmt.Fprintf(&buf, "# Schema Overview\n\n")
		if hasComment {
			_, _ = fmt.Fprintf(&buf, "_%s_\n\n", strings.TrimSpace(strings.TrimPrefix(comment, "--")))
		}
		_, _ = fmt.Fprintf(&buf, "Each table and view has a corresponding file: `<name>%s`\n\n", f.getFileExtension())
		f.writeSection(&buf, "## Tables\n\n", "- **%s**", groups, schema.KindTable)
		f.writeSection(&buf, "## Views\n\n", "- **%s**", groups, schema.KindView)
	} else {
		_, _ = fmt.Fprintf(&buf, "SCHEMA OVERVIEW\n")
		if hasComment {
			_, _ = fmt.Fprintf(&buf, "%s\n", comment)
		}
		_, _ = fmt.Fprintf(&buf, "Each table and view has a file: <name>%s\n\n", f.getFileExtension())
		f.writeSection(&buf, "TABLES\n", "%s", groups, schema.KindTable)
		f.writeSection(&buf, "VIEWS\n", "%s", groups, schema.KindView)
	}

	return os.WriteFile(filepath.Join(f.OutputDir, "_overview"+f.getOverviewExtension()), buf.Bytes(), 0644)
}

// writeSection lists groups of one kind in declaration order
func (f *MultiFileFormatter) writeSection(buf *bytes.Buffer, header, itemFormat string, groups []schema.Group, kind schema.GroupKind) {
	wroteHeader := false
	for _, g := range groups {
		if g.Kind != kind {
			continue
		}
		if !wroteHeader {
			buf.WriteString(header)
			wroteHeader = true
		}
		_, _ = fmt.Fprintf(buf, itemFormat, g.Name)
		if n := len(g.Statements) - 1; kind == schema.KindTable && n > 0 {
			_, _ = fmt.Fprintf(buf, " (indices: %d)", n)
		}
		buf.WriteString("\n")
	}
	if wroteHeader {
		buf.WriteString("\n")
	}
}

// writeGroupFile writes a single table or view to its own file
func (f *MultiFileFormatter) writeGroupFile(g schema.Group) error {
	var buf bytes.Buffer

	if f.OutputFormat == FormatMarkdown {
		NewMarkdownFormatter(&buf).FormatGroup(&buf, g)
	} else {
		buf.WriteString(Join(g.Statements))
	}

	return os.WriteFile(filepath.Join(f.OutputDir, g.Name+f.getFileExtension()), buf.Bytes(), 0644)
}

func (f *MultiFileFormatter) getFileExtension() string {
	if f.OutputFormat == FormatMarkdown {
		return ".md"
	}
	return ".sql"
}

func (f *MultiFileFormatter) getOverviewExtension() string {
	if f.OutputFormat == FormatMarkdown {
		return ".md"
	}
	return ".txt"
}

func validateFileName(name string) error {
	if name == "" || name == "." || name == ".." {
		return fmt.Errorf("not usable as a file name")
	}
	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("contains a path separator")
	}
	return nil
}
