package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/roomddl/internal/schema"
)

// MarkdownFormatter formats schema as markdown with one fenced SQL block per table or view
type MarkdownFormatter struct {
	writer io.Writer
}

// NewMarkdownFormatter creates a new markdown formatter
func NewMarkdownFormatter(w io.Writer) *MarkdownFormatter {
	return &MarkdownFormatter{writer: w}
}

// Format writes the schema in markdown format
func (f *MarkdownFormatter) Format(s *schema.Schema, opts schema.CollectOptions) error {
	var b strings.Builder

	_, _ = fmt.Fprintln(&b, "# Database Schema")
	_, _ = fmt.Fprintln(&b)

	if comment, ok := s.VersionComment(opts); ok {
		_, _ = fmt.Fprintf(&b, "_%s_\n\n", strings.TrimSpace(strings.TrimPrefix(comment, "--")))
	}

	for _, g := range s.Groups() {
		f.FormatGroup(&b, g)
	}

	if _, err := io.WriteString(f.writer, b.String()); err != nil {
		return fmt.Errorf("failed to write markdown: %w", err)
	}
	return nil
}

// FormatGroup writes a single table or view section (exported for use by multifile formatter)
func (f *MarkdownFormatter) FormatGroup(w io.Writer, g schema.Group) {
	if g.Kind == schema.KindView {
		_, _ = fmt.Fprintf(w, "## %s (view)\n\n", g.Name)
	} else {
		_, _ = fmt.Fprintf(w, "## %s\n\n", g.Name)
		if n := len(g.Statements) - 1; n > 0 {
			_, _ = fmt.Fprintf(w, "Indices: %d\n\n", n)
		}
	}

	_, _ = fmt.Fprintln(w, "```sql")
	_, _ = fmt.Fprintln(w, Join(g.Statements))
	_, _ = fmt.Fprintln(w, "```")
	_, _ = fmt.Fprintln(w)
}
