package formatter

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/tordrt/roomddl/internal/schema"
)

// StatementSeparator is written between consecutive statements
const StatementSeparator = "\n\n"

// Line terminators end the comment, so a fragment spanning lines is a statement
var commentPattern = regexp.MustCompile(`^\s*--\s[^\r\n\x{0085}\x{2028}\x{2029}]*$`)

// IsComment reports whether a fragment is a single SQL line comment.
func IsComment(fragment string) bool {
	return commentPattern.MatchString(strings.TrimSpace(fragment))
}

// Terminate appends a semicolon to executable statements. Comments are returned unchanged.
func Terminate(fragment string) string {
	if IsComment(fragment) {
		return fragment
	}
	return fragment + ";"
}

// Join terminates each fragment and separates them with a blank line.
func Join(fragments []string) string {
	terminated := make([]string, len(fragments))
	for i, f := range fragments {
		terminated[i] = Terminate(f)
	}
	return strings.Join(terminated, StatementSeparator)
}

// SQLFormatter formats schema as a SQL script
type SQLFormatter struct {
	writer io.Writer
}

// NewSQLFormatter creates a new SQL formatter
func NewSQLFormatter(w io.Writer) *SQLFormatter {
	return &SQLFormatter{writer: w}
}

// Format writes the resolved and terminated statements in a single write
func (f *SQLFormatter) Format(s *schema.Schema, opts schema.CollectOptions) error {
	content := Join(s.Statements(opts))
	if content == "" {
		return nil
	}

	if _, err := io.WriteString(f.writer, content); err != nil {
		return fmt.Errorf("failed to write statements: %w", err)
	}
	return nil
}
