// Package report renders a parsed coverage report for humans or tools.
package report

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/zjy-dev/bazel-lcov/internal/coverage"
)

// ErrUnknownFormat is returned by New for an unsupported format name.
var ErrUnknownFormat = errors.New("unknown report format")

// Supported format names.
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

// Reporter renders a coverage report.
type Reporter interface {
	Render(w io.Writer, r *coverage.Report) error
}

// New returns the Reporter for format. Line numbers in text and markdown
// output are 1-based.
func New(format string) (Reporter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatText:
		return &TextReporter{}, nil
	case FormatMarkdown, "md":
		return &MarkdownReporter{}, nil
	case FormatJSON:
		return &JSONReporter{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Save renders r into path on fs, creating parent directories.
func Save(fs afero.Fs, path string, rep Reporter, r *coverage.Report) error {
	var buf bytes.Buffer
	if err := rep.Render(&buf, r); err != nil {
		return err
	}
	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	if err := afero.WriteFile(fs, path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// JSONReporter writes coverage.Report.ToBytes.
type JSONReporter struct{}

// Render implements Reporter.
func (JSONReporter) Render(w io.Writer, r *coverage.Report) error {
	data, err := r.ToBytes()
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// TextReporter writes one summary line per file and a total.
type TextReporter struct{}

// Render implements Reporter.
func (TextReporter) Render(w io.Writer, r *coverage.Report) error {
	var b strings.Builder
	for _, f := range r.Files {
		fmt.Fprintf(&b, "%s\n  functions: %s  lines: %s  branches: %s\n",
			f.Path,
			formatTotals(f.DeclarationCoverage()),
			formatTotals(f.StatementCoverage()),
			formatTotals(f.BranchCoverage()))
	}
	stats := r.Stats()
	fmt.Fprintf(&b, "TOTAL (%d files)\n  functions: %s  lines: %s  branches: %s\n",
		stats.Files,
		formatTotals(stats.Declarations),
		formatTotals(stats.Statements),
		formatTotals(stats.Branches))
	_, err := io.WriteString(w, b.String())
	return err
}

func formatTotals(t coverage.Totals) string {
	return fmt.Sprintf("%d/%d (%.1f%%)", t.Covered, t.Total, t.Percentage())
}
