package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/zjy-dev/bazel-lcov/internal/coverage"
)

// MarkdownReporter renders a summary table followed by per-file sections
// listing functions and the lines that never executed.
type MarkdownReporter struct{}

// Render implements Reporter.
func (MarkdownReporter) Render(w io.Writer, r *coverage.Report) error {
	var b strings.Builder
	stats := r.Stats()

	b.WriteString("# Coverage Report\n\n")
	fmt.Fprintf(&b, "**Files:** %d\n\n", stats.Files)
	b.WriteString("| File | Functions | Lines | Branches |\n")
	b.WriteString("|------|-----------|-------|----------|\n")
	for _, f := range r.Files {
		fmt.Fprintf(&b, "| `%s` | %s | %s | %s |\n",
			f.Path,
			formatTotals(f.DeclarationCoverage()),
			formatTotals(f.StatementCoverage()),
			formatTotals(f.BranchCoverage()))
	}
	fmt.Fprintf(&b, "| **Total** | %s | %s | %s |\n\n",
		formatTotals(stats.Declarations),
		formatTotals(stats.Statements),
		formatTotals(stats.Branches))

	for _, f := range r.Files {
		fmt.Fprintf(&b, "## %s\n\n", f.Path)

		if decls := f.SortedDeclarations(); len(decls) > 0 {
			b.WriteString("### Functions\n\n")
			for _, d := range decls {
				fmt.Fprintf(&b, "- `%s` (line %d): %d calls\n", d.Name, d.StartLine+1, d.ExecutedCount)
			}
			b.WriteString("\n")
		}

		var missed []string
		for _, s := range f.SortedStatements() {
			if s.ExecutedCount == 0 {
				missed = append(missed, fmt.Sprint(s.Line+1))
			}
		}
		if len(missed) > 0 {
			fmt.Fprintf(&b, "**Uncovered lines:** %s\n\n", strings.Join(missed, ", "))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
