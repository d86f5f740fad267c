// Package coverage builds a per-file coverage model (functions, lines and
// branches) from LCOV tracefiles.
package coverage

import (
	"encoding/json"
	"sort"
)

// Declaration is a function or method. Lines are 0-based.
type Declaration struct {
	Name          string `json:"name"`
	StartLine     int    `json:"start_line"`
	EndLine       *int   `json:"end_line,omitempty"`
	ExecutedCount int64  `json:"executed_count"`
}

// Branch is one outcome of a conditional on a statement.
type Branch struct {
	Block         string `json:"block"`
	Label         string `json:"label"`
	ExecutedCount int64  `json:"executed_count"`
}

// ID returns the key of the branch within its statement.
func (b *Branch) ID() string {
	return branchID(b.Block, b.Label)
}

func branchID(block, label string) string {
	return block + ":" + label
}

// Statement is a source line. Line is 0-based.
type Statement struct {
	Line          int                `json:"line"`
	ExecutedCount int64              `json:"executed_count"`
	Branches      map[string]*Branch `json:"-"`
}

// SortedBranches returns the branches ordered by block then label.
func (s *Statement) SortedBranches() []*Branch {
	branches := make([]*Branch, 0, len(s.Branches))
	for _, b := range s.Branches {
		branches = append(branches, b)
	}
	sort.Slice(branches, func(i, j int) bool {
		if branches[i].Block != branches[j].Block {
			return lessNumeric(branches[i].Block, branches[j].Block)
		}
		return lessNumeric(branches[i].Label, branches[j].Label)
	})
	return branches
}

// MarshalJSON emits branches as an ordered list.
func (s *Statement) MarshalJSON() ([]byte, error) {
	type statement Statement
	return json.Marshal(struct {
		*statement
		Branches []*Branch `json:"branches,omitempty"`
	}{(*statement)(s), s.SortedBranches()})
}

// FileCoverage is the coverage of one resolved source path.
type FileCoverage struct {
	Path         string
	Declarations map[int]*Declaration // keyed by 0-based start line
	Statements   map[int]*Statement   // keyed by 0-based line
}

func newFileCoverage(path string) *FileCoverage {
	return &FileCoverage{
		Path:         path,
		Declarations: make(map[int]*Declaration),
		Statements:   make(map[int]*Statement),
	}
}

// SortedDeclarations returns declarations ordered by start line.
func (f *FileCoverage) SortedDeclarations() []*Declaration {
	decls := make([]*Declaration, 0, len(f.Declarations))
	for _, d := range f.Declarations {
		decls = append(decls, d)
	}
	sort.Slice(decls, func(i, j int) bool { return decls[i].StartLine < decls[j].StartLine })
	return decls
}

// SortedStatements returns statements ordered by line.
func (f *FileCoverage) SortedStatements() []*Statement {
	stmts := make([]*Statement, 0, len(f.Statements))
	for _, s := range f.Statements {
		stmts = append(stmts, s)
	}
	sort.Slice(stmts, func(i, j int) bool { return stmts[i].Line < stmts[j].Line })
	return stmts
}

// Totals counts items and how many of them executed at least once.
type Totals struct {
	Total   int `json:"total"`
	Covered int `json:"covered"`
}

// Add returns the element-wise sum of t and o.
func (t Totals) Add(o Totals) Totals {
	return Totals{Total: t.Total + o.Total, Covered: t.Covered + o.Covered}
}

// Percentage returns covered/total in [0, 100]; 0 when there is nothing to cover.
func (t Totals) Percentage() float64 {
	if t.Total == 0 {
		return 0
	}
	return float64(t.Covered) * 100 / float64(t.Total)
}

func tally(total *Totals, executed int64) {
	total.Total++
	if executed > 0 {
		total.Covered++
	}
}

// DeclarationCoverage counts functions and those executed.
func (f *FileCoverage) DeclarationCoverage() Totals {
	var t Totals
	for _, d := range f.Declarations {
		tally(&t, d.ExecutedCount)
	}
	return t
}

// StatementCoverage counts lines and those executed.
func (f *FileCoverage) StatementCoverage() Totals {
	var t Totals
	for _, s := range f.Statements {
		tally(&t, s.ExecutedCount)
	}
	return t
}

// BranchCoverage counts branches and those taken.
func (f *FileCoverage) BranchCoverage() Totals {
	var t Totals
	for _, s := range f.Statements {
		for _, b := range s.Branches {
			tally(&t, b.ExecutedCount)
		}
	}
	return t
}

// MarshalJSON emits the file with ordered declarations and statements and
// its derived totals.
func (f *FileCoverage) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Path                string         `json:"path"`
		DeclarationCoverage Totals         `json:"declaration_coverage"`
		StatementCoverage   Totals         `json:"statement_coverage"`
		BranchCoverage      Totals         `json:"branch_coverage"`
		Declarations        []*Declaration `json:"declarations"`
		Statements          []*Statement   `json:"statements"`
	}{
		Path:                f.Path,
		DeclarationCoverage: f.DeclarationCoverage(),
		StatementCoverage:   f.StatementCoverage(),
		BranchCoverage:      f.BranchCoverage(),
		Declarations:        f.SortedDeclarations(),
		Statements:          f.SortedStatements(),
	})
}

// Report is the result of one parse: files in order of first appearance,
// with no two entries sharing a path.
type Report struct {
	Files []*FileCoverage
}

// File returns the coverage for path, if present.
func (r *Report) File(path string) (*FileCoverage, bool) {
	for _, f := range r.Files {
		if f.Path == path {
			return f, true
		}
	}
	return nil, false
}

// CoverageStats holds report-wide totals for display.
type CoverageStats struct {
	Files        int    `json:"files"`
	Declarations Totals `json:"declarations"`
	Statements   Totals `json:"statements"`
	Branches     Totals `json:"branches"`

	// Line coverage percentage (0-100)
	CoveragePercentage float64 `json:"coverage_percentage"`
}

// Stats sums the per-file totals.
func (r *Report) Stats() *CoverageStats {
	stats := &CoverageStats{Files: len(r.Files)}
	for _, f := range r.Files {
		stats.Declarations = stats.Declarations.Add(f.DeclarationCoverage())
		stats.Statements = stats.Statements.Add(f.StatementCoverage())
		stats.Branches = stats.Branches.Add(f.BranchCoverage())
	}
	stats.CoveragePercentage = stats.Statements.Percentage()
	return stats
}

// ToBytes serializes the report as JSON. Line numbers stay 0-based.
func (r *Report) ToBytes() ([]byte, error) {
	files := r.Files
	if files == nil {
		files = []*FileCoverage{}
	}
	return json.MarshalIndent(struct {
		Stats *CoverageStats  `json:"stats"`
		Files []*FileCoverage `json:"files"`
	}{r.Stats(), files}, "", "  ")
}

// lessNumeric orders decimal strings by value and anything else lexically.
func lessNumeric(a, b string) bool {
	if len(a) != len(b) && isDigits(a) && isDigits(b) {
		return len(a) < len(b)
	}
	return a < b
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
