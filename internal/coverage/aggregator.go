package coverage

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/multierr"

	"github.com/zjy-dev/bazel-lcov/internal/lcov"
)

// Demangler turns a mangled function name into a display name. It never fails.
type Demangler interface {
	Demangle(mangled string) string
}

// PathResolver maps an SF value to an absolute path.
type PathResolver interface {
	Resolve(baseFolder, sfValue string) string
}

var (
	reFN   = regexp.MustCompile(`^(-?\d+)(?:,(-?\d+))?,(.+)$`)
	reFNDA = regexp.MustCompile(`^(-?\d+),(.+)$`)
	reDA   = regexp.MustCompile(`^(-?\d+),(-?\d+)(?:,.*)?$`)
	reBRDA = regexp.MustCompile(`^(-?\d+),(e)?(\d+),(.*),(-?\d+|-)$`)
)

// Aggregator owns the coverage model for a single parse. Feed it blocks in
// input order with AddBlock and collect the result with Report.
type Aggregator struct {
	baseFolder string
	resolver   PathResolver
	demangler  Demangler

	files map[string]*FileCoverage
	order []*FileCoverage

	// per-block state
	current   *FileCoverage
	functions map[string]*Declaration

	blocks  int
	records int
}

// NewAggregator creates an empty Aggregator.
func NewAggregator(baseFolder string, resolver PathResolver, demangler Demangler) *Aggregator {
	return &Aggregator{
		baseFolder: baseFolder,
		resolver:   resolver,
		demangler:  demangler,
		files:      make(map[string]*FileCoverage),
	}
}

// AddBlock applies every record of b. Failing records are skipped and their
// errors returned together; the model then no longer reflects the input.
func (a *Aggregator) AddBlock(b lcov.Block) error {
	a.blocks++
	a.current = nil
	a.functions = make(map[string]*Declaration)

	var errs error
	for _, rec := range b.Records {
		a.records++
		if rec.Err != nil {
			errs = multierr.Append(errs, &RecordError{Line: rec.Line, Value: rec.String(), Err: rec.Err})
			continue
		}
		if err := a.apply(rec.Key, rec.Value); err != nil {
			errs = multierr.Append(errs, &RecordError{Line: rec.Line, Key: rec.Key, Value: rec.Value, Err: err})
		}
	}
	return errs
}

// Report returns the files seen so far in order of first appearance.
func (a *Aggregator) Report() *Report {
	files := make([]*FileCoverage, len(a.order))
	copy(files, a.order)
	return &Report{Files: files}
}

func (a *Aggregator) apply(key, value string) error {
	switch key {
	case "TN", "FNF", "FNH", "LF", "LH", "BRF", "BRH":
		// Totals are derived from the model, never taken from the input.
		return nil
	case "SF":
		return a.sourceFile(value)
	case "FN":
		return a.function(value)
	case "FNDA":
		return a.functionData(value)
	case "DA":
		return a.lineData(value)
	case "BRDA":
		return a.branchData(value)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownStatement, key)
	}
}

func (a *Aggregator) sourceFile(value string) error {
	if a.current != nil {
		return ErrDuplicatedSF
	}
	path := a.resolver.Resolve(a.baseFolder, value)
	file, ok := a.files[path]
	if !ok {
		file = newFileCoverage(path)
		a.files[path] = file
		a.order = append(a.order, file)
	}
	a.current = file
	return nil
}

// FN:<start>[,<end>],<name>
func (a *Aggregator) function(value string) error {
	if a.current == nil {
		return ErrMissingFilename
	}
	m := reFN.FindStringSubmatch(value)
	if m == nil {
		return fmt.Errorf("%w: expected FN:<line>[,<end line>],<name>", ErrMalformedRecord)
	}
	start, err := parseLine(m[1])
	if err != nil {
		return err
	}
	var end *int
	if m[2] != "" {
		n, err := parseLine(m[2])
		if err != nil {
			return err
		}
		end = &n
	}
	name := m[3]

	// The first FN at a line names the declaration for the whole parse.
	decl, ok := a.current.Declarations[start]
	if !ok {
		decl = &Declaration{Name: a.demangler.Demangle(name), StartLine: start, EndLine: end}
		a.current.Declarations[start] = decl
	}
	a.functions[name] = decl
	return nil
}

// FNDA:<count>,<name>
func (a *Aggregator) functionData(value string) error {
	m := reFNDA.FindStringSubmatch(value)
	if m == nil {
		return fmt.Errorf("%w: expected FNDA:<count>,<name>", ErrMalformedRecord)
	}
	count, err := parseCount(m[1])
	if err != nil {
		return err
	}
	decl, ok := a.functions[m[2]]
	if !ok {
		return fmt.Errorf("%w %s", ErrUndeclaredFunction, m[2])
	}
	decl.ExecutedCount += count
	return nil
}

// DA:<line>,<count>[,<checksum>]
func (a *Aggregator) lineData(value string) error {
	if a.current == nil {
		return ErrMissingFilename
	}
	m := reDA.FindStringSubmatch(value)
	if m == nil {
		return fmt.Errorf("%w: expected DA:<line>,<count>[,<checksum>]", ErrMalformedRecord)
	}
	line, err := parseLine(m[1])
	if err != nil {
		return err
	}
	count, err := parseCount(m[2])
	if err != nil {
		return err
	}
	a.statement(line).ExecutedCount += count
	return nil
}

// BRDA:<line>,[e]<block>,<label>,<count|->
func (a *Aggregator) branchData(value string) error {
	// Coverage.py reports exit branches on line 0; drop them before any
	// other validation.
	first, _, _ := strings.Cut(value, ",")
	if n, err := strconv.Atoi(first); err == nil && n == 0 {
		return nil
	}

	m := reBRDA.FindStringSubmatch(value)
	if m == nil {
		return fmt.Errorf("%w: expected BRDA:<line>,[e]<block>,<branch>,<taken>", ErrMalformedRecord)
	}
	if m[2] == "e" {
		// exception edges
		return nil
	}
	if a.current == nil {
		return ErrMissingFilename
	}
	line, err := parseLine(m[1])
	if err != nil {
		return err
	}
	var taken int64
	if m[5] != "-" {
		if taken, err = parseCount(m[5]); err != nil {
			return err
		}
	}

	stmt := a.statement(line)
	id := branchID(m[3], m[4])
	branch, ok := stmt.Branches[id]
	if !ok {
		branch = &Branch{Block: m[3], Label: m[4]}
		stmt.Branches[id] = branch
	}
	branch.ExecutedCount += taken
	return nil
}

func (a *Aggregator) statement(line int) *Statement {
	stmt, ok := a.current.Statements[line]
	if !ok {
		stmt = &Statement{Line: line, Branches: make(map[string]*Branch)}
		a.current.Statements[line] = stmt
	}
	return stmt
}

// parseLine converts a 1-based input line number to a 0-based one.
func parseLine(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: line number %q", ErrMalformedRecord, s)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: line number %d", ErrNegativeValue, n)
	}
	if n == 0 {
		return 0, fmt.Errorf("%w: line numbers start at 1", ErrMalformedRecord)
	}
	return n - 1, nil
}

func parseCount(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: count %q", ErrMalformedRecord, s)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: count %d", ErrNegativeValue, n)
	}
	return n, nil
}
