package coverage

import (
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/spf13/afero"
	"go.uber.org/multierr"

	"github.com/zjy-dev/bazel-lcov/internal/demangle"
	"github.com/zjy-dev/bazel-lcov/internal/exec"
	"github.com/zjy-dev/bazel-lcov/internal/lcov"
	"github.com/zjy-dev/bazel-lcov/internal/logger"
	"github.com/zjy-dev/bazel-lcov/internal/pathresolve"
)

// Parser turns LCOV text into a Report. A Parser may be reused; every call
// starts from an empty model and probes the demangling tools afresh.
type Parser struct {
	executor exec.Executor
	fs       afero.Fs
	opts     demangle.Options
	cache    *lru.Cache[string, string]
}

// NewParser creates a Parser. fs is used for SF path resolution and by
// ParseFile; nil means the host filesystem.
func NewParser(executor exec.Executor, fs afero.Fs, opts demangle.Options) *Parser {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Parser{executor: executor, fs: fs, opts: opts}
}

// WithCache shares a demangle cache across parses.
func (p *Parser) WithCache(cache *lru.Cache[string, string]) *Parser {
	p.cache = cache
	return p
}

// Parse is a convenience wrapper using the host tools and filesystem.
func Parse(text, baseFolder string) (*Report, error) {
	return NewParser(exec.NewCommandExecutor(), nil, demangle.DefaultOptions()).Parse(text, baseFolder)
}

// Parse builds the report for text, resolving relative SF values against
// baseFolder. On error no report is returned; the error lists every failing
// record (see multierr.Errors).
func (p *Parser) Parse(text, baseFolder string) (*Report, error) {
	blocks, err := lcov.Tokenize(text)
	if err != nil {
		return nil, err
	}
	return p.aggregate(blocks, baseFolder)
}

// ParseFile reads the tracefile at path from the Parser's filesystem.
func (p *Parser) ParseFile(path, baseFolder string) (*Report, error) {
	f, err := p.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open tracefile: %w", err)
	}
	defer f.Close()

	blocks, err := lcov.Read(f)
	if err != nil {
		return nil, err
	}
	return p.aggregate(blocks, baseFolder)
}

func (p *Parser) aggregate(blocks []lcov.Block, baseFolder string) (*Report, error) {
	agg := NewAggregator(baseFolder, pathresolve.New(p.fs), &lazyDemangler{probe: p.probe})

	var errs error
	for _, b := range blocks {
		errs = multierr.Append(errs, agg.AddBlock(b))
	}
	if errs != nil {
		return nil, errs
	}

	report := agg.Report()
	if logger.Enabled(logger.DEBUG) {
		stats := report.Stats()
		logger.Debug("coverage: %d blocks, %d records, %d files, functions %d/%d, lines %d/%d, branches %d/%d",
			agg.blocks, agg.records, stats.Files,
			stats.Declarations.Covered, stats.Declarations.Total,
			stats.Statements.Covered, stats.Statements.Total,
			stats.Branches.Covered, stats.Branches.Total)
	}
	return report, nil
}

func (p *Parser) probe() *demangle.Demangler {
	d := demangle.Probe(p.executor, p.opts)
	if p.cache != nil {
		d.WithCache(p.cache)
	}
	logger.Debug("coverage: demanglers %s", strings.Join(d.Strategies(), ", "))
	return d
}

// lazyDemangler defers the tool probe until the first declaration, so a
// report without functions never touches the search path.
type lazyDemangler struct {
	probe func() *demangle.Demangler
	d     *demangle.Demangler
}

func (l *lazyDemangler) Demangle(mangled string) string {
	if l.d == nil {
		l.d = l.probe()
	}
	return l.d.Demangle(mangled)
}
