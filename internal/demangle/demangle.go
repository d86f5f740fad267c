// Package demangle turns compiler-encoded symbol names from coverage reports
// into readable signatures. Decoders are tried in order and the first that
// recognizes a name wins; a name nobody recognizes is returned unchanged.
package demangle

import (
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/zjy-dev/bazel-lcov/internal/exec"
	"github.com/zjy-dev/bazel-lcov/internal/logger"
)

// Default tool names looked up on the search path.
const (
	DefaultRustfilt = "rustfilt"
	DefaultCxxfilt  = "c++filt"
)

// Func decodes a mangled name. ok is false when the name is not recognized.
type Func func(mangled string) (demangled string, ok bool)

// Strategy is a named decoder in the fallback chain.
type Strategy struct {
	Name     string
	Demangle Func
}

// Options selects the external tools a Demangler may use.
type Options struct {
	Rustfilt      string // tool name or path; empty means DefaultRustfilt
	Cxxfilt       string // tool name or path; empty means DefaultCxxfilt
	ExternalTools bool   // when false only the in-process decoders run
}

// DefaultOptions enables both external tools under their usual names.
func DefaultOptions() Options {
	return Options{Rustfilt: DefaultRustfilt, Cxxfilt: DefaultCxxfilt, ExternalTools: true}
}

// Demangler runs a fixed, ordered list of strategies.
type Demangler struct {
	strategies []Strategy
	cache      *lru.Cache[string, string]
}

// New creates a Demangler over the given strategies, evaluated in order.
func New(strategies ...Strategy) *Demangler {
	return &Demangler{strategies: strategies}
}

// WithCache memoizes results by mangled name. The cache may be shared
// between Demanglers; lru.Cache is safe for concurrent use.
func (d *Demangler) WithCache(cache *lru.Cache[string, string]) *Demangler {
	d.cache = cache
	return d
}

// Strategies returns the names of the configured strategies in order.
func (d *Demangler) Strategies() []string {
	names := make([]string, 0, len(d.strategies))
	for _, s := range d.strategies {
		names = append(names, s.Name)
	}
	return names
}

// Demangle returns the display name for mangled. It never fails.
func (d *Demangler) Demangle(mangled string) string {
	if d.cache != nil {
		if v, ok := d.cache.Get(mangled); ok {
			return v
		}
	}

	result := mangled
	for _, s := range d.strategies {
		if v, ok := s.Demangle(mangled); ok {
			result = v
			break
		}
	}

	if d.cache != nil {
		d.cache.Add(mangled, result)
	}
	return result
}

// Probe looks up the external tools once and returns a Demangler with the
// JVM decoder first, then rustfilt, then c++filt, skipping absent tools.
// rustfilt must precede c++filt: c++filt also decodes legacy Rust symbols,
// keeping the hash suffix.
func Probe(executor exec.Executor, opts Options) *Demangler {
	strategies := []Strategy{{Name: "jvm", Demangle: JVM}}
	if !opts.ExternalTools || executor == nil {
		return New(strategies...)
	}

	rustfilt := firstNonEmpty(opts.Rustfilt, DefaultRustfilt)
	if path, err := executor.LookPath(rustfilt); err == nil {
		logger.Debug("demangle: using %s at %s", rustfilt, path)
		strategies = append(strategies, Tool(executor, "rustfilt", path))
	} else {
		logger.Debug("demangle: %s unavailable: %v", rustfilt, err)
	}

	cxxfilt := firstNonEmpty(opts.Cxxfilt, DefaultCxxfilt)
	if path, err := executor.LookPath(cxxfilt); err == nil {
		logger.Debug("demangle: using %s at %s", cxxfilt, path)
		// Treat names as local symbols so a leading underscore is kept.
		strategies = append(strategies, Tool(executor, "c++filt", path, "--no-strip-underscore"))
	} else {
		logger.Debug("demangle: %s unavailable: %v", cxxfilt, err)
	}

	return New(strategies...)
}

// Tool wraps an external filter program that takes the mangled name as its
// last positional argument and prints the demangled form. Failure to run,
// a non-zero exit, empty output or output equal to the input all count as
// "not recognized".
func Tool(executor exec.Executor, name, path string, args ...string) Strategy {
	return Strategy{
		Name: name,
		Demangle: func(mangled string) (string, bool) {
			argv := make([]string, 0, len(args)+1)
			argv = append(argv, args...)
			argv = append(argv, mangled)

			res, err := executor.Run(path, argv...)
			if err != nil || !res.Success() {
				return "", false
			}
			out := strings.TrimSpace(res.FirstLine())
			if out == "" || out == mangled {
				return "", false
			}
			return out, true
		},
	}
}

// NewCache creates a demangle cache holding up to size entries, or nil when
// size is not positive.
func NewCache(size int) (*lru.Cache[string, string], error) {
	if size <= 0 {
		return nil, nil
	}
	return lru.New[string, string](size)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
