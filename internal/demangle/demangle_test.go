package demangle

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjy-dev/bazel-lcov/internal/exec"
)

// fakeExecutor answers LookPath from a set of installed tools and Run from a
// per-tool table of mangled -> output, recording every invocation.
type fakeExecutor struct {
	installed map[string]string
	outputs   map[string]map[string]string
	exitCodes map[string]int
	calls     [][]string
	lookups   []string
}

func (f *fakeExecutor) LookPath(name string) (string, error) {
	f.lookups = append(f.lookups, name)
	if p, ok := f.installed[name]; ok {
		return p, nil
	}
	return "", exec.ErrToolNotFound
}

func (f *fakeExecutor) Run(command string, args ...string) (*exec.ExecutionResult, error) {
	f.calls = append(f.calls, append([]string{command}, args...))
	table, ok := f.outputs[command]
	if !ok {
		return nil, errors.New("exec: not found")
	}
	mangled := args[len(args)-1]
	out, ok := table[mangled]
	if !ok {
		out = mangled
	}
	return &exec.ExecutionResult{Stdout: out + "\n", ExitCode: f.exitCodes[command]}, nil
}

func TestDemangler_FirstMatchWins(t *testing.T) {
	var order []string
	d := New(
		Strategy{Name: "a", Demangle: func(string) (string, bool) { order = append(order, "a"); return "", false }},
		Strategy{Name: "b", Demangle: func(m string) (string, bool) { order = append(order, "b"); return "B(" + m + ")", true }},
		Strategy{Name: "c", Demangle: func(m string) (string, bool) { order = append(order, "c"); return "C(" + m + ")", true }},
	)

	assert.Equal(t, "B(x)", d.Demangle("x"))
	assert.Equal(t, []string{"a", "b"}, order)
	assert.Equal(t, []string{"a", "b", "c"}, d.Strategies())
}

func TestDemangler_FallsBackToInput(t *testing.T) {
	d := New(Strategy{Name: "none", Demangle: func(string) (string, bool) { return "", false }})
	assert.Equal(t, "abc", d.Demangle("abc"))
	assert.Equal(t, "abc", New().Demangle("abc"))
}

func TestDemangler_Cache(t *testing.T) {
	calls := 0
	d := New(Strategy{Name: "count", Demangle: func(m string) (string, bool) {
		calls++
		return m + "()", true
	}})
	cache, err := NewCache(8)
	require.NoError(t, err)
	d.WithCache(cache)

	assert.Equal(t, "f()", d.Demangle("f"))
	assert.Equal(t, "f()", d.Demangle("f"))
	assert.Equal(t, "g()", d.Demangle("g"))
	assert.Equal(t, 2, calls)
}

func TestNewCache_Disabled(t *testing.T) {
	cache, err := NewCache(0)
	require.NoError(t, err)
	assert.Nil(t, cache)
}

func TestProbe_NoTools(t *testing.T) {
	fake := &fakeExecutor{}
	d := Probe(fake, DefaultOptions())

	assert.Equal(t, []string{"jvm"}, d.Strategies())
	assert.Equal(t, []string{"rustfilt", "c++filt"}, fake.lookups)
	assert.Equal(t, "_ZN3foo3barEv", d.Demangle("_ZN3foo3barEv"))
	assert.Empty(t, fake.calls)
}

func TestProbe_ExternalToolsDisabled(t *testing.T) {
	fake := &fakeExecutor{installed: map[string]string{"c++filt": "/usr/bin/c++filt"}}
	d := Probe(fake, Options{ExternalTools: false})

	assert.Equal(t, []string{"jvm"}, d.Strategies())
	assert.Empty(t, fake.lookups)
}

func TestProbe_RustBeforeCxx(t *testing.T) {
	fake := &fakeExecutor{
		installed: map[string]string{
			"rustfilt": "/bin/rustfilt",
			"c++filt":  "/bin/c++filt",
		},
		outputs: map[string]map[string]string{
			"/bin/rustfilt": {
				"_ZN4core3fmt5write17h0123456789abcdefE": "core::fmt::write",
			},
			"/bin/c++filt": {
				"_ZN4core3fmt5write17h0123456789abcdefE": "core::fmt::write::h0123456789abcdef",
				"_ZN3foo3barEv":                          "foo::bar()",
			},
		},
	}
	d := Probe(fake, DefaultOptions())
	require.Equal(t, []string{"jvm", "rustfilt", "c++filt"}, d.Strategies())

	assert.Equal(t, "core::fmt::write", d.Demangle("_ZN4core3fmt5write17h0123456789abcdefE"))
	// rustfilt echoes the C++ name unchanged, so c++filt gets a turn.
	assert.Equal(t, "foo::bar()", d.Demangle("_ZN3foo3barEv"))

	require.Len(t, fake.calls, 3)
	assert.Equal(t, []string{"/bin/rustfilt", "_ZN4core3fmt5write17h0123456789abcdefE"}, fake.calls[0])
	assert.Equal(t, []string{"/bin/rustfilt", "_ZN3foo3barEv"}, fake.calls[1])
	assert.Equal(t, []string{"/bin/c++filt", "--no-strip-underscore", "_ZN3foo3barEv"}, fake.calls[2])
}

func TestProbe_JVMNeverReachesTools(t *testing.T) {
	fake := &fakeExecutor{
		installed: map[string]string{"c++filt": "/bin/c++filt"},
		outputs:   map[string]map[string]string{"/bin/c++filt": {}},
	}
	d := Probe(fake, DefaultOptions())

	assert.Equal(t, "int Foo::size()", d.Demangle("Foo::size ()I"))
	assert.Empty(t, fake.calls)
}

func TestProbe_CustomToolNames(t *testing.T) {
	fake := &fakeExecutor{installed: map[string]string{"llvm-cxxfilt": "/opt/llvm/bin/llvm-cxxfilt"}}
	d := Probe(fake, Options{Rustfilt: "my-rustfilt", Cxxfilt: "llvm-cxxfilt", ExternalTools: true})

	assert.Equal(t, []string{"jvm", "c++filt"}, d.Strategies())
	assert.Equal(t, []string{"my-rustfilt", "llvm-cxxfilt"}, fake.lookups)
}

func TestTool_Failures(t *testing.T) {
	t.Run("non-zero exit", func(t *testing.T) {
		fake := &fakeExecutor{
			outputs:   map[string]map[string]string{"/bin/tool": {"x": "y"}},
			exitCodes: map[string]int{"/bin/tool": 1},
		}
		_, ok := Tool(fake, "tool", "/bin/tool").Demangle("x")
		assert.False(t, ok)
	})

	t.Run("run error", func(t *testing.T) {
		fake := &fakeExecutor{}
		_, ok := Tool(fake, "tool", "/bin/missing").Demangle("x")
		assert.False(t, ok)
	})

	t.Run("output identical to input", func(t *testing.T) {
		fake := &fakeExecutor{outputs: map[string]map[string]string{"/bin/tool": {}}}
		_, ok := Tool(fake, "tool", "/bin/tool").Demangle("plain_c_function")
		assert.False(t, ok)
	})

	t.Run("empty output", func(t *testing.T) {
		fake := &fakeExecutor{outputs: map[string]map[string]string{"/bin/tool": {"x": ""}}}
		_, ok := Tool(fake, "tool", "/bin/tool").Demangle("x")
		assert.False(t, ok)
	})

	t.Run("arguments are not shared between calls", func(t *testing.T) {
		fake := &fakeExecutor{outputs: map[string]map[string]string{"/bin/tool": {"a": "A", "b": "B"}}}
		s := Tool(fake, "tool", "/bin/tool", "-n")
		_, _ = s.Demangle("a")
		_, _ = s.Demangle("b")
		assert.Equal(t, []string{"/bin/tool", "-n", "a"}, fake.calls[0])
		assert.Equal(t, []string{"/bin/tool", "-n", "b"}, fake.calls[1])
	})
}
