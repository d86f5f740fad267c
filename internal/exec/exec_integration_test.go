//go:build integration

package exec

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCommandExecutor_Integration_Cxxfilt runs the host c++filt when present.
func TestCommandExecutor_Integration_Cxxfilt(t *testing.T) {
	executor := NewCommandExecutor()

	path, err := executor.LookPath("c++filt")
	if err != nil {
		t.Skipf("Skipping test: c++filt not found in PATH: %v", err)
	}
	t.Logf("c++filt path: %s", path)

	result, err := executor.Run(path, "--no-strip-underscore", "_ZN3foo3barEv")
	require.NoError(t, err)
	assert.Equal(t, 0, result.ExitCode)
	assert.Equal(t, "foo::bar()", result.FirstLine())
}

// TestCommandExecutor_Integration_Rustfilt runs the host rustfilt when present.
func TestCommandExecutor_Integration_Rustfilt(t *testing.T) {
	executor := NewCommandExecutor()

	path, err := executor.LookPath("rustfilt")
	if err != nil {
		t.Skipf("Skipping test: rustfilt not found in PATH: %v", err)
	}

	result, err := executor.Run(path, "_ZN4core3fmt5write17h0123456789abcdefE")
	require.NoError(t, err)
	assert.Equal(t, 0, result.ExitCode)
	assert.Equal(t, "core::fmt::write", result.FirstLine())
}

// TestCommandExecutor_Integration_LookPathScript locates an executable placed on PATH.
func TestCommandExecutor_Integration_LookPathScript(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "fakefilt")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho \"demangled:$1\"\n"), 0755))
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))

	executor := NewCommandExecutor()
	path, err := executor.LookPath("fakefilt")
	require.NoError(t, err)
	assert.Equal(t, script, path)

	result, err := executor.Run(path, "sym")
	require.NoError(t, err)
	assert.Equal(t, "demangled:sym", result.FirstLine())
}
