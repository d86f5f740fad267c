// Package exec wraps the host primitives the coverage engine shells out to:
// locating a tool on the search path and running it with positional arguments.
package exec

import (
	"bytes"
	"errors"
	"os/exec"
	"strings"
)

// ErrToolNotFound is returned by LookPath when a tool is not on the search path.
var ErrToolNotFound = errors.New("tool not found on search path")

// ExecutionResult holds the outcome of a command execution.
type ExecutionResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Success reports whether the command exited with status 0.
func (r *ExecutionResult) Success() bool {
	return r != nil && r.ExitCode == 0
}

// FirstLine returns the first line of stdout without its line terminator.
func (r *ExecutionResult) FirstLine() string {
	if r == nil {
		return ""
	}
	out := strings.ReplaceAll(r.Stdout, "\r\n", "\n")
	line, _, _ := strings.Cut(out, "\n")
	return line
}

// Executor runs external commands and locates them on the search path.
// Tests substitute a fake.
type Executor interface {
	Run(command string, args ...string) (*ExecutionResult, error)
	LookPath(name string) (string, error)
}

// CommandExecutor runs actual commands on the host system.
type CommandExecutor struct{}

// NewCommandExecutor creates a new CommandExecutor.
func NewCommandExecutor() *CommandExecutor {
	return &CommandExecutor{}
}

// Run executes the given command and returns its result. A non-zero exit
// status is reported through ExitCode, not as an error.
func (e *CommandExecutor) Run(command string, args ...string) (*ExecutionResult, error) {
	cmd := exec.Command(command, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, err
		}
	}

	return &ExecutionResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: cmd.ProcessState.ExitCode(),
	}, nil
}

// LookPath returns the absolute path of the named tool.
func (e *CommandExecutor) LookPath(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", errors.Join(ErrToolNotFound, err)
	}
	return path, nil
}
