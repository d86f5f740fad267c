package coverage

import (
	"errors"
	"fmt"
)

// Record-level failures. Each is wrapped in a *RecordError.
var (
	// ErrDuplicatedSF indicates a second SF record inside one block.
	ErrDuplicatedSF = errors.New("duplicated SF entry")

	// ErrMissingFilename indicates a record that needs a preceding SF.
	ErrMissingFilename = errors.New("missing filename")

	// ErrUndeclaredFunction indicates FNDA for a name with no FN in the block.
	ErrUndeclaredFunction = errors.New("coverage data for undeclared function")

	// ErrUnknownStatement indicates an unrecognized record key.
	ErrUnknownStatement = errors.New("unknown LCOV statement")

	// ErrNegativeValue indicates a negative line number or count.
	ErrNegativeValue = errors.New("negative value")

	// ErrMalformedRecord indicates a value that does not match its key's grammar.
	ErrMalformedRecord = errors.New("malformed record")
)

// RecordError ties a failure to the input line that caused it.
type RecordError struct {
	Line  int // 1-based
	Key   string
	Value string
	Err   error
}

func (e *RecordError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d: %s:%s: %v", e.Line, e.Key, e.Value, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}
