// Package lcov splits LCOV tracefile text into end_of_record-delimited blocks
// of KEY:VALUE records. It knows nothing about what the keys mean.
package lcov

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// EndOfRecord is the line that terminates a block.
const EndOfRecord = "end_of_record"

// ErrInvalidSyntax marks a non-blank line without a ':' separator.
var ErrInvalidSyntax = errors.New("invalid syntax")

// Record is a single KEY:VALUE line. Err is set instead of Key/Value when the
// line could not be split; the remaining records are still produced.
type Record struct {
	Line  int // 1-based line number in the input
	Key   string
	Value string
	Err   error
}

// String returns the record as it appeared in the input.
func (r Record) String() string {
	if r.Err != nil && r.Key == "" {
		return r.Value
	}
	return r.Key + ":" + r.Value
}

// Block is the run of records between two end_of_record lines.
type Block struct {
	Records []Record
}

// Tokenize splits text into blocks. \r\n and \n line endings are equivalent.
func Tokenize(text string) ([]Block, error) {
	return Read(strings.NewReader(text))
}

// Read splits the tracefile read from r into blocks. A trailing block without
// a closing end_of_record is returned like any other. The only error is an
// I/O error from r; per-line problems are reported on Record.Err.
func Read(r io.Reader) ([]Block, error) {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	var (
		blocks  []Block
		current Block
		lineNo  int
	)

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if line == EndOfRecord {
			blocks = append(blocks, current)
			current = Block{}
			continue
		}
		current.Records = append(current.Records, parseRecord(lineNo, line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tracefile: %w", err)
	}

	if len(current.Records) > 0 {
		blocks = append(blocks, current)
	}
	return blocks, nil
}

func parseRecord(lineNo int, line string) Record {
	key, value, ok := strings.Cut(line, ":")
	if !ok {
		return Record{
			Line:  lineNo,
			Value: line,
			Err:   fmt.Errorf("%w: %q", ErrInvalidSyntax, line),
		}
	}
	return Record{Line: lineNo, Key: key, Value: value}
}
