// Package input expands CLI flag values given as - (stdin) or @file.
package input

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrStdinReused is returned when more than one value asks for stdin
var ErrStdinReused = errors.New("stdin can only be read once")

// Expander expands flag values against one stdin
type Expander struct {
	Stdin io.Reader

	stdinUsed bool
}

// New returns an expander reading os.Stdin
func New() *Expander {
	return &Expander{Stdin: os.Stdin}
}

// Lines expands each value: "-" reads non-empty lines from stdin, "@path"
// reads them from a file, anything else is kept as-is.
func (e *Expander) Lines(values []string) ([]string, error) {
	var result []string
	for _, v := range values {
		switch {
		case v == "-":
			if e.stdinUsed {
				return nil, ErrStdinReused
			}
			e.stdinUsed = true
			lines, err := ReadLines(e.Stdin)
			if err != nil {
				return nil, fmt.Errorf("read stdin: %w", err)
			}
			result = append(result, lines...)
		case strings.HasPrefix(v, "@"):
			path := strings.TrimPrefix(v, "@")
			file, err := os.Open(path)
			if err != nil {
				return nil, err
			}
			lines, err := ReadLines(file)
			file.Close()
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", path, err)
			}
			result = append(result, lines...)
		default:
			result = append(result, v)
		}
	}
	return result, nil
}

// Text expands a single value, joining expanded lines with newlines
func (e *Expander) Text(value string) (string, error) {
	if value != "-" && !strings.HasPrefix(value, "@") {
		return value, nil
	}
	lines, err := e.Lines([]string{value})
	if err != nil {
		return "", err
	}
	return strings.Join(lines, "\n"), nil
}

// ReadLines reads trimmed, non-empty lines from r
func ReadLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}
