// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config reads the notifier's flat "KEY = value" configuration
// file and resolves it into validated settings.
//
// File format: one pair per line, split on the first '='. Blank lines and
// lines starting with '#' are ignored. A key that appears more than once
// collects its values into an ordered list.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// IOError reports that the config file could not be opened or read.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("reading config %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// ParseError reports a line that is not a comment, not blank, and has no '='.
type ParseError struct {
	Path string
	Line int
	Text string
}

func (e *ParseError) Error() string {
	where := fmt.Sprintf("line %d", e.Line)
	if e.Path != "" {
		where = fmt.Sprintf("%s:%d", e.Path, e.Line)
	}
	return fmt.Sprintf("malformed config %s: missing '=' in %q", where, e.Text)
}

// Parse opens and parses the config file at path.
func Parse(path string) (Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return Map{}, &IOError{Path: path, Err: err}
	}
	defer f.Close()

	m, err := ParseReader(f)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Path = path
			return Map{}, pe
		}
		return Map{}, &IOError{Path: path, Err: err}
	}
	return m, nil
}

// ParseReader parses config text from r.
func ParseReader(r io.Reader) (Map, error) {
	var m Map
	br := bufio.NewReader(r)

	for lineNo := 1; ; lineNo++ {
		line, err := br.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return Map{}, err
		}
		if line == "" && errors.Is(err, io.EOF) {
			break
		}

		trimmed := strings.TrimSpace(line)
		if trimmed != "" && !strings.HasPrefix(trimmed, "#") {
			key, value, ok := strings.Cut(line, "=")
			if !ok {
				return Map{}, &ParseError{Line: lineNo, Text: strings.TrimRight(line, "\r\n")}
			}
			value = strings.TrimSuffix(value, "\n")
			m.add(strings.TrimSpace(key), strings.TrimSpace(value))
		}

		if errors.Is(err, io.EOF) {
			break
		}
	}
	return m, nil
}
