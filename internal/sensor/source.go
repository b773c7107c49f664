package sensor

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

type Kind int

const (
	KindCounter Kind = iota + 1
	KindDetector
)

type Reading struct {
	Kind  Kind
	Value int
}

var ErrMalformed = errors.New("malformed reading")

// Source yields readings until it returns io.EOF.
type Source interface {
	Next() (Reading, error)
}

// LineSource reads one reading per line:
//
//	counter 12873
//	detector
//
// Blank lines and lines starting with # are ignored.
type LineSource struct {
	scanner *bufio.Scanner
	closer  io.Closer
}

func NewLineSource(r io.Reader) *LineSource {
	ls := &LineSource{scanner: bufio.NewScanner(r)}
	if c, ok := r.(io.Closer); ok {
		ls.closer = c
	}
	return ls
}

// OpenPath opens a file or named pipe written by a pedometer bridge.
func OpenPath(path string) (*LineSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open step source: %w", err)
	}
	return NewLineSource(f), nil
}

func (ls *LineSource) Next() (Reading, error) {
	for ls.scanner.Scan() {
		line := strings.TrimSpace(ls.scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return ParseReading(line)
	}
	if err := ls.scanner.Err(); err != nil {
		return Reading{}, err
	}
	return Reading{}, io.EOF
}

func (ls *LineSource) Close() error {
	if ls.closer == nil {
		return nil
	}
	return ls.closer.Close()
}

// ParseReading parses a single reading line. A detector line may carry a
// value; only 1 counts as a step.
func ParseReading(line string) (Reading, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Reading{}, fmt.Errorf("empty line: %w", ErrMalformed)
	}
	switch strings.ToLower(fields[0]) {
	case "counter":
		if len(fields) != 2 {
			return Reading{}, fmt.Errorf("%q: %w", line, ErrMalformed)
		}
		v, err := strconv.ParseFloat(fields[1], 64)
		if err != nil || v < 0 {
			return Reading{}, fmt.Errorf("%q: %w", line, ErrMalformed)
		}
		return Reading{Kind: KindCounter, Value: int(v)}, nil
	case "detector":
		if len(fields) == 2 {
			v, err := strconv.ParseFloat(fields[1], 64)
			if err != nil || v != 1 {
				return Reading{}, fmt.Errorf("%q: %w", line, ErrMalformed)
			}
		} else if len(fields) > 2 {
			return Reading{}, fmt.Errorf("%q: %w", line, ErrMalformed)
		}
		return Reading{Kind: KindDetector, Value: 1}, nil
	}
	return Reading{}, fmt.Errorf("unknown reading %q: %w", fields[0], ErrMalformed)
}
