// Package logging builds the application logger. Logs go to a file as JSON
// and, formatted for people, to a status line the HUD shows. Nothing is
// written to the terminal directly while the viewer owns it.
package logging

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// New creates a logger at level. An empty file discards the JSON output.
// The returned closer releases the file.
func New(level, file string, status *StatusLine) (zerolog.Logger, io.Closer, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("log level: %w", err)
	}

	var (
		out    io.Writer = io.Discard
		closer io.Closer = nopCloser{}
	)
	if file != "" {
		f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
		}
		out, closer = f, f
	}

	writers := []io.Writer{out}
	if status != nil {
		writers = append(writers, &zerolog.FilteredLevelWriter{
			Writer: zerolog.LevelWriterAdapter{Writer: zerolog.ConsoleWriter{
				Out:          status,
				NoColor:      true,
				PartsExclude: []string{zerolog.TimestampFieldName},
			}},
			Level: zerolog.InfoLevel,
		})
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(lvl).
		With().
		Timestamp().
		Logger()
	return logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// StatusLine keeps the most recent log line for display.
type StatusLine struct {
	mu   sync.Mutex
	last string
	at   time.Time
	now  func() time.Time
}

// NewStatusLine creates an empty status line.
func NewStatusLine() *StatusLine {
	return &StatusLine{now: time.Now}
}

// Write stores the last non-empty line of p.
func (s *StatusLine) Write(p []byte) (int, error) {
	lines := bytes.Split(bytes.TrimRight(p, "\n"), []byte("\n"))
	line := strings.TrimSpace(string(lines[len(lines)-1]))
	if line == "" {
		return len(p), nil
	}

	s.mu.Lock()
	s.last = line
	s.at = s.now()
	s.mu.Unlock()
	return len(p), nil
}

// Last returns the last line if it is younger than maxAge. A zero maxAge
// never expires.
func (s *StatusLine) Last(maxAge time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if maxAge > 0 && s.now().Sub(s.at) > maxAge {
		return ""
	}
	return s.last
}
