package results

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// LogSink appends lines to a text file. It never truncates existing content.
type LogSink struct {
	path string
	file *os.File
}

// OpenLog opens path for appending, creating it and its directory when absent.
func OpenLog(path string) (*LogSink, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create results dir: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open results log: %w", err)
	}
	return &LogSink{path: path, file: f}, nil
}

func (s *LogSink) Path() string { return s.path }

func (s *LogSink) Start(_ context.Context, runID string, at time.Time) error {
	return s.writeLine(RunMarker(runID, at))
}

func (s *LogSink) Append(_ context.Context, p Posting) error {
	return s.writeLine(p.Line())
}

func (s *LogSink) writeLine(line string) error {
	if s.file == nil {
		return fmt.Errorf("results log %s is closed", s.path)
	}
	if _, err := fmt.Fprintln(s.file, line); err != nil {
		return fmt.Errorf("write results log: %w", err)
	}
	return nil
}

func (s *LogSink) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}
