package logger

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"sync"
)

// LogFilePermissions is the default file permissions for log files (rw-r-----)
const LogFilePermissions = 0o640

// fileSink is a mutex-guarded buffered append-only log file.
// A batch run is short lived, so buffered bytes are flushed on Flush/Close
// rather than by a background ticker.
type fileSink struct {
	mu     sync.Mutex
	file   *os.File
	writer *bufio.Writer
}

func openFileSink(path string) (*fileSink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, LogFilePermissions) //nolint:gosec // path comes from user config
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	return &fileSink{file: f, writer: bufio.NewWriter(f)}, nil
}

func (s *fileSink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writer == nil {
		return 0, fmt.Errorf("writer is closed")
	}
	return s.writer.Write(p)
}

func (s *fileSink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writer == nil {
		return nil
	}
	return s.writer.Flush()
}

// Close is idempotent.
func (s *fileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writer == nil {
		return nil
	}

	var errs []error
	if err := s.writer.Flush(); err != nil {
		errs = append(errs, fmt.Errorf("failed to flush buffer: %w", err))
	}
	if err := s.file.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close file: %w", err))
	}
	s.writer = nil
	s.file = nil
	return errors.Join(errs...)
}
