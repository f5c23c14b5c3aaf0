/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: sink.go
Description: Result sinks for accepted search results. Every sink is safe for concurrent
writers and never reports failure to the caller: the in-memory sink appends under a
mutex, the file sink appends JSON lines and logs write errors.
*/

package sink

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/kleascm/bletchley/pkg/core"
	"github.com/sirupsen/logrus"
)

// MemorySink keeps accepted results in memory
type MemorySink struct {
	mu      sync.Mutex
	results []core.AcceptedResult
}

// NewMemorySink creates an empty MemorySink
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Record appends a result
func (s *MemorySink) Record(result core.AcceptedResult) {
	s.mu.Lock()
	s.results = append(s.results, result)
	s.mu.Unlock()
}

// Results returns a copy of the recorded results in arrival order
func (s *MemorySink) Results() []core.AcceptedResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.AcceptedResult, len(s.results))
	copy(out, s.results)
	return out
}

// Len returns the number of recorded results
func (s *MemorySink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.results)
}

// FileSink appends results to a file as one JSON object per line
type FileSink struct {
	path   string
	logger *logrus.Logger

	mu     sync.Mutex
	file   *os.File
	errors int64
}

// NewFileSink opens (or creates) path for appending
func NewFileSink(path string, logger *logrus.Logger) (*FileSink, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create results directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open results file: %w", err)
	}
	return &FileSink{path: path, logger: logger, file: file}, nil
}

// Record writes a single line; the line is written with one call under the lock
func (s *FileSink) Record(result core.AcceptedResult) {
	line, err := json.Marshal(result)
	if err != nil {
		s.fail(result, err)
		return
	}
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		s.fail(result, os.ErrClosed)
		return
	}
	if _, err := s.file.Write(line); err != nil {
		s.fail(result, err)
	}
}

func (s *FileSink) fail(result core.AcceptedResult, err error) {
	atomic.AddInt64(&s.errors, 1)
	s.logger.WithFields(logrus.Fields{
		"path": s.path,
		"key":  result.Key,
	}).Errorf("Failed to record result: %v", err)
}

// Errors returns how many records could not be written
func (s *FileSink) Errors() int64 {
	return atomic.LoadInt64(&s.errors)
}

// Path returns the results file path
func (s *FileSink) Path() string { return s.path }

// Close closes the underlying file
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

// ReadFile loads every result from a JSON lines file written by FileSink
func ReadFile(path string) ([]core.AcceptedResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open results file: %w", err)
	}
	defer file.Close()

	var results []core.AcceptedResult
	decoder := json.NewDecoder(file)
	for decoder.More() {
		var r core.AcceptedResult
		if err := decoder.Decode(&r); err != nil {
			return results, fmt.Errorf("failed to decode result %d: %w", len(results)+1, err)
		}
		results = append(results, r)
	}
	return results, nil
}

// MultiSink fans every record out to several sinks
type MultiSink []core.ResultSink

// Record forwards result to every sink
func (m MultiSink) Record(result core.AcceptedResult) {
	for _, s := range m {
		if s != nil {
			s.Record(result)
		}
	}
}
