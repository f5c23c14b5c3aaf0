/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: sink_test.go
Description: Tests for the result sinks under concurrent writers and for gob snapshots.
*/

package sink

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/kleascm/bletchley/pkg/core"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func result(i int) core.AcceptedResult {
	return core.AcceptedResult{
		ID:        fmt.Sprintf("id-%d", i),
		SearchID:  "search",
		Cipher:    "vigenere",
		Key:       fmt.Sprintf("key%d", i),
		Plaintext: "attack at dawn",
		FoundAt:   time.Unix(int64(i), 0).UTC(),
	}
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func writeConcurrently(s core.ResultSink, n int) {
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Record(result(i))
		}(i)
	}
	wg.Wait()
}

func TestMemorySinkConcurrentWriters(t *testing.T) {
	s := NewMemorySink()
	writeConcurrently(s, 500)

	assert.Equal(t, 500, s.Len())
	seen := map[string]bool{}
	for _, r := range s.Results() {
		seen[r.ID] = true
	}
	assert.Len(t, seen, 500)
}

func TestMemorySinkResultsIsCopy(t *testing.T) {
	s := NewMemorySink()
	s.Record(result(1))
	got := s.Results()
	got[0].Key = "changed"
	assert.Equal(t, "key1", s.Results()[0].Key)
}

func TestFileSinkConcurrentWriters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "results.jsonl")
	s, err := NewFileSink(path, quietLogger())
	require.NoError(t, err)

	writeConcurrently(s, 200)
	require.NoError(t, s.Close())
	assert.Zero(t, s.Errors())

	results, err := ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, results, 200)
}

func TestFileSinkAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.jsonl")
	for i := 0; i < 2; i++ {
		s, err := NewFileSink(path, quietLogger())
		require.NoError(t, err)
		s.Record(result(i))
		require.NoError(t, s.Close())
	}
	results, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "key0", results[0].Key)
	assert.Equal(t, "key1", results[1].Key)
}

func TestFileSinkRecordAfterCloseCountsError(t *testing.T) {
	s, err := NewFileSink(filepath.Join(t.TempDir(), "r.jsonl"), quietLogger())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	assert.NotPanics(t, func() { s.Record(result(1)) })
	assert.Equal(t, int64(1), s.Errors())
}

func TestMultiSink(t *testing.T) {
	a, b := NewMemorySink(), NewMemorySink()
	m := MultiSink{a, nil, b}
	m.Record(result(1))
	assert.Equal(t, 1, a.Len())
	assert.Equal(t, 1, b.Len())
}

func TestSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap", "results.gob")
	want := []core.AcceptedResult{result(1), result(2)}
	require.NoError(t, SaveSnapshot(path, want))

	got, err := LoadSnapshot(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadSnapshotMissingFile(t *testing.T) {
	_, err := LoadSnapshot(filepath.Join(t.TempDir(), "missing.gob"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
