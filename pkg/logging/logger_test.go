/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: logger_test.go
Description: Tests for logger configuration, file output, retention and the custom formatter.
*/

package logging

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRejectsUnknownValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Format = "xml"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Level = "trace"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Colors = "sometimes"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.OutputDir = t.TempDir()
	cfg.MaxFiles = 0
	assert.Error(t, cfg.Validate())

	assert.NoError(t, DefaultConfig().Validate())
}

func TestJSONOutputCarriesSearchFields(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Format = LogFormatJSON
	cfg.Console = &buf

	l, err := NewLogger(cfg)
	require.NoError(t, err)
	l.LogAccepted("search-1", "vigenere", "lemon", "attack at dawn")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Key accepted", entry["msg"])
	assert.Equal(t, "lemon", entry["key"])
	assert.Equal(t, "vigenere", entry["cipher"])
	assert.Equal(t, "search-1", entry["search_id"])
}

func TestCandidateLoggedOnlyAtDebug(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Console = &buf

	l, err := NewLogger(cfg)
	require.NoError(t, err)
	l.LogCandidate("caesar", "3", 2, false)
	assert.Empty(t, buf.String())

	cfg.Level = LogLevelDebug
	l, err = NewLogger(cfg)
	require.NoError(t, err)
	l.LogCandidate("caesar", "3", 2, false)
	assert.Contains(t, buf.String(), "Candidate evaluated")
}

func TestSearchWithFailuresIsWarning(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Format = LogFormatJSON
	cfg.Console = &buf

	l, err := NewLogger(cfg)
	require.NoError(t, err)
	l.LogSearch("s", "vigenere", 676, 1, 2, time.Second)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warning", entry["level"])
	assert.EqualValues(t, 2, entry["failed"])
}

func TestFileOutputAndClose(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.OutputDir = dir
	cfg.Console = &buf

	l, err := NewLogger(cfg)
	require.NoError(t, err)
	require.NotEmpty(t, l.FilePath())
	assert.True(t, strings.HasPrefix(filepath.Base(l.FilePath()), "bletchley_"))

	l.GetLogger().Info("hello file")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(l.FilePath())
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello file")
	assert.Contains(t, buf.String(), "hello file")
}

func TestCleanupKeepsNewestFiles(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 5; i++ {
		name := fmt.Sprintf("bletchley_2024-01-0%d_00-00-00.000.log", i+1)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}

	lm := NewLogManager(dir, 2)
	require.NoError(t, lm.CleanupOldLogs())

	stats, err := lm.GetLogStats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalFiles)
	assert.EqualValues(t, 2, stats.TotalSize)

	_, err = os.Stat(filepath.Join(dir, "bletchley_2024-01-05_00-00-00.000.log"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "bletchley_2024-01-01_00-00-00.000.log"))
	assert.True(t, os.IsNotExist(err))
}

func TestCustomFormatter(t *testing.T) {
	f := &CustomFormatter{}
	entry := &logrus.Entry{
		Logger:  logrus.New(),
		Level:   logrus.InfoLevel,
		Message: "Key accepted",
		Data: logrus.Fields{
			"cipher":    "railfence",
			"key":       "3",
			"plaintext": "we are discovered",
		},
	}

	out, err := f.Format(entry)
	require.NoError(t, err)
	line := string(out)
	assert.Equal(t, `INFO  [RAILFENCE] Key accepted key=3 plaintext="we are discovered"`+"\n", line)

	f.Colors = true
	out, err = f.Format(entry)
	require.NoError(t, err)
	assert.Contains(t, string(out), "\033[")
}

func TestAutoColorsOffForBuffers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Console = &bytes.Buffer{}
	l, err := NewLogger(cfg)
	require.NoError(t, err)
	assert.False(t, l.useColors())

	cfg.Colors = ColorAlways
	assert.True(t, l.useColors())
}
