/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: report_test.go
Description: Tests for report writing and reading.
*/

package report

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Cipher    string `json:"cipher"`
	KeysTried int    `json:"keys_tried"`
}

func TestWriteAndReadSearchReport(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteSearchReport(dir, "caesar", sample{Cipher: "caesar", KeysTried: 25})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "caesar"), filepath.Dir(path))
	assert.True(t, strings.HasSuffix(path, "_caesar.json"))

	var body sample
	doc, err := ReadSearchReport(path, &body)
	require.NoError(t, err)
	assert.Equal(t, "caesar", doc.Kind)
	assert.Equal(t, Version, doc.Version)
	assert.False(t, doc.GeneratedAt.IsZero())
	assert.Equal(t, 25, body.KeysTried)
}

func TestWriteSearchReportValidatesArguments(t *testing.T) {
	_, err := WriteSearchReport("", "caesar", nil)
	assert.Error(t, err)

	_, err = WriteSearchReport(t.TempDir(), "", nil)
	assert.Error(t, err)
}

func TestReadSearchReportMissingFile(t *testing.T) {
	_, err := ReadSearchReport(filepath.Join(t.TempDir(), "missing.json"), nil)
	assert.Error(t, err)
}
