/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: dictionary_test.go
Description: Tests for the word set and the dictionary loaders.
*/

package dictionary

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWordSetDedupAndOrder(t *testing.T) {
	ws := NewWordSet("test", []string{"Beta", "alpha", "", "  ", "beta", "gamma"})
	assert.Equal(t, []string{"beta", "alpha", "gamma"}, ws.Words())
	assert.Equal(t, 3, ws.Len())
	assert.True(t, ws.Contains("ALPHA"))
	assert.False(t, ws.Contains("delta"))
}

func TestWordSetIsReiterable(t *testing.T) {
	ws := NewWordSet("test", []string{"one", "two"})
	first := append([]string(nil), ws.Words()...)
	second := append([]string(nil), ws.Words()...)
	assert.Equal(t, first, second)
}

func TestDefaultDictionary(t *testing.T) {
	ws := Default()
	assert.Greater(t, ws.Len(), 400)
	for _, w := range strings.Fields("the quick brown fox jumps over the lazy dog attack at dawn") {
		assert.True(t, ws.Contains(w), w)
	}
}

func TestLoadEmptyLocationUsesEmbedded(t *testing.T) {
	ws, err := Load(context.Background(), LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, "embedded", ws.Name())
}

func TestLoadLocalFormats(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"words.txt":  "apple\nbanana cherry\n",
		"words.csv":  "apple,10\nbanana,5\ncherry,1\n",
		"words.json": `["apple","banana","cherry"]`,
		"freq.json":  `{"apple":3,"banana":2,"cherry":1}`,
		"words.html": `<html><body><ul><li>apple</li><li>banana</li><li>cherry</li></ul></body></html>`,
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		ws, err := Load(context.Background(), LoadOptions{Location: path, Format: FormatAuto})
		require.NoError(t, err, name)

		words := append([]string(nil), ws.Words()...)
		sort.Strings(words)
		assert.Equal(t, []string{"apple", "banana", "cherry"}, words, name)
	}
}

func TestParseJSONObjectKeepsFileOrder(t *testing.T) {
	const data = `{"hotel":8,"alpha":1,"golf":7,"bravo":2,"foxtrot":6,"charlie":3,"echo":5,"delta":4}`
	want := []string{"hotel", "alpha", "golf", "bravo", "foxtrot", "charlie", "echo", "delta"}

	for i := 0; i < 50; i++ {
		words, err := Parse(strings.NewReader(data), FormatJSON, "")
		require.NoError(t, err)
		require.Equal(t, want, words, "parse %d", i)
	}

	_, err := Parse(strings.NewReader(`{"alpha":1,`), FormatJSON, "")
	assert.Error(t, err)
}

func TestLoadHTMLWithSelector(t *testing.T) {
	html := `<table><tr><td class="w">river</td><td>12</td></tr><tr><td class="w">stone</td><td>9</td></tr></table>`
	words, err := Parse(strings.NewReader(html), FormatHTML, "td.w")
	require.NoError(t, err)
	assert.Equal(t, []string{"river", "stone"}, words)
}

func TestLoadFromURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<ol><li>north</li><li>south</li></ol>`))
	}))
	defer server.Close()

	ws, err := Load(context.Background(), LoadOptions{Location: server.URL})
	require.NoError(t, err)
	assert.Equal(t, []string{"north", "south"}, ws.Words())
}

func TestLoadFromURLBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := Load(context.Background(), LoadOptions{Location: server.URL})
	assert.Error(t, err)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(context.Background(), LoadOptions{Location: "/does/not/exist.txt"})
	assert.Error(t, err)

	empty := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(empty, nil, 0644))
	_, err = Load(context.Background(), LoadOptions{Location: empty})
	assert.Error(t, err)

	_, err = Parse(strings.NewReader("x"), "yaml", "")
	assert.Error(t, err)
}
