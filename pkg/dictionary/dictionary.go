/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: dictionary.go
Description: Dictionary source for the Bletchley search engine. Holds an ordered,
re-iterable word list for key generation together with a lookup set for classification,
so the list is scanned once at load time instead of once per candidate.
*/

package dictionary

import (
	"bufio"
	_ "embed"
	"strings"
)

//go:embed words/common.txt
var embeddedWords string

// Source is a finite, re-iterable set of words.
// Implementations must be safe for concurrent readers.
type Source interface {
	// Words returns the words in load order; callers must not modify the slice
	Words() []string

	// Contains reports whether the normalized word is present
	Contains(word string) bool

	// Len returns the number of distinct words
	Len() int
}

// WordSet is the default Source implementation
type WordSet struct {
	name  string
	words []string
	index map[string]struct{}
}

// NewWordSet builds a WordSet, dropping duplicates and blank entries.
// Lookups are case-insensitive; stored order follows the input.
func NewWordSet(name string, words []string) *WordSet {
	ws := &WordSet{
		name:  name,
		words: make([]string, 0, len(words)),
		index: make(map[string]struct{}, len(words)),
	}
	for _, w := range words {
		ws.add(w)
	}
	return ws
}

func (ws *WordSet) add(word string) {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return
	}
	if _, exists := ws.index[word]; exists {
		return
	}
	ws.index[word] = struct{}{}
	ws.words = append(ws.words, word)
}

// Name returns where the words came from
func (ws *WordSet) Name() string { return ws.name }

// Words returns the ordered word list
func (ws *WordSet) Words() []string { return ws.words }

// Contains reports whether word is in the set
func (ws *WordSet) Contains(word string) bool {
	_, ok := ws.index[strings.ToLower(word)]
	return ok
}

// Len returns the number of words
func (ws *WordSet) Len() int { return len(ws.words) }

// Default returns the embedded English word list
func Default() *WordSet {
	return NewWordSet("embedded", splitLines(embeddedWords))
}

func splitLines(s string) []string {
	var lines []string
	scanner := bufio.NewScanner(strings.NewReader(s))
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines
}
