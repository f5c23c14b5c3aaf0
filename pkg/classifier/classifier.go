/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: classifier.go
Description: Plaintext classifier for the Bletchley search engine. Decides whether a
candidate decryption reads as natural language by measuring the share of whitespace
separated tokens that are dictionary words against a caller supplied tolerance.
*/

package classifier

import (
	"errors"
	"strings"
	"unicode"

	"github.com/kleascm/bletchley/pkg/dictionary"
	"golang.org/x/text/cases"
)

// Classifier scores candidate plaintexts.
// Implementations must be deterministic and safe for concurrent use.
type Classifier interface {
	// IsRealWord reports whether a single token is a real word
	IsRealWord(token string) (bool, error)

	// IsLikelyLanguage reports whether text is more likely language than noise.
	// Raising tolerance never turns a rejected text into an accepted one.
	IsLikelyLanguage(text string, tolerance float64) (bool, error)
}

// ErrNoDictionary is returned when the classifier has no word source
var ErrNoDictionary = errors.New("classifier has no dictionary")

// DictionaryClassifier classifies text by dictionary lookups
type DictionaryClassifier struct {
	words dictionary.Source
}

// NewDictionaryClassifier creates a classifier backed by words
func NewDictionaryClassifier(words dictionary.Source) *DictionaryClassifier {
	return &DictionaryClassifier{words: words}
}

// IsRealWord normalizes the token and looks it up
func (c *DictionaryClassifier) IsRealWord(token string) (bool, error) {
	if c.words == nil {
		return false, ErrNoDictionary
	}
	word := Normalize(token)
	if word == "" {
		return false, nil
	}
	return c.words.Contains(word), nil
}

// IsLikelyLanguage accepts text when realTokens/tokens >= tolerance
func (c *DictionaryClassifier) IsLikelyLanguage(text string, tolerance float64) (bool, error) {
	ratio, err := c.Ratio(text)
	if err != nil {
		return false, err
	}
	if ratio < 0 {
		return false, nil
	}
	return ratio >= tolerance, nil
}

// Ratio returns the share of real-word tokens in text, or -1 for text without tokens
func (c *DictionaryClassifier) Ratio(text string) (float64, error) {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		if c.words == nil {
			return 0, ErrNoDictionary
		}
		return -1, nil
	}

	realCount := 0
	for _, tok := range tokens {
		ok, err := c.IsRealWord(tok)
		if err != nil {
			return 0, err
		}
		if ok {
			realCount++
		}
	}
	return float64(realCount) / float64(len(tokens)), nil
}

// Tokenize splits text on whitespace; contiguous text is one token
func Tokenize(text string) []string {
	return strings.Fields(text)
}

// Normalize case-folds a token and trims surrounding non-letters
func Normalize(token string) string {
	// Casers carry state, so each call gets its own
	folded := cases.Fold().String(token)
	return strings.TrimFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}
