/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: keyspace.go
Description: Key space enumeration for the Bletchley search engine. Produces the finite,
deterministic candidate key sequences searched for each cipher: Caesar shifts, rail
counts, and Vigenère keys drawn from a dictionary and/or every fixed-length lowercase string.
*/

package keyspace

import (
	"math"
	"strings"

	"github.com/kleascm/bletchley/pkg/ciphers"
	"github.com/kleascm/bletchley/pkg/dictionary"
	berrors "github.com/kleascm/bletchley/pkg/errors"
)

// Search bounds
const (
	CaesarMinShift = 1
	CaesarMaxShift = 25
	RailFenceMin   = 2
	RailFenceMax   = 199
)

// Vigenère mode flags
const (
	FlagWords   = 'w'
	FlagLetters = 'l'
)

const lowercase = "abcdefghijklmnopqrstuvwxyz"

// Caesar returns shifts 1..25 ascending
func Caesar() []int {
	return intRange(CaesarMinShift, CaesarMaxShift)
}

// RailFence returns rail counts 2..199 ascending
func RailFence() []int {
	return intRange(RailFenceMin, RailFenceMax)
}

func intRange(lo, hi int) []int {
	keys := make([]int, 0, hi-lo+1)
	for i := lo; i <= hi; i++ {
		keys = append(keys, i)
	}
	return keys
}

// Mode is a parsed Vigenère mode flag string
type Mode struct {
	Words   bool
	Letters bool
}

// ParseMode parses flags such as "w", "l" or "wl"
func ParseMode(flags string) (Mode, error) {
	var m Mode
	for _, f := range strings.ToLower(flags) {
		switch f {
		case FlagWords:
			m.Words = true
		case FlagLetters:
			m.Letters = true
		default:
			return Mode{}, berrors.NewConfigError("mode", flags, "unknown key mode flag "+string(f)).
				WithHint("use w for dictionary words, l for exhaustive letters, or both")
		}
	}
	if !m.Words && !m.Letters {
		return Mode{}, berrors.NewConfigError("mode", flags, "no key mode selected").
			WithHint("use w for dictionary words, l for exhaustive letters, or both")
	}
	return m, nil
}

// Vigenere materialises every candidate key for the given mode.
// Dictionary keys come first in dictionary order, then exhaustive keys in
// lexicographic order. Letter mode requires length > 0.
func Vigenere(flags string, length int, words dictionary.Source) ([]string, error) {
	mode, err := ParseMode(flags)
	if err != nil {
		return nil, err
	}
	if err := validate(mode, length, words); err != nil {
		return nil, err
	}

	var keys []string
	if mode.Words {
		for _, w := range words.Words() {
			if len(w) > 0 {
				keys = append(keys, w)
			}
		}
	}
	if mode.Letters {
		keys = appendLetterKeys(keys, length)
	}
	return keys, nil
}

// VigenereSize returns the exact key count for a mode without materialising it
func VigenereSize(flags string, length int, words dictionary.Source) (int, error) {
	mode, err := ParseMode(flags)
	if err != nil {
		return 0, err
	}
	if err := validate(mode, length, words); err != nil {
		return 0, err
	}

	size := 0
	if mode.Words {
		for _, w := range words.Words() {
			if len(w) > 0 {
				size++
			}
		}
	}
	if mode.Letters {
		n, ok := LetterKeyCount(length)
		if !ok || n > math.MaxInt-size {
			return 0, berrors.NewConfigError("length", length, "key space too large to count")
		}
		size += n
	}
	return size, nil
}

// LetterKeyCount returns 26^length and false on overflow
func LetterKeyCount(length int) (int, bool) {
	n := 1
	for i := 0; i < length; i++ {
		if n > math.MaxInt/26 {
			return 0, false
		}
		n *= 26
	}
	return n, true
}

func validate(mode Mode, length int, words dictionary.Source) error {
	if mode.Letters && length <= 0 {
		return berrors.NewConfigError("length", nil, "required for exhaustive letter mode").
			WithHint("pass a positive key length")
	}
	if mode.Words && words == nil {
		return berrors.NewConfigError("dictionary", nil, "required for dictionary word mode")
	}
	return nil
}

// appendLetterKeys appends every lowercase string of the given length,
// counting like an odometer: aa..a, aa..b, ..., zz..z
func appendLetterKeys(keys []string, length int) []string {
	if n, ok := LetterKeyCount(length); ok {
		if cap(keys)-len(keys) < n {
			grown := make([]string, len(keys), len(keys)+n)
			copy(grown, keys)
			keys = grown
		}
	}

	digits := make([]int, length)
	buf := make([]byte, length)
	for {
		for i, d := range digits {
			buf[i] = lowercase[d]
		}
		keys = append(keys, string(buf))

		i := length - 1
		for i >= 0 {
			digits[i]++
			if digits[i] < len(lowercase) {
				break
			}
			digits[i] = 0
			i--
		}
		if i < 0 {
			return keys
		}
	}
}

// Caesar and rail fence keys as typed cipher keys

// CaesarKeys returns Caesar() as cipher keys
func CaesarKeys() []ciphers.Key {
	return numberKeys(ciphers.KindCaesar, Caesar())
}

// RailFenceKeys returns RailFence() as cipher keys
func RailFenceKeys() []ciphers.Key {
	return numberKeys(ciphers.KindRailFence, RailFence())
}

// VigenereKeys returns Vigenere() as cipher keys
func VigenereKeys(flags string, length int, words dictionary.Source) ([]ciphers.Key, error) {
	texts, err := Vigenere(flags, length, words)
	if err != nil {
		return nil, err
	}
	keys := make([]ciphers.Key, len(texts))
	for i, t := range texts {
		keys[i] = ciphers.TextKey(ciphers.KindVigenere, t)
	}
	return keys, nil
}

// ForKind returns the fixed key space of a numeric cipher
func ForKind(kind ciphers.Kind) ([]ciphers.Key, error) {
	switch kind {
	case ciphers.KindCaesar:
		return CaesarKeys(), nil
	case ciphers.KindRailFence:
		return RailFenceKeys(), nil
	default:
		return nil, berrors.ErrNoEnumerator
	}
}

func numberKeys(kind ciphers.Kind, ns []int) []ciphers.Key {
	keys := make([]ciphers.Key, len(ns))
	for i, n := range ns {
		keys[i] = ciphers.NumberKey(kind, n)
	}
	return keys
}
