/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: ciphers.go
Description: Cipher transform contract for the Bletchley search engine. Defines cipher
kinds, the polymorphic key type and the Transform interface every cipher implements,
plus a registry used by the engine to look transforms up by kind.
*/

package ciphers

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies a cipher family
type Kind string

const (
	KindCaesar       Kind = "caesar"
	KindVigenere     Kind = "vigenere"
	KindRailFence    Kind = "railfence"
	KindSubstitution Kind = "substitution"
)

// Kinds lists every known cipher kind in display order
var Kinds = []Kind{KindCaesar, KindVigenere, KindRailFence, KindSubstitution}

// ParseKind converts user input into a Kind
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "caesar", "shift":
		return KindCaesar, nil
	case "vigenere", "vigenère":
		return KindVigenere, nil
	case "railfence", "rail-fence", "rail_fence", "rail":
		return KindRailFence, nil
	case "substitution", "sub":
		return KindSubstitution, nil
	default:
		return "", fmt.Errorf("unknown cipher kind: %q", s)
	}
}

// Key is a candidate key. Numeric ciphers (Caesar shift, rail count) use Number,
// keyword ciphers (Vigenère, substitution alphabet) use Text.
type Key struct {
	Kind   Kind   `json:"kind"`
	Number int    `json:"number,omitempty"`
	Text   string `json:"text,omitempty"`
}

// NumberKey builds a numeric key
func NumberKey(kind Kind, n int) Key {
	return Key{Kind: kind, Number: n}
}

// TextKey builds a keyword key
func TextKey(kind Kind, text string) Key {
	return Key{Kind: kind, Text: text}
}

// String renders the active part of the key
func (k Key) String() string {
	switch k.Kind {
	case KindCaesar, KindRailFence:
		return strconv.Itoa(k.Number)
	default:
		return k.Text
	}
}

// Transform decrypts ciphertext under a key.
// Implementations must be pure and safe for concurrent use.
type Transform interface {
	// Kind returns the cipher kind this transform handles
	Kind() Kind

	// Name returns a human readable name
	Name() string

	// Decrypt applies the key to the ciphertext and returns the candidate plaintext
	Decrypt(ciphertext string, key Key) (string, error)

	// Encrypt applies the key to plaintext, the inverse of Decrypt
	Encrypt(plaintext string, key Key) (string, error)
}

// Lookup returns the transform for a cipher kind
func Lookup(kind Kind) (Transform, error) {
	switch kind {
	case KindCaesar:
		return Caesar{}, nil
	case KindVigenere:
		return Vigenere{}, nil
	case KindRailFence:
		return RailFence{}, nil
	case KindSubstitution:
		return Substitution{}, nil
	default:
		return nil, fmt.Errorf("no transform for cipher kind %q", kind)
	}
}

// checkKind verifies a key was built for the expected cipher
func checkKind(want Kind, key Key) error {
	if key.Kind != "" && key.Kind != want {
		return fmt.Errorf("%s transform given %s key", want, key.Kind)
	}
	return nil
}
