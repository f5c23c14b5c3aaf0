/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: substitution.go
Description: Monoalphabetic substitution transform keyed by a 26 letter alphabet
permutation. Only the transform exists; there is no key space search for it.
*/

package ciphers

import (
	"fmt"
	"strings"
)

const alphabet = "abcdefghijklmnopqrstuvwxyz"

// Substitution implements Transform for keyed alphabet substitution
type Substitution struct{}

func (Substitution) Kind() Kind   { return KindSubstitution }
func (Substitution) Name() string { return "Substitution" }

// Decrypt maps each letter back through the key alphabet
func (Substitution) Decrypt(ciphertext string, key Key) (string, error) {
	if err := checkKind(KindSubstitution, key); err != nil {
		return "", err
	}
	return SubstitutionDecrypt(ciphertext, key.Text)
}

// Encrypt maps each letter through the key alphabet
func (Substitution) Encrypt(plaintext string, key Key) (string, error) {
	if err := checkKind(KindSubstitution, key); err != nil {
		return "", err
	}
	return SubstitutionEncrypt(plaintext, key.Text)
}

// SubstitutionEncrypt replaces plain letter i with key letter i
func SubstitutionEncrypt(text, key string) (string, error) {
	table, err := substitutionTable(key, false)
	if err != nil {
		return "", err
	}
	return substitute(text, table), nil
}

// SubstitutionDecrypt replaces key letter i with plain letter i
func SubstitutionDecrypt(text, key string) (string, error) {
	table, err := substitutionTable(key, true)
	if err != nil {
		return "", err
	}
	return substitute(text, table), nil
}

func substitutionTable(key string, inverse bool) ([26]byte, error) {
	var table [26]byte
	key = strings.ToLower(key)
	if len(key) != 26 {
		return table, fmt.Errorf("substitution key must have 26 letters, got %d", len(key))
	}
	var seen [26]bool
	for i := 0; i < 26; i++ {
		c := key[i]
		if c < 'a' || c > 'z' {
			return table, fmt.Errorf("substitution key contains non-letter %q", c)
		}
		if seen[c-'a'] {
			return table, fmt.Errorf("substitution key repeats letter %q", c)
		}
		seen[c-'a'] = true
		if inverse {
			table[c-'a'] = alphabet[i]
		} else {
			table[i] = c
		}
	}
	return table, nil
}

func substitute(text string, table [26]byte) string {
	out := []byte(text)
	for i, c := range out {
		switch {
		case c >= 'a' && c <= 'z':
			out[i] = table[c-'a']
		case c >= 'A' && c <= 'Z':
			out[i] = table[c-'A'] - 'a' + 'A'
		}
	}
	return string(out)
}
