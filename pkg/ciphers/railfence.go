/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: railfence.go
Description: Rail fence transposition. Characters (spaces included) are written in a
zig-zag over the rails and read off rail by rail.
*/

package ciphers

import "fmt"

// RailFence implements Transform for zig-zag transposition ciphers
type RailFence struct{}

func (RailFence) Kind() Kind   { return KindRailFence }
func (RailFence) Name() string { return "Rail fence" }

// Decrypt inverts the zig-zag over key.Number rails
func (RailFence) Decrypt(ciphertext string, key Key) (string, error) {
	if err := checkKind(KindRailFence, key); err != nil {
		return "", err
	}
	return RailFenceDecrypt(ciphertext, key.Number)
}

// Encrypt writes plaintext over key.Number rails
func (RailFence) Encrypt(plaintext string, key Key) (string, error) {
	if err := checkKind(KindRailFence, key); err != nil {
		return "", err
	}
	return RailFenceEncrypt(plaintext, key.Number)
}

// RailFenceEncrypt enciphers text over the given number of rails
func RailFenceEncrypt(text string, rails int) (string, error) {
	if rails < 2 {
		return "", fmt.Errorf("rail fence needs at least 2 rails, got %d", rails)
	}
	runes := []rune(text)
	if rails >= len(runes) {
		return text, nil
	}

	pattern := railPattern(len(runes), rails)
	rows := make([][]rune, rails)
	for i, r := range runes {
		rows[pattern[i]] = append(rows[pattern[i]], r)
	}

	out := make([]rune, 0, len(runes))
	for _, row := range rows {
		out = append(out, row...)
	}
	return string(out), nil
}

// RailFenceDecrypt inverts RailFenceEncrypt
func RailFenceDecrypt(text string, rails int) (string, error) {
	if rails < 2 {
		return "", fmt.Errorf("rail fence needs at least 2 rails, got %d", rails)
	}
	runes := []rune(text)
	if rails >= len(runes) {
		return text, nil
	}

	pattern := railPattern(len(runes), rails)
	counts := make([]int, rails)
	for _, rail := range pattern {
		counts[rail]++
	}

	// Slice the ciphertext into its rails
	rows := make([][]rune, rails)
	offset := 0
	for rail, n := range counts {
		rows[rail] = runes[offset : offset+n]
		offset += n
	}

	out := make([]rune, len(runes))
	next := make([]int, rails)
	for i, rail := range pattern {
		out[i] = rows[rail][next[rail]]
		next[rail]++
	}
	return string(out), nil
}

// railPattern returns the rail index visited by each position of the zig-zag
func railPattern(n, rails int) []int {
	pattern := make([]int, n)
	rail, step := 0, 1
	for i := 0; i < n; i++ {
		pattern[i] = rail
		if rail == 0 {
			step = 1
		} else if rail == rails-1 {
			step = -1
		}
		rail += step
	}
	return pattern
}
