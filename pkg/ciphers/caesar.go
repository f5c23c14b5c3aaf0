/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: caesar.go
Description: Caesar shift transform. Rotates ASCII letters by a fixed shift, preserving
case and leaving every other character (spaces included) in place.
*/

package ciphers

// Caesar implements Transform for single alphabet shift ciphers
type Caesar struct{}

func (Caesar) Kind() Kind   { return KindCaesar }
func (Caesar) Name() string { return "Caesar shift" }

// Decrypt rotates the ciphertext back by key.Number
func (Caesar) Decrypt(ciphertext string, key Key) (string, error) {
	if err := checkKind(KindCaesar, key); err != nil {
		return "", err
	}
	return CaesarDecrypt(ciphertext, key.Number), nil
}

// Encrypt rotates plaintext forward by key.Number
func (Caesar) Encrypt(plaintext string, key Key) (string, error) {
	if err := checkKind(KindCaesar, key); err != nil {
		return "", err
	}
	return CaesarEncrypt(plaintext, key.Number), nil
}

// CaesarEncrypt shifts every letter forward by shift positions
func CaesarEncrypt(text string, shift int) string {
	return rotate(text, shift)
}

// CaesarDecrypt shifts every letter back by shift positions
func CaesarDecrypt(text string, shift int) string {
	return rotate(text, -shift)
}

func rotate(text string, shift int) string {
	shift = mod26(shift)
	if shift == 0 {
		return text
	}
	out := []byte(text)
	for i, c := range out {
		out[i] = shiftLetter(c, shift)
	}
	return string(out)
}

// shiftLetter rotates a single ASCII letter, other bytes pass through
func shiftLetter(c byte, shift int) byte {
	switch {
	case c >= 'a' && c <= 'z':
		return 'a' + byte((int(c-'a')+shift)%26)
	case c >= 'A' && c <= 'Z':
		return 'A' + byte((int(c-'A')+shift)%26)
	default:
		return c
	}
}

func mod26(n int) int {
	n %= 26
	if n < 0 {
		n += 26
	}
	return n
}
