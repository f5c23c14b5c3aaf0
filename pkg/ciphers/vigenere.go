/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: vigenere.go
Description: Vigenère transform. The key is consumed cyclically over alphabetic characters
only; spaces, digits and punctuation stay in place and do not advance the key.
*/

package ciphers

// Vigenere implements Transform for repeating-key polyalphabetic ciphers
type Vigenere struct{}

func (Vigenere) Kind() Kind   { return KindVigenere }
func (Vigenere) Name() string { return "Vigenère" }

// Decrypt reverses the keyword shifts
func (Vigenere) Decrypt(ciphertext string, key Key) (string, error) {
	if err := checkKind(KindVigenere, key); err != nil {
		return "", err
	}
	return VigenereDecrypt(ciphertext, key.Text), nil
}

// Encrypt applies the keyword shifts
func (Vigenere) Encrypt(plaintext string, key Key) (string, error) {
	if err := checkKind(KindVigenere, key); err != nil {
		return "", err
	}
	return VigenereEncrypt(plaintext, key.Text), nil
}

// VigenereEncrypt encrypts text with a repeating keyword
func VigenereEncrypt(text, key string) string {
	return vigenere(text, key, 1)
}

// VigenereDecrypt decrypts text with a repeating keyword
func VigenereDecrypt(text, key string) string {
	return vigenere(text, key, -1)
}

func vigenere(text, key string, direction int) string {
	shifts := keyShifts(key)
	if len(shifts) == 0 {
		return text
	}
	out := []byte(text)
	j := 0
	for i, c := range out {
		if !isLetter(c) {
			continue
		}
		out[i] = shiftLetter(c, mod26(direction*shifts[j%len(shifts)]))
		j++
	}
	return string(out)
}

// keyShifts maps key letters to shift amounts, ignoring non-letters
func keyShifts(key string) []int {
	shifts := make([]int, 0, len(key))
	for i := 0; i < len(key); i++ {
		c := key[i]
		switch {
		case c >= 'a' && c <= 'z':
			shifts = append(shifts, int(c-'a'))
		case c >= 'A' && c <= 'Z':
			shifts = append(shifts, int(c-'A'))
		}
	}
	return shifts
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
