/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: keyspace_test.go
Description: Tests for key space enumeration: bounds, ordering, exact exhaustive sizes
and configuration errors.
*/

package keyspace

import (
	"testing"

	"github.com/kleascm/bletchley/pkg/ciphers"
	"github.com/kleascm/bletchley/pkg/dictionary"
	berrors "github.com/kleascm/bletchley/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaesarRange(t *testing.T) {
	keys := Caesar()
	require.Len(t, keys, 25)
	assert.Equal(t, 1, keys[0])
	assert.Equal(t, 25, keys[24])
	for i := 1; i < len(keys); i++ {
		assert.Less(t, keys[i-1], keys[i])
	}
}

func TestRailFenceRange(t *testing.T) {
	keys := RailFence()
	require.Len(t, keys, 198)
	assert.Equal(t, 2, keys[0])
	assert.Equal(t, 199, keys[len(keys)-1])
}

func TestVigenereWordMode(t *testing.T) {
	words := dictionary.NewWordSet("test", []string{"lemon", "", "key"})
	keys, err := Vigenere("w", 0, words)
	require.NoError(t, err)
	assert.Equal(t, []string{"lemon", "key"}, keys)
}

func TestVigenereLetterModeExactSize(t *testing.T) {
	for length, want := range map[int]int{1: 26, 2: 676, 3: 17576} {
		keys, err := Vigenere("l", length, nil)
		require.NoError(t, err)
		assert.Len(t, keys, want)

		seen := make(map[string]struct{}, len(keys))
		for _, k := range keys {
			assert.Len(t, k, length)
			seen[k] = struct{}{}
		}
		assert.Len(t, seen, want, "keys must be distinct")

		size, err := VigenereSize("l", length, nil)
		require.NoError(t, err)
		assert.Equal(t, want, size)
	}
}

func TestVigenereLetterModeOrder(t *testing.T) {
	keys, err := Vigenere("l", 2, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"aa", "ab", "ac"}, keys[:3])
	assert.Equal(t, "az", keys[25])
	assert.Equal(t, "ba", keys[26])
	assert.Equal(t, "zz", keys[len(keys)-1])
}

func TestVigenereCombinedMode(t *testing.T) {
	words := dictionary.NewWordSet("test", []string{"sun", "moon"})
	keys, err := Vigenere("wl", 1, words)
	require.NoError(t, err)
	require.Len(t, keys, 28)
	assert.Equal(t, []string{"sun", "moon", "a"}, keys[:3])

	size, err := VigenereSize("lw", 1, words)
	require.NoError(t, err)
	assert.Equal(t, 28, size)
}

func TestVigenereConfigErrors(t *testing.T) {
	_, err := Vigenere("l", 0, nil)
	assert.True(t, berrors.IsConfigError(err))

	_, err = Vigenere("", 3, nil)
	assert.True(t, berrors.IsConfigError(err))

	_, err = Vigenere("wx", 3, dictionary.Default())
	assert.True(t, berrors.IsConfigError(err))

	_, err = Vigenere("w", 0, nil)
	assert.True(t, berrors.IsConfigError(err))
}

func TestVigenereSizeOverflow(t *testing.T) {
	_, err := VigenereSize("l", 20, nil)
	assert.True(t, berrors.IsConfigError(err))
}

func TestForKind(t *testing.T) {
	keys, err := ForKind(ciphers.KindCaesar)
	require.NoError(t, err)
	assert.Equal(t, ciphers.NumberKey(ciphers.KindCaesar, 1), keys[0])

	keys, err = ForKind(ciphers.KindRailFence)
	require.NoError(t, err)
	assert.Equal(t, 199, keys[len(keys)-1].Number)

	_, err = ForKind(ciphers.KindSubstitution)
	assert.ErrorIs(t, err, berrors.ErrNoEnumerator)
}
