/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: errors_test.go
Description: Tests for the error taxonomy and its wrapping behaviour.
*/

package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigErrorMessage(t *testing.T) {
	err := NewConfigError("length", nil, "required for exhaustive letter mode").WithHint("pass --length")
	assert.Equal(t, "config: length: required for exhaustive letter mode (hint: pass --length)", err.Error())

	withValue := NewConfigError("tolerance", 1.5, "must be within [0,1]")
	assert.Equal(t, "config: tolerance=1.5: must be within [0,1]", withValue.Error())
}

func TestIsConfigErrorThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("vigenere search: %w", NewConfigError("mode", "x", "unknown flag"))
	assert.True(t, IsConfigError(wrapped))
	assert.False(t, IsClassifierFailure(wrapped))
}

func TestClassifierFailureUnwraps(t *testing.T) {
	root := errors.New("dictionary unavailable")
	err := fmt.Errorf("caesar: %w", NewClassifierFailure("caesar", "3", root))

	assert.True(t, IsClassifierFailure(err))
	assert.ErrorIs(t, err, root)
	assert.Contains(t, err.Error(), `caesar key "3"`)
}

func TestUnitFailureUnwraps(t *testing.T) {
	root := errors.New("boom")
	err := &UnitFailure{Key: "lemon", Err: root}
	assert.ErrorIs(t, err, root)
	assert.Equal(t, `unit for key "lemon" failed: boom`, err.Error())
}
