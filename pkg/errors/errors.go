/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: errors.go
Description: Error taxonomy for the Bletchley search engine. Separates configuration
mistakes, classifier faults and isolated per-key failures so that callers can decide
whether a search result is still trustworthy.
*/

// Package errors provides domain-specific error types for bletchley.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	// ErrNoResult marks an exhausted search without a confident match.
	// Engine searches report this through their found flag, this value exists
	// for callers that want to surface the outcome as an error (exit codes, API).
	ErrNoResult = errors.New("no confident plaintext found")

	// ErrUnsupported is returned for cipher kinds without a search implementation.
	ErrUnsupported = errors.New("cipher search not supported")

	// ErrNoEnumerator is returned when a key space is requested for a cipher with none.
	ErrNoEnumerator = errors.New("no key space enumerator for cipher")
)

// ConfigError represents a missing or invalid configuration value
type ConfigError struct {
	Field   string      // parameter name
	Value   interface{} // the invalid value (nil if missing)
	Message string      // human-readable explanation
	Hint    string      // suggestion for the user (optional)
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("config: %s", e.Field)
	if e.Value != nil {
		msg += fmt.Sprintf("=%v", e.Value)
	}
	msg += ": " + e.Message
	if e.Hint != "" {
		msg += " (hint: " + e.Hint + ")"
	}
	return msg
}

// ClassifierFailure wraps a fault raised by the plaintext classifier.
// A sequential scan that hits one aborts, since its best guess can no longer be trusted.
type ClassifierFailure struct {
	Cipher string // cipher kind being searched
	Key    string // key whose candidate was being scored
	Err    error  // underlying error
}

func (e *ClassifierFailure) Error() string {
	return fmt.Sprintf("classifier failed on %s key %q: %v", e.Cipher, e.Key, e.Err)
}

func (e *ClassifierFailure) Unwrap() error { return e.Err }

// UnitFailure records a single failed unit of a concurrent search
type UnitFailure struct {
	Key string
	Err error
}

func (e *UnitFailure) Error() string {
	return fmt.Sprintf("unit for key %q failed: %v", e.Key, e.Err)
}

func (e *UnitFailure) Unwrap() error { return e.Err }

// NewConfigError creates a ConfigError.
func NewConfigError(field string, value interface{}, message string) *ConfigError {
	return &ConfigError{Field: field, Value: value, Message: message}
}

// WithHint returns a copy of the error carrying a hint.
func (e *ConfigError) WithHint(hint string) *ConfigError {
	c := *e
	c.Hint = hint
	return &c
}

// NewClassifierFailure creates a ClassifierFailure.
func NewClassifierFailure(cipher, key string, err error) *ClassifierFailure {
	return &ClassifierFailure{Cipher: cipher, Key: key, Err: err}
}

// IsConfigError reports whether err is (or wraps) a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// IsClassifierFailure reports whether err is (or wraps) a ClassifierFailure.
func IsClassifierFailure(err error) bool {
	var cf *ClassifierFailure
	return errors.As(err, &cf)
}
