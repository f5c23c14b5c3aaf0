/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: utilities.go
Description: Utility commands for Bletchley: key space inspection, encryption of test
messages and built-in self-checks.
*/

package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kleascm/bletchley/pkg/ciphers"
	"github.com/kleascm/bletchley/pkg/keyspace"
	"github.com/spf13/cobra"
)

// RunKeySpace prints the size of a key space and optionally its first keys
func RunKeySpace(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("cipher")
	mode, _ := cmd.Flags().GetString("mode")
	length, _ := cmd.Flags().GetInt("length")
	list, _ := cmd.Flags().GetBool("list")
	limit, _ := cmd.Flags().GetInt("limit")

	kind, err := ciphers.ParseKind(name)
	if err != nil {
		return err
	}

	var keys []string
	size := 0
	switch kind {
	case ciphers.KindVigenere:
		s, err := newSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.close()

		if size, err = keyspace.VigenereSize(mode, length, s.words); err != nil {
			return err
		}
		if list {
			if keys, err = keyspace.Vigenere(mode, length, s.words); err != nil {
				return err
			}
		}
	default:
		typed, err := keyspace.ForKind(kind)
		if err != nil {
			return err
		}
		size = len(typed)
		for _, k := range typed {
			keys = append(keys, k.String())
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s key space: %d keys\n", kind, size)
	if !list {
		return nil
	}
	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}
	for _, k := range keys {
		fmt.Fprintln(out, k)
	}
	return nil
}

// RunEncrypt enciphers a message, mostly for producing test ciphertexts
func RunEncrypt(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("cipher")
	rawKey, _ := cmd.Flags().GetString("key")

	kind, err := ciphers.ParseKind(name)
	if err != nil {
		return err
	}
	transform, err := ciphers.Lookup(kind)
	if err != nil {
		return err
	}
	key, err := parseKey(kind, rawKey)
	if err != nil {
		return err
	}
	text, err := readText(cmd, args)
	if err != nil {
		return err
	}

	out, err := transform.Encrypt(text, key)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func parseKey(kind ciphers.Kind, raw string) (ciphers.Key, error) {
	switch kind {
	case ciphers.KindCaesar, ciphers.KindRailFence:
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return ciphers.Key{}, fmt.Errorf("%s key must be a number: %w", kind, err)
		}
		return ciphers.NumberKey(kind, n), nil
	default:
		if raw == "" {
			return ciphers.Key{}, fmt.Errorf("%s key must not be empty", kind)
		}
		return ciphers.TextKey(kind, raw), nil
	}
}

// PerformSelfCheck validates configuration, dictionary, ciphers and output paths
func PerformSelfCheck(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "🔍 Bletchley - System Self-Check")
	fmt.Fprintln(out, "================================")

	s, err := newSession(cmd.Context())
	if err != nil {
		fmt.Fprintf(out, "🔍 Configuration... ❌ FAILED: %v\n", err)
		return err
	}
	defer s.close()

	checks := []struct {
		name     string
		function func() error
	}{
		{"Cipher Round Trips", checkRoundTrips},
		{"Dictionary", s.checkDictionary},
		{"Output Paths", s.checkOutputPaths},
	}

	passed := 0
	for _, check := range checks {
		fmt.Fprintf(out, "🔍 %s... ", check.name)
		if err := check.function(); err != nil {
			fmt.Fprintf(out, "❌ FAILED: %v\n", err)
			continue
		}
		fmt.Fprintln(out, "✅ PASSED")
		passed++
	}

	fmt.Fprintf(out, "📊 Results: %d/%d checks passed\n", passed, len(checks))
	if passed != len(checks) {
		return fmt.Errorf("%d/%d checks failed", len(checks)-passed, len(checks))
	}
	return nil
}

func checkRoundTrips() error {
	const message = "The quick brown fox jumps over the lazy dog"
	keys := []ciphers.Key{
		ciphers.NumberKey(ciphers.KindCaesar, 13),
		ciphers.TextKey(ciphers.KindVigenere, "lemon"),
		ciphers.NumberKey(ciphers.KindRailFence, 4),
		ciphers.TextKey(ciphers.KindSubstitution, "qwertyuiopasdfghjklzxcvbnm"),
	}
	for _, key := range keys {
		t, err := ciphers.Lookup(key.Kind)
		if err != nil {
			return err
		}
		ct, err := t.Encrypt(message, key)
		if err != nil {
			return fmt.Errorf("%s encrypt: %w", key.Kind, err)
		}
		pt, err := t.Decrypt(ct, key)
		if err != nil {
			return fmt.Errorf("%s decrypt: %w", key.Kind, err)
		}
		if pt != message {
			return fmt.Errorf("%s round trip produced %q", key.Kind, pt)
		}
	}
	return nil
}

func (s *session) checkDictionary() error {
	words := s.words.Words()
	if len(words) == 0 {
		return fmt.Errorf("dictionary %s is empty", s.words.Name())
	}
	if len(words) > 5 {
		words = words[:5]
	}
	ok, err := s.classifier.IsLikelyLanguage(strings.Join(words, " "), 1)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("classifier rejected dictionary words")
	}
	return nil
}

func (s *session) checkOutputPaths() error {
	dirs := []string{s.settings.OutputDir, s.settings.LogDir}
	for _, f := range []string{s.settings.ResultsFile, s.settings.SnapshotFile} {
		if f != "" {
			dirs = append(dirs, filepath.Dir(f))
		}
	}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
		probe, err := os.CreateTemp(dir, ".bletchley-check-*")
		if err != nil {
			return fmt.Errorf("%s is not writable: %w", dir, err)
		}
		probe.Close()
		os.Remove(probe.Name())
	}
	return nil
}
