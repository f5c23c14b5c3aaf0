/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: commands_test.go
Description: Tests for configuration loading, input handling and the search commands.
*/

package commands

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kleascm/bletchley/pkg/ciphers"
	"github.com/kleascm/bletchley/pkg/core"
	berrors "github.com/kleascm/bletchley/pkg/errors"
	"github.com/kleascm/bletchley/pkg/logging"
	"github.com/kleascm/bletchley/pkg/sink"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetConfig(t *testing.T) {
	t.Helper()
	viper.Reset()
	viper.Set("log_level", "error")
	t.Cleanup(viper.Reset)
}

// newTestCommand returns a command with the flags the search commands read
func newTestCommand() (*cobra.Command, *bytes.Buffer) {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("file", "", "")
	cmd.Flags().String("mode", "w", "")
	cmd.Flags().Int("length", 0, "")
	cmd.Flags().StringSlice("ciphers", []string{}, "")
	cmd.Flags().String("cipher", "caesar", "")
	cmd.Flags().String("key", "", "")
	cmd.Flags().Bool("list", false, "")
	cmd.Flags().Int("limit", 50, "")

	var out bytes.Buffer
	cmd.SetOut(&out)
	return cmd, &out
}

func TestLoadSettingsDefaults(t *testing.T) {
	resetConfig(t)
	require.NoError(t, LoadConfig())

	s, err := LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, 0.8, s.Tolerance)
	assert.Equal(t, 0, s.Workers)
	assert.Equal(t, "auto", s.DictionaryFormat)
	assert.Equal(t, "li", s.DictionarySelector)
	assert.Equal(t, ":8080", s.Listen)
	assert.Equal(t, time.Duration(0), s.Timeout)
}

func TestLoadSettingsFromEnvironment(t *testing.T) {
	resetConfig(t)
	t.Setenv("BLETCHLEY_TOLERANCE", "0.5")
	t.Setenv("BLETCHLEY_WORKERS", "3")
	require.NoError(t, LoadConfig())

	s, err := LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, 0.5, s.Tolerance)
	assert.Equal(t, 3, s.Workers)
}

func TestLoadSettingsFromConfigFile(t *testing.T) {
	resetConfig(t)
	path := filepath.Join(t.TempDir(), "bletchley.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tolerance: 0.6\nworkers: 2\n"), 0644))
	viper.Set("config", path)
	require.NoError(t, LoadConfig())

	s, err := LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, 0.6, s.Tolerance)
	assert.Equal(t, 2, s.Workers)
}

func TestLoadSettingsValidation(t *testing.T) {
	tests := []struct {
		key   string
		value interface{}
		field string
	}{
		{"tolerance", 1.5, "tolerance"},
		{"workers", -1, "workers"},
		{"timeout", "-1s", "timeout"},
		{"dictionary_format", "pdf", "dictionary_format"},
		{"log_format", "xml", "log_format"},
		{"log_level", "trace", "log_level"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			resetConfig(t)
			require.NoError(t, LoadConfig())
			viper.Set(tt.key, tt.value)

			_, err := LoadSettings()
			var cfgErr *berrors.ConfigError
			require.True(t, errors.As(err, &cfgErr), "expected ConfigError, got %v", err)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestJSONLogsForcesJSONFormat(t *testing.T) {
	resetConfig(t)
	require.NoError(t, LoadConfig())
	viper.Set("json_logs", true)

	s, err := LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, "json", s.LogFormat)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitOK, ExitCode(nil))
	assert.Equal(t, ExitNoResult, ExitCode(noResult(ciphers.KindCaesar)))
	assert.Equal(t, ExitError, ExitCode(errors.New("boom")))
	assert.Equal(t, ExitError, ExitCode(ErrTimeout))
}

func TestReadText(t *testing.T) {
	cmd, _ := newTestCommand()

	text, err := readText(cmd, []string{"khoor", "zruog"})
	require.NoError(t, err)
	assert.Equal(t, "khoor zruog", text)

	cmd.SetIn(strings.NewReader("from stdin\n"))
	text, err = readText(cmd, []string{"-"})
	require.NoError(t, err)
	assert.Equal(t, "from stdin", text)

	path := filepath.Join(t.TempDir(), "ct.txt")
	require.NoError(t, os.WriteFile(path, []byte("from file\n"), 0644))
	require.NoError(t, cmd.Flags().Set("file", path))
	text, err = readText(cmd, nil)
	require.NoError(t, err)
	assert.Equal(t, "from file", text)

	cmd, _ = newTestCommand()
	_, err = readText(cmd, nil)
	assert.True(t, berrors.IsConfigError(err))
}

func TestRunWithTimeoutAbandonsSearch(t *testing.T) {
	var logs bytes.Buffer
	cfg := logging.DefaultConfig()
	cfg.Console = &logs
	log, err := logging.NewLogger(cfg)
	require.NoError(t, err)
	s := &session{log: log}

	release := make(chan struct{})
	defer close(release)

	err = runWithTimeout(s, 20*time.Millisecond, func() error {
		<-release
		return nil
	})
	assert.True(t, errors.Is(err, ErrTimeout))
	assert.Contains(t, logs.String(), "Search abandoned")
	assert.Contains(t, logs.String(), "not persisted")
	assert.True(t, s.abandoned)

	err = runWithTimeout(s, time.Second, func() error { return errors.New("boom") })
	assert.EqualError(t, err, "boom")

	err = runWithTimeout(s, 0, func() error { return nil })
	assert.NoError(t, err)
}

func TestCloseAfterAbandonedSearchSavesEarlierResults(t *testing.T) {
	resetConfig(t)
	var logs bytes.Buffer
	cfg := logging.DefaultConfig()
	cfg.Console = &logs
	log, err := logging.NewLogger(cfg)
	require.NoError(t, err)

	snapshot := filepath.Join(t.TempDir(), "results.gob")
	s := &session{
		settings:  &Settings{SnapshotFile: snapshot},
		log:       log,
		results:   sink.NewMemorySink(),
		engine:    core.NewEngine(nil, nil, nil),
		abandoned: true,
	}
	s.results.Record(core.AcceptedResult{ID: "1", Cipher: ciphers.KindVigenere, Key: "lemon"})
	s.close()

	assert.Contains(t, logs.String(), "later results are not saved")
	saved, err := sink.LoadSnapshot(snapshot)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "lemon", saved[0].Key)
}

func TestRunCaesarPrintsPlaintext(t *testing.T) {
	resetConfig(t)
	cmd, out := newTestCommand()

	err := RunCaesar(cmd, []string{ciphers.CaesarEncrypt("meet me at the old bridge", 3)})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Key:       3")
	assert.Contains(t, out.String(), "Plaintext: meet me at the old bridge")
}

func TestRunCaesarNoResult(t *testing.T) {
	resetConfig(t)
	cmd, out := newTestCommand()

	err := RunCaesar(cmd, []string{"xqzj vkpw"})
	assert.Equal(t, ExitNoResult, ExitCode(err))
	assert.Contains(t, out.String(), "No confident caesar plaintext found")
}

func TestRunRailFence(t *testing.T) {
	resetConfig(t)
	cmd, out := newTestCommand()
	text, err := ciphers.RailFenceEncrypt("send help to the north gate", 3)
	require.NoError(t, err)

	require.NoError(t, RunRailFence(cmd, []string{text}))
	assert.Contains(t, out.String(), "Key:       3")
}

func TestRunSubstitutionIsNoResult(t *testing.T) {
	resetConfig(t)
	cmd, out := newTestCommand()

	err := RunSubstitution(cmd, []string{"itssg vgksr"})
	assert.Equal(t, ExitNoResult, ExitCode(err))
	assert.ErrorIs(t, err, berrors.ErrUnsupported)
	assert.Contains(t, out.String(), "not supported")
}

func TestRunVigenereRecordsResults(t *testing.T) {
	resetConfig(t)
	dir := t.TempDir()
	resultsFile := filepath.Join(dir, "results.jsonl")
	snapshotFile := filepath.Join(dir, "results.gob")
	viper.Set("results_file", resultsFile)
	viper.Set("snapshot_file", snapshotFile)
	viper.Set("output_dir", filepath.Join(dir, "reports"))
	viper.Set("workers", 4)

	cmd, out := newTestCommand()
	require.NoError(t, cmd.Flags().Set("mode", "w"))

	err := RunVigenere(cmd, []string{ciphers.VigenereEncrypt("attack at dawn", "lemon")})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "lemon")
	assert.Contains(t, out.String(), "Report: ")

	recorded, err := sink.ReadFile(resultsFile)
	require.NoError(t, err)
	var keys []string
	for _, r := range recorded {
		keys = append(keys, r.Key)
	}
	assert.Contains(t, keys, "lemon")

	snap, err := sink.LoadSnapshot(snapshotFile)
	require.NoError(t, err)
	assert.Len(t, snap, len(recorded))

	reports, err := filepath.Glob(filepath.Join(dir, "reports", "vigenere", "*_vigenere.json"))
	require.NoError(t, err)
	assert.Len(t, reports, 1)
}

func TestRunVigenereLetterModeRequiresLength(t *testing.T) {
	resetConfig(t)
	cmd, _ := newTestCommand()
	require.NoError(t, cmd.Flags().Set("mode", "l"))

	err := RunVigenere(cmd, []string{"abc"})
	assert.True(t, berrors.IsConfigError(err))
	assert.Equal(t, ExitError, ExitCode(err))
}

func TestRunCrack(t *testing.T) {
	resetConfig(t)
	cmd, out := newTestCommand()
	require.NoError(t, cmd.Flags().Set("mode", ""))
	require.NoError(t, cmd.Flags().Set("ciphers", "caesar,substitution"))

	err := RunCrack(cmd, []string{ciphers.CaesarEncrypt("meet me at the old bridge", 11)})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "key=11")
	assert.Contains(t, out.String(), "substitution unsupported")
}

func TestRunCrackUnknownCipher(t *testing.T) {
	resetConfig(t)
	cmd, _ := newTestCommand()
	require.NoError(t, cmd.Flags().Set("ciphers", "enigma"))

	assert.Error(t, RunCrack(cmd, []string{"abc"}))
}

func TestRunKeySpace(t *testing.T) {
	resetConfig(t)
	cmd, out := newTestCommand()
	require.NoError(t, RunKeySpace(cmd, nil))
	assert.Contains(t, out.String(), "caesar key space: 25 keys")

	cmd, out = newTestCommand()
	require.NoError(t, cmd.Flags().Set("cipher", "vigenere"))
	require.NoError(t, cmd.Flags().Set("mode", "l"))
	require.NoError(t, cmd.Flags().Set("length", "2"))
	require.NoError(t, cmd.Flags().Set("list", "true"))
	require.NoError(t, cmd.Flags().Set("limit", "3"))
	require.NoError(t, RunKeySpace(cmd, nil))
	assert.Equal(t, "vigenere key space: 676 keys\naa\nab\nac\n", out.String())
}

func TestRunEncrypt(t *testing.T) {
	cmd, out := newTestCommand()
	require.NoError(t, cmd.Flags().Set("cipher", "caesar"))
	require.NoError(t, cmd.Flags().Set("key", "3"))
	require.NoError(t, RunEncrypt(cmd, []string{"Hello", "World"}))
	assert.Equal(t, "Khoor Zruog\n", out.String())

	cmd, _ = newTestCommand()
	require.NoError(t, cmd.Flags().Set("cipher", "railfence"))
	require.NoError(t, cmd.Flags().Set("key", "three"))
	assert.Error(t, RunEncrypt(cmd, []string{"hello"}))
}

func TestPerformSelfCheck(t *testing.T) {
	resetConfig(t)
	viper.Set("output_dir", filepath.Join(t.TempDir(), "out"))
	cmd, out := newTestCommand()

	require.NoError(t, PerformSelfCheck(cmd, nil))
	assert.Contains(t, out.String(), "3/3 checks passed")
}
