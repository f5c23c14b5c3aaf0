/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: utils.go
Description: Shared utilities for the Bletchley commands. Provides configuration
loading and validation, logging setup, input reading and the search session that
wires dictionary, classifier, sinks and engine together.
*/

package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/kleascm/bletchley/pkg/classifier"
	"github.com/kleascm/bletchley/pkg/core"
	"github.com/kleascm/bletchley/pkg/dictionary"
	berrors "github.com/kleascm/bletchley/pkg/errors"
	"github.com/kleascm/bletchley/pkg/logging"
	"github.com/kleascm/bletchley/pkg/monitoring"
	"github.com/kleascm/bletchley/pkg/report"
	"github.com/kleascm/bletchley/pkg/sink"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Exit codes
const (
	ExitOK       = 0
	ExitError    = 1
	ExitNoResult = 2
)

// ErrTimeout is returned when a search outlives --timeout
var ErrTimeout = errors.New("search timed out")

// Settings is the validated view of the viper configuration
type Settings struct {
	Tolerance          float64
	Workers            int
	Dictionary         string
	DictionaryFormat   string
	DictionarySelector string
	LogLevel           string
	LogFormat          string
	LogDir             string
	JSONLogs           bool
	OutputDir          string
	ResultsFile        string
	SnapshotFile       string
	Timeout            time.Duration
	Listen             string
}

func setDefaults() {
	viper.SetDefault("tolerance", core.DefaultTolerance)
	viper.SetDefault("workers", 0)
	viper.SetDefault("dictionary_format", dictionary.FormatAuto)
	viper.SetDefault("dictionary_selector", dictionary.DefaultSelector)
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "text")
	viper.SetDefault("listen", ":8080")
}

// LoadConfig loads configuration from files and environment
func LoadConfig() error {
	setDefaults()

	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	viper.SetEnvPrefix("BLETCHLEY")
	viper.AutomaticEnv()

	return nil
}

// LoadSettings reads and validates every configuration key
func LoadSettings() (*Settings, error) {
	s := &Settings{
		Tolerance:          viper.GetFloat64("tolerance"),
		Workers:            viper.GetInt("workers"),
		Dictionary:         viper.GetString("dictionary"),
		DictionaryFormat:   strings.ToLower(viper.GetString("dictionary_format")),
		DictionarySelector: viper.GetString("dictionary_selector"),
		LogLevel:           viper.GetString("log_level"),
		LogFormat:          viper.GetString("log_format"),
		LogDir:             viper.GetString("log_dir"),
		JSONLogs:           viper.GetBool("json_logs"),
		OutputDir:          viper.GetString("output_dir"),
		ResultsFile:        viper.GetString("results_file"),
		SnapshotFile:       viper.GetString("snapshot_file"),
		Timeout:            viper.GetDuration("timeout"),
		Listen:             viper.GetString("listen"),
	}
	if s.JSONLogs {
		s.LogFormat = string(logging.LogFormatJSON)
	}
	return s, s.Validate()
}

// Validate checks the settings, returning a ConfigError for the first bad field
func (s *Settings) Validate() error {
	if err := core.ValidateTolerance(s.Tolerance); err != nil {
		return err
	}
	if s.Workers < 0 {
		return berrors.NewConfigError("workers", s.Workers, "must not be negative").
			WithHint("use 0 to select the number of CPUs")
	}
	if s.Timeout < 0 {
		return berrors.NewConfigError("timeout", s.Timeout, "must not be negative")
	}
	switch s.DictionaryFormat {
	case "", dictionary.FormatAuto, dictionary.FormatTXT, dictionary.FormatCSV, dictionary.FormatJSON, dictionary.FormatHTML:
	default:
		return berrors.NewConfigError("dictionary_format", s.DictionaryFormat, "unsupported format").
			WithHint("use auto, txt, csv, json or html")
	}
	switch logging.LogFormat(s.LogFormat) {
	case logging.LogFormatText, logging.LogFormatJSON, logging.LogFormatCustom:
	default:
		return berrors.NewConfigError("log_format", s.LogFormat, "unsupported format").
			WithHint("use text, json or custom")
	}
	switch logging.LogLevel(s.LogLevel) {
	case logging.LogLevelDebug, logging.LogLevelInfo, logging.LogLevelWarning, logging.LogLevelError:
	default:
		return berrors.NewConfigError("log_level", s.LogLevel, "unsupported level").
			WithHint("use debug, info, warn or error")
	}
	return nil
}

// SetupLogging configures the logging system
func SetupLogging(s *Settings) (*logging.Logger, error) {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.LogLevel(s.LogLevel)
	cfg.Format = logging.LogFormat(s.LogFormat)
	cfg.OutputDir = s.LogDir
	return logging.NewLogger(cfg)
}

// session holds everything a search command needs
type session struct {
	settings   *Settings
	log        *logging.Logger
	words      *dictionary.WordSet
	classifier *classifier.DictionaryClassifier
	results    *sink.MemorySink
	file       *sink.FileSink
	metrics    *monitoring.MetricsCollector
	engine     *core.Engine

	// abandoned is set when a search outlived --timeout
	abandoned bool
}

// newSession loads configuration and builds the engine
func newSession(ctx context.Context) (*session, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := LoadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	settings, err := LoadSettings()
	if err != nil {
		return nil, err
	}
	log, err := SetupLogging(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to setup logging: %w", err)
	}

	s := &session{settings: settings, log: log, results: sink.NewMemorySink()}
	if err := s.open(ctx); err != nil {
		s.close()
		return nil, err
	}
	return s, nil
}

func (s *session) open(ctx context.Context) error {
	logger := s.log.GetLogger()

	words, err := dictionary.Load(ctx, dictionary.LoadOptions{
		Location: s.settings.Dictionary,
		Format:   s.settings.DictionaryFormat,
		Selector: s.settings.DictionarySelector,
		Timeout:  30 * time.Second,
	})
	if err != nil {
		return fmt.Errorf("failed to load dictionary: %w", err)
	}
	s.words = words
	s.classifier = classifier.NewDictionaryClassifier(words)
	logger.WithField("dictionary", words.Name()).WithField("words", words.Len()).Debug("Dictionary loaded")

	if s.settings.SnapshotFile != "" {
		previous, err := sink.LoadSnapshot(s.settings.SnapshotFile)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return err
		default:
			for _, r := range previous {
				s.results.Record(r)
			}
			logger.WithField("results", len(previous)).Info("Snapshot restored")
		}
	}

	sinks := sink.MultiSink{s.results}
	if s.settings.ResultsFile != "" {
		file, err := sink.NewFileSink(s.settings.ResultsFile, logger)
		if err != nil {
			return err
		}
		s.file = file
		sinks = append(sinks, file)
	}

	s.metrics = monitoring.NewMetricsCollector(logger)
	s.engine = core.NewEngine(s.classifier, s.words, sinks,
		core.WithWorkers(s.settings.Workers),
		core.WithLogger(logger),
		core.WithReporter(newLogReporter(s.log)),
		core.WithReporter(s.metrics),
	)
	return nil
}

// close persists the snapshot and releases files. After an abandoned search only
// the results found so far are persisted.
func (s *session) close() {
	logger := s.log.GetLogger()
	if s.abandoned {
		logger.WithField("results", s.results.Len()).
			Warn("Persisting results found before the timeout; later results are not saved")
	}
	if s.settings.SnapshotFile != "" && s.engine != nil {
		if err := sink.SaveSnapshot(s.settings.SnapshotFile, s.results.Results()); err != nil {
			logger.WithError(err).Error("Failed to save snapshot")
		}
	}
	if s.file != nil {
		if err := s.file.Close(); err != nil {
			logger.WithError(err).Error("Failed to close results file")
		}
	}
	if err := s.log.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to close logger: %v\n", err)
	}
}

// writeReport stores a report under output_dir when configured
func (s *session) writeReport(cmd *cobra.Command, kind string, body interface{}) error {
	if s.settings.OutputDir == "" {
		return nil
	}
	path, err := report.WriteSearchReport(s.settings.OutputDir, kind, body)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Report: %s\n", path)
	return nil
}

// runWithTimeout runs search and gives up waiting after timeout (0 waits forever).
// The searches are not cancellable, so an abandoned search keeps running in the
// background until the process exits. Its later results reach neither the snapshot
// nor the results file.
func runWithTimeout(s *session, timeout time.Duration, search func() error) error {
	if timeout <= 0 {
		return search()
	}

	done := make(chan error, 1)
	go func() { done <- search() }()

	select {
	case err := <-done:
		return err
	case <-time.After(timeout):
		s.abandoned = true
		s.log.GetLogger().WithField("timeout", timeout).
			Warn("Search abandoned; in-flight units keep running until exit and results found after the timeout are not persisted")
		return fmt.Errorf("%w after %s", ErrTimeout, timeout)
	}
}

// readText returns the ciphertext from --file, the arguments, or stdin for "-"
func readText(cmd *cobra.Command, args []string) (string, error) {
	if path, _ := cmd.Flags().GetString("file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", path, err)
		}
		return strings.TrimRight(string(data), "\r\n"), nil
	}

	if len(args) == 1 && args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return strings.TrimRight(string(data), "\r\n"), nil
	}

	text := strings.Join(args, " ")
	if text == "" {
		return "", berrors.NewConfigError("text", "", "ciphertext is required").
			WithHint("pass it as arguments, with --file, or as - to read stdin")
	}
	return text, nil
}

// ExitCode maps a command error onto the process exit status
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, berrors.ErrNoResult):
		return ExitNoResult
	default:
		return ExitError
	}
}

// noResult reports a search that found nothing
func noResult(kind core.Kind) error {
	return fmt.Errorf("%s: %w", kind, berrors.ErrNoResult)
}
