/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: logger.go
Description: Structured logging for Bletchley. Wraps logrus with level and format
selection, optional timestamped log files with retention, colour detection for
interactive terminals and helpers for search events.
*/

package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

// LogLevel represents the logging level
type LogLevel string

const (
	LogLevelDebug   LogLevel = "debug"
	LogLevelInfo    LogLevel = "info"
	LogLevelWarning LogLevel = "warn"
	LogLevelError   LogLevel = "error"
)

// LogFormat represents the logging format
type LogFormat string

const (
	LogFormatJSON   LogFormat = "json"
	LogFormatText   LogFormat = "text"
	LogFormatCustom LogFormat = "custom"
)

// filePrefix names every log file written to OutputDir
const filePrefix = "bletchley_"

// ColorMode selects whether output is coloured
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// LoggerConfig holds the configuration for the logger
type LoggerConfig struct {
	Level     LogLevel  `json:"level"`
	Format    LogFormat `json:"format"`
	OutputDir string    `json:"output_dir"` // empty disables file output
	MaxFiles  int       `json:"max_files"`
	Timestamp bool      `json:"timestamp"`
	Caller    bool      `json:"caller"`
	Colors    ColorMode `json:"colors"`

	// Console receives console output. Defaults to os.Stderr.
	Console io.Writer `json:"-"`
}

// DefaultConfig returns console-only text logging at info level
func DefaultConfig() *LoggerConfig {
	return &LoggerConfig{
		Level:     LogLevelInfo,
		Format:    LogFormatText,
		MaxFiles:  10,
		Timestamp: true,
		Colors:    ColorAuto,
	}
}

// Validate checks the LoggerConfig for invalid values
func (c *LoggerConfig) Validate() error {
	if c.OutputDir != "" && c.MaxFiles <= 0 {
		return fmt.Errorf("max_files must be positive when output_dir is set")
	}
	switch c.Format {
	case LogFormatJSON, LogFormatText, LogFormatCustom:
	default:
		return fmt.Errorf("unsupported log format: %s", c.Format)
	}
	switch c.Level {
	case LogLevelDebug, LogLevelInfo, LogLevelWarning, LogLevelError:
	default:
		return fmt.Errorf("unsupported log level: %s", c.Level)
	}
	switch c.Colors {
	case "", ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("unsupported color mode: %s", c.Colors)
	}
	return nil
}

// Logger owns a configured logrus logger and its log file
type Logger struct {
	config     *LoggerConfig
	logger     *logrus.Logger
	fileHandle *os.File
	filePath   string
	startTime  time.Time
}

// NewLogger creates a new logger instance. A nil config selects DefaultConfig.
func NewLogger(config *LoggerConfig) (*Logger, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid logger config: %w", err)
	}
	if config.Console == nil {
		config.Console = os.Stderr
	}

	l := &Logger{
		config:    config,
		logger:    logrus.New(),
		startTime: time.Now(),
	}
	if err := l.setup(); err != nil {
		return nil, fmt.Errorf("failed to setup logger: %w", err)
	}
	return l, nil
}

func (l *Logger) setup() error {
	level, err := logrus.ParseLevel(string(l.config.Level))
	if err != nil {
		return err
	}
	l.logger.SetLevel(level)
	l.logger.SetReportCaller(l.config.Caller)
	l.logger.SetOutput(l.config.Console)

	if err := l.setFormatter(); err != nil {
		return err
	}
	return l.setupFileOutput()
}

// useColors resolves the colour mode against the console writer
func (l *Logger) useColors() bool {
	switch l.config.Colors {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	f, ok := l.config.Console.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (l *Logger) setFormatter() error {
	colors := l.useColors()
	prettyCaller := func(f *runtime.Frame) (string, string) {
		return "", fmt.Sprintf("%s:%d", filepath.Base(f.File), f.Line)
	}

	switch l.config.Format {
	case LogFormatJSON:
		l.logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat:  time.RFC3339,
			CallerPrettyfier: prettyCaller,
		})
	case LogFormatText:
		l.logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:    l.config.Timestamp,
			TimestampFormat:  time.RFC3339,
			ForceColors:      colors,
			DisableColors:    !colors,
			CallerPrettyfier: prettyCaller,
		})
	case LogFormatCustom:
		l.logger.SetFormatter(&CustomFormatter{
			Timestamp: l.config.Timestamp,
			Caller:    l.config.Caller,
			Colors:    colors,
		})
	default:
		return fmt.Errorf("unsupported log format: %s", l.config.Format)
	}
	return nil
}

// setupFileOutput tees console output into a timestamped file under OutputDir
func (l *Logger) setupFileOutput() error {
	if l.config.OutputDir == "" {
		return nil
	}
	if err := os.MkdirAll(l.config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	name := fmt.Sprintf("%s%s.log", filePrefix, time.Now().Format("2006-01-02_15-04-05.000"))
	path := filepath.Join(l.config.OutputDir, name)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	l.fileHandle = file
	l.filePath = path
	l.logger.SetOutput(io.MultiWriter(l.config.Console, file))

	l.logger.WithFields(logrus.Fields{
		"log_file": path,
		"level":    l.config.Level,
		"format":   l.config.Format,
	}).Debug("Logging initialized")
	return nil
}

// LogCandidate logs one evaluated key at debug level
func (l *Logger) LogCandidate(cipher, key string, score int, accepted bool) {
	l.logger.WithFields(logrus.Fields{
		"cipher":   cipher,
		"key":      key,
		"score":    score,
		"accepted": accepted,
	}).Debug("Candidate evaluated")
}

// LogAccepted logs a key whose plaintext passed classification
func (l *Logger) LogAccepted(searchID, cipher, key, plaintext string) {
	l.logger.WithFields(logrus.Fields{
		"search_id": searchID,
		"cipher":    cipher,
		"key":       key,
		"plaintext": plaintext,
	}).Info("Key accepted")
}

// LogSearch logs a finished search
func (l *Logger) LogSearch(searchID, cipher string, keysTried, accepted, failed int, duration time.Duration) {
	entry := l.logger.WithFields(logrus.Fields{
		"search_id":  searchID,
		"cipher":     cipher,
		"keys_tried": keysTried,
		"accepted":   accepted,
		"failed":     failed,
		"duration":   duration,
		"uptime":     time.Since(l.startTime),
	})
	if failed > 0 {
		entry.Warn("Search finished with failures")
		return
	}
	entry.Info("Search finished")
}

// FilePath returns the current log file, or "" without file output
func (l *Logger) FilePath() string { return l.filePath }

// GetLogger returns the underlying logrus logger
func (l *Logger) GetLogger() *logrus.Logger { return l.logger }

// Close closes the log file and prunes old ones beyond MaxFiles
func (l *Logger) Close() error {
	if l.fileHandle == nil {
		return nil
	}
	l.logger.SetOutput(l.config.Console)
	if err := l.fileHandle.Close(); err != nil {
		return err
	}
	l.fileHandle = nil

	if err := NewLogManager(l.config.OutputDir, l.config.MaxFiles).CleanupOldLogs(); err != nil {
		return fmt.Errorf("failed to cleanup log files: %w", err)
	}
	return nil
}
