/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: logger.go
Description: Logging system for mockjson. Wraps logrus with timestamped log files, selectable
output formats and cleanup of old files. Domain helpers record schema analysis, cache activity,
record generation and preserve policy changes as structured entries.
*/

package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"github.com/kleascm/mockjson/pkg/mockerr"
	"github.com/sirupsen/logrus"
)

// LogLevel represents the logging level
type LogLevel string

const (
	LogLevelDebug   LogLevel = "debug"
	LogLevelInfo    LogLevel = "info"
	LogLevelWarning LogLevel = "warn"
	LogLevelError   LogLevel = "error"
	LogLevelFatal   LogLevel = "fatal"
)

// LogFormat represents the logging format
type LogFormat string

const (
	LogFormatJSON   LogFormat = "json"
	LogFormatText   LogFormat = "text"
	LogFormatCustom LogFormat = "custom"
)

// FilePrefix names every log file written by the logger
const FilePrefix = "mockjson_"

// LoggerConfig holds the configuration for the logger
type LoggerConfig struct {
	Level     LogLevel  `json:"level" mapstructure:"level"`
	Format    LogFormat `json:"format" mapstructure:"format"`
	OutputDir string    `json:"output_dir" mapstructure:"output_dir"` // Empty disables file output
	MaxFiles  int       `json:"max_files" mapstructure:"max_files"`
	Timestamp bool      `json:"timestamp" mapstructure:"timestamp"`
	Caller    bool      `json:"caller" mapstructure:"caller"`
	Colors    bool      `json:"colors" mapstructure:"colors"`
	Console   bool      `json:"console" mapstructure:"console"` // Mirror entries to stderr
}

// DefaultConfig returns the configuration used when none is supplied
func DefaultConfig() *LoggerConfig {
	return &LoggerConfig{
		Level:     LogLevelInfo,
		Format:    LogFormatCustom,
		OutputDir: "./logs",
		MaxFiles:  10,
		Timestamp: true,
		Caller:    false,
		Colors:    true,
		Console:   true,
	}
}

// Validate checks the LoggerConfig for invalid or missing values.
// Returns an error if the config is invalid, or nil if valid.
func (c *LoggerConfig) Validate() error {
	if c.OutputDir != "" && c.MaxFiles <= 0 {
		return mockerr.New(mockerr.ErrConfiguration, "logging", "max_files must be positive")
	}
	switch c.Format {
	case LogFormatJSON, LogFormatText, LogFormatCustom:
		// ok
	default:
		return mockerr.New(mockerr.ErrConfiguration, "logging", fmt.Sprintf("unsupported log format: %s", c.Format))
	}
	switch c.Level {
	case LogLevelDebug, LogLevelInfo, LogLevelWarning, LogLevelError, LogLevelFatal:
		// ok
	default:
		return mockerr.New(mockerr.ErrConfiguration, "logging", fmt.Sprintf("unsupported log level: %s", c.Level))
	}
	return nil
}

// Logger provides structured logging for the generator
type Logger struct {
	config     *LoggerConfig
	logger     *logrus.Logger
	fileHandle *os.File
	filePath   string
	startTime  time.Time
}

// NewLogger creates a new logger instance
func NewLogger(config *LoggerConfig) (*Logger, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
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

// NewNopLogger returns a logger that drops every entry, for tests and library callers
func NewNopLogger() *Logger {
	l := &Logger{
		config:    &LoggerConfig{Level: LogLevelInfo, Format: LogFormatText},
		logger:    logrus.New(),
		startTime: time.Now(),
	}
	l.logger.SetOutput(io.Discard)
	return l
}

// setup configures the logger with the given configuration
func (l *Logger) setup() error {
	level, err := logrus.ParseLevel(string(l.config.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	l.logger.SetLevel(level)
	l.logger.SetReportCaller(l.config.Caller)

	if err := l.setFormatter(); err != nil {
		return err
	}

	return l.setupOutput()
}

// setFormatter configures the log formatter
func (l *Logger) setFormatter() error {
	pretty := func(f *runtime.Frame) (string, string) {
		return "", fmt.Sprintf("%s:%d", filepath.Base(f.File), f.Line)
	}

	switch l.config.Format {
	case LogFormatJSON:
		l.logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat:  time.RFC3339,
			CallerPrettyfier: pretty,
		})

	case LogFormatText:
		l.logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:    l.config.Timestamp,
			TimestampFormat:  time.RFC3339,
			ForceColors:      l.config.Colors,
			DisableColors:    !l.config.Colors,
			CallerPrettyfier: pretty,
		})

	case LogFormatCustom:
		l.logger.SetFormatter(&GeneratorFormatter{
			CustomFormatter: CustomFormatter{
				Timestamp: l.config.Timestamp,
				Caller:    l.config.Caller,
				Colors:    l.config.Colors,
			},
		})

	default:
		return fmt.Errorf("unsupported log format: %s", l.config.Format)
	}

	return nil
}

// setupOutput wires console and file outputs. Console output goes to stderr so
// records written to stdout stay machine readable.
func (l *Logger) setupOutput() error {
	var writers []io.Writer
	if l.config.Console {
		writers = append(writers, os.Stderr)
	}

	if l.config.OutputDir != "" {
		if err := os.MkdirAll(l.config.OutputDir, 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}

		timestamp := l.startTime.Format("2006-01-02_15-04-05")
		path := filepath.Join(l.config.OutputDir, fmt.Sprintf("%s%s.log", FilePrefix, timestamp))

		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		l.fileHandle = file
		l.filePath = path
		writers = append(writers, file)
	}

	switch len(writers) {
	case 0:
		l.logger.SetOutput(io.Discard)
	case 1:
		l.logger.SetOutput(writers[0])
	default:
		l.logger.SetOutput(io.MultiWriter(writers...))
	}

	l.logger.WithFields(logrus.Fields{
		"start_time": l.startTime.Format(time.RFC3339),
		"log_file":   l.filePath,
		"level":      l.config.Level,
		"format":     l.config.Format,
	}).Debug("mockjson logging system initialized")

	return nil
}

// FilePath is the active log file, empty when file output is disabled
func (l *Logger) FilePath() string {
	return l.filePath
}

// cleanup removes old log files beyond MaxFiles
func (l *Logger) cleanup() error {
	if l.config.OutputDir == "" || l.config.MaxFiles <= 0 {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(l.config.OutputDir, FilePrefix+"*.log"))
	if err != nil {
		return err
	}

	if len(files) <= l.config.MaxFiles {
		return nil
	}

	// Oldest first; the timestamped names sort chronologically
	sort.Slice(files, func(i, j int) bool {
		statI, errI := os.Stat(files[i])
		statJ, errJ := os.Stat(files[j])
		if errI != nil || errJ != nil || statI.ModTime().Equal(statJ.ModTime()) {
			return files[i] < files[j]
		}
		return statI.ModTime().Before(statJ.ModTime())
	})

	filesToRemove := len(files) - l.config.MaxFiles
	for i := 0; i < filesToRemove; i++ {
		if files[i] == l.filePath {
			continue
		}
		os.Remove(files[i])
	}

	return nil
}

func withFields(fields map[string]interface{}) logrus.Fields {
	out := make(logrus.Fields, len(fields)+4)
	for k, v := range fields {
		out[k] = v
	}
	return out
}

// LogAnalysis logs a rebuilt schema for a logical type
func (l *Logger) LogAnalysis(logicalType string, documents int, paths int, duration time.Duration, fields map[string]interface{}) {
	f := withFields(fields)
	f["logical_type"] = logicalType
	f["documents"] = documents
	f["paths"] = paths
	f["duration"] = duration

	l.logger.WithFields(f).Info("Schema analyzed")
}

// LogCache logs a cache lookup outcome
func (l *Logger) LogCache(logicalType string, fingerprint string, hit bool, fields map[string]interface{}) {
	f := withFields(fields)
	f["logical_type"] = logicalType
	f["fingerprint"] = fingerprint
	f["hit"] = hit

	l.logger.WithFields(f).Debug("Schema cache lookup")
}

// LogGeneration logs a finished generation batch
func (l *Logger) LogGeneration(logicalType string, requested int, produced int, duration time.Duration, fields map[string]interface{}) {
	f := withFields(fields)
	f["logical_type"] = logicalType
	f["requested"] = requested
	f["produced"] = produced
	f["failed"] = requested - produced
	f["duration"] = duration

	l.logger.WithFields(f).Info("Records generated")
}

// LogRecordFailure logs a single record that could not be synthesized
func (l *Logger) LogRecordFailure(logicalType string, index int, err error, fields map[string]interface{}) {
	f := withFields(fields)
	f["logical_type"] = logicalType
	f["index"] = index

	l.logger.WithFields(f).WithError(err).Warn("Record synthesis failed")
}

// LogPolicyChange logs an add or remove on the preserve policy
func (l *Logger) LogPolicyChange(action string, field string, status string, fields map[string]interface{}) {
	f := withFields(fields)
	f["action"] = action
	f["field"] = field
	f["status"] = status

	l.logger.WithFields(f).Info("Preserve policy updated")
}

// Close closes the logger and performs cleanup
func (l *Logger) Close() error {
	if l.fileHandle != nil {
		l.fileHandle.Close()
	}

	if err := l.cleanup(); err != nil {
		return fmt.Errorf("failed to cleanup log files: %w", err)
	}

	return nil
}

// GetLogger returns the underlying logrus logger
func (l *Logger) GetLogger() *logrus.Logger {
	return l.logger
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, fields map[string]interface{}) {
	l.logger.WithFields(withFields(fields)).Debug(msg)
}

// Info logs an info message
func (l *Logger) Info(msg string, fields map[string]interface{}) {
	l.logger.WithFields(withFields(fields)).Info(msg)
}

// Warning logs a warning message
func (l *Logger) Warning(msg string, fields map[string]interface{}) {
	l.logger.WithFields(withFields(fields)).Warn(msg)
}

// Error logs an error message
func (l *Logger) Error(msg string, fields map[string]interface{}) {
	l.logger.WithFields(withFields(fields)).Error(msg)
}
