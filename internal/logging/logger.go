// Package logging provides the process-wide structured logger,
// backed by zap. Level and output format come from configuration and
// are read once at startup.
package logging

import (
	"log"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger *zap.Logger
	sugar  *zap.SugaredLogger
)

// Config holds logging configuration.
type Config struct {
	Level  string // debug, info, warn, error
	Format string // json, text
}

func init() {
	// Default development logger so logging works before Init runs.
	logger, _ = zap.NewDevelopment()
	sugar = logger.Sugar()
}

// Init initializes the logging system. Call it early in startup.
func Init(cfg *Config) error {
	core := zapcore.NewCore(
		newEncoder(cfg.Format),
		zapcore.AddSync(os.Stdout),
		parseLevel(cfg.Level),
	)
	logger = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	sugar = logger.Sugar()

	// go-fuse and other libraries write through the standard library
	// logger; route that into zap.
	log.SetFlags(0)
	log.SetOutput(&stdLogWriter{})
	return nil
}

type stdLogWriter struct{}

func (w *stdLogWriter) Write(p []byte) (int, error) {
	sugar.Warnw(strings.TrimSuffix(string(p), "\n"), "source", "stdlib")
	return len(p), nil
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func newEncoder(format string) zapcore.Encoder {
	if strings.ToLower(format) == "json" {
		cfg := zapcore.EncoderConfig{
			TimeKey:        "timestamp",
			LevelKey:       "level",
			CallerKey:      "caller",
			MessageKey:     "message",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.SecondsDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		}
		return zapcore.NewJSONEncoder(cfg)
	}
	cfg := zapcore.EncoderConfig{
		TimeKey:        "T",
		LevelKey:       "L",
		CallerKey:      "C",
		MessageKey:     "M",
		StacktraceKey:  "S",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalColorLevelEncoder,
		EncodeTime:     zapcore.TimeEncoderOfLayout("2006/01/02 15:04:05"),
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	return zapcore.NewConsoleEncoder(cfg)
}

// Sync flushes any buffered log entries before exit.
func Sync() error {
	return logger.Sync()
}

// L returns the underlying zap.Logger.
func L() *zap.Logger {
	return logger
}

// S returns the underlying zap.SugaredLogger.
func S() *zap.SugaredLogger {
	return sugar
}

// Info logs a message at InfoLevel with structured fields.
func Info(msg string, fields ...zap.Field) {
	logger.Info(msg, fields...)
}

// Warn logs a message at WarnLevel with structured fields.
func Warn(msg string, fields ...zap.Field) {
	logger.Warn(msg, fields...)
}

// Error logs a message at ErrorLevel with structured fields.
func Error(msg string, fields ...zap.Field) {
	logger.Error(msg, fields...)
}

// Fatal logs a message at FatalLevel, then exits.
func Fatal(msg string, fields ...zap.Field) {
	logger.Fatal(msg, fields...)
}
