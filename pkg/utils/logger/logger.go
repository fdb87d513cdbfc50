package logger

import (
	"context"
	"fmt"
	"os"
	"time"

	"submitrelay/pkg/utils/contextkey"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var globalLogger *Logger

// Logger wraps zap logger with context support
type Logger struct {
	zap *zap.Logger
}

// Config holds logger configuration
type Config struct {
	Level      string `yaml:"level" env:"LOG_LEVEL"`   // debug, info, warn, error
	Format     string `yaml:"format" env:"LOG_FORMAT"` // json, console
	OutputPath string `yaml:"outputPath"`              // file path or "stdout"
	ErrorPath  string `yaml:"errorPath"`               // error log file path or "stderr"
}

// Init initializes the global logger
func Init(cfg Config) error {
	logger, err := NewLogger(cfg)
	if err != nil {
		return err
	}
	globalLogger = logger
	return nil
}

// NewLogger creates a new logger instance
func NewLogger(cfg Config) (*Logger, error) {
	// Parse log level
	level := zapcore.InfoLevel
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	// Encoder config
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    "func",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     customTimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	// Choose encoder
	var encoder zapcore.Encoder
	if cfg.Format == "json" {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	// Output paths
	outputPath := cfg.OutputPath
	if outputPath == "" {
		outputPath = "stdout"
	}

	errorPath := cfg.ErrorPath
	if errorPath == "" {
		errorPath = "stderr"
	}

	writeSyncer, err := openSink(outputPath, os.Stdout)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	errorSyncer, err := openSink(errorPath, os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("failed to open error log file: %w", err)
	}

	core := zapcore.NewCore(encoder, writeSyncer, level)

	// Create logger with caller info
	zapLogger := zap.New(core,
		zap.AddCaller(),
		zap.AddCallerSkip(1),
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.ErrorOutput(errorSyncer),
	)

	return &Logger{zap: zapLogger}, nil
}

// openSink maps "stdout"/"stderr" to the process streams and anything else to an append-only file.
func openSink(path string, fallback *os.File) (zapcore.WriteSyncer, error) {
	switch path {
	case "", "stdout", "stderr":
		if path == "stdout" {
			return zapcore.AddSync(os.Stdout), nil
		}
		if path == "stderr" {
			return zapcore.AddSync(os.Stderr), nil
		}
		return zapcore.AddSync(fallback), nil
	}
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return zapcore.AddSync(file), nil
}

// customTimeEncoder formats time in RFC3339 format
func customTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format(time.RFC3339))
}

// Sync flushes any buffered log entries
func (l *Logger) Sync() error {
	return l.zap.Sync()
}

// WithContext extracts fields from context (like trace_id) and returns logger with those fields
func (l *Logger) WithContext(ctx context.Context) *zap.Logger {
	fields := extractFieldsFromContext(ctx)
	return l.zap.With(fields...)
}

// extractFieldsFromContext extracts structured fields from context
func extractFieldsFromContext(ctx context.Context) []zap.Field {
	var fields []zap.Field
	if ctx == nil {
		return fields
	}

	if traceID := ctx.Value(contextkey.TraceID); traceID != nil {
		fields = append(fields, zap.String("trace_id", fmt.Sprint(traceID)))
	}

	if requestID := ctx.Value(contextkey.RequestID); requestID != nil {
		fields = append(fields, zap.String("request_id", fmt.Sprint(requestID)))
	}

	// Set once per submission invocation by the workflow.
	if invocationID := ctx.Value(contextkey.InvocationID); invocationID != nil {
		fields = append(fields, zap.String("invocation_id", fmt.Sprint(invocationID)))
	}

	return fields
}

// WithInvocationID returns a context carrying the invocation id picked up by the logger.
func WithInvocationID(ctx context.Context, invocationID string) context.Context {
	return context.WithValue(ctx, contextkey.InvocationID, invocationID)
}

// Global logger convenience functions

// Debug logs a debug message
func Debug(ctx context.Context, msg string, fields ...zap.Field) {
	if globalLogger == nil {
		return
	}
	globalLogger.WithContext(ctx).Debug(msg, fields...)
}

// Info logs an info message
func Info(ctx context.Context, msg string, fields ...zap.Field) {
	if globalLogger == nil {
		return
	}
	globalLogger.WithContext(ctx).Info(msg, fields...)
}

// Warn logs a warning message
func Warn(ctx context.Context, msg string, fields ...zap.Field) {
	if globalLogger == nil {
		return
	}
	globalLogger.WithContext(ctx).Warn(msg, fields...)
}

// Error logs an error message
func Error(ctx context.Context, msg string, fields ...zap.Field) {
	if globalLogger == nil {
		return
	}
	globalLogger.WithContext(ctx).Error(msg, fields...)
}

// Fatal logs a fatal message and exits
func Fatal(ctx context.Context, msg string, fields ...zap.Field) {
	if globalLogger == nil {
		return
	}
	globalLogger.WithContext(ctx).Fatal(msg, fields...)
}

// WithFields returns a logger with pre-set fields
func WithFields(ctx context.Context, fields ...zap.Field) *zap.Logger {
	if globalLogger == nil {
		return nil
	}
	return globalLogger.WithContext(ctx).With(fields...)
}

// Sync flushes the global logger
func Sync() error {
	if globalLogger == nil {
		return nil
	}
	return globalLogger.Sync()
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{zap: zap.NewNop()}
}

// NewWithCore wraps an existing zap core, such as an observer in tests.
func NewWithCore(core zapcore.Core) *Logger {
	return &Logger{zap: zap.New(core)}
}

// SetLogger replaces the global logger instance.
func SetLogger(l *Logger) {
	globalLogger = l
}

// GetLogger returns the global logger instance
func GetLogger() *Logger {
	return globalLogger
}
