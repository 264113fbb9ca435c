package logger

import (
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Output targets understood by Config.OutputPath besides a file path.
const (
	OutputStdout = "stdout"
	OutputStderr = "stderr"
)

// Config represents logger configuration
type Config struct {
	Level          string // debug, info, warn, error
	Format         string // json, console
	OutputPath     string // stdout, stderr, or file path
	EnableSampling bool
	ServiceName    string
	ServiceVersion string
	Environment    string

	// Rotation applies to file output only. Zero values fall back to
	// lumberjack's defaults.
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// NewWithConfig builds the service logger. Every entry carries the service,
// version and environment fields.
func NewWithConfig(cfg Config) (*zap.Logger, error) {
	core := zapcore.NewCore(newEncoder(cfg), newSink(cfg), parseLogLevel(cfg.Level))

	if cfg.EnableSampling {
		// first 100 entries per second per message, then every 10th
		core = zapcore.NewSamplerWithOptions(core, time.Second, 100, 10)
	}

	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)).With(
		zap.String("service", cfg.ServiceName),
		zap.String("version", cfg.ServiceVersion),
		zap.String("environment", cfg.Environment),
	), nil
}

func newEncoder(cfg Config) zapcore.Encoder {
	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "timestamp"
	ec.MessageKey = "message"
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	ec.EncodeDuration = zapcore.SecondsDurationEncoder

	if cfg.Format == "json" {
		return zapcore.NewJSONEncoder(ec)
	}

	// colors only make sense on a terminal
	if cfg.Environment != "production" && !isFile(cfg.OutputPath) {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return zapcore.NewConsoleEncoder(ec)
}

func newSink(cfg Config) zapcore.WriteSyncer {
	switch cfg.OutputPath {
	case OutputStdout, "":
		return zapcore.Lock(os.Stdout)
	case OutputStderr:
		return zapcore.Lock(os.Stderr)
	}
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.OutputPath,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	})
}

func isFile(outputPath string) bool {
	return outputPath != "" && outputPath != OutputStdout && outputPath != OutputStderr
}

// parseLogLevel maps a level name to a zap level, defaulting to info.
func parseLogLevel(level string) zapcore.Level {
	name := strings.ToLower(strings.TrimSpace(level))
	if name == "warning" {
		name = "warn"
	}
	lvl, err := zapcore.ParseLevel(name)
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}
