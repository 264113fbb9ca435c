package logger

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLogLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, parseLogLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, parseLogLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLogLevel("bogus"))
}

func TestNewWithConfig_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	l, err := NewWithConfig(Config{
		Level:       "info",
		Format:      "json",
		OutputPath:  path,
		ServiceName: "user-management-service",
		Environment: "test",
	})
	require.NoError(t, err)

	l.Info("hello", zap.String("k", "v"))
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := string(data)
	assert.Contains(t, line, `"message":"hello"`)
	assert.Contains(t, line, `"service":"user-management-service"`)
	assert.Contains(t, line, `"k":"v"`)
}

func TestWithContext_RequestID(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	base := zap.New(core)

	ctx := WithRequestID(context.Background(), "req-123")
	WithContext(ctx, base).Info("with id")
	WithContext(context.Background(), base).Info("without id")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "req-123", entries[0].ContextMap()["request_id"])
	assert.NotContains(t, entries[1].ContextMap(), "request_id")
}

func TestNewRequestContext(t *testing.T) {
	a := GetRequestID(NewRequestContext(context.Background()))
	b := GetRequestID(NewRequestContext(context.Background()))

	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
	assert.Empty(t, GetRequestID(context.Background()))
}

func TestGormLogger_Trace(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gl := NewGormLoggerWithConfig(zap.New(core), 0.1, "debug")
	ctx := context.Background()
	sql := func() (string, int64) { return "SELECT * FROM users", 1 }

	gl.Trace(ctx, time.Now(), sql, nil)
	gl.Trace(ctx, time.Now().Add(-time.Second), sql, nil)
	gl.Trace(ctx, time.Now(), sql, errors.New("boom"))
	gl.Trace(ctx, time.Now(), sql, gorm.ErrRecordNotFound)

	entries := logs.All()
	require.Len(t, entries, 4)
	assert.Equal(t, "gorm query", entries[0].Message)
	assert.Equal(t, "gorm slow query", entries[1].Message)
	assert.Equal(t, "gorm query error", entries[2].Message)
	assert.Equal(t, "gorm query", entries[3].Message)
}

func TestGormLogger_TruncatesLongSQL(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gl := NewGormLoggerWithConfig(zap.New(core), 0, "info")

	long := strings.Repeat("x", 2000)
	gl.Trace(context.Background(), time.Now(), func() (string, int64) { return long, 0 }, nil)

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, true, fields["sql_truncated"])
	assert.Len(t, fields["sql"], 1003)
}

func TestGormLogger_Silent(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gl := NewGormLoggerWithConfig(zap.New(core), 0, "silent")

	gl.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 0 }, errors.New("ignored"))
	assert.Zero(t, logs.Len())

	loud := gl.LogMode(gormlogger.Info)
	loud.Info(context.Background(), "migrating %s", "users")
	assert.Equal(t, 1, logs.Len())
}

func TestNewWithConfig_ConsoleFileHasNoColor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.log")

	l, err := NewWithConfig(Config{
		Level:       "debug",
		Format:      "console",
		OutputPath:  path,
		Environment: "development",
		MaxSizeMB:   1,
		MaxBackups:  1,
		MaxAgeDays:  1,
	})
	require.NoError(t, err)

	l.Debug("plain")
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\tdebug\t")
	assert.NotContains(t, string(data), "\x1b[")
}

func TestNewWithConfig_LevelFilters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "level.log")

	l, err := NewWithConfig(Config{Level: " Warning ", Format: "json", OutputPath: path})
	require.NoError(t, err)

	l.Info("dropped")
	l.Warn("kept")
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "dropped")
	assert.Contains(t, string(data), "kept")
}
