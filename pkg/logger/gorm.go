package logger

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// maxSQLLength caps the statement text attached to a log entry.
const maxSQLLength = 1000

var gormLevels = map[string]gormlogger.LogLevel{
	"silent":  gormlogger.Silent,
	"error":   gormlogger.Error,
	"warn":    gormlogger.Warn,
	"warning": gormlogger.Warn,
	"info":    gormlogger.Info,
	"debug":   gormlogger.Info,
}

// GormLogger routes GORM's statement and diagnostic logs through zap,
// tagging each entry with the caller's request ID.
type GormLogger struct {
	log           *zap.Logger
	slowThreshold time.Duration
	level         gormlogger.LogLevel
}

var _ gormlogger.Interface = (*GormLogger)(nil)

// NewGormLoggerWithConfig creates a GORM logger that writes through zap.
// logLevel uses the application log level names; slowQuerySeconds <= 0
// disables slow query warnings.
func NewGormLoggerWithConfig(l *zap.Logger, slowQuerySeconds float64, logLevel string) *GormLogger {
	level, ok := gormLevels[logLevel]
	if !ok {
		level = gormlogger.Warn
	}
	return &GormLogger{
		log:           l,
		slowThreshold: max(time.Duration(slowQuerySeconds*float64(time.Second)), 0),
		level:         level,
	}
}

func (g *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *g
	clone.level = level
	return &clone
}

func (g *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	if g.level >= gormlogger.Info {
		WithContext(ctx, g.log).Sugar().Infof(msg, data...)
	}
}

func (g *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if g.level >= gormlogger.Warn {
		WithContext(ctx, g.log).Sugar().Warnf(msg, data...)
	}
}

func (g *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	if g.level >= gormlogger.Error {
		WithContext(ctx, g.log).Sugar().Errorf(msg, data...)
	}
}

// Trace logs one executed statement: failures at error, statements slower
// than the threshold at warn, everything else at debug. A missing record is
// an expected lookup outcome, not a failure.
func (g *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	failed := err != nil && !errors.Is(err, gorm.ErrRecordNotFound)
	slow := g.slowThreshold > 0 && elapsed > g.slowThreshold && g.level >= gormlogger.Warn
	if !failed && !slow && g.level < gormlogger.Info {
		return
	}

	log := WithContext(ctx, g.log).With(statementFields(fc, elapsed)...)
	switch {
	case failed:
		log.Error("gorm query error", zap.Error(err))
	case slow:
		log.Warn("gorm slow query", zap.Duration("threshold", g.slowThreshold))
	default:
		log.Debug("gorm query")
	}
}

func statementFields(fc func() (string, int64), elapsed time.Duration) []zap.Field {
	sql, rows := fc()
	fields := make([]zap.Field, 0, 5)
	if len(sql) > maxSQLLength {
		sql = sql[:maxSQLLength] + "..."
		fields = append(fields, zap.Bool("sql_truncated", true))
	}
	return append(fields,
		zap.String("sql", sql),
		zap.Int64("rows", rows),
		zap.Duration("elapsed", elapsed),
		zap.Float64("elapsed_ms", float64(elapsed.Microseconds())/1e3),
	)
}
