package logger

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

// GormLoggerConfig configures the GORM zap logger.
type GormLoggerConfig struct {
	Level         gormlogger.LogLevel
	SlowThreshold time.Duration
}

func DefaultGormLoggerConfig() GormLoggerConfig {
	return GormLoggerConfig{Level: gormlogger.Warn, SlowThreshold: 200 * time.Millisecond}
}

// GormLogger writes GORM output through the request scoped zap logger.
// Record-not-found is never logged: repositories report a missing row as nil.
type GormLogger struct {
	level gormlogger.LogLevel
	slow  time.Duration
}

func NewGormLogger(cfg GormLoggerConfig) *GormLogger {
	return &GormLogger{level: cfg.Level, slow: cfg.SlowThreshold}
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	out := *l
	out.level = level
	return &out
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	l.message(ctx, gormlogger.Info, zapcore.InfoLevel, msg, data)
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	l.message(ctx, gormlogger.Warn, zapcore.WarnLevel, msg, data)
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	l.message(ctx, gormlogger.Error, zapcore.ErrorLevel, msg, data)
}

func (l *GormLogger) message(ctx context.Context, min gormlogger.LogLevel, level zapcore.Level, msg string, data []any) {
	if l.level < min {
		return
	}
	fields := []zap.Field{zap.String("component", "gorm")}
	if len(data) > 0 {
		fields = append(fields, zap.Any("data", data))
	}
	if ce := FromContext(ctx).Check(level, msg); ce != nil {
		ce.Write(fields...)
	}
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	if errors.Is(err, gormlogger.ErrRecordNotFound) {
		err = nil
	}

	var level zapcore.Level
	var extra []zap.Field
	switch {
	case err != nil && l.level >= gormlogger.Error:
		level, extra = zapcore.ErrorLevel, []zap.Field{zap.Error(err)}
	case l.slow > 0 && elapsed > l.slow && l.level >= gormlogger.Warn:
		level, extra = zapcore.WarnLevel, []zap.Field{zap.Bool("slow", true)}
	case l.level >= gormlogger.Info:
		level = zapcore.DebugLevel
	default:
		return
	}

	ce := FromContext(ctx).Check(level, "gorm.query")
	if ce == nil {
		return
	}
	sql, rows := fc()
	fields := []zap.Field{
		zap.String("component", "gorm"),
		zap.String("sql", strings.TrimSpace(sql)),
		zap.String("operation", operationFromSQL(sql)),
		zap.Int64("duration_ms", elapsed.Milliseconds()),
	}
	if rows >= 0 {
		fields = append(fields, zap.Int64("rows_affected", rows))
	}
	ce.Write(append(fields, extra...)...)
}

// ParamsFilter drops bound values; payment credentials travel through them.
func (l *GormLogger) ParamsFilter(_ context.Context, sql string, _ ...any) (string, []any) {
	return sql, nil
}

// operationFromSQL returns the first DML keyword, skipping CTE prefixes.
func operationFromSQL(sql string) string {
	for _, tok := range strings.Fields(strings.ToUpper(sql)) {
		switch tok = strings.Trim(tok, "();"); tok {
		case "SELECT", "INSERT", "UPDATE", "DELETE", "MERGE":
			return tok
		}
	}
	return "UNKNOWN"
}

var _ gormlogger.Interface = (*GormLogger)(nil)
