package overlay

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// SQLOption configures a [SQLStore].
type SQLOption func(*sqlOptions)

type sqlOptions struct {
	logger *log.Logger
}

// WithSQLLogger routes gorm and migration output to l. Without it the store
// is silent.
func WithSQLLogger(l *log.Logger) SQLOption {
	return func(o *sqlOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// gormLog adapts a charm logger to gorm. Missing rows are an expected
// outcome of Get and are never reported.
type gormLog struct {
	l     *log.Logger
	level gormlogger.LogLevel
}

func newGormLog(l *log.Logger) gormlogger.Interface {
	return gormLog{l: l, level: gormlogger.Warn}
}

func (g gormLog) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	g.level = level
	return g
}

func (g gormLog) Info(_ context.Context, msg string, args ...any) {
	if g.level >= gormlogger.Info {
		g.l.Infof(msg, args...)
	}
}

func (g gormLog) Warn(_ context.Context, msg string, args ...any) {
	if g.level >= gormlogger.Warn {
		g.l.Warnf(msg, args...)
	}
}

func (g gormLog) Error(_ context.Context, msg string, args ...any) {
	if g.level >= gormlogger.Error {
		g.l.Errorf(msg, args...)
	}
}

func (g gormLog) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= gormlogger.Silent {
		return
	}
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && g.level >= gormlogger.Error:
		sql, rows := fc()
		g.l.Error("sql failed", "err", err, "sql", sql, "rows", rows, "elapsed", time.Since(begin))
	case g.level >= gormlogger.Info:
		sql, rows := fc()
		g.l.Debug("sql", "sql", sql, "rows", rows, "elapsed", time.Since(begin))
	}
}

// gooseLog adapts a charm logger to goose.
type gooseLog struct {
	l *log.Logger
}

func (g gooseLog) Printf(format string, v ...any) {
	g.l.Debugf(strings.TrimSpace(format), v...)
}

func (g gooseLog) Fatalf(format string, v ...any) {
	g.l.Fatalf(strings.TrimSpace(format), v...)
}

func discardLogger() *log.Logger {
	return log.New(io.Discard)
}
