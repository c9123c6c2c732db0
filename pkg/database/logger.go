package database

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// gormLogger forwards gorm's log output to zerolog.
type gormLogger struct {
	log      zerolog.Logger
	traceSQL bool
}

// NewGormLogger wraps log for use as a gorm logger. With traceSQL every
// executed statement is logged at debug level.
func NewGormLogger(log zerolog.Logger, traceSQL bool) gormlogger.Interface {
	return &gormLogger{log: log, traceSQL: traceSQL}
}

func (l *gormLogger) LogMode(gormlogger.LogLevel) gormlogger.Interface {
	return l
}

func (l *gormLogger) Info(_ context.Context, msg string, args ...interface{}) {
	l.log.Info().Msgf(msg, args...)
}

func (l *gormLogger) Warn(_ context.Context, msg string, args ...interface{}) {
	l.log.Warn().Msgf(msg, args...)
}

func (l *gormLogger) Error(_ context.Context, msg string, args ...interface{}) {
	l.log.Error().Msgf(msg, args...)
}

func (l *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		sql, rows := fc()
		l.log.Error().Err(err).Str("sql", sql).Int64("rows", rows).Msg("query failed")
		return
	}
	if l.traceSQL {
		sql, rows := fc()
		l.log.Debug().Str("sql", sql).Int64("rows", rows).
			Dur("elapsed", time.Since(begin)).Msg("query")
	}
}
