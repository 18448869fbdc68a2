package models

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	gorm_logger "gorm.io/gorm/logger"
)

// slowQueryThreshold is the duration above which queries are logged as warnings.
const slowQueryThreshold = 200 * time.Millisecond

// queryLogger sends gorm's log output to zerolog.
type queryLogger struct {
	logger zerolog.Logger
	level  gorm_logger.LogLevel
	slow   time.Duration
}

func newQueryLogger(l zerolog.Logger) *queryLogger {
	return &queryLogger{
		logger: l,
		level:  gorm_logger.Warn,
		slow:   slowQueryThreshold,
	}
}

func (l *queryLogger) LogMode(level gorm_logger.LogLevel) gorm_logger.Interface {
	n := *l
	n.level = level
	return &n
}

func (l *queryLogger) Info(_ context.Context, s string, args ...any) {
	if l.level >= gorm_logger.Info {
		l.logger.Info().Msgf(s, args...)
	}
}

func (l *queryLogger) Warn(_ context.Context, s string, args ...any) {
	if l.level >= gorm_logger.Warn {
		l.logger.Warn().Msgf(s, args...)
	}
}

func (l *queryLogger) Error(_ context.Context, s string, args ...any) {
	if l.level >= gorm_logger.Error {
		l.logger.Error().Msgf(s, args...)
	}
}

// Trace logs a finished query. Failed queries are errors, slow queries
// are warnings and everything else is only visible at debug level.
func (l *queryLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gorm_logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	event := func(e *zerolog.Event) *zerolog.Event {
		return e.Str("sql", sql).Int64("rows", rows).Dur("duration", elapsed)
	}

	switch {
	case err != nil && !errors.Is(err, ErrResourceNotFound) && !errors.Is(err, gorm_logger.ErrRecordNotFound):
		event(l.logger.Error().Err(err)).Msg("[GORM] query error")
	case elapsed > l.slow:
		event(l.logger.Warn()).Msg("[GORM] slow query")
	default:
		event(l.logger.Debug()).Msg("[GORM] query")
	}
}
