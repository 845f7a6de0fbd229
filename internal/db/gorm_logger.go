package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/nutrigraph-worker/internal/logger"
)

// gormZapLogger implements gorm's logger.Interface on top of the process
// logger, so slow queries and query errors land in the same structured
// stream as everything else.
type gormZapLogger struct {
	log           *logger.Logger
	level         gormLogger.LogLevel
	slowThreshold time.Duration
}

func newGormLogger(log *logger.Logger) gormLogger.Interface {
	return &gormZapLogger{
		log:           log,
		level:         gormLogger.Warn,
		slowThreshold: 1 * time.Second,
	}
}

func (l *gormZapLogger) LogMode(level gormLogger.LogLevel) gormLogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *gormZapLogger) Info(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormLogger.Info {
		l.log.Info(fmt.Sprintf(msg, args...))
	}
}

func (l *gormZapLogger) Warn(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormLogger.Warn {
		l.log.Warn(fmt.Sprintf(msg, args...))
	}
}

func (l *gormZapLogger) Error(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormLogger.Error {
		l.log.Error(fmt.Sprintf(msg, args...))
	}
}

func (l *gormZapLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormLogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	switch {
	case err != nil && l.level >= gormLogger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		l.log.Error("Query failed", "error", err, "elapsed", elapsed, "rows", rows, "sql", sql)
	case l.slowThreshold > 0 && elapsed > l.slowThreshold && l.level >= gormLogger.Warn:
		sql, rows := fc()
		l.log.Warn("Slow query", "elapsed", elapsed, "slow_threshold", l.slowThreshold, "rows", rows, "sql", sql)
	case l.level >= gormLogger.Info:
		sql, rows := fc()
		l.log.Debug("Query", "elapsed", elapsed, "rows", rows, "sql", sql)
	}
}
