package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/utils"
)

// slowQueryThreshold flags mirror queries that would make list endpoints
// noticeably laggy.
const slowQueryThreshold = 200 * time.Millisecond

// queryLogger adapts zap to gorm's logger.Interface. The environment decides
// how chatty it is: production logs warnings and errors only, everything else
// traces each statement with its SQL text.
type queryLogger struct {
	log      *zap.Logger
	level    logger.LogLevel
	traceSQL bool
	slow     time.Duration
}

func newQueryLogger(z *zap.Logger, appEnv string) *queryLogger {
	ql := &queryLogger{
		log:  z,
		slow: slowQueryThreshold,
	}
	if appEnv == "production" {
		ql.level = logger.Warn
	} else {
		ql.level = logger.Info
		ql.traceSQL = true
	}
	return ql
}

func (l *queryLogger) LogMode(level logger.LogLevel) logger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *queryLogger) Info(_ context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Info {
		l.log.Info(fmt.Sprintf(msg, args...))
	}
}

func (l *queryLogger) Warn(_ context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Warn {
		l.log.Warn(fmt.Sprintf(msg, args...))
	}
}

func (l *queryLogger) Error(_ context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Error {
		l.log.Error(fmt.Sprintf(msg, args...))
	}
}

func (l *queryLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	fields := []zap.Field{
		zap.String("file", utils.FileWithLineNum()),
		zap.String("sql", sql),
		zap.Int64("rows", rows),
		zap.Duration("elapsed", elapsed),
	}

	switch {
	case err != nil && !errors.Is(err, logger.ErrRecordNotFound):
		l.log.Error("db.query_failed", append(fields, zap.Error(err))...)
	case l.slow > 0 && elapsed > l.slow:
		l.log.Warn("db.slow_query", append(fields, zap.Duration("threshold", l.slow))...)
	case l.traceSQL && l.level >= logger.Info:
		l.log.Debug("db.query", fields...)
	}
}
