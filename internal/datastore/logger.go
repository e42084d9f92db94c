// Package datastore keeps a history of synchronization runs in SQLite.
package datastore

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ricki-pierce/integrating4Fears/internal/errors"
	"github.com/ricki-pierce/integrating4Fears/internal/logger"
	"github.com/ricki-pierce/integrating4Fears/internal/observability/metrics"
)

// GetLogger returns the datastore package logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("datastore")
}

// sqlUnknown is used when the SQL operation or table cannot be determined.
const sqlUnknown = "unknown"

var (
	selectPattern = regexp.MustCompile(`(?i)^\s*SELECT\s+.*?\s+FROM\s+['"\x60]?(\w+)['"\x60]?`)
	insertPattern = regexp.MustCompile(`(?i)^\s*INSERT\s+INTO\s+['"\x60]?(\w+)['"\x60]?`)
	updatePattern = regexp.MustCompile(`(?i)^\s*UPDATE\s+['"\x60]?(\w+)['"\x60]?`)
	deletePattern = regexp.MustCompile(`(?i)^\s*DELETE\s+FROM\s+['"\x60]?(\w+)['"\x60]?`)
	createPattern = regexp.MustCompile(`(?i)^\s*CREATE\s+(?:UNIQUE\s+)?(?:TABLE|INDEX)\s+(?:IF\s+NOT\s+EXISTS\s+)?['"\x60]?(\w+)['"\x60]?`)
)

// parseSQLOperation extracts the operation type and table name from a statement.
func parseSQLOperation(sql string) (operation, table string) {
	sql = strings.TrimSpace(sql)

	for _, p := range []struct {
		op string
		re *regexp.Regexp
	}{
		{"select", selectPattern},
		{"insert", insertPattern},
		{"update", updatePattern},
		{"delete", deletePattern},
		{"create", createPattern},
	} {
		if m := p.re.FindStringSubmatch(sql); len(m) > 1 {
			return p.op, m[1]
		}
	}
	return sqlUnknown, sqlUnknown
}

// metricOperation maps a parsed SQL operation to a metrics operation name.
func metricOperation(operation string) string {
	switch operation {
	case "insert":
		return metrics.OpDbInsert
	case "update":
		return metrics.OpDbUpdate
	case "delete":
		return metrics.OpDbDelete
	case "create":
		return metrics.OpDbSchema
	default:
		return metrics.OpDbQuery
	}
}

// categorizeError classifies database errors for metrics.
func categorizeError(err error) string {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "unique constraint"):
		return "constraint_violation"
	case strings.Contains(msg, "foreign key"):
		return "foreign_key_violation"
	case strings.Contains(msg, "not null"):
		return "null_violation"
	case strings.Contains(msg, "database is locked"):
		return "database_locked"
	case strings.Contains(msg, "no such table"), strings.Contains(msg, "no such column"):
		return "schema"
	default:
		return "other"
	}
}

// GormLogger routes GORM's diagnostics into the structured logger and records
// query metrics.
type GormLogger struct {
	SlowThreshold time.Duration
	LogLevel      gormlogger.LogLevel
	log           logger.Logger
	metrics       metrics.Recorder
}

// NewGormLogger creates a GORM logger writing to log. rec may be nil.
func NewGormLogger(log logger.Logger, rec metrics.Recorder, slowThreshold time.Duration, level gormlogger.LogLevel) *GormLogger {
	if rec == nil {
		rec = metrics.NoOpRecorder{}
	}
	return &GormLogger{
		SlowThreshold: slowThreshold,
		LogLevel:      level,
		log:           log,
		metrics:       rec,
	}
}

// LogMode implements gormlogger.Interface
func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.LogLevel = level
	return &clone
}

// Info implements gormlogger.Interface
func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.LogLevel >= gormlogger.Info {
		l.log.WithContext(ctx).Info(fmt.Sprintf(msg, data...))
	}
}

// Warn implements gormlogger.Interface
func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.LogLevel >= gormlogger.Warn {
		l.log.WithContext(ctx).Warn(fmt.Sprintf(msg, data...))
	}
}

// Error implements gormlogger.Interface
func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.LogLevel >= gormlogger.Error {
		l.log.WithContext(ctx).Error("gorm error", logger.String("detail", fmt.Sprintf(msg, data...)))
		l.metrics.RecordError("gorm_internal", "gorm_error")
	}
}

// Trace implements gormlogger.Interface
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	elapsed := time.Since(begin)
	sql, rows := fc()
	operation, table := parseSQLOperation(sql)
	op := metricOperation(operation)

	failed := err != nil && !errors.Is(err, gorm.ErrRecordNotFound)
	l.metrics.RecordDuration(op, elapsed.Seconds())
	if failed {
		l.metrics.RecordOperation(op, metrics.StatusError)
		l.metrics.RecordError(op, categorizeError(err))
	} else {
		l.metrics.RecordOperation(op, metrics.StatusSuccess)
	}

	if l.LogLevel <= gormlogger.Silent {
		return
	}
	log := l.log.WithContext(ctx)

	switch {
	case failed && l.LogLevel >= gormlogger.Error:
		log.Error("database query failed",
			logger.Error(err),
			logger.String("operation", operation),
			logger.String("table", table),
			logger.Duration("duration", elapsed),
			logger.Int64("rows_affected", rows))
	case l.SlowThreshold != 0 && elapsed > l.SlowThreshold && l.LogLevel >= gormlogger.Warn:
		log.Warn("slow query detected",
			logger.String("sql", sql),
			logger.Duration("duration", elapsed),
			logger.Duration("threshold", l.SlowThreshold))
	case l.LogLevel >= gormlogger.Info:
		log.Debug("query executed",
			logger.String("operation", operation),
			logger.String("table", table),
			logger.Duration("duration", elapsed),
			logger.Int64("rows_affected", rows))
	}
}

// dbError creates a categorized database error with context pairs.
func dbError(err error, operation string, kv ...any) error {
	b := errors.New(err).
		Component("datastore").
		Category(errors.CategoryDatabase).
		Context("operation", operation)
	for i := 0; i+1 < len(kv); i += 2 {
		if key, ok := kv[i].(string); ok {
			b = b.Context(key, kv[i+1])
		}
	}
	return b.Build()
}
