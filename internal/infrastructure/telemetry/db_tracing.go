package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds database tracing settings
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool // include bound variables in db.statement
	SlowQueryThresh time.Duration
	DBName          string
}

type queryStartKey struct{}

// RegisterDBTracing installs the otelgorm plugin and a callback pair that
// flags slow statements on the span and in the log.
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = 200 * time.Millisecond
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBName)}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	before := func(tx *gorm.DB) {
		if tx.Statement.Context != nil {
			tx.Statement.Context = context.WithValue(tx.Statement.Context, queryStartKey{}, time.Now())
		}
	}
	after := slowQueryCallback(cfg.SlowQueryThresh, logger)

	cb := db.Callback()
	if err := errors.Join(
		cb.Create().Before("gorm:create").Register("forms:timing:create", before),
		cb.Query().Before("gorm:query").Register("forms:timing:query", before),
		cb.Update().Before("gorm:update").Register("forms:timing:update", before),
		cb.Delete().Before("gorm:delete").Register("forms:timing:delete", before),
		cb.Raw().Before("gorm:raw").Register("forms:timing:raw", before),
		cb.Create().After("gorm:create").Register("forms:slow_query:create", after),
		cb.Query().After("gorm:query").Register("forms:slow_query:query", after),
		cb.Update().After("gorm:update").Register("forms:slow_query:update", after),
		cb.Delete().After("gorm:delete").Register("forms:slow_query:delete", after),
		cb.Raw().After("gorm:raw").Register("forms:slow_query:raw", after),
	); err != nil {
		return err
	}

	logger.Info("database tracing enabled",
		zap.Bool("log_full_sql", cfg.LogFullSQL),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThresh),
	)
	return nil
}

func slowQueryCallback(threshold time.Duration, logger *zap.Logger) func(*gorm.DB) {
	return func(tx *gorm.DB) {
		ctx := tx.Statement.Context
		if ctx == nil {
			return
		}
		start, ok := ctx.Value(queryStartKey{}).(time.Time)
		if !ok {
			return
		}
		elapsed := time.Since(start)
		if elapsed < threshold {
			return
		}

		span := trace.SpanFromContext(ctx)
		if span.IsRecording() {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
		}
		fields := []zap.Field{
			zap.String("table", tx.Statement.Table),
			zap.Duration("elapsed", elapsed),
			zap.Int64("rows", tx.Statement.RowsAffected),
		}
		if tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			fields = append(fields, zap.Error(tx.Error))
		}
		if id := TraceID(ctx); id != "" {
			fields = append(fields, zap.String("trace_id", id))
		}
		logger.Warn("slow query", fields...)
	}
}
