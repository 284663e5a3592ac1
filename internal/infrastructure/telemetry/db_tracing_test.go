package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type gauge struct {
	ID   int
	Name string
}

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.Exec("CREATE TABLE gauges (id INTEGER PRIMARY KEY, name TEXT)").Error)
	return db
}

func TestRegisterDBTracing_Disabled(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, RegisterDBTracing(db, DBTracingConfig{}, nil))
	assert.Nil(t, db.Callback().Query().Get("forms:slow_query:query"))
}

func TestRegisterDBTracing_LogsSlowQueries(t *testing.T) {
	installRecorder(t)
	db := openSQLite(t)
	core, logs := observer.New(zapcore.WarnLevel)

	require.NoError(t, RegisterDBTracing(db, DBTracingConfig{
		Enabled:         true,
		SlowQueryThresh: time.Nanosecond,
		DBName:          "forms",
	}, zap.New(core)))

	require.NoError(t, db.WithContext(context.Background()).Create(&gauge{ID: 1, Name: "a"}).Error)
	var got []gauge
	require.NoError(t, db.WithContext(context.Background()).Find(&got).Error)

	slow := logs.FilterMessage("slow query").All()
	require.GreaterOrEqual(t, len(slow), 2)
	assert.Equal(t, "gauges", slow[0].ContextMap()["table"])
}

func TestRegisterDBPoolMetrics(t *testing.T) {
	db := openSQLite(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer provider.Shutdown(context.Background())

	reg, err := RegisterDBPoolMetrics(provider.Meter("db"), sqlDB)
	require.NoError(t, err)
	defer reg.Unregister()

	got := collect(t, reader)
	maxOpen, ok := got["db.pool.connections.max"].Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, maxOpen.DataPoints, 1)
	assert.Equal(t, int64(1), maxOpen.DataPoints[0].Value)

	conns, ok := got["db.pool.connections"].Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	assert.Len(t, conns.DataPoints, 2)
}
