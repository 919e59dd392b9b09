package telemetry

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newManualMeter(t *testing.T, name string) (metric.Meter, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	return provider.Meter(name), reader
}

func newMockGormDB(t *testing.T) *gorm.DB {
	t.Helper()
	mockDB, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: mockDB}), &gorm.Config{})
	require.NoError(t, err)
	return gormDB
}

func findMetric(rm metricdata.ResourceMetrics, name string) bool {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return true
			}
		}
	}
	return false
}

func TestDefaultDBMetricsConfig(t *testing.T) {
	cfg := DefaultDBMetricsConfig()

	assert.True(t, cfg.Enabled)
	assert.Equal(t, 200*time.Millisecond, cfg.SlowQueryThreshold)
	assert.Equal(t, 15*time.Second, cfg.PoolStatsInterval)
}

func TestNewDBMetrics(t *testing.T) {
	meter, _ := newManualMeter(t, "test")

	t.Run("creates all instruments", func(t *testing.T) {
		metrics, err := NewDBMetrics(meter, DefaultDBMetricsConfig(), zap.NewNop())
		require.NoError(t, err)

		assert.NotNil(t, metrics.poolConnections)
		assert.NotNil(t, metrics.poolConnectionsMax)
		assert.NotNil(t, metrics.queryTotal)
		assert.NotNil(t, metrics.queryDuration)
		assert.NotNil(t, metrics.slowQueryTotal)
	})

	t.Run("applies default config values", func(t *testing.T) {
		metrics, err := NewDBMetrics(meter, DBMetricsConfig{}, zap.NewNop())
		require.NoError(t, err)

		assert.Equal(t, 200*time.Millisecond, metrics.config.SlowQueryThreshold)
		assert.Equal(t, 15*time.Second, metrics.config.PoolStatsInterval)
	})

	t.Run("uses nop logger when nil", func(t *testing.T) {
		metrics, err := NewDBMetrics(meter, DefaultDBMetricsConfig(), nil)
		require.NoError(t, err)
		require.NotNil(t, metrics.logger)
	})
}

func TestDBMetrics_RecordQuery(t *testing.T) {
	ctx := context.Background()

	t.Run("records count and duration", func(t *testing.T) {
		meter, reader := newManualMeter(t, "test_query")
		metrics, err := NewDBMetrics(meter, DBMetricsConfig{
			Enabled:            true,
			SlowQueryThreshold: 200 * time.Millisecond,
		}, zap.NewNop())
		require.NoError(t, err)

		metrics.RecordQuery(ctx, "SELECT", "invoices", 50*time.Millisecond, nil)

		var rm metricdata.ResourceMetrics
		require.NoError(t, reader.Collect(ctx, &rm))

		assert.True(t, findMetric(rm, "db_query_total"))
		assert.True(t, findMetric(rm, "db_query_duration_seconds"))
	})

	t.Run("flags queries over the threshold", func(t *testing.T) {
		meter, reader := newManualMeter(t, "test_slow")
		metrics, err := NewDBMetrics(meter, DBMetricsConfig{
			Enabled:            true,
			SlowQueryThreshold: 100 * time.Millisecond,
		}, zap.NewNop())
		require.NoError(t, err)

		metrics.RecordQuery(ctx, "SELECT", "ledger_entries", 250*time.Millisecond, nil)

		var rm metricdata.ResourceMetrics
		require.NoError(t, reader.Collect(ctx, &rm))

		assert.True(t, findMetric(rm, "db_slow_query_total"))
	})

	t.Run("fast queries leave the slow counter at zero", func(t *testing.T) {
		meter, reader := newManualMeter(t, "test_fast")
		metrics, err := NewDBMetrics(meter, DBMetricsConfig{
			Enabled:            true,
			SlowQueryThreshold: 200 * time.Millisecond,
		}, zap.NewNop())
		require.NoError(t, err)

		metrics.RecordQuery(ctx, "SELECT", "payments", 50*time.Millisecond, nil)

		var rm metricdata.ResourceMetrics
		require.NoError(t, reader.Collect(ctx, &rm))

		for _, sm := range rm.ScopeMetrics {
			for _, m := range sm.Metrics {
				if m.Name == "db_slow_query_total" {
					sum := m.Data.(metricdata.Sum[int64])
					for _, dp := range sum.DataPoints {
						assert.Equal(t, int64(0), dp.Value)
					}
				}
			}
		}
	})

	t.Run("normalizes operation casing and empty values", func(t *testing.T) {
		meter, reader := newManualMeter(t, "test_ops")
		metrics, err := NewDBMetrics(meter, DefaultDBMetricsConfig(), zap.NewNop())
		require.NoError(t, err)

		metrics.RecordQuery(ctx, "select", "invoices", 10*time.Millisecond, nil)
		metrics.RecordQuery(ctx, "Insert", "invoices", 10*time.Millisecond, nil)
		metrics.RecordQuery(ctx, "", "invoices", 10*time.Millisecond, nil)

		var rm metricdata.ResourceMetrics
		require.NoError(t, reader.Collect(ctx, &rm))
		assert.True(t, findMetric(rm, "db_query_total"))
	})

	t.Run("slow query with empty table falls back to unknown", func(t *testing.T) {
		meter, reader := newManualMeter(t, "test_empty_table")
		metrics, err := NewDBMetrics(meter, DBMetricsConfig{
			Enabled:            true,
			SlowQueryThreshold: 50 * time.Millisecond,
		}, zap.NewNop())
		require.NoError(t, err)

		metrics.RecordQuery(ctx, "SELECT", "", 100*time.Millisecond, nil)

		var rm metricdata.ResourceMetrics
		require.NoError(t, reader.Collect(ctx, &rm))
		assert.True(t, findMetric(rm, "db_slow_query_total"))
	})
}

func TestDBMetrics_PoolStats(t *testing.T) {
	t.Run("collects pool stats periodically", func(t *testing.T) {
		meter, reader := newManualMeter(t, "test_pool")

		mockDB, _, err := sqlmock.New()
		require.NoError(t, err)
		defer mockDB.Close()

		metrics, err := NewDBMetrics(meter, DBMetricsConfig{
			Enabled:           true,
			PoolStatsInterval: 50 * time.Millisecond,
		}, zap.NewNop())
		require.NoError(t, err)

		metrics.SetSQLDB(mockDB)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		metrics.StartPoolStatsCollection(ctx)
		time.Sleep(100 * time.Millisecond)
		metrics.Stop()

		var rm metricdata.ResourceMetrics
		require.NoError(t, reader.Collect(context.Background(), &rm))

		assert.True(t, findMetric(rm, "db_pool_connections_max"))
		assert.True(t, findMetric(rm, "db_pool_connections"))
	})

	t.Run("does nothing when sqlDB not set", func(t *testing.T) {
		meter, _ := newManualMeter(t, "test_no_db")
		metrics, err := NewDBMetrics(meter, DefaultDBMetricsConfig(), zap.NewNop())
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		metrics.StartPoolStatsCollection(ctx)
		time.Sleep(50 * time.Millisecond)
		metrics.Stop()
	})

	t.Run("stops on context cancellation", func(t *testing.T) {
		meter, _ := newManualMeter(t, "test_ctx_cancel")

		mockDB, _, err := sqlmock.New()
		require.NoError(t, err)
		defer mockDB.Close()

		metrics, err := NewDBMetrics(meter, DBMetricsConfig{
			Enabled:           true,
			PoolStatsInterval: 1 * time.Second,
		}, zap.NewNop())
		require.NoError(t, err)

		metrics.SetSQLDB(mockDB)

		ctx, cancel := context.WithCancel(context.Background())
		metrics.StartPoolStatsCollection(ctx)
		cancel()
		metrics.Stop()
	})
}

func TestDBMetrics_Stop(t *testing.T) {
	meter, _ := newManualMeter(t, "test_stop")

	mockDB, _, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	metrics, err := NewDBMetrics(meter, DBMetricsConfig{
		Enabled:           true,
		PoolStatsInterval: 100 * time.Millisecond,
	}, zap.NewNop())
	require.NoError(t, err)

	metrics.SetSQLDB(mockDB)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics.StartPoolStatsCollection(ctx)

	done := make(chan struct{})
	go func() {
		metrics.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop() blocked for too long")
	}

	assert.NotPanics(t, func() { metrics.Stop() })
}

func TestDBMetricsPlugin(t *testing.T) {
	t.Run("plugin name", func(t *testing.T) {
		meter, _ := newManualMeter(t, "test")
		metrics, err := NewDBMetrics(meter, DefaultDBMetricsConfig(), zap.NewNop())
		require.NoError(t, err)

		plugin := NewDBMetricsPlugin(metrics, zap.NewNop())
		assert.Equal(t, "db_metrics", plugin.Name())
	})

	t.Run("initializes with gorm db", func(t *testing.T) {
		meter, _ := newManualMeter(t, "test")
		metrics, err := NewDBMetrics(meter, DefaultDBMetricsConfig(), zap.NewNop())
		require.NoError(t, err)

		plugin := NewDBMetricsPlugin(metrics, zap.NewNop())
		require.NoError(t, plugin.Initialize(newMockGormDB(t)))
	})
}

func TestDetectOperationType(t *testing.T) {
	tests := []struct {
		sql      string
		expected string
	}{
		{"SELECT * FROM invoices", "SELECT"},
		{"select id from invoices", "SELECT"},
		{"  SELECT id FROM accounts", "SELECT"},
		{"INSERT INTO ledger_entries (id) VALUES ('x')", "INSERT"},
		{"UPDATE invoices SET status = 'PAID'", "UPDATE"},
		{"DELETE FROM outbox_events WHERE id = 1", "DELETE"},
		{"CREATE TABLE invoices", "OTHER"},
		{"TRUNCATE TABLE payments", "OTHER"},
		{"", "OTHER"},
	}

	for _, tc := range tests {
		t.Run(tc.sql, func(t *testing.T) {
			assert.Equal(t, tc.expected, detectOperationType(tc.sql))
		})
	}
}

func TestRegisterDBMetrics(t *testing.T) {
	logger := zap.NewNop()

	t.Run("returns nil when disabled", func(t *testing.T) {
		metrics, err := RegisterDBMetrics(newMockGormDB(t), nil, DBMetricsConfig{Enabled: false}, logger)
		require.NoError(t, err)
		assert.Nil(t, metrics)
	})

	t.Run("returns nil when meter provider is nil", func(t *testing.T) {
		metrics, err := RegisterDBMetrics(newMockGormDB(t), nil, DBMetricsConfig{Enabled: true}, logger)
		require.NoError(t, err)
		assert.Nil(t, metrics)
	})

	t.Run("registers metrics when enabled", func(t *testing.T) {
		reader := sdkmetric.NewManualReader()
		sdkProvider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
		defer sdkProvider.Shutdown(context.Background())

		mp := &MeterProvider{
			provider: sdkProvider,
			logger:   logger,
			config:   MetricsConfig{Enabled: true},
		}

		metrics, err := RegisterDBMetrics(newMockGormDB(t), mp, DBMetricsConfig{
			Enabled:            true,
			SlowQueryThreshold: 200 * time.Millisecond,
			PoolStatsInterval:  15 * time.Second,
		}, logger)

		require.NoError(t, err)
		require.NotNil(t, metrics)
	})
}

func TestDBMetrics_ConcurrentRecordQuery(t *testing.T) {
	ctx := context.Background()
	meter, reader := newManualMeter(t, "test_concurrent")

	metrics, err := NewDBMetrics(meter, DefaultDBMetricsConfig(), zap.NewNop())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			operation := []string{"SELECT", "INSERT", "UPDATE", "DELETE"}[i%4]
			table := []string{"invoices", "ledger_entries", "payments", "accounts"}[i%4]
			metrics.RecordQuery(ctx, operation, table, time.Duration(i)*time.Millisecond, nil)
		}(i)
	}
	wg.Wait()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	assert.True(t, findMetric(rm, "db_query_total"))
}
