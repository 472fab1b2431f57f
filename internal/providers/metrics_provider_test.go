package providers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"weschedule/internal/structures"
)

func TestHttpStatusBucket(t *testing.T) {
	assert.Equal(t, "1xx", httpStatusBucket(100))
	assert.Equal(t, "2xx", httpStatusBucket(200))
	assert.Equal(t, "2xx", httpStatusBucket(299))
	assert.Equal(t, "3xx", httpStatusBucket(301))
	assert.Equal(t, "4xx", httpStatusBucket(404))
	assert.Equal(t, "5xx", httpStatusBucket(500))
	assert.Equal(t, "5xx", httpStatusBucket(599))
}

func TestNewMetricsProvider_DisabledReturnsNoop(t *testing.T) {
	conf := &structures.Config{Metrics: structures.MetricsConfig{Enabled: false}}
	m := NewMetricsProvider(conf, nil)
	assert.IsType(t, &noopMetrics{}, m)

	// noop methods must not panic
	m.IncRequestsTotal("/coverage", 200)
	m.ObserveRequestDuration("/coverage", time.Millisecond)
	m.IncCacheHits()
	m.IncCacheMisses()
	m.ObservePersistenceDuration(time.Millisecond)
}
