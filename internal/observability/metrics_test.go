package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricsRecordRequest(t *testing.T) {
	metrics := NewMetrics()

	metrics.RecordRequest("/auth/login", "POST", 200, 5*time.Millisecond)
	metrics.RecordRequest("/auth/login", "POST", 200, 7*time.Millisecond)
	metrics.RecordRequest("/auth/login", "POST", 401, time.Millisecond)

	assert.Equal(t, int64(2), metrics.RequestCount("/auth/login", "POST", 200))
	assert.Equal(t, int64(1), metrics.RequestCount("/auth/login", "POST", 401))
	assert.Equal(t, int64(0), metrics.RequestCount("/auth/check", "GET", 200))
}

func TestMetricsNilReceiver(t *testing.T) {
	var metrics *Metrics

	// Nil metrics are a no-op, not a crash.
	metrics.RecordRequest("/x", "GET", 200, 0)
	metrics.RecordError("/x", "GET", 500)
	assert.Equal(t, int64(0), metrics.RequestCount("/x", "GET", 200))
}
