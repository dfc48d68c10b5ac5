package prometheus

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"markdown-viewer-service/internal/core/domain"
)

func TestObserver_RecordIngest(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := NewObserver("test", reg)
	require.NoError(t, err)

	obs.RecordIngest(domain.IngestDone, "", 20*time.Millisecond)
	obs.RecordIngest(domain.IngestRejected, "unsupported_type", time.Millisecond)
	obs.RecordIngest(domain.IngestRejected, "unsupported_type", time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(obs.events.WithLabelValues("done", "")))
	assert.Equal(t, 2.0, testutil.ToFloat64(obs.events.WithLabelValues("rejected", "unsupported_type")))
}

func TestObserver_ReRegisterReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewObserver("test", reg)
	require.NoError(t, err)
	second, err := NewObserver("test", reg)
	require.NoError(t, err)

	first.RecordIngest(domain.IngestFailed, "download", time.Second)
	assert.Equal(t, 1.0, testutil.ToFloat64(second.events.WithLabelValues("failed", "download")))
}

func TestObserver_NilIsNoop(t *testing.T) {
	var obs *Observer
	assert.NotPanics(t, func() { obs.RecordIngest(domain.IngestDone, "", time.Second) })
}
