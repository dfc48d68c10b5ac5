package prometheus

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"markdown-viewer-service/internal/core/domain"
	ports "markdown-viewer-service/internal/core/ports/output"
)

const defaultNamespace = "markdown_viewer"

// Observer exports ingestion outcomes to Prometheus.
type Observer struct {
	events   *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

var _ ports.IngestObserver = (*Observer)(nil)

// NewObserver registers the ingestion collectors on reg (the default
// registerer when nil). Re-registering reuses the existing collectors.
func NewObserver(namespace string, reg prometheus.Registerer) (*Observer, error) {
	if namespace == "" {
		namespace = defaultNamespace
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ingest_events_total",
		Help:      "File shared events by terminal state and reason.",
	}, []string{"state", "reason"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "ingest_duration_seconds",
		Help:      "Time from receipt to terminal state of a file shared event.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"state"})

	if err := reg.Register(events); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, fmt.Errorf("register ingest counter: %w", err)
		}
		events = are.ExistingCollector.(*prometheus.CounterVec)
	}
	if err := reg.Register(duration); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, fmt.Errorf("register ingest histogram: %w", err)
		}
		duration = are.ExistingCollector.(*prometheus.HistogramVec)
	}

	return &Observer{events: events, duration: duration}, nil
}

func (o *Observer) RecordIngest(state domain.IngestState, reason string, d time.Duration) {
	if o == nil {
		return
	}
	o.events.WithLabelValues(string(state), reason).Inc()
	o.duration.WithLabelValues(string(state)).Observe(d.Seconds())
}
