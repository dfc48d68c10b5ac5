package ports

import (
	"time"

	"markdown-viewer-service/internal/core/domain"
)

// IngestObserver records the terminal outcome of each ingested event.
type IngestObserver interface {
	RecordIngest(state domain.IngestState, reason string, duration time.Duration)
}
