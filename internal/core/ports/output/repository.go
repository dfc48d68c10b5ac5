package ports

import (
	"context"

	"markdown-viewer-service/internal/core/domain"
)

// ArtifactStore is time-bounded storage for rendered documents. Put mints the
// identifier; Get reports domain.ErrArtifactNotFound for missing and expired
// ids alike. Connectivity failures wrap domain.ErrBackendUnavailable.
type ArtifactStore interface {
	Put(ctx context.Context, artifact *domain.Artifact) (string, error)
	Get(ctx context.Context, id string) (*domain.Artifact, error)
	Count(ctx context.Context) (int, error)
}

// InstallationStore is durable per-tenant credential storage. Save is a
// whole-record upsert keyed by tenant id (last write wins).
type InstallationStore interface {
	Save(ctx context.Context, installation *domain.Installation) error
	Get(ctx context.Context, tenantID string) (*domain.Installation, error)
	Delete(ctx context.Context, tenantID string) error
	List(ctx context.Context) ([]*domain.Installation, error)
	Count(ctx context.Context) (int, error)
}
