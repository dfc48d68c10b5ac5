package services

import (
	"context"
	"errors"
	"time"

	"markdown-viewer-service/internal/core/domain"
	"markdown-viewer-service/internal/core/ports/output"
)

// Stats is a best-effort snapshot for the health endpoint. A nil count means
// the backend could not answer; the matching error is joined into the error
// returned by ViewerService.Stats.
type Stats struct {
	StoredFiles   *int
	Installations *int
	Uptime        time.Duration
}

// ViewerService serves the read side: artifact pages and health counts.
type ViewerService struct {
	artifacts     ports.ArtifactStore
	installations ports.InstallationStore
	startedAt     time.Time
	now           func() time.Time
}

func NewViewerService(artifacts ports.ArtifactStore, installations ports.InstallationStore) *ViewerService {
	return &ViewerService{
		artifacts:     artifacts,
		installations: installations,
		startedAt:     time.Now(),
		now:           time.Now,
	}
}

// Get returns a live artifact. Ids that cannot have been minted are reported
// as not found without touching the backend.
func (s *ViewerService) Get(ctx context.Context, id string) (*domain.Artifact, error) {
	if !domain.ValidArtifactID(id) {
		return nil, domain.ErrArtifactNotFound
	}
	return s.artifacts.Get(ctx, id)
}

func (s *ViewerService) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{Uptime: s.now().Sub(s.startedAt)}

	var errs []error
	if n, err := s.artifacts.Count(ctx); err != nil {
		errs = append(errs, err)
	} else {
		stats.StoredFiles = &n
	}
	if n, err := s.installations.Count(ctx); err != nil {
		errs = append(errs, err)
	} else {
		stats.Installations = &n
	}
	return stats, errors.Join(errs...)
}
