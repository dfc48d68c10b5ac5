package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	goredis "github.com/redis/go-redis/v9"

	"markdown-viewer-service/internal/core/domain"
	output "markdown-viewer-service/internal/core/ports/output"
)

type installationStore struct {
	client goredis.UniversalClient
}

// NewInstallationStore keeps each installation under "workspace:<team id>"
// without expiry and tracks team ids in the "workspaces" set.
func NewInstallationStore(client goredis.UniversalClient) output.InstallationStore {
	return &installationStore{client: client}
}

func (s *installationStore) Save(ctx context.Context, installation *domain.Installation) error {
	if err := installation.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(installation)
	if err != nil {
		return fmt.Errorf("encode installation: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Set(ctx, installationKeyPrefix+installation.TenantID, data, 0)
		pipe.SAdd(ctx, installationSetKey, installation.TenantID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save installation: %w: %w", domain.ErrBackendUnavailable, err)
	}
	return nil
}

func (s *installationStore) Get(ctx context.Context, tenantID string) (*domain.Installation, error) {
	data, err := s.client.Get(ctx, installationKeyPrefix+tenantID).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, domain.ErrInstallationNotFound
		}
		return nil, fmt.Errorf("get installation: %w: %w", domain.ErrBackendUnavailable, err)
	}

	installation := &domain.Installation{}
	if err := json.Unmarshal(data, installation); err != nil {
		return nil, fmt.Errorf("decode installation %s: %w", tenantID, err)
	}
	return installation, nil
}

func (s *installationStore) Delete(ctx context.Context, tenantID string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Del(ctx, installationKeyPrefix+tenantID)
		pipe.SRem(ctx, installationSetKey, tenantID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete installation: %w: %w", domain.ErrBackendUnavailable, err)
	}
	return nil
}

func (s *installationStore) List(ctx context.Context) ([]*domain.Installation, error) {
	ids, err := s.client.SMembers(ctx, installationSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list installation ids: %w: %w", domain.ErrBackendUnavailable, err)
	}
	if len(ids) == 0 {
		return []*domain.Installation{}, nil
	}
	sort.Strings(ids)

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = installationKeyPrefix + id
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("list installations: %w: %w", domain.ErrBackendUnavailable, err)
	}

	out := make([]*domain.Installation, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// Set member without a record; a concurrent Delete is in flight.
			continue
		}
		installation := &domain.Installation{}
		if err := json.Unmarshal([]byte(raw), installation); err != nil {
			return nil, fmt.Errorf("decode installation %s: %w", ids[i], err)
		}
		out = append(out, installation)
	}
	return out, nil
}

func (s *installationStore) Count(ctx context.Context) (int, error) {
	n, err := s.client.SCard(ctx, installationSetKey).Result()
	if err != nil {
		return 0, fmt.Errorf("count installations: %w: %w", domain.ErrBackendUnavailable, err)
	}
	return int(n), nil
}
