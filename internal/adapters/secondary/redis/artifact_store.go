package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"markdown-viewer-service/internal/core/domain"
	output "markdown-viewer-service/internal/core/ports/output"
)

type artifactStore struct {
	client goredis.UniversalClient
	ttl    time.Duration
	now    func() time.Time
}

// NewArtifactStore stores artifacts under "file:<id>" with a per-key expiry of
// ttl. Callers pass whole seconds; see config.StorageConfig.TTLSeconds.
func NewArtifactStore(client goredis.UniversalClient, ttl time.Duration) output.ArtifactStore {
	return newArtifactStore(client, ttl, time.Now)
}

func newArtifactStore(client goredis.UniversalClient, ttl time.Duration, now func() time.Time) *artifactStore {
	return &artifactStore{client: client, ttl: ttl, now: now}
}

func (s *artifactStore) Put(ctx context.Context, artifact *domain.Artifact) (string, error) {
	id, err := domain.NewArtifactID()
	if err != nil {
		return "", err
	}

	record := *artifact
	record.ID = id
	record.CreatedAt = s.now()

	data, err := json.Marshal(&record)
	if err != nil {
		return "", fmt.Errorf("encode artifact: %w", err)
	}

	now := strconv.FormatInt(record.CreatedAt.Unix(), 10)
	expiresAt := record.CreatedAt.Add(s.ttl).Unix()
	// Every write prunes expired index members so the index tracks live keys
	// even when Count is never called.
	_, err = s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, artifactIndexKey, "-inf", now)
		pipe.Set(ctx, artifactKeyPrefix+id, data, s.ttl)
		pipe.ZAdd(ctx, artifactIndexKey, goredis.Z{Score: float64(expiresAt), Member: id})
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("put artifact: %w: %w", domain.ErrBackendUnavailable, err)
	}
	return id, nil
}

func (s *artifactStore) Get(ctx context.Context, id string) (*domain.Artifact, error) {
	data, err := s.client.Get(ctx, artifactKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, domain.ErrArtifactNotFound
		}
		return nil, fmt.Errorf("get artifact: %w: %w", domain.ErrBackendUnavailable, err)
	}

	artifact := &domain.Artifact{}
	if err := json.Unmarshal(data, artifact); err != nil {
		return nil, fmt.Errorf("decode artifact %s: %w", id, err)
	}
	// Redis evicts on its own clock; never hand out a logically expired record.
	if artifact.ExpiredAt(s.now(), s.ttl) {
		return nil, domain.ErrArtifactNotFound
	}
	return artifact, nil
}

// Count prunes index members whose expiry has passed and returns the rest.
func (s *artifactStore) Count(ctx context.Context) (int, error) {
	now := strconv.FormatInt(s.now().Unix(), 10)

	var card *goredis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, artifactIndexKey, "-inf", now)
		card = pipe.ZCard(ctx, artifactIndexKey)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("count artifacts: %w: %w", domain.ErrBackendUnavailable, err)
	}
	return int(card.Val()), nil
}
