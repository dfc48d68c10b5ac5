package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"markdown-viewer-service/internal/core/domain"
)

// setupPool connects to TEST_DATABASE_URL and starts from an empty table.
func setupPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, EnsureSchema(ctx, pool))
	// Running twice must be harmless.
	require.NoError(t, EnsureSchema(ctx, pool))

	_, err = pool.Exec(ctx, `TRUNCATE slack_installation`)
	require.NoError(t, err)
	return pool
}

func TestInstallationRepo_SaveGetUpsert(t *testing.T) {
	repo := NewInstallationRepository(setupPool(t))
	ctx := context.Background()
	installedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Save(ctx, &domain.Installation{
		TenantID: "T1", TenantName: "Acme", BotToken: "xoxb-old", InstalledAt: installedAt,
	}))
	require.NoError(t, repo.Save(ctx, &domain.Installation{
		TenantID: "T1", TenantName: "Acme Inc", BotToken: "xoxb-new", BotID: "B1", InstalledAt: installedAt,
	}))

	got, err := repo.Get(ctx, "T1")
	require.NoError(t, err)
	assert.Equal(t, "xoxb-new", got.BotToken)
	assert.Equal(t, "Acme Inc", got.TenantName)
	assert.Equal(t, "B1", got.BotID)
	assert.True(t, installedAt.Equal(got.InstalledAt))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestInstallationRepo_DeleteAndList(t *testing.T) {
	repo := NewInstallationRepository(setupPool(t))
	ctx := context.Background()

	for _, id := range []string{"T2", "T1", "T3"} {
		require.NoError(t, repo.Save(ctx, &domain.Installation{TenantID: id, BotToken: "xoxb-" + id, InstalledAt: time.Now()}))
	}
	require.NoError(t, repo.Delete(ctx, "T2"))
	require.NoError(t, repo.Delete(ctx, "T2"))

	_, err := repo.Get(ctx, "T2")
	assert.ErrorIs(t, err, domain.ErrInstallationNotFound)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "T1", list[0].TenantID)
	assert.Equal(t, "T3", list[1].TenantID)
}

func TestInstallationRepo_RejectsInvalid(t *testing.T) {
	// Validation happens before any query, so no database is needed.
	repo := NewInstallationRepository(nil)
	err := repo.Save(context.Background(), &domain.Installation{TenantID: "T1"})
	assert.ErrorIs(t, err, domain.ErrInvalidBotToken)
}
