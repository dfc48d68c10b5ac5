package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"markdown-viewer-service/internal/core/domain"
	output "markdown-viewer-service/internal/core/ports/output"
)

const installationSchema = `
	CREATE TABLE IF NOT EXISTS slack_installation (
		team_id      TEXT PRIMARY KEY,
		team_name    TEXT NOT NULL DEFAULT '',
		bot_token    TEXT NOT NULL,
		bot_user_id  TEXT NOT NULL DEFAULT '',
		bot_id       TEXT NOT NULL DEFAULT '',
		installed_at TIMESTAMPTZ NOT NULL
	)
`

type installationRepo struct {
	pool *pgxpool.Pool
}

// NewInstallationRepository creates a Postgres-backed InstallationStore.
func NewInstallationRepository(pool *pgxpool.Pool) output.InstallationStore {
	return &installationRepo{pool: pool}
}

// EnsureSchema creates the installation table when it does not exist.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, installationSchema); err != nil {
		return fmt.Errorf("create installation schema: %w", err)
	}
	return nil
}

func (r *installationRepo) Save(ctx context.Context, inst *domain.Installation) error {
	if err := inst.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO slack_installation
			(team_id, team_name, bot_token, bot_user_id, bot_id, installed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (team_id) DO UPDATE SET
			team_name = EXCLUDED.team_name,
			bot_token = EXCLUDED.bot_token,
			bot_user_id = EXCLUDED.bot_user_id,
			bot_id = EXCLUDED.bot_id,
			installed_at = EXCLUDED.installed_at
	`

	_, err := r.pool.Exec(ctx, query,
		inst.TenantID, inst.TenantName, inst.BotToken,
		inst.BotUserID, inst.BotID, inst.InstalledAt,
	)
	if err != nil {
		return fmt.Errorf("save installation: %w: %w", domain.ErrBackendUnavailable, err)
	}
	return nil
}

func (r *installationRepo) Get(ctx context.Context, tenantID string) (*domain.Installation, error) {
	query := `
		SELECT team_id, team_name, bot_token, bot_user_id, bot_id, installed_at
		FROM slack_installation
		WHERE team_id = $1
	`

	inst, err := r.scanInstallation(r.pool.QueryRow(ctx, query, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInstallationNotFound
		}
		return nil, fmt.Errorf("get installation: %w: %w", domain.ErrBackendUnavailable, err)
	}
	return inst, nil
}

func (r *installationRepo) Delete(ctx context.Context, tenantID string) error {
	query := `DELETE FROM slack_installation WHERE team_id = $1`

	if _, err := r.pool.Exec(ctx, query, tenantID); err != nil {
		return fmt.Errorf("delete installation: %w: %w", domain.ErrBackendUnavailable, err)
	}
	return nil
}

func (r *installationRepo) List(ctx context.Context) ([]*domain.Installation, error) {
	query := `
		SELECT team_id, team_name, bot_token, bot_user_id, bot_id, installed_at
		FROM slack_installation
		ORDER BY team_id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list installations: %w: %w", domain.ErrBackendUnavailable, err)
	}
	defer rows.Close()

	out := []*domain.Installation{}
	for rows.Next() {
		inst, err := r.scanInstallation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan installation row: %w", err)
		}
		out = append(out, inst)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate installation rows: %w: %w", domain.ErrBackendUnavailable, err)
	}
	return out, nil
}

func (r *installationRepo) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM slack_installation`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count installations: %w: %w", domain.ErrBackendUnavailable, err)
	}
	return total, nil
}

func (r *installationRepo) scanInstallation(row pgx.Row) (*domain.Installation, error) {
	inst := &domain.Installation{}
	err := row.Scan(
		&inst.TenantID, &inst.TenantName, &inst.BotToken,
		&inst.BotUserID, &inst.BotID, &inst.InstalledAt,
	)
	if err != nil {
		return nil, err
	}
	return inst, nil
}
