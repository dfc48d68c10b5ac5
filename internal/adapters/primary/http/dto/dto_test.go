package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"markdown-viewer-service/internal/core/domain"
	"markdown-viewer-service/internal/core/services"
)

func TestToInstallationResponse_OmitsToken(t *testing.T) {
	inst := &domain.Installation{
		TenantID:    "T1",
		TenantName:  "Acme",
		BotToken:    "xoxb-secret",
		BotUserID:   "U1",
		BotID:       "B1",
		InstalledAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	raw, err := json.Marshal(ToInstallationResponse(inst))
	require.NoError(t, err)

	assert.NotContains(t, string(raw), "xoxb-secret")
	assert.Contains(t, string(raw), `"installed_at":"2026-01-02T03:04:05Z"`)
	assert.Contains(t, string(raw), `"installed":true`)
}

func TestToHealthResponse(t *testing.T) {
	files := 3
	stats := &services.Stats{StoredFiles: &files, Uptime: 1500 * time.Millisecond}

	resp := ToHealthResponse(stats, false)
	assert.Equal(t, HealthDegraded, resp.Status)
	assert.Equal(t, 3, *resp.StoredFiles)
	assert.Nil(t, resp.Installations)
	assert.Equal(t, 1.5, resp.UptimeSeconds)

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"installations":null`)
}
