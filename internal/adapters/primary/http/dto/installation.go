package dto

import (
	"time"

	"markdown-viewer-service/internal/core/domain"
)

// InstallationResponse never carries the bot token.
type InstallationResponse struct {
	Installed   bool   `json:"installed"`
	TeamID      string `json:"team_id"`
	TeamName    string `json:"team_name,omitempty"`
	BotUserID   string `json:"bot_user_id,omitempty"`
	BotID       string `json:"bot_id,omitempty"`
	InstalledAt string `json:"installed_at,omitempty"`
}

func ToInstallationResponse(inst *domain.Installation) InstallationResponse {
	resp := InstallationResponse{
		Installed: true,
		TeamID:    inst.TenantID,
		TeamName:  inst.TenantName,
		BotUserID: inst.BotUserID,
		BotID:     inst.BotID,
	}
	if !inst.InstalledAt.IsZero() {
		resp.InstalledAt = inst.InstalledAt.UTC().Format(time.RFC3339)
	}
	return resp
}
