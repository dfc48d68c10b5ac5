package domain

import "time"

// Installation is the per-tenant credential record produced by a completed
// OAuth install. A re-install replaces the record wholesale.
type Installation struct {
	TenantID    string    `json:"team_id"`
	TenantName  string    `json:"team_name"`
	BotToken    string    `json:"bot_token"`
	BotUserID   string    `json:"bot_user_id"`
	BotID       string    `json:"bot_id"`
	InstalledAt time.Time `json:"installed_at"`
}

func (i *Installation) Validate() error {
	if i.TenantID == "" {
		return ErrInvalidTenantID
	}
	if i.BotToken == "" {
		return ErrInvalidBotToken
	}
	return nil
}
