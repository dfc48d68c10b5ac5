package services

import (
	"context"
	"errors"
	"fmt"

	"markdown-viewer-service/internal/core/domain"
	"markdown-viewer-service/internal/core/ports/output"
)

// TokenSource names the rule that produced a resolved token.
type TokenSource string

const (
	TokenFromContext      TokenSource = "context"
	TokenFromInstallation TokenSource = "installation"
	TokenFromDefault      TokenSource = "default"
)

// TokenResolver picks the bot token used to act on behalf of a workspace.
type TokenResolver struct {
	installations ports.InstallationStore
	defaultToken  string
}

// NewTokenResolver builds a resolver. defaultToken is the single-workspace
// token and may be empty.
func NewTokenResolver(installations ports.InstallationStore, defaultToken string) *TokenResolver {
	return &TokenResolver{installations: installations, defaultToken: defaultToken}
}

// Resolve applies, first match wins: the token already attached by the
// transport, the installation record for tenantID, the default token. It
// returns domain.ErrCredentialUnresolved when all three are empty. A registry
// failure other than not-found is returned as is.
func (r *TokenResolver) Resolve(ctx context.Context, contextToken, tenantID string) (string, TokenSource, error) {
	if contextToken != "" {
		return contextToken, TokenFromContext, nil
	}

	if tenantID != "" && r.installations != nil {
		inst, err := r.installations.Get(ctx, tenantID)
		switch {
		case err == nil && inst.BotToken != "":
			return inst.BotToken, TokenFromInstallation, nil
		case err != nil && !errors.Is(err, domain.ErrInstallationNotFound):
			return "", "", fmt.Errorf("look up installation %s: %w", tenantID, err)
		}
	}

	if r.defaultToken != "" {
		return r.defaultToken, TokenFromDefault, nil
	}
	return "", "", domain.ErrCredentialUnresolved
}
