package services

import (
	"context"
	"net/url"
	"strings"

	log "github.com/sirupsen/logrus"

	"markdown-viewer-service/internal/core/domain"
	"markdown-viewer-service/internal/core/ports/output"
)

// DefaultAuthorizeURL is Slack's OAuth v2 consent page.
const DefaultAuthorizeURL = "https://slack.com/oauth/v2/authorize"

// OAuthSettings configures the install link.
type OAuthSettings struct {
	ClientID     string
	Scopes       []string
	RedirectURL  string
	AuthorizeURL string
}

// InstallationService manages per-workspace credential records.
type InstallationService struct {
	store     ports.InstallationStore
	exchanger ports.OAuthExchanger
	oauth     OAuthSettings
}

// NewInstallationService builds the service. exchanger may be nil when the
// deployment serves a single workspace; install operations then report
// domain.ErrOAuthNotConfigured.
func NewInstallationService(store ports.InstallationStore, exchanger ports.OAuthExchanger, oauth OAuthSettings) *InstallationService {
	if oauth.AuthorizeURL == "" {
		oauth.AuthorizeURL = DefaultAuthorizeURL
	}
	return &InstallationService{store: store, exchanger: exchanger, oauth: oauth}
}

func (s *InstallationService) OAuthEnabled() bool {
	return s.exchanger != nil && s.oauth.ClientID != ""
}

// InstallURL builds the consent URL carrying state.
func (s *InstallationService) InstallURL(state string) (string, error) {
	if !s.OAuthEnabled() {
		return "", domain.ErrOAuthNotConfigured
	}
	params := url.Values{}
	params.Set("client_id", s.oauth.ClientID)
	params.Set("scope", strings.Join(s.oauth.Scopes, ","))
	params.Set("redirect_uri", s.oauth.RedirectURL)
	params.Set("state", state)
	return s.oauth.AuthorizeURL + "?" + params.Encode(), nil
}

// Complete exchanges an authorization code and saves the resulting record,
// replacing any earlier install of the same workspace.
func (s *InstallationService) Complete(ctx context.Context, code string) (*domain.Installation, error) {
	if !s.OAuthEnabled() {
		return nil, domain.ErrOAuthNotConfigured
	}
	if code == "" {
		return nil, domain.ErrOAuthCodeMissing
	}

	inst, err := s.exchanger.Exchange(ctx, code, s.oauth.RedirectURL)
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, inst); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"team_id":   inst.TenantID,
		"team_name": inst.TenantName,
	}).Info("workspace installation saved")
	return inst, nil
}

func (s *InstallationService) Lookup(ctx context.Context, tenantID string) (*domain.Installation, error) {
	if tenantID == "" {
		return nil, domain.ErrInvalidTenantID
	}
	return s.store.Get(ctx, tenantID)
}

func (s *InstallationService) List(ctx context.Context) ([]*domain.Installation, error) {
	return s.store.List(ctx)
}

// Revoke removes a workspace's record after an uninstall or token revocation.
func (s *InstallationService) Revoke(ctx context.Context, tenantID string) error {
	if tenantID == "" {
		return domain.ErrInvalidTenantID
	}
	if err := s.store.Delete(ctx, tenantID); err != nil {
		return err
	}
	log.WithField("team_id", tenantID).Info("workspace installation revoked")
	return nil
}
