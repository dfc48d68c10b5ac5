package slack

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/slack-go/slack"

	"markdown-viewer-service/internal/core/domain"
	output "markdown-viewer-service/internal/core/ports/output"
)

// OAuthExchanger completes the Slack OAuth v2 install flow.
type OAuthExchanger struct {
	client       *Client
	clientID     string
	clientSecret string
	now          func() time.Time
}

var _ output.OAuthExchanger = (*OAuthExchanger)(nil)

func NewOAuthExchanger(client *Client, clientID, clientSecret string) *OAuthExchanger {
	return &OAuthExchanger{
		client:       client,
		clientID:     clientID,
		clientSecret: clientSecret,
		now:          time.Now,
	}
}

// Exchange trades code for a bot token and resolves the bot id with auth.test.
func (o *OAuthExchanger) Exchange(ctx context.Context, code, redirectURI string) (*domain.Installation, error) {
	resp, err := slack.GetOAuthV2ResponseContext(ctx, o.httpClient(), o.clientID, o.clientSecret, code, redirectURI)
	if err != nil {
		return nil, fmt.Errorf("%w: oauth.v2.access: %v", domain.ErrOAuthExchangeFailed, err)
	}
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("%w: response carried no bot token", domain.ErrOAuthExchangeFailed)
	}

	auth, err := o.client.api(resp.AccessToken).AuthTestContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: auth.test: %v", domain.ErrOAuthExchangeFailed, err)
	}

	return &domain.Installation{
		TenantID:    resp.Team.ID,
		TenantName:  resp.Team.Name,
		BotToken:    resp.AccessToken,
		BotUserID:   resp.BotUserID,
		BotID:       auth.BotID,
		InstalledAt: o.now().UTC(),
	}, nil
}

// httpClient points oauth.v2.access at the configured API URL; the package
// level helper in slack-go always targets slack.com.
func (o *OAuthExchanger) httpClient() *http.Client {
	if o.client.apiURL == "" {
		return o.client.httpClient
	}
	return &http.Client{
		Timeout:   o.client.httpClient.Timeout,
		Transport: rewriteTransport{apiURL: o.client.apiURL},
	}
}

type rewriteTransport struct {
	apiURL string
	base   http.RoundTripper
}

func (t rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}

	raw := req.URL.String()
	if !strings.HasPrefix(raw, slack.APIURL) {
		return base.RoundTrip(req)
	}
	target, err := url.Parse(t.apiURL + strings.TrimPrefix(raw, slack.APIURL))
	if err != nil {
		return nil, fmt.Errorf("rewrite slack api url: %w", err)
	}

	out := req.Clone(req.Context())
	out.URL = target
	out.Host = target.Host
	return base.RoundTrip(out)
}
