package slack

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/slack-go/slack"
	log "github.com/sirupsen/logrus"

	"markdown-viewer-service/internal/core/domain"
	output "markdown-viewer-service/internal/core/ports/output"
)

const (
	defaultTimeout  = 30 * time.Second
	defaultMaxBytes = 10 << 20
)

// ClientConfig configures Client. APIURL overrides https://slack.com/api/ and
// must end with a slash.
type ClientConfig struct {
	APIURL   string
	Timeout  time.Duration
	MaxBytes int64
}

// Client talks to the Slack Web API with a per-call bot token, so a single
// instance serves every installed workspace.
type Client struct {
	httpClient *http.Client
	apiURL     string
	maxBytes   int64
}

var (
	_ output.FileFetcher = (*Client)(nil)
	_ output.Notifier    = (*Client)(nil)
)

func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		apiURL:     cfg.APIURL,
		maxBytes:   maxBytes,
	}
}

func (c *Client) api(token string) *slack.Client {
	opts := []slack.Option{slack.OptionHTTPClient(c.httpClient)}
	if c.apiURL != "" {
		opts = append(opts, slack.OptionAPIURL(c.apiURL))
	}
	return slack.New(token, opts...)
}

func (c *Client) FileInfo(ctx context.Context, token, fileID string) (*domain.SharedFile, error) {
	file, _, _, err := c.api(token).GetFileInfoContext(ctx, fileID, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("files.info %s: %w", fileID, err)
	}
	return &domain.SharedFile{
		ID:                 file.ID,
		Name:               file.Name,
		URLPrivateDownload: file.URLPrivateDownload,
	}, nil
}

// Download fetches a private file URL with token as bearer credential.
func (c *Client) Download(ctx context.Context, token, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", domain.ErrUpstreamFetchFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	log.WithField("url", url).Debug("downloading shared file")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: HTTP status %d", domain.ErrUpstreamFetchFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", domain.ErrUpstreamFetchFailed, err)
	}
	if int64(len(body)) > c.maxBytes {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", domain.ErrUpstreamFetchFailed, c.maxBytes)
	}
	return body, nil
}

func (c *Client) Notify(ctx context.Context, token string, n *domain.Notification) error {
	_, _, err := c.api(token).PostMessageContext(ctx, n.ChannelID,
		slack.MsgOptionText(n.Text, false),
		slack.MsgOptionBlocks(notificationBlocks(n)...),
	)
	if err != nil {
		return fmt.Errorf("%w: chat.postMessage: %v", domain.ErrNotifyFailed, err)
	}
	return nil
}

func notificationBlocks(n *domain.Notification) []slack.Block {
	section := slack.NewSectionBlock(
		slack.NewTextBlockObject(slack.MarkdownType,
			fmt.Sprintf(":page_facing_up: *%s*\nYour markdown file has been rendered!", n.Title), false, false),
		nil, nil,
	)

	button := slack.NewButtonBlockElement(n.ActionID, "",
		slack.NewTextBlockObject(slack.PlainTextType, n.LinkText, true, false))
	button.URL = n.LinkURL

	return []slack.Block{section, slack.NewActionBlock("", button)}
}
