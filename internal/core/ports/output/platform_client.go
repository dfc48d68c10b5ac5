package ports

import (
	"context"

	"markdown-viewer-service/internal/core/domain"
)

// FileFetcher reads shared files from the chat platform on behalf of a tenant.
type FileFetcher interface {
	FileInfo(ctx context.Context, token, fileID string) (*domain.SharedFile, error)
	// Download fetches url with token as a bearer credential. A non-2xx
	// status or transport error wraps domain.ErrUpstreamFetchFailed.
	Download(ctx context.Context, token, url string) ([]byte, error)
}

// Notifier posts a notification to a conversation using token.
type Notifier interface {
	Notify(ctx context.Context, token string, n *domain.Notification) error
}

// OAuthExchanger turns an authorization code into a credential record.
type OAuthExchanger interface {
	Exchange(ctx context.Context, code, redirectURI string) (*domain.Installation, error)
}
