package testutil

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"markdown-viewer-service/internal/core/domain"
)

// MockArtifactStore is a mock of ArtifactStore.
type MockArtifactStore struct {
	mock.Mock
}

func (m *MockArtifactStore) Put(ctx context.Context, artifact *domain.Artifact) (string, error) {
	args := m.Called(ctx, artifact)
	return args.String(0), args.Error(1)
}

func (m *MockArtifactStore) Get(ctx context.Context, id string) (*domain.Artifact, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Artifact), args.Error(1)
}

func (m *MockArtifactStore) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockInstallationStore is a mock of InstallationStore.
type MockInstallationStore struct {
	mock.Mock
}

func (m *MockInstallationStore) Save(ctx context.Context, installation *domain.Installation) error {
	args := m.Called(ctx, installation)
	return args.Error(0)
}

func (m *MockInstallationStore) Get(ctx context.Context, tenantID string) (*domain.Installation, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Installation), args.Error(1)
}

func (m *MockInstallationStore) Delete(ctx context.Context, tenantID string) error {
	args := m.Called(ctx, tenantID)
	return args.Error(0)
}

func (m *MockInstallationStore) List(ctx context.Context) ([]*domain.Installation, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Installation), args.Error(1)
}

func (m *MockInstallationStore) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockFileFetcher is a mock of FileFetcher.
type MockFileFetcher struct {
	mock.Mock
}

func (m *MockFileFetcher) FileInfo(ctx context.Context, token, fileID string) (*domain.SharedFile, error) {
	args := m.Called(ctx, token, fileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SharedFile), args.Error(1)
}

func (m *MockFileFetcher) Download(ctx context.Context, token, url string) ([]byte, error) {
	args := m.Called(ctx, token, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockNotifier is a mock of Notifier.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, token string, n *domain.Notification) error {
	args := m.Called(ctx, token, n)
	return args.Error(0)
}

// MockOAuthExchanger is a mock of OAuthExchanger.
type MockOAuthExchanger struct {
	mock.Mock
}

func (m *MockOAuthExchanger) Exchange(ctx context.Context, code, redirectURI string) (*domain.Installation, error) {
	args := m.Called(ctx, code, redirectURI)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Installation), args.Error(1)
}

// MockObserver is a mock of IngestObserver.
type MockObserver struct {
	mock.Mock
}

func (m *MockObserver) RecordIngest(state domain.IngestState, reason string, duration time.Duration) {
	m.Called(state, reason, duration)
}

// MockConverter is a mock of Converter.
type MockConverter struct {
	mock.Mock
}

func (m *MockConverter) ToHTML(src []byte) (string, error) {
	args := m.Called(src)
	return args.String(0), args.Error(1)
}

func (m *MockConverter) MarkdownTitle(src []byte) string {
	args := m.Called(src)
	return args.String(0)
}

func (m *MockConverter) HTMLTitle(src []byte) string {
	args := m.Called(src)
	return args.String(0)
}
