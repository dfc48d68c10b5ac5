package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"markdown-viewer-service/internal/adapters/primary/http/dto"
	"markdown-viewer-service/internal/core/domain"
	"markdown-viewer-service/internal/core/services"
	"markdown-viewer-service/internal/testutil"
)

const testArtifactID = "0123456789abcdef"

type fixture struct {
	artifacts     *testutil.MockArtifactStore
	installations *testutil.MockInstallationStore
	exchanger     *testutil.MockOAuthExchanger
	handler       *Handler
	router        *gin.Engine
}

func setupRouter(t *testing.T, oauth bool) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &fixture{
		artifacts:     new(testutil.MockArtifactStore),
		installations: new(testutil.MockInstallationStore),
		exchanger:     new(testutil.MockOAuthExchanger),
	}

	settings := services.OAuthSettings{
		Scopes:      []string{"files:read", "chat:write"},
		RedirectURL: "http://localhost:3000/slack/oauth_redirect",
	}
	if oauth {
		settings.ClientID = "client-1"
	}
	installSvc := services.NewInstallationService(f.installations, f.exchanger, settings)
	f.handler = New(services.NewViewerService(f.artifacts, f.installations), installSvc, ".chroma{}")

	tmpl, err := Templates()
	require.NoError(t, err)

	f.router = gin.New()
	f.router.SetHTMLTemplate(tmpl)
	f.handler.RegisterRoutes(f.router.Group(""))
	return f
}

func (f *fixture) get(path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", path, nil)
	f.router.ServeHTTP(w, req)
	return w
}

func TestView_RendersDocument(t *testing.T) {
	f := setupRouter(t, false)
	f.artifacts.On("Get", mock.Anything, testArtifactID).Return(&domain.Artifact{
		ID:       testArtifactID,
		HTML:     "<h1>Hello</h1>",
		Title:    "Hello",
		FileName: "hello.md",
		FileType: domain.FileTypeDocument,
	}, nil)

	w := f.get("/view/" + testArtifactID)

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "<title>Hello</title>")
	assert.Contains(t, body, "<h1>Hello</h1>")
	assert.Contains(t, body, "hello.md")
	assert.Contains(t, body, ".chroma{}")
	assert.Equal(t, "private, no-store", w.Header().Get("Cache-Control"))
	assert.Equal(t, viewerCSP, w.Header().Get("Content-Security-Policy"))
}

func TestView_ServesMarkupUntouched(t *testing.T) {
	f := setupRouter(t, false)
	page := "<!DOCTYPE html><html><head><title>Report</title></head><body>x</body></html>"
	f.artifacts.On("Get", mock.Anything, testArtifactID).Return(&domain.Artifact{
		ID:       testArtifactID,
		HTML:     page,
		FileType: domain.FileTypeMarkup,
	}, nil)

	w := f.get("/view/" + testArtifactID)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, page, w.Body.String())

	csp := w.Header().Get("Content-Security-Policy")
	assert.Contains(t, csp, "sandbox")
	assert.NotContains(t, csp, "allow-scripts")
	assert.NotContains(t, csp, "allow-same-origin")
}

func TestView_NotFound(t *testing.T) {
	f := setupRouter(t, false)
	f.artifacts.On("Get", mock.Anything, testArtifactID).Return(nil, domain.ErrArtifactNotFound)

	w := f.get("/view/" + testArtifactID)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "expired or doesn&#39;t exist")

	// Malformed ids never reach the store.
	w = f.get("/view/not-an-id")
	assert.Equal(t, http.StatusNotFound, w.Code)
	f.artifacts.AssertNumberOfCalls(t, "Get", 1)
}

func TestView_BackendUnavailable(t *testing.T) {
	f := setupRouter(t, false)
	f.artifacts.On("Get", mock.Anything, testArtifactID).
		Return(nil, fmt.Errorf("get artifact: %w: dial tcp: refused", domain.ErrBackendUnavailable))

	w := f.get("/view/" + testArtifactID)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "Temporarily Unavailable")
	assert.NotContains(t, w.Body.String(), "refused")
}

func TestHome(t *testing.T) {
	f := setupRouter(t, true)
	w := f.get("/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Slack Markdown Viewer")
	assert.Contains(t, w.Body.String(), `href="/slack/install"`)

	f = setupRouter(t, false)
	w = f.get("/")
	assert.NotContains(t, w.Body.String(), `href="/slack/install"`)
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		countErr   error
		wantStatus int
		wantBody   string
	}{
		{"ok", nil, http.StatusOK, dto.HealthOK},
		{"degraded", domain.ErrBackendUnavailable, http.StatusServiceUnavailable, dto.HealthDegraded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupRouter(t, false)
			f.artifacts.On("Count", mock.Anything).Return(2, tt.countErr)
			f.installations.On("Count", mock.Anything).Return(1, nil)

			w := f.get("/health")
			assert.Equal(t, tt.wantStatus, w.Code)

			var resp dto.HealthResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantBody, resp.Status)
			require.NotNil(t, resp.Installations)
			assert.Equal(t, 1, *resp.Installations)
			if tt.countErr != nil {
				assert.Nil(t, resp.StoredFiles)
			} else {
				assert.Equal(t, 2, *resp.StoredFiles)
			}
		})
	}
}

func TestInstall_RedirectsWithState(t *testing.T) {
	f := setupRouter(t, true)

	w := f.get("/slack/install")
	require.Equal(t, http.StatusFound, w.Code)

	target, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "slack.com", target.Host)
	assert.Equal(t, "client-1", target.Query().Get("client_id"))
	assert.Equal(t, "files:read,chat:write", target.Query().Get("scope"))

	state := target.Query().Get("state")
	require.NotEmpty(t, state)
	_, ok := f.handler.states.Get(state)
	assert.True(t, ok)
}

func TestInstall_NotConfigured(t *testing.T) {
	f := setupRouter(t, false)
	w := f.get("/slack/install")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestOAuthRedirect_Completes(t *testing.T) {
	f := setupRouter(t, true)
	f.handler.states.Add("state-1", struct{}{})

	inst := &domain.Installation{TenantID: "T1", TenantName: "Acme", BotToken: "xoxb-1", InstalledAt: time.Now()}
	f.exchanger.On("Exchange", mock.Anything, "code-1", "http://localhost:3000/slack/oauth_redirect").Return(inst, nil)
	f.installations.On("Save", mock.Anything, inst).Return(nil)

	w := f.get("/slack/oauth_redirect?code=code-1&state=state-1")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Acme")
	f.installations.AssertExpectations(t)

	// States are single use.
	w = f.get("/slack/oauth_redirect?code=code-1&state=state-1")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	f.exchanger.AssertNumberOfCalls(t, "Exchange", 1)
}

func TestOAuthRedirect_UnknownState(t *testing.T) {
	f := setupRouter(t, true)

	w := f.get("/slack/oauth_redirect?code=code-1&state=forged")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "expired")
	f.exchanger.AssertNotCalled(t, "Exchange", mock.Anything, mock.Anything, mock.Anything)
}

func TestOAuthRedirect_Declined(t *testing.T) {
	f := setupRouter(t, true)
	w := f.get("/slack/oauth_redirect?error=access_denied&state=x")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Install Cancelled")
}

func TestOAuthRedirect_ExchangeFailed(t *testing.T) {
	f := setupRouter(t, true)
	f.handler.states.Add("state-1", struct{}{})
	f.exchanger.On("Exchange", mock.Anything, "bad", mock.Anything).
		Return(nil, fmt.Errorf("oauth.v2.access: %w: invalid_code", domain.ErrOAuthExchangeFailed))

	w := f.get("/slack/oauth_redirect?code=bad&state=state-1")

	assert.Equal(t, http.StatusBadGateway, w.Code)
	f.installations.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestGetInstallation(t *testing.T) {
	f := setupRouter(t, false)
	f.installations.On("Get", mock.Anything, "T1").Return(&domain.Installation{
		TenantID: "T1", TenantName: "Acme", BotToken: "xoxb-secret",
	}, nil)
	f.installations.On("Get", mock.Anything, "T2").Return(nil, domain.ErrInstallationNotFound)
	f.installations.On("Get", mock.Anything, "T3").Return(nil, domain.ErrBackendUnavailable)

	w := f.get("/api/v1/installations/T1")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "xoxb-secret")

	var resp dto.InstallationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Installed)
	assert.Equal(t, "Acme", resp.TeamName)

	w = f.get("/api/v1/installations/T2")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"installed":false`)

	w = f.get("/api/v1/installations/T3")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
