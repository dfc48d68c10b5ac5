package handlers

import (
	"embed"
	"html/template"
	"time"

	"markdown-viewer-service/internal/core/services"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	oauthStateTTL  = 10 * time.Minute
	oauthStateSize = 1024
)

type Handler struct {
	viewerSvc  *services.ViewerService
	installSvc *services.InstallationService
	stylesheet template.CSS
	states     *expirable.LRU[string, struct{}]
}

// New builds the HTTP handler. stylesheet is the syntax highlighting CSS
// inlined into every viewer page.
func New(
	viewerSvc *services.ViewerService,
	installSvc *services.InstallationService,
	stylesheet string,
) *Handler {
	return &Handler{
		viewerSvc:  viewerSvc,
		installSvc: installSvc,
		stylesheet: template.CSS(stylesheet),
		states:     expirable.NewLRU[string, struct{}](oauthStateSize, nil, oauthStateTTL),
	}
}

// Templates parses the embedded pages for gin's HTML renderer.
func Templates() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/*.html")
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	// Pages
	r.GET("/", h.Home)
	r.GET("/view/:id", h.View)
	r.GET("/health", h.Health)

	// Workspace installs
	r.GET("/slack/install", h.Install)
	r.GET("/slack/oauth_redirect", h.OAuthRedirect)

	// Installation status
	r.GET("/api/v1/installations/:team_id", h.GetInstallation)
}
