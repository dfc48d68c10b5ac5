package handlers

import (
	"errors"
	"html/template"
	"net/http"

	"markdown-viewer-service/internal/core/domain"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

type messagePage struct {
	Title   string
	Heading string
	Lines   []string
}

var (
	pageNotFound = messagePage{
		Title:   "Not Found",
		Heading: "404 - Not Found",
		Lines: []string{
			"This markdown file has expired or doesn't exist.",
			"Please re-upload the file to Slack to generate a new link.",
		},
	}
	pageUnavailable = messagePage{
		Title:   "Temporarily Unavailable",
		Heading: "503 - Temporarily Unavailable",
		Lines: []string{
			"The viewer cannot reach its storage right now.",
			"Please try again in a moment.",
		},
	}
)

// viewerCSP sandboxes artifact pages so uploaded HTML renders but never runs
// script on this origin. Links may still open in a new tab.
const viewerCSP = "sandbox allow-popups allow-popups-to-escape-sandbox"

type viewerPage struct {
	Title      string
	FileName   string
	Content    template.HTML
	Stylesheet template.CSS
}

func (h *Handler) Home(c *gin.Context) {
	c.HTML(http.StatusOK, "home.html", gin.H{
		"InstallEnabled": h.installSvc != nil && h.installSvc.OAuthEnabled(),
	})
}

func (h *Handler) View(c *gin.Context) {
	artifact, err := h.viewerSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrArtifactNotFound) {
			c.HTML(http.StatusNotFound, "message.html", pageNotFound)
			return
		}
		log.WithError(err).Error("load artifact failed")
		c.HTML(http.StatusServiceUnavailable, "message.html", pageUnavailable)
		return
	}

	c.Header("Cache-Control", "private, no-store")
	c.Header("Content-Security-Policy", viewerCSP)

	// Uploaded HTML pages are complete documents and are served untouched.
	if artifact.FileType == domain.FileTypeMarkup {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(artifact.HTML))
		return
	}

	c.HTML(http.StatusOK, "viewer.html", viewerPage{
		Title:      artifact.Title,
		FileName:   artifact.FileName,
		Content:    template.HTML(artifact.HTML),
		Stylesheet: h.stylesheet,
	})
}
