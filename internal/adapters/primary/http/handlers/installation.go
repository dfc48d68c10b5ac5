package handlers

import (
	"errors"
	"net/http"

	"markdown-viewer-service/internal/adapters/primary/http/dto"
	"markdown-viewer-service/internal/core/domain"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

func (h *Handler) Install(c *gin.Context) {
	state := uuid.NewString()
	target, err := h.installSvc.InstallURL(state)
	if err != nil {
		c.HTML(statusFor(err), "message.html", messagePage{
			Title:   "Install Unavailable",
			Heading: "Install Unavailable",
			Lines:   []string{"This deployment is not configured for workspace installs."},
		})
		return
	}
	h.states.Add(state, struct{}{})
	c.Redirect(http.StatusFound, target)
}

func (h *Handler) OAuthRedirect(c *gin.Context) {
	if reason := c.Query("error"); reason != "" {
		log.WithField("error", reason).Info("workspace install declined")
		c.HTML(http.StatusOK, "message.html", messagePage{
			Title:   "Install Cancelled",
			Heading: "Install Cancelled",
			Lines:   []string{"The app was not added to your workspace."},
		})
		return
	}

	state := c.Query("state")
	if _, ok := h.states.Get(state); !ok || state == "" {
		h.renderInstallFailure(c, domain.ErrOAuthStateInvalid)
		return
	}
	h.states.Remove(state)

	inst, err := h.installSvc.Complete(c.Request.Context(), c.Query("code"))
	if err != nil {
		h.renderInstallFailure(c, err)
		return
	}

	c.HTML(http.StatusOK, "message.html", messagePage{
		Title:   "Installed",
		Heading: "Installed",
		Lines: []string{
			"Slack Markdown Viewer was added to " + displayName(inst) + ".",
			"Upload a .md file to any channel the bot is in to try it.",
		},
	})
}

func (h *Handler) renderInstallFailure(c *gin.Context, err error) {
	status := statusFor(err)
	entry := log.WithError(err)
	if status >= http.StatusInternalServerError {
		entry.Error("workspace install failed")
	} else {
		entry.Warn("workspace install rejected")
	}

	msg := "Something went wrong while installing. Please try again."
	if errors.Is(err, domain.ErrOAuthStateInvalid) {
		msg = "This install link has expired. Please start the install again."
	}
	c.HTML(status, "message.html", messagePage{
		Title:   "Install Failed",
		Heading: "Install Failed",
		Lines:   []string{msg},
	})
}

func (h *Handler) GetInstallation(c *gin.Context) {
	inst, err := h.installSvc.Lookup(c.Request.Context(), c.Param("team_id"))
	if err != nil {
		if errors.Is(err, domain.ErrInstallationNotFound) {
			c.JSON(http.StatusNotFound, dto.InstallationResponse{
				Installed: false,
				TeamID:    c.Param("team_id"),
			})
			return
		}
		log.WithError(err).Error("lookup installation failed")
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToInstallationResponse(inst))
}

func displayName(inst *domain.Installation) string {
	if inst.TenantName != "" {
		return inst.TenantName
	}
	return "your workspace"
}
