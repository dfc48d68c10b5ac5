package handlers

import (
	"errors"
	"net/http"

	"markdown-viewer-service/internal/core/domain"

	"github.com/gin-gonic/gin"
)

func statusFor(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, domain.ErrArtifactNotFound),
		errors.Is(err, domain.ErrInstallationNotFound):
		return http.StatusNotFound

	// Bad request / validation errors
	case errors.Is(err, domain.ErrInvalidTenantID),
		errors.Is(err, domain.ErrOAuthStateInvalid),
		errors.Is(err, domain.ErrOAuthCodeMissing):
		return http.StatusBadRequest

	// Upstream errors
	case errors.Is(err, domain.ErrOAuthExchangeFailed):
		return http.StatusBadGateway

	// Service unavailable errors
	case errors.Is(err, domain.ErrBackendUnavailable),
		errors.Is(err, domain.ErrOAuthNotConfigured):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

func mapDomainError(c *gin.Context, err error) {
	status := statusFor(err)
	switch status {
	case http.StatusInternalServerError:
		c.JSON(status, gin.H{"error": "internal server error"})
	case http.StatusServiceUnavailable, http.StatusBadGateway:
		// Backend detail stays in the logs.
		c.JSON(status, gin.H{"error": http.StatusText(status)})
	default:
		c.JSON(status, gin.H{"error": err.Error()})
	}
}
