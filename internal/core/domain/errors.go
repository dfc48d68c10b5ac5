package domain

import "errors"

// ============================================================================
// Store Errors
// ============================================================================

var (
	ErrArtifactNotFound     = errors.New("artifact not found or expired")
	ErrInstallationNotFound = errors.New("installation not found")
	ErrBackendUnavailable   = errors.New("storage backend unavailable")
)

// Validation errors
var (
	ErrInvalidTenantID = errors.New("team ID is required")
	ErrInvalidBotToken = errors.New("bot token is required")
)

// ============================================================================
// Ingestion Errors
// ============================================================================

var (
	ErrValidationRejected   = errors.New("unsupported file type")
	ErrCredentialUnresolved = errors.New("no bot token available for workspace")
	ErrUpstreamFetchFailed  = errors.New("file download failed")
	ErrPersistFailed        = errors.New("artifact persist failed")
	ErrNotifyFailed         = errors.New("notification failed")
)

// ============================================================================
// OAuth Errors
// ============================================================================

var (
	ErrOAuthNotConfigured  = errors.New("oauth install is not configured")
	ErrOAuthStateInvalid   = errors.New("oauth state is invalid or expired")
	ErrOAuthCodeMissing    = errors.New("oauth code is required")
	ErrOAuthExchangeFailed = errors.New("oauth exchange failed")
)
