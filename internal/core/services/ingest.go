package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"markdown-viewer-service/internal/core/domain"
	"markdown-viewer-service/internal/core/ports/output"
)

// ViewActionID is the action id of the notification's link button.
const ViewActionID = "view_markdown"

// Reasons attached to rejected and failed results.
const (
	ReasonDuplicate       = "duplicate"
	ReasonMissingMetadata = "missing_metadata"
	ReasonUnsupportedType = "unsupported_type"
	ReasonToken           = "token"
	ReasonDownload        = "download"
	ReasonRender          = "render"
	ReasonPersist         = "persist"
	ReasonNotify          = "notify"
)

type IngestOption func(*IngestService)

// WithDeduper drops events whose id was already seen.
func WithDeduper(d *EventDeduper) IngestOption {
	return func(s *IngestService) { s.dedup = d }
}

// WithObserver records every terminal outcome.
func WithObserver(o ports.IngestObserver) IngestOption {
	return func(s *IngestService) { s.observer = o }
}

// IngestService turns one "file shared" event into a stored artifact and a
// notification in the originating conversation.
type IngestService struct {
	resolver  *TokenResolver
	files     ports.FileFetcher
	converter ports.Converter
	artifacts ports.ArtifactStore
	notifier  ports.Notifier
	baseURL   string
	dedup     *EventDeduper
	observer  ports.IngestObserver
	now       func() time.Time
}

func NewIngestService(
	resolver *TokenResolver,
	files ports.FileFetcher,
	converter ports.Converter,
	artifacts ports.ArtifactStore,
	notifier ports.Notifier,
	baseURL string,
	opts ...IngestOption,
) *IngestService {
	s := &IngestService{
		resolver:  resolver,
		files:     files,
		converter: converter,
		artifacts: artifacts,
		notifier:  notifier,
		baseURL:   strings.TrimRight(baseURL, "/"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ViewerURL is the public page for an artifact id.
func (s *IngestService) ViewerURL(id string) string {
	return s.baseURL + "/view/" + id
}

// HandleFileShared runs the workflow for one event. Rejected events return a
// nil error; failures return the error that ended the run. No step is retried
// and nothing is persisted before rendering succeeds.
func (s *IngestService) HandleFileShared(ctx context.Context, ev domain.FileSharedEvent) (*domain.IngestResult, error) {
	start := s.now()
	result := &domain.IngestResult{State: domain.IngestReceived}
	defer func() {
		result.Duration = s.now().Sub(start)
		if s.observer != nil {
			s.observer.RecordIngest(result.State, result.Reason, result.Duration)
		}
	}()

	logger := log.WithFields(log.Fields{
		"event_id":   ev.EventID,
		"file_id":    ev.FileID,
		"channel_id": ev.ChannelID,
		"team_id":    ev.TenantID,
	})

	reject := func(reason string) (*domain.IngestResult, error) {
		result.State = domain.IngestRejected
		result.Reason = reason
		logger.WithField("reason", reason).Info("file shared event skipped")
		return result, nil
	}
	fail := func(reason string, err error) (*domain.IngestResult, error) {
		result.State = domain.IngestFailed
		result.Reason = reason
		logger.WithError(err).WithField("stage", reason).Error("file shared event failed")
		return result, err
	}

	// Received -> Validated
	if s.dedup.Seen(ev.EventID) {
		return reject(ReasonDuplicate)
	}
	if ev.File == nil || ev.File.Name == "" {
		return reject(ReasonMissingMetadata)
	}
	fileType, ok := domain.DetectFileType(ev.File.Name)
	if !ok {
		return reject(ReasonUnsupportedType)
	}
	result.State = domain.IngestValidated

	// Validated -> TokenResolved
	token, source, err := s.resolver.Resolve(ctx, ev.ContextToken, ev.TenantID)
	if err != nil {
		if !errors.Is(err, domain.ErrCredentialUnresolved) {
			err = fmt.Errorf("%w: %w", domain.ErrCredentialUnresolved, err)
		}
		return fail(ReasonToken, err)
	}
	result.State = domain.IngestTokenResolved
	logger = logger.WithField("token_source", source)

	// TokenResolved -> Downloaded
	raw, err := s.files.Download(ctx, token, ev.File.URLPrivateDownload)
	if err != nil {
		if !errors.Is(err, domain.ErrUpstreamFetchFailed) {
			err = fmt.Errorf("%w: %w", domain.ErrUpstreamFetchFailed, err)
		}
		return fail(ReasonDownload, err)
	}
	result.State = domain.IngestDownloaded

	// Downloaded -> Rendered
	html, title, err := s.render(fileType, raw, ev.File.Name)
	if err != nil {
		return fail(ReasonRender, err)
	}
	result.State = domain.IngestRendered

	// Rendered -> Persisted
	artifact := &domain.Artifact{
		HTML:           html,
		Title:          title,
		FileName:       ev.File.Name,
		FileType:       fileType,
		UploadedBy:     ev.UserID,
		ConversationID: ev.ChannelID,
	}
	if ev.TenantID != "" {
		tenant := ev.TenantID
		artifact.TenantID = &tenant
	}
	id, err := s.artifacts.Put(ctx, artifact)
	if err != nil {
		return fail(ReasonPersist, fmt.Errorf("%w: %w", domain.ErrPersistFailed, err))
	}
	result.State = domain.IngestPersisted
	result.ArtifactID = id
	result.ViewerURL = s.ViewerURL(id)

	// Persisted -> Notified
	notification := &domain.Notification{
		ChannelID: ev.ChannelID,
		Text:      "Markdown file rendered! View it here: " + result.ViewerURL,
		Title:     title,
		LinkText:  "View Rendered Markdown",
		LinkURL:   result.ViewerURL,
		ActionID:  ViewActionID,
	}
	if err := s.notifier.Notify(ctx, token, notification); err != nil {
		if !errors.Is(err, domain.ErrNotifyFailed) {
			err = fmt.Errorf("%w: %w", domain.ErrNotifyFailed, err)
		}
		return fail(ReasonNotify, err)
	}
	result.State = domain.IngestDone
	logger.WithFields(log.Fields{
		"artifact_id": id,
		"viewer_url":  result.ViewerURL,
	}).Info("markdown rendered and notification sent")
	return result, nil
}

func (s *IngestService) render(fileType domain.FileType, raw []byte, fileName string) (string, string, error) {
	var html, title string
	switch fileType {
	case domain.FileTypeDocument:
		out, err := s.converter.ToHTML(raw)
		if err != nil {
			return "", "", err
		}
		html = out
		title = s.converter.MarkdownTitle(raw)
	case domain.FileTypeMarkup:
		html = string(raw)
		title = s.converter.HTMLTitle(raw)
	default:
		return "", "", fmt.Errorf("render: %w: %s", domain.ErrValidationRejected, fileType)
	}

	if title == "" {
		title = domain.TitleFromFileName(fileName)
	}
	return html, title, nil
}
