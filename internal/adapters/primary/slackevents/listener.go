package slackevents

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"

	"markdown-viewer-service/internal/core/domain"
	"markdown-viewer-service/internal/core/ports/output"
	"markdown-viewer-service/internal/core/services"
)

// DefaultHandleTimeout bounds the work done for one file_shared event.
const DefaultHandleTimeout = 2 * time.Minute

type FileSharedHandler interface {
	HandleFileShared(ctx context.Context, ev domain.FileSharedEvent) (*domain.IngestResult, error)
}

type TokenResolver interface {
	Resolve(ctx context.Context, contextToken, tenantID string) (string, services.TokenSource, error)
}

type InstallationRevoker interface {
	Revoke(ctx context.Context, tenantID string) error
}

type acker interface {
	Ack(req socketmode.Request, payload ...interface{})
}

// Listener consumes Socket Mode envelopes. Every envelope is acknowledged
// before any work is done; slow work never delays the ack.
type Listener struct {
	client   *socketmode.Client
	acker    acker
	ingest   FileSharedHandler
	resolver TokenResolver
	files    ports.FileFetcher
	revoker  InstallationRevoker
	timeout  time.Duration
}

func NewListener(
	client *socketmode.Client,
	ingest FileSharedHandler,
	resolver TokenResolver,
	files ports.FileFetcher,
	revoker InstallationRevoker,
) *Listener {
	return &Listener{
		client:   client,
		acker:    client,
		ingest:   ingest,
		resolver: resolver,
		files:    files,
		revoker:  revoker,
		timeout:  DefaultHandleTimeout,
	}
}

// NewSocketClient builds a Socket Mode client from an app-level token.
func NewSocketClient(appToken, botToken string, opts ...slack.Option) *socketmode.Client {
	opts = append(opts, slack.OptionAppLevelToken(appToken))
	return socketmode.New(slack.New(botToken, opts...))
}

// Run blocks until ctx is cancelled or the connection fails for good.
func (l *Listener) Run(ctx context.Context) error {
	go l.consume(ctx)
	return l.client.RunContext(ctx)
}

func (l *Listener) consume(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-l.client.Events:
			if !ok {
				return
			}
			l.dispatch(ctx, evt)
		}
	}
}

func (l *Listener) dispatch(ctx context.Context, evt socketmode.Event) {
	switch evt.Type {
	case socketmode.EventTypeConnecting:
		log.Info("connecting to slack socket mode")
	case socketmode.EventTypeConnected:
		log.Info("slack socket mode connected")
	case socketmode.EventTypeConnectionError:
		log.WithField("data", evt.Data).Warn("slack socket mode connection error")

	case socketmode.EventTypeEventsAPI:
		l.ack(evt.Request)
		apiEvent, ok := evt.Data.(slackevents.EventsAPIEvent)
		if !ok {
			log.Warnf("unexpected events api payload %T", evt.Data)
			return
		}
		go l.handleEventsAPI(ctx, apiEvent)

	case socketmode.EventTypeInteractive:
		// The notification button only opens a URL; the ack is all the
		// platform needs.
		l.ack(evt.Request)
		if cb, ok := evt.Data.(slack.InteractionCallback); ok {
			for _, action := range cb.ActionCallback.BlockActions {
				if action.ActionID == services.ViewActionID {
					log.WithField("user_id", cb.User.ID).Debug("viewer link clicked")
				}
			}
		}

	case socketmode.EventTypeSlashCommand:
		l.ack(evt.Request)
	}
}

func (l *Listener) ack(req *socketmode.Request) {
	if req == nil || l.acker == nil {
		return
	}
	l.acker.Ack(*req)
}

func (l *Listener) handleEventsAPI(ctx context.Context, apiEvent slackevents.EventsAPIEvent) {
	if apiEvent.Type != slackevents.CallbackEvent {
		return
	}

	var eventID string
	if cb, ok := apiEvent.Data.(*slackevents.EventsAPICallbackEvent); ok {
		eventID = cb.EventID
	}

	switch inner := apiEvent.InnerEvent.Data.(type) {
	case *slackevents.FileSharedEvent:
		ctx, cancel := context.WithTimeout(ctx, l.timeout)
		defer cancel()
		l.handleFileShared(ctx, eventID, apiEvent.TeamID, inner)

	case *slackevents.AppUninstalledEvent:
		l.revoke(ctx, apiEvent.TeamID, "app_uninstalled")

	case *slackevents.TokensRevokedEvent:
		l.revoke(ctx, apiEvent.TeamID, "tokens_revoked")
	}
}

func (l *Listener) handleFileShared(ctx context.Context, eventID, teamID string, inner *slackevents.FileSharedEvent) {
	logger := log.WithFields(log.Fields{
		"event_id": eventID,
		"file_id":  inner.FileID,
		"team_id":  teamID,
	})

	// file_shared carries only the file id. Authorize the event the way the
	// workflow would, then hydrate the metadata with that token.
	token, source, err := l.resolver.Resolve(ctx, "", teamID)
	if err != nil {
		logger.WithError(err).Error("no credential for file shared event")
		return
	}
	file, err := l.files.FileInfo(ctx, token, inner.FileID)
	if err != nil {
		logger.WithError(err).WithField("token_source", source).Error("fetch file info failed")
		return
	}

	ev := domain.FileSharedEvent{
		EventID:      eventID,
		FileID:       inner.FileID,
		ChannelID:    inner.ChannelID,
		UserID:       inner.UserID,
		TenantID:     teamID,
		ContextToken: token,
		File:         file,
	}
	// The workflow logs and records its own outcome.
	_, _ = l.ingest.HandleFileShared(ctx, ev)
}

func (l *Listener) revoke(ctx context.Context, teamID, reason string) {
	logger := log.WithFields(log.Fields{"team_id": teamID, "reason": reason})
	if teamID == "" {
		logger.Warn("revocation event without team id")
		return
	}
	if err := l.revoker.Revoke(ctx, teamID); err != nil {
		logger.WithError(err).Error("revoke installation failed")
	}
}
