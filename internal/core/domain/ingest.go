package domain

import "time"

// IngestState is a step of the file ingestion workflow.
type IngestState string

const (
	IngestReceived      IngestState = "received"
	IngestValidated     IngestState = "validated"
	IngestTokenResolved IngestState = "token_resolved"
	IngestDownloaded    IngestState = "downloaded"
	IngestRendered      IngestState = "rendered"
	IngestPersisted     IngestState = "persisted"
	IngestNotified      IngestState = "notified"
	IngestDone          IngestState = "done"

	// Terminal states outside the happy path.
	IngestRejected IngestState = "rejected"
	IngestFailed   IngestState = "failed"
)

// SharedFile is the platform metadata of a shared file.
type SharedFile struct {
	ID                 string
	Name               string
	URLPrivateDownload string
}

// FileSharedEvent is one inbound "a file was shared" signal.
type FileSharedEvent struct {
	EventID   string
	FileID    string
	ChannelID string
	UserID    string
	TenantID  string
	// ContextToken is a credential the transport already resolved for TenantID.
	ContextToken string
	File         *SharedFile
}

// IngestResult describes where a single event ended up.
type IngestResult struct {
	State      IngestState
	Reason     string
	ArtifactID string
	ViewerURL  string
	Duration   time.Duration
}

// Notification is an outbound message addressed to the originating conversation.
type Notification struct {
	ChannelID string
	Text      string
	Title     string
	LinkText  string
	LinkURL   string
	ActionID  string
}
