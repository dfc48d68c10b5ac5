package domain

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"path"
	"strings"
	"time"
)

// FileType identifies how the raw bytes of a shared file become HTML.
type FileType string

const (
	// FileTypeDocument is markdown source rendered through the converter.
	FileTypeDocument FileType = "document"
	// FileTypeMarkup is a prebuilt HTML page stored unmodified.
	FileTypeMarkup FileType = "markup"
)

var supportedExtensions = map[string]FileType{
	".md":       FileTypeDocument,
	".markdown": FileTypeDocument,
	".html":     FileTypeMarkup,
	".htm":      FileTypeMarkup,
}

// DetectFileType maps a file name onto a supported FileType by extension.
// The second return value is false for anything unsupported.
func DetectFileType(fileName string) (FileType, bool) {
	ft, ok := supportedExtensions[strings.ToLower(path.Ext(fileName))]
	return ft, ok
}

// TitleFromFileName strips the final extension from a file name.
func TitleFromFileName(fileName string) string {
	return strings.TrimSuffix(fileName, path.Ext(fileName))
}

// Artifact is a rendered, viewable document. It is written once and never updated.
type Artifact struct {
	ID             string    `json:"id"`
	HTML           string    `json:"html"`
	Title          string    `json:"title"`
	FileName       string    `json:"file_name"`
	FileType       FileType  `json:"file_type"`
	UploadedBy     string    `json:"uploaded_by"`
	ConversationID string    `json:"conversation_id"`
	TenantID       *string   `json:"tenant_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// ExpiredAt reports whether the artifact is past its TTL at now.
func (a *Artifact) ExpiredAt(now time.Time, ttl time.Duration) bool {
	return now.Sub(a.CreatedAt) > ttl
}

// Clone returns a deep copy that shares no pointers with a.
func (a *Artifact) Clone() *Artifact {
	out := *a
	if a.TenantID != nil {
		tenant := *a.TenantID
		out.TenantID = &tenant
	}
	return &out
}

// ArtifactIDBytes is the number of random bytes behind an artifact id.
const ArtifactIDBytes = 8

// NewArtifactID returns 16 hex characters drawn from crypto/rand.
func NewArtifactID() (string, error) {
	b := make([]byte, ArtifactIDBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate artifact id: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// ValidArtifactID reports whether id has the shape NewArtifactID produces.
func ValidArtifactID(id string) bool {
	if len(id) != ArtifactIDBytes*2 {
		return false
	}
	_, err := hex.DecodeString(id)
	return err == nil
}
