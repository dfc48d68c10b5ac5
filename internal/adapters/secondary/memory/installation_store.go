package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	log "github.com/sirupsen/logrus"

	"markdown-viewer-service/internal/core/domain"
	output "markdown-viewer-service/internal/core/ports/output"
)

// SnapshotFileName is the file under the data directory holding installations.
const SnapshotFileName = "workspaces.json"

// InstallationStore keeps installations in memory and mirrors the whole map
// to a JSON snapshot on every mutation.
type InstallationStore struct {
	mu    sync.RWMutex
	items map[string]*domain.Installation
	path  string
}

var _ output.InstallationStore = (*InstallationStore)(nil)

// NewInstallationStore creates dataDir if needed and loads the snapshot.
// A missing snapshot means zero installations; an unreadable one is an error.
func NewInstallationStore(dataDir string) (*InstallationStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	s := &InstallationStore{
		items: make(map[string]*domain.Installation),
		path:  filepath.Join(dataDir, SnapshotFileName),
	}
	if err := s.load(); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"path":       s.path,
		"workspaces": len(s.items),
	}).Info("loaded workspace installations")
	return s, nil
}

func (s *InstallationStore) load() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read installation snapshot: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	snapshot := map[string]*domain.Installation{}
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return fmt.Errorf("decode installation snapshot %s: %w", s.path, err)
	}
	for teamID, inst := range snapshot {
		if inst == nil {
			continue
		}
		inst.TenantID = teamID
		s.items[teamID] = inst
	}
	return nil
}

// persist must be called with s.mu held for writing.
func (s *InstallationStore) persist() error {
	data, err := json.MarshalIndent(s.items, "", "  ")
	if err != nil {
		return fmt.Errorf("encode installation snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), SnapshotFileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("create installation snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write installation snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close installation snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace installation snapshot: %w", err)
	}
	return nil
}

func (s *InstallationStore) Save(ctx context.Context, installation *domain.Installation) error {
	if err := installation.Validate(); err != nil {
		return err
	}
	record := *installation

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, hadPrev := s.items[record.TenantID]
	s.items[record.TenantID] = &record
	if err := s.persist(); err != nil {
		// Keep memory and disk in agreement.
		if hadPrev {
			s.items[record.TenantID] = prev
		} else {
			delete(s.items, record.TenantID)
		}
		return err
	}
	return nil
}

func (s *InstallationStore) Get(ctx context.Context, tenantID string) (*domain.Installation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inst, ok := s.items[tenantID]
	if !ok {
		return nil, domain.ErrInstallationNotFound
	}
	out := *inst
	return &out, nil
}

func (s *InstallationStore) Delete(ctx context.Context, tenantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.items[tenantID]
	if !ok {
		return nil
	}
	delete(s.items, tenantID)
	if err := s.persist(); err != nil {
		s.items[tenantID] = prev
		return err
	}
	return nil
}

func (s *InstallationStore) List(ctx context.Context) ([]*domain.Installation, error) {
	s.mu.RLock()
	out := make([]*domain.Installation, 0, len(s.items))
	for _, inst := range s.items {
		cp := *inst
		out = append(out, &cp)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].TenantID < out[j].TenantID })
	return out, nil
}

func (s *InstallationStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items), nil
}
