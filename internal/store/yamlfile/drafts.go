// Package yamlfile implements file-backed stores and watchers using YAML
// files on disk.
package yamlfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/colonyops/gridedit/internal/core/drafts"
)

// DraftStore implements drafts.Store with one YAML file per draft.
type DraftStore struct {
	dir string
	mu  sync.RWMutex
}

// NewDraftStore creates a draft store rooted at dir. The directory is
// created on first write.
func NewDraftStore(dir string) *DraftStore {
	return &DraftStore{dir: dir}
}

var _ drafts.Store = (*DraftStore)(nil)

// Save writes the draft atomically.
func (s *DraftStore) Save(ctx context.Context, d drafts.Draft) error {
	if d.ID == "" {
		return fmt.Errorf("save draft: missing id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create drafts dir: %w", err)
	}

	data, err := yaml.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}

	path := s.path(d.ID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write draft: %w", err)
	}

	return os.Rename(tmp, path)
}

// Get returns the draft with the given ID.
func (s *DraftStore) Get(ctx context.Context, id string) (drafts.Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.load(s.path(id))
}

// List returns all drafts, newest first. Unreadable files are skipped.
func (s *DraftStore) List(ctx context.Context) ([]drafts.Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read drafts dir: %w", err)
	}

	var out []drafts.Draft
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		d, err := s.load(filepath.Join(s.dir, e.Name()))
		if err != nil {
			continue
		}
		out = append(out, d)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SavedAt.After(out[j].SavedAt)
	})

	return out, nil
}

// Delete removes the draft with the given ID.
func (s *DraftStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(id)); err != nil {
		if os.IsNotExist(err) {
			return drafts.ErrNotFound
		}
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}

func (s *DraftStore) path(id string) string {
	return filepath.Join(s.dir, filepath.Base(id)+".yaml")
}

func (s *DraftStore) load(path string) (drafts.Draft, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return drafts.Draft{}, drafts.ErrNotFound
		}
		return drafts.Draft{}, fmt.Errorf("read draft: %w", err)
	}

	var d drafts.Draft
	if err := yaml.Unmarshal(data, &d); err != nil {
		return drafts.Draft{}, fmt.Errorf("parse draft %s: %w", filepath.Base(path), err)
	}
	return d, nil
}
