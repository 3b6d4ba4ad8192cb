// Package drafts defines saved batch-edit drafts and the store interface.
package drafts

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/colonyops/gridedit/internal/core/editing"
)

// ErrNotFound is returned when no draft exists for a dataset.
var ErrNotFound = errors.New("draft not found")

// Draft holds the pending edits of an interrupted session, keyed by row
// and column IDs so they can be injected into a freshly loaded dataset.
type Draft struct {
	ID      string             `yaml:"id"`
	Dataset string             `yaml:"dataset"`
	Mode    editing.Mode       `yaml:"mode"`
	Edits   []editing.CellEdit `yaml:"edits"`
	SavedAt time.Time          `yaml:"saved_at"`
}

// New creates a draft for the dataset at path.
func New(path string, mode editing.Mode, edits []editing.CellEdit) (Draft, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Draft{}, err
	}
	return Draft{
		ID:      IDFor(abs),
		Dataset: abs,
		Mode:    mode,
		Edits:   edits,
		SavedAt: time.Now(),
	}, nil
}

// IDFor derives a stable draft ID from an absolute dataset path.
func IDFor(absPath string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+absPath)).String()
}

// Store persists drafts.
type Store interface {
	// Save writes the draft, replacing any previous draft for the dataset.
	Save(ctx context.Context, d Draft) error
	// Get returns the draft with the given ID. Returns ErrNotFound if absent.
	Get(ctx context.Context, id string) (Draft, error)
	// List returns all drafts, newest first.
	List(ctx context.Context) ([]Draft, error)
	// Delete removes a draft. Returns ErrNotFound if absent.
	Delete(ctx context.Context, id string) error
}
