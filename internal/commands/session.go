package commands

import (
	"context"
	"fmt"

	"github.com/colonyops/gridedit/internal/core/config"
	"github.com/colonyops/gridedit/internal/core/editing"
	"github.com/colonyops/gridedit/internal/core/eventbus"
	"github.com/colonyops/gridedit/internal/core/grid"
	"github.com/colonyops/gridedit/internal/core/logging"
)

// session is a loaded dataset plus the service editing it.
type session struct {
	path string
	ds   *grid.Dataset
	bus  *eventbus.EventBus
	svc  *editing.Service
}

// openSession loads the dataset at path, applies the configured column
// rules and binds a fresh editing service to it.
func openSession(ctx context.Context, cfg *config.Config, path string, settings editing.Settings) (*session, context.Context, error) {
	ds, err := grid.Load(path)
	if err != nil {
		return nil, ctx, fmt.Errorf("load dataset: %w", err)
	}
	cfg.ApplyColumns(ds)

	ctx = logging.WithDataset(ctx, path)
	ctx = logging.WithEditMode(ctx, string(settings.Mode))

	bus := eventbus.New()
	svc := editing.New(editing.Deps{
		Data:   ds,
		Bus:    bus,
		Logger: logging.Component("editing").With().Ctx(ctx).Logger(),
	}, settings)

	return &session{path: path, ds: ds, bus: bus, svc: svc}, ctx, nil
}

// parseMode resolves a --mode flag value. Empty means the configured mode.
func parseMode(value string, fallback editing.Mode) (editing.Mode, error) {
	if value == "" {
		return fallback, nil
	}
	mode := editing.Mode(value)
	if !mode.Valid() {
		return "", fmt.Errorf("invalid mode %q (expected %s or %s)", value, editing.ModeSingleCell, editing.ModeFullRow)
	}
	return mode, nil
}
