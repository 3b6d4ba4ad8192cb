package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// ContextHook extracts the dataset path and edit mode from context and adds
// them to log events.
type ContextHook struct{}

// Run adds contextual fields to the zerolog event.
func (h ContextHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	ctx := e.GetCtx()
	if ctx == context.Background() || ctx == nil {
		return
	}

	if path := GetDataset(ctx); path != "" {
		e.Str("dataset", path)
	}

	if mode := GetEditMode(ctx); mode != "" {
		e.Str("edit_mode", mode)
	}
}
