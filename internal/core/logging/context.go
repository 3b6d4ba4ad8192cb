package logging

import "context"

type contextKey string

const (
	datasetKey  contextKey = "dataset"
	editModeKey contextKey = "edit_mode"
)

// WithDataset adds the path of the dataset being edited to the context.
func WithDataset(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, datasetKey, path)
}

// WithEditMode adds the active edit mode to the context.
func WithEditMode(ctx context.Context, mode string) context.Context {
	return context.WithValue(ctx, editModeKey, mode)
}

// GetDataset retrieves the dataset path from the context.
// Returns empty string if not present.
func GetDataset(ctx context.Context) string {
	if p, ok := ctx.Value(datasetKey).(string); ok {
		return p
	}
	return ""
}

// GetEditMode retrieves the edit mode from the context.
// Returns empty string if not present.
func GetEditMode(ctx context.Context) string {
	if m, ok := ctx.Value(editModeKey).(string); ok {
		return m
	}
	return ""
}
