package logutils

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/gridedit/internal/core/logging"
)

func TestNew_WritesJSONWithContext(t *testing.T) {
	file := filepath.Join(t.TempDir(), "logs", "gridedit.log")

	l, closer, err := New("debug", file)
	require.NoError(t, err)

	ctx := logging.WithDataset(context.Background(), "people.yaml")
	l.Debug().Ctx(ctx).Msg("opened")
	closer()

	data, err := os.ReadFile(file)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(string(data))), &entry))
	assert.Equal(t, "opened", entry["message"])
	assert.Equal(t, "people.yaml", entry["dataset"])
	assert.Contains(t, entry, "time")
}

func TestNew_InvalidLevel(t *testing.T) {
	_, _, err := New("loud", "")
	require.Error(t, err)
}

func TestNew_FiltersBelowLevel(t *testing.T) {
	file := filepath.Join(t.TempDir(), "gridedit.log")

	l, closer, err := New("warn", file)
	require.NoError(t, err)
	l.Info().Msg("hidden")
	closer()

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Empty(t, data)
}
