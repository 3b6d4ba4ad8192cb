package commands

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/colonyops/gridedit/internal/tui"
)

func TestKeysMarkdown(t *testing.T) {
	md := keysMarkdown(tui.DefaultKeyMap().Sections())

	assert.True(t, strings.HasPrefix(md, "# Key bindings\n"))
	for _, section := range []string{"## Navigation", "## Editing", "## Session"} {
		assert.Contains(t, md, section)
	}
	assert.Contains(t, md, "| `ctrl+b` | toggle batch |")
	assert.Contains(t, md, "| `alt+enter` | fill selection |")
}
