// Package config handles configuration loading and validation for gridedit.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/colonyops/gridedit/internal/core/editing"
)

// Config holds the application configuration.
type Config struct {
	Editing  EditingConfig `yaml:"editing"`
	Columns  []ColumnRule  `yaml:"columns"`
	TUI      TUIConfig     `yaml:"tui"`
	LogLevel string        `yaml:"log_level"`
	DataDir  string        `yaml:"-"` // set by caller, not from config file
}

// EditingConfig holds the edit session settings.
type EditingConfig struct {
	Mode          string `yaml:"mode"`           // single-cell or full-row
	ClickToEdit   int    `yaml:"click_to_edit"`  // 1 or 2 clicks start editing
	Batch         bool   `yaml:"batch"`          // start sessions in batch mode
	InvalidCommit string `yaml:"invalid_commit"` // block or revert
	GroupEdit     bool   `yaml:"group_edit"`
	TreeData      bool   `yaml:"tree_data"`
}

// ColumnRule overrides column settings for every column whose ID matches
// the doublestar pattern. Later rules win.
type ColumnRule struct {
	Match           string   `yaml:"match"`
	Editable        *bool    `yaml:"editable"`
	SingleClickEdit *bool    `yaml:"single_click_edit"`
	Type            string   `yaml:"type"`
	Required        bool     `yaml:"required"`
	MinLength       int      `yaml:"min_length"`
	MaxLength       int      `yaml:"max_length"`
	Pattern         string   `yaml:"pattern"`
	Min             *float64 `yaml:"min"`
	Max             *float64 `yaml:"max"`
}

// TUIConfig holds display settings.
type TUIConfig struct {
	Theme     string `yaml:"theme"`
	CellWidth int    `yaml:"cell_width"`
	Watch     *bool  `yaml:"watch"` // reload the dataset when it changes on disk
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	watch := true
	return Config{
		Editing: EditingConfig{
			Mode:          string(editing.ModeSingleCell),
			ClickToEdit:   2,
			InvalidCommit: string(editing.InvalidCommitBlock),
		},
		TUI: TUIConfig{
			Theme:     "tokyo-night",
			CellWidth: 14,
			Watch:     &watch,
		},
		LogLevel: "info",
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Editing.Mode == "" {
		c.Editing.Mode = defaults.Editing.Mode
	}
	if c.Editing.ClickToEdit == 0 {
		c.Editing.ClickToEdit = defaults.Editing.ClickToEdit
	}
	if c.Editing.InvalidCommit == "" {
		c.Editing.InvalidCommit = defaults.Editing.InvalidCommit
	}
	if c.TUI.Theme == "" {
		c.TUI.Theme = defaults.TUI.Theme
	}
	if c.TUI.CellWidth == 0 {
		c.TUI.CellWidth = defaults.TUI.CellWidth
	}
	if c.TUI.Watch == nil {
		c.TUI.Watch = defaults.TUI.Watch
	}
	if c.LogLevel == "" {
		c.LogLevel = defaults.LogLevel
	}
}

// Validate checks that the configuration is structurally valid.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	if !editing.Mode(c.Editing.Mode).Valid() {
		return fmt.Errorf("editing.mode must be %q or %q, got %q", editing.ModeSingleCell, editing.ModeFullRow, c.Editing.Mode)
	}

	if c.Editing.ClickToEdit != 1 && c.Editing.ClickToEdit != 2 {
		return fmt.Errorf("editing.click_to_edit must be 1 or 2")
	}

	switch editing.InvalidCommitPolicy(c.Editing.InvalidCommit) {
	case editing.InvalidCommitBlock, editing.InvalidCommitRevert:
	default:
		return fmt.Errorf("editing.invalid_commit must be %q or %q", editing.InvalidCommitBlock, editing.InvalidCommitRevert)
	}

	if c.TUI.CellWidth < 4 {
		return fmt.Errorf("tui.cell_width must be at least 4")
	}

	for i, rule := range c.Columns {
		if strings.TrimSpace(rule.Match) == "" {
			return fmt.Errorf("columns[%d]: match is required", i)
		}
	}

	return nil
}

// Settings converts the editing section into service settings.
func (c *Config) Settings() editing.Settings {
	return editing.Settings{
		Mode:          editing.Mode(c.Editing.Mode),
		ClickToEdit:   c.Editing.ClickToEdit,
		Batch:         c.Editing.Batch,
		InvalidCommit: editing.InvalidCommitPolicy(c.Editing.InvalidCommit),
		GroupEdit:     c.Editing.GroupEdit,
		TreeData:      c.Editing.TreeData,
	}
}

// WatchEnabled reports whether the TUI reloads datasets changed on disk.
func (c *Config) WatchEnabled() bool {
	return c.TUI.Watch == nil || *c.TUI.Watch
}

// DraftsDir returns the directory holding saved drafts.
func (c *Config) DraftsDir() string {
	return filepath.Join(c.DataDir, "drafts")
}

// LogFile returns the default log file path.
func (c *Config) LogFile() string {
	return filepath.Join(c.DataDir, "gridedit.log")
}
