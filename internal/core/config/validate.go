package config

import (
	"fmt"
	"os"
	"regexp"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hay-kot/criterio"

	"github.com/colonyops/gridedit/internal/core/grid"
	"github.com/colonyops/gridedit/internal/core/styles"
)

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// ValidateDeep performs comprehensive validation of the configuration
// including glob and regex syntax, numeric bounds, the theme name and file
// accessibility. The configPath argument specifies the config file
// location to validate (empty string skips the config file check). This
// calls Validate() first for basic structural validation.
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		c.validateFileAccess(configPath),
		c.validateColumnRules(),
		criterio.Run("tui.theme", c.TUI.Theme, themeExists),
	)
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	for i, rule := range c.Columns {
		if rule.Editable == nil && rule.SingleClickEdit == nil && rule.Type == "" &&
			!rule.Required && rule.MinLength == 0 && rule.MaxLength == 0 &&
			rule.Pattern == "" && rule.Min == nil && rule.Max == nil {
			warnings = append(warnings, ValidationWarning{
				Category: "Columns",
				Item:     fmt.Sprintf("columns[%d]", i),
				Message:  fmt.Sprintf("rule for %q changes nothing", rule.Match),
			})
		}
	}

	if c.Editing.TreeData && !c.Editing.GroupEdit {
		warnings = append(warnings, ValidationWarning{
			Category: "Editing",
			Item:     "tree_data",
			Message:  "tree filler rows stay read-only unless group_edit is enabled",
		})
	}

	return warnings
}

func (c *Config) validateFileAccess(configPath string) error {
	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
	)
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

// isDirectoryOrNotExist validates that a path is a directory or doesn't exist.
func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}

func themeExists(name string) error {
	if _, ok := styles.GetPalette(name); !ok {
		return fmt.Errorf("unknown theme %q", name)
	}
	return nil
}

// validateColumnRules checks glob and regex syntax, value types and
// numeric bounds of every column rule.
func (c *Config) validateColumnRules() error {
	var errs criterio.FieldErrorsBuilder
	for i, rule := range c.Columns {
		field := fmt.Sprintf("columns[%d]", i)

		if !doublestar.ValidatePattern(rule.Match) {
			errs = errs.Append(field+".match", fmt.Errorf("invalid glob %q", rule.Match))
		}
		if rule.Pattern != "" {
			if _, err := regexp.Compile(rule.Pattern); err != nil {
				errs = errs.Append(field+".pattern", fmt.Errorf("invalid regex %q: %w", rule.Pattern, err))
			}
		}
		if !grid.ValueType(rule.Type).Valid() {
			errs = errs.Append(field+".type", fmt.Errorf("must be string, number or bool, got %q", rule.Type))
		}
		if rule.MinLength < 0 || rule.MaxLength < 0 {
			errs = errs.Append(field, fmt.Errorf("length bounds cannot be negative"))
		}
		if rule.MaxLength > 0 && rule.MinLength > rule.MaxLength {
			errs = errs.Append(field+".min_length", fmt.Errorf("greater than max_length"))
		}
		if rule.Min != nil && rule.Max != nil && *rule.Min > *rule.Max {
			errs = errs.Append(field+".min", fmt.Errorf("greater than max"))
		}
	}
	return errs.ToError()
}
