package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/gridedit/internal/core/config"
	"github.com/colonyops/gridedit/internal/core/styles"
	"github.com/colonyops/gridedit/pkg/iojson"
)

type ConfigValidateCmd struct {
	flags  *Flags
	format string
}

// NewConfigValidateCmd creates a new config validate command.
func NewConfigValidateCmd(flags *Flags) *ConfigValidateCmd {
	return &ConfigValidateCmd{flags: flags}
}

// Register adds the config validate command to the application.
func (cmd *ConfigValidateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Commands: []*cli.Command{
			{
				Name:        "validate",
				Usage:       "Validate configuration file",
				UsageText:   "gridedit config validate [options]",
				Description: "Validates the configuration file, checking column globs, regex patterns, numeric bounds, the theme and file paths.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Usage:       "output format (text, json)",
						Value:       "text",
						Destination: &cmd.format,
					},
				},
				Action: cmd.run,
			},
		},
	})

	return app
}

// validationIssue is one failed check.
type validationIssue struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

type validationReport struct {
	Valid    bool                       `json:"valid"`
	Errors   []validationIssue          `json:"errors,omitempty"`
	Warnings []config.ValidationWarning `json:"warnings,omitempty"`
}

func buildReport(cfg *config.Config, configPath string) validationReport {
	report := validationReport{Warnings: cfg.Warnings()}

	err := cfg.ValidateDeep(configPath)
	if err == nil {
		report.Valid = true
		return report
	}

	var fieldErrs criterio.FieldErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			report.Errors = append(report.Errors, validationIssue{Field: fe.Field, Message: fe.Err.Error()})
		}
	} else {
		report.Errors = append(report.Errors, validationIssue{Message: err.Error()})
	}
	return report
}

func (cmd *ConfigValidateCmd) run(_ context.Context, c *cli.Command) error {
	report := buildReport(cmd.flags.Config, cmd.flags.ConfigPath)
	out := c.Root().Writer

	var err error
	if cmd.format == "json" {
		err = iojson.Write(out, report)
	} else {
		err = writeReport(out, report)
	}
	if err != nil {
		return err
	}

	if !report.Valid {
		return cli.Exit("", 1)
	}
	return nil
}

func writeReport(w io.Writer, report validationReport) error {
	for _, warn := range report.Warnings {
		line := fmt.Sprintf("%s: %s", warn.Category, warn.Message)
		if warn.Item != "" {
			line += fmt.Sprintf(" (%s)", warn.Item)
		}
		if _, err := fmt.Fprintln(w, styles.WarningTextStyle.Render(line)); err != nil {
			return err
		}
	}

	for _, issue := range report.Errors {
		line := issue.Message
		if issue.Field != "" {
			line = issue.Field + ": " + line
		}
		if _, err := fmt.Fprintln(w, styles.ErrorTextStyle.Render(line)); err != nil {
			return err
		}
	}

	if report.Valid {
		_, err := fmt.Fprintln(w, styles.SuccessTextStyle.Render("Configuration is valid"))
		return err
	}

	_, err := fmt.Fprintln(w, styles.ErrorTextStyle.Render(fmt.Sprintf("%d error(s) found", len(report.Errors))))
	return err
}
