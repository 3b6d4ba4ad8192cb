package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// NewApp builds the root command with every subcommand registered. Running
// gridedit with a dataset path and no subcommand opens the editor.
func NewApp(flags *Flags, version string) *cli.Command {
	app := &cli.Command{
		Name:      "gridedit",
		Usage:     "Edit tabular datasets in the terminal",
		UsageText: "gridedit [global options] [command [command options]] <dataset.yaml>",
		Description: `gridedit opens a YAML dataset in an editable terminal grid.

Cells are edited one at a time or a whole row at a time. Column rules in
the config file decide which columns are editable and how values are
validated. Batch mode collects edits without touching the data until the
batch is committed.

Run 'gridedit <dataset.yaml>' to open the editor.
Run 'gridedit apply' to apply edits from JSON or YAML without the grid.`,
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("GRIDEDIT_LOG_LEVEL"),
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <data-dir>/gridedit.log)",
				Sources:     cli.EnvVars("GRIDEDIT_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("GRIDEDIT_CONFIG"),
				Value:       DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("GRIDEDIT_DATA_DIR"),
				Value:       DefaultDataDir(),
				Destination: &flags.DataDir,
			},
		},
	}

	editCmd := NewEditCmd(flags)

	app = editCmd.Register(app)
	app = NewApplyCmd(flags).Register(app)
	app = NewDraftsCmd(flags).Register(app)
	app = NewKeysCmd(flags).Register(app)
	app = NewConfigValidateCmd(flags).Register(app)

	// Register edit flags on root command
	app.Flags = append(app.Flags, editCmd.Flags()...)

	// Open the editor when no subcommand is provided
	app.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() == 0 {
			return cli.ShowAppHelp(c)
		}
		if c.Args().Len() > 1 {
			return fmt.Errorf("unknown command %q. Run 'gridedit --help' for usage", c.Args().First())
		}
		return editCmd.Run(ctx, c)
	}

	return app
}
