package commands

import (
	"context"
	"fmt"

	"github.com/hay-kot/criterio"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/gridedit/internal/core/config"
	"github.com/colonyops/gridedit/internal/core/editing"
	"github.com/colonyops/gridedit/internal/core/eventbus"
	"github.com/colonyops/gridedit/pkg/iojson"
)

type ApplyCmd struct {
	flags  *Flags
	fr     *iojson.FileReader[ApplyInput]
	mode   string
	dryRun bool
}

func NewApplyCmd(flags *Flags) *ApplyCmd {
	return &ApplyCmd{
		flags: flags,
		fr:    &iojson.FileReader[ApplyInput]{},
	}
}

func (cmd *ApplyCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "apply",
		Usage: "Apply cell edits to a dataset without the grid",
		UsageText: `gridedit apply [options] <dataset.yaml>

Read from stdin:
  echo '{"edits":[{"row":"r1","column":"name","value":"ada"}]}' | gridedit apply people.yaml

Read from file:
  gridedit apply -f edits.yaml people.yaml`,
		Description: `Applies a list of cell edits as a single batch.

Every edit is validated against the column rules before anything is
written. With invalid_commit: block a single failure aborts the whole
batch; with invalid_commit: revert failing cells are dropped and the rest
are committed.

Input schema:
  {
    "edits": [
      {"row": "row-id", "column": "column-id", "value": "new value"}
    ]
  }

Edits naming unknown rows, unknown columns or read-only cells are skipped.
Output is JSON with the applied, skipped and failed counts.`,
		Flags: []cli.Flag{
			cmd.fr.Flag(),
			&cli.StringFlag{
				Name:        "mode",
				Aliases:     []string{"m"},
				Usage:       "editing mode used for validation (single-cell, full-row)",
				Destination: &cmd.mode,
			},
			&cli.BoolFlag{
				Name:        "dry-run",
				Usage:       "validate and report without writing the dataset",
				Destination: &cmd.dryRun,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ApplyCmd) run(ctx context.Context, c *cli.Command) error {
	out := c.Root().Writer

	if c.Args().Len() != 1 {
		return fail(c, "expected exactly one dataset path", nil)
	}

	input, err := cmd.fr.Read()
	if err != nil {
		return fail(c, fmt.Sprintf("read input: %s", err), nil)
	}

	if err := input.Validate(); err != nil {
		return fail(c, fmt.Sprintf("invalid input: %s", err), nil)
	}

	result, err := applyEdits(ctx, cmd.flags.Config, c.Args().First(), input, applyOptions{
		Mode:   cmd.mode,
		DryRun: cmd.dryRun,
	})
	if err != nil {
		return fail(c, err.Error(), map[string]any{"dataset": c.Args().First()})
	}

	if err := iojson.Write(out, result); err != nil {
		return err
	}
	if len(result.Failed) > 0 && !result.Committed {
		return cli.Exit("", 1)
	}
	return nil
}

// fail reports a JSON error document on stderr and exits non-zero.
func fail(c *cli.Command, msg string, data map[string]any) error {
	if err := iojson.WriteError(c.Root().ErrWriter, msg, data); err != nil {
		return err
	}
	return cli.Exit("", 1)
}

type applyOptions struct {
	Mode   string
	DryRun bool
}

// applyEdits runs input through a headless editing session on the dataset
// at path and writes the result back unless the batch was blocked or this
// is a dry run.
func applyEdits(ctx context.Context, cfg *config.Config, path string, input ApplyInput, opts applyOptions) (ApplyOutput, error) {
	settings := cfg.Settings()
	mode, err := parseMode(opts.Mode, settings.Mode)
	if err != nil {
		return ApplyOutput{}, err
	}
	settings.Mode = mode
	settings.Batch = true

	sess, ctx, err := openSession(ctx, cfg, path, settings)
	if err != nil {
		return ApplyOutput{}, err
	}

	output := ApplyOutput{
		Dataset: path,
		Mode:    string(mode),
		DryRun:  opts.DryRun,
	}

	sess.bus.SubscribeCellValueChanged(func(eventbus.CellValueChangedPayload) {
		output.Applied++
	})

	output.Skipped = sess.svc.SetEditingCells(input.cellEdits())

	for _, ve := range sess.svc.ValidateEdit() {
		f := ApplyFailure{Row: ve.Position.Row.ID, Messages: ve.Messages}
		if ve.Position.Column != nil {
			f.Column = ve.Position.Column.ID
		}
		output.Failed = append(output.Failed, f)
	}

	if opts.DryRun {
		output.Pending = len(sess.svc.EditingCells(editing.FilterAll))
		log.Info().Ctx(ctx).
			Int("pending", output.Pending).
			Int("failed", len(output.Failed)).
			Msg("dry run complete")
		return output, nil
	}

	// Under the block policy a stop still commits the valid cells, so the
	// whole batch is held back here instead.
	blocked := len(output.Failed) > 0 && settings.InvalidCommit != editing.InvalidCommitRevert
	if !blocked {
		output.Committed = sess.svc.DisableBatchEditing()
	}
	if !output.Committed {
		output.Pending = len(sess.svc.EditingCells(editing.FilterAll))
		log.Warn().Ctx(ctx).
			Int("failed", len(output.Failed)).
			Msg("batch blocked by validation")
		return output, nil
	}

	if output.Applied > 0 {
		if err := sess.ds.Save(path); err != nil {
			return output, fmt.Errorf("save dataset: %w", err)
		}
		output.Saved = true
	}

	log.Info().Ctx(ctx).
		Int("applied", output.Applied).
		Int("skipped", output.Skipped).
		Int("failed", len(output.Failed)).
		Msg("edits applied")

	return output, nil
}

// ApplyInput is the input schema of the apply command.
type ApplyInput struct {
	Edits []ApplyEdit `json:"edits" yaml:"edits"`
}

// ApplyEdit sets one cell.
type ApplyEdit struct {
	Row    string `json:"row"    yaml:"row"`
	Column string `json:"column" yaml:"column"`
	Value  any    `json:"value"  yaml:"value"`
}

// Validate checks the structure of the input. Whether rows and columns
// exist is decided against the dataset later.
func (in ApplyInput) Validate() error {
	if len(in.Edits) == 0 {
		return criterio.NewFieldErrors("edits", fmt.Errorf("array is empty"))
	}

	var errs criterio.FieldErrorsBuilder
	seen := make(map[[2]string]bool)

	for i, e := range in.Edits {
		field := fmt.Sprintf("edits[%d]", i)

		if e.Row == "" {
			errs = errs.Append(field+".row", fmt.Errorf("row is required"))
			continue
		}
		if e.Column == "" {
			errs = errs.Append(field+".column", fmt.Errorf("column is required"))
			continue
		}

		key := [2]string{e.Row, e.Column}
		if seen[key] {
			errs = errs.Append(field, fmt.Errorf("duplicate edit for %s/%s", e.Row, e.Column))
			continue
		}
		seen[key] = true
	}

	return errs.ToError()
}

func (in ApplyInput) cellEdits() []editing.CellEdit {
	out := make([]editing.CellEdit, 0, len(in.Edits))
	for _, e := range in.Edits {
		out = append(out, editing.CellEdit{
			RowID:    e.Row,
			ColumnID: e.Column,
			NewValue: e.Value,
		})
	}
	return out
}

// ApplyOutput is the JSON result of the apply command.
type ApplyOutput struct {
	Dataset   string         `json:"dataset"`
	Mode      string         `json:"mode"`
	DryRun    bool           `json:"dry_run,omitempty"`
	Applied   int            `json:"applied"`
	Skipped   int            `json:"skipped"`
	Pending   int            `json:"pending,omitempty"`
	Committed bool           `json:"committed"`
	Saved     bool           `json:"saved"`
	Failed    []ApplyFailure `json:"failed,omitempty"`
}

// ApplyFailure lists the validation messages for a cell, or for a whole
// row when Column is empty.
type ApplyFailure struct {
	Row      string   `json:"row"`
	Column   string   `json:"column,omitempty"`
	Messages []string `json:"messages"`
}
