package commands

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/gridedit/internal/core/drafts"
	"github.com/colonyops/gridedit/internal/core/styles"
	"github.com/colonyops/gridedit/internal/store/yamlfile"
	"github.com/colonyops/gridedit/pkg/iojson"
)

type DraftsCmd struct {
	flags *Flags

	// flags
	jsonOutput bool

	// store is created lazily so tests can inject one
	store drafts.Store
}

// NewDraftsCmd creates a new drafts command
func NewDraftsCmd(flags *Flags) *DraftsCmd {
	return &DraftsCmd{flags: flags}
}

// Register adds the drafts command to the application
func (cmd *DraftsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "drafts",
		Usage: "Manage saved batch-edit drafts",
		Description: `Drafts hold the uncommitted batch edits of an interrupted editing
session. They are keyed by dataset path; restore one with
'gridedit edit --resume <dataset>'.`,
		Commands: []*cli.Command{
			{
				Name:      "ls",
				Usage:     "List saved drafts",
				UsageText: "gridedit drafts ls [--json]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "json",
						Usage:       "output as JSON lines",
						Destination: &cmd.jsonOutput,
					},
				},
				Action: cmd.runList,
			},
			{
				Name:      "show",
				Usage:     "Show the edits held by a draft",
				UsageText: "gridedit drafts show <id|dataset>",
				Action:    cmd.runShow,
			},
			{
				Name:      "rm",
				Usage:     "Delete a draft",
				UsageText: "gridedit drafts rm <id|dataset>",
				Action:    cmd.runRemove,
			},
		},
	})

	return app
}

func (cmd *DraftsCmd) draftStore() drafts.Store {
	if cmd.store == nil {
		cmd.store = yamlfile.NewDraftStore(cmd.flags.Config.DraftsDir())
	}
	return cmd.store
}

// draftSummary is the JSON shape of one listed draft.
type draftSummary struct {
	ID      string    `json:"id"`
	Dataset string    `json:"dataset"`
	Mode    string    `json:"mode"`
	Edits   int       `json:"edits"`
	SavedAt time.Time `json:"saved_at"`
}

func (cmd *DraftsCmd) runList(ctx context.Context, c *cli.Command) error {
	list, err := cmd.draftStore().List(ctx)
	if err != nil {
		return fmt.Errorf("list drafts: %w", err)
	}

	out := c.Root().Writer

	if cmd.jsonOutput {
		for _, d := range list {
			summary := draftSummary{
				ID:      d.ID,
				Dataset: d.Dataset,
				Mode:    string(d.Mode),
				Edits:   len(d.Edits),
				SavedAt: d.SavedAt,
			}
			if err := iojson.WriteLine(out, summary); err != nil {
				return fmt.Errorf("encode draft: %w", err)
			}
		}
		return nil
	}

	if len(list) == 0 {
		_, _ = fmt.Fprintln(c.Root().ErrWriter, "No drafts found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tDATASET\tMODE\tEDITS\tSAVED")
	for _, d := range list {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			shortID(d.ID), d.Dataset, d.Mode, len(d.Edits), d.SavedAt.Format(time.DateTime))
	}
	return w.Flush()
}

func (cmd *DraftsCmd) runShow(ctx context.Context, c *cli.Command) error {
	d, err := cmd.resolve(ctx, c)
	if err != nil {
		return err
	}

	out := c.Root().Writer
	_, _ = fmt.Fprintln(out, styles.CommandHeaderStyle.Render(d.Dataset))
	_, _ = fmt.Fprintf(out, "%s  %s  %s\n",
		d.ID, d.Mode, d.SavedAt.Format(time.DateTime))
	_, _ = fmt.Fprintln(out, styles.DividerStyle.Render(strings.Repeat("─", 40)))

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ROW\tCOLUMN\tOLD\tNEW")
	for _, e := range d.Edits {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.RowID, e.ColumnID, display(e.OldValue), display(e.NewValue))
	}
	return w.Flush()
}

func (cmd *DraftsCmd) runRemove(ctx context.Context, c *cli.Command) error {
	d, err := cmd.resolve(ctx, c)
	if err != nil {
		return err
	}

	if err := cmd.draftStore().Delete(ctx, d.ID); err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}

	_, _ = fmt.Fprintln(c.Root().Writer, styles.SuccessTextStyle.Render("Deleted draft for "+d.Dataset))
	return nil
}

// resolve finds a draft by full ID, ID prefix or dataset path.
func (cmd *DraftsCmd) resolve(ctx context.Context, c *cli.Command) (drafts.Draft, error) {
	if c.Args().Len() != 1 {
		return drafts.Draft{}, fmt.Errorf("expected a draft ID or dataset path")
	}
	return findDraft(ctx, cmd.draftStore(), c.Args().First())
}

func findDraft(ctx context.Context, store drafts.Store, ref string) (drafts.Draft, error) {
	if abs, err := filepath.Abs(ref); err == nil {
		d, err := store.Get(ctx, drafts.IDFor(abs))
		if err == nil {
			return d, nil
		}
		if !errors.Is(err, drafts.ErrNotFound) {
			return drafts.Draft{}, err
		}
	}

	list, err := store.List(ctx)
	if err != nil {
		return drafts.Draft{}, fmt.Errorf("list drafts: %w", err)
	}

	var matches []drafts.Draft
	for _, d := range list {
		if strings.HasPrefix(d.ID, ref) {
			matches = append(matches, d)
		}
	}

	switch len(matches) {
	case 0:
		return drafts.Draft{}, fmt.Errorf("no draft matches %q", ref)
	case 1:
		return matches[0], nil
	default:
		return drafts.Draft{}, fmt.Errorf("%q matches %d drafts; use a longer ID", ref, len(matches))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func display(v any) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprint(v)
}
