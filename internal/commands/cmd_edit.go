package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/colonyops/gridedit/internal/core/drafts"
	"github.com/colonyops/gridedit/internal/core/styles"
	"github.com/colonyops/gridedit/internal/store/yamlfile"
	"github.com/colonyops/gridedit/internal/tui"
	"github.com/colonyops/gridedit/pkg/profiler"
	"github.com/colonyops/gridedit/pkg/utils"
)

type EditCmd struct {
	flags *Flags

	// flags
	mode    string
	batch   bool
	resume  bool
	noWatch bool
	pprof   int

	// notices are printed once the grid releases the terminal
	notices utils.DeferredWriter
}

// NewEditCmd creates a new edit command
func NewEditCmd(flags *Flags) *EditCmd {
	return &EditCmd{flags: flags}
}

func (cmd *EditCmd) cliFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "mode",
			Aliases:     []string{"m"},
			Usage:       "editing mode (single-cell, full-row); overrides editing.mode",
			Destination: &cmd.mode,
		},
		&cli.BoolFlag{
			Name:        "batch",
			Aliases:     []string{"b"},
			Usage:       "start in batch mode",
			Destination: &cmd.batch,
		},
		&cli.BoolFlag{
			Name:        "resume",
			Aliases:     []string{"r"},
			Usage:       "restore the saved draft for the dataset (implies --batch)",
			Destination: &cmd.resume,
		},
		&cli.BoolFlag{
			Name:        "no-watch",
			Usage:       "do not reload the dataset when it changes on disk",
			Destination: &cmd.noWatch,
		},
		&cli.IntFlag{
			Name:        "profiler-port",
			Usage:       "enable pprof HTTP endpoint on specified port (e.g., 6060)",
			Sources:     cli.EnvVars("GRIDEDIT_PROFILER_PORT"),
			Destination: &cmd.pprof,
		},
	}
}

// Register adds the edit command to the application
func (cmd *EditCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "edit",
		Usage:     "Open a dataset in the interactive grid",
		UsageText: "gridedit edit [options] <dataset.yaml>",
		Description: `Opens the dataset in a terminal grid editor.

Edits are committed cell by cell (single-cell mode) or row by row
(full-row mode). In batch mode nothing is written to the data until the
batch is committed with ctrl+s.

On exit, uncommitted batch edits can be kept as a draft and restored
later with --resume. Committed changes are written back to the file
with ctrl+w, or when confirmed on exit.`,
		Flags:  cmd.cliFlags(),
		Action: cmd.run,
	})

	return app
}

// Flags returns the edit flags for registration on the root command
func (cmd *EditCmd) Flags() []cli.Flag {
	return cmd.cliFlags()
}

// Run executes the editor. Exported for use as default command.
func (cmd *EditCmd) Run(ctx context.Context, c *cli.Command) error {
	return cmd.run(ctx, c)
}

func (cmd *EditCmd) run(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one dataset path. Run 'gridedit --help' for usage")
	}
	path := c.Args().First()

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("the grid editor needs a terminal; use 'gridedit apply' for scripted edits")
	}

	cfg := cmd.flags.Config
	settings := cfg.Settings()

	mode, err := parseMode(cmd.mode, settings.Mode)
	if err != nil {
		return err
	}
	settings.Mode = mode
	settings.Batch = settings.Batch || cmd.batch || cmd.resume

	sess, ctx, err := openSession(ctx, cfg, path, settings)
	if err != nil {
		return err
	}

	store := yamlfile.NewDraftStore(cfg.DraftsDir())

	var resumed *drafts.Draft
	if cmd.resume {
		d, skipped, err := restoreDraft(ctx, store, sess)
		if err != nil {
			return err
		}
		resumed = &d
		if skipped > 0 {
			cmd.notices.Printf("%d draft edit(s) no longer match the dataset and were dropped", skipped)
		}
	}

	if cmd.pprof > 0 {
		prof, err := profiler.Listen(cmd.pprof)
		if err != nil {
			return fmt.Errorf("start profiler: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := prof.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("failed to shutdown profiler server")
			}
		}()
		cmd.notices.Printf("profiler was available at %s", prof.URL())
	}

	var watcher *yamlfile.DatasetWatcher
	if cfg.WatchEnabled() && !cmd.noWatch {
		watcher, err = yamlfile.NewDatasetWatcher(path)
		if err != nil {
			log.Warn().Ctx(ctx).Err(err).Msg("file watching disabled")
			cmd.notices.Printf("file watching disabled: %v", err)
		} else {
			defer func() { _ = watcher.Close() }()
		}
	}

	m := tui.New(cfg, tui.Options{
		Path:    path,
		Dataset: sess.ds,
		Service: sess.svc,
		Bus:     sess.bus,
		Watcher: watcher,
	})
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())

	finalModel, err := p.Run()
	_ = cmd.notices.Flush(os.Stderr)
	if err != nil {
		return fmt.Errorf("run tui: %w", err)
	}

	result := finalModel.(tui.Model).Result()
	return cmd.finish(ctx, store, sess, result, resumed)
}

// restoreDraft loads the draft saved for the session's dataset and
// injects its edits, returning how many no longer resolve to an editable
// cell. The session must already be in batch mode.
func restoreDraft(ctx context.Context, store drafts.Store, sess *session) (drafts.Draft, int, error) {
	probe, err := drafts.New(sess.path, sess.svc.Mode(), nil)
	if err != nil {
		return drafts.Draft{}, 0, fmt.Errorf("resolve dataset path: %w", err)
	}

	d, err := store.Get(ctx, probe.ID)
	if err != nil {
		if errors.Is(err, drafts.ErrNotFound) {
			return drafts.Draft{}, 0, fmt.Errorf("no draft saved for %s", sess.path)
		}
		return drafts.Draft{}, 0, fmt.Errorf("load draft: %w", err)
	}

	if d.Mode.Valid() {
		sess.svc.SetMode(d.Mode)
	}
	skipped := sess.svc.SetEditingCells(d.Edits)
	log.Info().Ctx(ctx).
		Int("edits", len(d.Edits)).
		Int("skipped", skipped).
		Msg("draft restored")

	return d, skipped, nil
}

func (cmd *EditCmd) finish(ctx context.Context, store drafts.Store, sess *session, result tui.Result, resumed *drafts.Draft) error {
	switch {
	case len(result.Pending) > 0:
		keep, err := confirm(
			fmt.Sprintf("Keep %d uncommitted edit(s) as a draft?", len(result.Pending)),
			"Restore them later with 'gridedit edit --resume'.",
		)
		if err != nil {
			return err
		}
		if keep {
			d, err := drafts.New(sess.path, sess.svc.Mode(), result.Pending)
			if err != nil {
				return fmt.Errorf("create draft: %w", err)
			}
			if err := store.Save(ctx, d); err != nil {
				return fmt.Errorf("save draft: %w", err)
			}
			fmt.Println(styles.SuccessTextStyle.Render("Draft saved: " + d.ID))
		}
	case resumed != nil:
		// Everything in the draft was committed or dropped.
		if err := store.Delete(ctx, resumed.ID); err != nil && !errors.Is(err, drafts.ErrNotFound) {
			return fmt.Errorf("delete draft: %w", err)
		}
	}

	if !result.Unsaved {
		return nil
	}

	write, err := confirm(fmt.Sprintf("Write changes to %s?", sess.path), "")
	if err != nil {
		return err
	}
	if !write {
		fmt.Println(styles.WarningTextStyle.Render("Changes discarded"))
		return nil
	}
	if err := sess.ds.Save(sess.path); err != nil {
		return fmt.Errorf("save dataset: %w", err)
	}
	fmt.Println(styles.SuccessTextStyle.Render("Saved " + sess.path))
	return nil
}

// confirm asks a yes/no question. An aborted prompt counts as no.
func confirm(title, description string) (bool, error) {
	var ok bool
	field := huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(&ok)
	if description != "" {
		field = field.Description(description)
	}

	err := huh.NewForm(huh.NewGroup(field)).WithTheme(styles.FormTheme()).Run()
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, fmt.Errorf("prompt: %w", err)
	}
	return ok, nil
}
