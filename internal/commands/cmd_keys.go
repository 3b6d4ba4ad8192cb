package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/gridedit/internal/core/styles"
	"github.com/colonyops/gridedit/internal/tui"
)

type KeysCmd struct {
	flags *Flags

	// flags
	raw   bool
	width int
}

// NewKeysCmd creates a new keys command
func NewKeysCmd(flags *Flags) *KeysCmd {
	return &KeysCmd{flags: flags}
}

// Register adds the keys command to the application
func (cmd *KeysCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "keys",
		Usage:     "Show the grid key bindings",
		UsageText: "gridedit keys [--raw]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "raw",
				Usage:       "print markdown without rendering",
				Destination: &cmd.raw,
			},
			&cli.IntFlag{
				Name:        "width",
				Usage:       "wrap rendered output at this width",
				Value:       80,
				Destination: &cmd.width,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *KeysCmd) run(_ context.Context, c *cli.Command) error {
	md := keysMarkdown(tui.DefaultKeyMap().Sections())

	out := c.Root().Writer
	if cmd.raw {
		_, err := fmt.Fprint(out, md)
		return err
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(styles.GlamourStyle()),
		glamour.WithWordWrap(cmd.width),
	)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}

	rendered, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("render keys: %w", err)
	}

	_, err = fmt.Fprint(out, rendered)
	return err
}

func keysMarkdown(sections []tui.HelpSection) string {
	var b strings.Builder
	b.WriteString("# Key bindings\n")

	for _, s := range sections {
		fmt.Fprintf(&b, "\n## %s\n\n", s.Title)
		b.WriteString("| Key | Action |\n|-----|--------|\n")
		for _, binding := range s.Bindings {
			h := binding.Help()
			fmt.Fprintf(&b, "| `%s` | %s |\n", h.Key, h.Desc)
		}
	}

	return b.String()
}
