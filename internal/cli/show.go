package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	plateio "github.com/matzehuels/plategen/pkg/io"
	"github.com/matzehuels/plategen/pkg/render/sink"
)

// viewFlags are shared by show and view.
type viewFlags struct {
	layout    layoutFlags
	cellWidth int
	reagents  bool
}

func (f *viewFlags) register(cmd *cobra.Command) {
	f.layout.register(cmd)
	cmd.Flags().IntVar(&f.cellWidth, "cell-width", 8, "truncate well labels to this many characters (0 disables)")
	cmd.Flags().BoolVar(&f.reagents, "reagents", false, "print sample/reagent in each well")
}

func (f *viewFlags) textOptions() []sink.TextOption {
	opts := []sink.TextOption{sink.WithCellWidth(f.cellWidth)}
	if f.reagents {
		opts = append(opts, sink.WithReagentNames())
	}
	return opts
}

// showCommand creates the show command for printing plate maps.
func (c *CLI) showCommand() *cobra.Command {
	var flags viewFlags

	cmd := &cobra.Command{
		Use:   "show [experiments|layout.json]",
		Short: "Print plate maps to the terminal",
		Long: `Print plate maps to the terminal.

Each plate is drawn as a table with row letters and column numbers. Filled
wells are shaded with their reagent colour and show the sample name. The
reagent key follows the last plate.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := c.layoutForDisplay(cmd, args[0], &flags.layout)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), sink.RenderText(l, flags.textOptions()...))
			newPrinter(cmd.OutOrStdout()).layoutStats(l, false)
			return nil
		},
	}
	flags.register(cmd)

	return cmd
}

// viewCommand creates the view command for browsing plates interactively.
func (c *CLI) viewCommand() *cobra.Command {
	var flags viewFlags

	cmd := &cobra.Command{
		Use:   "view [experiments|layout.json]",
		Short: "Browse plates interactively",
		Long: `Browse plates interactively.

Shows one plate at a time. Use ←/→ (or h/l) to page between plates, g/G to
jump to the first or last plate, and q to quit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := c.layoutForDisplay(cmd, args[0], &flags.layout)
			if err != nil {
				return err
			}
			if len(l.Plates) == 0 {
				newPrinter(cmd.OutOrStdout()).info("Layout has no plates")
				return nil
			}
			m := NewPlateViewModel(l, flags.textOptions()...)
			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
	flags.register(cmd)

	return cmd
}

// layoutForDisplay loads or computes the layout named by input using the
// layout flags set on cmd.
func (c *CLI) layoutForDisplay(cmd *cobra.Command, input string, flags *layoutFlags) (plateio.Layout, error) {
	opts, err := c.baseOptions()
	if err != nil {
		return plateio.Layout{}, err
	}
	flags.apply(cmd, &opts)
	if err := opts.ValidateForLayout(); err != nil {
		return plateio.Layout{}, err
	}

	runner, err := c.newRunner(flags.noCache)
	if err != nil {
		return plateio.Layout{}, fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	opts.Logger = c.Logger

	return c.loadWithSpinner(cmd.Context(), func(ctx context.Context) (plateio.Layout, bool, error) {
		return loadLayout(ctx, runner, input, opts)
	})
}

// loadWithSpinner runs load behind a spinner.
func (c *CLI) loadWithSpinner(ctx context.Context, load func(context.Context) (plateio.Layout, bool, error)) (plateio.Layout, error) {
	spinner := newSpinnerWithContext(ctx, "Placing experiments...")
	spinner.Start()
	l, hit, err := load(ctx)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return plateio.Layout{}, err
	}
	spinner.Stop()
	loggerFromContext(ctx).Debug("layout ready", "plates", len(l.Plates), "cached", hit)
	return l, ctx.Err()
}
