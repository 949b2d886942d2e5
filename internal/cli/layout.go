package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	perrors "github.com/matzehuels/plategen/pkg/errors"
	plateio "github.com/matzehuels/plategen/pkg/io"
	"github.com/matzehuels/plategen/pkg/pipeline"
	"github.com/matzehuels/plategen/pkg/plate"
)

// layoutSuffix is appended to the input base name for layout files.
const layoutSuffix = ".layout.json"

// layoutFlags are the flags shared by every command that computes a layout.
type layoutFlags struct {
	packer  string
	seed    uint64
	noCache bool
	refresh bool
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.packer, "packer", pipeline.DefaultPacker,
		"placement strategy: "+strings.Join(plate.PackerNames(), ", "))
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "fix reagent colours (0 picks random colours)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute the placement even if cached")
}

// apply overrides opts with the flags the user actually set.
func (f *layoutFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	if cmd.Flags().Changed("packer") {
		opts.Packer = f.packer
	}
	if cmd.Flags().Changed("seed") {
		opts.Seed = f.seed
	}
	opts.Refresh = f.refresh
}

// layoutCommand creates the layout command for computing plate layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output string
		flags  layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [experiments]",
		Short: "Place experiments onto plates",
		Long: `Place experiments onto plates.

The layout command reads an experiments file (JSON, TOML or YAML), builds the
replicate matrix of every experiment, splits it to plate size and packs the
pieces onto as few plates as the packer manages. The result is written as a
layout.json file (same format as 'render -f json') that 'render', 'show' and
'view' accept.

Placements are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.baseOptions()
			if err != nil {
				return err
			}
			flags.apply(cmd, &opts)
			if err := opts.ValidateForLayout(); err != nil {
				return err
			}
			return c.runLayout(cmd.Context(), newPrinter(cmd.OutOrStdout()), args[0], opts, output, flags.noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	flags.register(cmd)

	return cmd
}

// runLayout loads the experiments, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, out *printer, input string, opts pipeline.Options, output string, noCache bool) error {
	req, err := plateio.ImportFile(input)
	if err != nil {
		return fmt.Errorf("load experiments %s: %w", input, err)
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger
	prog := newProgress(loggerFromContext(ctx))

	spinner := newSpinnerWithContext(ctx, "Placing experiments...")
	spinner.Start()

	layout, cacheHit, err := runner.LayoutWithCacheInfo(ctx, req, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Placed %d experiments", len(req.SampleList)))

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		outputPath = filepath.Join(filepath.Dir(input), baseName(input)+layoutSuffix)
	}
	if err := perrors.ValidatePath(outputPath); err != nil {
		return err
	}

	if err := plateio.WriteLayoutFile(layout, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	out.success("Layout complete")
	out.file(outputPath)
	out.layoutStats(layout, cacheHit)
	out.newline()
	out.nextStep("Render", appName+" render "+outputPath)

	return nil
}
