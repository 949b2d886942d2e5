package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	perrors "github.com/matzehuels/plategen/pkg/errors"
	plateio "github.com/matzehuels/plategen/pkg/io"
	"github.com/matzehuels/plategen/pkg/pipeline"
)

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		title      string
		wellSize   float64
		noLabels   bool
		flags      layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "render [experiments|layout.json]",
		Short: "Render plate maps and the reagent key",
		Long: `Render plate maps and the reagent key.

The render command accepts either an experiments file, which is laid out
first, or a layout.json file produced by 'layout'. Output formats:

  svg    plate grids and legend (default)
  html   standalone page with the SVG and a legend table
  png    raster image (requires rsvg-convert)
  pdf    vector document (requires rsvg-convert)
  json   the layout itself
  txt    coloured terminal tables

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.baseOptions()
			if err != nil {
				return err
			}
			flags.apply(cmd, &opts)
			if formats := parseFormats(formatsStr); formats != nil {
				opts.Formats = formats
			}
			if cmd.Flags().Changed("well-size") {
				opts.WellSize = wellSize
			}
			if cmd.Flags().Changed("no-labels") {
				opts.NoLabels = noLabels
			}
			opts.Title = title
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), newPrinter(cmd.OutOrStdout()), args[0], opts, output, flags.noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): "+strings.Join(pipeline.FormatNames, ", ")+" (comma-separated)")
	cmd.Flags().StringVar(&title, "title", "", "title shown above the plates")
	cmd.Flags().Float64Var(&wellSize, "well-size", pipeline.DefaultWellSize, "well edge length in SVG units")
	cmd.Flags().BoolVar(&noLabels, "no-labels", false, "omit sample names inside wells")
	flags.register(cmd)

	return cmd
}

// isLayoutFile reports whether path names a computed layout rather than an
// experiments file.
func isLayoutFile(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), layoutSuffix)
}

// loadLayout reads a layout file, or lays out an experiments file.
func loadLayout(ctx context.Context, runner *pipeline.Runner, input string, opts pipeline.Options) (plateio.Layout, bool, error) {
	if isLayoutFile(input) {
		l, err := plateio.ReadLayoutFile(input)
		if err != nil {
			return plateio.Layout{}, false, fmt.Errorf("load layout %s: %w", input, err)
		}
		return l, false, nil
	}
	req, err := plateio.ImportFile(input)
	if err != nil {
		return plateio.Layout{}, false, fmt.Errorf("load experiments %s: %w", input, err)
	}
	l, hit, err := runner.LayoutWithCacheInfo(ctx, req, opts)
	if err != nil {
		return plateio.Layout{}, false, fmt.Errorf("compute layout: %w", err)
	}
	return l, hit, nil
}

// runRender loads or computes the layout and renders each format.
func (c *CLI) runRender(ctx context.Context, out *printer, input string, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", strings.Join(opts.Formats, ", ")))
	spinner.Start()

	layout, layoutHit, err := loadLayout(ctx, runner, input, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}

	artifacts, renderHit, err := runner.RenderWithCacheInfo(ctx, layout, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return fmt.Errorf("render: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	return writeArtifacts(out, artifactWriteParams{
		artifacts: artifacts,
		formats:   opts.Formats,
		input:     input,
		output:    output,
		layout:    layout,
		cacheHit:  layoutHit || renderHit,
	})
}

// artifactWriteParams groups what writeArtifacts needs.
type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	input     string
	output    string
	layout    plateio.Layout
	cacheHit  bool
}

// writeArtifacts writes each rendered format next to the input (or to output)
// and prints a summary.
func writeArtifacts(out *printer, p artifactWriteParams) error {
	single := len(p.formats) == 1
	var written []string
	for _, format := range p.formats {
		data, ok := p.artifacts[format]
		if !ok {
			continue
		}
		path := outputPath(p.input, p.output, format, single)
		if format == pipeline.FormatJSON && p.output == "" {
			path = filepath.Join(filepath.Dir(p.input), baseName(p.input)+layoutSuffix)
		}
		if err := perrors.ValidatePath(path); err != nil {
			return err
		}
		if filepath.Clean(path) == filepath.Clean(p.input) {
			return fmt.Errorf("refusing to overwrite input %s", p.input)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}

	out.success("Rendered %s", plural(len(written), "file"))
	for _, path := range written {
		out.file(path)
	}
	out.layoutStats(p.layout, p.cacheHit)

	if !slices.Contains(p.formats, pipeline.FormatText) {
		out.newline()
		out.nextStep("Preview in terminal", appName+" show "+p.input)
	}
	return nil
}
