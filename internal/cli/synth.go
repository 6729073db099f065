package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/matzehuels/shapegrid/pkg/pipeline"
	"github.com/matzehuels/shapegrid/pkg/scene"
)

// synthOpts holds the flags shared by commands that run the pipeline.
type synthOpts struct {
	output     string
	formats    string
	tolerance  float64
	container  string
	candidates string
	gridLines  bool
	synthetic  bool
	labels     bool
	borders    bool
	scale      float64
	refresh    bool
	noCache    bool
}

// synthCommand creates the synth command for recovering a table from a scene.
func (c *CLI) synthCommand() *cobra.Command {
	opts := synthOpts{labels: true}

	cmd := &cobra.Command{
		Use:   "synth [scene]",
		Short: "Recover the table grid of a scene and export it",
		Long: `Recover the table grid behind a scene's shapes and export it.

The scene may be JSON, TOML or YAML. Output files are named after the scene
file unless -o is given; use -o - to write a single format to stdout.`,
		Example: `  # SVG next to the input
  shapegrid synth invoice.json

  # Spreadsheet and PDF with cell borders
  shapegrid synth invoice.yaml -f xlsx,pdf --borders -o out/invoice`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSynth(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output path stem (- for stdout)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output formats: svg, png, pdf, json, xlsx (comma-separated)")
	addGridFlags(cmd, &opts)
	cmd.Flags().BoolVar(&opts.gridLines, "grid-lines", false, "draw row and column boundaries (svg/pdf/png)")
	cmd.Flags().BoolVar(&opts.synthetic, "synthetic", false, "outline synthetic cells (svg/pdf/png)")
	cmd.Flags().BoolVar(&opts.labels, "labels", true, "draw cell labels (svg/pdf/png)")
	cmd.Flags().BoolVar(&opts.borders, "borders", false, "draw cell borders (xlsx)")
	cmd.Flags().Float64Var(&opts.scale, "scale", pipeline.DefaultPNGScale, "raster scale factor (png)")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached results")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

// addGridFlags registers the flags that steer grid synthesis.
func addGridFlags(cmd *cobra.Command, opts *synthOpts) {
	cmd.Flags().Float64Var(&opts.tolerance, "tolerance", 0, "boundary merge distance (default from config or 0.5)")
	cmd.Flags().StringVar(&opts.container, "container", "", "container shape id or name (overrides the scene)")
	cmd.Flags().StringVar(&opts.candidates, "candidates", "", "candidate set: children or leaves (overrides the scene)")
}

// pipelineOptions merges flags with config defaults.
func (c *CLI) pipelineOptions(opts synthOpts) pipeline.Options {
	formats := parseFormats(opts.formats)
	if len(formats) == 0 {
		formats = c.config.Render.Formats
	}
	tolerance := opts.tolerance
	if tolerance == 0 {
		tolerance = c.config.Render.Tolerance
	}
	return pipeline.Options{
		Tolerance:  tolerance,
		Container:  opts.container,
		Candidates: opts.candidates,
		Formats:    formats,
		GridLines:  opts.gridLines,
		Synthetic:  opts.synthetic,
		Labels:     opts.labels,
		Borders:    opts.borders,
		Scale:      opts.scale,
		Refresh:    opts.refresh,
		Logger:     c.Logger,
	}
}

func (c *CLI) runSynth(ctx context.Context, input string, opts synthOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	s, err := scene.Load(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	popts := c.pipelineOptions(opts)
	if err := popts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	stdout := opts.output == "-"
	if stdout && len(popts.Formats) != 1 {
		return fmt.Errorf("stdout output needs exactly one format, got %d", len(popts.Formats))
	}

	spinner := newSpinnerWithContext(ctx, "Synthesizing table...")
	if !stdout {
		spinner.Start()
	}
	result, err := runner.Execute(ctx, s, popts)
	if !stdout {
		if err != nil {
			spinner.StopWithError("Synthesis failed")
		} else {
			spinner.Stop()
		}
	}
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Synthesized %s", s.Name))

	if !result.Found {
		if !stdout {
			printWarning("No table found in %s", input)
			printDetail("Try a larger --tolerance or a different --container")
		}
		return nil
	}

	if stdout {
		return writeOutput("-", result.Artifacts[popts.Formats[0]])
	}

	printSuccess("Table recovered from %s", StyleHighlight.Render(s.Name))
	st := result.Stats
	printStats(st.Rows, st.Columns, st.Cells, st.SyntheticCells, result.CacheInfo.RenderHit)
	if st.Overlaps > 0 {
		printWarning("%d overlapping shapes dropped or clipped", st.Overlaps)
	}

	base := basePath(opts.output, input)
	formats := make([]string, 0, len(result.Artifacts))
	for f := range result.Artifacts {
		formats = append(formats, f)
	}
	sort.Strings(formats)
	for _, f := range formats {
		path := base + "." + f
		if err := writeOutput(path, result.Artifacts[f]); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	printNextStep("Explore the cells", "shapegrid browse "+input)
	return nil
}
