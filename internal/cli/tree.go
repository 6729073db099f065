package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/shapegrid/pkg/errors"
	"github.com/matzehuels/shapegrid/pkg/render/tree"
	"github.com/matzehuels/shapegrid/pkg/scene"
)

type treeOpts struct {
	output    string
	format    string
	detailed  bool
	highlight []string
	overlaps  bool
	grid      synthOpts
}

// treeCommand creates the tree command, which draws a scene's shape
// hierarchy with Graphviz.
func (c *CLI) treeCommand() *cobra.Command {
	opts := treeOpts{format: "svg"}

	cmd := &cobra.Command{
		Use:   "tree [scene]",
		Short: "Draw the shape tree of a scene",
		Long: `Draw the shape tree of a scene as a Graphviz diagram.

With --overlaps the grid is synthesized first and every shape that lost an
overlap is outlined in red.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTree(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (- for stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: svg or dot")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show kind, frame and transform in labels")
	cmd.Flags().StringSliceVar(&opts.highlight, "highlight", nil, "shape ids or names to outline")
	cmd.Flags().BoolVar(&opts.overlaps, "overlaps", false, "outline shapes that lost an overlap")
	addGridFlags(cmd, &opts.grid)

	return cmd
}

func (c *CLI) runTree(ctx context.Context, input string, opts treeOpts) error {
	format := strings.ToLower(opts.format)
	if format != "svg" && format != "dot" {
		return errors.New(errors.ErrCodeInvalidInput, "invalid tree format %q (must be svg or dot)", opts.format)
	}

	s, err := scene.Load(input)
	if err != nil {
		return err
	}
	root, err := s.Tree()
	if err != nil {
		return err
	}

	highlight := opts.highlight
	if opts.overlaps {
		t, _, err := c.synthesizeScene(ctx, input, opts.grid)
		if err != nil {
			return err
		}
		if t != nil {
			for _, o := range t.Diagnostics() {
				highlight = append(highlight, o.Shape.ID)
			}
		}
	}

	dot := tree.ToDOT(root, tree.Options{Detailed: opts.detailed, Highlight: highlight})
	data := []byte(dot)
	if format == "svg" {
		spinner := newSpinnerWithContext(ctx, "Running Graphviz...")
		spinner.Start()
		data, err = tree.RenderSVG(ctx, dot)
		if err != nil {
			spinner.StopWithError("Graphviz failed")
			return err
		}
		spinner.Stop()
	}

	out := opts.output
	if out == "" {
		out = basePath("", input) + ".tree." + format
	}
	if err := writeOutput(out, data); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	if out != "-" {
		printSuccess("Shape tree of %s", StyleHighlight.Render(s.Name))
		printDetail("%d shapes, %d highlighted", s.NodeCount(), len(highlight))
		printFile(out)
	}
	return nil
}
