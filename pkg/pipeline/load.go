package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/shapegrid/pkg/grid"
	"github.com/matzehuels/shapegrid/pkg/scene"
	"github.com/matzehuels/shapegrid/pkg/shape"
)

// Load builds the shape tree for s and selects the container and candidates.
// Non-empty opts.Container and opts.Candidates replace the scene's values.
func Load(s *scene.Scene, opts Options) (*shape.Node, grid.Request, error) {
	sel := *s
	if opts.Container != "" {
		sel.Container = opts.Container
	}
	if opts.Candidates != "" {
		sel.Candidates = opts.Candidates
	}

	root, err := sel.Tree()
	if err != nil {
		return nil, grid.Request{}, fmt.Errorf("build tree: %w", err)
	}
	req, err := sel.Request(root)
	if err != nil {
		return nil, grid.Request{}, err
	}
	return root, req, nil
}

// Synthesize runs grid inference for req with the tolerance and logger from
// opts. It reports ok=false when the candidates do not form a table.
func Synthesize(ctx context.Context, req grid.Request, opts Options) (*grid.Table, bool, error) {
	s := grid.Synthesizer{Tolerance: opts.Tolerance, Logger: opts.Logger}
	return s.Synthesize(ctx, req)
}
