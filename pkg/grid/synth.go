package grid

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/shapegrid/pkg/errors"
	"github.com/matzehuels/shapegrid/pkg/geom"
	"github.com/matzehuels/shapegrid/pkg/observability"
	"github.com/matzehuels/shapegrid/pkg/shape"
)

// Request names the shapes to arrange into a table.
type Request struct {
	// Container is the common ancestor whose space the grid is built in.
	Container *shape.Node

	// Candidates are the shapes to place, in priority order: on overlap
	// the earlier candidate wins.
	Candidates []*shape.Node

	// MinRect, if set, is always covered by the grid.
	MinRect *geom.Rect
}

// Synthesizer builds tables from shape requests. The zero value is ready to
// use and a Synthesizer may be shared by concurrent callers: all per-call
// state lives in the call.
type Synthesizer struct {
	// Tolerance is the boundary-matching distance. Zero means
	// DefaultTolerance.
	Tolerance float64

	// Logger receives debug output and the overlap warning. Nil discards.
	Logger *log.Logger

	// Hooks receives synthesis events. Nil uses observability.Synthesis().
	Hooks observability.SynthesisHooks
}

// Synthesize arranges req.Candidates into a grid in req.Container's space.
//
// ok is false, with a nil error, when the shapes do not span at least one
// row and one column. Errors are returned for invalid requests, candidates
// outside the container's tree, and internal invariant violations
// (errors.ErrCodeGridInvariant); the latter indicate a bug.
func (s *Synthesizer) Synthesize(ctx context.Context, req Request) (t *Table, ok bool, err error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	if err := req.validate(); err != nil {
		return nil, false, err
	}

	logger := s.logger()
	hooks := s.hooks()
	tol := s.tolerance()
	start := time.Now()

	hooks.OnSynthesizeStart(ctx, len(req.Candidates))
	defer func() {
		var rows, cols int
		if t != nil {
			rows, cols = t.RowCount(), t.ColumnCount()
		}
		hooks.OnSynthesizeComplete(ctx, rows, cols, time.Since(start), err)
	}()

	b, ok, err := ExtractBoundaries(req.Candidates, req.Container, req.MinRect, tol)
	if err != nil {
		return nil, false, err
	}
	logger.Debug("extracted boundaries",
		"rows", len(b.Rows),
		"cols", len(b.Cols),
		"placed", len(b.Placed),
		"dropped", b.Dropped)
	if !ok {
		logger.Debug("no table structure", "container", req.Container.Label())
		return nil, false, nil
	}

	a := newAssembly(b, tol)
	warned := false
	a.onOverlap = func(o Overlap) {
		hooks.OnOverlap(ctx, o.Shape.ID, o.Row, o.Col)
		if !warned {
			logger.Warn("overlapping shapes, keeping the first placed",
				"shape", o.Shape.Label(),
				"row", o.Row,
				"col", o.Col)
			warned = true
		}
	}
	if err := a.place(b.Placed); err != nil {
		logger.Error("grid assembly failed", "error", err)
		return nil, false, err
	}
	a.fillGaps(req.Container.EffectiveFill())

	t = a.table(b.Bounds)
	logger.Debug("synthesized table",
		"rows", t.RowCount(),
		"cols", t.ColumnCount(),
		"overlaps", len(a.diags),
		"duration", time.Since(start))
	return t, true, nil
}

// Synthesize runs a zero-value Synthesizer.
func Synthesize(ctx context.Context, req Request) (*Table, bool, error) {
	var s Synthesizer
	return s.Synthesize(ctx, req)
}

func (r Request) validate() error {
	if r.Container == nil {
		return errors.New(errors.ErrCodeInvalidInput, "request has no container")
	}
	for i, c := range r.Candidates {
		if c == nil {
			return errors.New(errors.ErrCodeInvalidInput, "candidate %d is nil", i)
		}
	}
	if r.MinRect != nil && (r.MinRect.Width < 0 || r.MinRect.Height < 0) {
		return errors.New(errors.ErrCodeInvalidInput, "minimum rectangle %v has negative size", *r.MinRect)
	}
	return nil
}

func (s *Synthesizer) tolerance() float64 {
	if s.Tolerance > 0 {
		return s.Tolerance
	}
	return DefaultTolerance
}

func (s *Synthesizer) logger() *log.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return log.NewWithOptions(io.Discard, log.Options{})
}

func (s *Synthesizer) hooks() observability.SynthesisHooks {
	if s.Hooks != nil {
		return s.Hooks
	}
	return observability.Synthesis()
}
