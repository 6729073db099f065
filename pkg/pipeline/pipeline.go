// Package pipeline runs the load → synthesize → render pipeline shared by
// the CLI and the HTTP server.
//
// # Stages
//
//  1. Load: build the shape tree from a scene document and select the
//     container and candidates
//  2. Synthesize: infer the grid with [grid.Synthesizer]
//  3. Render: produce artifacts (SVG, PNG, PDF, JSON, XLSX) with pkg/sink
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, s, pipeline.Options{
//	    Formats: []string{"svg", "xlsx"},
//	})
//	if err != nil {
//	    return err
//	}
//	svg := result.Artifacts["svg"]
//
// Rendered artifacts are cached per scene hash and format options. When
// every requested artifact is cached the synthesis stage is skipped and
// Result.Table is nil.
package pipeline

import (
	"io"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/shapegrid/pkg/cache"
	"github.com/matzehuels/shapegrid/pkg/errors"
	"github.com/matzehuels/shapegrid/pkg/grid"
	"github.com/matzehuels/shapegrid/pkg/scene"
)

// DefaultPNGScale is the PNG rasterization scale when Options.Scale is 0.
const DefaultPNGScale = 2.0

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatXLSX = "xlsx"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
	FormatXLSX: true,
}

// Options configures a pipeline run. It decodes from JSON for API requests.
type Options struct {
	// Synthesis options. Container and Candidates override the scene's own.
	Tolerance  float64 `json:"tolerance,omitempty"`
	Container  string  `json:"container,omitempty"`
	Candidates string  `json:"candidates,omitempty"`

	// Render options
	Formats   []string `json:"formats,omitempty"`
	GridLines bool     `json:"grid_lines,omitempty"`
	Synthetic bool     `json:"synthetic,omitempty"`
	Labels    bool     `json:"labels,omitempty"`
	Borders   bool     `json:"borders,omitempty"`
	Scale     float64  `json:"scale,omitempty"`

	// Refresh bypasses cached artifacts and overwrites them.
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Table is the synthesized grid, nil when Found is false or when every
	// artifact came from the cache.
	Table *grid.Table

	// Found reports whether the shapes formed a table.
	Found bool

	// SceneHash is the content hash of the scene document.
	SceneHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount      int
	Rows           int
	Columns        int
	Cells          int
	SyntheticCells int
	Overlaps       int
	LoadTime       time.Duration
	SynthesizeTime time.Duration
	RenderTime     time.Duration
}

// CacheInfo tracks cache hits for the pipeline stages.
type CacheInfo struct {
	TableHit  bool // table summary came from cache
	RenderHit bool // all artifacts came from cache
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidInput,
			"invalid format: %q (must be one of: %s)", format, strings.Join(formatNames(), ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

func formatNames() []string {
	names := make([]string, 0, len(ValidFormats))
	for f := range ValidFormats {
		names = append(names, f)
	}
	sort.Strings(names)
	return names
}

// ValidateAndSetDefaults checks the options and fills in defaults.
// Calling it more than once has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Tolerance < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "tolerance must not be negative, got %g", o.Tolerance)
	}
	if o.Tolerance == 0 {
		o.Tolerance = grid.DefaultTolerance
	}
	switch o.Candidates {
	case "", scene.CandidatesChildren, scene.CandidatesLeaves:
	default:
		return errors.New(errors.ErrCodeInvalidInput,
			"invalid candidates: %q (must be %q or %q)", o.Candidates, scene.CandidatesChildren, scene.CandidatesLeaves)
	}
	if o.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "scale must be positive, got %g", o.Scale)
	}
	if o.Scale == 0 {
		o.Scale = DefaultPNGScale
	}
	if err := o.setRenderDefaults(); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

func (o *Options) setRenderDefaults() error {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	seen := make(map[string]bool, len(o.Formats))
	formats := o.Formats[:0:0]
	for _, f := range o.Formats {
		f = strings.ToLower(strings.TrimSpace(f))
		if seen[f] {
			continue
		}
		seen[f] = true
		formats = append(formats, f)
	}
	o.Formats = formats
	return ValidateFormats(o.Formats)
}

// TableKeyOpts returns cache key options for the synthesized table.
func (o *Options) TableKeyOpts() cache.TableKeyOpts {
	return cache.TableKeyOpts{
		Tolerance:  o.Tolerance,
		Container:  o.Container,
		Candidates: o.Candidates,
	}
}

// ArtifactKeyOpts returns cache key options for one rendered format.
// Flags that do not change a format's bytes are left out of its key.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Table: o.TableKeyOpts(), Format: format}
	switch format {
	case FormatSVG, FormatPDF, FormatPNG:
		k.GridLines, k.Synthetic, k.Labels = o.GridLines, o.Synthetic, o.Labels
		if format == FormatPNG {
			k.Scale = o.Scale
		}
	case FormatXLSX:
		k.Borders = o.Borders
	}
	return k
}
