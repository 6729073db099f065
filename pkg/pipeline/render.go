package pipeline

import (
	"fmt"
	"strings"

	"github.com/matzehuels/shapegrid/pkg/errors"
	"github.com/matzehuels/shapegrid/pkg/grid"
	"github.com/matzehuels/shapegrid/pkg/sink"
)

// Render generates output artifacts for t in the requested formats.
// name is recorded in formats that carry a title (JSON).
func Render(t *grid.Table, name string, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := renderFormat(t, name, format, opts)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func renderFormat(t *grid.Table, name, format string, opts Options) ([]byte, error) {
	svgOpts := buildSVGOptions(opts)
	switch format {
	case FormatSVG:
		return sink.RenderSVG(t, svgOpts...), nil
	case FormatPDF:
		return sink.RenderPDF(t, sink.WithPDFSVGOptions(svgOpts...))
	case FormatPNG:
		return sink.RenderPNG(t, sink.WithPNGSVGOptions(svgOpts...), sink.WithScale(opts.Scale))
	case FormatJSON:
		return sink.RenderJSON(t, sink.WithJSONName(name))
	case FormatXLSX:
		return sink.RenderXLSX(t, buildXLSXOptions(name, opts)...)
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unsupported format: %s", format)
	}
}

func buildSVGOptions(opts Options) []sink.SVGOption {
	var out []sink.SVGOption
	if opts.GridLines {
		out = append(out, sink.WithGridLines())
	}
	if opts.Synthetic {
		out = append(out, sink.WithSyntheticOutlines())
	}
	if opts.Labels {
		out = append(out, sink.WithLabels())
	}
	return out
}

func buildXLSXOptions(name string, opts Options) []sink.XLSXOption {
	var out []sink.XLSXOption
	if sheet := sheetName(name); sheet != "" {
		out = append(out, sink.WithSheetName(sheet))
	}
	if opts.Borders {
		out = append(out, sink.WithBorders())
	}
	return out
}

// sheetName drops the characters Excel forbids in sheet names and truncates
// to the 31-character limit. Excel also rejects leading or trailing quotes.
func sheetName(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			continue
		}
		out = append(out, r)
		if len(out) == 31 {
			break
		}
	}
	return strings.Trim(string(out), "'")
}
