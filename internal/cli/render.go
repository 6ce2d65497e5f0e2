package cli

import (
	"context"
	goerrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cornerpin/pkg/errors"
	"github.com/matzehuels/cornerpin/pkg/projective"
	"github.com/matzehuels/cornerpin/pkg/render"
)

const (
	formatSVG      = "svg"      // warped grid preview
	formatHTML     = "html"     // standalone page with the CSS transform applied
	formatDOT      = "dot"      // Graphviz source
	formatGraphviz = "graphviz" // DOT laid out by Graphviz, as SVG
	formatPDF      = "pdf"      // SVG converted by rsvg-convert
	formatPNG      = "png"      // SVG converted by rsvg-convert
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output  string  // output file, stdout when empty or "-"
	format  string  // one of the format* constants above
	width   float64 // element width, 0 uses the config
	height  float64 // element height, 0 uses the config
	points  string  // corner points instead of a stored key
	ring    bool    // points are listed clockwise
	grid    int     // grid divisions in the SVG preview
	label   string  // caption, defaults to the key
	handles bool    // draw corner handles in the SVG preview
	scale   float64 // PNG scale factor
}

// renderCommand creates the render command for writing previews of a mapping.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{format: formatSVG, grid: 8, handles: true, scale: 2}

	cmd := &cobra.Command{
		Use:   "render [KEY]",
		Short: "Render a preview of a corner-pin mapping",
		Long: `Render the element warped onto its corner points.

The points come from the store when KEY is given, otherwise from --points.
Formats: svg (default), html, dot, graphviz, pdf, png. PDF and PNG need
rsvg-convert on the PATH.`,
		Example: `  cornerpin render video -o video.svg
  cornerpin render --points 0,0,640,20,0,360,620,380 --format html -o preview.html`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var key string
			if len(args) == 1 {
				key = args[0]
			}
			return c.runRender(cmd, key, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: svg, html, dot, graphviz, pdf, png")
	cmd.Flags().Float64Var(&opts.width, "width", 0, "element width (default from config)")
	cmd.Flags().Float64Var(&opts.height, "height", 0, "element height (default from config)")
	cmd.Flags().StringVarP(&opts.points, "points", "p", "", "corner points x0,y0,...,x3,y3")
	cmd.Flags().BoolVar(&opts.ring, "ring", false, "points are listed clockwise from the top-left")
	cmd.Flags().IntVar(&opts.grid, "grid", opts.grid, "grid divisions")
	cmd.Flags().StringVar(&opts.label, "label", "", "caption (default KEY)")
	cmd.Flags().BoolVar(&opts.handles, "handles", opts.handles, "draw corner handles")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, key string, opts renderOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	if err := validateRenderFormat(opts.format); err != nil {
		return err
	}
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if opts.width == 0 {
		opts.width = cfg.Editor.Width
	}
	if opts.height == 0 {
		opts.height = cfg.Editor.Height
	}
	if err := errors.ValidateDimensions(opts.width, opts.height); err != nil {
		return err
	}
	if opts.label == "" {
		opts.label = key
	}

	q, err := c.renderPoints(ctx, key, opts)
	if err != nil {
		return err
	}

	prog := newProgress(logger)
	data, err := renderQuad(ctx, cmd.ErrOrStderr(), q, opts)
	if goerrors.Is(err, render.ErrNoConverter) {
		return errors.Wrap(errors.ErrCodeUnsupported, err, "cannot write %s", opts.format)
	}
	if err != nil {
		return errors.Classify(err)
	}
	prog.done(fmt.Sprintf("Rendered %s", opts.format))

	if opts.output == "" || opts.output == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return err
	}
	printFile(cmd.ErrOrStderr(), opts.output)
	return nil
}

// renderPoints returns --points if given, else the points stored under key.
func (c *CLI) renderPoints(ctx context.Context, key string, opts renderOpts) (projective.Quad, error) {
	if opts.points != "" {
		return parsePoints(opts.points, opts.ring)
	}
	if key == "" {
		return projective.Quad{}, errors.New(errors.ErrCodeInvalidInput, "either KEY or --points is required")
	}
	if err := errors.ValidateKey(key); err != nil {
		return projective.Quad{}, err
	}
	points, err := c.openPoints(ctx)
	if err != nil {
		return projective.Quad{}, err
	}
	defer points.Close()

	q, err := points.MustGet(ctx, key)
	if err != nil {
		return q, errors.Classify(err)
	}
	return q, nil
}

// renderQuad produces the requested format. Conversions through external
// tools show a spinner on w.
func renderQuad(ctx context.Context, w io.Writer, q projective.Quad, opts renderOpts) ([]byte, error) {
	switch opts.format {
	case formatHTML:
		return render.RenderHTML(opts.width, opts.height, q, render.HTMLOptions{Title: opts.label, HideHandles: !opts.handles})
	case formatDOT:
		return []byte(render.ToDOT(q, opts.label)), nil
	case formatGraphviz:
		return render.RenderDOTSVG(ctx, render.ToDOT(q, opts.label))
	}

	svgOpts := []render.SVGOption{render.WithGrid(opts.grid), render.WithLabel(opts.label)}
	if opts.handles {
		svgOpts = append(svgOpts, render.WithHandles())
	}
	svg, err := render.RenderSVG(opts.width, opts.height, q, svgOpts...)
	if err != nil || opts.format == formatSVG {
		return svg, err
	}

	spinner := newSpinnerWithContext(ctx, w, "Converting to "+strings.ToUpper(opts.format)+"...")
	spinner.Start()
	defer spinner.Stop()
	if opts.format == formatPDF {
		return render.ToPDF(ctx, svg)
	}
	return render.ToPNG(ctx, svg, opts.scale)
}

func validateRenderFormat(f string) error {
	switch f {
	case formatSVG, formatHTML, formatDOT, formatGraphviz, formatPDF, formatPNG:
		return nil
	}
	return errors.New(errors.ErrCodeInvalidFormat,
		"invalid format: %s (must be 'svg', 'html', 'dot', 'graphviz', 'pdf', or 'png')", f)
}
