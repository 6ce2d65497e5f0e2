package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cornerpin/pkg/errors"
	"github.com/matzehuels/cornerpin/pkg/projective"
)

// matrixOpts holds the command-line flags for the matrix command.
type matrixOpts struct {
	width  float64 // element width
	height float64 // element height
	points string  // eight comma-separated coordinates
	ring   bool    // points are listed clockwise instead of diagonal-adjacent
	format string  // output format: table, css, json
}

// matrixResult is the JSON output of the matrix command.
type matrixResult struct {
	Width  float64       `json:"width"`
	Height float64       `json:"height"`
	Points [4][2]float64 `json:"points"`
	Matrix [16]float64   `json:"matrix"`
	CSS    string        `json:"css"`
	Affine bool          `json:"affine"`
}

// matrixCommand creates the matrix command, which solves the transform that
// maps a width×height element onto four points.
func (c *CLI) matrixCommand() *cobra.Command {
	opts := matrixOpts{format: formatTable}

	cmd := &cobra.Command{
		Use:   "matrix",
		Short: "Compute the corner-pin transform for four points",
		Long: `Compute the 4x4 transform that maps a width x height element onto four points.

Points are given as eight comma-separated numbers. By default the corners are
ordered top-left, top-right, bottom-left, bottom-right; with --ring they are
read clockwise from the top-left instead.`,
		Example: `  cornerpin matrix --width 200 --height 100 --points 0,0,200,0,0,100,200,100
  cornerpin matrix --width 200 --height 100 --points 10,5,220,0,0,120,205,110 --format css`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runMatrix(cmd, opts)
		},
	}

	cmd.Flags().Float64Var(&opts.width, "width", 0, "element width")
	cmd.Flags().Float64Var(&opts.height, "height", 0, "element height")
	cmd.Flags().StringVarP(&opts.points, "points", "p", "", "corner points x0,y0,...,x3,y3")
	cmd.Flags().BoolVar(&opts.ring, "ring", false, "points are listed clockwise from the top-left")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: table, css, json")
	_ = cmd.MarkFlagRequired("width")
	_ = cmd.MarkFlagRequired("height")
	_ = cmd.MarkFlagRequired("points")

	return cmd
}

func (c *CLI) runMatrix(cmd *cobra.Command, opts matrixOpts) error {
	logger := loggerFromContext(cmd.Context())

	if err := validateMatrixFormat(opts.format); err != nil {
		return err
	}
	if err := errors.ValidateDimensions(opts.width, opts.height); err != nil {
		return err
	}
	q, err := parsePoints(opts.points, opts.ring)
	if err != nil {
		return err
	}

	m, err := projective.RectToQuad(opts.width, opts.height, q)
	if err != nil {
		return errors.Classify(err)
	}
	logger.Debug("solved", "width", opts.width, "height", opts.height, "points", q.String(), "affine", m.IsAffine())

	return writeMatrix(cmd.OutOrStdout(), opts, q, m)
}

func writeMatrix(w io.Writer, opts matrixOpts, q projective.Quad, m projective.Matrix4) error {
	switch opts.format {
	case formatCSS:
		_, err := fmt.Fprintln(w, m.CSS())
		return err
	case formatJSON:
		res := matrixResult{
			Width:  opts.width,
			Height: opts.height,
			Points: pointPairs(q),
			Matrix: m,
			CSS:    m.CSS(),
			Affine: m.IsAffine(),
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	default:
		fmt.Fprintln(w, StyleTitle.Render("Transform"))
		fmt.Fprintln(w, matrixTable(m))
		printKeyValue(w, "affine", fmt.Sprint(m.IsAffine()))
		printKeyValue(w, "css", m.CSS())
		return nil
	}
}

func validateMatrixFormat(f string) error {
	switch f {
	case formatTable, formatCSS, formatJSON:
		return nil
	}
	return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %s (must be 'table', 'css', or 'json')", f)
}

// parsePoints parses eight comma-separated coordinates. With ring set the
// corners are taken clockwise from the top-left.
func parsePoints(s string, ring bool) (projective.Quad, error) {
	q, err := projective.ParseQuad(s)
	if err != nil {
		return q, errors.Wrap(errors.ErrCodeInvalidPoints, err, "invalid --points")
	}
	if ring {
		q = projective.FromRing(q[0], q[1], q[2], q[3])
	}
	return q, nil
}

func pointPairs(q projective.Quad) [4][2]float64 {
	var out [4][2]float64
	for i, p := range q {
		out[i] = [2]float64{p.X, p.Y}
	}
	return out
}
