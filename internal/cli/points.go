package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cornerpin/pkg/errors"
	"github.com/matzehuels/cornerpin/pkg/projective"
)

// pointsCommand creates the points command group for managing stored corners.
func (c *CLI) pointsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "points",
		Short: "Manage stored corner points",
		Long: `Manage the corner points stored per element key.

Values are stored as eight comma-separated numbers in the order top-left,
top-right, bottom-left, bottom-right.`,
	}

	cmd.AddCommand(c.pointsGetCommand())
	cmd.AddCommand(c.pointsSetCommand())
	cmd.AddCommand(c.pointsDeleteCommand())
	cmd.AddCommand(c.pointsListCommand())

	return cmd
}

func (c *CLI) pointsGetCommand() *cobra.Command {
	format := formatTable

	cmd := &cobra.Command{
		Use:   "get KEY",
		Short: "Print the points stored for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if err := errors.ValidateKey(key); err != nil {
				return err
			}
			points, err := c.openPoints(cmd.Context())
			if err != nil {
				return err
			}
			defer points.Close()

			q, err := points.MustGet(cmd.Context(), key)
			if err != nil {
				return errors.Classify(err)
			}

			w := cmd.OutOrStdout()
			switch format {
			case formatJSON:
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					Key    string        `json:"key"`
					Points [4][2]float64 `json:"points"`
				}{key, pointPairs(q)})
			case "raw":
				_, err := fmt.Fprintln(w, q.String())
				return err
			case formatTable:
				fmt.Fprintln(w, cornersTable(q, -1))
				return nil
			}
			return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %s (must be 'table', 'raw', or 'json')", format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", format, "output format: table, raw, json")
	return cmd
}

func (c *CLI) pointsSetCommand() *cobra.Command {
	var (
		raw    string
		ring   bool
		width  float64
		height float64
	)

	cmd := &cobra.Command{
		Use:   "set KEY",
		Short: "Store points for a key",
		Example: `  cornerpin points set video --points 0,0,640,0,0,360,640,360
  cornerpin points set video --points 0,0,640,10,630,350,0,360 --ring --width 640 --height 360`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if err := errors.ValidateKey(key); err != nil {
				return err
			}
			q, err := parsePoints(raw, ring)
			if err != nil {
				return err
			}
			if width > 0 || height > 0 {
				if err := errors.ValidateDimensions(width, height); err != nil {
					return err
				}
				if _, err := projective.RectToQuad(width, height, q); err != nil {
					return errors.Classify(err)
				}
			}

			points, err := c.openPoints(cmd.Context())
			if err != nil {
				return err
			}
			defer points.Close()

			if err := points.Set(cmd.Context(), key, q); err != nil {
				return errors.Classify(err)
			}
			printSuccess(cmd.ErrOrStderr(), "Stored %s", StyleHighlight.Render(key))
			printNextStep(cmd.ErrOrStderr(), "Preview", "cornerpin render "+key+" -o "+key+".svg")
			return nil
		},
	}

	cmd.Flags().StringVarP(&raw, "points", "p", "", "corner points x0,y0,...,x3,y3")
	cmd.Flags().BoolVar(&ring, "ring", false, "points are listed clockwise from the top-left")
	cmd.Flags().Float64Var(&width, "width", 0, "check the points solve for an element of this width")
	cmd.Flags().Float64Var(&height, "height", 0, "check the points solve for an element of this height")
	_ = cmd.MarkFlagRequired("points")
	return cmd
}

func (c *CLI) pointsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete KEY",
		Aliases: []string{"rm"},
		Short:   "Delete the points stored for a key",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if err := errors.ValidateKey(key); err != nil {
				return err
			}
			points, err := c.openPoints(cmd.Context())
			if err != nil {
				return err
			}
			defer points.Close()

			if err := points.Delete(cmd.Context(), key); err != nil {
				return errors.Classify(err)
			}
			printSuccess(cmd.ErrOrStderr(), "Deleted %s", StyleHighlight.Render(key))
			return nil
		},
	}
}

func (c *CLI) pointsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List keys with stored points",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			points, err := c.openPoints(cmd.Context())
			if err != nil {
				return err
			}
			defer points.Close()

			keys, err := points.List(cmd.Context())
			if err != nil {
				return errors.Classify(err)
			}
			if len(keys) == 0 {
				printInfo(cmd.ErrOrStderr(), "No stored points")
				return nil
			}
			for _, k := range keys {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
			return nil
		},
	}
}
