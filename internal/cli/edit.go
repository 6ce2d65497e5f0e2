package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cornerpin/pkg/errors"
	"github.com/matzehuels/cornerpin/pkg/mapper"
	"github.com/matzehuels/cornerpin/pkg/projective"
)

// editOpts holds the command-line flags for the edit command.
type editOpts struct {
	width    float64 // element width, 0 uses the config
	height   float64 // element height, 0 uses the config
	points   string  // initial points when nothing is stored
	ring     bool    // points are listed clockwise
	noCanvas bool    // start with the canvas hidden
}

// editCommand creates the edit command, an interactive corner editor.
func (c *CLI) editCommand() *cobra.Command {
	var opts editOpts

	cmd := &cobra.Command{
		Use:   "edit KEY",
		Short: "Move an element's corners interactively",
		Long: `Open an interactive editor for the corners of the element stored under KEY.

Stored points are loaded first; otherwise --points, otherwise the element
bounds. Every move is saved immediately. Corners can be dragged on the
canvas with the mouse or nudged with the keyboard.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runEdit(cmd, args[0], opts)
		},
	}

	cmd.Flags().Float64Var(&opts.width, "width", 0, "element width (default from config)")
	cmd.Flags().Float64Var(&opts.height, "height", 0, "element height (default from config)")
	cmd.Flags().StringVarP(&opts.points, "points", "p", "", "initial corner points x0,y0,...,x3,y3")
	cmd.Flags().BoolVar(&opts.ring, "ring", false, "points are listed clockwise from the top-left")
	cmd.Flags().BoolVar(&opts.noCanvas, "no-canvas", false, "hide the canvas")

	return cmd
}

func (c *CLI) runEdit(cmd *cobra.Command, key string, opts editOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	if err := errors.ValidateKey(key); err != nil {
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

	var initial *projective.Quad
	if opts.points != "" {
		q, err := parsePoints(opts.points, opts.ring)
		if err != nil {
			return err
		}
		initial = &q
	}

	points, err := c.openPoints(ctx)
	if err != nil {
		return err
	}
	tool := mapper.New(points, logger)
	defer tool.Close()

	el := mapper.Element{ID: key, Rect: mapper.Rect{W: opts.width, H: opts.height}}
	if _, err := tool.Attach(ctx, el, mapper.Options{Key: key, InitialPoints: initial}); err != nil {
		return errors.Classify(err)
	}

	model, err := NewEditorModel(ctx, tool, key, cfg.Editor.Step, cfg.Editor.BigStep)
	if err != nil {
		return err
	}
	model.ShowCanvas = !opts.noCanvas

	p := tea.NewProgram(model,
		tea.WithContext(ctx),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.ErrOrStderr()),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("editor: %w", err)
	}

	it, _ := tool.Item(key)
	logger.Debug("editor closed", "key", key, "points", it.Points.String())
	fmt.Fprintln(cmd.OutOrStdout(), it.Style().String())
	return nil
}
