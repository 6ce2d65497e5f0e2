package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/cornerpin/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// The --verbose and --config flags are persistent. The config file is read
// before any subcommand runs; the logger is attached to the command context
// so helpers can reach it with loggerFromContext.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Cornerpin maps rectangular elements onto arbitrary quadrilaterals",
		Long: `Cornerpin computes the perspective transform that pins the four corners of a
rectangular element to four arbitrary points, as used for projection mapping.
Corner points are stored per element key and can be edited interactively,
rendered as SVG, HTML or Graphviz, or served over HTTP.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.loadConfig(); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.Verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "config file (default $XDG_CONFIG_HOME/cornerpin/config.toml)")

	// Register all subcommands
	root.AddCommand(c.matrixCommand())
	root.AddCommand(c.pointsCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}
