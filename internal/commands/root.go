package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simonhull/wren"
	"github.com/simonhull/wren/internal/output"
)

// globalFlags are the persistent flags shared by every subcommand.
type globalFlags struct {
	verbose    bool
	configPath string
}

var global globalFlags

// RootCmd creates and returns the root command for the wren CLI
func RootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wren",
		Short: "Resolve the frontend dependencies of compiled Vaadin applications",
		Long: `Wren walks the compiled classes of a Vaadin application, starting at its
routed views, and reports what the browser side needs:

• npm packages and their versions
• JavaScript modules, HTML imports and scripts
• the application theme and its variant

Classes come from class directories, jars and YAML catalogs listed in
wren.yaml. Run 'wren init' to create one.`,
		Version:       wren.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			output.SetVerbose(global.verbose)
		},
	}

	cmd.PersistentFlags().BoolVarP(&global.verbose, "verbose", "v", false, "Enable verbose output for debugging")
	cmd.PersistentFlags().StringVarP(&global.configPath, "config", "c", "", "Path to config file (default ./"+configFileName+")")

	return cmd
}

// VersionCmd prints the wren version.
func VersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "wren v%s\n", wren.Version)
		},
	}
}

// NewApp assembles the full command tree.
func NewApp() *cobra.Command {
	root := RootCmd()
	root.AddCommand(InitCmd())
	root.AddCommand(ResolveCmd())
	root.AddCommand(BatchCmd())
	root.AddCommand(GraphCmd())
	root.AddCommand(CatalogCmd())
	root.AddCommand(SignatureCmd())
	root.AddCommand(VersionCmd())
	return root
}
