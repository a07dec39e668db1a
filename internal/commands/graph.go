package commands

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simonhull/wren/internal/output"
	"github.com/simonhull/wren/pkg/walker"
)

// GraphCmd creates the 'graph' command, which writes the class reference
// graph reachable from the given classes in Graphviz DOT form.
func GraphCmd() *cobra.Command {
	var out writeOptions

	cmd := &cobra.Command{
		Use:   "graph <class>...",
		Short: "Write the class reference graph as Graphviz DOT",
		Long: `Graph walks the classes reachable from each argument the same way resolve
does and writes every visited class and reference as a DOT digraph.
Classes that could not be found are drawn dashed.

Examples:
  wren graph com.example.MainView | dot -Tsvg > main-view.svg
  wren graph com.example.MainView com.example.AdminView -o classes.dot`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(global.configPath)
			if err != nil {
				return err
			}
			finder, closeFinder, err := openFinder(cfg, log)
			if err != nil {
				return err
			}
			defer closeFinder()

			opts := cfg.FrontendOptions()
			w := walker.New(finder, walker.Options{
				SkipPrefixes:  opts.SkipPrefixes,
				ClassElements: opts.Annotations.ClassElements(),
				Logger:        log,
			})
			for _, root := range args {
				output.Verbose(w.Walk(root).String())
			}

			var buf bytes.Buffer
			if err := w.WriteDOT(&buf); err != nil {
				return fmt.Errorf("writing graph: %w", err)
			}
			return writeOutput(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), buf.Bytes(), out)
		},
	}

	cmd.Flags().StringVarP(&out.path, "output", "o", "", "Write the graph to a file instead of stdout")
	cmd.Flags().BoolVar(&out.force, "force", false, "Overwrite an existing file")
	cmd.Flags().BoolVar(&out.dryRun, "dry-run", false, "Preview file writes without touching disk")

	return cmd
}
