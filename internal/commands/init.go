package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simonhull/wren/internal/output"
	"github.com/simonhull/wren/pkg/config"
)

// InitCmd creates the 'init' command, which writes a starter config.
func InitCmd() *cobra.Command {
	var force, dryRun bool
	var entries []string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a " + configFileName + " with default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := global.configPath
			if path == "" {
				path = configFileName
			}

			cfg := config.DefaultConfig()
			if len(entries) > 0 {
				cfg.Classpath.Entries = entries
			}
			data, err := config.Marshal(cfg)
			if err != nil {
				return err
			}

			err = writeOutput(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), data, writeOptions{
				path:   path,
				force:  force,
				dryRun: dryRun,
			})
			if err != nil {
				return fmt.Errorf("creating %s: %w", path, err)
			}
			if dryRun {
				return nil
			}

			output.Success("Created " + path)
			output.Info("Next steps:")
			output.Step("Build the application so its classes exist")
			output.Step("wren resolve")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview without writing")
	cmd.Flags().StringSliceVar(&entries, "classpath", nil, "Class directories and jars to record")

	return cmd
}
