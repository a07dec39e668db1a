package commands

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simonhull/wren/internal/output"
	"github.com/simonhull/wren/pkg/config"
	"github.com/simonhull/wren/pkg/frontend"
	"github.com/simonhull/wren/pkg/logger"
	"github.com/simonhull/wren/pkg/report"
)

// BatchCmd creates the 'batch' command, which resolves several
// applications concurrently, one config file each.
func BatchCmd() *cobra.Command {
	var workers int
	var force, dryRun bool

	cmd := &cobra.Command{
		Use:   "batch <config>...",
		Short: "Resolve several applications concurrently",
		Long: `Batch resolves one application per config file. Each application gets its
own class path, roots and report; reports without output.path are printed
to stdout one after another, in argument order.

Examples:
  wren batch shop/wren.yaml admin/wren.yaml
  wren batch apps/*/wren.yaml --workers 4 --force`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			configs := make([]*config.Config, 0, len(args))
			jobs := make([]frontend.Job, 0, len(args))
			var closers []func() error
			defer func() {
				for _, c := range closers {
					err = errors.Join(err, c())
				}
			}()

			for _, path := range args {
				cfg, err := config.LoadConfig(path)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				log := newLogger(cfg).WithFields(logger.F("app", path))
				finder, closeFinder, err := openFinder(cfg, log)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				closers = append(closers, closeFinder)

				opts := cfg.FrontendOptions()
				opts.Logger = log
				configs = append(configs, cfg)
				jobs = append(jobs, frontend.Job{Name: path, Finder: finder, Options: opts})
				if workers == 0 && cfg.Workers > 0 {
					workers = cfg.Workers
				}
			}

			results, err := frontend.ResolveAll(cmd.Context(), jobs, workers)
			if err != nil {
				return err
			}

			for i, deps := range results {
				cfg := configs[i]
				format, _ := report.ParseFormat(cfg.Output.Format)
				var buf bytes.Buffer
				if cfg.Output.Path == "" && len(results) > 1 {
					fmt.Fprintf(&buf, "# %s\n", jobs[i].Name)
				}
				if err := report.Render(&buf, deps, format); err != nil {
					return fmt.Errorf("%s: rendering %s report: %w", jobs[i].Name, format, err)
				}
				err := writeOutput(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), buf.Bytes(), writeOptions{
					path:   cfg.Output.Path,
					force:  force || cfg.Output.Force,
					dryRun: dryRun,
				})
				if err != nil {
					return fmt.Errorf("%s: %w", jobs[i].Name, err)
				}
				output.Info(jobs[i].Name)
				summarize(deps)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Applications resolved at once (default: config workers, else CPU count)")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing report files")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview file writes without touching disk")

	return cmd
}
