package commands

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/simonhull/wren/internal/output"
	"github.com/simonhull/wren/pkg/classfinder"
	"github.com/simonhull/wren/pkg/classpath"
	"github.com/simonhull/wren/pkg/signature"
	"github.com/simonhull/wren/pkg/walker"
)

// CatalogCmd creates the 'catalog' command, which snapshots class path
// classes into a YAML catalog. Catalogs can be resolved later without the
// compiled classes, or edited by hand for tests.
func CatalogCmd() *cobra.Command {
	var out writeOptions
	var closure bool

	cmd := &cobra.Command{
		Use:   "catalog [class...]",
		Short: "Export class path classes as a YAML catalog",
		Long: `Catalog reads the configured class directories and jars and writes the
classes in the YAML catalog form accepted by classpath.catalogs.

Without arguments every class is exported. With arguments only those
classes are, or everything reachable from them with --closure.

Examples:
  wren catalog -o classes.yaml
  wren catalog com.example.MainView --closure -o main-view.yaml`,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			cfg, log, err := loadConfig(global.configPath)
			if err != nil {
				return err
			}
			if len(cfg.Classpath.Entries) == 0 {
				return errNoClasses
			}
			cp, err := classpath.Open(cfg.Classpath.Entries...)
			if err != nil {
				return err
			}
			cp.WithLogger(log)
			defer func() { err = errors.Join(err, cp.Close()) }()

			names := make([]string, 0, len(args))
			for _, arg := range args {
				if name := signature.ClassName(arg); name != "" {
					arg = name
				}
				names = append(names, arg)
			}
			roots := names
			switch {
			case len(args) == 0:
				names = cp.Names()
			case closure:
				opts := cfg.FrontendOptions()
				w := walker.New(cp, walker.Options{
					SkipPrefixes:  opts.SkipPrefixes,
					ClassElements: opts.Annotations.ClassElements(),
					Logger:        log,
				})
				seen := make(map[string]bool)
				names = nil
				for _, root := range roots {
					for _, name := range w.Walk(root).Names() {
						if !seen[name] {
							seen[name] = true
							names = append(names, name)
						}
					}
				}
			}

			classes := make([]*classfinder.ClassInfo, 0, len(names))
			for _, name := range names {
				info, err := cp.Lookup(name)
				if err != nil {
					if errors.Is(err, classfinder.ErrClassNotFound) {
						output.Warn(fmt.Sprintf("Class not found: %s", name))
						continue
					}
					return err
				}
				classes = append(classes, info)
			}
			sort.SliceStable(classes, func(i, j int) bool { return classes[i].Name < classes[j].Name })

			data, err := classfinder.MarshalCatalog(classes)
			if err != nil {
				return fmt.Errorf("encoding catalog: %w", err)
			}
			if err := writeOutput(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), data, out); err != nil {
				return err
			}
			output.Success(fmt.Sprintf("Exported %d classes", len(classes)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&out.path, "output", "o", "", "Write the catalog to a file instead of stdout")
	cmd.Flags().BoolVar(&out.force, "force", false, "Overwrite an existing file")
	cmd.Flags().BoolVar(&out.dryRun, "dry-run", false, "Preview file writes without touching disk")
	cmd.Flags().BoolVar(&closure, "closure", false, "Export every class reachable from the given classes")

	return cmd
}
