package commands

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/simonhull/wren/internal/output"
	"github.com/simonhull/wren/pkg/config"
	"github.com/simonhull/wren/pkg/frontend"
	"github.com/simonhull/wren/pkg/report"
)

// resolveFlags override wren.yaml for a single run.
type resolveFlags struct {
	classpath         []string
	catalogs          []string
	format            string
	outputPath        string
	force             bool
	dryRun            bool
	strictTheme       bool
	defaultTheme      string
	classpathPackages bool
}

// apply copies every flag the user set onto cfg.
func (f *resolveFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("classpath") {
		cfg.Classpath.Entries = f.classpath
	}
	if flags.Changed("catalog") {
		cfg.Classpath.Catalogs = f.catalogs
	}
	if flags.Changed("format") {
		cfg.Output.Format = f.format
	}
	if flags.Changed("output") {
		cfg.Output.Path = f.outputPath
	}
	if flags.Changed("force") {
		cfg.Output.Force = f.force
	}
	if flags.Changed("strict-theme") {
		cfg.Theme.Strict = f.strictTheme
	}
	if flags.Changed("default-theme") {
		cfg.Theme.Default = f.defaultTheme
	}
	if flags.Changed("classpath-packages") {
		cfg.Packages.Classpath = f.classpathPackages
	}
}

func (f *resolveFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringSliceVar(&f.classpath, "classpath", nil, "Class directories and jars (replaces classpath.entries)")
	flags.StringSliceVar(&f.catalogs, "catalog", nil, "YAML class catalogs (replaces classpath.catalogs)")
	flags.StringVarP(&f.outputPath, "output", "o", "", "Write the report to a file instead of stdout")
	flags.BoolVar(&f.force, "force", false, "Overwrite an existing report file")
	flags.BoolVar(&f.dryRun, "dry-run", false, "Preview file writes without touching disk")
	flags.BoolVar(&f.strictTheme, "strict-theme", false, "Fail when root views select different themes")
	flags.StringVar(&f.defaultTheme, "default-theme", "", "Theme class used when no root view selects one")
	flags.BoolVar(&f.classpathPackages, "classpath-packages", false, "Also collect npm packages from every annotated class")
}

// ResolveCmd creates the 'resolve' command
func ResolveCmd() *cobra.Command {
	var flags resolveFlags

	cmd := &cobra.Command{
		Use:   "resolve [root-class...]",
		Short: "Resolve the frontend dependencies of an application",
		Long: `Resolve walks every root view and reports the npm packages, JavaScript
modules, HTML imports, scripts and theme the application needs.

Root classes given as arguments replace the configured roots. Without any,
every class annotated with @Route is a root.

Formats: text, json, yaml, markdown (md), html, dot

Examples:
  wren resolve
  wren resolve com.example.MainView --format json
  wren resolve --format markdown -o frontend.md --force
  wren resolve --classpath target/classes,lib/vaadin.jar --strict-theme`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(global.configPath)
			if err != nil {
				return err
			}
			flags.apply(cmd, cfg)
			if len(args) > 0 {
				cfg.Roots = args
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			format, _ := report.ParseFormat(cfg.Output.Format)

			finder, closeFinder, err := openFinder(cfg, log)
			if err != nil {
				return err
			}
			defer closeFinder()

			opts := cfg.FrontendOptions()
			opts.Logger = log
			deps, err := frontend.Resolve(finder, opts)
			if err != nil {
				return fmt.Errorf("resolving dependencies: %w", err)
			}

			var buf bytes.Buffer
			if err := report.Render(&buf, deps, format); err != nil {
				return fmt.Errorf("rendering %s report: %w", format, err)
			}
			err = writeOutput(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), buf.Bytes(), writeOptions{
				path:   cfg.Output.Path,
				force:  cfg.Output.Force,
				dryRun: flags.dryRun,
			})
			if err != nil {
				return err
			}

			summarize(deps)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&flags.format, "format", "f", "text", "Report format")

	return cmd
}

// summarize prints status lines about a resolution.
func summarize(deps *frontend.Dependencies) {
	for _, c := range deps.Conflicts() {
		msg := fmt.Sprintf("%s: kept %s, ignored %s from %s", c.Package, c.Kept, c.Rejected, c.DeclaredBy)
		if c.Relation != "" {
			msg += fmt.Sprintf(" (%s)", c.Relation)
		}
		output.Warn(msg)
	}
	for _, c := range deps.ThemeConflicts() {
		output.Warn(fmt.Sprintf("%s selects %s, keeping %s", c.Root, themeName(c.Rejected), themeName(c.Kept)))
	}
	if missing := deps.Missing(); len(missing) > 0 {
		output.Verbose("Classes not found: " + strings.Join(missing, ", "))
	}

	output.Success(fmt.Sprintf("Resolved %d npm packages, %d modules, %d imports and %d scripts from %d root views",
		len(deps.Packages()), len(deps.Modules()), len(deps.Imports()), len(deps.Scripts()), len(deps.EndPoints())))
	if theme := deps.Theme(); theme != nil {
		output.Step("Theme: " + themeName(theme))
	}
}

func themeName(t *frontend.ThemeDefinition) string {
	if t == nil {
		return "none"
	}
	if t.Variant == "" {
		return t.Theme
	}
	return t.Theme + " (" + t.Variant + ")"
}
