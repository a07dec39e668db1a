package frontend

import (
	"fmt"
	"strings"

	"github.com/simonhull/wren/pkg/classfinder"
	"github.com/simonhull/wren/pkg/logger"
	"github.com/simonhull/wren/pkg/ordered"
	"github.com/simonhull/wren/pkg/signature"
	"github.com/simonhull/wren/pkg/walker"
)

// themeChoice is what a root view says about theming: a theme, or an
// explicit opt-out.
type themeChoice struct {
	root string
	def  *ThemeDefinition
	none bool
}

func (c *themeChoice) same(o *themeChoice) bool {
	if c.none || o.none {
		return c.none == o.none
	}
	return *c.def == *o.def
}

type resolver struct {
	finder classfinder.ClassFinder
	opts   Options
	names  Annotations
	walker *walker.Walker
	log    logger.Logger
	deps   *Dependencies
}

// Resolve computes the frontend dependencies reachable from the root views.
//
// Roots are resolved in order and each root's classes in walk order; the
// selected theme's classes follow, then class path packages when enabled.
// Missing classes and package version conflicts are recorded, not returned
// as errors.
func Resolve(finder classfinder.ClassFinder, opts Options) (*Dependencies, error) {
	log := opts.Logger
	if log == nil {
		log = logger.Default()
	}
	names := opts.Annotations.withDefaults()

	w := walker.New(finder, walker.Options{
		SkipPrefixes:  opts.SkipPrefixes,
		ClassElements: names.ClassElements(),
		Logger:        log,
	})

	r := &resolver{
		finder: finder,
		opts:   opts,
		names:  names,
		walker: w,
		log:    log,
		deps:   &Dependencies{walker: w},
	}
	if err := r.run(); err != nil {
		return nil, err
	}
	return r.deps, nil
}

func (r *resolver) run() error {
	roots, err := r.roots()
	if err != nil {
		return err
	}
	r.log.Info("Resolving frontend dependencies", logger.F("roots", len(roots)))

	var selected *themeChoice
	routed := false
	for _, root := range roots {
		ep, choice := r.resolveRoot(root)
		r.deps.endPoints = append(r.deps.endPoints, ep)
		routed = routed || ep.Routed

		if choice == nil {
			continue
		}
		if selected == nil {
			selected = choice
			continue
		}
		if !selected.same(choice) {
			if err := r.themeConflict(selected, choice); err != nil {
				return err
			}
		}
	}

	r.selectTheme(selected, routed)
	if r.deps.theme != nil {
		r.resolveTheme()
	}

	if r.opts.ClasspathPackages {
		if err := r.classpathPackages(); err != nil {
			return err
		}
	}

	r.log.Info("Resolved frontend dependencies",
		logger.F("packages", r.deps.packages.Len()),
		logger.F("modules", r.deps.modules.Len()),
		logger.F("imports", r.deps.imports.Len()),
		logger.F("scripts", r.deps.scripts.Len()),
		logger.F("missing", r.deps.missing.Len()))
	return nil
}

func (r *resolver) roots() ([]string, error) {
	candidates := r.opts.Roots
	if len(candidates) == 0 {
		found, err := r.finder.Annotated(r.names.Route)
		if err != nil {
			return nil, fmt.Errorf("discovering routes: %w", err)
		}
		candidates = found
	}

	roots := ordered.NewSet[string]()
	for _, c := range candidates {
		if name := signature.ClassName(c); name != "" {
			roots.Add(name)
		}
	}
	if roots.Len() == 0 {
		return nil, ErrNoRoots
	}
	return roots.Items(), nil
}

// resolveRoot walks one root, adds its classes to the summary and returns
// its end point with its theme choice, if it is a routed view that has one.
func (r *resolver) resolveRoot(root string) (EndPoint, *themeChoice) {
	v := r.walker.Walk(root)
	ep := EndPoint{Root: v.Root, Classes: len(v.Classes)}
	for _, m := range v.Missing {
		r.deps.missing.Add(m)
	}

	var own collection
	for _, info := range v.Classes {
		own.add(info, r.names, nil)
		r.deps.add(info, r.names, r.packageDeclared)
	}
	ep.Packages = own.packageList()
	ep.Modules = own.modules.Items()
	ep.Imports = own.imports.Items()
	ep.Scripts = own.scripts.Items()

	if len(v.Classes) == 0 {
		return ep, nil
	}
	info := v.Classes[0]
	routes := info.AnnotationsOf(r.names.Route)
	if len(routes) == 0 {
		return ep, nil
	}
	ep.Routed = true
	ep.Route, _ = routes[0].String("value")
	layout, _ := routes[0].Class("layout")
	ep.Layouts = r.layoutChain(info.Name, layout)

	choice := r.themeOf(info, ep.Layouts)
	if choice != nil {
		ep.Theme = choice.def
		ep.NoTheme = choice.none
	}
	return ep, choice
}

// layoutChain follows a route layout through parent layouts, nearest first.
func (r *resolver) layoutChain(root, layout string) []string {
	chain := ordered.NewSet(root)
	for next := layout; next != "" && !r.walker.Skipped(next) && chain.Add(next); {
		info, err := r.walker.Class(next)
		if err != nil {
			break
		}
		next = ""
		if parents := info.AnnotationsOf(r.names.ParentLayout); len(parents) > 0 {
			next, _ = parents[0].Class("value")
		}
	}
	return chain.Items()[1:]
}

// themeOf finds the theme choice of a routed view. The view's own
// annotations win; otherwise the nearest layout that has one.
func (r *resolver) themeOf(view *classfinder.ClassInfo, layouts []string) *themeChoice {
	if c := r.declaredTheme(view); c != nil {
		return c
	}
	for _, name := range layouts {
		info, err := r.walker.Class(name)
		if err != nil {
			continue
		}
		if c := r.declaredTheme(info); c != nil {
			c.root = view.Name
			return c
		}
	}
	return nil
}

func (r *resolver) declaredTheme(info *classfinder.ClassInfo) *themeChoice {
	if themes := info.AnnotationsOf(r.names.Theme); len(themes) > 0 {
		theme, ok := themes[0].Class("value")
		if ok {
			variant, _ := themes[0].String("variant")
			return &themeChoice{root: info.Name, def: &ThemeDefinition{Theme: theme, Variant: variant}}
		}
	}
	if info.HasAnnotation(r.names.NoTheme) {
		return &themeChoice{root: info.Name, none: true}
	}
	return nil
}

func (r *resolver) themeConflict(kept, rejected *themeChoice) error {
	tc := ThemeConflict{Root: rejected.root, Kept: kept.def, Rejected: rejected.def}
	r.deps.themeConflicts = append(r.deps.themeConflicts, tc)
	r.log.Warn("Root views select different themes, keeping the first",
		logger.F("kept_root", kept.root),
		logger.F("kept", describeTheme(kept.def)),
		logger.F("root", rejected.root),
		logger.F("rejected", describeTheme(rejected.def)))

	if r.opts.StrictTheme {
		return fmt.Errorf("%w: %s selects %s but %s selects %s", ErrThemeConflict,
			kept.root, describeTheme(kept.def), rejected.root, describeTheme(rejected.def))
	}
	return nil
}

func (r *resolver) selectTheme(selected *themeChoice, routed bool) {
	switch {
	case selected != nil && selected.none:
		return
	case selected != nil:
		t := *selected.def
		r.deps.theme = &t
	case routed && r.opts.DefaultTheme != "":
		name := signature.ClassName(r.opts.DefaultTheme)
		if _, err := r.walker.Class(name); err != nil {
			r.log.Warn("Default theme not found", logger.F("theme", name), logger.F("error", err))
			return
		}
		r.deps.theme = &ThemeDefinition{Theme: name}
	}
}

// resolveTheme adds the theme's own class graph and applies its URL
// translation to HTML imports.
func (r *resolver) resolveTheme() {
	theme := r.deps.theme.Theme
	v := r.walker.Walk(theme)
	for _, m := range v.Missing {
		r.deps.missing.Add(m)
	}
	for _, info := range v.Classes {
		r.deps.add(info, r.names, r.packageDeclared)
	}
	r.log.Debug("Resolved theme", logger.F("theme", theme), logger.F("classes", len(v.Classes)))

	if len(v.Classes) == 0 {
		return
	}
	urls := v.Classes[0].AnnotationsOf(r.names.ThemeURLs)
	if len(urls) == 0 {
		return
	}
	base, _ := urls[0].String("base")
	themed, _ := urls[0].String("theme")
	if base == "" || themed == "" {
		return
	}

	r.deps.imports = translate(r.deps.imports.Items(), base, themed)
	for i := range r.deps.endPoints {
		ep := &r.deps.endPoints[i]
		translated := translate(ep.Imports, base, themed)
		ep.Imports = translated.Items()
	}
}

func translate(imports []string, base, themed string) ordered.Set[string] {
	var out ordered.Set[string]
	for _, imp := range imports {
		if strings.HasPrefix(imp, base) {
			imp = themed + strings.TrimPrefix(imp, base)
		}
		out.Add(imp)
	}
	return out
}

// classpathPackages collects npm packages from every class the finder
// reports, after everything reachable from the roots.
func (r *resolver) classpathPackages() error {
	names, err := r.finder.Annotated(r.names.NpmPackage)
	if err != nil {
		return fmt.Errorf("scanning class path packages: %w", err)
	}
	only := Annotations{NpmPackage: r.names.NpmPackage}
	for _, name := range names {
		info, err := r.walker.Class(name)
		if err != nil {
			r.log.Debug("Skipping class path package holder", logger.F("class", name), logger.F("error", err))
			continue
		}
		r.deps.add(info, only, r.packageDeclared)
	}
	return nil
}

// packageDeclared records a declaration that lost to an earlier version.
func (r *resolver) packageDeclared(kept, declared Package) {
	if kept.Version == declared.Version {
		return
	}
	for _, c := range r.deps.conflicts {
		if c.Package == declared.Name && c.Rejected == declared.Version {
			return
		}
	}
	c := VersionConflict{
		Package:    declared.Name,
		Kept:       kept.Version,
		Rejected:   declared.Version,
		DeclaredBy: declared.DeclaredBy,
		Relation:   relation(kept.Version, declared.Version),
	}
	r.deps.conflicts = append(r.deps.conflicts, c)
	r.log.Warn("Package declared with another version, keeping the first",
		logger.F("package", c.Package),
		logger.F("kept", c.Kept),
		logger.F("rejected", c.Rejected),
		logger.F("class", c.DeclaredBy))
}

func describeTheme(def *ThemeDefinition) string {
	switch {
	case def == nil:
		return "no theme"
	case def.Variant != "":
		return def.Theme + " (" + def.Variant + ")"
	}
	return def.Theme
}
