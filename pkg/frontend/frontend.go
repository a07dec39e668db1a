// Package frontend resolves the frontend dependencies of a JVM web-UI
// application: npm packages, JavaScript modules, HTML imports, scripts and
// the effective theme.
//
// Resolution walks the class graph of every root view with a walker.Walker
// and reads dependency annotations from each class in walk order. Every
// collection keeps the first value it sees, so the result depends only on
// the root order and the class metadata, never on map iteration.
package frontend

import (
	"errors"

	"github.com/simonhull/wren/pkg/logger"
)

var (
	// ErrNoRoots is returned when no root was given and the finder knows no
	// routed view.
	ErrNoRoots = errors.New("no root views")
	// ErrThemeConflict is returned in strict mode when root views select
	// different themes.
	ErrThemeConflict = errors.New("conflicting themes")
)

// Annotations names the annotation types resolution reads.
type Annotations struct {
	NpmPackage   string `yaml:"npm_package" mapstructure:"npm_package"`
	JsModule     string `yaml:"js_module" mapstructure:"js_module"`
	HtmlImport   string `yaml:"html_import" mapstructure:"html_import"`
	JavaScript   string `yaml:"javascript" mapstructure:"javascript"`
	Theme        string `yaml:"theme" mapstructure:"theme"`
	NoTheme      string `yaml:"no_theme" mapstructure:"no_theme"`
	Route        string `yaml:"route" mapstructure:"route"`
	RouteAlias   string `yaml:"route_alias" mapstructure:"route_alias"`
	ParentLayout string `yaml:"parent_layout" mapstructure:"parent_layout"`
	ThemeURLs    string `yaml:"theme_urls" mapstructure:"theme_urls"`
}

// DefaultAnnotations returns the Vaadin Flow annotation names.
func DefaultAnnotations() Annotations {
	return Annotations{
		NpmPackage:   "com.vaadin.flow.component.dependency.NpmPackage",
		JsModule:     "com.vaadin.flow.component.dependency.JsModule",
		HtmlImport:   "com.vaadin.flow.component.dependency.HtmlImport",
		JavaScript:   "com.vaadin.flow.component.dependency.JavaScript",
		Theme:        "com.vaadin.flow.theme.Theme",
		NoTheme:      "com.vaadin.flow.theme.NoTheme",
		Route:        "com.vaadin.flow.router.Route",
		RouteAlias:   "com.vaadin.flow.router.RouteAlias",
		ParentLayout: "com.vaadin.flow.router.ParentLayout",
		ThemeURLs:    "com.vaadin.flow.theme.ThemeURLs",
	}
}

// withDefaults fills unset names from DefaultAnnotations.
func (a Annotations) withDefaults() Annotations {
	d := DefaultAnnotations()
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&a.NpmPackage, d.NpmPackage)
	fill(&a.JsModule, d.JsModule)
	fill(&a.HtmlImport, d.HtmlImport)
	fill(&a.JavaScript, d.JavaScript)
	fill(&a.Theme, d.Theme)
	fill(&a.NoTheme, d.NoTheme)
	fill(&a.Route, d.Route)
	fill(&a.RouteAlias, d.RouteAlias)
	fill(&a.ParentLayout, d.ParentLayout)
	fill(&a.ThemeURLs, d.ThemeURLs)
	return a
}

// ClassElements maps annotation types to the elements whose class values
// the walker follows: route and alias layouts and parent layouts.
func (a Annotations) ClassElements() map[string][]string {
	a = a.withDefaults()
	return map[string][]string{
		a.Route:        {"layout"},
		a.RouteAlias:   {"layout"},
		a.ParentLayout: {"value"},
	}
}

// Options configures a resolution.
type Options struct {
	// Roots are the entry point classes, resolved in order. When empty,
	// every class carrying the route annotation is a root, in finder order.
	Roots []string

	// Annotations overrides annotation names; unset names use the defaults.
	Annotations Annotations

	// SkipPrefixes replaces the walker's default skip list when non-nil.
	SkipPrefixes []string

	// DefaultTheme is used when root views exist but none selects a theme
	// or opts out with the no-theme annotation.
	DefaultTheme string

	// StrictTheme turns theme disagreement between root views into
	// ErrThemeConflict instead of keeping the first root's theme.
	StrictTheme bool

	// ClasspathPackages also collects npm packages from every annotated
	// class the finder knows, after the walked classes.
	ClasspathPackages bool

	Logger logger.Logger
}

// Package is an npm package requirement.
type Package struct {
	Name       string `json:"name" yaml:"name"`
	Version    string `json:"version" yaml:"version"`
	DeclaredBy string `json:"declared_by" yaml:"declared_by"`
}

// VersionConflict records a package declared again with a different
// version. The first declaration is kept.
type VersionConflict struct {
	Package    string `json:"package" yaml:"package"`
	Kept       string `json:"kept" yaml:"kept"`
	Rejected   string `json:"rejected" yaml:"rejected"`
	DeclaredBy string `json:"declared_by" yaml:"declared_by"`
	// Relation compares Rejected to Kept: "newer", "older" or "equivalent",
	// empty when either version is not plain semver.
	Relation string `json:"relation,omitempty" yaml:"relation,omitempty"`
}

// ThemeDefinition is a selected theme class with an optional variant.
type ThemeDefinition struct {
	Theme   string `json:"theme" yaml:"theme"`
	Variant string `json:"variant,omitempty" yaml:"variant,omitempty"`
}

// ThemeConflict records a root view whose theme choice lost to an earlier
// root.
type ThemeConflict struct {
	Root     string           `json:"root" yaml:"root"`
	Kept     *ThemeDefinition `json:"kept,omitempty" yaml:"kept,omitempty"`
	Rejected *ThemeDefinition `json:"rejected,omitempty" yaml:"rejected,omitempty"`
}

// EndPoint is the resolution of a single root.
type EndPoint struct {
	Root string `json:"root" yaml:"root"`
	// Route is the route path, empty for roots without a route.
	Route   string   `json:"route,omitempty" yaml:"route,omitempty"`
	Routed  bool     `json:"routed" yaml:"routed"`
	Layouts []string `json:"layouts,omitempty" yaml:"layouts,omitempty"`
	// Theme is the theme this root selects, from itself or its layouts.
	Theme   *ThemeDefinition `json:"theme,omitempty" yaml:"theme,omitempty"`
	NoTheme bool             `json:"no_theme,omitempty" yaml:"no_theme,omitempty"`

	Packages []Package `json:"packages,omitempty" yaml:"packages,omitempty"`
	Modules  []string  `json:"modules,omitempty" yaml:"modules,omitempty"`
	Imports  []string  `json:"imports,omitempty" yaml:"imports,omitempty"`
	Scripts  []string  `json:"scripts,omitempty" yaml:"scripts,omitempty"`
	Classes  int       `json:"classes" yaml:"classes"`
}
