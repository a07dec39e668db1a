package frontend

import (
	"io"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/simonhull/wren/pkg/classfinder"
	"github.com/simonhull/wren/pkg/ordered"
	"github.com/simonhull/wren/pkg/walker"
)

// collection gathers dependency annotations in discovery order.
type collection struct {
	packages ordered.Map[string, Package]
	modules  ordered.Set[string]
	imports  ordered.Set[string]
	scripts  ordered.Set[string]
}

// add reads the dependency annotations of one class. onPackage is called
// for every package declaration with the package already held for its name.
func (c *collection) add(info *classfinder.ClassInfo, names Annotations, onPackage func(kept, declared Package)) {
	for _, a := range info.Annotations {
		switch a.Type {
		case names.NpmPackage:
			name, _ := a.String("value")
			if name == "" {
				continue
			}
			version, _ := a.String("version")
			p := Package{Name: name, Version: version, DeclaredBy: info.Name}
			kept, _ := c.packages.PutIfAbsent(name, p)
			if onPackage != nil {
				onPackage(kept, p)
			}
		case names.JsModule:
			addAll(&c.modules, a.Strings("value"))
		case names.HtmlImport:
			addAll(&c.imports, a.Strings("value"))
		case names.JavaScript:
			addAll(&c.scripts, a.Strings("value"))
		}
	}
}

func (c *collection) packageList() []Package {
	keys := c.packages.Keys()
	out := make([]Package, 0, len(keys))
	for _, k := range keys {
		p, _ := c.packages.Get(k)
		out = append(out, p)
	}
	return out
}

func addAll(set *ordered.Set[string], values []string) {
	for _, v := range values {
		if v != "" {
			set.Add(v)
		}
	}
}

// Dependencies is the resolved frontend summary of an application.
// It is built once by Resolve and not modified afterwards.
type Dependencies struct {
	collection

	theme          *ThemeDefinition
	endPoints      []EndPoint
	conflicts      []VersionConflict
	themeConflicts []ThemeConflict
	missing        ordered.Set[string]
	walker         *walker.Walker
}

// Packages returns the npm packages in discovery order. Each package holds
// the first version declared for it.
func (d *Dependencies) Packages() []Package {
	return d.packageList()
}

// PackageMap returns package name to version.
func (d *Dependencies) PackageMap() map[string]string {
	out := make(map[string]string, d.packages.Len())
	for _, p := range d.packageList() {
		out[p.Name] = p.Version
	}
	return out
}

// Modules returns the JavaScript modules in discovery order.
func (d *Dependencies) Modules() []string { return d.modules.Items() }

// Imports returns the HTML imports in discovery order, translated to the
// theme's URLs when the theme declares them.
func (d *Dependencies) Imports() []string { return d.imports.Items() }

// Scripts returns the external scripts in discovery order.
func (d *Dependencies) Scripts() []string { return d.scripts.Items() }

// Theme returns the selected theme, or nil when there is none.
func (d *Dependencies) Theme() *ThemeDefinition {
	if d.theme == nil {
		return nil
	}
	t := *d.theme
	return &t
}

// EndPoints returns the per-root results in root order.
func (d *Dependencies) EndPoints() []EndPoint {
	return append([]EndPoint(nil), d.endPoints...)
}

// Conflicts returns package versions that lost to an earlier declaration.
func (d *Dependencies) Conflicts() []VersionConflict {
	return append([]VersionConflict(nil), d.conflicts...)
}

// ThemeConflicts returns root views whose theme choice was overridden by an
// earlier root.
func (d *Dependencies) ThemeConflicts() []ThemeConflict {
	return append([]ThemeConflict(nil), d.themeConflicts...)
}

// Missing returns referenced classes the finder could not provide.
func (d *Dependencies) Missing() []string { return d.missing.Items() }

// Walker returns the walker used for the resolution, holding the class
// graph of every visited class.
func (d *Dependencies) Walker() *walker.Walker { return d.walker }

// WriteDOT writes the class graph visited during resolution.
func (d *Dependencies) WriteDOT(w io.Writer) error {
	return d.walker.WriteDOT(w)
}

// relation compares a rejected package version to the kept one.
func relation(kept, rejected string) string {
	k, r := canonical(kept), canonical(rejected)
	if k == "" || r == "" {
		return ""
	}
	switch semver.Compare(r, k) {
	case 1:
		return "newer"
	case -1:
		return "older"
	}
	return "equivalent"
}

// canonical accepts exact versions, optionally written "=1.2.3" or
// "v1.2.3". Ranges return the empty string.
func canonical(version string) string {
	v := strings.TrimPrefix(strings.TrimSpace(version), "=")
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return semver.Canonical(v)
}
