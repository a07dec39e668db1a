package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/simonhull/wren/pkg/frontend"
)

// Text writes a plain, aligned summary.
func Text(w io.Writer, s *Summary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "Theme:\t%s\n", themeText(s.Theme))

	fmt.Fprintf(tw, "\nPackages (%d):\n", len(s.Packages))
	for _, p := range s.Packages {
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", p.Name, p.Version, p.DeclaredBy)
	}
	list(tw, "Modules", s.Modules)
	list(tw, "Imports", s.Imports)
	list(tw, "Scripts", s.Scripts)

	fmt.Fprintf(tw, "\nEnd points (%d):\n", len(s.EndPoints))
	for _, ep := range s.EndPoints {
		route := "-"
		if ep.Routed {
			route = "/" + ep.Route
		}
		fmt.Fprintf(tw, "  %s\t%s\t%d classes\t%s\n", ep.Root, route, ep.Classes, strings.Join(ep.Layouts, " < "))
	}

	if len(s.Conflicts) > 0 {
		fmt.Fprintf(tw, "\nVersion conflicts (%d):\n", len(s.Conflicts))
		for _, c := range s.Conflicts {
			fmt.Fprintf(tw, "  %s\tkept %s\trejected %s\t%s\n", c.Package, c.Kept, c.Rejected, c.DeclaredBy)
		}
	}
	if len(s.ThemeConflicts) > 0 {
		fmt.Fprintf(tw, "\nTheme conflicts (%d):\n", len(s.ThemeConflicts))
		for _, c := range s.ThemeConflicts {
			fmt.Fprintf(tw, "  %s\tkept %s\trejected %s\n", c.Root, themeText(c.Kept), themeText(c.Rejected))
		}
	}
	if len(s.Missing) > 0 {
		list(tw, "Missing classes", s.Missing)
	}

	return tw.Flush()
}

func list(w io.Writer, title string, items []string) {
	fmt.Fprintf(w, "\n%s (%d):\n", title, len(items))
	for _, it := range items {
		fmt.Fprintf(w, "  %s\n", it)
	}
}

func themeText(t *frontend.ThemeDefinition) string {
	switch {
	case t == nil:
		return "none"
	case t.Variant != "":
		return fmt.Sprintf("%s (variant %s)", t.Theme, t.Variant)
	}
	return t.Theme
}
