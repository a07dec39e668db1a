package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"github.com/simonhull/wren/pkg/frontend"
)

var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
)

// Markdown renders the summary as a GitHub-flavored markdown document.
func Markdown(s *Summary) []byte {
	var b bytes.Buffer

	b.WriteString("# Frontend dependencies\n\n")
	if s.Theme == nil {
		b.WriteString("**Theme:** none\n")
	} else {
		fmt.Fprintf(&b, "**Theme:** %s", code(s.Theme.Theme))
		if s.Theme.Variant != "" {
			fmt.Fprintf(&b, " (variant %s)", code(s.Theme.Variant))
		}
		b.WriteString("\n")
	}

	section(&b, "Packages", len(s.Packages))
	if len(s.Packages) > 0 {
		rows := make([][]string, 0, len(s.Packages))
		for _, p := range s.Packages {
			rows = append(rows, []string{code(p.Name), code(p.Version), code(p.DeclaredBy)})
		}
		table(&b, []string{"Package", "Version", "Declared by"}, rows)
	}

	bullets(&b, "Modules", s.Modules)
	bullets(&b, "Imports", s.Imports)
	bullets(&b, "Scripts", s.Scripts)

	section(&b, "End points", len(s.EndPoints))
	if len(s.EndPoints) > 0 {
		rows := make([][]string, 0, len(s.EndPoints))
		for _, ep := range s.EndPoints {
			route := ""
			if ep.Routed {
				route = code("/" + ep.Route)
			}
			layouts := make([]string, len(ep.Layouts))
			for i, l := range ep.Layouts {
				layouts[i] = code(l)
			}
			rows = append(rows, []string{
				code(ep.Root), route, strings.Join(layouts, " < "), themeMarkdown(ep.Theme, ep.NoTheme), fmt.Sprint(ep.Classes),
			})
		}
		table(&b, []string{"Root", "Route", "Layouts", "Theme", "Classes"}, rows)
	}

	if len(s.Conflicts) > 0 {
		section(&b, "Version conflicts", len(s.Conflicts))
		rows := make([][]string, 0, len(s.Conflicts))
		for _, c := range s.Conflicts {
			rows = append(rows, []string{code(c.Package), code(c.Kept), code(c.Rejected), code(c.DeclaredBy), c.Relation})
		}
		table(&b, []string{"Package", "Kept", "Rejected", "Declared by", "Rejected is"}, rows)
	}
	if len(s.ThemeConflicts) > 0 {
		section(&b, "Theme conflicts", len(s.ThemeConflicts))
		rows := make([][]string, 0, len(s.ThemeConflicts))
		for _, c := range s.ThemeConflicts {
			rows = append(rows, []string{code(c.Root), themeMarkdown(c.Kept, c.Kept == nil), themeMarkdown(c.Rejected, c.Rejected == nil)})
		}
		table(&b, []string{"Root", "Kept", "Rejected"}, rows)
	}
	if len(s.Missing) > 0 {
		bullets(&b, "Missing classes", s.Missing)
	}

	return b.Bytes()
}

// HTML renders the markdown document as a sanitized standalone page.
func HTML(s *Summary) ([]byte, error) {
	var body bytes.Buffer
	if err := md.Convert(Markdown(s), &body); err != nil {
		return nil, fmt.Errorf("rendering markdown: %w", err)
	}
	clean := bluemonday.UGCPolicy().SanitizeBytes(body.Bytes())

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>Frontend dependencies</title>\n</head>\n<body>\n")
	page.Write(clean)
	page.WriteString("</body>\n</html>\n")
	return page.Bytes(), nil
}

func section(b *bytes.Buffer, title string, n int) {
	fmt.Fprintf(b, "\n## %s (%d)\n\n", title, n)
}

func bullets(b *bytes.Buffer, title string, items []string) {
	section(b, title, len(items))
	if len(items) == 0 {
		b.WriteString("_None._\n")
		return
	}
	for _, it := range items {
		fmt.Fprintf(b, "- %s\n", code(it))
	}
}

func table(b *bytes.Buffer, header []string, rows [][]string) {
	b.WriteString("| " + strings.Join(header, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(header)) + "\n")
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = strings.ReplaceAll(c, "|", `\|`)
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
}

// code wraps s in a code span long enough to hold any backticks inside.
func code(s string) string {
	if s == "" {
		return ""
	}
	fence := "`"
	for strings.Contains(s, fence) {
		fence += "`"
	}
	if strings.HasPrefix(s, "`") || strings.HasSuffix(s, "`") {
		return fence + " " + s + " " + fence
	}
	return fence + s + fence
}

func themeMarkdown(t *frontend.ThemeDefinition, none bool) string {
	switch {
	case none:
		return "_none_"
	case t == nil:
		return ""
	case t.Variant != "":
		return code(t.Theme) + " (" + code(t.Variant) + ")"
	}
	return code(t.Theme)
}
