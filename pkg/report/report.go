// Package report renders a resolution summary for people and tools.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/simonhull/wren/pkg/frontend"
)

// ErrUnknownFormat is returned for unsupported output formats.
var ErrUnknownFormat = errors.New("unknown report format")

// Format is an output format.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatDOT      Format = "dot"
)

// Formats lists every supported format.
var Formats = []Format{FormatText, FormatJSON, FormatYAML, FormatMarkdown, FormatHTML, FormatDOT}

// ParseFormat parses a format name. "md" is accepted for markdown.
func ParseFormat(name string) (Format, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "md" {
		return FormatMarkdown, nil
	}
	for _, f := range Formats {
		if string(f) == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// Summary is the document every format renders.
type Summary struct {
	Theme          *frontend.ThemeDefinition  `json:"theme" yaml:"theme"`
	Packages       []frontend.Package         `json:"packages" yaml:"packages"`
	Modules        []string                   `json:"modules" yaml:"modules"`
	Imports        []string                   `json:"imports" yaml:"imports"`
	Scripts        []string                   `json:"scripts" yaml:"scripts"`
	EndPoints      []frontend.EndPoint        `json:"end_points" yaml:"end_points"`
	Conflicts      []frontend.VersionConflict `json:"conflicts,omitempty" yaml:"conflicts,omitempty"`
	ThemeConflicts []frontend.ThemeConflict   `json:"theme_conflicts,omitempty" yaml:"theme_conflicts,omitempty"`
	Missing        []string                   `json:"missing,omitempty" yaml:"missing,omitempty"`
}

// NewSummary captures the results of a resolution.
func NewSummary(d *frontend.Dependencies) *Summary {
	return &Summary{
		Theme:          d.Theme(),
		Packages:       nonNil(d.Packages()),
		Modules:        nonNil(d.Modules()),
		Imports:        nonNil(d.Imports()),
		Scripts:        nonNil(d.Scripts()),
		EndPoints:      nonNil(d.EndPoints()),
		Conflicts:      d.Conflicts(),
		ThemeConflicts: d.ThemeConflicts(),
		Missing:        d.Missing(),
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// Render writes the resolution in the given format.
func Render(w io.Writer, d *frontend.Dependencies, format Format) error {
	if format == FormatDOT {
		return d.WriteDOT(w)
	}
	return RenderSummary(w, NewSummary(d), format)
}

// RenderSummary writes a summary in any format except DOT, which needs the
// class graph.
func RenderSummary(w io.Writer, s *Summary, format Format) error {
	switch format {
	case FormatText:
		return Text(w, s)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	case FormatMarkdown:
		_, err := w.Write(Markdown(s))
		return err
	case FormatHTML:
		page, err := HTML(s)
		if err != nil {
			return err
		}
		_, err = w.Write(page)
		return err
	case FormatDOT:
		return fmt.Errorf("%w: dot needs a resolution, not a summary", ErrUnknownFormat)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}
