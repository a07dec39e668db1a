package classfinder

import (
	"fmt"
	"strings"

	"github.com/simonhull/wren/pkg/signature"
)

// Annotation is an annotation instance with its element values.
//
// Values hold string, bool, numeric, class-name (string), []any and nested
// Annotation values. Elements left at their default are absent.
type Annotation struct {
	Type   string         `yaml:"type" json:"type"`
	Values map[string]any `yaml:"values,omitempty" json:"values,omitempty"`
}

// String returns a single string element. A one-element array counts as a
// single value, matching how array-typed elements are written in source.
func (a Annotation) String(key string) (string, bool) {
	switch v := a.Values[key].(type) {
	case string:
		return v, true
	case []any:
		if len(v) == 1 {
			if s, ok := v[0].(string); ok {
				return s, true
			}
		}
	case []string:
		if len(v) == 1 {
			return v[0], true
		}
	case nil:
		return "", false
	default:
		return fmt.Sprint(v), true
	}
	return "", false
}

// Strings returns a string or string-array element as a slice.
func (a Annotation) Strings(key string) []string {
	switch v := a.Values[key].(type) {
	case string:
		return []string{v}
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Class returns a class-valued element as a dotted class name.
func (a Annotation) Class(key string) (string, bool) {
	s, ok := a.String(key)
	if !ok {
		return "", false
	}
	name := signature.ClassName(s)
	return name, name != ""
}

// Classes returns the class names held by the given elements. Values that
// do not parse as class names are dropped.
func (a Annotation) Classes(keys ...string) []string {
	var out []string
	for _, key := range keys {
		for _, s := range a.Strings(key) {
			if name := signature.ClassName(s); name != "" {
				out = append(out, name)
			}
		}
	}
	return out
}

// Flatten expands repeatable-annotation containers: an annotation whose
// "value" element is a list made only of annotations is replaced by those
// annotations, in order. Other annotations pass through unchanged.
func Flatten(annotations []Annotation) []Annotation {
	out := make([]Annotation, 0, len(annotations))
	for _, a := range annotations {
		if nested, ok := containerItems(a); ok {
			out = append(out, nested...)
			continue
		}
		out = append(out, a)
	}
	return out
}

func containerItems(a Annotation) ([]Annotation, bool) {
	if len(a.Values) != 1 {
		return nil, false
	}
	list, ok := a.Values["value"].([]any)
	if !ok || len(list) == 0 {
		return nil, false
	}
	items := make([]Annotation, 0, len(list))
	for _, v := range list {
		nested, ok := asAnnotation(v)
		if !ok {
			return nil, false
		}
		items = append(items, nested)
	}
	return items, true
}

// asAnnotation accepts a decoded annotation or the {type, values} mapping
// a YAML catalog decodes nested annotations into.
func asAnnotation(v any) (Annotation, bool) {
	switch a := v.(type) {
	case Annotation:
		return a, true
	case map[string]any:
		typ, ok := a["type"].(string)
		if !ok || strings.TrimSpace(typ) == "" {
			return Annotation{}, false
		}
		out := Annotation{Type: strings.TrimSpace(typ)}
		for key, val := range a {
			switch key {
			case "type":
			case "values":
				values, ok := val.(map[string]any)
				if !ok && val != nil {
					return Annotation{}, false
				}
				out.Values = values
			default:
				return Annotation{}, false
			}
		}
		return out, true
	}
	return Annotation{}, false
}

// ShortName returns the simple name of an annotation type, for messages.
func ShortName(annotation string) string {
	if i := strings.LastIndexAny(annotation, ".$"); i >= 0 {
		return annotation[i+1:]
	}
	return annotation
}
