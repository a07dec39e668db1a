// Package classfinder defines how the resolver looks up class metadata.
//
// The walker never touches a class path directly: it asks a ClassFinder for
// the structure of a class (super type, annotations, members and the classes
// its method bodies reference). Finders exist for in-memory registries, YAML
// class catalogs and real class files in directories and jars; ChainFinder
// combines them.
package classfinder

import (
	"errors"
	"fmt"
)

// ErrClassNotFound is returned (wrapped) by Lookup for unknown classes.
var ErrClassNotFound = errors.New("class not found")

// ClassFinder resolves class names to their structural metadata.
type ClassFinder interface {
	// Lookup returns the metadata of a dotted, fully-qualified class name.
	Lookup(name string) (*ClassInfo, error)

	// Annotated returns the names of all known classes carrying the given
	// annotation type, in a stable order.
	Annotated(annotation string) ([]string, error)
}

// NotFound builds the error finders return for an unknown class.
func NotFound(name string) error {
	return fmt.Errorf("%w: %s", ErrClassNotFound, name)
}

// ClassInfo is the structure of a single class.
type ClassInfo struct {
	Name        string       `yaml:"name" json:"name"`
	Super       string       `yaml:"super,omitempty" json:"super,omitempty"`
	Interfaces  []string     `yaml:"interfaces,omitempty" json:"interfaces,omitempty"`
	Signature   string       `yaml:"signature,omitempty" json:"signature,omitempty"`
	Annotations []Annotation `yaml:"annotations,omitempty" json:"annotations,omitempty"`
	Fields      []Field      `yaml:"fields,omitempty" json:"fields,omitempty"`
	Methods     []Method     `yaml:"methods,omitempty" json:"methods,omitempty"`
}

// Field is a declared field.
type Field struct {
	Name       string `yaml:"name" json:"name"`
	Descriptor string `yaml:"descriptor" json:"descriptor"`
	Signature  string `yaml:"signature,omitempty" json:"signature,omitempty"`
}

// Method is a declared method. References lists classes named from the
// method body: instantiations, static factory calls, field owners, casts,
// class literals and method handle targets, as descriptors or class names.
type Method struct {
	Name       string   `yaml:"name" json:"name"`
	Descriptor string   `yaml:"descriptor" json:"descriptor"`
	Signature  string   `yaml:"signature,omitempty" json:"signature,omitempty"`
	References []string `yaml:"references,omitempty" json:"references,omitempty"`
}

// AnnotationsOf returns the annotations of the given type, in declaration
// order.
func (c *ClassInfo) AnnotationsOf(annotation string) []Annotation {
	var out []Annotation
	for _, a := range c.Annotations {
		if a.Type == annotation {
			out = append(out, a)
		}
	}
	return out
}

// HasAnnotation reports whether the class carries the annotation type.
func (c *ClassInfo) HasAnnotation(annotation string) bool {
	for _, a := range c.Annotations {
		if a.Type == annotation {
			return true
		}
	}
	return false
}
