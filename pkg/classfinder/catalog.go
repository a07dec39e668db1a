package classfinder

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/simonhull/wren/pkg/signature"
)

// Catalog is the on-disk YAML form of a class registry.
//
//	classes:
//	  - name: com.example.MainView
//	    super: com.vaadin.flow.component.html.Div
//	    annotations:
//	      - type: com.vaadin.flow.router.Route
//	        values: {value: "", layout: com.example.MainLayout}
//	      - type: com.vaadin.flow.component.dependency.JsModule
//	        values: {value: ./main-view.js}
//	    methods:
//	      - name: <init>
//	        descriptor: ()V
//	        references: [com.example.Greeting]
type Catalog struct {
	Classes []ClassInfo `yaml:"classes"`
}

// CatalogFinder serves classes from one or more YAML catalogs.
type CatalogFinder struct {
	*MemoryFinder
}

// LoadCatalog reads catalogs from the given paths. Later catalogs replace
// classes of the same name from earlier ones.
func LoadCatalog(paths ...string) (*CatalogFinder, error) {
	f := &CatalogFinder{MemoryFinder: NewMemoryFinder()}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading catalog %s: %w", path, err)
		}
		if err := f.load(data); err != nil {
			return nil, fmt.Errorf("parsing catalog %s: %w", path, err)
		}
	}
	return f, nil
}

// ParseCatalog builds a finder from catalog bytes.
func ParseCatalog(data []byte) (*CatalogFinder, error) {
	f := &CatalogFinder{MemoryFinder: NewMemoryFinder()}
	if err := f.load(data); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	return f, nil
}

func (f *CatalogFinder) load(data []byte) error {
	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return err
	}
	for i := range cat.Classes {
		c := cat.Classes[i]
		name := signature.ClassName(c.Name)
		if name == "" {
			return fmt.Errorf("class #%d: invalid name %q", i+1, c.Name)
		}
		c.Name = name
		c.Super = signature.ClassName(c.Super)
		for j, iface := range c.Interfaces {
			c.Interfaces[j] = signature.ClassName(iface)
		}
		f.Add(&c)
	}
	return nil
}

// MarshalCatalog renders classes in catalog form.
func MarshalCatalog(classes []*ClassInfo) ([]byte, error) {
	cat := Catalog{Classes: make([]ClassInfo, 0, len(classes))}
	for _, c := range classes {
		cat.Classes = append(cat.Classes, *c)
	}
	return yaml.Marshal(cat)
}
