package classfinder

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const npmPackage = "com.vaadin.flow.component.dependency.NpmPackage"

func TestMemoryFinder_LookupAndAnnotated(t *testing.T) {
	f := NewMemoryFinder(
		&ClassInfo{Name: "com.example.B", Annotations: []Annotation{{Type: npmPackage}}},
		&ClassInfo{Name: "com.example.A"},
		&ClassInfo{Name: "com.example.C", Annotations: []Annotation{{Type: npmPackage}}},
	)

	info, err := f.Lookup("com.example.A")
	require.NoError(t, err)
	assert.Equal(t, "com.example.A", info.Name)

	_, err = f.Lookup("com.example.Missing")
	assert.True(t, errors.Is(err, ErrClassNotFound))

	names, err := f.Annotated(npmPackage)
	require.NoError(t, err)
	assert.Equal(t, []string{"com.example.B", "com.example.C"}, names)
	assert.Equal(t, 3, f.Len())
}

func TestMemoryFinder_FlattensContainers(t *testing.T) {
	f := NewMemoryFinder(&ClassInfo{
		Name: "com.example.Multi",
		Annotations: []Annotation{{
			Type: npmPackage + "$Container",
			Values: map[string]any{"value": []any{
				Annotation{Type: npmPackage, Values: map[string]any{"value": "@a/one", "version": "1.0.0"}},
				Annotation{Type: npmPackage, Values: map[string]any{"value": "@a/two", "version": "2.0.0"}},
			}},
		}},
	})

	info, err := f.Lookup("com.example.Multi")
	require.NoError(t, err)
	pkgs := info.AnnotationsOf(npmPackage)
	require.Len(t, pkgs, 2)

	name, ok := pkgs[1].String("value")
	assert.True(t, ok)
	assert.Equal(t, "@a/two", name)
}

func TestAnnotation_Values(t *testing.T) {
	a := Annotation{Type: "x.Theme", Values: map[string]any{
		"value":   "Lcom/example/MyTheme;",
		"variant": "dark",
		"list":    []any{"./a.js", "./b.js"},
		"single":  []any{"./only.js"},
		"flag":    true,
	}}

	theme, ok := a.Class("value")
	assert.True(t, ok)
	assert.Equal(t, "com.example.MyTheme", theme)

	variant, ok := a.String("variant")
	assert.True(t, ok)
	assert.Equal(t, "dark", variant)

	_, ok = a.String("list")
	assert.False(t, ok)
	assert.Equal(t, []string{"./a.js", "./b.js"}, a.Strings("list"))

	only, ok := a.String("single")
	assert.True(t, ok)
	assert.Equal(t, "./only.js", only)

	flag, ok := a.String("flag")
	assert.True(t, ok)
	assert.Equal(t, "true", flag)

	_, ok = a.String("absent")
	assert.False(t, ok)
	assert.Nil(t, a.Strings("absent"))
}

func TestShortName(t *testing.T) {
	assert.Equal(t, "NpmPackage", ShortName(npmPackage))
	assert.Equal(t, "Container", ShortName(npmPackage+"$Container"))
	assert.Equal(t, "Route", ShortName("Route"))
}

func TestParseCatalog(t *testing.T) {
	data := []byte(`
classes:
  - name: com/example/MainView
    super: com.example.BaseView
    annotations:
      - type: com.vaadin.flow.router.Route
        values:
          value: ""
          layout: com.example.MainLayout
      - type: com.vaadin.flow.component.dependency.NpmPackage
        values:
          value: "@pkg/one"
          version: "1.1.1"
    fields:
      - name: grid
        descriptor: Lcom/example/Grid;
    methods:
      - name: <init>
        descriptor: ()V
        references: [com.example.Greeting]
  - name: com.example.MainLayout
`)

	f, err := ParseCatalog(data)
	require.NoError(t, err)

	view, err := f.Lookup("com.example.MainView")
	require.NoError(t, err)
	assert.Equal(t, "com.example.BaseView", view.Super)
	require.Len(t, view.Annotations, 2)
	require.Len(t, view.Fields, 1)
	require.Len(t, view.Methods, 1)
	assert.Equal(t, []string{"com.example.Greeting"}, view.Methods[0].References)

	layout, ok := view.Annotations[0].Class("layout")
	assert.True(t, ok)
	assert.Equal(t, "com.example.MainLayout", layout)

	version, _ := view.Annotations[1].String("version")
	assert.Equal(t, "1.1.1", version)

	names, err := f.Annotated(npmPackage)
	require.NoError(t, err)
	assert.Equal(t, []string{"com.example.MainView"}, names)
}

func TestParseCatalog_InvalidName(t *testing.T) {
	_, err := ParseCatalog([]byte("classes:\n  - name: \"not a class\"\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid name")
}

const jsModule = "com.vaadin.flow.component.dependency.JsModule"

func TestParseCatalog_FlattensContainers(t *testing.T) {
	f, err := ParseCatalog([]byte(`
classes:
  - name: com.example.Chart
    annotations:
      - type: com.vaadin.flow.component.dependency.JsModule$Container
        values:
          value:
            - type: com.vaadin.flow.component.dependency.JsModule
              values: {value: ./a.js}
            - type: com.vaadin.flow.component.dependency.JsModule
              values: {value: ./b.js}
  - name: com.example.Tagged
    annotations:
      - type: com.example.Tags
        values:
          value:
            - {name: first}
`))
	require.NoError(t, err)

	names, err := f.Annotated(jsModule)
	require.NoError(t, err)
	assert.Equal(t, []string{"com.example.Chart"}, names)

	info, err := f.Lookup("com.example.Chart")
	require.NoError(t, err)
	modules := info.AnnotationsOf(jsModule)
	require.Len(t, modules, 2)
	first, _ := modules[0].String("value")
	second, _ := modules[1].String("value")
	assert.Equal(t, "./a.js", first)
	assert.Equal(t, "./b.js", second)

	tagged, err := f.Lookup("com.example.Tagged")
	require.NoError(t, err)
	require.Len(t, tagged.Annotations, 1, "lists of plain mappings are not containers")
	assert.Equal(t, "com.example.Tags", tagged.Annotations[0].Type)
}

func TestMarshalCatalog_KeepsContainerContents(t *testing.T) {
	data, err := MarshalCatalog([]*ClassInfo{{
		Name: "com.example.Chart",
		Annotations: []Annotation{{
			Type: jsModule + "$Container",
			Values: map[string]any{"value": []any{
				Annotation{Type: jsModule, Values: map[string]any{"value": "./a.js"}},
				Annotation{Type: jsModule, Values: map[string]any{"value": "./b.js"}},
			}},
		}},
	}})
	require.NoError(t, err)

	f, err := ParseCatalog(data)
	require.NoError(t, err)
	info, err := f.Lookup("com.example.Chart")
	require.NoError(t, err)
	assert.Len(t, info.AnnotationsOf(jsModule), 2)
}

func TestLoadCatalog_LaterFilesOverride(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.yaml")
	second := filepath.Join(dir, "b.yaml")
	require.NoError(t, os.WriteFile(first, []byte("classes:\n  - name: com.example.A\n    super: com.example.Old\n"), 0644))
	require.NoError(t, os.WriteFile(second, []byte("classes:\n  - name: com.example.A\n    super: com.example.New\n"), 0644))

	f, err := LoadCatalog(first, second)
	require.NoError(t, err)

	info, err := f.Lookup("com.example.A")
	require.NoError(t, err)
	assert.Equal(t, "com.example.New", info.Super)
	assert.Equal(t, 1, f.Len())
}

func TestLoadCatalog_MissingFile(t *testing.T) {
	_, err := LoadCatalog(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestMarshalCatalog_RoundTrip(t *testing.T) {
	data, err := MarshalCatalog([]*ClassInfo{{Name: "com.example.A", Super: "com.example.B"}})
	require.NoError(t, err)

	f, err := ParseCatalog(data)
	require.NoError(t, err)
	info, err := f.Lookup("com.example.A")
	require.NoError(t, err)
	assert.Equal(t, "com.example.B", info.Super)
}

type failingFinder struct{ err error }

func (f failingFinder) Lookup(string) (*ClassInfo, error)  { return nil, f.err }
func (f failingFinder) Annotated(string) ([]string, error) { return nil, nil }

func TestChain(t *testing.T) {
	first := NewMemoryFinder(&ClassInfo{Name: "com.example.A", Super: "first"},
		&ClassInfo{Name: "com.example.X", Annotations: []Annotation{{Type: npmPackage}}})
	second := NewMemoryFinder(&ClassInfo{Name: "com.example.A", Super: "second"},
		&ClassInfo{Name: "com.example.B", Annotations: []Annotation{{Type: npmPackage}}},
		&ClassInfo{Name: "com.example.X", Annotations: []Annotation{{Type: npmPackage}}})

	chain := Chain(nil, first, second)

	a, err := chain.Lookup("com.example.A")
	require.NoError(t, err)
	assert.Equal(t, "first", a.Super)

	_, err = chain.Lookup("com.example.B")
	require.NoError(t, err)

	_, err = chain.Lookup("com.example.Z")
	assert.ErrorIs(t, err, ErrClassNotFound)

	names, err := chain.Annotated(npmPackage)
	require.NoError(t, err)
	assert.Equal(t, []string{"com.example.X", "com.example.B"}, names)
}

func TestChain_ReportsRealErrors(t *testing.T) {
	broken := errors.New("corrupt jar")
	chain := Chain(failingFinder{err: broken}, NewMemoryFinder())

	_, err := chain.Lookup("com.example.A")
	assert.ErrorIs(t, err, broken)

	chain = Chain(failingFinder{err: broken}, NewMemoryFinder(&ClassInfo{Name: "com.example.A"}))
	_, err = chain.Lookup("com.example.A")
	assert.NoError(t, err)
}
