package frontend

import (
	"github.com/simonhull/wren/pkg/classfinder"
)

const pkg = "com.example.app."

var names = DefaultAnnotations()

type classOpt func(*classfinder.ClassInfo)

func class(name string, opts ...classOpt) *classfinder.ClassInfo {
	c := &classfinder.ClassInfo{Name: pkg + name, Super: "java.lang.Object"}
	for _, o := range opts {
		o(c)
	}
	return c
}

func annotated(typ string, values map[string]any) classOpt {
	return func(c *classfinder.ClassInfo) {
		c.Annotations = append(c.Annotations, classfinder.Annotation{Type: typ, Values: values})
	}
}

func npm(name, version string) classOpt {
	return annotated(names.NpmPackage, map[string]any{"value": name, "version": version})
}

func jsModule(v string) classOpt   { return annotated(names.JsModule, map[string]any{"value": v}) }
func htmlImport(v string) classOpt { return annotated(names.HtmlImport, map[string]any{"value": v}) }
func script(v string) classOpt     { return annotated(names.JavaScript, map[string]any{"value": v}) }
func noTheme() classOpt            { return annotated(names.NoTheme, nil) }

func theme(name, variant string) classOpt {
	values := map[string]any{"value": pkg + name}
	if variant != "" {
		values["variant"] = variant
	}
	return annotated(names.Theme, values)
}

func route(path, layout string) classOpt {
	values := map[string]any{"value": path}
	if layout != "" {
		values["layout"] = pkg + layout
	}
	return annotated(names.Route, values)
}

func parentLayout(layout string) classOpt {
	return annotated(names.ParentLayout, map[string]any{"value": pkg + layout})
}

func extends(super string) classOpt {
	return func(c *classfinder.ClassInfo) { c.Super = pkg + super }
}

func field(name, typ string) classOpt {
	return func(c *classfinder.ClassInfo) {
		c.Fields = append(c.Fields, classfinder.Field{
			Name:       name,
			Descriptor: "L" + slashed(pkg+typ) + ";",
		})
	}
}

// creates adds a method whose body instantiates or calls into the given
// classes.
func creates(types ...string) classOpt {
	return func(c *classfinder.ClassInfo) {
		refs := make([]string, 0, len(types))
		for _, t := range types {
			refs = append(refs, slashed(pkg+t))
		}
		c.Methods = append(c.Methods, classfinder.Method{
			Name:       "init",
			Descriptor: "()V",
			References: refs,
		})
	}
}

func slashed(name string) string {
	out := []byte(name)
	for i, b := range out {
		if b == '.' {
			out[i] = '/'
		}
	}
	return string(out)
}

// components mirrors a small application: themed and unthemed views,
// layouts, themes and components created through factories.
func components() *classfinder.MemoryFinder {
	return classfinder.NewMemoryFinder(
		// packages
		class("Component0",
			npm("@vaadin/component-0", "=2.1.0"),
			field("child", "Component0Child"),
		),
		class("Component0Child", npm("@vaadin/component-0", "1.0.0")),
		class("Component1", npm("@vaadin/component-1", "1.1.1")),
		class("Component2", npm("@vaadin/component-2", "222.222.222")),

		// themes
		class("Theme0", script("frontend://theme-0.js")),
		class("Theme1", extends("Theme0"), jsModule("./theme-1.js")),
		class("Theme2", extends("Theme0"), jsModule("./theme-2.js")),
		class("Theme4", extends("Theme0"), jsModule("./theme-4.js")),
		class("ThemeDefault", jsModule("./theme-default.js")),

		// views
		class("RootViewWithTheme", route("", ""), theme("Theme4", "")),
		class("RootViewWithoutTheme", route("", ""), noTheme(),
			jsModule("./no-theme-1.js"), jsModule("./no-theme-2.js"), script("frontend://no-theme.js")),
		class("MainLayout", theme("Theme1", "dark"), htmlImport("frontend://bower_components/layout.html")),
		class("RootViewWithLayoutTheme", route("home", "MainLayout"), jsModule("./home.js")),
		class("RootViewWithMultipleTheme", route("multi", "MainLayout"), theme("Theme2", "foo")),
		class("FirstView", route("first", "MainLayout"), npm("@vaadin/first", "1.0.0")),
		class("SecondView", jsModule("./second.js"), htmlImport("frontend://bower_components/second.html")),
		class("OtherThemeView", route("other", ""), theme("Theme2", "")),

		// factories
		class("ThirdView", route("third", ""), creates("MyComponent", "MyStaticFactory")),
		class("MyComponent", jsModule("./my-component.js")),
		class("MyStaticFactory", jsModule("./my-static-factory.js"), creates("AnotherComponent")),
		class("AnotherComponent", jsModule("./my-another-component.js")),

		class("Leaf"),
	)
}

func roots(simple ...string) []string {
	out := make([]string, len(simple))
	for i, s := range simple {
		out[i] = pkg + s
	}
	return out
}
