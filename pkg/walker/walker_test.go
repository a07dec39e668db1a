package walker

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonhull/wren/pkg/classfinder"
	"github.com/simonhull/wren/pkg/logger"
)

const route = "com.vaadin.flow.router.Route"

// countingFinder records how often each class is looked up.
type countingFinder struct {
	classfinder.ClassFinder
	lookups map[string]int
}

func (c *countingFinder) Lookup(name string) (*classfinder.ClassInfo, error) {
	c.lookups[name]++
	return c.ClassFinder.Lookup(name)
}

func fixture() *countingFinder {
	mem := classfinder.NewMemoryFinder(
		&classfinder.ClassInfo{
			Name:       "com.example.View",
			Super:      "com.example.Base",
			Interfaces: []string{"com.example.HasUrl"},
			Annotations: []classfinder.Annotation{{
				Type:   route,
				Values: map[string]any{"value": "", "layout": "com.example.Layout"},
			}},
			Fields: []classfinder.Field{{Name: "grid", Descriptor: "Lcom/example/Grid;"}},
			Methods: []classfinder.Method{{
				Name:       "onEvent",
				Descriptor: "(Lcom/example/Event;)V",
				References: []string{"com/example/Factory", "()Lcom/example/Card;", "java/lang/String"},
			}},
		},
		&classfinder.ClassInfo{Name: "com.example.Base", Super: "java.lang.Object"},
		&classfinder.ClassInfo{Name: "com.example.HasUrl"},
		&classfinder.ClassInfo{Name: "com.example.Layout", Super: "com.example.Base"},
		&classfinder.ClassInfo{
			Name: "com.example.Grid",
			Methods: []classfinder.Method{{
				Name:       "owner",
				Descriptor: "()Lcom/example/View;",
			}},
		},
		&classfinder.ClassInfo{Name: "com.example.Factory"},
		&classfinder.ClassInfo{Name: "com.example.Card"},
	)
	return &countingFinder{ClassFinder: mem, lookups: map[string]int{}}
}

func newWalker(f classfinder.ClassFinder) *Walker {
	return New(f, Options{
		ClassElements: map[string][]string{route: {"layout"}},
		Logger:        logger.NewSilentLogger(),
	})
}

func TestWalk_BreadthFirstOrder(t *testing.T) {
	w := newWalker(fixture())

	v := w.Walk("com.example.View")
	assert.Equal(t, []string{
		"com.example.View",
		"com.example.Base",
		"com.example.HasUrl",
		"com.example.Layout",
		"com.example.Grid",
		"com.example.Factory",
		"com.example.Card",
	}, v.Names())
	assert.Equal(t, []string{"com.example.Event"}, v.Missing)
	assert.Equal(t, "com.example.View: 7 classes, 1 missing", v.String())
}

func TestWalk_WithoutClassElements(t *testing.T) {
	w := New(fixture(), Options{Logger: logger.NewSilentLogger()})

	v := w.Walk("com.example.View")
	assert.NotContains(t, v.Names(), "com.example.Layout")
}

func TestWalk_StableAcrossRuns(t *testing.T) {
	first := newWalker(fixture()).Walk("com.example.View").Names()
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, newWalker(fixture()).Walk("com.example.View").Names())
	}
}

func TestWalk_LooksUpEachClassOnce(t *testing.T) {
	f := fixture()
	w := newWalker(f)

	w.Walk("com.example.View")
	w.Walk("com.example.Grid")
	w.Walk("com.example.Layout")

	for name, n := range f.lookups {
		assert.Equal(t, 1, n, "%s looked up %d times", name, n)
	}
	assert.Equal(t, 8, w.Analysed())
}

func TestWalk_EachRootGetsItsOwnClosure(t *testing.T) {
	w := newWalker(fixture())
	w.Walk("com.example.View")

	v := w.Walk("com.example.Layout")
	assert.Equal(t, []string{"com.example.Layout", "com.example.Base"}, v.Names())
	assert.Empty(t, v.Missing)
}

func TestWalk_Cycle(t *testing.T) {
	w := newWalker(fixture())

	v := w.Walk("com.example.Grid")
	assert.Equal(t, "com.example.Grid", v.Names()[0])
	assert.Contains(t, v.Names(), "com.example.View")
}

func TestWalk_Roots(t *testing.T) {
	w := newWalker(fixture())

	t.Run("slash path root", func(t *testing.T) {
		v := w.Walk("com/example/Card")
		assert.Equal(t, "com.example.Card", v.Root)
		assert.Equal(t, []string{"com.example.Card"}, v.Names())
	})

	t.Run("missing root", func(t *testing.T) {
		v := w.Walk("com.example.Nope")
		assert.Empty(t, v.Classes)
		assert.Equal(t, []string{"com.example.Nope"}, v.Missing)
	})

	t.Run("skipped root", func(t *testing.T) {
		v := w.Walk("java.lang.String")
		assert.Empty(t, v.Classes)
		assert.Empty(t, v.Missing)
	})

	t.Run("empty root", func(t *testing.T) {
		v := w.Walk("")
		assert.Empty(t, v.Classes)
	})
}

type brokenFinder struct{}

func (brokenFinder) Lookup(name string) (*classfinder.ClassInfo, error) {
	return nil, errors.New("disk on fire")
}

func (brokenFinder) Annotated(string) ([]string, error) { return nil, nil }

func TestWalk_LookupErrorsAreRecorded(t *testing.T) {
	w := New(brokenFinder{}, Options{Logger: logger.NewSilentLogger()})

	v := w.Walk("com.example.View")
	assert.Empty(t, v.Classes)
	assert.Equal(t, []string{"com.example.View"}, v.Missing)
}

func TestSkipped(t *testing.T) {
	w := New(fixture(), Options{SkipPrefixes: []string{"com.example.internal."}})

	assert.True(t, w.Skipped(""))
	assert.True(t, w.Skipped("com.example.internal.Helper"))
	assert.False(t, w.Skipped("java.lang.String"), "custom prefixes replace the defaults")

	def := New(fixture(), Options{})
	assert.True(t, def.Skipped("java.util.List"))
	assert.True(t, def.Skipped("kotlin.jvm.functions.Function1"))
	assert.False(t, def.Skipped("com.example.View"))
}

func TestReferences(t *testing.T) {
	info := &classfinder.ClassInfo{
		Name:       "com.example.Page",
		Super:      "com.example.Base",
		Interfaces: []string{"com.example.A", "com.example.Base"},
		Signature:  "Lcom/example/Base<Lcom/example/Model;>;Lcom/example/A;",
		Annotations: []classfinder.Annotation{
			{Type: "com.example.Uses", Values: map[string]any{"value": []any{"com.example.Dep"}}},
			{Type: "com.example.Label", Values: map[string]any{"value": "not a class"}},
		},
		Fields: []classfinder.Field{
			{Name: "items", Descriptor: "Ljava/util/List;", Signature: "Ljava/util/List<Lcom/example/Item;>;"},
			{Name: "self", Descriptor: "Lcom/example/Page;"},
		},
		Methods: []classfinder.Method{
			{Name: "render", Descriptor: "([Lcom/example/Cell;I)Lcom/example/Out;", References: []string{"com/example/Late"}},
			{Name: "empty", Descriptor: "()V"},
		},
	}

	refs := References(info, map[string][]string{"com.example.Uses": {"value"}})
	assert.Equal(t, []string{
		"com.example.Base",
		"com.example.A",
		"com.example.Model",
		"com.example.Dep",
		"java.util.List",
		"com.example.Item",
		"com.example.Cell",
		"com.example.Out",
		"com.example.Late",
	}, refs)

	assert.Nil(t, References(&classfinder.ClassInfo{Name: "com.example.Leaf"}, nil))
}

func TestGraph(t *testing.T) {
	w := newWalker(fixture())
	w.Walk("com.example.View")

	g, err := w.Graph()
	require.NoError(t, err)

	order, err := g.Order()
	require.NoError(t, err)
	assert.Equal(t, 8, order)

	adj, err := g.AdjacencyMap()
	require.NoError(t, err)
	assert.Contains(t, adj["com.example.View"], "com.example.Layout")
	assert.Contains(t, adj["com.example.Grid"], "com.example.View")
	assert.NotContains(t, adj["com.example.Base"], "java.lang.Object")

	_, props, err := g.VertexWithProperties("com.example.Event")
	require.NoError(t, err)
	assert.Equal(t, "dashed", props.Attributes["style"])
}

func TestWriteDOT(t *testing.T) {
	w := newWalker(fixture())
	w.Walk("com.example.View")

	var buf bytes.Buffer
	require.NoError(t, w.WriteDOT(&buf))

	out := buf.String()
	assert.Contains(t, out, "digraph")
	assert.Contains(t, out, `"com.example.View" -> "com.example.Base"`)
	assert.Contains(t, out, "dashed")
}

func TestClass_UsesCache(t *testing.T) {
	f := fixture()
	w := newWalker(f)
	w.Walk("com.example.View")

	info, err := w.Class("com/example/Layout")
	require.NoError(t, err)
	assert.Equal(t, "com.example.Layout", info.Name)
	assert.Equal(t, 1, f.lookups["com.example.Layout"])

	_, err = w.Class("com.example.Event")
	assert.ErrorIs(t, err, classfinder.ErrClassNotFound)
}
