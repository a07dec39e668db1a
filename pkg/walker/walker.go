// Package walker computes the classes reachable from a root class.
//
// A class refers to another through its super type, interfaces, generic
// signature, selected annotation elements, member descriptors and
// signatures, and the classes its method bodies name. Walk visits those
// references breadth-first, in exactly that order, so anything that keeps
// the first value it sees gets the same answer on every run.
package walker

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dominikbraun/graph"
	"github.com/dominikbraun/graph/draw"

	"github.com/simonhull/wren/pkg/classfinder"
	"github.com/simonhull/wren/pkg/logger"
	"github.com/simonhull/wren/pkg/ordered"
	"github.com/simonhull/wren/pkg/signature"
)

// DefaultSkipPrefixes name platform and library packages that never carry
// frontend dependencies. Classes under them are not looked up.
var DefaultSkipPrefixes = []string{
	"java.", "javax.", "jakarta.", "sun.", "jdk.", "com.sun.", "oracle.",
	"elemental.", "org.slf4j.", "org.apache.", "org.jsoup.", "org.atmosphere.",
	"com.fasterxml.", "kotlin.",
}

// Options configures a Walker.
type Options struct {
	// SkipPrefixes replaces DefaultSkipPrefixes when non-nil.
	SkipPrefixes []string

	// ClassElements lists, per annotation type, the elements whose values
	// are classes to follow (for example a route's layout).
	ClassElements map[string][]string

	Logger logger.Logger
}

// Visit is the result of walking one root.
type Visit struct {
	Root string
	// Classes reachable from Root, Root first, in breadth-first order.
	Classes []*classfinder.ClassInfo
	// Missing lists referenced classes the finder could not provide, in the
	// order they were reached.
	Missing []string
}

// Names returns the names of the visited classes in visit order.
func (v *Visit) Names() []string {
	out := make([]string, len(v.Classes))
	for i, c := range v.Classes {
		out[i] = c.Name
	}
	return out
}

type node struct {
	info  *classfinder.ClassInfo
	edges []string
	err   error
}

// Walker walks class graphs through a ClassFinder. Every class is looked up
// and analysed at most once per Walker, however many roots reach it.
// A Walker is not safe for concurrent use.
type Walker struct {
	finder   classfinder.ClassFinder
	skip     []string
	elements map[string][]string
	log      logger.Logger

	nodes map[string]*node
	order []string
}

// New creates a Walker.
func New(finder classfinder.ClassFinder, opts Options) *Walker {
	skip := opts.SkipPrefixes
	if skip == nil {
		skip = DefaultSkipPrefixes
	}
	log := opts.Logger
	if log == nil {
		log = logger.Default()
	}
	return &Walker{
		finder:   finder,
		skip:     skip,
		elements: opts.ClassElements,
		log:      log,
		nodes:    make(map[string]*node),
	}
}

// Skipped reports whether name is never looked up.
func (w *Walker) Skipped(name string) bool {
	if name == "" {
		return true
	}
	for _, p := range w.skip {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// Walk returns the classes reachable from root. Missing or unreadable
// classes are recorded in the result and never stop the walk.
func (w *Walker) Walk(root string) *Visit {
	root = signature.ClassName(root)
	v := &Visit{Root: root}
	if w.Skipped(root) {
		return v
	}

	seen := ordered.NewSet(root)
	queue := []string{root}
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]

		n := w.node(name)
		if n.info == nil {
			v.Missing = append(v.Missing, name)
			continue
		}
		v.Classes = append(v.Classes, n.info)

		for _, ref := range n.edges {
			if seen.Add(ref) {
				queue = append(queue, ref)
			}
		}
	}

	w.log.Debug("Walked class graph",
		logger.F("root", root),
		logger.F("classes", len(v.Classes)),
		logger.F("missing", len(v.Missing)))
	return v
}

// Class returns the metadata of a class through the walker's cache, so a
// class is still looked up at most once.
func (w *Walker) Class(name string) (*classfinder.ClassInfo, error) {
	n := w.node(signature.ClassName(name))
	if n.info == nil {
		return nil, n.err
	}
	return n.info, nil
}

// Analysed returns the number of classes looked up so far.
func (w *Walker) Analysed() int {
	return len(w.nodes)
}

// Graph builds the reference graph of every class analysed so far. Classes
// that could not be found carry a dashed style attribute.
func (w *Walker) Graph() (graph.Graph[string, string], error) {
	g := graph.New(graph.StringHash, graph.Directed())
	for _, name := range w.order {
		var opts []func(*graph.VertexProperties)
		if w.nodes[name].info == nil {
			opts = append(opts, graph.VertexAttribute("style", "dashed"))
		}
		if err := g.AddVertex(name, opts...); err != nil {
			return nil, fmt.Errorf("adding %s: %w", name, err)
		}
	}
	for _, name := range w.order {
		for _, ref := range w.nodes[name].edges {
			if _, ok := w.nodes[ref]; !ok {
				continue
			}
			if err := g.AddEdge(name, ref); err != nil {
				return nil, fmt.Errorf("adding edge %s -> %s: %w", name, ref, err)
			}
		}
	}
	return g, nil
}

// WriteDOT writes the reference graph in Graphviz DOT format.
func (w *Walker) WriteDOT(out io.Writer) error {
	g, err := w.Graph()
	if err != nil {
		return err
	}
	return draw.DOT(g, out, draw.GraphAttribute("rankdir", "LR"))
}

// node looks up and analyses a class once.
func (w *Walker) node(name string) *node {
	if n, ok := w.nodes[name]; ok {
		return n
	}

	n := &node{}
	w.nodes[name] = n
	w.order = append(w.order, name)

	info, err := w.finder.Lookup(name)
	switch {
	case errors.Is(err, classfinder.ErrClassNotFound):
		w.log.Debug("Class not found", logger.F("class", name))
		n.err = err
		return n
	case err != nil:
		w.log.Warn("Class lookup failed", logger.F("class", name), logger.F("error", err))
		n.err = err
		return n
	case info == nil:
		n.err = classfinder.NotFound(name)
		return n
	}

	n.info = info
	for _, ref := range References(info, w.elements) {
		if w.Skipped(ref) {
			continue
		}
		n.edges = append(n.edges, ref)
	}
	w.log.Debug("Visited class", logger.F("class", name), logger.F("references", len(n.edges)))
	return n
}

// References lists the classes a class refers to, in walk order: super
// type, interfaces, class signature, class-valued annotation elements,
// fields, method signatures and method bodies. Duplicates and the class
// itself are dropped.
func References(info *classfinder.ClassInfo, classElements map[string][]string) []string {
	refs := ordered.NewSet(info.Name)
	addName := func(s string) {
		if name := signature.ClassName(s); name != "" {
			refs.Add(name)
		}
	}

	addName(info.Super)
	for _, iface := range info.Interfaces {
		addName(iface)
	}
	signature.AddSignatureToClasses(refs, info.Signature)

	for _, a := range info.Annotations {
		for _, name := range a.Classes(classElements[a.Type]...) {
			refs.Add(name)
		}
	}

	for _, f := range info.Fields {
		signature.AddSignatureToClasses(refs, f.Descriptor)
		signature.AddSignatureToClasses(refs, f.Signature)
	}
	for _, m := range info.Methods {
		signature.AddSignatureToClasses(refs, m.Descriptor)
		signature.AddSignatureToClasses(refs, m.Signature)
	}
	for _, m := range info.Methods {
		for _, ref := range m.References {
			signature.AddSignatureToClasses(refs, ref)
		}
	}

	items := refs.Items()[1:]
	if len(items) == 0 {
		return nil
	}
	return items
}

// String describes a visit for logs and debugging.
func (v *Visit) String() string {
	return fmt.Sprintf("%s: %d classes, %d missing", v.Root, len(v.Classes), len(v.Missing))
}
