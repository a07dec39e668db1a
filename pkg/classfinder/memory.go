package classfinder

import "sync"

// MemoryFinder is an in-memory class registry. Classes are reported by
// Annotated in the order they were added.
type MemoryFinder struct {
	mu      sync.RWMutex
	classes map[string]*ClassInfo
	order   []string
}

// NewMemoryFinder creates a finder holding the given classes.
func NewMemoryFinder(classes ...*ClassInfo) *MemoryFinder {
	f := &MemoryFinder{classes: make(map[string]*ClassInfo)}
	for _, c := range classes {
		f.Add(c)
	}
	return f
}

// Add registers a class, replacing any class with the same name.
// Repeatable-annotation containers are flattened on the way in.
func (f *MemoryFinder) Add(c *ClassInfo) {
	if c == nil || c.Name == "" {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	cp := *c
	cp.Annotations = Flatten(c.Annotations)
	if _, exists := f.classes[c.Name]; !exists {
		f.order = append(f.order, c.Name)
	}
	f.classes[c.Name] = &cp
}

// Lookup implements ClassFinder.
func (f *MemoryFinder) Lookup(name string) (*ClassInfo, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	c, ok := f.classes[name]
	if !ok {
		return nil, NotFound(name)
	}
	return c, nil
}

// Annotated implements ClassFinder.
func (f *MemoryFinder) Annotated(annotation string) ([]string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	var out []string
	for _, name := range f.order {
		if f.classes[name].HasAnnotation(annotation) {
			out = append(out, name)
		}
	}
	return out, nil
}

// Names returns every registered class name in insertion order.
func (f *MemoryFinder) Names() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]string(nil), f.order...)
}

// Len returns the number of registered classes.
func (f *MemoryFinder) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.order)
}
