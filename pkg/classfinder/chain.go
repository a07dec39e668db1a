package classfinder

import (
	"errors"

	"github.com/simonhull/wren/pkg/ordered"
)

// ChainFinder consults finders in order. The first finder that knows a class
// answers for it.
type ChainFinder struct {
	finders []ClassFinder
}

// Chain combines finders. Nil entries are ignored.
func Chain(finders ...ClassFinder) *ChainFinder {
	c := &ChainFinder{}
	for _, f := range finders {
		if f != nil {
			c.finders = append(c.finders, f)
		}
	}
	return c
}

// Lookup implements ClassFinder. A finder failing with anything other than
// ErrClassNotFound does not hide later finders; its error is returned only
// when no finder has the class.
func (c *ChainFinder) Lookup(name string) (*ClassInfo, error) {
	var firstErr error
	for _, f := range c.finders {
		info, err := f.Lookup(name)
		if err == nil {
			return info, nil
		}
		if !errors.Is(err, ErrClassNotFound) && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return nil, NotFound(name)
}

// Annotated implements ClassFinder, merging results in finder order.
func (c *ChainFinder) Annotated(annotation string) ([]string, error) {
	var names ordered.Set[string]
	for _, f := range c.finders {
		found, err := f.Annotated(annotation)
		if err != nil {
			return nil, err
		}
		for _, n := range found {
			names.Add(n)
		}
	}
	return names.Items(), nil
}
