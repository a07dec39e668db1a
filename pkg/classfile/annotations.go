package classfile

import (
	"fmt"

	"github.com/simonhull/wren/pkg/classfinder"
	"github.com/simonhull/wren/pkg/signature"
)

// maxAnnotationDepth bounds nested annotation values.
const maxAnnotationDepth = 32

func readAnnotations(body []byte, p pool) ([]classfinder.Annotation, error) {
	r := &reader{buf: body}
	n := int(r.u2())
	out := make([]classfinder.Annotation, 0, n)
	for i := 0; i < n && r.err == nil; i++ {
		a, err := readAnnotation(r, p, 0)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, r.err
}

func readAnnotation(r *reader, p pool, depth int) (classfinder.Annotation, error) {
	if depth > maxAnnotationDepth {
		return classfinder.Annotation{}, fmt.Errorf("%w: annotation nesting deeper than %d", ErrBadConstant, maxAnnotationDepth)
	}
	a := classfinder.Annotation{Type: signature.ClassName(p.utf8(r.u2()))}
	pairs := int(r.u2())
	if pairs > 0 {
		a.Values = make(map[string]any, pairs)
	}
	for i := 0; i < pairs && r.err == nil; i++ {
		name := p.utf8(r.u2())
		v, err := readElement(r, p, depth)
		if err != nil {
			return a, err
		}
		a.Values[name] = v
	}
	return a, r.err
}

func readElement(r *reader, p pool, depth int) (any, error) {
	tag := r.u1()
	switch tag {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z', 's':
		return p.value(r.u2(), tag), r.err
	case 'e':
		r.u2() // enum type
		return p.utf8(r.u2()), r.err
	case 'c':
		return signature.ClassName(p.utf8(r.u2())), r.err
	case '@':
		return readAnnotation(r, p, depth+1)
	case '[':
		n := int(r.u2())
		list := make([]any, 0, n)
		for i := 0; i < n && r.err == nil; i++ {
			v, err := readElement(r, p, depth+1)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		return list, r.err
	default:
		if r.err != nil {
			return nil, r.err
		}
		return nil, fmt.Errorf("%w: unknown element tag %q", ErrBadConstant, tag)
	}
}
