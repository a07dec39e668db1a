// Package classfile reads the parts of JVM class files the resolver needs:
// the class hierarchy, annotations, member descriptors and signatures, and
// the classes referenced from method bodies.
//
// Only structure is decoded. Bytecode is scanned for constant pool operands
// but never verified or interpreted.
package classfile

import (
	"errors"
	"fmt"
	"io"

	"github.com/simonhull/wren/pkg/classfinder"
	"github.com/simonhull/wren/pkg/ordered"
	"github.com/simonhull/wren/pkg/signature"
)

var (
	// ErrBadMagic means the input is not a class file.
	ErrBadMagic = errors.New("not a class file")
	// ErrTruncated means the input ended inside a structure.
	ErrTruncated = errors.New("truncated class file")
	// ErrBadConstant means the constant pool holds an unknown entry.
	ErrBadConstant = errors.New("bad constant pool entry")
)

const magic = 0xCAFEBABE

// Attribute names.
const (
	attrCode                 = "Code"
	attrSignature            = "Signature"
	attrVisibleAnnotations   = "RuntimeVisibleAnnotations"
	attrInvisibleAnnotations = "RuntimeInvisibleAnnotations"
	attrBootstrapMethods     = "BootstrapMethods"
)

// File is a decoded class file.
type File struct {
	MinorVersion uint16
	MajorVersion uint16
	AccessFlags  uint16
	ThisClass    string // internal form, e.g. com/example/View
	SuperClass   string
	Interfaces   []string
	Signature    string
	Annotations  []classfinder.Annotation
	Fields       []Member
	Methods      []Member

	pool       pool
	bootstraps [][]uint16
}

// Member is a field or method.
type Member struct {
	AccessFlags uint16
	Name        string
	Descriptor  string
	Signature   string
	Annotations []classfinder.Annotation
	// References are the class names and descriptors named by the method
	// body, in order of first appearance. Always empty for fields.
	References []string

	code       []byte
	catchTypes []uint16
}

// Parse decodes a class file.
func Parse(data []byte) (*File, error) {
	r := &reader{buf: data}
	if r.u4() != magic {
		if r.err != nil {
			return nil, r.err
		}
		return nil, ErrBadMagic
	}

	f := &File{
		MinorVersion: r.u2(),
		MajorVersion: r.u2(),
	}

	p, err := readPool(r)
	if err != nil {
		return nil, fmt.Errorf("reading constant pool: %w", err)
	}
	f.pool = p

	f.AccessFlags = r.u2()
	f.ThisClass = p.className(r.u2())
	f.SuperClass = p.className(r.u2())
	n := int(r.u2())
	for i := 0; i < n && r.err == nil; i++ {
		if name := p.className(r.u2()); name != "" {
			f.Interfaces = append(f.Interfaces, name)
		}
	}

	if f.Fields, err = f.readMembers(r, false); err != nil {
		return nil, fmt.Errorf("reading fields: %w", err)
	}
	if f.Methods, err = f.readMembers(r, true); err != nil {
		return nil, fmt.Errorf("reading methods: %w", err)
	}

	n = int(r.u2())
	for i := 0; i < n && r.err == nil; i++ {
		name, body := readAttribute(r, p)
		switch name {
		case attrSignature:
			f.Signature = signatureAttr(body, p)
		case attrVisibleAnnotations, attrInvisibleAnnotations:
			anns, err := readAnnotations(body, p)
			if err != nil {
				return nil, fmt.Errorf("reading class annotations: %w", err)
			}
			f.Annotations = append(f.Annotations, anns...)
		case attrBootstrapMethods:
			f.bootstraps = readBootstraps(body)
		}
	}
	if r.err != nil {
		return nil, r.err
	}
	if f.ThisClass == "" {
		return nil, fmt.Errorf("%w: missing this_class", ErrBadConstant)
	}

	for i := range f.Methods {
		m := &f.Methods[i]
		m.References = f.scanCode(m.code, m.catchTypes)
	}

	return f, nil
}

// ReadFrom decodes a class file from a reader.
func ReadFrom(rd io.Reader) (*File, error) {
	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func (f *File) readMembers(r *reader, methods bool) ([]Member, error) {
	count := int(r.u2())
	members := make([]Member, 0, count)
	for i := 0; i < count && r.err == nil; i++ {
		m := Member{
			AccessFlags: r.u2(),
			Name:        f.pool.utf8(r.u2()),
			Descriptor:  f.pool.utf8(r.u2()),
		}
		attrs := int(r.u2())
		for j := 0; j < attrs && r.err == nil; j++ {
			name, body := readAttribute(r, f.pool)
			switch name {
			case attrSignature:
				m.Signature = signatureAttr(body, f.pool)
			case attrVisibleAnnotations, attrInvisibleAnnotations:
				anns, err := readAnnotations(body, f.pool)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", m.Name, err)
				}
				m.Annotations = append(m.Annotations, anns...)
			case attrCode:
				if methods {
					m.code, m.catchTypes = readCode(body)
				}
			}
		}
		members = append(members, m)
	}
	return members, r.err
}

func readAttribute(r *reader, p pool) (string, []byte) {
	name := p.utf8(r.u2())
	length := int(r.u4())
	return name, r.bytes(length)
}

func signatureAttr(body []byte, p pool) string {
	br := &reader{buf: body}
	return p.utf8(br.u2())
}

// readCode extracts the bytecode and exception handler catch types from a
// Code attribute. Malformed attributes yield whatever was read.
func readCode(body []byte) ([]byte, []uint16) {
	r := &reader{buf: body}
	r.skip(4) // max_stack, max_locals
	code := r.bytes(int(r.u4()))
	n := int(r.u2())
	var catches []uint16
	for i := 0; i < n && r.err == nil; i++ {
		r.skip(6) // start_pc, end_pc, handler_pc
		if t := r.u2(); t != 0 {
			catches = append(catches, t)
		}
	}
	return code, catches
}

func readBootstraps(body []byte) [][]uint16 {
	r := &reader{buf: body}
	n := int(r.u2())
	out := make([][]uint16, 0, n)
	for i := 0; i < n && r.err == nil; i++ {
		handle := r.u2()
		argc := int(r.u2())
		args := []uint16{handle}
		for j := 0; j < argc && r.err == nil; j++ {
			args = append(args, r.u2())
		}
		out = append(out, args)
	}
	return out
}

// ClassInfo converts the file to the resolver's class model. Names become
// dotted and repeatable-annotation containers are flattened.
func (f *File) ClassInfo() *classfinder.ClassInfo {
	info := &classfinder.ClassInfo{
		Name:        signature.ClassName(f.ThisClass),
		Super:       signature.ClassName(f.SuperClass),
		Signature:   f.Signature,
		Annotations: classfinder.Flatten(f.Annotations),
	}
	for _, iface := range f.Interfaces {
		info.Interfaces = append(info.Interfaces, signature.ClassName(iface))
	}
	for _, fd := range f.Fields {
		info.Fields = append(info.Fields, classfinder.Field{
			Name:       fd.Name,
			Descriptor: fd.Descriptor,
			Signature:  fd.Signature,
		})
	}
	for _, m := range f.Methods {
		info.Methods = append(info.Methods, classfinder.Method{
			Name:       m.Name,
			Descriptor: m.Descriptor,
			Signature:  m.Signature,
			References: m.References,
		})
	}
	return info
}

// collect gathers references in first-seen order.
type collect struct {
	set ordered.Set[string]
}

func (c *collect) add(vals ...string) {
	for _, v := range vals {
		if v != "" {
			c.set.Add(v)
		}
	}
}

func (c *collect) items() []string {
	if c.set.Len() == 0 {
		return nil
	}
	return c.set.Items()
}
