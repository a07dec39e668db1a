package classfile

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// classBuilder assembles minimal class files for tests.
type classBuilder struct {
	entries [][]byte
	index   map[string]uint16

	this, super uint16
	interfaces  []uint16
	fields      [][]byte
	methods     [][]byte
	attrs       [][]byte
}

func newClassBuilder(name, super string) *classBuilder {
	b := &classBuilder{index: make(map[string]uint16)}
	b.this = b.class(name)
	if super != "" {
		b.super = b.class(super)
	}
	return b
}

func (b *classBuilder) add(key string, entry []byte) uint16 {
	if i, ok := b.index[key]; ok {
		return i
	}
	b.entries = append(b.entries, entry)
	i := uint16(len(b.entries))
	b.index[key] = i
	return i
}

func u2(v uint16) []byte { return []byte{byte(v >> 8), byte(v)} }

func u4(v uint32) []byte {
	out := make([]byte, 4)
	binary.BigEndian.PutUint32(out, v)
	return out
}

func cat(parts ...[]byte) []byte { return bytes.Join(parts, nil) }

func (b *classBuilder) utf8(s string) uint16 {
	return b.add("utf8:"+s, cat([]byte{tagUtf8}, u2(uint16(len(s))), []byte(s)))
}

func (b *classBuilder) class(name string) uint16 {
	n := b.utf8(name)
	return b.add("class:"+name, cat([]byte{tagClass}, u2(n)))
}

func (b *classBuilder) integer(v int32) uint16 {
	return b.add("int:"+string(u4(uint32(v))), cat([]byte{tagInteger}, u4(uint32(v))))
}

func (b *classBuilder) nameAndType(name, desc string) uint16 {
	n, d := b.utf8(name), b.utf8(desc)
	return b.add("nat:"+name+desc, cat([]byte{tagNameAndType}, u2(n), u2(d)))
}

func (b *classBuilder) memberRef(tag uint8, owner, name, desc string) uint16 {
	c, nt := b.class(owner), b.nameAndType(name, desc)
	return b.add(fmt.Sprintf("ref:%d:%s.%s%s", tag, owner, name, desc), cat([]byte{tag}, u2(c), u2(nt)))
}

func (b *classBuilder) methodHandle(kind uint8, ref uint16) uint16 {
	return b.add("mh:"+string(u2(ref)), cat([]byte{tagMethodHandle, kind}, u2(ref)))
}

func (b *classBuilder) methodType(desc string) uint16 {
	d := b.utf8(desc)
	return b.add("mt:"+desc, cat([]byte{tagMethodType}, u2(d)))
}

func (b *classBuilder) indy(bootstrap uint16, name, desc string) uint16 {
	nt := b.nameAndType(name, desc)
	return b.add("indy:"+name+desc, cat([]byte{tagInvokeDynamic}, u2(bootstrap), u2(nt)))
}

func (b *classBuilder) long(v uint64) uint16 {
	payload := make([]byte, 8)
	binary.BigEndian.PutUint64(payload, v)
	i := b.add("long:"+string(payload), cat([]byte{tagLong}, payload))
	// eight-byte constants occupy a second, unusable slot
	b.entries = append(b.entries, nil)
	return i
}

func (b *classBuilder) attribute(name string, body []byte) []byte {
	return cat(u2(b.utf8(name)), u4(uint32(len(body))), body)
}

func (b *classBuilder) implements(name string) {
	b.interfaces = append(b.interfaces, b.class(name))
}

func (b *classBuilder) field(name, desc, sig string) {
	var attrs [][]byte
	if sig != "" {
		attrs = append(attrs, b.attribute(attrSignature, u2(b.utf8(sig))))
	}
	b.fields = append(b.fields, b.member(name, desc, attrs))
}

func (b *classBuilder) method(name, desc string, code []byte, catches ...uint16) {
	var attrs [][]byte
	if code != nil {
		body := cat(u2(4), u2(4), u4(uint32(len(code))), code, u2(uint16(len(catches))))
		for _, c := range catches {
			body = cat(body, u2(0), u2(1), u2(2), u2(c))
		}
		body = cat(body, u2(0))
		attrs = append(attrs, b.attribute(attrCode, body))
	}
	b.methods = append(b.methods, b.member(name, desc, attrs))
}

func (b *classBuilder) member(name, desc string, attrs [][]byte) []byte {
	out := cat(u2(0x0001), u2(b.utf8(name)), u2(b.utf8(desc)), u2(uint16(len(attrs))))
	for _, a := range attrs {
		out = cat(out, a)
	}
	return out
}

// element is an encoded annotation element value.
type element struct {
	name  string
	tag   byte
	value []byte
}

func (b *classBuilder) stringElem(name, v string) element {
	return element{name: name, tag: 's', value: u2(b.utf8(v))}
}

func (b *classBuilder) classElem(name, desc string) element {
	return element{name: name, tag: 'c', value: u2(b.utf8(desc))}
}

func (b *classBuilder) intElem(name string, v int32) element {
	return element{name: name, tag: 'I', value: u2(b.integer(v))}
}

func (b *classBuilder) arrayElem(name string, items ...element) element {
	body := u2(uint16(len(items)))
	for _, it := range items {
		body = cat(body, []byte{it.tag}, it.value)
	}
	return element{name: name, tag: '[', value: body}
}

func (b *classBuilder) annotationElem(name string, ann []byte) element {
	return element{name: name, tag: '@', value: ann}
}

func (b *classBuilder) annotation(typeDesc string, elems ...element) []byte {
	out := cat(u2(b.utf8(typeDesc)), u2(uint16(len(elems))))
	for _, e := range elems {
		out = cat(out, u2(b.utf8(e.name)), []byte{e.tag}, e.value)
	}
	return out
}

func (b *classBuilder) annotate(anns ...[]byte) {
	body := u2(uint16(len(anns)))
	for _, a := range anns {
		body = cat(body, a)
	}
	b.attrs = append(b.attrs, b.attribute(attrVisibleAnnotations, body))
}

func (b *classBuilder) signature(sig string) {
	b.attrs = append(b.attrs, b.attribute(attrSignature, u2(b.utf8(sig))))
}

func (b *classBuilder) bootstrapMethods(methods ...[]uint16) {
	body := u2(uint16(len(methods)))
	for _, m := range methods {
		body = cat(body, u2(m[0]), u2(uint16(len(m)-1)))
		for _, arg := range m[1:] {
			body = cat(body, u2(arg))
		}
	}
	b.attrs = append(b.attrs, b.attribute(attrBootstrapMethods, body))
}

func (b *classBuilder) bytes() []byte {
	fields, methods, attrs := b.fields, b.methods, b.attrs

	out := cat(u4(magic), u2(0), u2(52), u2(uint16(len(b.entries)+1)))
	for _, e := range b.entries {
		out = cat(out, e)
	}
	out = cat(out, u2(0x0021), u2(b.this), u2(b.super), u2(uint16(len(b.interfaces))))
	for _, i := range b.interfaces {
		out = cat(out, u2(i))
	}
	out = cat(out, u2(uint16(len(fields))))
	for _, f := range fields {
		out = cat(out, f)
	}
	out = cat(out, u2(uint16(len(methods))))
	for _, m := range methods {
		out = cat(out, m)
	}
	out = cat(out, u2(uint16(len(attrs))))
	for _, a := range attrs {
		out = cat(out, a)
	}
	return out
}
