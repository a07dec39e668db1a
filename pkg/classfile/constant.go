package classfile

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// Constant pool tags.
const (
	tagUtf8               = 1
	tagInteger            = 3
	tagFloat              = 4
	tagLong               = 5
	tagDouble             = 6
	tagClass              = 7
	tagString             = 8
	tagFieldref           = 9
	tagMethodref          = 10
	tagInterfaceMethodref = 11
	tagNameAndType        = 12
	tagMethodHandle       = 15
	tagMethodType         = 16
	tagDynamic            = 17
	tagInvokeDynamic      = 18
	tagModule             = 19
	tagPackage            = 20
)

// constant is one constant pool slot. Only the fields meaningful for its tag
// are set.
type constant struct {
	tag   uint8
	utf8  string
	num   uint64
	a, b  uint16 // index operands (class, name-and-type, descriptor, ...)
	kind  uint8  // method handle reference kind
	valid bool
}

type pool []constant

func readPool(r *reader) (pool, error) {
	count := int(r.u2())
	p := make(pool, count)
	for i := 1; i < count; i++ {
		tag := r.u1()
		c := constant{tag: tag, valid: true}
		switch tag {
		case tagUtf8:
			n := int(r.u2())
			c.utf8 = decodeModifiedUTF8(r.bytes(n))
		case tagInteger, tagFloat:
			c.num = uint64(r.u4())
		case tagLong, tagDouble:
			c.num = r.u8()
		case tagClass, tagString, tagMethodType, tagModule, tagPackage:
			c.a = r.u2()
		case tagFieldref, tagMethodref, tagInterfaceMethodref, tagNameAndType, tagDynamic, tagInvokeDynamic:
			c.a = r.u2()
			c.b = r.u2()
		case tagMethodHandle:
			c.kind = r.u1()
			c.a = r.u2()
		default:
			if r.err != nil {
				return nil, r.err
			}
			return nil, fmt.Errorf("%w: unknown tag %d at index %d", ErrBadConstant, tag, i)
		}
		if r.err != nil {
			return nil, r.err
		}
		p[i] = c
		if tag == tagLong || tag == tagDouble {
			// eight-byte constants take two slots
			i++
		}
	}
	return p, r.err
}

func (p pool) at(i uint16, tags ...uint8) (constant, bool) {
	if int(i) <= 0 || int(i) >= len(p) || !p[i].valid {
		return constant{}, false
	}
	c := p[i]
	if len(tags) == 0 {
		return c, true
	}
	for _, t := range tags {
		if c.tag == t {
			return c, true
		}
	}
	return constant{}, false
}

func (p pool) utf8(i uint16) string {
	c, ok := p.at(i, tagUtf8)
	if !ok {
		return ""
	}
	return c.utf8
}

// className returns the internal name held by a Class constant. For array
// classes this is a descriptor such as "[Lcom/example/Item;".
func (p pool) className(i uint16) string {
	c, ok := p.at(i, tagClass)
	if !ok {
		return ""
	}
	return p.utf8(c.a)
}

// nameAndType returns the name and descriptor of a NameAndType constant.
func (p pool) nameAndType(i uint16) (string, string) {
	c, ok := p.at(i, tagNameAndType)
	if !ok {
		return "", ""
	}
	return p.utf8(c.a), p.utf8(c.b)
}

// memberRef returns owner class and descriptor of a field or method
// reference.
func (p pool) memberRef(i uint16) (owner, desc string) {
	c, ok := p.at(i, tagFieldref, tagMethodref, tagInterfaceMethodref)
	if !ok {
		return "", ""
	}
	_, desc = p.nameAndType(c.b)
	return p.className(c.a), desc
}

// refs returns the class names and descriptors a loadable constant points
// at: a class literal, a method type or a method handle target.
func (p pool) refs(i uint16) []string {
	c, ok := p.at(i)
	if !ok {
		return nil
	}
	switch c.tag {
	case tagClass:
		return nonEmpty(p.className(i))
	case tagMethodType:
		return nonEmpty(p.utf8(c.a))
	case tagMethodHandle:
		owner, desc := p.memberRef(c.a)
		return nonEmpty(owner, desc)
	case tagDynamic, tagInvokeDynamic:
		_, desc := p.nameAndType(c.b)
		return nonEmpty(desc)
	}
	return nil
}

// value converts a constant used by an annotation element to a Go value.
func (p pool) value(i uint16, elem byte) any {
	c, ok := p.at(i)
	if !ok {
		return nil
	}
	switch elem {
	case 's':
		return p.utf8(i)
	case 'Z':
		return c.num != 0
	case 'J':
		return int64(c.num)
	case 'F':
		return float64(math.Float32frombits(uint32(c.num)))
	case 'D':
		return math.Float64frombits(c.num)
	default: // B, C, I, S
		return int64(int32(uint32(c.num)))
	}
}

func nonEmpty(vals ...string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// decodeModifiedUTF8 decodes the class file string encoding: NUL is written
// as C0 80 and supplementary characters as two encoded UTF-16 surrogates.
// Standard four-byte sequences are accepted too; malformed bytes become
// U+FFFD.
func decodeModifiedUTF8(b []byte) string {
	ascii := true
	for _, c := range b {
		if c >= 0x80 {
			ascii = false
			break
		}
	}
	if ascii {
		return string(b)
	}

	var sb strings.Builder
	sb.Grow(len(b))
	for i := 0; i < len(b); {
		r, n := decodeModifiedRune(b[i:])
		if utf16.IsSurrogate(r) {
			if low, m := decodeModifiedRune(b[i+n:]); m > 0 {
				if pair := utf16.DecodeRune(r, low); pair != utf8.RuneError {
					r, n = pair, n+m
				}
			}
		}
		if utf16.IsSurrogate(r) {
			r = utf8.RuneError
		}
		sb.WriteRune(r)
		i += n
	}
	return sb.String()
}

// decodeModifiedRune decodes one- to three-byte sequences without rejecting
// surrogates or the overlong NUL; anything else goes to utf8.DecodeRune.
func decodeModifiedRune(b []byte) (rune, int) {
	if len(b) == 0 {
		return utf8.RuneError, 0
	}
	c := b[0]
	switch {
	case c < 0x80:
		return rune(c), 1
	case c&0xE0 == 0xC0 && len(b) >= 2 && b[1]&0xC0 == 0x80:
		return rune(c&0x1F)<<6 | rune(b[1]&0x3F), 2
	case c&0xF0 == 0xE0 && len(b) >= 3 && b[1]&0xC0 == 0x80 && b[2]&0xC0 == 0x80:
		return rune(c&0x0F)<<12 | rune(b[1]&0x3F)<<6 | rune(b[2]&0x3F), 3
	}
	return utf8.DecodeRune(b)
}
