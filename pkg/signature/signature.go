// Package signature extracts class references from JVM type descriptors and
// generic signatures.
//
// The parser is deliberately lenient: anything it does not understand is
// skipped, so callers can feed it whatever string a class file or catalog
// carries (method descriptors, field descriptors, generic class signatures,
// dotted class names or slash paths) without checking the shape first.
package signature

import (
	"strings"

	"github.com/simonhull/wren/pkg/ordered"
)

// ClassName normalizes a class reference to its dotted, fully-qualified form.
//
// Accepted inputs:
//
//	com.example.View
//	com/example/View
//	com/example/View$Inner
//	Lcom/example/View;
//
// Inner class separators are kept as '$'. An empty or unparseable input
// returns the empty string.
func ClassName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if strings.HasPrefix(s, "L") && strings.HasSuffix(s, ";") {
		classes := Classes(s)
		if len(classes) == 0 {
			return ""
		}
		return classes[0]
	}
	if !isBareName(s) {
		return ""
	}
	return strings.ReplaceAll(s, "/", ".")
}

// Classes returns every class referenced by sig, in order of first
// appearance and without duplicates. A parameterized type is listed before
// its type arguments.
//
// Primitive descriptors, array markers, type variables and wildcards never
// produce entries. A bare class name or slash path yields itself.
func Classes(sig string) []string {
	sig = strings.TrimSpace(sig)
	if sig == "" {
		return nil
	}

	if isBareName(sig) && !looksLikeDescriptor(sig) {
		return []string{strings.ReplaceAll(sig, "/", ".")}
	}

	p := &parser{src: sig}
	p.parse()
	if p.out.Len() == 0 {
		return nil
	}
	return p.out.Items()
}

// AddSignatureToClasses adds the classes referenced by sig to set and
// returns how many of them were not already present.
func AddSignatureToClasses(set *ordered.Set[string], sig string) int {
	added := 0
	for _, c := range Classes(sig) {
		if set.Add(c) {
			added++
		}
	}
	return added
}

// looksLikeDescriptor reports whether s carries descriptor syntax rather
// than being a plain name. A name such as "Lcom" is ambiguous; only the
// terminating ';' or the surrounding '(' ')' make it a descriptor.
func looksLikeDescriptor(s string) bool {
	return strings.ContainsAny(s, "();<>[")
}

func isBareName(s string) bool {
	for _, r := range s {
		if !isNameRune(r) && r != '/' && r != '.' {
			return false
		}
	}
	return true
}

func isNameRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '_' || r == '$':
		return true
	}
	return r > 0x7f
}

// parser walks a descriptor or generic signature.
type parser struct {
	src string
	pos int
	out ordered.Set[string]
}

func (p *parser) parse() {
	for p.pos < len(p.src) {
		p.step()
	}
}

// step consumes one token at the current position.
func (p *parser) step() {
	switch c := p.src[p.pos]; c {
	case 'L':
		p.pos++
		p.classType()
	case 'T':
		p.pos++
		p.skipPast(';')
	case '<':
		p.pos++
		p.typeParams()
	case 'Z', 'B', 'C', 'S', 'I', 'J', 'F', 'D', 'V':
		p.pos++
	default:
		// '(', ')', '[', '^', '*', '+', '-', ';' and anything malformed
		p.pos++
	}
}

// classType reads the body of an 'L' class type up to and including its ';'.
// Slash and dot qualified names are both accepted. Type arguments are parsed
// recursively and emitted after the class itself; a ".Inner" suffix that
// follows type arguments is folded into "Outer$Inner".
func (p *parser) classType() {
	var name strings.Builder
	var args []string
	parameterized := false
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch c {
		case ';':
			p.pos++
			p.emitClass(name.String(), args)
			return
		case '<':
			sub := &parser{src: p.src, pos: p.pos + 1}
			sub.typeArgs()
			p.pos = sub.pos
			args = append(args, sub.out.Items()...)
			parameterized = true
		case '.':
			p.pos++
			if parameterized {
				name.WriteByte('$')
			} else {
				name.WriteByte('.')
			}
		case '/':
			p.pos++
			name.WriteByte('.')
		case '(', ')', '[', '>':
			// unterminated class type; keep what we have and let the
			// caller resume at the delimiter
			p.emitClass(name.String(), args)
			return
		default:
			name.WriteByte(c)
			p.pos++
		}
	}
	p.emitClass(name.String(), args)
}

func (p *parser) emitClass(name string, args []string) {
	p.emit(name)
	for _, a := range args {
		p.emit(a)
	}
}

// typeArgs reads type arguments up to the matching '>'.
func (p *parser) typeArgs() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case '>':
			p.pos++
			return
		case '*', '+', '-':
			p.pos++
		default:
			p.step()
		}
	}
}

// typeParams reads formal type parameters such as
// <K:Ljava/lang/Object;V::Lcom/example/Bound;>.
func (p *parser) typeParams() {
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == '>':
			p.pos++
			return
		case c == ':':
			p.pos++
		case c == 'L' && p.afterColon():
			p.pos++
			p.classType()
		case c == 'T' && p.afterColon():
			p.pos++
			p.skipPast(';')
		case c == '[' && p.afterColon():
			p.pos++
		default:
			// identifier of the type parameter
			p.pos++
		}
	}
}

func (p *parser) afterColon() bool {
	if p.pos == 0 {
		return false
	}
	prev := p.src[p.pos-1]
	return prev == ':' || prev == '['
}

func (p *parser) skipPast(b byte) {
	i := strings.IndexByte(p.src[p.pos:], b)
	if i < 0 {
		p.pos = len(p.src)
		return
	}
	p.pos += i + 1
}

func (p *parser) emit(name string) {
	name = strings.Trim(name, ".")
	if name == "" || !isBareName(name) {
		return
	}
	p.out.Add(name)
}
