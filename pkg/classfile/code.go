package classfile

// Opcodes whose operands name constant pool entries.
const (
	opLdc            = 0x12
	opLdcW           = 0x13
	opLdc2W          = 0x14
	opTableswitch    = 0xaa
	opLookupswitch   = 0xab
	opGetstatic      = 0xb2
	opInvokeinterf   = 0xb9
	opInvokedynamic  = 0xba
	opNew            = 0xbb
	opAnewarray      = 0xbd
	opCheckcast      = 0xc0
	opInstanceof     = 0xc1
	opWide           = 0xc4
	opMultianewarray = 0xc5
	opIinc           = 0x84
)

// opLength holds the fixed instruction length for every opcode; zero marks
// variable-length instructions handled separately.
var opLength = func() [256]int {
	var t [256]int
	for op := range t {
		t[op] = 1
	}
	set := func(n int, ops ...int) {
		for _, op := range ops {
			t[op] = n
		}
	}
	set(2, 0x10, opLdc, 0x15, 0x16, 0x17, 0x18, 0x19, 0x36, 0x37, 0x38, 0x39, 0x3a, 0xa9, 0xbc)
	set(3, 0x11, opLdcW, opLdc2W, opIinc, 0xb2, 0xb3, 0xb4, 0xb5, 0xb6, 0xb7, 0xb8,
		opNew, opAnewarray, opCheckcast, opInstanceof, 0xc6, 0xc7)
	for op := 0x99; op <= 0xa8; op++ {
		t[op] = 3
	}
	set(4, opMultianewarray)
	set(5, opInvokeinterf, opInvokedynamic, 0xc8, 0xc9)
	set(0, opTableswitch, opLookupswitch, opWide)
	return t
}()

// scanCode walks bytecode and returns every class name or descriptor named
// by an instruction operand or an exception handler. Scanning stops quietly
// at the first malformed instruction.
func (f *File) scanCode(code []byte, catchTypes []uint16) []string {
	var refs collect
	u2 := func(at int) uint16 { return uint16(code[at])<<8 | uint16(code[at+1]) }
	s4 := func(at int) int {
		return int(int32(uint32(code[at])<<24 | uint32(code[at+1])<<16 | uint32(code[at+2])<<8 | uint32(code[at+3])))
	}

	for pc := 0; pc < len(code); {
		op := int(code[pc])
		n := opLength[op]

		switch op {
		case opTableswitch, opLookupswitch:
			base := pc + 1 + (4-(pc+1)%4)%4
			header := 8
			if op == opTableswitch {
				header = 12
			}
			if base+header > len(code) {
				return refs.items()
			}
			if op == opTableswitch {
				low, high := s4(base+4), s4(base+8)
				if high < low {
					return refs.items()
				}
				n = base - pc + 12 + (high-low+1)*4
			} else {
				pairs := s4(base + 4)
				if pairs < 0 {
					return refs.items()
				}
				n = base - pc + 8 + pairs*8
			}
		case opWide:
			if pc+1 < len(code) && code[pc+1] == opIinc {
				n = 6
			} else {
				n = 4
			}
		}

		if n <= 0 || pc+n > len(code) {
			break
		}

		switch {
		case op == opLdc:
			refs.add(f.pool.refs(uint16(code[pc+1]))...)
		case op == opLdcW || op == opLdc2W:
			refs.add(f.pool.refs(u2(pc + 1))...)
		case op >= opGetstatic && op <= opInvokeinterf:
			owner, desc := f.pool.memberRef(u2(pc + 1))
			refs.add(owner, desc)
		case op == opInvokedynamic:
			refs.add(f.indyRefs(u2(pc + 1))...)
		case op == opNew || op == opAnewarray || op == opCheckcast || op == opInstanceof || op == opMultianewarray:
			refs.add(f.pool.className(u2(pc + 1)))
		}
		pc += n
	}

	for _, t := range catchTypes {
		refs.add(f.pool.className(t))
	}
	return refs.items()
}

// indyRefs returns the call site descriptor of an invokedynamic plus every
// class named by its bootstrap arguments (lambda implementation handles,
// method types).
func (f *File) indyRefs(index uint16) []string {
	c, ok := f.pool.at(index, tagInvokeDynamic)
	if !ok {
		return nil
	}
	_, desc := f.pool.nameAndType(c.b)
	out := nonEmpty(desc)
	if int(c.a) < len(f.bootstraps) {
		for _, arg := range f.bootstraps[c.a] {
			out = append(out, f.pool.refs(arg)...)
		}
	}
	return out
}
