package classfile

import (
	"encoding/binary"
	"fmt"
)

// reader is a big-endian cursor over class file bytes. The first short read
// sticks: every later read returns zero values and err stays set.
type reader struct {
	buf []byte
	pos int
	err error
}

func (r *reader) fail(need int) {
	if r.err == nil {
		r.err = fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrTruncated, need, r.pos, len(r.buf)-r.pos)
	}
}

func (r *reader) ensure(n int) bool {
	if r.err != nil {
		return false
	}
	if n < 0 || r.pos+n > len(r.buf) {
		r.fail(n)
		return false
	}
	return true
}

func (r *reader) u1() uint8 {
	if !r.ensure(1) {
		return 0
	}
	v := r.buf[r.pos]
	r.pos++
	return v
}

func (r *reader) u2() uint16 {
	if !r.ensure(2) {
		return 0
	}
	v := binary.BigEndian.Uint16(r.buf[r.pos:])
	r.pos += 2
	return v
}

func (r *reader) u4() uint32 {
	if !r.ensure(4) {
		return 0
	}
	v := binary.BigEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v
}

func (r *reader) u8() uint64 {
	if !r.ensure(8) {
		return 0
	}
	v := binary.BigEndian.Uint64(r.buf[r.pos:])
	r.pos += 8
	return v
}

func (r *reader) bytes(n int) []byte {
	if !r.ensure(n) {
		return nil
	}
	v := r.buf[r.pos : r.pos+n]
	r.pos += n
	return v
}

func (r *reader) skip(n int) {
	if r.ensure(n) {
		r.pos += n
	}
}
