package codec

import (
	"encoding/binary"
	"math"
)

// Payloads are little-endian. Strings are length-prefixed with uint16.

func appendUint16(dst []byte, v uint16) []byte {
	return binary.LittleEndian.AppendUint16(dst, v)
}

func appendUint64(dst []byte, v uint64) []byte {
	return binary.LittleEndian.AppendUint64(dst, v)
}

func appendInt64(dst []byte, v int64) []byte {
	return binary.LittleEndian.AppendUint64(dst, uint64(v))
}

func appendString(dst []byte, s string) []byte {
	if len(s) > math.MaxUint16 {
		s = s[:math.MaxUint16]
	}
	dst = appendUint16(dst, uint16(len(s)))
	return append(dst, s...)
}

type reader struct {
	src []byte
	pos int
	ok  bool
}

func newReader(src []byte) *reader {
	return &reader{src: src, ok: true}
}

func (r *reader) uint16() uint16 {
	if !r.ok || r.pos+2 > len(r.src) {
		r.ok = false
		return 0
	}
	v := binary.LittleEndian.Uint16(r.src[r.pos:])
	r.pos += 2
	return v
}

func (r *reader) uint64() uint64 {
	if !r.ok || r.pos+8 > len(r.src) {
		r.ok = false
		return 0
	}
	v := binary.LittleEndian.Uint64(r.src[r.pos:])
	r.pos += 8
	return v
}

func (r *reader) int64() int64 {
	return int64(r.uint64())
}

func (r *reader) str() string {
	n := int(r.uint16())
	if !r.ok || r.pos+n > len(r.src) {
		r.ok = false
		return ""
	}
	s := string(r.src[r.pos : r.pos+n])
	r.pos += n
	return s
}

func (r *reader) done() bool {
	return r.ok && r.pos == len(r.src)
}
