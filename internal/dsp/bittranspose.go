package dsp

import "encoding/binary"

// The three butterfly layers of the 8×8 bit-matrix transpose. Each
// layer swaps a rectangle of bits with its mirror across the diagonal
// and is its own inverse, so the whole transpose is an involution.
const (
	diagMask7  = 0x00AA00AA00AA00AA
	diagMask14 = 0x0000CCCC0000CCCC
	diagMask28 = 0x00000000F0F0F0F0
)

// transpose8x8 treats x as an 8×8 bit matrix whose rows are the bytes
// of x (least-significant byte first) and returns its transpose: bit i
// of output byte j equals bit j of input byte i.
func transpose8x8(x uint64) uint64 {
	t := (x ^ (x >> 7)) & diagMask7
	x = x ^ t ^ (t << 7)
	t = (x ^ (x >> 14)) & diagMask14
	x = x ^ t ^ (t << 14)
	t = (x ^ (x >> 28)) & diagMask28
	x = x ^ t ^ (t << 28)
	return x
}

// TransposeBits regroups src so that equal bit positions of eight
// consecutive bytes land in one output byte. src is consumed as
// len(src)/8 little-endian 64-bit words; the transposed byte for bit
// position j of group g is written to dst[g + j*groups], producing
// eight bit-plane slabs. A trailing remainder of len(src) mod 8 bytes
// is copied verbatim. dst must be at least len(src) bytes; groups are
// independent and processed in parallel.
//
// After residual coding most bytes are small, so bit planes 2-7 come
// out almost entirely zero and fall to the zero-elimination stage.
func TransposeBits(src, dst []byte, workers int) {
	extra := len(src) % 8
	esize := len(src) - extra
	groups := esize / 8
	parallelRange(groups, workers, func(lo, hi int) {
		for g := lo; g < hi; g++ {
			x := transpose8x8(binary.LittleEndian.Uint64(src[g*8:]))
			for j := 0; j < 8; j++ {
				dst[g+j*groups] = byte(x >> (8 * j))
			}
		}
	})
	copy(dst[esize:esize+extra], src[esize:])
}

// UntransposeBits reverses TransposeBits: it gathers the eight strided
// bit-plane bytes of each group, runs the same involution, and stores
// the word contiguously into dst.
func UntransposeBits(src, dst []byte, workers int) {
	extra := len(dst) % 8
	esize := len(dst) - extra
	groups := esize / 8
	parallelRange(groups, workers, func(lo, hi int) {
		for g := lo; g < hi; g++ {
			var x uint64
			for j := 0; j < 8; j++ {
				x |= uint64(src[g+j*groups]) << (8 * j)
			}
			binary.LittleEndian.PutUint64(dst[g*8:], transpose8x8(x))
		}
	})
	copy(dst[esize:esize+extra], src[esize:esize+extra])
}
