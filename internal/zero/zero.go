// Package zero implements the zero-elimination codec: a word stream is
// split into the nonzero words, kept densely in scan order, and a
// bitmap recording which positions they came from. Zero words cost one
// bitmap bit each, so a stream dominated by zeros shrinks by nearly
// the word size per zero. The codec is generic over the word width;
// the bitmap is made of the same word type as the payload.
package zero

import (
	"errors"
	"math/bits"
)

// Word is the set of word types the codec operates on.
type Word interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// ErrCapacity is returned by EncodeChecked when the dense output would
// exceed the destination slice. The partial contents of dense and bm
// are defined but unusable.
var ErrCapacity = errors.New("zero: dense output exceeds capacity")

// wordBits returns the width of T in bits.
func wordBits[T Word]() int {
	return bits.Len64(uint64(^T(0)))
}

// BitmapLen returns the number of T-words the bitmap for n input words
// occupies.
func BitmapLen[T Word](n int) int {
	b := wordBits[T]()
	return (n + b - 1) / b
}

// Encode packs the nonzero words of in into dense and fills bm with
// one bit per input word (bit j of bm[i] set iff in[i*bits+j] != 0;
// unused bits of the last word are zero). It returns the dense word
// count. dense must have room for every nonzero word of in and bm must
// have BitmapLen(len(in)) words; use EncodeChecked when the dense
// capacity is not known to suffice.
func Encode[T Word](in, dense, bm []T) int {
	pos, _ := encode(in, dense, bm, false)
	return pos
}

// EncodeChecked is Encode with a bounds check on every dense append.
// It returns ErrCapacity instead of growing past len(dense).
func EncodeChecked[T Word](in, dense, bm []T) (int, error) {
	pos, ok := encode(in, dense, bm, true)
	if !ok {
		return pos, ErrCapacity
	}
	return pos, nil
}

func encode[T Word](in, dense, bm []T, check bool) (int, bool) {
	b := wordBits[T]()
	num := BitmapLen[T](len(in))
	pos, cnt := 0, 0
	for i := 0; i < num; i++ {
		var m T
		for j := 0; j < b && cnt < len(in); j++ {
			v := in[cnt]
			cnt++
			if v != 0 {
				if check && pos >= len(dense) {
					return pos, false
				}
				m |= 1 << j
				dense[pos] = v
				pos++
			}
		}
		bm[i] = m
	}
	return pos, true
}

// Decode expands n words into out, reversing Encode: positions whose
// bitmap bit is set take the next dense word, all others become zero.
// It consumes exactly as many dense words as there are set bits in the
// first n bitmap positions.
func Decode[T Word](n int, dense, bm []T, out []T) {
	b := wordBits[T]()
	pos, cnt := 0, 0
	for i := 0; cnt < n; i++ {
		m := bm[i]
		for j := 0; j < b && cnt < n; j++ {
			var v T
			if (m>>j)&1 != 0 {
				v = dense[pos]
				pos++
			}
			out[cnt] = v
			cnt++
		}
	}
}
