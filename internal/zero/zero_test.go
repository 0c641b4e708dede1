package zero

import (
	"math/rand"
	"testing"

	bitmap "github.com/boljen/go-bitmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeByteWords(t *testing.T) {
	in := []uint8{0, 5, 0, 0, 7, 0, 0, 0}
	dense := make([]uint8, len(in))
	bm := make([]uint8, BitmapLen[uint8](len(in)))

	n := Encode(in, dense, bm)
	assert.Equal(t, 2, n)
	assert.Equal(t, []uint8{5, 7}, dense[:n])
	assert.Equal(t, []uint8{0x12}, bm)

	out := make([]uint8, len(in))
	Decode(len(in), dense[:n], bm, out)
	assert.Equal(t, in, out)
}

func TestBitmapLen(t *testing.T) {
	assert.Equal(t, 0, BitmapLen[uint8](0))
	assert.Equal(t, 1, BitmapLen[uint8](1))
	assert.Equal(t, 1, BitmapLen[uint8](8))
	assert.Equal(t, 2, BitmapLen[uint8](9))
	assert.Equal(t, 1, BitmapLen[uint64](64))
	assert.Equal(t, 2, BitmapLen[uint64](65))
	assert.Equal(t, 3, BitmapLen[uint16](33))
}

// bitmapMatchesU8 verifies against an independently built LSB-first
// bitmap that bit k is set exactly for the nonzero input words.
func bitmapMatchesU8(t *testing.T, in, bm []uint8) {
	t.Helper()
	ref := bitmap.New(len(in))
	for i, v := range in {
		ref.Set(i, v != 0)
	}
	require.Equal(t, []byte(ref.Data(false)), []byte(bm))
}

func TestEncodeBitmapAgainstReference(t *testing.T) {
	rng := rand.New(rand.NewSource(21))
	for _, n := range []int{1, 7, 8, 9, 16, 100, 1000} {
		in := make([]uint8, n)
		for i := range in {
			if rng.Intn(3) == 0 {
				in[i] = uint8(rng.Intn(255) + 1)
			}
		}
		dense := make([]uint8, n)
		bm := make([]uint8, BitmapLen[uint8](n))
		Encode(in, dense, bm)
		bitmapMatchesU8(t, in, bm)
	}
}

func roundTrip[T Word](t *testing.T, in []T) {
	t.Helper()
	dense := make([]T, len(in))
	bm := make([]T, BitmapLen[T](len(in)))
	n := Encode(in, dense, bm)

	nonzero := 0
	for _, v := range in {
		if v != 0 {
			nonzero++
		}
	}
	require.Equal(t, nonzero, n, "dense length must equal nonzero count")

	out := make([]T, len(in))
	Decode(len(in), dense[:n], bm, out)
	require.Equal(t, in, out)

	// Checked encoding with exact capacity must agree.
	denseChecked := make([]T, n)
	bmChecked := make([]T, len(bm))
	m, err := EncodeChecked(in, denseChecked, bmChecked)
	require.NoError(t, err)
	assert.Equal(t, n, m)
	assert.Equal(t, dense[:n], denseChecked)
	assert.Equal(t, bm, bmChecked)
}

func TestRoundTripAllWidths(t *testing.T) {
	rng := rand.New(rand.NewSource(22))
	lengths := []int{0, 1, 5, 8, 31, 32, 33, 64, 129, 1000}

	for _, n := range lengths {
		u8 := make([]uint8, n)
		u16 := make([]uint16, n)
		u32 := make([]uint32, n)
		u64 := make([]uint64, n)
		for i := 0; i < n; i++ {
			if rng.Intn(4) == 0 {
				u8[i] = uint8(rng.Intn(256))
				u16[i] = uint16(rng.Intn(1 << 16))
				u32[i] = rng.Uint32()
				u64[i] = rng.Uint64()
			}
		}
		roundTrip(t, u8)
		roundTrip(t, u16)
		roundTrip(t, u32)
		roundTrip(t, u64)
	}
}

func TestRoundTripExtremes(t *testing.T) {
	allZero := make([]uint32, 200)
	roundTrip(t, allZero)

	allSet := make([]uint32, 200)
	for i := range allSet {
		allSet[i] = uint32(i + 1)
	}
	roundTrip(t, allSet)
}

func TestEncodeCheckedCapacity(t *testing.T) {
	in := []uint16{1, 2, 3, 4}
	bm := make([]uint16, BitmapLen[uint16](len(in)))

	_, err := EncodeChecked(in, make([]uint16, 3), bm)
	assert.ErrorIs(t, err, ErrCapacity)

	n, err := EncodeChecked(in, make([]uint16, 4), bm)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestDecodeShortLastGroup(t *testing.T) {
	// 10 words with an 8-bit bitmap word leaves two used bits in the
	// second group; the rest must stay zero and untouched.
	in := []uint8{1, 0, 0, 0, 0, 0, 0, 2, 0, 3}
	dense := make([]uint8, len(in))
	bm := make([]uint8, BitmapLen[uint8](len(in)))
	n := Encode(in, dense, bm)
	assert.Equal(t, 3, n)
	assert.Equal(t, []uint8{0x81, 0x02}, bm)

	out := make([]uint8, len(in))
	Decode(len(in), dense[:n], bm, out)
	assert.Equal(t, in, out)
}
