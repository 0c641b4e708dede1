package lico

import (
	"bytes"
	"encoding/binary"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testBMP builds a conforming 24-bit BMP. at returns the BGR triplet
// for a pixel; nil means all black.
func testBMP(w, h int, at func(x, y int) [3]byte) []byte {
	stride := (w*3 + 3) &^ 3
	data := make([]byte, 54+stride*h)
	le := binary.LittleEndian
	data[0], data[1] = 'B', 'M'
	le.PutUint32(data[2:], uint32(len(data)))
	le.PutUint32(data[10:], 54)
	le.PutUint32(data[14:], 40)
	le.PutUint32(data[18:], uint32(w))
	le.PutUint32(data[22:], uint32(h))
	le.PutUint16(data[26:], 1)
	le.PutUint16(data[28:], 24)
	le.PutUint32(data[34:], uint32(stride*h))
	if at != nil {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				c := at(x, y)
				copy(data[54+y*stride+x*3:], c[:])
			}
		}
	}
	return data
}

func randomBMP(rng *rand.Rand, w, h int) []byte {
	return testBMP(w, h, func(x, y int) [3]byte {
		return [3]byte{byte(rng.Intn(256)), byte(rng.Intn(256)), byte(rng.Intn(256))}
	})
}

func TestRoundTripSinglePixel(t *testing.T) {
	data := testBMP(1, 1, nil)

	frame, err := EncodeBytes(data, nil)
	require.NoError(t, err)

	f, err := Info(frame)
	require.NoError(t, err)
	assert.False(t, f.Raw)
	assert.Equal(t, len(data), f.DecodedLen)
	// The preprocessed buffer is zero except the width and height
	// fields, which share one 64-bit word.
	assert.Equal(t, 1, f.DenseWords)
	assert.Equal(t, 1, f.BitmapWords)

	got, err := DecodeBytes(frame, nil)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestRoundTripGradientRow(t *testing.T) {
	// 4x1 gradient: all residual bytes collapse into one bit-plane
	// byte, leaving three nonzero bytes in the whole preprocessed file
	// (width, height, and that plane byte).
	data := testBMP(4, 1, func(x, y int) [3]byte {
		return [3]byte{byte(x), byte(x), byte(x)}
	})

	frame, err := EncodeBytes(data, &Options{WordWidth: 1})
	require.NoError(t, err)

	f, err := Info(frame)
	require.NoError(t, err)
	assert.Equal(t, 3, f.DenseWords)
	assert.Less(t, len(frame), len(data))

	got, err := DecodeBytes(frame, nil)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestRoundTripGrid(t *testing.T) {
	rng := rand.New(rand.NewSource(41))
	for w := 1; w <= 6; w++ {
		for h := 1; h <= 4; h++ {
			data := randomBMP(rng, w, h)
			for _, width := range []int{1, 2, 4, 8} {
				frame, err := EncodeBytes(data, &Options{WordWidth: width})
				require.NoError(t, err, "%dx%d width %d", w, h, width)
				got, err := DecodeBytes(frame, nil)
				require.NoError(t, err, "%dx%d width %d", w, h, width)
				require.Equal(t, data, got, "%dx%d width %d", w, h, width)
			}
		}
	}
}

func TestRoundTripLargerImages(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for _, dim := range []struct{ w, h int }{{64, 48}, {127, 33}, {200, 3}} {
		data := randomBMP(rng, dim.w, dim.h)
		frame, err := EncodeBytes(data, nil)
		require.NoError(t, err)
		got, err := DecodeBytes(frame, nil)
		require.NoError(t, err)
		require.Equal(t, data, got, "%dx%d", dim.w, dim.h)
	}
}

func TestSmoothImageCompresses(t *testing.T) {
	data := testBMP(256, 256, func(x, y int) [3]byte {
		return [3]byte{byte(x), byte((x + y) / 2), byte(y)}
	})
	frame, err := EncodeBytes(data, nil)
	require.NoError(t, err)
	assert.Less(t, len(frame), len(data)/2, "smooth gradients must compress well")
}

func TestWorkerInvariance(t *testing.T) {
	rng := rand.New(rand.NewSource(43))
	data := randomBMP(rng, 61, 37)

	ref, err := EncodeBytes(data, &Options{Workers: 1})
	require.NoError(t, err)
	for _, workers := range []int{2, 3, 8} {
		frame, err := EncodeBytes(data, &Options{Workers: workers})
		require.NoError(t, err)
		require.Equal(t, ref, frame, "%d workers", workers)

		got, err := DecodeBytes(frame, &Options{Workers: workers})
		require.NoError(t, err)
		require.Equal(t, data, got)
	}
}

func TestEncodeDoesNotMutateInput(t *testing.T) {
	data := testBMP(5, 5, func(x, y int) [3]byte { return [3]byte{1, 2, 3} })
	orig := append([]byte(nil), data...)
	_, err := EncodeBytes(data, nil)
	require.NoError(t, err)
	assert.Equal(t, orig, data)
}

func TestRawPassthrough(t *testing.T) {
	inputs := [][]byte{
		{},
		{1, 2, 3},
		make([]byte, 53),
		bytes.Repeat([]byte{0xab}, 500), // no BMP header at all
	}
	// A header-shaped buffer with a wrong field is stored raw too.
	bad := testBMP(4, 4, nil)
	bad[28] = 32 // 32 bpp
	inputs = append(inputs, bad)

	for i, data := range inputs {
		frame, err := EncodeBytes(data, nil)
		require.NoError(t, err, "input %d", i)

		f, err := Info(frame)
		require.NoError(t, err)
		assert.True(t, f.Raw, "input %d must be stored raw", i)

		got, err := DecodeBytes(frame, nil)
		require.NoError(t, err, "input %d", i)
		assert.Equal(t, data, got, "input %d", i)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	for _, data := range [][]byte{
		nil,
		{1, 2, 3},
		bytes.Repeat([]byte{0x55}, 64),
	} {
		_, err := DecodeBytes(data, nil)
		assert.ErrorIs(t, err, ErrInvalidFrame)
	}

	_, err := Info([]byte("not a frame"))
	assert.ErrorIs(t, err, ErrInvalidFrame)
}

func TestDecodeRejectsCorruptPayload(t *testing.T) {
	data := testBMP(4, 4, nil)
	frame, err := EncodeBytes(data, &Options{WordWidth: 1})
	require.NoError(t, err)

	// Flip a dense word so the restored header no longer fits the
	// buffer. The only nonzero bytes are the width (byte 18) and height
	// (byte 22) fields; the last frame byte is the height's dense word,
	// and a wrong height fails the buffer length check.
	c := append([]byte(nil), frame...)
	c[len(c)-1] ^= 0xff
	_, err = DecodeBytes(c, nil)
	assert.Error(t, err)
}

func TestPreprocessRestoreInPlace(t *testing.T) {
	rng := rand.New(rand.NewSource(44))
	data := randomBMP(rng, 9, 7)
	orig := append([]byte(nil), data...)

	require.NoError(t, Preprocess(data, 0))
	assert.NotEqual(t, orig, data)
	assert.Len(t, data, len(orig), "preprocessing preserves length")

	require.NoError(t, Restore(data, 0))
	assert.Equal(t, orig, data)
}

func TestPreprocessRejectsUnsupported(t *testing.T) {
	data := bytes.Repeat([]byte{9}, 100)
	orig := append([]byte(nil), data...)
	err := Preprocess(data, 0)
	assert.ErrorIs(t, err, ErrUnsupportedBMP)
	assert.Equal(t, orig, data)
}

func TestRoundTripZeroesRowPadding(t *testing.T) {
	// Pad bytes are not pixel data; the inverse pipeline rewrites them
	// as zero regardless of what the original file carried.
	data := testBMP(2, 3, func(x, y int) [3]byte { return [3]byte{4, 5, 6} })
	stride := 8
	dirty := append([]byte(nil), data...)
	for y := 0; y < 3; y++ {
		dirty[54+y*stride+6] = 0xde
		dirty[54+y*stride+7] = 0xad
	}

	frame, err := EncodeBytes(dirty, nil)
	require.NoError(t, err)
	got, err := DecodeBytes(frame, nil)
	require.NoError(t, err)
	assert.Equal(t, data, got, "padding comes back zeroed")
}

func TestIsSupportedBMP(t *testing.T) {
	assert.True(t, IsSupportedBMP(testBMP(3, 3, nil)))
	assert.False(t, IsSupportedBMP([]byte("BM")))
	assert.False(t, IsSupportedBMP(nil))
}

func TestEncodeDecodeStreams(t *testing.T) {
	data := testBMP(8, 8, func(x, y int) [3]byte { return [3]byte{byte(x * y), 0, byte(x)} })

	var frame bytes.Buffer
	require.NoError(t, Encode(&frame, bytes.NewReader(data), nil))

	var out bytes.Buffer
	require.NoError(t, Decode(&out, bytes.NewReader(frame.Bytes()), nil))
	assert.Equal(t, data, out.Bytes())
}
