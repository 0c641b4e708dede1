// Package container reads and writes the .lico frame, the on-disk
// envelope around a zero-eliminated buffer. The frame records the
// original byte length, the zero-elimination word width, and whether
// the BMP preprocessing stages ran, which is everything the decoder
// needs to reverse the pipeline.
package container

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/bits"

	"github.com/noxer/bytewriter"

	"github.com/deepteams/lico/internal/zero"
)

// Frame layout, all integers little-endian:
//
//	offset 0  4  magic "LICO"
//	offset 4  1  format version
//	offset 5  1  zero-elimination word width in bytes (1, 2, 4, or 8)
//	offset 6  1  flags
//	offset 7  1  reserved, zero
//	offset 8  4  original byte length
//	offset 12 4  dense word count
//	offset 16 -  bitmap words, then dense words
const (
	// HeaderSize is the length of the fixed frame header.
	HeaderSize = 16

	// Version is the only frame format version this package writes and
	// accepts.
	Version = 1
)

var magic = [4]byte{'L', 'I', 'C', 'O'}

// Frame flags.
const (
	// FlagRaw marks a frame whose payload was zero-eliminated without
	// the BMP preprocessing stages (input outside the supported
	// subset).
	FlagRaw = 1 << 0

	validFlags = FlagRaw
)

// Common errors.
var (
	ErrInvalidMagic = errors.New("container: invalid frame magic")
	ErrVersion      = errors.New("container: unsupported frame version")
	ErrWordWidth    = errors.New("container: invalid word width")
	ErrInvalidFlags = errors.New("container: invalid frame flags")
	ErrTruncated    = errors.New("container: truncated frame")
	ErrCorrupt      = errors.New("container: corrupt frame")
)

// Header describes a parsed frame.
type Header struct {
	WordWidth  int  // zero-elimination word width in bytes
	Flags      byte
	RawLen     int  // byte length of the decoded buffer
	DenseWords int  // nonzero word count in the payload
}

// BitmapWords returns the number of bitmap words in the frame payload.
func (h Header) BitmapWords() int {
	n := (h.RawLen + h.WordWidth - 1) / h.WordWidth
	return (n + h.WordWidth*8 - 1) / (h.WordWidth * 8)
}

// PayloadBytes returns the byte length of the bitmap and dense
// sections combined.
func (h Header) PayloadBytes() int {
	return (h.BitmapWords() + h.DenseWords) * h.WordWidth
}

// Pack zero-eliminates buf at the given word width and returns the
// complete frame. A trailing partial word is padded with zero bytes;
// the recorded original length lets Unpack drop the padding again.
func Pack(buf []byte, width int, flags byte) ([]byte, error) {
	switch width {
	case 1:
		return pack[uint8](buf, width, flags)
	case 2:
		return pack[uint16](buf, width, flags)
	case 4:
		return pack[uint32](buf, width, flags)
	case 8:
		return pack[uint64](buf, width, flags)
	default:
		return nil, fmt.Errorf("%w: %d", ErrWordWidth, width)
	}
}

func pack[T zero.Word](buf []byte, width int, flags byte) ([]byte, error) {
	n := (len(buf) + width - 1) / width
	words := make([]T, n)
	bytesToWords(words, buf, width)

	bm := make([]T, zero.BitmapLen[T](n))
	dense := make([]T, n)
	dn, err := zero.EncodeChecked(words, dense, bm)
	if err != nil {
		return nil, err
	}

	out := make([]byte, HeaderSize+(len(bm)+dn)*width)
	w := bytewriter.New(out)
	w.Write(magic[:])
	w.Write([]byte{Version, byte(width), flags, 0})
	binary.Write(w, binary.LittleEndian, uint32(len(buf)))
	binary.Write(w, binary.LittleEndian, uint32(dn))
	wordsToBytes(out[HeaderSize:], bm, width)
	wordsToBytes(out[HeaderSize+len(bm)*width:], dense[:dn], width)
	return out, nil
}

// ParseHeader validates the fixed header of a frame and checks that
// the buffer length matches the payload it declares.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, ErrTruncated
	}
	if [4]byte(data[0:4]) != magic {
		return Header{}, ErrInvalidMagic
	}
	if data[4] != Version {
		return Header{}, fmt.Errorf("%w: %d", ErrVersion, data[4])
	}
	width := int(data[5])
	if width != 1 && width != 2 && width != 4 && width != 8 {
		return Header{}, fmt.Errorf("%w: %d", ErrWordWidth, width)
	}
	if data[6]&^byte(validFlags) != 0 || data[7] != 0 {
		return Header{}, ErrInvalidFlags
	}
	h := Header{
		WordWidth:  width,
		Flags:      data[6],
		RawLen:     int(binary.LittleEndian.Uint32(data[8:12])),
		DenseWords: int(binary.LittleEndian.Uint32(data[12:16])),
	}
	n := (h.RawLen + width - 1) / width
	if h.DenseWords > n {
		return Header{}, fmt.Errorf("%w: %d dense words for %d input words", ErrCorrupt, h.DenseWords, n)
	}
	if len(data) != HeaderSize+h.PayloadBytes() {
		return Header{}, ErrTruncated
	}
	return h, nil
}

// Unpack parses a frame and expands its payload back to the original
// buffer.
func Unpack(data []byte) (Header, []byte, error) {
	h, err := ParseHeader(data)
	if err != nil {
		return Header{}, nil, err
	}
	var buf []byte
	switch h.WordWidth {
	case 1:
		buf, err = unpack[uint8](h, data[HeaderSize:])
	case 2:
		buf, err = unpack[uint16](h, data[HeaderSize:])
	case 4:
		buf, err = unpack[uint32](h, data[HeaderSize:])
	case 8:
		buf, err = unpack[uint64](h, data[HeaderSize:])
	}
	if err != nil {
		return Header{}, nil, err
	}
	return h, buf, nil
}

func unpack[T zero.Word](h Header, payload []byte) ([]byte, error) {
	width := h.WordWidth
	n := (h.RawLen + width - 1) / width

	bm := make([]T, h.BitmapWords())
	bytesToWords(bm, payload[:len(bm)*width], width)
	if popcount(bm) != h.DenseWords {
		return nil, fmt.Errorf("%w: bitmap population does not match dense count", ErrCorrupt)
	}
	dense := make([]T, h.DenseWords)
	bytesToWords(dense, payload[len(bm)*width:], width)

	words := make([]T, n)
	zero.Decode(n, dense, bm, words)

	// The trailing pad of the last word must decode to zero bytes, or
	// the recorded length is lying about the payload.
	buf := make([]byte, n*width)
	wordsToBytes(buf, words, width)
	for _, b := range buf[h.RawLen:] {
		if b != 0 {
			return nil, fmt.Errorf("%w: nonzero padding past declared length", ErrCorrupt)
		}
	}
	return buf[:h.RawLen:h.RawLen], nil
}

// bytesToWords fills dst with little-endian words read from src.
// Missing trailing bytes read as zero.
func bytesToWords[T zero.Word](dst []T, src []byte, width int) {
	for i := range dst {
		var v uint64
		off := i * width
		for k := 0; k < width && off+k < len(src); k++ {
			v |= uint64(src[off+k]) << (8 * k)
		}
		dst[i] = T(v)
	}
}

// wordsToBytes stores src into dst in little-endian order. Bytes past
// the end of dst are dropped.
func wordsToBytes[T zero.Word](dst []byte, src []T, width int) {
	for i, w := range src {
		v := uint64(w)
		off := i * width
		for k := 0; k < width && off+k < len(dst); k++ {
			dst[off+k] = byte(v >> (8 * k))
		}
	}
}

func popcount[T zero.Word](bm []T) int {
	n := 0
	for _, w := range bm {
		n += bits.OnesCount64(uint64(w))
	}
	return n
}
