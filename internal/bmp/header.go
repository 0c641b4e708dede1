// Package bmp recognises the BMP subset the codec operates on and
// converts its header between the on-disk form and the neutralised
// form used by the compression pipeline.
//
// The subset is deliberately narrow: 24 bits per pixel, uncompressed,
// a single color plane, and the classic 54-byte header (14-byte file
// header followed by a 40-byte BITMAPINFOHEADER). Neutralising
// subtracts the constant every conforming file carries from each
// recognised field, turning a valid header into a run of zero bytes
// that the zero-elimination stage removes for free. Restoring adds the
// same constants back. Width and height are intentionally left in
// place; the decoder needs them before it can undo anything else.
package bmp

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// HeaderSize is the combined length of the BMP file header and the
// BITMAPINFOHEADER, the only header layout the codec accepts.
const HeaderSize = 54

// Header field offsets within the 54-byte header.
const (
	offMagic      = 0
	offFileSize   = 2
	offReserved   = 6
	offDataOffset = 10
	offDIBSize    = 14
	offWidth      = 18
	offHeight     = 22
	offPlanes     = 26
	offBPP        = 28
	offCompress   = 30
	offImageSize  = 34
	offXRes       = 38
	offYRes       = 42
	offColors     = 46
	offImportant  = 50
)

var (
	// ErrTooSmall is returned when the buffer cannot hold a BMP header.
	ErrTooSmall = errors.New("bmp: buffer too small for a BMP header")

	// ErrUnsupported is returned when the buffer does not match the
	// supported BMP subset. The buffer is never modified in that case.
	ErrUnsupported = errors.New("bmp: not a supported BMP format")
)

// Info carries the image geometry read from a header. It stays valid
// across neutralisation because width and height are never zeroed.
type Info struct {
	Width  int
	Height int
	Stride int // bytes per pixel row, including padding
}

// RowStride returns the byte length of one pixel row for the given
// width: three bytes per pixel rounded up to a multiple of four.
// Geometry math runs in full int width; the buffer-length checks in
// the validators keep hostile 32-bit header fields from wrapping any
// derived size back into range.
func RowStride(w int) int {
	return (w*3 + 3) &^ 3
}

// PixelBytes returns the size of the pixel region in bytes.
func (inf Info) PixelBytes() int {
	return inf.Stride * inf.Height
}

// PlaneBytes returns the size of one channel plane in bytes.
func (inf Info) PlaneBytes() int {
	return inf.Width * inf.Height
}

// FileSize returns the total file length a conforming buffer must have.
func (inf Info) FileSize() int {
	return HeaderSize + inf.PixelBytes()
}

// geometry reads width, height, and derived stride without validating
// anything else. Width and height survive neutralisation, so this is
// safe in both directions.
func geometry(data []byte) Info {
	w := int(get32(data[offWidth:]))
	h := int(get32(data[offHeight:]))
	return Info{Width: w, Height: h, Stride: RowStride(w)}
}

// Validate checks that data holds a complete image in the supported
// subset and returns its geometry. On mismatch it returns
// ErrUnsupported wrapping one entry per failed condition; the buffer
// is left untouched either way.
func Validate(data []byte) (Info, error) {
	if len(data) < HeaderSize {
		return Info{}, ErrTooSmall
	}
	inf := geometry(data)

	var faults *multierror.Error
	fail := func(format string, args ...any) {
		faults = multierror.Append(faults, fmt.Errorf(format, args...))
	}

	if data[0] != 'B' || data[1] != 'M' {
		fail("magic is %q, want \"BM\"", data[0:2])
	}
	if inf.Width < 1 {
		fail("width %d out of range", inf.Width)
	}
	if inf.Height < 1 {
		fail("height %d out of range", inf.Height)
	}
	// Sizes are compared in 64-bit space so that a hostile header
	// cannot wrap them back into range.
	pixels := int64(inf.Height) * int64(inf.Stride)
	if got := int64(get32(data[offFileSize:])); got != HeaderSize+pixels {
		fail("file size field %d, want %d", got, HeaderSize+pixels)
	}
	if got := get32(data[offReserved:]); got != 0 {
		fail("reserved field %#x, want 0", got)
	}
	if got := get32(data[offDataOffset:]); got != HeaderSize {
		fail("pixel data offset %d, want %d", got, HeaderSize)
	}
	if got := get32(data[offDIBSize:]); got != 40 {
		fail("DIB header size %d, want 40", got)
	}
	if got := get16(data[offPlanes:]); got != 1 {
		fail("color planes %d, want 1", got)
	}
	if got := get16(data[offBPP:]); got != 24 {
		fail("bits per pixel %d, want 24", got)
	}
	if got := get32(data[offCompress:]); got != 0 {
		fail("compression method %d, want 0", got)
	}
	if got := int64(get32(data[offImageSize:])); got != pixels {
		fail("image size field %d, want %d", got, pixels)
	}
	if got := get32(data[offColors:]); got != 0 {
		fail("colors-used field %d, want 0", got)
	}
	if got := get32(data[offImportant:]); got != 0 {
		fail("important-colors field %d, want 0", got)
	}
	if got := int64(len(data)); got != HeaderSize+pixels {
		fail("buffer length %d, want %d", got, HeaderSize+pixels)
	}

	if err := faults.ErrorOrNil(); err != nil {
		return Info{}, fmt.Errorf("%w: %w", ErrUnsupported, err)
	}
	return inf, nil
}

// Neutralize validates data and subtracts the expected constant from
// every recognised header field, leaving a header of zero bytes apart
// from width, height, and the resolution fields (vertical resolution
// becomes the difference to horizontal resolution, which printers
// typically set equal). The pixel region is not touched. On validation
// failure the buffer is unchanged.
func Neutralize(data []byte) (Info, error) {
	inf, err := Validate(data)
	if err != nil {
		return Info{}, err
	}
	pixels := int32(inf.PixelBytes())

	data[0] -= 'B'
	data[1] -= 'M'
	put32(data[offFileSize:], get32(data[offFileSize:])-(pixels+HeaderSize))
	put32(data[offDataOffset:], get32(data[offDataOffset:])-HeaderSize)
	put32(data[offDIBSize:], get32(data[offDIBSize:])-40)
	put16(data[offPlanes:], get16(data[offPlanes:])-1)
	put16(data[offBPP:], get16(data[offBPP:])-24)
	put32(data[offImageSize:], get32(data[offImageSize:])-pixels)
	put32(data[offYRes:], get32(data[offYRes:])-get32(data[offXRes:]))
	return inf, nil
}

// Restore is the exact inverse of Neutralize: it checks that every
// neutralised field is zero, then adds the constants back. On any
// nonzero field it returns ErrUnsupported and leaves the buffer
// unchanged.
func Restore(data []byte) (Info, error) {
	if len(data) < HeaderSize {
		return Info{}, ErrTooSmall
	}
	inf := geometry(data)

	var faults *multierror.Error
	fail := func(format string, args ...any) {
		faults = multierror.Append(faults, fmt.Errorf(format, args...))
	}

	if data[0] != 0 || data[1] != 0 {
		fail("magic bytes %#x %#x not neutralised", data[0], data[1])
	}
	if inf.Width < 1 {
		fail("width %d out of range", inf.Width)
	}
	if inf.Height < 1 {
		fail("height %d out of range", inf.Height)
	}
	for _, f := range []struct {
		name string
		off  int
		wide bool
	}{
		{"file size", offFileSize, true},
		{"reserved", offReserved, true},
		{"pixel data offset", offDataOffset, true},
		{"DIB header size", offDIBSize, true},
		{"color planes", offPlanes, false},
		{"bits per pixel", offBPP, false},
		{"compression method", offCompress, true},
		{"image size", offImageSize, true},
		{"colors-used", offColors, true},
		{"important-colors", offImportant, true},
	} {
		var got int32
		if f.wide {
			got = get32(data[f.off:])
		} else {
			got = get16(data[f.off:])
		}
		if got != 0 {
			fail("%s field %d not neutralised", f.name, got)
		}
	}
	pixels := int64(inf.Height) * int64(inf.Stride)
	if got := int64(len(data)); got != HeaderSize+pixels {
		fail("buffer length %d, want %d", got, HeaderSize+pixels)
	}

	if err := faults.ErrorOrNil(); err != nil {
		return Info{}, fmt.Errorf("%w: %w", ErrUnsupported, err)
	}

	pix := int32(inf.PixelBytes())
	data[0] += 'B'
	data[1] += 'M'
	put32(data[offFileSize:], get32(data[offFileSize:])+(pix+HeaderSize))
	put32(data[offDataOffset:], get32(data[offDataOffset:])+HeaderSize)
	put32(data[offDIBSize:], get32(data[offDIBSize:])+40)
	put16(data[offPlanes:], get16(data[offPlanes:])+1)
	put16(data[offBPP:], get16(data[offBPP:])+24)
	put32(data[offImageSize:], get32(data[offImageSize:])+pix)
	put32(data[offYRes:], get32(data[offYRes:])+get32(data[offXRes:]))
	return inf, nil
}
