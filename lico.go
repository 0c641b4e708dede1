package lico

import (
	"errors"
	"fmt"

	"github.com/deepteams/lico/internal/bmp"
	"github.com/deepteams/lico/internal/container"
)

// Errors returned by the codec.
var (
	// ErrUnsupportedBMP reports an input outside the supported BMP
	// subset. EncodeBytes never returns it (such inputs become raw
	// frames); it surfaces from Preprocess and from decoding a frame
	// whose payload does not restore to a neutralised header.
	ErrUnsupportedBMP = errors.New("lico: not a supported BMP image")

	// ErrInvalidFrame reports a buffer that is not a valid .lico frame.
	ErrInvalidFrame = errors.New("lico: invalid frame")
)

// DefaultWordWidth is the zero-elimination word width used when
// Options.WordWidth is zero.
const DefaultWordWidth = 8

// Options configures encoding and decoding. The zero value selects
// sensible defaults.
type Options struct {
	// WordWidth is the zero-elimination word width in bytes: 1, 2, 4,
	// or 8. Zero means DefaultWordWidth. Wider words eliminate zeros
	// in larger chunks and scan faster; narrower words catch isolated
	// zero bytes a wide word would keep. Decoding reads the width from
	// the frame, so the field only affects encoding.
	WordWidth int

	// Workers caps the number of goroutines used by the data-parallel
	// stages. Zero or negative means one per available CPU. The output
	// is byte-identical for every worker count.
	Workers int
}

func (o *Options) wordWidth() int {
	if o == nil || o.WordWidth == 0 {
		return DefaultWordWidth
	}
	return o.WordWidth
}

func (o *Options) workers() int {
	if o == nil {
		return 0
	}
	return o.Workers
}

// Features describes a .lico frame without decoding its payload.
type Features struct {
	WordWidth   int  // zero-elimination word width in bytes
	Raw         bool // true when the BMP preprocessing stages were skipped
	DecodedLen  int  // byte length of the decoded output
	DenseWords  int  // nonzero words kept in the payload
	BitmapWords int  // bitmap words in the payload
}

// Info parses the header of a .lico frame. The frame's payload
// sections are length-checked but not expanded.
func Info(data []byte) (Features, error) {
	h, err := container.ParseHeader(data)
	if err != nil {
		return Features{}, fmt.Errorf("%w: %w", ErrInvalidFrame, err)
	}
	return Features{
		WordWidth:   h.WordWidth,
		Raw:         h.Flags&container.FlagRaw != 0,
		DecodedLen:  h.RawLen,
		DenseWords:  h.DenseWords,
		BitmapWords: h.BitmapWords(),
	}, nil
}

// IsSupportedBMP reports whether data is a complete BMP image in the
// subset the preprocessing pipeline accepts: 24 bits per pixel,
// uncompressed, single color plane, 54-byte header, with consistent
// size fields.
func IsSupportedBMP(data []byte) bool {
	_, err := bmp.Validate(data)
	return err == nil
}
