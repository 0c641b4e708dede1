package lico

import (
	"fmt"

	"github.com/deepteams/lico/internal/bmp"
	"github.com/deepteams/lico/internal/dsp"
	"github.com/deepteams/lico/internal/pool"
)

// Preprocess runs the BMP preprocessing pipeline in place: header
// neutralisation, then residual coding of the pixel region, then the
// 8×8 bit transpose. The buffer keeps its length; afterwards it is
// dominated by zero bytes and ready for zero elimination.
//
// If data is not in the supported BMP subset the buffer is left
// unchanged and an error wrapping ErrUnsupportedBMP is returned.
func Preprocess(data []byte, workers int) error {
	inf, err := bmp.Neutralize(data)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnsupportedBMP, err)
	}

	pix := data[bmp.HeaderSize:]
	n := inf.PlaneBytes() * 3
	plane := pool.Get(n)
	defer pool.Put(plane)

	dsp.ForwardResiduals(pix, plane, inf.Width, inf.Height, inf.Stride, workers)
	dsp.TransposeBits(plane, pix[:n], workers)

	// Row padding was folded away by the residual stage; the tail of
	// the pixel region holds stale bytes now.
	clear(pix[n:])
	return nil
}

// Restore reverses Preprocess in place: header restoration (which
// checks the neutralised header first), then inverse bit transpose and
// inverse residual coding (which zeroes the row padding). The buffer
// must hold exactly the neutralised form
// Preprocess produced; otherwise it is left unchanged and an error
// wrapping ErrUnsupportedBMP is returned.
func Restore(data []byte, workers int) error {
	inf, err := bmp.Restore(data)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnsupportedBMP, err)
	}

	pix := data[bmp.HeaderSize:]
	n := inf.PlaneBytes() * 3
	plane := pool.Get(n)
	defer pool.Put(plane)

	dsp.UntransposeBits(pix[:n], plane, workers)
	dsp.InverseResiduals(plane, pix, inf.Width, inf.Height, inf.Stride, workers)
	return nil
}
