package lico

import (
	"fmt"
	"io"

	"github.com/deepteams/lico/internal/container"
)

// EncodeBytes compresses a BMP image into a .lico frame. The input is
// not modified.
//
// Inputs outside the supported BMP subset do not fail: they are
// compressed by zero elimination alone and the frame is marked raw
// (see Features.Raw). Decoding returns them byte-for-byte.
func EncodeBytes(data []byte, opts *Options) ([]byte, error) {
	width := opts.wordWidth()
	work := make([]byte, len(data))
	copy(work, data)

	var flags byte
	if err := Preprocess(work, opts.workers()); err != nil {
		flags |= container.FlagRaw
	}

	out, err := container.Pack(work, width, flags)
	if err != nil {
		return nil, fmt.Errorf("lico: %w", err)
	}
	return out, nil
}

// Encode reads a whole BMP image from r, compresses it, and writes the
// .lico frame to w.
func Encode(w io.Writer, r io.Reader, opts *Options) error {
	data, err := readAll(r)
	if err != nil {
		return fmt.Errorf("lico: reading input: %w", err)
	}
	frame, err := EncodeBytes(data, opts)
	if err != nil {
		return err
	}
	_, err = w.Write(frame)
	return err
}

// readAll reads all data from r. If r implements Len() int (e.g.
// *bytes.Reader), a single exact-sized allocation is used instead of
// the repeated doublings that io.ReadAll performs.
func readAll(r io.Reader) ([]byte, error) {
	if lr, ok := r.(interface{ Len() int }); ok {
		n := lr.Len()
		if n > 0 {
			data := make([]byte, n)
			_, err := io.ReadFull(r, data)
			return data, err
		}
	}
	return io.ReadAll(r)
}
