package lico

import (
	"fmt"
	"io"

	"github.com/deepteams/lico/internal/container"
)

// DecodeBytes expands a .lico frame back to the original bytes. For a
// frame holding a preprocessed BMP image the full inverse pipeline
// runs; for a raw frame only zero elimination is reversed.
func DecodeBytes(data []byte, opts *Options) ([]byte, error) {
	h, buf, err := container.Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFrame, err)
	}
	if h.Flags&container.FlagRaw == 0 {
		if err := Restore(buf, opts.workers()); err != nil {
			// The frame parsed but its payload does not restore to a
			// neutralised BMP header: corruption, not a format miss.
			return nil, fmt.Errorf("%w: %w", ErrInvalidFrame, err)
		}
	}
	return buf, nil
}

// Decode reads a whole .lico frame from r, expands it, and writes the
// original bytes to w.
func Decode(w io.Writer, r io.Reader, opts *Options) error {
	data, err := readAll(r)
	if err != nil {
		return fmt.Errorf("lico: reading input: %w", err)
	}
	out, err := DecodeBytes(data, opts)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}
