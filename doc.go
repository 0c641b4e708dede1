// Package lico provides a fast, lossless compressor and decompressor
// for 24-bit uncompressed BMP images.
//
// The compressor is a short pipeline of exactly invertible transforms
// that reshape raw BGR pixel data into a buffer dominated by zero
// bytes, followed by a zero-elimination stage that drops the zeros
// while recording their positions in a bitmap. There is no entropy
// coder: the pipeline does all the work, which keeps both directions
// fast and data-parallel.
//
// The stages, in encode order:
//   - header neutralisation: the constants every conforming BMP header
//     carries are subtracted away, leaving mostly zero bytes
//   - inter-row and inter-channel differencing with TCMS residual
//     coding, deinterleaving the channels into column-major planes
//   - an 8×8 bit-matrix transpose that gathers equal bit positions of
//     neighboring residuals into whole bytes
//   - zero elimination over the entire buffer
//
// Basic usage:
//
//	frame, err := lico.EncodeBytes(bmpData, nil)
//	...
//	bmpData, err = lico.DecodeBytes(frame, nil)
//
// Inputs outside the supported BMP subset (anything but 24 bpp,
// uncompressed, single-plane, 54-byte header) are still compressed,
// through zero elimination alone; the frame records this and decoding
// returns the input byte-for-byte.
package lico
