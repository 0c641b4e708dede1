package bmp

// Little-endian field accessors over the 54-byte header. All arithmetic
// on header fields is two's-complement 32-bit; get32 reads a signed
// int32, get16 zero-extends its 16-bit field into int32, and writes
// discard the overflow bits, so neutralisation stays exactly invertible
// even when a field wraps.

func get16(p []byte) int32 {
	return int32(p[0]) | int32(p[1])<<8
}

func get32(p []byte) int32 {
	return int32(p[0]) | int32(p[1])<<8 | int32(p[2])<<16 | int32(p[3])<<24
}

func put16(p []byte, v int32) {
	p[0] = byte(v)
	p[1] = byte(v >> 8)
}

func put32(p []byte, v int32) {
	p[0] = byte(v)
	p[1] = byte(v >> 8)
	p[2] = byte(v >> 16)
	p[3] = byte(v >> 24)
}
