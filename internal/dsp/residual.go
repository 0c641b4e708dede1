// Package dsp holds the data-parallel transform kernels of the
// compression pipeline: the row/channel differencer with TCMS residual
// coding, and the 8×8 bit-matrix transpose. Both directions of each
// kernel partition their iteration space over a bounded set of worker
// goroutines; every iteration writes to disjoint output locations, so
// the result is byte-identical for any worker count.
package dsp

// ForwardResiduals rewrites the BGR pixel region pix (h rows of stride
// bytes, bottom-up order as stored in the file) into three channel
// planes of TCMS-coded residuals in plane, which must hold 3*w*h
// bytes. Plane k stores the residual for channel k of pixel (x, y) at
// k*w*h + y + x*h, deinterleaving the channels and transposing the row
// layout to column-major.
//
// Each pixel is first differenced against its left neighbor, the
// leftmost pixel of a row against the first pixel of the previous row
// (an implicit zero for row 0). Channels 0 and 2 are then differenced
// against channel 1, and each residual is folded to an unsigned byte
// with the sign in the least-significant bit. Rows are independent:
// the predictor for row y reads only original pixels of row y-1, so
// the row loop runs in parallel.
func ForwardResiduals(pix, plane []byte, w, h, stride, workers int) {
	parallelRange(h, workers, func(lo, hi int) {
		for y := lo; y < hi; y++ {
			forwardRow(pix, plane, w, h, stride, y)
		}
	})
}

func forwardRow(pix, plane []byte, w, h, stride, y int) {
	var p0, p1, p2 int32
	if y > 0 {
		p0 = int32(pix[(y-1)*stride+0])
		p1 = int32(pix[(y-1)*stride+1])
		p2 = int32(pix[(y-1)*stride+2])
	}
	wh := w * h
	row := pix[y*stride:]
	for x := 0; x < w; x++ {
		n0 := int32(row[x*3+0])
		n1 := int32(row[x*3+1])
		n2 := int32(row[x*3+2])

		v0 := n0 - p0
		v1 := n1 - p1
		v2 := n2 - p2
		p0, p1, p2 = n0, n1, n2

		// Channels 0 and 2 ride on channel 1; neighboring channels of
		// natural images are strongly correlated.
		v0 -= v1
		v2 -= v1

		plane[0*wh+y+x*h] = tcms(v0)
		plane[1*wh+y+x*h] = tcms(v1)
		plane[2*wh+y+x*h] = tcms(v2)
	}
}

// InverseResiduals rebuilds the pixel region from the channel planes,
// reversing ForwardResiduals, and zeroes the padding bytes of every
// row. The first pixel column is recovered serially down the rows
// (each row's predictor is the decoded first pixel of the row above,
// starting from zero); the remaining columns of each row depend only
// on that row and run in parallel.
func InverseResiduals(plane, pix []byte, w, h, stride, workers int) {
	wh := w * h

	var p0, p1, p2 int32
	for y := 0; y < h; y++ {
		v0 := itcms(plane[0*wh+y])
		v1 := itcms(plane[1*wh+y])
		v2 := itcms(plane[2*wh+y])

		v0 += v1
		v2 += v1

		v0 += p0
		v1 += p1
		v2 += p2

		pix[y*stride+0] = byte(v0)
		pix[y*stride+1] = byte(v1)
		pix[y*stride+2] = byte(v2)
		p0, p1, p2 = v0, v1, v2
	}

	parallelRange(h, workers, func(lo, hi int) {
		for y := lo; y < hi; y++ {
			inverseRow(plane, pix, w, h, stride, y)
		}
	})
}

func inverseRow(plane, pix []byte, w, h, stride, y int) {
	wh := w * h
	row := pix[y*stride:]
	p0 := int32(row[0])
	p1 := int32(row[1])
	p2 := int32(row[2])
	for x := 1; x < w; x++ {
		v0 := itcms(plane[0*wh+y+x*h])
		v1 := itcms(plane[1*wh+y+x*h])
		v2 := itcms(plane[2*wh+y+x*h])

		v0 += v1
		v2 += v1

		v0 += p0
		v1 += p1
		v2 += p2

		row[x*3+0] = byte(v0)
		row[x*3+1] = byte(v1)
		row[x*3+2] = byte(v2)
		p0, p1, p2 = v0, v1, v2
	}
	for i := w * 3; i < stride; i++ {
		row[i] = 0
	}
}

// tcms folds a residual to an unsigned byte with the sign in the
// least-significant bit: 2s for s >= 0, -2s-1 for s < 0, where s is
// the two's-complement 8-bit reading of v. Small magnitudes of either
// sign map to small bytes, concentrating zeros in the upper bits.
func tcms(v int32) byte {
	s := int32(int8(v)) // sign-extend the low 8 bits
	return byte((s << 1) ^ (s >> 31))
}

// itcms is the inverse of tcms.
func itcms(u byte) int32 {
	return int32(u>>1) ^ -int32(u&1)
}
