// Package pool provides bucketed sync.Pool instances for the scratch
// buffers of the compression pipeline, chiefly the channel-plane
// region shared by the residual and bit-transpose stages. Buffers are
// organized by size class to minimize waste.
package pool

import "sync"

// Size classes for bucketed pools. The channel-plane scratch for a
// W×H image needs 3*W*H bytes, so the classes run from icon-sized
// images up to several megapixels; anything larger is allocated
// directly and dropped on Put.
const (
	Size4K  = 4096
	Size64K = 65536
	Size1M  = 1 << 20
	Size16M = 1 << 24
)

var sizes = [4]int{Size4K, Size64K, Size1M, Size16M}

var pools [4]sync.Pool

func init() {
	for i := range pools {
		sz := sizes[i]
		pools[i] = sync.Pool{
			New: func() any {
				b := make([]byte, sz)
				return &b
			},
		}
	}
}

// bucketIndex returns the pool index for a given size, or -1 when the
// size exceeds every class.
func bucketIndex(size int) int {
	for i, sz := range sizes {
		if size <= sz {
			return i
		}
	}
	return -1
}

// Get returns a byte slice of exactly the requested length, pooled
// when a size class covers it. Contents are unspecified. The caller
// must call Put when done.
func Get(size int) []byte {
	idx := bucketIndex(size)
	if idx < 0 {
		return make([]byte, size)
	}
	bp := pools[idx].Get().(*[]byte)
	b := *bp
	if cap(b) < size {
		b = make([]byte, sizes[idx])
	}
	return b[:size]
}

// Put returns a byte slice obtained from Get to its pool. Slices
// larger than the largest size class are left to the garbage
// collector.
func Put(b []byte) {
	c := cap(b)
	idx := bucketIndex(c)
	if idx < 0 {
		return
	}
	b = b[:c]
	pools[idx].Put(&b)
}
