package http

import "sync"

// Request buffers come from size-class pools so that handlers configured with
// different read_buffer_size values still share memory across connections.
// Sizes above the largest class are allocated directly and never pooled.
const (
	smallBufferSize  = 4 << 10  // default request read
	mediumBufferSize = 16 << 10 // long query strings, large cookies
	largeBufferSize  = 64 << 10
)

// bufferPool hands out byte slices of at least the requested size.
type bufferPool struct {
	small  sync.Pool
	medium sync.Pool
	large  sync.Pool
}

func newBufferPool() *bufferPool {
	sized := func(n int) func() any {
		return func() any {
			buf := make([]byte, n)
			return &buf
		}
	}
	return &bufferPool{
		small:  sync.Pool{New: sized(smallBufferSize)},
		medium: sync.Pool{New: sized(mediumBufferSize)},
		large:  sync.Pool{New: sized(largeBufferSize)},
	}
}

// readBuffers is shared by every Handler in the process.
var readBuffers = newBufferPool()

// Get returns a slice of exactly size bytes, backed by a pooled buffer when
// one of the size classes fits. The caller must Put it back when done.
func (p *bufferPool) Get(size int) []byte {
	var bufPtr *[]byte

	switch {
	case size <= smallBufferSize:
		bufPtr = p.small.Get().(*[]byte)
	case size <= mediumBufferSize:
		bufPtr = p.medium.Get().(*[]byte)
	case size <= largeBufferSize:
		bufPtr = p.large.Get().(*[]byte)
	default:
		return make([]byte, size)
	}

	return (*bufPtr)[:size]
}

// Put returns buf to the pool matching its capacity. Buffers that do not
// belong to a size class are left to the GC.
func (p *bufferPool) Put(buf []byte) {
	if buf == nil {
		return
	}

	full := buf[:cap(buf)]
	switch cap(buf) {
	case smallBufferSize:
		p.small.Put(&full)
	case mediumBufferSize:
		p.medium.Put(&full)
	case largeBufferSize:
		p.large.Put(&full)
	}
}
