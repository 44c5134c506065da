package frame

import (
	"github.com/xaionaro-go/pinflow/pool"
)

// Buffer is a pooled byte buffer used by the stock payloads.
type Buffer struct {
	Data []byte
}

var bufferPool = pool.NewPool(
	func() *Buffer { return &Buffer{} },
	func(b *Buffer) { b.Data = b.Data[:0] },
	nil,
)

// GetBuffer returns a buffer of the given length (the content is undefined).
func GetBuffer(size int) *Buffer {
	b := bufferPool.Get()
	if cap(b.Data) < size {
		b.Data = make([]byte, size)
	}
	b.Data = b.Data[:size]
	return b
}

// CloneBuffer returns a pooled copy of b.
func CloneBuffer(b *Buffer) *Buffer {
	if b == nil {
		return nil
	}
	cpy := GetBuffer(len(b.Data))
	copy(cpy.Data, b.Data)
	return cpy
}

func (b *Buffer) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Data)
}

// Release returns the buffer to the pool; b must not be used afterwards.
func (b *Buffer) Release() {
	if b == nil {
		return
	}
	bufferPool.Put(b)
}
