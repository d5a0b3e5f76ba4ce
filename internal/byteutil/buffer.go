// Package byteutil pools the scratch buffers used when encoding plan records.
package byteutil

import (
	"bytes"
	"sync"
)

// maxPooledCap keeps buffers grown by unusually large plans out of the pool.
const maxPooledCap = 1 << 20

var bytesBuffer = sync.Pool{
	New: func() interface{} { return &bytes.Buffer{} },
}

// GetBytesBuf returns an empty buffer.
func GetBytesBuf() *bytes.Buffer {
	return bytesBuffer.Get().(*bytes.Buffer)
}

// PutBytesBuf resets p and hands it back to the pool.
func PutBytesBuf(p *bytes.Buffer) {
	if p == nil || p.Cap() > maxPooledCap {
		return
	}
	p.Reset()
	bytesBuffer.Put(p)
}
