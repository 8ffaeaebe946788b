//go:build windows

package webgpu

import (
	"sync"

	"github.com/go-webgpu/webgpu/wgpu"
)

// sizeClass groups pooled buffers by byte size.
type sizeClass int

const (
	smallClass  sizeClass = iota // < 4KB, one or two rows
	mediumClass                  // 4KB-1MB
	largeClass                   // whole images
)

const (
	smallThreshold  = 4 * 1024
	mediumThreshold = 1024 * 1024
	maxPoolSize     = 16 // per class
)

type pooledBuffer struct {
	buffer *wgpu.Buffer
	size   uint64
	usage  wgpu.BufferUsage
}

// bufferPool recycles the transient buffers a device needs around its
// image allocations: readback staging buffers and aliasing scratch space.
// Image allocations themselves are never pooled.
type bufferPool struct {
	device *wgpu.Device

	mu      sync.Mutex
	classes [3][]*pooledBuffer

	created uint64
	hits    uint64
}

func newBufferPool(device *wgpu.Device) *bufferPool {
	return &bufferPool{device: device}
}

// acquire returns a buffer of at least size bytes with all usage flags set.
func (p *bufferPool) acquire(size uint64, usage wgpu.BufferUsage) *wgpu.Buffer {
	p.mu.Lock()
	defer p.mu.Unlock()

	c := classify(size)
	for i, pb := range p.classes[c] {
		if pb.size >= size && pb.usage&usage == usage {
			p.classes[c] = append(p.classes[c][:i], p.classes[c][i+1:]...)
			p.hits++
			return pb.buffer
		}
	}

	p.created++
	return p.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: usage,
		Size:  size,
	})
}

// release hands a buffer back, or frees it if its class is full.
func (p *bufferPool) release(buffer *wgpu.Buffer, size uint64, usage wgpu.BufferUsage) {
	p.mu.Lock()
	defer p.mu.Unlock()

	c := classify(size)
	if len(p.classes[c]) >= maxPoolSize {
		buffer.Release()
		return
	}
	p.classes[c] = append(p.classes[c], &pooledBuffer{buffer: buffer, size: size, usage: usage})
}

// clear frees every pooled buffer.
func (p *bufferPool) clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for c := range p.classes {
		for _, pb := range p.classes[c] {
			pb.buffer.Release()
		}
		p.classes[c] = p.classes[c][:0]
	}
}

// stats returns buffers created, pool hits and buffers currently pooled.
func (p *bufferPool) stats() (created, hits uint64, pooled int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, c := range p.classes {
		pooled += len(c)
	}
	return p.created, p.hits, pooled
}

func classify(size uint64) sizeClass {
	switch {
	case size < smallThreshold:
		return smallClass
	case size < mediumThreshold:
		return mediumClass
	default:
		return largeClass
	}
}
