package main

import (
	"fmt"

	"deedles.dev/taki/internal/gpu"
	"deedles.dev/taki/protocol"
	"deedles.dev/taki/wire"
	"deedles.dev/ximage/geom"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// ShmPool is a client's mmap'd shared memory. Buffers keep it alive
// after the protocol object is destroyed; the mapping goes away with
// the last reference.
type ShmPool struct {
	fd   int
	data []byte
	size int32

	refs      int
	destroyed bool
}

// Buffer is client pixel storage, shared-memory or dmabuf. The
// struct outlives the protocol object so that a surface's committed
// state can still refer to it.
type Buffer struct {
	client    *Client
	id        uint32
	destroyed bool

	// shm view
	pool   *ShmPool
	offset int32
	stride int32
	size   geom.Point[int32]
	format uint32

	// dmabuf
	dma   bool
	image gpu.Image
}

func bindShm(c *Client, obj *Object) {
	for _, format := range []uint32{protocol.ShmFormatXRGB8888, protocol.ShmFormatARGB8888} {
		c.event(obj.ID, protocol.ShmEventFormat, func(w *wire.Writer) {
			w.PutUint(format)
		})
	}
}

func shmCreatePool(c *Client, obj *Object, r *wire.Reader) error {
	id, err := r.NewIDFixed()
	if err != nil {
		return err
	}
	fd, err := r.FD()
	if err != nil {
		return err
	}
	size, err := r.Int()
	if err != nil {
		unix.Close(fd)
		return err
	}
	if size <= 0 {
		unix.Close(fd)
		return protocolErrorf(protocol.ShmErrorInvalidFD, "pool size %v", size)
	}

	data, err := unix.Mmap(fd, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		unix.Close(fd)
		return protocolErrorf(protocol.ShmErrorInvalidFD, "mmap pool: %v", err)
	}

	pool := ShmPool{fd: fd, data: data, size: size, refs: 1}
	if _, err := c.newObject(id, protocol.ShmPool, obj.Version, &pool); err != nil {
		pool.refs = 0
		pool.unmap()
		return err
	}
	return nil
}

func poolData(obj *Object) *ShmPool {
	return obj.Data.(*ShmPool)
}

func shmPoolCreateBuffer(c *Client, obj *Object, r *wire.Reader) error {
	pool := poolData(obj)

	id, err := r.NewIDFixed()
	if err != nil {
		return err
	}
	offset, err := r.Int()
	if err != nil {
		return err
	}
	width, err := r.Int()
	if err != nil {
		return err
	}
	height, err := r.Int()
	if err != nil {
		return err
	}
	stride, err := r.Int()
	if err != nil {
		return err
	}
	format, err := r.Uint()
	if err != nil {
		return err
	}

	if format != protocol.ShmFormatXRGB8888 && format != protocol.ShmFormatARGB8888 {
		return protocolErrorf(protocol.ShmErrorInvalidFormat, "unsupported shm format %v", format)
	}
	if width <= 0 || height <= 0 || offset < 0 || stride < width*4 {
		return protocolErrorf(protocol.ShmErrorInvalidStride,
			"bad buffer parameters: %vx%v stride %v offset %v", width, height, stride, offset)
	}
	if int64(stride)*int64(height)+int64(offset) > int64(pool.size) {
		return protocolErrorf(protocol.ShmErrorInvalidStride,
			"buffer needs %v bytes, pool has %v", int64(stride)*int64(height)+int64(offset), pool.size)
	}

	buffer := Buffer{
		client: c,
		id:     id,
		pool:   pool,
		offset: offset,
		stride: stride,
		size:   geom.Pt(width, height),
		format: format,
	}
	if _, err := c.newObject(id, protocol.Buffer, obj.Version, &buffer); err != nil {
		return err
	}
	pool.refs++
	return nil
}

func shmPoolDestroy(c *Client, obj *Object, r *wire.Reader) error {
	poolData(obj).unref()
	c.destroyObject(obj.ID)
	return nil
}

func shmPoolResize(c *Client, obj *Object, r *wire.Reader) error {
	pool := poolData(obj)

	size, err := r.Int()
	if err != nil {
		return err
	}
	if size < pool.size {
		return protocolErrorf(protocol.ShmErrorInvalidFD, "pool shrink from %v to %v", pool.size, size)
	}

	data, err := unix.Mmap(pool.fd, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return protocolErrorf(protocol.ShmErrorInvalidFD, "remap pool: %v", err)
	}
	unix.Munmap(pool.data)
	pool.data = data
	pool.size = size
	return nil
}

func (pool *ShmPool) unref() {
	if pool.destroyed {
		return
	}
	pool.refs--
	if pool.refs <= 0 {
		pool.destroyed = true
		pool.unmap()
	}
}

func (pool *ShmPool) unmap() {
	if pool.data != nil {
		unix.Munmap(pool.data)
		pool.data = nil
	}
	if pool.fd >= 0 {
		unix.Close(pool.fd)
		pool.fd = -1
	}
}

// realizeShm copies the pool bytes into a fresh GPU image.
func (b *Buffer) realizeShm(g gpu.Context) (gpu.Image, error) {
	end := int64(b.offset) + int64(b.stride)*int64(b.size.Y)
	if b.pool == nil || b.pool.data == nil || end > int64(len(b.pool.data)) {
		return nil, fmt.Errorf("shm buffer escapes its pool")
	}
	return g.CreateImage(b.size, b.stride, b.pool.data[b.offset:end])
}

// release tells the client the storage is reusable. Safe to call on
// a destroyed buffer; there is nobody left to tell.
func (b *Buffer) release() {
	if b.destroyed {
		return
	}
	b.client.event(b.id, protocol.BufferEventRelease, func(w *wire.Writer) {})
}

// destroy is both the protocol destructor and the teardown path.
func (b *Buffer) destroy() {
	if b.destroyed {
		return
	}
	b.destroyed = true
	if b.pool != nil {
		b.pool.unref()
		b.pool = nil
	}
	if b.image != nil {
		b.client.server.gpu.DestroyImage(b.image)
		b.image = nil
	}
}

func bufferDestroy(c *Client, obj *Object, r *wire.Reader) error {
	b := obj.Data.(*Buffer)
	b.destroy()
	c.destroyObject(obj.ID)
	logrus.WithField("buffer", obj.ID).Trace("buffer destroyed")
	return nil
}
