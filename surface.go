package main

import (
	"deedles.dev/taki/internal/gpu"
	"deedles.dev/taki/internal/util"
	"deedles.dev/taki/protocol"
	"deedles.dev/taki/wire"
	"deedles.dev/ximage/geom"
	"github.com/sirupsen/logrus"
)

type surfaceRole int

const (
	roleNone surfaceRole = iota
	roleToplevel
	rolePopup
)

// SurfaceState is one side of the double buffer. Fields become
// observable only when a commit promotes pending to current.
type SurfaceState struct {
	buffer    *Buffer
	hasBuffer bool

	frame    uint32
	hasFrame bool

	geometry    geom.Rect[int32]
	hasGeometry bool

	damaged   bool
	scale     int32
	transform int32
	offset    geom.Point[int32]
}

// Surface is a window-content carrier. It shares ownership with its
// role object; the role holds a back-pointer that is nulled when
// either side goes away.
type Surface struct {
	server *Server
	client *Client
	id     uint32

	pending SurfaceState
	current SurfaceState

	role          surfaceRole
	xdg           *XDGSurface
	initialCommit bool

	// image is the committed contents, owned by the surface.
	image gpu.Image
	// currentBuffer is set for dmabuf contents whose release is
	// deferred until the GPU lets go of the image.
	currentBuffer *Buffer

	// frames are the armed frame callbacks, fired after the next
	// output frame that includes this surface.
	frames []uint32
}

func bindCompositor(c *Client, obj *Object) {}

func compositorCreateSurface(c *Client, obj *Object, r *wire.Reader) error {
	id, err := r.NewIDFixed()
	if err != nil {
		return err
	}

	s := Surface{
		server:        c.server,
		client:        c,
		id:            id,
		initialCommit: true,
		pending:       SurfaceState{scale: 1},
		current:       SurfaceState{scale: 1},
	}
	if _, err := c.newObject(id, protocol.Surface, obj.Version, &s); err != nil {
		return err
	}

	c.server.surfaces = append(c.server.surfaces, &s)
	return nil
}

func compositorCreateRegion(c *Client, obj *Object, r *wire.Reader) error {
	id, err := r.NewIDFixed()
	if err != nil {
		return err
	}
	_, err = c.newObject(id, protocol.Region, obj.Version, &Region{})
	return err
}

// Region is tracked but otherwise opaque: damage and input regions
// do not affect composition yet.
type Region struct{}

func regionDestroy(c *Client, obj *Object, r *wire.Reader) error {
	c.destroyObject(obj.ID)
	return nil
}

func regionAdd(c *Client, obj *Object, r *wire.Reader) error {
	for range 4 {
		if _, err := r.Int(); err != nil {
			return err
		}
	}
	return nil
}

func regionSubtract(c *Client, obj *Object, r *wire.Reader) error {
	return regionAdd(c, obj, r)
}

func surfaceData(obj *Object) *Surface {
	return obj.Data.(*Surface)
}

func surfaceDestroy(c *Client, obj *Object, r *wire.Reader) error {
	surfaceData(obj).destroy()
	c.destroyObject(obj.ID)
	return nil
}

func surfaceAttach(c *Client, obj *Object, r *wire.Reader) error {
	s := surfaceData(obj)

	bufferID, err := r.Object()
	if err != nil {
		return err
	}
	x, err := r.Int()
	if err != nil {
		return err
	}
	y, err := r.Int()
	if err != nil {
		return err
	}

	s.pending.hasBuffer = true
	s.pending.buffer = nil
	s.pending.offset = geom.Pt(x, y)

	if bufferID != 0 {
		bobj, err := c.objects.lookup(bufferID, protocol.Buffer)
		if err != nil {
			return err
		}
		s.pending.buffer = bobj.Data.(*Buffer)
	}
	return nil
}

func surfaceDamage(c *Client, obj *Object, r *wire.Reader) error {
	for range 4 {
		if _, err := r.Int(); err != nil {
			return err
		}
	}
	surfaceData(obj).pending.damaged = true
	return nil
}

func surfaceFrame(c *Client, obj *Object, r *wire.Reader) error {
	s := surfaceData(obj)

	id, err := r.NewIDFixed()
	if err != nil {
		return err
	}
	if _, err := c.newObject(id, protocol.Callback, 1, nil); err != nil {
		return err
	}

	if s.pending.hasFrame {
		// The old callback can never fire; drop it.
		c.destroyObject(s.pending.frame)
	}
	s.pending.frame = id
	s.pending.hasFrame = true
	return nil
}

func surfaceSetOpaqueRegion(c *Client, obj *Object, r *wire.Reader) error {
	return surfaceRegionArg(c, r)
}

func surfaceSetInputRegion(c *Client, obj *Object, r *wire.Reader) error {
	return surfaceRegionArg(c, r)
}

func surfaceRegionArg(c *Client, r *wire.Reader) error {
	id, err := r.Object()
	if err != nil {
		return err
	}
	if id == 0 {
		return nil
	}
	_, err = c.objects.lookup(id, protocol.Region)
	return err
}

func surfaceCommit(c *Client, obj *Object, r *wire.Reader) error {
	return surfaceData(obj).commit()
}

func surfaceSetBufferTransform(c *Client, obj *Object, r *wire.Reader) error {
	v, err := r.Int()
	if err != nil {
		return err
	}
	surfaceData(obj).pending.transform = v
	return nil
}

func surfaceSetBufferScale(c *Client, obj *Object, r *wire.Reader) error {
	v, err := r.Int()
	if err != nil {
		return err
	}
	if v < 1 {
		return protocolErrorf(protocol.DisplayErrorInvalidMethod, "buffer scale %v", v)
	}
	surfaceData(obj).pending.scale = v
	return nil
}

func surfaceDamageBuffer(c *Client, obj *Object, r *wire.Reader) error {
	return surfaceDamage(c, obj, r)
}

func surfaceOffset(c *Client, obj *Object, r *wire.Reader) error {
	x, err := r.Int()
	if err != nil {
		return err
	}
	y, err := r.Int()
	if err != nil {
		return err
	}
	surfaceData(obj).pending.offset = geom.Pt(x, y)
	return nil
}

// commit atomically promotes pending state to current.
func (s *Surface) commit() error {
	if s.initialCommit && s.xdg != nil && s.role != roleNone {
		s.initialCommit = false
		s.xdg.sendInitialConfigure()
		// Content stays parked in pending until the configure
		// round-trip; the client commits again after acking.
		return nil
	}

	if s.pending.hasBuffer {
		s.applyBuffer()
	}

	if s.pending.hasGeometry {
		g := s.pending.geometry.Canon()
		if g.Dx() > 0 && g.Dy() > 0 {
			s.current.geometry = g
			s.current.hasGeometry = true
		} else {
			logrus.WithField("surface", s.id).Warnf("discarding degenerate geometry %vx%v", g.Dx(), g.Dy())
		}
		s.pending.hasGeometry = false
	}

	if s.pending.hasFrame {
		s.frames = append(s.frames, s.pending.frame)
		s.pending.frame = 0
		s.pending.hasFrame = false
	}

	s.current.scale = s.pending.scale
	s.current.transform = s.pending.transform
	s.current.offset = s.pending.offset
	s.current.damaged = s.current.damaged || s.pending.damaged
	s.pending.damaged = false

	s.server.damaged()
	return nil
}

// applyBuffer turns the pending buffer reference into committed
// contents.
func (s *Surface) applyBuffer() {
	b := s.pending.buffer
	s.pending.buffer = nil
	s.pending.hasBuffer = false

	switch {
	case b == nil:
		s.clearContents()

	case b.destroyed:
		logrus.WithField("surface", s.id).Warn("pending buffer was destroyed before commit")
		s.clearContents()

	case b.dma:
		if b.image == nil {
			logrus.WithField("surface", s.id).Warn("dmabuf buffer has no image, presenting empty")
			s.clearContents()
			return
		}
		s.replaceContents(b.image, b)
		b.image = nil

	default:
		img, err := b.realizeShm(s.server.gpu)
		if err != nil {
			logrus.WithError(err).WithField("surface", s.id).Error("upload shm buffer")
			s.clearContents()
			return
		}
		s.replaceContents(img, nil)
		b.release()
	}
}

func (s *Surface) replaceContents(img gpu.Image, dma *Buffer) {
	s.dropContents()
	s.image = img
	s.currentBuffer = dma
}

func (s *Surface) clearContents() {
	s.dropContents()
}

// dropContents destroys the committed image and, for dmabuf
// contents, releases the client buffer now that the GPU is done
// with it.
func (s *Surface) dropContents() {
	if s.image != nil {
		s.server.gpu.DestroyImage(s.image)
		s.image = nil
	}
	if s.currentBuffer != nil {
		s.currentBuffer.release()
		s.currentBuffer = nil
	}
}

// destroy tears the surface down and severs every back-reference.
func (s *Surface) destroy() {
	s.dropContents()
	if s.xdg != nil {
		s.xdg.surface = nil
		s.xdg = nil
	}
	s.server.seat.surfaceGone(s)
	s.server.surfaces = util.Remove(s.server.surfaces, s)
}

// fireFrames delivers and retires the armed frame callbacks.
func (s *Surface) fireFrames(timeMs uint32) {
	for _, id := range s.frames {
		s.client.event(id, protocol.CallbackEventDone, func(w *wire.Writer) {
			w.PutUint(timeMs)
		})
		s.client.destroyObject(id)
	}
	s.frames = s.frames[:0]
}
