package main

import (
	"deedles.dev/taki/internal/drm"
	"deedles.dev/taki/internal/gpu"
	"deedles.dev/taki/internal/shmfile"
	"deedles.dev/taki/protocol"
	"deedles.dev/taki/wire"
	"deedles.dev/ximage/geom"
	"github.com/adrg/xdg"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// dmabufFormats is the advertised format/modifier matrix: linear
// XRGB and ARGB, nothing clever.
var dmabufFormats = []struct {
	format   uint32
	modifier uint64
}{
	{drm.FormatXRGB8888, drm.ModifierLinear},
	{drm.FormatARGB8888, drm.ModifierLinear},
}

func bindDmabuf(c *Client, obj *Object) {
	if obj.Version >= 4 {
		// v4 clients learn formats through feedback objects.
		return
	}
	for _, f := range dmabufFormats {
		c.event(obj.ID, protocol.DmabufEventFormat, func(w *wire.Writer) {
			w.PutUint(f.format)
		})
		if obj.Version >= 3 {
			c.event(obj.ID, protocol.DmabufEventModifier, func(w *wire.Writer) {
				w.PutUint(f.format)
				w.PutUint(uint32(f.modifier >> 32))
				w.PutUint(uint32(f.modifier))
			})
		}
	}
}

func dmabufDestroy(c *Client, obj *Object, r *wire.Reader) error {
	c.destroyObject(obj.ID)
	return nil
}

// BufferParams accumulates planes until a create request imports
// them. A params object is single-use.
type BufferParams struct {
	planes map[uint32]gpu.DmabufPlane
	used   bool
}

func dmabufCreateParams(c *Client, obj *Object, r *wire.Reader) error {
	id, err := r.NewIDFixed()
	if err != nil {
		return err
	}
	_, err = c.newObject(id, protocol.DmabufParams, obj.Version, &BufferParams{
		planes: make(map[uint32]gpu.DmabufPlane),
	})
	return err
}

func paramsData(obj *Object) *BufferParams {
	return obj.Data.(*BufferParams)
}

func dmabufParamsDestroy(c *Client, obj *Object, r *wire.Reader) error {
	paramsData(obj).dispose()
	c.destroyObject(obj.ID)
	return nil
}

func (params *BufferParams) dispose() {
	for _, plane := range params.planes {
		unix.Close(plane.FD)
	}
	params.planes = nil
}

func dmabufParamsAdd(c *Client, obj *Object, r *wire.Reader) error {
	params := paramsData(obj)

	fd, err := r.FD()
	if err != nil {
		return err
	}
	planeIdx, err := r.Uint()
	if err != nil {
		unix.Close(fd)
		return err
	}
	offset, err := r.Uint()
	if err != nil {
		unix.Close(fd)
		return err
	}
	stride, err := r.Uint()
	if err != nil {
		unix.Close(fd)
		return err
	}
	modHi, err := r.Uint()
	if err != nil {
		unix.Close(fd)
		return err
	}
	modLo, err := r.Uint()
	if err != nil {
		unix.Close(fd)
		return err
	}

	if params.used {
		unix.Close(fd)
		return protocolErrorf(protocol.DmabufParamsErrorAlreadyUsed, "params already used")
	}
	if planeIdx >= 4 {
		unix.Close(fd)
		return protocolErrorf(protocol.DmabufParamsErrorPlaneIdx, "plane index %v", planeIdx)
	}
	if _, ok := params.planes[planeIdx]; ok {
		unix.Close(fd)
		return protocolErrorf(protocol.DmabufParamsErrorPlaneSet, "plane %v already set", planeIdx)
	}

	params.planes[planeIdx] = gpu.DmabufPlane{
		FD:       fd,
		Offset:   offset,
		Stride:   stride,
		Modifier: uint64(modHi)<<32 | uint64(modLo),
	}
	return nil
}

func dmabufParamsCreate(c *Client, obj *Object, r *wire.Reader) error {
	buffer, err := dmabufImport(c, obj, r)
	if err != nil {
		return err
	}

	if buffer == nil {
		c.event(obj.ID, protocol.DmabufParamsEventFailed, func(w *wire.Writer) {})
		return nil
	}

	bObj := c.newServerObject(protocol.Buffer, 1, buffer)
	buffer.id = bObj.ID
	c.event(obj.ID, protocol.DmabufParamsEventCreated, func(w *wire.Writer) {
		w.PutUint(bObj.ID)
	})
	return nil
}

func dmabufParamsCreateImmed(c *Client, obj *Object, r *wire.Reader) error {
	id, err := r.NewIDFixed()
	if err != nil {
		return err
	}
	buffer, err := dmabufImport(c, obj, r)
	if err != nil {
		return err
	}

	if buffer == nil {
		// Import failure with create_immed leaves the buffer
		// attachable but empty; the surface will log and
		// present nothing.
		buffer = &Buffer{client: c, dma: true}
	}
	buffer.id = id
	_, err = c.newObject(id, protocol.Buffer, 1, buffer)
	return err
}

// dmabufImport consumes the trailing (width, height, format, flags)
// arguments and performs the import. A nil, nil return is a resource
// failure: logged, not fatal.
func dmabufImport(c *Client, obj *Object, r *wire.Reader) (*Buffer, error) {
	params := paramsData(obj)

	width, err := r.Int()
	if err != nil {
		return nil, err
	}
	height, err := r.Int()
	if err != nil {
		return nil, err
	}
	format, err := r.Uint()
	if err != nil {
		return nil, err
	}
	flags, err := r.Uint()
	if err != nil {
		return nil, err
	}

	if params.used {
		return nil, protocolErrorf(protocol.DmabufParamsErrorAlreadyUsed, "params already used")
	}
	params.used = true

	if width <= 0 || height <= 0 {
		return nil, protocolErrorf(protocol.DmabufParamsErrorInvalidDimensions, "%vx%v buffer", width, height)
	}
	if len(params.planes) == 0 {
		return nil, protocolErrorf(protocol.DmabufParamsErrorIncomplete, "no planes added")
	}

	planes := make([]gpu.DmabufPlane, 0, len(params.planes))
	for i := range uint32(len(params.planes)) {
		plane, ok := params.planes[i]
		if !ok {
			return nil, protocolErrorf(protocol.DmabufParamsErrorIncomplete, "plane %v missing", i)
		}
		planes = append(planes, plane)
	}

	img, err := c.server.gpu.ImportDmabuf(gpu.DmabufParams{
		Size:   geom.Pt(width, height),
		Format: format,
		Flags:  flags,
		Planes: planes,
	})
	if err != nil {
		logrus.WithError(err).Error("dmabuf import")
		return nil, nil
	}

	// The image enters service in the general layout.
	cmd := c.server.gpu.BeginCommands()
	c.server.gpu.Transition(cmd, img, gpu.LayoutUndefined, gpu.LayoutGeneral)
	c.server.gpu.SubmitCommands(cmd)

	return &Buffer{client: c, dma: true, image: img, format: format, size: geom.Pt(width, height)}, nil
}

// Feedback objects answer the v4 format negotiation. The format
// table rides in a read-only shared file, same as keymaps.

func dmabufGetDefaultFeedback(c *Client, obj *Object, r *wire.Reader) error {
	id, err := r.NewIDFixed()
	if err != nil {
		return err
	}
	if _, err := c.newObject(id, protocol.DmabufFeedback, obj.Version, nil); err != nil {
		return err
	}
	c.sendDmabufFeedback(id)
	return nil
}

func dmabufGetSurfaceFeedback(c *Client, obj *Object, r *wire.Reader) error {
	id, err := r.NewIDFixed()
	if err != nil {
		return err
	}
	surfaceID, err := r.Object()
	if err != nil {
		return err
	}
	if _, err := c.objects.lookup(surfaceID, protocol.Surface); err != nil {
		return err
	}
	if _, err := c.newObject(id, protocol.DmabufFeedback, obj.Version, nil); err != nil {
		return err
	}
	// Per-surface preferences do not differ from the defaults.
	c.sendDmabufFeedback(id)
	return nil
}

func (c *Client) sendDmabufFeedback(id uint32) {
	table := make([]byte, 0, 16*len(dmabufFormats))
	for _, f := range dmabufFormats {
		var entry [16]byte
		entry[0] = byte(f.format)
		entry[1] = byte(f.format >> 8)
		entry[2] = byte(f.format >> 16)
		entry[3] = byte(f.format >> 24)
		for i := range 8 {
			entry[8+i] = byte(f.modifier >> (8 * i))
		}
		table = append(table, entry[:]...)
	}

	fd, err := shmfile.New(xdg.RuntimeDir, table)
	if err != nil {
		logrus.WithError(err).Error("dmabuf format table")
		return
	}

	c.event(id, protocol.DmabufFeedbackEventFormatTable, func(w *wire.Writer) {
		w.PutOwnedFD(fd)
		w.PutUint(uint32(len(table)))
	})
	// A software context has no render device to name.
	c.event(id, protocol.DmabufFeedbackEventMainDevice, func(w *wire.Writer) {
		w.PutArray(nil)
	})
	c.event(id, protocol.DmabufFeedbackEventTrancheTargetDevice, func(w *wire.Writer) {
		w.PutArray(nil)
	})
	c.event(id, protocol.DmabufFeedbackEventTrancheFormats, func(w *wire.Writer) {
		indices := make([]byte, 0, 2*len(dmabufFormats))
		for i := range dmabufFormats {
			indices = append(indices, byte(i), byte(i>>8))
		}
		w.PutArray(indices)
	})
	c.event(id, protocol.DmabufFeedbackEventTrancheFlags, func(w *wire.Writer) {
		w.PutUint(0)
	})
	c.event(id, protocol.DmabufFeedbackEventTrancheDone, func(w *wire.Writer) {})
	c.event(id, protocol.DmabufFeedbackEventDone, func(w *wire.Writer) {})
}

func dmabufFeedbackDestroy(c *Client, obj *Object, r *wire.Reader) error {
	c.destroyObject(obj.ID)
	return nil
}
