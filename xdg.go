package main

import (
	"deedles.dev/taki/protocol"
	"deedles.dev/taki/wire"
	"deedles.dev/ximage/geom"
	"github.com/sirupsen/logrus"
)

// XDGSurface is the shell handle for a surface. It holds a
// non-owning back-pointer to the surface, nulled when either side
// is destroyed.
type XDGSurface struct {
	client  *Client
	id      uint32
	version uint32
	wmBase  uint32

	surface  *Surface
	toplevel *Toplevel
	popup    *Popup

	lastAcked uint32
}

type Toplevel struct {
	xdg   *XDGSurface
	id    uint32
	title string
	appID string
}

type Popup struct {
	xdg  *XDGSurface
	id   uint32
	size geom.Point[int32]
}

// Positioner accumulates placement parameters for future popups.
type Positioner struct {
	size   geom.Point[int32]
	anchor geom.Rect[int32]
}

func bindWmBase(c *Client, obj *Object) {}

func wmBaseDestroy(c *Client, obj *Object, r *wire.Reader) error {
	c.destroyObject(obj.ID)
	return nil
}

func wmBaseCreatePositioner(c *Client, obj *Object, r *wire.Reader) error {
	id, err := r.NewIDFixed()
	if err != nil {
		return err
	}
	_, err = c.newObject(id, protocol.XDGPositioner, obj.Version, &Positioner{})
	return err
}

func wmBaseGetXDGSurface(c *Client, obj *Object, r *wire.Reader) error {
	id, err := r.NewIDFixed()
	if err != nil {
		return err
	}
	surfaceID, err := r.Object()
	if err != nil {
		return err
	}
	sobj, err := c.objects.lookup(surfaceID, protocol.Surface)
	if err != nil {
		return err
	}
	s := sobj.Data.(*Surface)
	if s.xdg != nil {
		return protocolErrorf(protocol.WmBaseErrorRole, "surface %v already has an xdg_surface", surfaceID)
	}

	xdg := XDGSurface{client: c, id: id, version: obj.Version, wmBase: obj.ID, surface: s}
	if _, err := c.newObject(id, protocol.XDGSurface, obj.Version, &xdg); err != nil {
		return err
	}
	s.xdg = &xdg
	return nil
}

func wmBasePong(c *Client, obj *Object, r *wire.Reader) error {
	serial, err := r.Uint()
	if err != nil {
		return err
	}
	logrus.WithField("serial", serial).Trace("pong")
	return nil
}

func (c *Client) sendPing(wmBase uint32, serial uint32) {
	c.event(wmBase, protocol.WmBaseEventPing, func(w *wire.Writer) {
		w.PutUint(serial)
	})
}

func xdgSurfaceData(obj *Object) *XDGSurface {
	return obj.Data.(*XDGSurface)
}

func xdgSurfaceDestroy(c *Client, obj *Object, r *wire.Reader) error {
	xdgSurfaceData(obj).detach()
	c.destroyObject(obj.ID)
	return nil
}

// detach severs the surface link. The surface keeps its role tag;
// roles are permanent even when the role object dies first.
func (xdg *XDGSurface) detach() {
	if xdg.surface != nil {
		xdg.surface.xdg = nil
		xdg.surface = nil
	}
	if xdg.toplevel != nil {
		xdg.toplevel.xdg = nil
		xdg.toplevel = nil
	}
	if xdg.popup != nil {
		xdg.popup.xdg = nil
		xdg.popup = nil
	}
}

func xdgSurfaceGetToplevel(c *Client, obj *Object, r *wire.Reader) error {
	xdg := xdgSurfaceData(obj)

	id, err := r.NewIDFixed()
	if err != nil {
		return err
	}
	if xdg.surface == nil {
		return protocolErrorf(protocol.WmBaseErrorDefunctSurfaces, "xdg_surface %v has no surface", obj.ID)
	}
	if xdg.surface.role != roleNone {
		return protocolErrorf(protocol.WmBaseErrorRole, "surface already has a role")
	}

	toplevel := Toplevel{xdg: xdg, id: id}
	if _, err := c.newObject(id, protocol.XDGToplevel, obj.Version, &toplevel); err != nil {
		return err
	}
	xdg.toplevel = &toplevel
	xdg.surface.role = roleToplevel

	logrus.WithField("surface", xdg.surface.id).Debug("toplevel role assigned")
	return nil
}

func xdgSurfaceGetPopup(c *Client, obj *Object, r *wire.Reader) error {
	xdg := xdgSurfaceData(obj)

	id, err := r.NewIDFixed()
	if err != nil {
		return err
	}
	parentID, err := r.Object()
	if err != nil {
		return err
	}
	positionerID, err := r.Object()
	if err != nil {
		return err
	}
	if parentID != 0 {
		if _, err := c.objects.lookup(parentID, protocol.XDGSurface); err != nil {
			return err
		}
	}
	pobj, err := c.objects.lookup(positionerID, protocol.XDGPositioner)
	if err != nil {
		return err
	}
	positioner := pobj.Data.(*Positioner)

	if xdg.surface == nil {
		return protocolErrorf(protocol.WmBaseErrorDefunctSurfaces, "xdg_surface %v has no surface", obj.ID)
	}
	if xdg.surface.role != roleNone {
		return protocolErrorf(protocol.WmBaseErrorRole, "surface already has a role")
	}

	popup := Popup{xdg: xdg, id: id, size: positioner.size}
	if _, err := c.newObject(id, protocol.XDGPopup, obj.Version, &popup); err != nil {
		return err
	}
	xdg.popup = &popup
	xdg.surface.role = rolePopup
	return nil
}

func xdgSurfaceSetWindowGeometry(c *Client, obj *Object, r *wire.Reader) error {
	xdg := xdgSurfaceData(obj)

	x, err := r.Int()
	if err != nil {
		return err
	}
	y, err := r.Int()
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

	if xdg.surface == nil {
		return nil
	}
	xdg.surface.pending.geometry = geom.Rt(x, y, x+width, y+height)
	xdg.surface.pending.hasGeometry = true
	return nil
}

// ack_configure is recorded but not enforced; replayed or stale
// serials are informational.
func xdgSurfaceAckConfigure(c *Client, obj *Object, r *wire.Reader) error {
	serial, err := r.Uint()
	if err != nil {
		return err
	}
	xdg := xdgSurfaceData(obj)
	xdg.lastAcked = serial
	logrus.WithField("serial", serial).Trace("ack_configure")
	return nil
}

// sendInitialConfigure runs the first configure handshake round for
// the surface's role.
func (xdg *XDGSurface) sendInitialConfigure() {
	c := xdg.client
	server := c.server

	if xdg.toplevel != nil {
		tl := xdg.toplevel
		if xdg.version >= protocol.ToplevelConfigureBoundsSinceVersion {
			c.event(tl.id, protocol.XDGToplevelEventConfigureBounds, func(w *wire.Writer) {
				w.PutInt(0)
				w.PutInt(0)
			})
		}
		c.event(tl.id, protocol.XDGToplevelEventConfigure, func(w *wire.Writer) {
			w.PutInt(0)
			w.PutInt(0)
			w.PutArray(stateArray(protocol.ToplevelStateActivated))
		})
		if xdg.version >= protocol.ToplevelWmCapabilitiesSinceVersion {
			c.event(tl.id, protocol.XDGToplevelEventWmCapabilities, func(w *wire.Writer) {
				w.PutArray(stateArray(protocol.WmCapabilityFullscreen, protocol.WmCapabilityMaximize))
			})
		}
	}

	if xdg.popup != nil {
		p := xdg.popup
		c.event(p.id, protocol.XDGPopupEventConfigure, func(w *wire.Writer) {
			w.PutInt(0)
			w.PutInt(0)
			w.PutInt(p.size.X)
			w.PutInt(p.size.Y)
		})
	}

	serial := server.nextSerial()
	c.event(xdg.id, protocol.XDGSurfaceEventConfigure, func(w *wire.Writer) {
		w.PutUint(serial)
	})

	// First configure doubles as a liveness probe.
	if _, ok := c.objects.get(xdg.wmBase); ok {
		c.sendPing(xdg.wmBase, server.nextSerial())
	}

	// Starting the handshake schedules a frame; the commit that
	// follows the ack schedules another.
	server.damaged()
}

// stateArray encodes uint32 enum values as a wl_array.
func stateArray(states ...uint32) []byte {
	buf := make([]byte, 0, 4*len(states))
	for _, s := range states {
		buf = append(buf, byte(s), byte(s>>8), byte(s>>16), byte(s>>24))
	}
	return buf
}

func toplevelData(obj *Object) *Toplevel {
	return obj.Data.(*Toplevel)
}

func (tl *Toplevel) detach() {
	if tl.xdg != nil {
		tl.xdg.toplevel = nil
		tl.xdg = nil
	}
}

func xdgToplevelDestroy(c *Client, obj *Object, r *wire.Reader) error {
	tl := toplevelData(obj)
	if tl.xdg != nil && tl.xdg.surface != nil {
		// Destroying the role object unmaps the window.
		tl.xdg.surface.dropContents()
	}
	tl.detach()
	c.destroyObject(obj.ID)
	return nil
}

func xdgToplevelSetTitle(c *Client, obj *Object, r *wire.Reader) error {
	title, err := r.String()
	if err != nil {
		return err
	}
	toplevelData(obj).title = title
	return nil
}

func xdgToplevelSetAppID(c *Client, obj *Object, r *wire.Reader) error {
	appID, err := r.String()
	if err != nil {
		return err
	}
	toplevelData(obj).appID = appID
	return nil
}

// The remaining toplevel requests are accepted and ignored: the
// compositor places the single toplevel itself.

func xdgToplevelSetParent(c *Client, obj *Object, r *wire.Reader) error {
	_, err := r.Object()
	return err
}

func xdgToplevelShowWindowMenu(c *Client, obj *Object, r *wire.Reader) error {
	if _, err := r.Object(); err != nil {
		return err
	}
	if _, err := r.Uint(); err != nil {
		return err
	}
	if _, err := r.Int(); err != nil {
		return err
	}
	_, err := r.Int()
	return err
}

func xdgToplevelMove(c *Client, obj *Object, r *wire.Reader) error {
	if _, err := r.Object(); err != nil {
		return err
	}
	_, err := r.Uint()
	return err
}

func xdgToplevelResize(c *Client, obj *Object, r *wire.Reader) error {
	if _, err := r.Object(); err != nil {
		return err
	}
	if _, err := r.Uint(); err != nil {
		return err
	}
	_, err := r.Uint()
	return err
}

func xdgToplevelSetMaxSize(c *Client, obj *Object, r *wire.Reader) error {
	if _, err := r.Int(); err != nil {
		return err
	}
	_, err := r.Int()
	return err
}

func xdgToplevelSetMinSize(c *Client, obj *Object, r *wire.Reader) error {
	return xdgToplevelSetMaxSize(c, obj, r)
}

func xdgToplevelSetMaximized(c *Client, obj *Object, r *wire.Reader) error {
	return nil
}

func xdgToplevelUnsetMaximized(c *Client, obj *Object, r *wire.Reader) error {
	return nil
}

func xdgToplevelSetFullscreen(c *Client, obj *Object, r *wire.Reader) error {
	_, err := r.Object()
	return err
}

func xdgToplevelUnsetFullscreen(c *Client, obj *Object, r *wire.Reader) error {
	return nil
}

func xdgToplevelSetMinimized(c *Client, obj *Object, r *wire.Reader) error {
	return nil
}

func xdgPopupDestroy(c *Client, obj *Object, r *wire.Reader) error {
	p := obj.Data.(*Popup)
	if p.xdg != nil {
		p.xdg.popup = nil
		p.xdg = nil
	}
	c.destroyObject(obj.ID)
	return nil
}

func xdgPopupGrab(c *Client, obj *Object, r *wire.Reader) error {
	if _, err := r.Object(); err != nil {
		return err
	}
	_, err := r.Uint()
	return err
}

func xdgPopupReposition(c *Client, obj *Object, r *wire.Reader) error {
	if _, err := r.Object(); err != nil {
		return err
	}
	_, err := r.Uint()
	return err
}

func positionerData(obj *Object) *Positioner {
	return obj.Data.(*Positioner)
}

func xdgPositionerDestroy(c *Client, obj *Object, r *wire.Reader) error {
	c.destroyObject(obj.ID)
	return nil
}

func xdgPositionerSetSize(c *Client, obj *Object, r *wire.Reader) error {
	width, err := r.Int()
	if err != nil {
		return err
	}
	height, err := r.Int()
	if err != nil {
		return err
	}
	positionerData(obj).size = geom.Pt(width, height)
	return nil
}

func xdgPositionerSetAnchorRect(c *Client, obj *Object, r *wire.Reader) error {
	x, err := r.Int()
	if err != nil {
		return err
	}
	y, err := r.Int()
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
	positionerData(obj).anchor = geom.Rt(x, y, x+width, y+height)
	return nil
}

func xdgPositionerSetUint(c *Client, obj *Object, r *wire.Reader) error {
	_, err := r.Uint()
	return err
}

func xdgPositionerSetOffset(c *Client, obj *Object, r *wire.Reader) error {
	if _, err := r.Int(); err != nil {
		return err
	}
	_, err := r.Int()
	return err
}

func xdgPositionerSetReactive(c *Client, obj *Object, r *wire.Reader) error {
	return nil
}

func xdgPositionerSetParentSize(c *Client, obj *Object, r *wire.Reader) error {
	return xdgPositionerSetOffset(c, obj, r)
}

func xdgPositionerSetParentConfigure(c *Client, obj *Object, r *wire.Reader) error {
	_, err := r.Uint()
	return err
}

// Decoration: server-side only. The decoration object exists to
// tell every client the same thing.

type ToplevelDecoration struct {
	toplevel *Toplevel
}

func bindDecorationManager(c *Client, obj *Object) {}

func decorationManagerDestroy(c *Client, obj *Object, r *wire.Reader) error {
	c.destroyObject(obj.ID)
	return nil
}

func decorationManagerGetToplevelDecoration(c *Client, obj *Object, r *wire.Reader) error {
	id, err := r.NewIDFixed()
	if err != nil {
		return err
	}
	tlID, err := r.Object()
	if err != nil {
		return err
	}
	tlObj, err := c.objects.lookup(tlID, protocol.XDGToplevel)
	if err != nil {
		return err
	}

	deco := ToplevelDecoration{toplevel: tlObj.Data.(*Toplevel)}
	if _, err := c.newObject(id, protocol.ToplevelDecoration, obj.Version, &deco); err != nil {
		return err
	}

	c.sendDecorationConfigure(id)
	return nil
}

func (c *Client) sendDecorationConfigure(id uint32) {
	c.event(id, protocol.ToplevelDecorationEventConfigure, func(w *wire.Writer) {
		w.PutUint(protocol.DecorationModeServerSide)
	})
}

func toplevelDecorationDestroy(c *Client, obj *Object, r *wire.Reader) error {
	c.destroyObject(obj.ID)
	return nil
}

func toplevelDecorationSetMode(c *Client, obj *Object, r *wire.Reader) error {
	mode, err := r.Uint()
	if err != nil {
		return err
	}
	logrus.WithField("mode", mode).Trace("decoration set_mode ignored, staying server-side")
	c.sendDecorationConfigure(obj.ID)
	return nil
}

func toplevelDecorationUnsetMode(c *Client, obj *Object, r *wire.Reader) error {
	c.sendDecorationConfigure(obj.ID)
	return nil
}
