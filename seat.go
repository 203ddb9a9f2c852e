package main

import (
	"iter"
	"slices"

	"deedles.dev/taki/internal/util"
	"deedles.dev/taki/protocol"
	"deedles.dev/taki/wire"
	"deedles.dev/xiter"
	"github.com/sirupsen/logrus"
)

// seatResource is one bound seat-family protocol object.
type seatResource struct {
	client  *Client
	id      uint32
	version uint32
	kind    protocol.Interface
}

// Seat is the single seat. Capabilities follow what the backend
// reports; the resource lists track which clients hear about input.
type Seat struct {
	server *Server
	name   string
	caps   uint32

	keyboard *Keyboard
	pointer  *Pointer

	seats     []*seatResource
	keyboards []*seatResource
	pointers  []*seatResource
	touches   []*seatResource
}

func newSeat(server *Server) (*Seat, error) {
	seat := Seat{
		server: server,
		name:   "seat0",
	}
	seat.keyboard = newKeyboard(&seat)
	seat.pointer = &Pointer{seat: &seat}
	return &seat, nil
}

func (seat *Seat) destroy() {
	seat.keyboard.destroy()
}

// setCapabilities updates the capability bitmap and tells every
// bound seat about the change.
func (seat *Seat) setCapabilities(caps uint32) {
	if seat.caps == caps {
		return
	}
	seat.caps = caps
	for _, res := range seat.seats {
		seat.sendCapabilities(res)
	}
}

func (seat *Seat) sendCapabilities(res *seatResource) {
	res.client.event(res.id, protocol.SeatEventCapabilities, func(w *wire.Writer) {
		w.PutUint(seat.caps)
	})
}

func bindSeat(c *Client, obj *Object) {
	seat := c.server.seat
	res := seatResource{client: c, id: obj.ID, version: obj.Version, kind: protocol.Seat}
	obj.Data = &res
	seat.seats = append(seat.seats, &res)

	seat.sendCapabilities(&res)
	if obj.Version >= 2 {
		c.event(obj.ID, protocol.SeatEventName, func(w *wire.Writer) {
			w.PutString(seat.name)
		})
	}
}

func seatGetPointer(c *Client, obj *Object, r *wire.Reader) error {
	id, err := r.NewIDFixed()
	if err != nil {
		return err
	}
	res := seatResource{client: c, id: id, version: obj.Version, kind: protocol.Pointer}
	if _, err := c.newObject(id, protocol.Pointer, obj.Version, &res); err != nil {
		return err
	}
	c.server.seat.pointers = append(c.server.seat.pointers, &res)
	return nil
}

func seatGetKeyboard(c *Client, obj *Object, r *wire.Reader) error {
	id, err := r.NewIDFixed()
	if err != nil {
		return err
	}
	res := seatResource{client: c, id: id, version: obj.Version, kind: protocol.Keyboard}
	if _, err := c.newObject(id, protocol.Keyboard, obj.Version, &res); err != nil {
		return err
	}

	seat := c.server.seat
	seat.keyboards = append(seat.keyboards, &res)
	seat.keyboard.sendKeymap(&res)
	seat.keyboard.sendRepeatInfo(&res)
	return nil
}

func seatGetTouch(c *Client, obj *Object, r *wire.Reader) error {
	id, err := r.NewIDFixed()
	if err != nil {
		return err
	}
	res := seatResource{client: c, id: id, version: obj.Version, kind: protocol.Touch}
	if _, err := c.newObject(id, protocol.Touch, obj.Version, &res); err != nil {
		return err
	}
	// No touch devices ever show up; the resource only exists to
	// be released.
	c.server.seat.touches = append(c.server.seat.touches, &res)
	return nil
}

func seatRelease(c *Client, obj *Object, r *wire.Reader) error {
	return seatResourceRelease(c, obj, r)
}

func keyboardRelease(c *Client, obj *Object, r *wire.Reader) error {
	return seatResourceRelease(c, obj, r)
}

func pointerRelease(c *Client, obj *Object, r *wire.Reader) error {
	return seatResourceRelease(c, obj, r)
}

func touchRelease(c *Client, obj *Object, r *wire.Reader) error {
	return seatResourceRelease(c, obj, r)
}

func seatResourceRelease(c *Client, obj *Object, r *wire.Reader) error {
	if res, ok := obj.Data.(*seatResource); ok {
		c.server.seat.removeResource(res)
	}
	c.destroyObject(obj.ID)
	return nil
}

func pointerSetCursor(c *Client, obj *Object, r *wire.Reader) error {
	if _, err := r.Uint(); err != nil {
		return err
	}
	surfaceID, err := r.Object()
	if err != nil {
		return err
	}
	if surfaceID != 0 {
		if _, err := c.objects.lookup(surfaceID, protocol.Surface); err != nil {
			return err
		}
	}
	if _, err := r.Int(); err != nil {
		return err
	}
	if _, err := r.Int(); err != nil {
		return err
	}
	logrus.Trace("set_cursor ignored")
	return nil
}

func (seat *Seat) removeResource(res *seatResource) {
	switch res.kind {
	case protocol.Seat:
		seat.seats = util.Remove(seat.seats, res)
	case protocol.Keyboard:
		if seat.keyboard.focus == res {
			seat.keyboard.clearFocus()
		}
		seat.keyboards = util.Remove(seat.keyboards, res)
	case protocol.Pointer:
		seat.pointers = util.Remove(seat.pointers, res)
	case protocol.Touch:
		seat.touches = util.Remove(seat.touches, res)
	}
}

// clientResources filters a resource list down to one client's.
func clientResources(s []*seatResource, c *Client) iter.Seq[*seatResource] {
	return xiter.Filter(slices.Values(s), func(res *seatResource) bool { return res.client == c })
}

// surfaceGone clears focus state pointing at a dying surface.
func (seat *Seat) surfaceGone(s *Surface) {
	if seat.keyboard.focusSurface == s {
		seat.keyboard.clearFocus()
	}
	if seat.pointer.focus == s {
		seat.pointer.sendLeave()
	}
}
