package main

import (
	"deedles.dev/taki/protocol"
	"deedles.dev/taki/wire"
	"deedles.dev/ximage/geom"
)

// Pointer is the seat's one pointer. Position is absolute in the
// current output's coordinate space.
type Pointer struct {
	seat *Seat

	output *Output
	pos    geom.Point[float64]
	focus  *Surface
}

// handleMotion routes absolute motion from the backend.
func (p *Pointer) handleMotion(pos geom.Point[float64]) {
	if p.output == nil && len(p.seat.server.outputs) > 0 {
		p.output = p.seat.server.outputs[0]
	}
	if p.output != nil {
		pos = clampPoint(pos, p.output.size)
	}
	p.pos = pos

	if p.focus == nil {
		p.chooseFocus()
		if p.focus == nil {
			return
		}
	}

	server := p.seat.server
	time := server.timeMs()
	for res := range clientResources(p.seat.pointers, p.focus.client) {
		res.client.event(res.id, protocol.PointerEventMotion, func(w *wire.Writer) {
			w.PutUint(time)
			w.PutFixed(wire.FixedFloat(pos.X))
			w.PutFixed(wire.FixedFloat(pos.Y))
		})
	}
	p.sendFrame()
}

// chooseFocus mirrors the keyboard's placeholder policy: the first
// surface gets the pointer, whatever its role.
func (p *Pointer) chooseFocus() {
	server := p.seat.server
	if len(server.surfaces) == 0 {
		return
	}
	p.focus = server.surfaces[0]

	serial := server.nextSerial()
	for res := range clientResources(p.seat.pointers, p.focus.client) {
		surface := p.focus.id
		res.client.event(res.id, protocol.PointerEventEnter, func(w *wire.Writer) {
			w.PutUint(serial)
			w.PutObject(surface)
			w.PutFixed(wire.FixedFloat(p.pos.X))
			w.PutFixed(wire.FixedFloat(p.pos.Y))
		})
	}
}

// sendLeave is the leave path. The only current trigger is the
// focused surface going away.
func (p *Pointer) sendLeave() {
	if p.focus == nil {
		return
	}
	serial := p.seat.server.nextSerial()
	for res := range clientResources(p.seat.pointers, p.focus.client) {
		surface := p.focus.id
		res.client.event(res.id, protocol.PointerEventLeave, func(w *wire.Writer) {
			w.PutUint(serial)
			w.PutObject(surface)
		})
	}
	p.sendFrame()
	p.focus = nil
}

func (p *Pointer) handleButton(button uint32, pressed bool) {
	if p.focus == nil {
		return
	}
	server := p.seat.server
	state := uint32(protocol.ButtonStateReleased)
	if pressed {
		state = protocol.ButtonStatePressed
	}
	serial := server.nextSerial()
	time := server.timeMs()
	for res := range clientResources(p.seat.pointers, p.focus.client) {
		res.client.event(res.id, protocol.PointerEventButton, func(w *wire.Writer) {
			w.PutUint(serial)
			w.PutUint(time)
			w.PutUint(button)
			w.PutUint(state)
		})
	}
	p.sendFrame()
}

// handleAxis routes scroll deltas, horizontal and vertical apart.
func (p *Pointer) handleAxis(delta geom.Point[float64]) {
	if p.focus == nil {
		return
	}
	time := p.seat.server.timeMs()
	axes := []struct {
		axis  uint32
		value float64
	}{
		{protocol.AxisHorizontalScroll, delta.X},
		{protocol.AxisVerticalScroll, delta.Y},
	}
	for _, a := range axes {
		if a.value == 0 {
			continue
		}
		for res := range clientResources(p.seat.pointers, p.focus.client) {
			res.client.event(res.id, protocol.PointerEventAxis, func(w *wire.Writer) {
				w.PutUint(time)
				w.PutUint(a.axis)
				w.PutFixed(wire.FixedFloat(a.value))
			})
		}
	}
	p.sendFrame()
}

// sendFrame terminates an event burst for v5+ resources.
func (p *Pointer) sendFrame() {
	if p.focus == nil {
		return
	}
	for res := range clientResources(p.seat.pointers, p.focus.client) {
		if res.version < 5 {
			continue
		}
		res.client.event(res.id, protocol.PointerEventFrame, func(w *wire.Writer) {})
	}
}

func clampPoint(p geom.Point[float64], size geom.Point[int32]) geom.Point[float64] {
	return geom.Pt(
		min(max(p.X, 0), float64(size.X)),
		min(max(p.Y, 0), float64(size.Y)),
	)
}
